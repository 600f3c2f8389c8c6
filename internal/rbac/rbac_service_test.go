package rbac

import (
	"testing"

	"go-leave/internal/domain"
	"go-leave/internal/rbac/infra"

	"github.com/stretchr/testify/assert"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	e, err := infra.NewEnforcer()
	assert.NoError(t, err)
	return NewService(e)
}

func TestRBACService_Enforce(t *testing.T) {
	svc := newTestService(t)

	tests := []struct {
		name     string
		role     string
		resource string
		action   string
		allowed  bool
	}{
		{"employee creates leave", "employee", "leave", "create", true},
		{"employee cannot decide", "employee", "leave", "decide", false},
		{"assistant inherits cancel", "assistant", "leave", "cancel", true},
		{"assistant cannot decide", "assistant", "leave", "decide", false},
		{"manager decides", "manager", "leave", "decide", true},
		{"manager inherits create", "manager", "leave", "create", true},
		{"manager cannot write balance", "manager", "balance", "write", false},
		{"admin decides through manager", "admin", "leave", "decide", true},
		{"admin writes balance", "admin", "balance", "write", true},
		{"unknown role denied", "guest", "leave", "read", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			allowed, err := svc.Enforce(domain.EnforceRequest{
				Role:     tt.role,
				Resource: tt.resource,
				Action:   tt.action,
			})
			assert.NoError(t, err)
			assert.Equal(t, tt.allowed, allowed)
		})
	}
}

func TestRBACService_Permissions(t *testing.T) {
	svc := newTestService(t)

	t.Run("employee", func(t *testing.T) {
		perms, err := svc.Permissions("employee")
		assert.NoError(t, err)
		assert.Equal(t, []domain.PermissionResponse{
			{Resource: "balance", Action: "read"},
			{Resource: "leave", Action: "cancel"},
			{Resource: "leave", Action: "create"},
			{Resource: "leave", Action: "read"},
		}, perms)
	})

	t.Run("admin includes inherited", func(t *testing.T) {
		perms, err := svc.Permissions("admin")
		assert.NoError(t, err)
		assert.Contains(t, perms, domain.PermissionResponse{Resource: "balance", Action: "write"})
		assert.Contains(t, perms, domain.PermissionResponse{Resource: "leave", Action: "decide"})
		assert.Contains(t, perms, domain.PermissionResponse{Resource: "leave", Action: "create"})
	})

	t.Run("unknown role has none", func(t *testing.T) {
		perms, err := svc.Permissions("guest")
		assert.NoError(t, err)
		assert.Empty(t, perms)
	})
}
