package bootstrap

import (
	"bytes"
	"context"
	"testing"

	"go-leave/internal/shared/contextutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestStdoutAuditLogger_Log(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	audit := NewStdoutAuditLogger(zap.New(core))

	ctx := contextutil.WithRequestID(context.Background(), "rid-1")
	audit.Log(ctx, AuditLog{
		Action:  "LEAVE_approved",
		Message: "leave request approved",
		Meta:    map[string]any{"leave_id": "leave-1"},
	})

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "audit", entry.LoggerName)
	fields := entry.ContextMap()
	assert.Equal(t, "rid-1", fields["request_id"])
	assert.Equal(t, "LEAVE_approved", fields["action"])
}

func TestInitTracing_ExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := initTracing("go-leave-test", &buf)
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "leave.decide")
	span.End()

	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), "leave.decide")
}

func TestInitTracing_WithoutExporter(t *testing.T) {
	shutdown, err := InitTracing("go-leave-test", false)
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
