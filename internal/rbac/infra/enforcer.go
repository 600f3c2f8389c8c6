package infra

import (
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

// ModelText is a plain role model with role inheritance. Subjects are role
// names, there are no per-user grants.
const ModelText = `[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

// DefaultPolicies grants route-level access per role. Fine-grained checks
// (department, ownership, current status) happen in the leave policy.
var DefaultPolicies = [][]string{
	{"employee", "leave", "create"},
	{"employee", "leave", "read"},
	{"employee", "leave", "cancel"},
	{"employee", "balance", "read"},
	{"manager", "leave", "decide"},
	{"admin", "balance", "write"},
}

// DefaultGroupings lists role inheritance as child, parent.
var DefaultGroupings = [][]string{
	{"assistant", "employee"},
	{"manager", "employee"},
	{"admin", "manager"},
}

func NewEnforcer() (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(ModelText)
	if err != nil {
		return nil, err
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}
	if _, err := e.AddPolicies(DefaultPolicies); err != nil {
		return nil, err
	}
	if _, err := e.AddGroupingPolicies(DefaultGroupings); err != nil {
		return nil, err
	}
	return e, nil
}
