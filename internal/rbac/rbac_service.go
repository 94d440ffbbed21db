package rbac

import (
	"github.com/casbin/casbin/v2"
	casbinmodel "github.com/casbin/casbin/v2/model"
	"go.uber.org/zap"
)

// Service answers "may this role perform this action on this resource".
// The policy is static: the portal has exactly three roles and the
// permission table never changes at runtime.
type Service interface {
	Enforce(role, resource, action string) (bool, error)
}

const modelText = `
[request_definition]
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

type policyRule struct {
	role     string
	resource string
	action   string
}

var policyRules = []policyRule{
	{"employee", "request", "read"},
	{"employee", "request", "create"},
	{"employee", "balance", "read"},
	{"employee", "profile", "read"},
	{"manager", "request", "approve"},
	{"admin", "request", "delete"},
	{"admin", "user", "manage"},
	{"admin", "balance", "adjust"},
}

// roleHierarchy: each role inherits every permission of the role it maps to.
var roleHierarchy = [][2]string{
	{"manager", "employee"},
	{"admin", "manager"},
}

type service struct {
	enforcer *casbin.Enforcer
	logger   *zap.Logger
}

func NewService(logger *zap.Logger) (Service, error) {
	if logger == nil {
		logger = zap.L()
	}
	logger = logger.Named("rbac_service")

	m, err := casbinmodel.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}

	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	for _, r := range policyRules {
		if _, err := enforcer.AddPolicy(r.role, r.resource, r.action); err != nil {
			return nil, err
		}
	}
	for _, g := range roleHierarchy {
		if _, err := enforcer.AddGroupingPolicy(g[0], g[1]); err != nil {
			return nil, err
		}
	}

	return &service{enforcer: enforcer, logger: logger}, nil
}

func (s *service) Enforce(role, resource, action string) (bool, error) {
	allowed, err := s.enforcer.Enforce(role, resource, action)
	if err != nil {
		s.logger.Error("rbac enforce failed",
			zap.String("role", role),
			zap.String("resource", resource),
			zap.String("action", action),
			zap.Error(err))
		return false, err
	}

	s.logger.Debug("rbac enforce result",
		zap.String("role", role),
		zap.String("resource", resource),
		zap.String("action", action),
		zap.Bool("allowed", allowed))

	return allowed, nil
}
