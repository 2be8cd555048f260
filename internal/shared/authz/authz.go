// Package authz holds the single authorization predicate shared by every handler and service.
package authz

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

// Role names a capability bundle granted to a user.
type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleEmployee Role = "Employee"
	RoleCustomer Role = "Customer"
)

// ErrUnauthorized is returned when neither the role nor the ownership requirement is met.
var ErrUnauthorized = errors.New("unauthorized")

// ParseRole matches a role name case-sensitively.
func ParseRole(value string) (Role, bool) {
	role := Role(strings.TrimSpace(value))
	switch role {
	case RoleAdmin, RoleEmployee, RoleCustomer:
		return role, true
	default:
		return "", false
	}
}

// Actor is the authenticated caller of a use case.
type Actor struct {
	ID    string `json:"id"`
	Roles []Role `json:"roles"`
}

// HasRole reports whether the actor carries role verbatim.
func (a Actor) HasRole(role Role) bool {
	return slices.Contains(a.Roles, role)
}

// Requirement describes what a request needs. Role and OwnerID are alternatives:
// satisfying either one is enough. An empty requirement admits only admins.
type Requirement struct {
	Role    Role
	OwnerID string
}

// RequireRole builds a role-only requirement.
func RequireRole(role Role) Requirement { return Requirement{Role: role} }

// RequireOwner builds an ownership-only requirement.
func RequireOwner(ownerID string) Requirement { return Requirement{OwnerID: ownerID} }

const modelText = `
[request_definition]
r = sub, act

[policy_definition]
p = sub, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && (p.act == "*" || r.act == p.act)
`

const anyCapability = "*"

// Gate evaluates requirements against the role policy.
type Gate struct {
	enforcer *casbin.Enforcer
}

// NewGate builds a gate with the built-in role policy.
func NewGate() (*Gate, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("load authorization model: %w", err)
	}
	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create enforcer: %w", err)
	}
	policies := [][]string{
		{string(RoleAdmin), anyCapability},
		{string(RoleEmployee), string(RoleEmployee)},
		{string(RoleCustomer), string(RoleCustomer)},
	}
	if _, err := enforcer.AddPolicies(policies); err != nil {
		return nil, fmt.Errorf("seed role policy: %w", err)
	}
	return &Gate{enforcer: enforcer}, nil
}

var defaultGate = sync.OnceValue(func() *Gate {
	gate, err := NewGate()
	if err != nil {
		panic(err)
	}
	return gate
})

// Default returns a process-wide gate.
func Default() *Gate {
	return defaultGate()
}

// Permit allows admins unconditionally, then the role requirement, then ownership.
func (g *Gate) Permit(actor Actor, req Requirement) error {
	allowed, err := g.anyRoleAllows(actor, anyCapability)
	if err != nil {
		return err
	}
	if allowed {
		return nil
	}
	if req.Role != "" {
		allowed, err := g.anyRoleAllows(actor, string(req.Role))
		if err != nil {
			return err
		}
		if allowed {
			return nil
		}
	}
	if req.OwnerID != "" && actor.ID != "" && actor.ID == req.OwnerID {
		return nil
	}
	return ErrUnauthorized
}

func (g *Gate) anyRoleAllows(actor Actor, capability string) (bool, error) {
	for _, role := range actor.Roles {
		ok, err := g.enforcer.Enforce(string(role), capability)
		if err != nil {
			return false, fmt.Errorf("evaluate policy: %w", err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
