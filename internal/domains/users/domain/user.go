package domain

import (
	"errors"
	"slices"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/Apurer/go-gin-commerce-api/internal/shared/authz"
	"github.com/Apurer/go-gin-commerce-api/internal/shared/projection"
)

// PasswordCost is the bcrypt work factor for stored credentials.
const PasswordCost = 10

var (
	ErrEmptyUsername         = errors.New("username is required")
	ErrEmptyPassword         = errors.New("password is required")
	ErrWeakPassword          = errors.New("password must be at least 4 characters")
	ErrInvalidEmail          = errors.New("email must contain '@'")
	ErrNoRoles               = errors.New("at least one role is required")
	ErrUnknownRole           = errors.New("unknown role")
	ErrCustomerRoleExclusive = errors.New("customer role cannot be combined with other roles")
	ErrIncompleteProfile     = errors.New("first name, last name, email, phone and address are required")
	ErrInvalidCustomerRole   = errors.New("invalid role for customer")
	ErrStaffRoleRequired     = errors.New("staff accounts need the Employee or Admin role")
)

// Profile holds contact details attached to an employee or customer account.
type Profile struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Address   string
}

// Normalize trims every field and validates the email when present.
func (p *Profile) Normalize() error {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.Email = strings.TrimSpace(p.Email)
	p.Phone = strings.TrimSpace(p.Phone)
	p.Address = strings.TrimSpace(p.Address)
	if p.Email != "" && !strings.Contains(p.Email, "@") {
		return ErrInvalidEmail
	}
	return nil
}

// Complete reports whether every contact field is filled.
func (p Profile) Complete() bool {
	return p.FirstName != "" && p.LastName != "" && p.Email != "" && p.Phone != "" && p.Address != ""
}

// User is an account that can authenticate against the API.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	Roles        []authz.Role
	IsActive     bool
	Employee     *Profile
	Customer     *Profile
	projection.Metadata
}

// NewUser builds an active user with a hashed password and validated roles.
func NewUser(id, username, password string, roles []authz.Role) (*User, error) {
	user := &User{ID: id, IsActive: true}
	if err := user.SetUsername(username); err != nil {
		return nil, err
	}
	if err := user.SetPassword(password); err != nil {
		return nil, err
	}
	if err := user.SetRoles(roles); err != nil {
		return nil, err
	}
	return user, nil
}

// SetUsername trims and validates the username.
func (u *User) SetUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return ErrEmptyUsername
	}
	u.Username = username
	return nil
}

// SetPassword hashes the plain-text password after basic strength checks.
func (u *User) SetPassword(password string) error {
	password = strings.TrimSpace(password)
	if password == "" {
		return ErrEmptyPassword
	}
	if len(password) < 4 {
		return ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword compares the supplied credentials with the stored hash.
func (u *User) CheckPassword(password string) bool {
	if u.PasswordHash == "" || strings.TrimSpace(password) == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(strings.TrimSpace(password))) == nil
}

// SetRoles replaces the role set. Duplicates collapse; Customer must stand alone.
func (u *User) SetRoles(roles []authz.Role) error {
	normalized, err := NormalizeRoles(roles)
	if err != nil {
		return err
	}
	u.Roles = normalized
	return nil
}

// NormalizeRoles validates and de-duplicates a role list, preserving order.
func NormalizeRoles(roles []authz.Role) ([]authz.Role, error) {
	if len(roles) == 0 {
		return nil, ErrNoRoles
	}
	seen := make(map[authz.Role]struct{}, len(roles))
	out := make([]authz.Role, 0, len(roles))
	for _, raw := range roles {
		role, ok := authz.ParseRole(string(raw))
		if !ok {
			return nil, ErrUnknownRole
		}
		if _, dup := seen[role]; dup {
			continue
		}
		seen[role] = struct{}{}
		out = append(out, role)
	}
	if _, customer := seen[authz.RoleCustomer]; customer && len(out) > 1 {
		return nil, ErrCustomerRoleExclusive
	}
	return out, nil
}

// HasRole reports whether the user holds role.
func (u *User) HasRole(role authz.Role) bool {
	return slices.Contains(u.Roles, role)
}

// IsCustomer reports whether this is a customer account.
func (u *User) IsCustomer() bool { return u.HasRole(authz.RoleCustomer) }

// IsStaff reports whether the user works for the business (employee or admin).
func (u *User) IsStaff() bool { return u.HasRole(authz.RoleEmployee) || u.HasRole(authz.RoleAdmin) }

// Deactivate marks the account inactive instead of removing it.
func (u *User) Deactivate() { u.IsActive = false }

// Actor exposes the identity used by the authorization gate.
func (u *User) Actor() authz.Actor {
	roles := make([]authz.Role, len(u.Roles))
	copy(roles, u.Roles)
	return authz.Actor{ID: u.ID, Roles: roles}
}

// Clone returns a deep copy safe to hand across adapter boundaries.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.Roles = append([]authz.Role(nil), u.Roles...)
	if u.Employee != nil {
		p := *u.Employee
		clone.Employee = &p
	}
	if u.Customer != nil {
		p := *u.Customer
		clone.Customer = &p
	}
	return &clone
}

// Validate re-applies core invariants before persistence.
func (u *User) Validate() error {
	if err := u.SetUsername(u.Username); err != nil {
		return err
	}
	if strings.TrimSpace(u.PasswordHash) == "" {
		return ErrEmptyPassword
	}
	if err := u.SetRoles(u.Roles); err != nil {
		return err
	}
	for _, p := range []*Profile{u.Employee, u.Customer} {
		if p == nil {
			continue
		}
		if err := p.Normalize(); err != nil {
			return err
		}
	}
	return nil
}
