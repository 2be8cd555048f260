package types

import (
	"time"

	"github.com/Apurer/go-gin-commerce-api/internal/domains/users/domain"
	"github.com/Apurer/go-gin-commerce-api/internal/shared/authz"
)

// ProfileInput carries optional contact details for an account.
type ProfileInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Address   string
}

// ToDomain copies the input into a domain profile.
func (p ProfileInput) ToDomain() *domain.Profile {
	return &domain.Profile{
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Email:     p.Email,
		Phone:     p.Phone,
		Address:   p.Address,
	}
}

// EmployeeInput creates or updates a staff account. Password is optional on update.
type EmployeeInput struct {
	Username string
	Password string
	Roles    []authz.Role
	Profile  *ProfileInput
}

// CustomerInput creates or updates a customer account. Password is optional on update.
type CustomerInput struct {
	Username string
	Password string
	Roles    []authz.Role
	Profile  ProfileInput
}

// ProfileUpdateInput changes the caller's own account.
type ProfileUpdateInput struct {
	Username string
	Password string
	Profile  ProfileInput
}

// LoginResult is returned after a successful authentication.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}
