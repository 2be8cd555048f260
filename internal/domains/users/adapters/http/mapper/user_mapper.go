package mapper

import (
	"time"

	usertypes "github.com/Apurer/go-gin-commerce-api/internal/domains/users/application/types"
	userdomain "github.com/Apurer/go-gin-commerce-api/internal/domains/users/domain"
	"github.com/Apurer/go-gin-commerce-api/internal/shared/authz"
)

// Profile is the transport shape of contact details.
type Profile struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address,omitempty"`
}

// User is the transport representation of an account. The password hash never leaves the service.
type User struct {
	ID        string       `json:"_id"`
	Username  string       `json:"username"`
	Roles     []authz.Role `json:"roles"`
	IsActive  bool         `json:"isActive"`
	Employee  *Profile     `json:"employee,omitempty"`
	Customer  *Profile     `json:"customer,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// FromDomainUser converts a domain user into a transport representation.
func FromDomainUser(user *userdomain.User) User {
	if user == nil {
		return User{}
	}
	roles := append([]authz.Role{}, user.Roles...)
	return User{
		ID:        user.ID,
		Username:  user.Username,
		Roles:     roles,
		IsActive:  user.IsActive,
		Employee:  fromDomainProfile(user.Employee),
		Customer:  fromDomainProfile(user.Customer),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// FromDomainUsers converts a slice of domain users to transport representation.
func FromDomainUsers(users []*userdomain.User) []User {
	result := make([]User, 0, len(users))
	for _, user := range users {
		result = append(result, FromDomainUser(user))
	}
	return result
}

// ToProfileInput converts a transport profile into a use-case input.
func ToProfileInput(p Profile) usertypes.ProfileInput {
	return usertypes.ProfileInput{
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Email:     p.Email,
		Phone:     p.Phone,
		Address:   p.Address,
	}
}

// ToRoles converts raw role names. Unknown names are kept so the service can reject them.
func ToRoles(raw []string) []authz.Role {
	roles := make([]authz.Role, 0, len(raw))
	for _, r := range raw {
		roles = append(roles, authz.Role(r))
	}
	return roles
}

func fromDomainProfile(p *userdomain.Profile) *Profile {
	if p == nil {
		return nil
	}
	return &Profile{FirstName: p.FirstName, LastName: p.LastName, Email: p.Email, Phone: p.Phone, Address: p.Address}
}

// EmployeeRequest is the body of employee create and update. The password is optional on update.
type EmployeeRequest struct {
	Username string   `json:"username"`
	Password string   `json:"password"`
	Roles    []string `json:"roles"`
	Employee *Profile `json:"employee"`
}

// CustomerRequest is the flat body used for customer accounts and registration.
type CustomerRequest struct {
	Username  string   `json:"username"`
	Password  string   `json:"password"`
	Roles     []string `json:"roles"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Email     string   `json:"email"`
	Phone     string   `json:"phone"`
	Address   string   `json:"address"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ProfileRequest updates the caller's own account.
type ProfileRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

func ToEmployeeInput(req EmployeeRequest) usertypes.EmployeeInput {
	input := usertypes.EmployeeInput{
		Username: req.Username,
		Password: req.Password,
		Roles:    ToRoles(req.Roles),
	}
	if req.Employee != nil {
		profile := ToProfileInput(*req.Employee)
		input.Profile = &profile
	}
	return input
}

func ToCustomerInput(req CustomerRequest) usertypes.CustomerInput {
	return usertypes.CustomerInput{
		Username: req.Username,
		Password: req.Password,
		Roles:    ToRoles(req.Roles),
		Profile: usertypes.ProfileInput{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Email:     req.Email,
			Phone:     req.Phone,
			Address:   req.Address,
		},
	}
}

func ToProfileUpdateInput(req ProfileRequest) usertypes.ProfileUpdateInput {
	return usertypes.ProfileUpdateInput{
		Username: req.Username,
		Password: req.Password,
		Profile: usertypes.ProfileInput{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Email:     req.Email,
			Phone:     req.Phone,
			Address:   req.Address,
		},
	}
}
