package ports

import (
	"context"

	usertypes "github.com/Apurer/go-gin-commerce-api/internal/domains/users/application/types"
	"github.com/Apurer/go-gin-commerce-api/internal/domains/users/domain"
	"github.com/Apurer/go-gin-commerce-api/internal/shared/authz"
)

// Service exposes user bounded context use cases to adapters.
type Service interface {
	ListUsers(ctx context.Context) ([]*domain.User, error)

	ListEmployees(ctx context.Context) ([]*domain.User, error)
	GetEmployee(ctx context.Context, actor authz.Actor, id string) (*domain.User, error)
	CreateEmployee(ctx context.Context, input usertypes.EmployeeInput) (*domain.User, error)
	UpdateEmployee(ctx context.Context, id string, input usertypes.EmployeeInput) (*domain.User, error)
	DeleteEmployee(ctx context.Context, id string) (*domain.User, error)

	ListCustomers(ctx context.Context) ([]*domain.User, error)
	GetCustomer(ctx context.Context, id string) (*domain.User, error)
	CreateCustomer(ctx context.Context, input usertypes.CustomerInput) (*domain.User, error)
	UpdateCustomer(ctx context.Context, id string, input usertypes.CustomerInput) (*domain.User, error)
	DeleteCustomer(ctx context.Context, id string) (*domain.User, error)

	Register(ctx context.Context, input usertypes.CustomerInput) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*usertypes.LoginResult, error)
	Logout(ctx context.Context, sessionID string) error
	Authenticate(ctx context.Context, token string) (authz.Actor, TokenClaims, error)

	GetProfile(ctx context.Context, actor authz.Actor) (*domain.User, error)
	UpdateProfile(ctx context.Context, actor authz.Actor, input usertypes.ProfileUpdateInput) (*domain.User, error)
}
