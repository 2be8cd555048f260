package ports

import (
	"context"
	"errors"

	"github.com/Apurer/go-gin-commerce-api/internal/domains/users/domain"
	"github.com/Apurer/go-gin-commerce-api/internal/shared/authz"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// ListFilter narrows List results. Zero values match everything.
type ListFilter struct {
	Role       authz.Role
	ActiveOnly bool
}

// Repository persists user accounts. List orders active users first, then by creation time.
type Repository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]*domain.User, error)
}

// OrderReferences answers whether an account is still referenced by orders.
type OrderReferences interface {
	CustomerHasOrders(ctx context.Context, customerID string) (bool, error)
	EmployeeHandlesOrders(ctx context.Context, employeeID string) (bool, error)
}

// NoOrderReferences treats every account as unreferenced.
var NoOrderReferences OrderReferences = noOrderReferences{}

type noOrderReferences struct{}

func (noOrderReferences) CustomerHasOrders(context.Context, string) (bool, error)     { return false, nil }
func (noOrderReferences) EmployeeHandlesOrders(context.Context, string) (bool, error) { return false, nil }
