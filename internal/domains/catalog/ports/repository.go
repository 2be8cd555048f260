package ports

import (
	"context"
	"errors"

	"github.com/Apurer/go-gin-commerce-api/internal/domains/catalog/domain"
)

var (
	ErrNotFound             = errors.New("product not found")
	ErrDuplicateProductCode = errors.New("product code already exists")
	ErrInsufficientStock    = domain.ErrInsufficientStock
)

// Reservation takes Qty units of one color of a product out of stock.
type Reservation struct {
	ProductID string
	Color     string
	Qty       int
}

// ListFilter narrows List. Zero values match everything.
type ListFilter struct {
	State domain.State
	IDs   []string
}

// Repository persists catalog products.
type Repository interface {
	Save(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]*domain.Product, error)
	// Reserve applies every reservation or none. Each line decrements stock only when
	// enough remains and adds the same quantity to the sold counter.
	Reserve(ctx context.Context, lines []Reservation) error
	// Release undoes reservations. Lines for products that no longer exist are skipped.
	Release(ctx context.Context, lines []Reservation) error
	SupplierReferenced(ctx context.Context, supplierID string) (bool, error)
}

// SupplierDirectory confirms that a supplier can be attached to a product.
type SupplierDirectory interface {
	ActiveSupplier(ctx context.Context, id string) (bool, error)
}
