package ports

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-commerce-api/internal/domains/orders/domain"
)

var (
	ErrNotFound          = errors.New("order not found")
	ErrDuplicateOrder    = errors.New("order already exists")
	ErrStaleOrder        = errors.New("order was modified concurrently")
	ErrAlreadyUndertaken = domain.ErrAlreadyUndertaken
	ErrAlreadyPaid       = domain.ErrAlreadyPaid

	ErrProductNotFound    = errors.New("product not found")
	ErrProductUnavailable = errors.New("product is not available for purchase")
	ErrInsufficientStock  = errors.New("insufficient stock")
)

// ListFilter narrows List. Zero values match everything; HandledBy matches in-store and service orders.
type ListFilter struct {
	Kinds      []domain.Kind
	CustomerID string
	HandledBy  string

	// Available restricts service requests to those nobody has accepted.
	Available bool
}

// Repository persists every order variant in one store.
type Repository interface {
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	// Update writes the order when its stored version still equals order.Version.
	Update(ctx context.Context, order *domain.Order) (*domain.Order, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]*domain.Order, error)
	// Accept binds handlerID to a service request that is not yet undertaken.
	Accept(ctx context.Context, id, handlerID string, at time.Time) (*domain.Order, error)
	// MarkPaid flips an unpaid purchase to paid.
	MarkPaid(ctx context.Context, id string, paidAt time.Time, result map[string]any) (*domain.Order, error)
}

// Transactor runs fn so that every repository call made with its context commits or rolls back together.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Reservation takes Qty units of Color of a product.
type Reservation struct {
	ProductID string
	Color     string
	Qty       int
}

// CatalogProduct is the catalog view needed to price a line.
type CatalogProduct struct {
	ID          string
	ProductCode string
	Title       string
	Condition   string
	Image       string
	Price       decimal.Decimal
	Showroom    bool
}

// Catalog is the slice of the product catalog that purchases depend on.
type Catalog interface {
	Product(ctx context.Context, id string) (*CatalogProduct, error)
	Reserve(ctx context.Context, lines []Reservation) error
	Release(ctx context.Context, lines []Reservation) error
}
