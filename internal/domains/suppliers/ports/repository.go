package ports

import (
	"context"
	"errors"

	"github.com/Apurer/go-gin-commerce-api/internal/domains/suppliers/domain"
)

var ErrNotFound = errors.New("supplier not found")

// Repository persists suppliers.
type Repository interface {
	Save(ctx context.Context, supplier *domain.Supplier) (*domain.Supplier, error)
	GetByID(ctx context.Context, id string) (*domain.Supplier, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, activeOnly bool) ([]*domain.Supplier, error)
}

// ProductReferences reports whether any catalog product still points at a supplier.
type ProductReferences interface {
	SupplierReferenced(ctx context.Context, supplierID string) (bool, error)
}
