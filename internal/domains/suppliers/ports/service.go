package ports

import (
	"context"

	suppliertypes "github.com/Apurer/go-gin-commerce-api/internal/domains/suppliers/application/types"
	"github.com/Apurer/go-gin-commerce-api/internal/domains/suppliers/domain"
)

// Service defines the supplier use cases exposed to adapters.
type Service interface {
	Create(ctx context.Context, input suppliertypes.SupplierInput) (*domain.Supplier, error)
	List(ctx context.Context) ([]*domain.Supplier, error)
	Get(ctx context.Context, id string) (*domain.Supplier, error)
	Update(ctx context.Context, id string, input suppliertypes.SupplierInput) (*domain.Supplier, error)
	// Remove deactivates referenced suppliers and deletes the rest.
	Remove(ctx context.Context, id string) (*domain.Supplier, error)
}
