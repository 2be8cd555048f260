package ports

import (
	"context"

	catalogtypes "github.com/Apurer/go-gin-commerce-api/internal/domains/catalog/application/types"
	"github.com/Apurer/go-gin-commerce-api/internal/domains/catalog/domain"
)

// Service defines catalog use cases exposed to adapters.
type Service interface {
	List(ctx context.Context) ([]*domain.Product, error)
	ListShowroom(ctx context.Context) ([]*domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, input catalogtypes.ProductInput) (*domain.Product, error)
	Update(ctx context.Context, id string, input catalogtypes.ProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id string) (*domain.Product, error)
	UpdateImages(ctx context.Context, id string, images []string) (*domain.Product, error)
	SwitchState(ctx context.Context, id string, state string) (*domain.Product, error)
	CheckCart(ctx context.Context, lines []domain.CartLine) ([]domain.CartMatch, error)
	Reserve(ctx context.Context, lines []Reservation) error
	Release(ctx context.Context, lines []Reservation) error
}
