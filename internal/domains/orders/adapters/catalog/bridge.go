package catalog

import (
	"context"
	"errors"
	"fmt"

	catalogapp "github.com/Apurer/go-gin-commerce-api/internal/domains/catalog/application"
	catalogdomain "github.com/Apurer/go-gin-commerce-api/internal/domains/catalog/domain"
	catalogports "github.com/Apurer/go-gin-commerce-api/internal/domains/catalog/ports"
	"github.com/Apurer/go-gin-commerce-api/internal/domains/orders/ports"
)

var _ ports.Catalog = (*Bridge)(nil)

// Bridge exposes the catalog service to the orders domain.
type Bridge struct {
	catalog catalogports.Service
}

func NewBridge(catalog catalogports.Service) *Bridge {
	return &Bridge{catalog: catalog}
}

func (b *Bridge) Product(ctx context.Context, id string) (*ports.CatalogProduct, error) {
	product, err := b.catalog.Get(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	return &ports.CatalogProduct{
		ID:          product.ID,
		ProductCode: product.ProductCode,
		Title:       product.Title,
		Condition:   product.Condition,
		Image:       product.PrimaryImage(),
		Price:       product.Price,
		Showroom:    product.InShowroom(),
	}, nil
}

func (b *Bridge) Reserve(ctx context.Context, lines []ports.Reservation) error {
	return translate(b.catalog.Reserve(ctx, toCatalog(lines)))
}

func (b *Bridge) Release(ctx context.Context, lines []ports.Reservation) error {
	return translate(b.catalog.Release(ctx, toCatalog(lines)))
}

func toCatalog(lines []ports.Reservation) []catalogports.Reservation {
	out := make([]catalogports.Reservation, 0, len(lines))
	for _, line := range lines {
		out = append(out, catalogports.Reservation{ProductID: line.ProductID, Color: line.Color, Qty: line.Qty})
	}
	return out
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, catalogports.ErrNotFound):
		return ports.ErrProductNotFound
	case errors.Is(err, catalogdomain.ErrInsufficientStock):
		return ports.ErrInsufficientStock
	case errors.Is(err, catalogapp.ErrInvalidInput):
		return fmt.Errorf("%w: %w", ports.ErrProductUnavailable, err)
	default:
		return err
	}
}
