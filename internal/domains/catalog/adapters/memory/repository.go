package memory

import (
	"context"
	"errors"
	"slices"
	"sort"
	"sync"

	"github.com/Apurer/go-gin-commerce-api/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-commerce-api/internal/domains/catalog/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory catalog. Stock changes happen under the write lock.
type Repository struct {
	mu       sync.RWMutex
	products map[string]*domain.Product
}

func NewRepository() *Repository {
	return &Repository{products: map[string]*domain.Product{}}
}

// Save upserts a product. Sold counters of an existing product are preserved.
func (r *Repository) Save(_ context.Context, product *domain.Product) (*domain.Product, error) {
	if product == nil {
		return nil, errors.New("product is nil")
	}
	clone := product.Clone()
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, existing := range r.products {
		if id != clone.ID && existing.ProductCode == clone.ProductCode {
			return nil, ports.ErrDuplicateProductCode
		}
	}
	if existing, ok := r.products[clone.ID]; ok {
		clone.CreatedAt = existing.CreatedAt
		clone.SoldInfo = existing.Clone().SoldInfo
	}
	r.products[clone.ID] = clone
	return clone.Clone(), nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	product, ok := r.products[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return product.Clone(), nil
}

func (r *Repository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return ports.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *Repository) List(_ context.Context, filter ports.ListFilter) ([]*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Product, 0, len(r.products))
	for _, product := range r.products {
		if filter.State != "" && product.State != filter.State {
			continue
		}
		if len(filter.IDs) > 0 && !slices.Contains(filter.IDs, product.ID) {
			continue
		}
		list = append(list, product.Clone())
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}

// Reserve checks every line against current stock before touching anything.
func (r *Repository) Reserve(_ context.Context, lines []ports.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	wanted := map[string]map[string]int{}
	for _, line := range lines {
		product, ok := r.products[line.ProductID]
		if !ok {
			return ports.ErrNotFound
		}
		if wanted[product.ID] == nil {
			wanted[product.ID] = map[string]int{}
		}
		wanted[product.ID][line.Color] += line.Qty
		if !product.Available(line.Color, wanted[product.ID][line.Color]) {
			return ports.ErrInsufficientStock
		}
	}
	for _, line := range lines {
		if err := r.products[line.ProductID].Reserve(line.Color, line.Qty); err != nil {
			return err
		}
	}
	return nil
}

// Release skips lines whose product has been deleted.
func (r *Repository) Release(_ context.Context, lines []ports.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, line := range lines {
		product, ok := r.products[line.ProductID]
		if !ok {
			continue
		}
		if err := product.Release(line.Color, line.Qty); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) SupplierReferenced(_ context.Context, supplierID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, product := range r.products {
		if product.SupplierID == supplierID {
			return true, nil
		}
	}
	return false, nil
}
