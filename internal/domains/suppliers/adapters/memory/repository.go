package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/Apurer/go-gin-commerce-api/internal/domains/suppliers/domain"
	"github.com/Apurer/go-gin-commerce-api/internal/domains/suppliers/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory supplier persistence adapter.
type Repository struct {
	mu        sync.RWMutex
	suppliers map[string]*domain.Supplier
}

func NewRepository() *Repository {
	return &Repository{suppliers: map[string]*domain.Supplier{}}
}

func (r *Repository) Save(_ context.Context, supplier *domain.Supplier) (*domain.Supplier, error) {
	if supplier == nil {
		return nil, errors.New("supplier is nil")
	}
	clone := *supplier
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.suppliers[clone.ID]; ok {
		clone.CreatedAt = existing.CreatedAt
	}
	r.suppliers[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*domain.Supplier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	supplier, ok := r.suppliers[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := *supplier
	return &clone, nil
}

// ActiveSupplier reports whether id names an active supplier.
func (r *Repository) ActiveSupplier(_ context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	supplier, ok := r.suppliers[id]
	return ok && supplier.IsActive, nil
}

func (r *Repository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.suppliers[id]; !ok {
		return ports.ErrNotFound
	}
	delete(r.suppliers, id)
	return nil
}

func (r *Repository) List(_ context.Context, activeOnly bool) ([]*domain.Supplier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Supplier, 0, len(r.suppliers))
	for _, supplier := range r.suppliers {
		if activeOnly && !supplier.IsActive {
			continue
		}
		clone := *supplier
		list = append(list, &clone)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}
