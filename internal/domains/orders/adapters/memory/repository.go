package memory

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/Apurer/go-gin-commerce-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-commerce-api/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository keeps every order variant in one map.
type Repository struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
}

func NewRepository() *Repository {
	return &Repository{orders: map[string]*domain.Order{}}
}

func (r *Repository) Create(_ context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	clone := order.Clone()
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[clone.ID]; ok {
		return nil, ports.ErrDuplicateOrder
	}
	clone.Version = 1
	r.orders[clone.ID] = clone
	return clone.Clone(), nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return order.Clone(), nil
}

// Update replaces the order when the caller saw the latest version.
func (r *Repository) Update(_ context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	clone := order.Clone()
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.orders[clone.ID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	if current.Version != clone.Version || current.Kind() != clone.Kind() {
		return nil, ports.ErrStaleOrder
	}
	clone.Version++
	clone.CreatedAt = current.CreatedAt
	r.orders[clone.ID] = clone
	return clone.Clone(), nil
}

func (r *Repository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[id]; !ok {
		return ports.ErrNotFound
	}
	delete(r.orders, id)
	return nil
}

// List returns matching orders, newest first.
func (r *Repository) List(_ context.Context, filter ports.ListFilter) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Order, 0)
	for _, order := range r.orders {
		if matches(order, filter) {
			list = append(list, order.Clone())
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}

func matches(order *domain.Order, filter ports.ListFilter) bool {
	if len(filter.Kinds) > 0 && !slices.Contains(filter.Kinds, order.Kind()) {
		return false
	}
	if filter.CustomerID != "" && order.CustomerID != filter.CustomerID {
		return false
	}
	if filter.HandledBy != "" && order.HandledBy() != filter.HandledBy {
		return false
	}
	if filter.Available {
		request, ok := order.ServiceRequest()
		if !ok || request.IsUndertaken {
			return false
		}
	}
	return true
}

// Accept binds the handler only when nobody has accepted the request yet.
func (r *Repository) Accept(_ context.Context, id, handlerID string, at time.Time) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	next := current.Clone()
	request, ok := next.ServiceRequest()
	if !ok {
		return nil, ports.ErrNotFound
	}
	if err := request.Accept(handlerID); err != nil {
		return nil, err
	}
	next.Touch(at)
	next.Version++
	r.orders[id] = next
	return next.Clone(), nil
}

// MarkPaid flips an unpaid purchase to paid.
func (r *Repository) MarkPaid(_ context.Context, id string, paidAt time.Time, result map[string]any) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	next := current.Clone()
	purchase, ok := next.Purchase()
	if !ok {
		return nil, ports.ErrNotFound
	}
	if err := purchase.MarkPaid(paidAt, maps.Clone(result)); err != nil {
		return nil, err
	}
	next.Touch(paidAt)
	next.Version++
	r.orders[id] = next
	return next.Clone(), nil
}

// CustomerHasOrders reports whether any order belongs to the customer.
func (r *Repository) CustomerHasOrders(_ context.Context, customerID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, order := range r.orders {
		if order.CustomerID == customerID {
			return true, nil
		}
	}
	return false, nil
}

// EmployeeHandlesOrders reports whether the employee handles any in-store or service order.
func (r *Repository) EmployeeHandlesOrders(_ context.Context, employeeID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, order := range r.orders {
		if order.HandledBy() == employeeID {
			return true, nil
		}
	}
	return false, nil
}
