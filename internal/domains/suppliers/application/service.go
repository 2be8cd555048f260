package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	suppliertypes "github.com/Apurer/go-gin-commerce-api/internal/domains/suppliers/application/types"
	"github.com/Apurer/go-gin-commerce-api/internal/domains/suppliers/domain"
	"github.com/Apurer/go-gin-commerce-api/internal/domains/suppliers/ports"
)

// ErrInvalidInput signals the request violated a domain invariant.
var ErrInvalidInput = errors.New("invalid supplier input")

// Service implements supplier management.
type Service struct {
	repo     ports.Repository
	products ports.ProductReferences
	now      func() time.Time
}

func NewService(repo ports.Repository, products ports.ProductReferences) *Service {
	return &Service{repo: repo, products: products, now: time.Now}
}

func (s *Service) Create(ctx context.Context, input suppliertypes.SupplierInput) (*domain.Supplier, error) {
	supplier, err := domain.NewSupplier(uuid.NewString(), input.Name, input.Email, input.Phone)
	if err != nil {
		return nil, mapError(err)
	}
	supplier.Touch(s.now())
	return s.repo.Save(ctx, supplier)
}

// List returns active suppliers only.
func (s *Service) List(ctx context.Context) ([]*domain.Supplier, error) {
	return s.repo.List(ctx, true)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Supplier, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, id string, input suppliertypes.SupplierInput) (*domain.Supplier, error) {
	supplier, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := supplier.UpdateContact(input.Name, input.Email, input.Phone); err != nil {
		return nil, mapError(err)
	}
	supplier.Touch(s.now())
	return s.repo.Save(ctx, supplier)
}

func (s *Service) Remove(ctx context.Context, id string) (*domain.Supplier, error) {
	supplier, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	referenced := false
	if s.products != nil {
		if referenced, err = s.products.SupplierReferenced(ctx, supplier.ID); err != nil {
			return nil, err
		}
	}
	if !referenced {
		if err := s.repo.Delete(ctx, supplier.ID); err != nil {
			return nil, err
		}
		return supplier, nil
	}
	supplier.Deactivate()
	supplier.Touch(s.now())
	return s.repo.Save(ctx, supplier)
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyName) ||
		errors.Is(err, domain.ErrEmptyEmail) ||
		errors.Is(err, domain.ErrInvalidEmail) ||
		errors.Is(err, domain.ErrEmptyPhone) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}

var _ ports.Service = (*Service)(nil)
