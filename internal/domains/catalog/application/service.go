package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	catalogtypes "github.com/Apurer/go-gin-commerce-api/internal/domains/catalog/application/types"
	"github.com/Apurer/go-gin-commerce-api/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-commerce-api/internal/domains/catalog/ports"
)

// ErrInvalidInput signals the request violated a catalog invariant.
var ErrInvalidInput = errors.New("invalid product input")

// ErrInactiveSupplier is returned when a product points at a missing or deactivated supplier.
var ErrInactiveSupplier = errors.New("supplier is not active")

const codeAttempts = 3

// Service implements catalog use cases.
type Service struct {
	repo      ports.Repository
	suppliers ports.SupplierDirectory
	now       func() time.Time
	newCode   func() string
}

// Option customises the service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithCodeGenerator overrides product code generation.
func WithCodeGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newCode = gen
		}
	}
}

// NewService wires the catalog. A nil supplier directory skips supplier checks.
func NewService(repo ports.Repository, suppliers ports.SupplierDirectory, opts ...Option) *Service {
	s := &Service{repo: repo, suppliers: suppliers, now: time.Now, newCode: domain.NewProductCode}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) List(ctx context.Context) ([]*domain.Product, error) {
	return s.repo.List(ctx, ports.ListFilter{})
}

// ListShowroom returns products customers can buy.
func (s *Service) ListShowroom(ctx context.Context) ([]*domain.Product, error) {
	return s.repo.List(ctx, ports.ListFilter{State: domain.StateShowroom})
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, input catalogtypes.ProductInput) (*domain.Product, error) {
	if err := domain.ValidateImageCount(input.ImageCount, false); err != nil {
		return nil, mapError(err)
	}
	if err := s.checkSupplier(ctx, input.SupplierID); err != nil {
		return nil, err
	}
	var lastErr error
	for attempt := 0; attempt < codeAttempts; attempt++ {
		product, err := domain.NewProduct(uuid.NewString(), s.newCode(), input.Details())
		if err != nil {
			return nil, mapError(err)
		}
		product.Touch(s.now())
		saved, err := s.repo.Save(ctx, product)
		if err == nil {
			return saved, nil
		}
		if !errors.Is(err, ports.ErrDuplicateProductCode) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (s *Service) Update(ctx context.Context, id string, input catalogtypes.ProductInput) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateImageCount(input.ImageCount, true); err != nil {
		return nil, mapError(err)
	}
	if input.SupplierID != product.SupplierID {
		if err := s.checkSupplier(ctx, input.SupplierID); err != nil {
			return nil, err
		}
	}
	if err := product.ApplyDetails(input.Details()); err != nil {
		return nil, mapError(err)
	}
	product.Touch(s.now())
	return s.repo.Save(ctx, product)
}

func (s *Service) Delete(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, product.ID); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *Service) UpdateImages(ctx context.Context, id string, images []string) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := product.SetImages(images); err != nil {
		return nil, mapError(err)
	}
	product.Touch(s.now())
	return s.repo.Save(ctx, product)
}

func (s *Service) SwitchState(ctx context.Context, id string, state string) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := product.SwitchState(state); err != nil {
		return nil, mapError(err)
	}
	product.Touch(s.now())
	return s.repo.Save(ctx, product)
}

// CheckCart filters the cart down to lines that can be fulfilled right now.
func (s *Service) CheckCart(ctx context.Context, lines []domain.CartLine) ([]domain.CartMatch, error) {
	if len(lines) == 0 {
		return []domain.CartMatch{}, nil
	}
	ids := make([]string, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.ProductID]; ok || line.ProductID == "" {
			continue
		}
		seen[line.ProductID] = struct{}{}
		ids = append(ids, line.ProductID)
	}
	if len(ids) == 0 {
		return []domain.CartMatch{}, nil
	}
	products, err := s.repo.List(ctx, ports.ListFilter{State: domain.StateShowroom, IDs: ids})
	if err != nil {
		return nil, err
	}
	return domain.CheckCart(lines, products), nil
}

func (s *Service) Reserve(ctx context.Context, lines []ports.Reservation) error {
	if err := validateReservations(lines); err != nil {
		return err
	}
	return s.repo.Reserve(ctx, lines)
}

func (s *Service) Release(ctx context.Context, lines []ports.Reservation) error {
	if err := validateReservations(lines); err != nil {
		return err
	}
	return s.repo.Release(ctx, lines)
}

func (s *Service) checkSupplier(ctx context.Context, supplierID string) error {
	if s.suppliers == nil || supplierID == "" {
		return nil
	}
	ok, err := s.suppliers.ActiveSupplier(ctx, supplierID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %w", ErrInvalidInput, ErrInactiveSupplier)
	}
	return nil
}

func validateReservations(lines []ports.Reservation) error {
	for _, line := range lines {
		if line.ProductID == "" || line.Color == "" || line.Qty <= 0 {
			return fmt.Errorf("%w: %w", ErrInvalidInput, domain.ErrInvalidQuantity)
		}
	}
	return nil
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyTitle) ||
		errors.Is(err, domain.ErrEmptyDescription) ||
		errors.Is(err, domain.ErrNonPositivePrice) ||
		errors.Is(err, domain.ErrEmptyCondition) ||
		errors.Is(err, domain.ErrInvalidState) ||
		errors.Is(err, domain.ErrEmptySupplier) ||
		errors.Is(err, domain.ErrNegativeQuantity) ||
		errors.Is(err, domain.ErrEmptyQuantity) ||
		errors.Is(err, domain.ErrImageCount) ||
		errors.Is(err, domain.ErrInvalidQuantity) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}

var _ ports.Service = (*Service)(nil)
