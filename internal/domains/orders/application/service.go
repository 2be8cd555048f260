package application

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	ordertypes "github.com/Apurer/go-gin-commerce-api/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-commerce-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-commerce-api/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-commerce-api/internal/shared/authz"
	"github.com/Apurer/go-gin-commerce-api/internal/shared/geo"
)

// Service implements the order workflows for every order variant.
type Service struct {
	repo     ports.Repository
	catalog  ports.Catalog
	tx       ports.Transactor
	idem     ports.IdempotencyStore
	checkout ports.CheckoutRunner
	gate     *authz.Gate
	now      func() time.Time
	newID    func() string
}

// Option customises the service.
type Option func(*Service)

// WithIdempotencyStore enables Idempotency-Key handling for purchases.
func WithIdempotencyStore(store ports.IdempotencyStore) Option {
	return func(s *Service) { s.idem = store }
}

// WithCheckout replaces the inline checkout, for example with the durable one.
func WithCheckout(runner ports.CheckoutRunner) Option {
	return func(s *Service) { s.checkout = runner }
}

// WithGate overrides the authorization gate.
func WithGate(gate *authz.Gate) Option {
	return func(s *Service) {
		if gate != nil {
			s.gate = gate
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides order ID generation.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// NewService wires the order service. A nil transactor runs steps directly.
func NewService(repo ports.Repository, catalog ports.Catalog, tx ports.Transactor, opts ...Option) *Service {
	if tx == nil {
		tx = directTransactor{}
	}
	s := &Service{
		repo:    repo,
		catalog: catalog,
		tx:      tx,
		gate:    authz.Default(),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type directTransactor struct{}

func (directTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// CreateInplace records a counter sale handled by the calling employee.
func (s *Service) CreateInplace(ctx context.Context, actor authz.Actor, input ordertypes.InplaceInput) (*domain.Order, error) {
	if err := s.gate.Permit(actor, authz.RequireRole(authz.RoleEmployee)); err != nil {
		return nil, err
	}
	payload, err := domain.NewInplace(input.Description, input.Price, input.Status, actor.ID)
	if err != nil {
		return nil, mapError(err)
	}
	order, err := domain.NewOrder(s.newID(), input.CustomerID, payload)
	if err != nil {
		return nil, mapError(err)
	}
	order.Touch(s.now())
	return s.repo.Create(ctx, order)
}

func (s *Service) GetInplace(ctx context.Context, actor authz.Actor, id string) (*domain.Order, error) {
	order, err := s.load(ctx, id, domain.KindInplace)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Permit(actor, authz.RequireOwner(order.HandledBy())); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *Service) UpdateInplace(ctx context.Context, actor authz.Actor, id string, input ordertypes.InplaceInput) (*domain.Order, error) {
	order, err := s.GetInplace(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	payload, _ := order.Inplace()
	if err := payload.Revise(input.Description, input.Price, input.Status); err != nil {
		return nil, mapError(err)
	}
	customerID := strings.TrimSpace(input.CustomerID)
	if customerID == "" {
		return nil, mapError(domain.ErrEmptyCustomer)
	}
	order.CustomerID = customerID
	order.Touch(s.now())
	return s.repo.Update(ctx, order)
}

func (s *Service) DeleteInplace(ctx context.Context, actor authz.Actor, id string) (*domain.Order, error) {
	order, err := s.GetInplace(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, order.ID); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *Service) ListInplaceByEmployee(ctx context.Context, actor authz.Actor, employeeID string) ([]*domain.Order, error) {
	if err := s.gate.Permit(actor, authz.RequireOwner(employeeID)); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, ports.ListFilter{Kinds: []domain.Kind{domain.KindInplace}, HandledBy: employeeID})
}

func (s *Service) ListInplaceByCustomer(ctx context.Context, actor authz.Actor, customerID string) ([]*domain.Order, error) {
	if err := s.gate.Permit(actor, authz.RequireOwner(customerID)); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, ports.ListFilter{Kinds: []domain.Kind{domain.KindInplace}, CustomerID: customerID})
}

// ListEmployeeSales returns the in-store and service orders an employee handled.
func (s *Service) ListEmployeeSales(ctx context.Context, actor authz.Actor, employeeID string) ([]*domain.Order, error) {
	if err := s.gate.Permit(actor, authz.RequireOwner(employeeID)); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, ports.ListFilter{
		Kinds:     []domain.Kind{domain.KindInplace, domain.KindOnlineService},
		HandledBy: employeeID,
	})
}

// CreateServiceRequest opens a pending request owned by the caller.
func (s *Service) CreateServiceRequest(ctx context.Context, actor authz.Actor, input ordertypes.ServiceRequestInput) (*domain.Order, error) {
	if actor.ID == "" {
		return nil, authz.ErrUnauthorized
	}
	location, err := geo.FromLongLat(input.Location.Long, input.Location.Lat)
	if err != nil {
		return nil, mapError(err)
	}
	payload, err := domain.NewServiceRequest(input.Problem, input.Contact, location)
	if err != nil {
		return nil, mapError(err)
	}
	order, err := domain.NewOrder(s.newID(), actor.ID, payload)
	if err != nil {
		return nil, mapError(err)
	}
	order.Touch(s.now())
	return s.repo.Create(ctx, order)
}

func (s *Service) GetServiceRequest(ctx context.Context, actor authz.Actor, id string) (*domain.Order, error) {
	order, err := s.load(ctx, id, domain.KindOnlineService)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Permit(actor, authz.RequireOwner(order.CustomerID)); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *Service) UpdateServiceRequest(ctx context.Context, actor authz.Actor, id string, input ordertypes.ServiceRequestInput) (*domain.Order, error) {
	order, err := s.GetServiceRequest(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	location, err := geo.FromLongLat(input.Location.Long, input.Location.Lat)
	if err != nil {
		return nil, mapError(err)
	}
	payload, _ := order.ServiceRequest()
	if err := payload.Revise(input.Problem, input.Contact, location); err != nil {
		return nil, mapError(err)
	}
	order.Touch(s.now())
	return s.repo.Update(ctx, order)
}

func (s *Service) ListServiceRequestsByCustomer(ctx context.Context, actor authz.Actor, customerID string) ([]*domain.Order, error) {
	if err := s.gate.Permit(actor, authz.RequireOwner(customerID)); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, ports.ListFilter{Kinds: []domain.Kind{domain.KindOnlineService}, CustomerID: customerID})
}

// ListAvailableServiceRequests returns requests nobody has accepted yet.
func (s *Service) ListAvailableServiceRequests(ctx context.Context, actor authz.Actor) ([]*domain.Order, error) {
	if err := s.gate.Permit(actor, authz.RequireRole(authz.RoleEmployee)); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, ports.ListFilter{Kinds: []domain.Kind{domain.KindOnlineService}, Available: true})
}

// AcceptServiceRequest binds the caller to the request. Only the first accept wins.
func (s *Service) AcceptServiceRequest(ctx context.Context, actor authz.Actor, id string) (*domain.Order, error) {
	order, err := s.load(ctx, id, domain.KindOnlineService)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Permit(actor, authz.RequireRole(authz.RoleEmployee)); err != nil {
		return nil, err
	}
	payload, _ := order.ServiceRequest()
	if err := payload.Accept(actor.ID); err != nil {
		return nil, mapError(err)
	}
	return s.repo.Accept(ctx, order.ID, actor.ID, s.now())
}

// ProgressServiceRequest applies a price, completion or re-accept update by the handler.
func (s *Service) ProgressServiceRequest(ctx context.Context, actor authz.Actor, id string, input ordertypes.ProgressInput) (*domain.Order, error) {
	order, err := s.load(ctx, id, domain.KindOnlineService)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Permit(actor, authz.RequireOwner(order.HandledBy())); err != nil {
		return nil, err
	}
	payload, _ := order.ServiceRequest()
	switch strings.ToLower(strings.TrimSpace(input.Type)) {
	case ordertypes.ProgressPrice:
		err = payload.Quote(input.Price)
	case ordertypes.ProgressCompletion:
		err = payload.Complete()
	case ordertypes.ProgressAccepted:
		err = payload.Reopen()
	default:
		err = ErrUnknownProgress
	}
	if err != nil {
		return nil, mapError(err)
	}
	order.Touch(s.now())
	return s.repo.Update(ctx, order)
}

// load fetches an order and hides orders of another variant behind not found.
func (s *Service) load(ctx context.Context, id string, kind domain.Kind) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Kind() != kind {
		return nil, ports.ErrNotFound
	}
	return order, nil
}

var _ ports.Service = (*Service)(nil)
