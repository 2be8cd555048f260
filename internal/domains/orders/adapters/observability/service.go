package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	ordertypes "github.com/Apurer/go-gin-commerce-api/internal/domains/orders/application/types"
	orderdomain "github.com/Apurer/go-gin-commerce-api/internal/domains/orders/domain"
	orderports "github.com/Apurer/go-gin-commerce-api/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-commerce-api/internal/shared/authz"
)

const tracerName = "github.com/Apurer/go-gin-commerce-api/internal/domains/orders/adapters/observability/service"

// Service decorates the orders service with tracing, logging, and metrics.
type Service struct {
	inner   orderports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) { s.tracer = tr }
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) { s.metrics = newServiceMetrics(m) }
}

// New wraps the core orders service.
func New(inner orderports.Service, opts ...Option) orderports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s
}

func (s *Service) CreateInplace(ctx context.Context, actor authz.Actor, input ordertypes.InplaceInput) (*orderdomain.Order, error) {
	order, err := s.one(ctx, "OrdersService.CreateInplace", actor, "", func(ctx context.Context) (*orderdomain.Order, error) {
		return s.inner.CreateInplace(ctx, actor, input)
	})
	if err == nil {
		s.created(ctx, order)
	}
	return order, err
}

func (s *Service) GetInplace(ctx context.Context, actor authz.Actor, id string) (*orderdomain.Order, error) {
	return s.one(ctx, "OrdersService.GetInplace", actor, id, func(ctx context.Context) (*orderdomain.Order, error) {
		return s.inner.GetInplace(ctx, actor, id)
	})
}

func (s *Service) UpdateInplace(ctx context.Context, actor authz.Actor, id string, input ordertypes.InplaceInput) (*orderdomain.Order, error) {
	return s.one(ctx, "OrdersService.UpdateInplace", actor, id, func(ctx context.Context) (*orderdomain.Order, error) {
		return s.inner.UpdateInplace(ctx, actor, id, input)
	})
}

func (s *Service) DeleteInplace(ctx context.Context, actor authz.Actor, id string) (*orderdomain.Order, error) {
	order, err := s.one(ctx, "OrdersService.DeleteInplace", actor, id, func(ctx context.Context) (*orderdomain.Order, error) {
		return s.inner.DeleteInplace(ctx, actor, id)
	})
	if err == nil {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "order deleted", slog.String("order_id", id), slog.String("actor_id", actor.ID))
	}
	return order, err
}

func (s *Service) ListInplaceByEmployee(ctx context.Context, actor authz.Actor, employeeID string) ([]*orderdomain.Order, error) {
	return s.many(ctx, "OrdersService.ListInplaceByEmployee", actor, func(ctx context.Context) ([]*orderdomain.Order, error) {
		return s.inner.ListInplaceByEmployee(ctx, actor, employeeID)
	})
}

func (s *Service) ListInplaceByCustomer(ctx context.Context, actor authz.Actor, customerID string) ([]*orderdomain.Order, error) {
	return s.many(ctx, "OrdersService.ListInplaceByCustomer", actor, func(ctx context.Context) ([]*orderdomain.Order, error) {
		return s.inner.ListInplaceByCustomer(ctx, actor, customerID)
	})
}

func (s *Service) ListEmployeeSales(ctx context.Context, actor authz.Actor, employeeID string) ([]*orderdomain.Order, error) {
	return s.many(ctx, "OrdersService.ListEmployeeSales", actor, func(ctx context.Context) ([]*orderdomain.Order, error) {
		return s.inner.ListEmployeeSales(ctx, actor, employeeID)
	})
}

func (s *Service) CreateServiceRequest(ctx context.Context, actor authz.Actor, input ordertypes.ServiceRequestInput) (*orderdomain.Order, error) {
	order, err := s.one(ctx, "OrdersService.CreateServiceRequest", actor, "", func(ctx context.Context) (*orderdomain.Order, error) {
		return s.inner.CreateServiceRequest(ctx, actor, input)
	})
	if err == nil {
		s.created(ctx, order)
	}
	return order, err
}

func (s *Service) GetServiceRequest(ctx context.Context, actor authz.Actor, id string) (*orderdomain.Order, error) {
	return s.one(ctx, "OrdersService.GetServiceRequest", actor, id, func(ctx context.Context) (*orderdomain.Order, error) {
		return s.inner.GetServiceRequest(ctx, actor, id)
	})
}

func (s *Service) UpdateServiceRequest(ctx context.Context, actor authz.Actor, id string, input ordertypes.ServiceRequestInput) (*orderdomain.Order, error) {
	return s.one(ctx, "OrdersService.UpdateServiceRequest", actor, id, func(ctx context.Context) (*orderdomain.Order, error) {
		return s.inner.UpdateServiceRequest(ctx, actor, id, input)
	})
}

func (s *Service) ListServiceRequestsByCustomer(ctx context.Context, actor authz.Actor, customerID string) ([]*orderdomain.Order, error) {
	return s.many(ctx, "OrdersService.ListServiceRequestsByCustomer", actor, func(ctx context.Context) ([]*orderdomain.Order, error) {
		return s.inner.ListServiceRequestsByCustomer(ctx, actor, customerID)
	})
}

func (s *Service) ListAvailableServiceRequests(ctx context.Context, actor authz.Actor) ([]*orderdomain.Order, error) {
	return s.many(ctx, "OrdersService.ListAvailableServiceRequests", actor, func(ctx context.Context) ([]*orderdomain.Order, error) {
		return s.inner.ListAvailableServiceRequests(ctx, actor)
	})
}

func (s *Service) AcceptServiceRequest(ctx context.Context, actor authz.Actor, id string) (*orderdomain.Order, error) {
	order, err := s.one(ctx, "OrdersService.AcceptServiceRequest", actor, id, func(ctx context.Context) (*orderdomain.Order, error) {
		return s.inner.AcceptServiceRequest(ctx, actor, id)
	})
	if s.metrics.accepts != nil && (err == nil || errors.Is(err, orderports.ErrAlreadyUndertaken)) {
		s.metrics.accepts.Add(ctx, 1, metric.WithAttributes(attribute.Bool("won", err == nil)))
	}
	if err == nil {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "service request accepted",
			slog.String("order_id", id),
			slog.String("handled_by", actor.ID),
		)
	}
	return order, err
}

func (s *Service) ProgressServiceRequest(ctx context.Context, actor authz.Actor, id string, input ordertypes.ProgressInput) (*orderdomain.Order, error) {
	return s.one(ctx, "OrdersService.ProgressServiceRequest", actor, id, func(ctx context.Context) (*orderdomain.Order, error) {
		trace.SpanFromContext(ctx).SetAttributes(attribute.String("order.progress", input.Type))
		return s.inner.ProgressServiceRequest(ctx, actor, id, input)
	})
}

func (s *Service) PlacePurchase(ctx context.Context, actor authz.Actor, input ordertypes.PurchaseInput) (*orderdomain.Order, error) {
	order, err := s.one(ctx, "OrdersService.PlacePurchase", actor, "", func(ctx context.Context) (*orderdomain.Order, error) {
		trace.SpanFromContext(ctx).SetAttributes(
			attribute.Int("order.items", len(input.Items)),
			attribute.Bool("order.idempotent", input.IdempotencyKey != ""),
		)
		return s.inner.PlacePurchase(ctx, actor, input)
	})
	if err != nil {
		if s.metrics.purchasesRejected != nil {
			s.metrics.purchasesRejected.Add(ctx, 1, metric.WithAttributes(
				attribute.Bool("insufficient_stock", errors.Is(err, orderports.ErrInsufficientStock)),
			))
		}
		return nil, err
	}
	s.created(ctx, order)
	return order, nil
}

func (s *Service) ListPurchases(ctx context.Context, actor authz.Actor) ([]*orderdomain.Order, error) {
	return s.many(ctx, "OrdersService.ListPurchases", actor, func(ctx context.Context) ([]*orderdomain.Order, error) {
		return s.inner.ListPurchases(ctx, actor)
	})
}

func (s *Service) ListOwnPurchases(ctx context.Context, actor authz.Actor) ([]*orderdomain.Order, error) {
	return s.many(ctx, "OrdersService.ListOwnPurchases", actor, func(ctx context.Context) ([]*orderdomain.Order, error) {
		return s.inner.ListOwnPurchases(ctx, actor)
	})
}

func (s *Service) GetPurchase(ctx context.Context, actor authz.Actor, id string) (*orderdomain.Order, error) {
	return s.one(ctx, "OrdersService.GetPurchase", actor, id, func(ctx context.Context) (*orderdomain.Order, error) {
		return s.inner.GetPurchase(ctx, actor, id)
	})
}

func (s *Service) PayPurchase(ctx context.Context, actor authz.Actor, id string, input ordertypes.PaymentInput) (*orderdomain.Order, error) {
	order, err := s.one(ctx, "OrdersService.PayPurchase", actor, id, func(ctx context.Context) (*orderdomain.Order, error) {
		return s.inner.PayPurchase(ctx, actor, id, input)
	})
	if err == nil {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "purchase paid", slog.String("order_id", id))
	}
	return order, err
}

func (s *Service) UpdatePurchaseStatus(ctx context.Context, actor authz.Actor, id string, status string) (*orderdomain.Order, error) {
	order, err := s.one(ctx, "OrdersService.UpdatePurchaseStatus", actor, id, func(ctx context.Context) (*orderdomain.Order, error) {
		trace.SpanFromContext(ctx).SetAttributes(attribute.String("order.status", status))
		return s.inner.UpdatePurchaseStatus(ctx, actor, id, status)
	})
	if err == nil {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "purchase status changed",
			slog.String("order_id", id),
			slog.String("status", order.Status()),
		)
	}
	return order, err
}

func (s *Service) one(ctx context.Context, name string, actor authz.Actor, id string, fn func(context.Context) (*orderdomain.Order, error)) (*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, name, trace.WithAttributes(attribute.String("actor.id", actor.ID)))
	defer span.End()
	if id != "" {
		span.SetAttributes(attribute.String("order.id", id))
	}
	order, err := fn(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "order operation failed",
			slog.String("operation", name),
			slog.String("order_id", id),
		)
	}
	span.SetAttributes(attribute.String("order.kind", string(order.Kind())))
	return order, nil
}

func (s *Service) many(ctx context.Context, name string, actor authz.Actor, fn func(context.Context) ([]*orderdomain.Order, error)) ([]*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, name, trace.WithAttributes(attribute.String("actor.id", actor.ID)))
	defer span.End()
	orders, err := fn(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "order listing failed", slog.String("operation", name))
	}
	span.SetAttributes(attribute.Int("orders.count", len(orders)))
	return orders, nil
}

func (s *Service) created(ctx context.Context, order *orderdomain.Order) {
	if s.metrics.created != nil {
		s.metrics.created.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", string(order.Kind()))))
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "order created",
		slog.String("order_id", order.ID),
		slog.String("kind", string(order.Kind())),
		slog.String("customer_id", order.CustomerID),
	)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	attrs = append(attrs, slog.String("error", err.Error()))
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	return err
}

type serviceMetrics struct {
	created           metric.Int64Counter
	purchasesRejected metric.Int64Counter
	accepts           metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	created, _ := m.Int64Counter("orders.service.created", metric.WithDescription("Number of orders created"))
	rejected, _ := m.Int64Counter("orders.service.purchases_rejected", metric.WithDescription("Number of purchases that failed to check out"))
	accepts, _ := m.Int64Counter("orders.service.accept_attempts", metric.WithDescription("Accept attempts on service requests"))
	return serviceMetrics{created: created, purchasesRejected: rejected, accepts: accepts}
}

var _ orderports.Service = (*Service)(nil)
