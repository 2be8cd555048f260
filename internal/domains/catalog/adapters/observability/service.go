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

	catalogtypes "github.com/Apurer/go-gin-commerce-api/internal/domains/catalog/application/types"
	catalogdomain "github.com/Apurer/go-gin-commerce-api/internal/domains/catalog/domain"
	catalogports "github.com/Apurer/go-gin-commerce-api/internal/domains/catalog/ports"
)

const tracerName = "github.com/Apurer/go-gin-commerce-api/internal/domains/catalog/adapters/observability/service"

// Service decorates the catalog service with tracing, logging, and metrics.
type Service struct {
	inner   catalogports.Service
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

// New wraps the core catalog service.
func New(inner catalogports.Service, opts ...Option) catalogports.Service {
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

func (s *Service) List(ctx context.Context) ([]*catalogdomain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.List")
	defer span.End()
	products, err := s.inner.List(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list products")
	}
	span.SetAttributes(attribute.Int("catalog.count", len(products)))
	return products, nil
}

func (s *Service) ListShowroom(ctx context.Context) ([]*catalogdomain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.ListShowroom")
	defer span.End()
	products, err := s.inner.ListShowroom(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list showroom")
	}
	span.SetAttributes(attribute.Int("catalog.count", len(products)))
	return products, nil
}

func (s *Service) Get(ctx context.Context, id string) (*catalogdomain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.Get", trace.WithAttributes(attribute.String("product.id", id)))
	defer span.End()
	product, err := s.inner.Get(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to get product", slog.String("product_id", id))
	}
	return product, nil
}

func (s *Service) Create(ctx context.Context, input catalogtypes.ProductInput) (*catalogdomain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.Create", trace.WithAttributes(attribute.String("product.title", input.Title)))
	defer span.End()
	product, err := s.inner.Create(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create product")
	}
	if s.metrics.created != nil {
		s.metrics.created.Add(ctx, 1)
	}
	span.SetAttributes(attribute.String("product.id", product.ID), attribute.String("product.code", product.ProductCode))
	s.logger.LogAttrs(ctx, slog.LevelInfo, "product created",
		slog.String("product_id", product.ID),
		slog.String("product_code", product.ProductCode),
	)
	return product, nil
}

func (s *Service) Update(ctx context.Context, id string, input catalogtypes.ProductInput) (*catalogdomain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.Update", trace.WithAttributes(attribute.String("product.id", id)))
	defer span.End()
	product, err := s.inner.Update(ctx, id, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update product", slog.String("product_id", id))
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "product updated", slog.String("product_id", id))
	return product, nil
}

func (s *Service) Delete(ctx context.Context, id string) (*catalogdomain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.Delete", trace.WithAttributes(attribute.String("product.id", id)))
	defer span.End()
	product, err := s.inner.Delete(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to delete product", slog.String("product_id", id))
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "product deleted", slog.String("product_id", id))
	return product, nil
}

func (s *Service) UpdateImages(ctx context.Context, id string, images []string) (*catalogdomain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.UpdateImages", trace.WithAttributes(
		attribute.String("product.id", id),
		attribute.Int("product.images", len(images)),
	))
	defer span.End()
	product, err := s.inner.UpdateImages(ctx, id, images)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update product images", slog.String("product_id", id))
	}
	return product, nil
}

func (s *Service) SwitchState(ctx context.Context, id string, state string) (*catalogdomain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.SwitchState", trace.WithAttributes(
		attribute.String("product.id", id),
		attribute.String("product.state", state),
	))
	defer span.End()
	product, err := s.inner.SwitchState(ctx, id, state)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to switch product state", slog.String("product_id", id))
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "product state switched",
		slog.String("product_id", id),
		slog.String("state", string(product.State)),
	)
	return product, nil
}

func (s *Service) CheckCart(ctx context.Context, lines []catalogdomain.CartLine) ([]catalogdomain.CartMatch, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.CheckCart", trace.WithAttributes(attribute.Int("cart.lines", len(lines))))
	defer span.End()
	matches, err := s.inner.CheckCart(ctx, lines)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to check cart")
	}
	span.SetAttributes(attribute.Int("cart.admitted", len(matches)))
	return matches, nil
}

func (s *Service) Reserve(ctx context.Context, lines []catalogports.Reservation) error {
	ctx, span := s.tracer.Start(ctx, "CatalogService.Reserve", trace.WithAttributes(attribute.Int("reservation.lines", len(lines))))
	defer span.End()
	if err := s.inner.Reserve(ctx, lines); err != nil {
		if s.metrics.reservationsFailed != nil {
			s.metrics.reservationsFailed.Add(ctx, 1, metric.WithAttributes(
				attribute.Bool("insufficient", errors.Is(err, catalogports.ErrInsufficientStock)),
			))
		}
		return s.handleError(ctx, span, err, "failed to reserve stock")
	}
	return nil
}

func (s *Service) Release(ctx context.Context, lines []catalogports.Reservation) error {
	ctx, span := s.tracer.Start(ctx, "CatalogService.Release", trace.WithAttributes(attribute.Int("reservation.lines", len(lines))))
	defer span.End()
	if err := s.inner.Release(ctx, lines); err != nil {
		return s.handleError(ctx, span, err, "failed to release stock")
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "stock released", slog.Int("lines", len(lines)))
	return nil
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	attrs = append(attrs, slog.String("error", err.Error()))
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	return err
}

type serviceMetrics struct {
	created            metric.Int64Counter
	reservationsFailed metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	created, _ := m.Int64Counter("catalog.service.created", metric.WithDescription("Number of products created"))
	failed, _ := m.Int64Counter("catalog.service.stock_reservations_failed", metric.WithDescription("Number of rejected stock reservations"))
	return serviceMetrics{created: created, reservationsFailed: failed}
}

var _ catalogports.Service = (*Service)(nil)
