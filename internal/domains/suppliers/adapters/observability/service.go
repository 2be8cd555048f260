package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	suppliertypes "github.com/Apurer/go-gin-commerce-api/internal/domains/suppliers/application/types"
	supplierdomain "github.com/Apurer/go-gin-commerce-api/internal/domains/suppliers/domain"
	supplierports "github.com/Apurer/go-gin-commerce-api/internal/domains/suppliers/ports"
)

const tracerName = "github.com/Apurer/go-gin-commerce-api/internal/domains/suppliers/adapters/observability/service"

// Service decorates the supplier service with tracing, logging, and metrics.
type Service struct {
	inner   supplierports.Service
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

// New wraps the core supplier service.
func New(inner supplierports.Service, opts ...Option) supplierports.Service {
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

func (s *Service) Create(ctx context.Context, input suppliertypes.SupplierInput) (*supplierdomain.Supplier, error) {
	ctx, span := s.tracer.Start(ctx, "SupplierService.Create", trace.WithAttributes(attribute.String("supplier.name", input.Name)))
	defer span.End()
	supplier, err := s.inner.Create(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create supplier")
	}
	if s.metrics.created != nil {
		s.metrics.created.Add(ctx, 1)
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "supplier created", slog.String("supplier_id", supplier.ID))
	return supplier, nil
}

func (s *Service) List(ctx context.Context) ([]*supplierdomain.Supplier, error) {
	ctx, span := s.tracer.Start(ctx, "SupplierService.List")
	defer span.End()
	suppliers, err := s.inner.List(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list suppliers")
	}
	return suppliers, nil
}

func (s *Service) Get(ctx context.Context, id string) (*supplierdomain.Supplier, error) {
	ctx, span := s.tracer.Start(ctx, "SupplierService.Get", trace.WithAttributes(attribute.String("supplier.id", id)))
	defer span.End()
	supplier, err := s.inner.Get(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to get supplier", slog.String("supplier_id", id))
	}
	return supplier, nil
}

func (s *Service) Update(ctx context.Context, id string, input suppliertypes.SupplierInput) (*supplierdomain.Supplier, error) {
	ctx, span := s.tracer.Start(ctx, "SupplierService.Update", trace.WithAttributes(attribute.String("supplier.id", id)))
	defer span.End()
	supplier, err := s.inner.Update(ctx, id, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update supplier", slog.String("supplier_id", id))
	}
	return supplier, nil
}

func (s *Service) Remove(ctx context.Context, id string) (*supplierdomain.Supplier, error) {
	ctx, span := s.tracer.Start(ctx, "SupplierService.Remove", trace.WithAttributes(attribute.String("supplier.id", id)))
	defer span.End()
	supplier, err := s.inner.Remove(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to remove supplier", slog.String("supplier_id", id))
	}
	soft := !supplier.IsActive
	span.SetAttributes(attribute.Bool("supplier.soft_deleted", soft))
	if s.metrics.removed != nil {
		s.metrics.removed.Add(ctx, 1, metric.WithAttributes(attribute.Bool("soft", soft)))
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "supplier removed", slog.String("supplier_id", id), slog.Bool("soft", soft))
	return supplier, nil
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	attrs = append(attrs, slog.String("error", err.Error()))
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	return err
}

type serviceMetrics struct {
	created metric.Int64Counter
	removed metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	created, _ := m.Int64Counter("suppliers.service.created", metric.WithDescription("Number of suppliers created"))
	removed, _ := m.Int64Counter("suppliers.service.removed", metric.WithDescription("Number of suppliers removed or deactivated"))
	return serviceMetrics{created: created, removed: removed}
}

var _ supplierports.Service = (*Service)(nil)
