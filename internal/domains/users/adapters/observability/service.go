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

	usertypes "github.com/Apurer/go-gin-commerce-api/internal/domains/users/application/types"
	userdomain "github.com/Apurer/go-gin-commerce-api/internal/domains/users/domain"
	userports "github.com/Apurer/go-gin-commerce-api/internal/domains/users/ports"
	"github.com/Apurer/go-gin-commerce-api/internal/shared/authz"
)

const tracerName = "github.com/Apurer/go-gin-commerce-api/internal/domains/users/adapters/observability/service"

// Service decorates the user service with tracing, logging, and metrics.
type Service struct {
	inner   userports.Service
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

// New wraps the core user service.
func New(inner userports.Service, opts ...Option) userports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
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
		s.logger = defaultLogger()
	}
	return s
}

func (s *Service) ListUsers(ctx context.Context) ([]*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.ListUsers")
	defer span.End()
	users, err := s.inner.ListUsers(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list users")
	}
	span.SetAttributes(attribute.Int("user.count", len(users)))
	return users, nil
}

func (s *Service) ListEmployees(ctx context.Context) ([]*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.ListEmployees")
	defer span.End()
	users, err := s.inner.ListEmployees(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list employees")
	}
	return users, nil
}

func (s *Service) GetEmployee(ctx context.Context, actor authz.Actor, id string) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.GetEmployee", trace.WithAttributes(attribute.String("user.id", id), attribute.String("actor.id", actor.ID)))
	defer span.End()
	user, err := s.inner.GetEmployee(ctx, actor, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to get employee", slog.String("user_id", id))
	}
	return user, nil
}

func (s *Service) CreateEmployee(ctx context.Context, input usertypes.EmployeeInput) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.CreateEmployee", trace.WithAttributes(attribute.String("user.username", input.Username)))
	defer span.End()
	s.logInfo(ctx, "creating employee", slog.String("username", input.Username))
	user, err := s.inner.CreateEmployee(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create employee", slog.String("username", input.Username))
	}
	s.metrics.recordCreated(ctx, authz.RoleEmployee)
	s.logInfo(ctx, "employee created", slog.String("user_id", user.ID))
	return user, nil
}

func (s *Service) UpdateEmployee(ctx context.Context, id string, input usertypes.EmployeeInput) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.UpdateEmployee", trace.WithAttributes(attribute.String("user.id", id)))
	defer span.End()
	user, err := s.inner.UpdateEmployee(ctx, id, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update employee", slog.String("user_id", id))
	}
	s.metrics.recordUpdated(ctx)
	return user, nil
}

func (s *Service) DeleteEmployee(ctx context.Context, id string) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.DeleteEmployee", trace.WithAttributes(attribute.String("user.id", id)))
	defer span.End()
	user, err := s.inner.DeleteEmployee(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to delete employee", slog.String("user_id", id))
	}
	s.recordRemoval(ctx, span, user)
	return user, nil
}

func (s *Service) ListCustomers(ctx context.Context) ([]*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.ListCustomers")
	defer span.End()
	users, err := s.inner.ListCustomers(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list customers")
	}
	return users, nil
}

func (s *Service) GetCustomer(ctx context.Context, id string) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.GetCustomer", trace.WithAttributes(attribute.String("user.id", id)))
	defer span.End()
	user, err := s.inner.GetCustomer(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to get customer", slog.String("user_id", id))
	}
	return user, nil
}

func (s *Service) CreateCustomer(ctx context.Context, input usertypes.CustomerInput) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.CreateCustomer", trace.WithAttributes(attribute.String("user.username", input.Username)))
	defer span.End()
	user, err := s.inner.CreateCustomer(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create customer", slog.String("username", input.Username))
	}
	s.metrics.recordCreated(ctx, authz.RoleCustomer)
	s.logInfo(ctx, "customer created", slog.String("user_id", user.ID))
	return user, nil
}

func (s *Service) UpdateCustomer(ctx context.Context, id string, input usertypes.CustomerInput) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.UpdateCustomer", trace.WithAttributes(attribute.String("user.id", id)))
	defer span.End()
	user, err := s.inner.UpdateCustomer(ctx, id, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update customer", slog.String("user_id", id))
	}
	s.metrics.recordUpdated(ctx)
	return user, nil
}

func (s *Service) DeleteCustomer(ctx context.Context, id string) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.DeleteCustomer", trace.WithAttributes(attribute.String("user.id", id)))
	defer span.End()
	user, err := s.inner.DeleteCustomer(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to delete customer", slog.String("user_id", id))
	}
	s.recordRemoval(ctx, span, user)
	return user, nil
}

func (s *Service) Register(ctx context.Context, input usertypes.CustomerInput) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Register", trace.WithAttributes(attribute.String("user.username", input.Username)))
	defer span.End()
	user, err := s.inner.Register(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "registration failed", slog.String("username", input.Username))
	}
	s.metrics.recordCreated(ctx, authz.RoleCustomer)
	s.logInfo(ctx, "customer registered", slog.String("user_id", user.ID))
	return user, nil
}

func (s *Service) Login(ctx context.Context, username, password string) (*usertypes.LoginResult, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Login", trace.WithAttributes(attribute.String("user.username", username)))
	defer span.End()
	result, err := s.inner.Login(ctx, username, password)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "login failed", slog.String("username", username))
	}
	s.metrics.recordLogin(ctx)
	return result, nil
}

func (s *Service) Logout(ctx context.Context, sessionID string) error {
	ctx, span := s.tracer.Start(ctx, "UserService.Logout")
	defer span.End()
	if err := s.inner.Logout(ctx, sessionID); err != nil {
		return s.handleError(ctx, span, err, "logout failed")
	}
	return nil
}

// Authenticate runs on every request, so it only traces and never logs success.
func (s *Service) Authenticate(ctx context.Context, token string) (authz.Actor, userports.TokenClaims, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Authenticate")
	defer span.End()
	actor, claims, err := s.inner.Authenticate(ctx, token)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return authz.Actor{}, userports.TokenClaims{}, err
	}
	span.SetAttributes(attribute.String("actor.id", actor.ID))
	return actor, claims, nil
}

func (s *Service) GetProfile(ctx context.Context, actor authz.Actor) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.GetProfile", trace.WithAttributes(attribute.String("actor.id", actor.ID)))
	defer span.End()
	user, err := s.inner.GetProfile(ctx, actor)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load profile", slog.String("user_id", actor.ID))
	}
	return user, nil
}

func (s *Service) UpdateProfile(ctx context.Context, actor authz.Actor, input usertypes.ProfileUpdateInput) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.UpdateProfile", trace.WithAttributes(attribute.String("actor.id", actor.ID)))
	defer span.End()
	user, err := s.inner.UpdateProfile(ctx, actor, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update profile", slog.String("user_id", actor.ID))
	}
	s.metrics.recordUpdated(ctx)
	return user, nil
}

func (s *Service) recordRemoval(ctx context.Context, span trace.Span, user *userdomain.User) {
	soft := user != nil && !user.IsActive
	span.SetAttributes(attribute.Bool("user.soft_deleted", soft))
	s.metrics.recordDeleted(ctx, soft)
	if user != nil {
		s.logInfo(ctx, "user removed", slog.String("user_id", user.ID), slog.Bool("soft", soft))
	}
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

type serviceMetrics struct {
	usersCreated metric.Int64Counter
	usersUpdated metric.Int64Counter
	usersDeleted metric.Int64Counter
	logins       metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	created, _ := m.Int64Counter("users.service.created", metric.WithDescription("Number of accounts created"))
	updated, _ := m.Int64Counter("users.service.updated", metric.WithDescription("Number of accounts updated"))
	deleted, _ := m.Int64Counter("users.service.deleted", metric.WithDescription("Number of accounts removed or deactivated"))
	logins, _ := m.Int64Counter("users.service.logins", metric.WithDescription("Number of successful logins"))
	return serviceMetrics{usersCreated: created, usersUpdated: updated, usersDeleted: deleted, logins: logins}
}

func (m serviceMetrics) recordCreated(ctx context.Context, role authz.Role) {
	if m.usersCreated != nil {
		m.usersCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("role", string(role))))
	}
}

func (m serviceMetrics) recordUpdated(ctx context.Context) {
	if m.usersUpdated != nil {
		m.usersUpdated.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordDeleted(ctx context.Context, soft bool) {
	if m.usersDeleted != nil {
		m.usersDeleted.Add(ctx, 1, metric.WithAttributes(attribute.Bool("soft", soft)))
	}
}

func (m serviceMetrics) recordLogin(ctx context.Context) {
	if m.logins != nil {
		m.logins.Add(ctx, 1)
	}
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var _ userports.Service = (*Service)(nil)
