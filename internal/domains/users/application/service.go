package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	usertypes "github.com/Apurer/go-gin-commerce-api/internal/domains/users/application/types"
	"github.com/Apurer/go-gin-commerce-api/internal/domains/users/domain"
	"github.com/Apurer/go-gin-commerce-api/internal/domains/users/ports"
	"github.com/Apurer/go-gin-commerce-api/internal/shared/authz"
)

// Service exposes user bounded context use cases.
type Service struct {
	repo     ports.Repository
	sessions ports.SessionStore
	tokens   ports.TokenIssuer
	orders   ports.OrderReferences
	gate     *authz.Gate
	now      func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithOrderReferences lets deletes decide between soft and hard removal.
func WithOrderReferences(refs ports.OrderReferences) Option {
	return func(s *Service) {
		if refs != nil {
			s.orders = refs
		}
	}
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

func NewService(repo ports.Repository, sessions ports.SessionStore, tokens ports.TokenIssuer, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		sessions: sessions,
		tokens:   tokens,
		orders:   ports.NoOrderReferences,
		gate:     authz.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Service) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.repo.List(ctx, ports.ListFilter{})
}

func (s *Service) ListEmployees(ctx context.Context) ([]*domain.User, error) {
	return s.repo.List(ctx, ports.ListFilter{Role: authz.RoleEmployee, ActiveOnly: true})
}

func (s *Service) GetEmployee(ctx context.Context, actor authz.Actor, id string) (*domain.User, error) {
	user, err := s.getStaff(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Permit(actor, authz.RequireOwner(user.ID)); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) CreateEmployee(ctx context.Context, input usertypes.EmployeeInput) (*domain.User, error) {
	roles, err := staffRoles(input.Roles)
	if err != nil {
		return nil, mapError(err)
	}
	user, err := domain.NewUser(uuid.NewString(), input.Username, input.Password, roles)
	if err != nil {
		return nil, mapError(err)
	}
	user.Employee = employeeProfile(input.Profile)
	if err := s.ensureUsernameFree(ctx, user.Username, ""); err != nil {
		return nil, err
	}
	user.Touch(s.now())
	if err := user.Validate(); err != nil {
		return nil, mapError(err)
	}
	return s.repo.Create(ctx, user)
}

func (s *Service) UpdateEmployee(ctx context.Context, id string, input usertypes.EmployeeInput) (*domain.User, error) {
	user, err := s.getStaff(ctx, id)
	if err != nil {
		return nil, err
	}
	roles, err := staffRoles(input.Roles)
	if err != nil {
		return nil, mapError(err)
	}
	if err := user.SetUsername(input.Username); err != nil {
		return nil, mapError(err)
	}
	if err := s.ensureUsernameFree(ctx, user.Username, user.ID); err != nil {
		return nil, err
	}
	user.Roles = roles
	user.Employee = employeeProfile(input.Profile)
	if strings.TrimSpace(input.Password) != "" {
		if err := user.SetPassword(input.Password); err != nil {
			return nil, mapError(err)
		}
	}
	user.Touch(s.now())
	if err := user.Validate(); err != nil {
		return nil, mapError(err)
	}
	return s.repo.Update(ctx, user)
}

func (s *Service) DeleteEmployee(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.getStaff(ctx, id)
	if err != nil {
		return nil, err
	}
	referenced, err := s.orders.EmployeeHandlesOrders(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return s.remove(ctx, user, referenced)
}

func (s *Service) ListCustomers(ctx context.Context) ([]*domain.User, error) {
	return s.repo.List(ctx, ports.ListFilter{Role: authz.RoleCustomer, ActiveOnly: true})
}

func (s *Service) GetCustomer(ctx context.Context, id string) (*domain.User, error) {
	return s.getCustomer(ctx, id)
}

func (s *Service) CreateCustomer(ctx context.Context, input usertypes.CustomerInput) (*domain.User, error) {
	if err := validateCustomerInput(input); err != nil {
		return nil, mapError(err)
	}
	user, err := domain.NewUser(uuid.NewString(), input.Username, input.Password, input.Roles)
	if err != nil {
		return nil, mapError(err)
	}
	user.Customer = input.Profile.ToDomain()
	if err := s.ensureUsernameFree(ctx, user.Username, ""); err != nil {
		return nil, err
	}
	user.Touch(s.now())
	if err := user.Validate(); err != nil {
		return nil, mapError(err)
	}
	return s.repo.Create(ctx, user)
}

func (s *Service) UpdateCustomer(ctx context.Context, id string, input usertypes.CustomerInput) (*domain.User, error) {
	user, err := s.getCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validateCustomerInput(input); err != nil {
		return nil, mapError(err)
	}
	if err := user.SetUsername(input.Username); err != nil {
		return nil, mapError(err)
	}
	if err := s.ensureUsernameFree(ctx, user.Username, user.ID); err != nil {
		return nil, err
	}
	user.Customer = input.Profile.ToDomain()
	if strings.TrimSpace(input.Password) != "" {
		if err := user.SetPassword(input.Password); err != nil {
			return nil, mapError(err)
		}
	}
	user.Touch(s.now())
	if err := user.Validate(); err != nil {
		return nil, mapError(err)
	}
	return s.repo.Update(ctx, user)
}

func (s *Service) DeleteCustomer(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.getCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	referenced, err := s.orders.CustomerHasOrders(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return s.remove(ctx, user, referenced)
}

// Register creates a customer account for an anonymous caller.
func (s *Service) Register(ctx context.Context, input usertypes.CustomerInput) (*domain.User, error) {
	input.Roles = []authz.Role{authz.RoleCustomer}
	return s.CreateCustomer(ctx, input)
}

func (s *Service) Login(ctx context.Context, username, password string) (*usertypes.LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || strings.TrimSpace(password) == "" {
		return nil, mapError(ports.ErrInvalidCredentials)
	}
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, mapError(ports.ErrInvalidCredentials)
		}
		return nil, err
	}
	if !user.IsActive || !user.CheckPassword(password) {
		return nil, mapError(ports.ErrInvalidCredentials)
	}

	claims := ports.TokenClaims{
		SessionID: uuid.NewString(),
		UserID:    user.ID,
		Username:  user.Username,
		Roles:     user.Roles,
		ExpiresAt: s.now().Add(s.tokens.TTL()),
	}
	token, err := s.tokens.Issue(claims)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	session := ports.Session{ID: claims.SessionID, UserID: user.ID, ExpiresAt: claims.ExpiresAt}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return &usertypes.LoginResult{Token: token, ExpiresAt: claims.ExpiresAt, User: user}, nil
}

func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return nil
	}
	return s.sessions.Delete(ctx, sessionID)
}

// Authenticate resolves a bearer token to the live account behind it.
func (s *Service) Authenticate(ctx context.Context, token string) (authz.Actor, ports.TokenClaims, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return authz.Actor{}, ports.TokenClaims{}, mapError(fmt.Errorf("%w: %v", ports.ErrInvalidToken, err))
	}
	session, err := s.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		return authz.Actor{}, ports.TokenClaims{}, mapError(err)
	}
	if session.UserID != claims.UserID {
		return authz.Actor{}, ports.TokenClaims{}, mapError(ports.ErrInvalidToken)
	}
	user, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return authz.Actor{}, ports.TokenClaims{}, mapError(ports.ErrInvalidToken)
		}
		return authz.Actor{}, ports.TokenClaims{}, err
	}
	if !user.IsActive {
		return authz.Actor{}, ports.TokenClaims{}, mapError(ports.ErrInvalidToken)
	}
	return user.Actor(), claims, nil
}

func (s *Service) GetProfile(ctx context.Context, actor authz.Actor) (*domain.User, error) {
	return s.repo.GetByID(ctx, actor.ID)
}

func (s *Service) UpdateProfile(ctx context.Context, actor authz.Actor, input usertypes.ProfileUpdateInput) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if err := user.SetUsername(input.Username); err != nil {
		return nil, mapError(err)
	}
	if err := s.ensureUsernameFree(ctx, user.Username, user.ID); err != nil {
		return nil, err
	}
	profile := input.Profile.ToDomain()
	if err := profile.Normalize(); err != nil {
		return nil, mapError(err)
	}
	if user.IsCustomer() {
		if !profile.Complete() {
			return nil, mapError(domain.ErrIncompleteProfile)
		}
		user.Customer = profile
	} else {
		user.Employee = profile
	}
	if strings.TrimSpace(input.Password) != "" {
		if err := user.SetPassword(input.Password); err != nil {
			return nil, mapError(err)
		}
	}
	user.Touch(s.now())
	if err := user.Validate(); err != nil {
		return nil, mapError(err)
	}
	return s.repo.Update(ctx, user)
}

func (s *Service) remove(ctx context.Context, user *domain.User, referenced bool) (*domain.User, error) {
	if referenced {
		user.Deactivate()
		user.Touch(s.now())
		updated, err := s.repo.Update(ctx, user)
		if err != nil {
			return nil, err
		}
		user = updated
	} else if err := s.repo.Delete(ctx, user.ID); err != nil {
		return nil, err
	}
	if err := s.sessions.DeleteByUser(ctx, user.ID); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) getStaff(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.IsStaff() {
		return nil, ports.ErrNotFound
	}
	return user, nil
}

func (s *Service) getCustomer(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.IsCustomer() {
		return nil, ports.ErrNotFound
	}
	return user, nil
}

func (s *Service) ensureUsernameFree(ctx context.Context, username, ownerID string) error {
	existing, err := s.repo.GetByUsername(ctx, username)
	switch {
	case errors.Is(err, ports.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != ownerID:
		return ports.ErrDuplicateUsername
	default:
		return nil
	}
}

func staffRoles(roles []authz.Role) ([]authz.Role, error) {
	normalized, err := domain.NormalizeRoles(roles)
	if err != nil {
		return nil, err
	}
	for _, role := range normalized {
		if role == authz.RoleCustomer {
			return nil, domain.ErrStaffRoleRequired
		}
	}
	return normalized, nil
}

func validateCustomerInput(input usertypes.CustomerInput) error {
	roles, err := domain.NormalizeRoles(input.Roles)
	if err != nil {
		return err
	}
	if len(roles) != 1 || roles[0] != authz.RoleCustomer || len(input.Roles) != 1 {
		return domain.ErrInvalidCustomerRole
	}
	profile := input.Profile.ToDomain()
	if err := profile.Normalize(); err != nil {
		return err
	}
	if !profile.Complete() {
		return domain.ErrIncompleteProfile
	}
	return nil
}

func employeeProfile(input *usertypes.ProfileInput) *domain.Profile {
	if input == nil {
		return &domain.Profile{}
	}
	return input.ToDomain()
}

var _ ports.Service = (*Service)(nil)
