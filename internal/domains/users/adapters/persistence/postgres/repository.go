package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/Apurer/go-gin-commerce-api/internal/domains/users/domain"
	"github.com/Apurer/go-gin-commerce-api/internal/domains/users/ports"
	platformpostgres "github.com/Apurer/go-gin-commerce-api/internal/platform/postgres"
	"github.com/Apurer/go-gin-commerce-api/internal/shared/authz"
	"github.com/Apurer/go-gin-commerce-api/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists users in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle and migrations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type profileRecord struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

type userRecord struct {
	ID              string         `gorm:"primaryKey;column:id;size:64"`
	Username        string         `gorm:"column:username;uniqueIndex"`
	PasswordHash    string         `gorm:"column:password_hash"`
	Roles           pq.StringArray `gorm:"column:roles;type:text[]"`
	IsActive        bool           `gorm:"column:is_active;index"`
	EmployeeProfile *profileRecord `gorm:"column:employee_profile;type:jsonb;serializer:json"`
	CustomerProfile *profileRecord `gorm:"column:customer_profile;type:jsonb;serializer:json"`
	CreatedAt       time.Time      `gorm:"column:created_at;index"`
	UpdatedAt       time.Time      `gorm:"column:updated_at"`
}

func (userRecord) TableName() string { return "users" }

var updatableColumns = []string{"username", "password_hash", "roles", "is_active", "employee_profile", "customer_profile", "updated_at"}

// Create inserts a new user. Username collisions surface as ErrDuplicateUsername.
func (r *Repository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user is nil")
	}
	clone := user.Clone()
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	record := toRecord(clone)
	if err := platformpostgres.Conn(ctx, r.db).Create(&record).Error; err != nil {
		if platformpostgres.IsUniqueViolation(err) {
			return nil, ports.ErrDuplicateUsername
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// Update overwrites the mutable columns of an existing user.
func (r *Repository) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user is nil")
	}
	clone := user.Clone()
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	record := toRecord(clone)
	result := platformpostgres.Conn(ctx, r.db).
		Model(&userRecord{}).
		Where("id = ?", record.ID).
		Select(updatableColumns).
		Updates(&record)
	if result.Error != nil {
		if platformpostgres.IsUniqueViolation(result.Error) {
			return nil, ports.ErrDuplicateUsername
		}
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrNotFound
	}
	return r.GetByID(ctx, record.ID)
}

// GetByID fetches a user by identifier.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.first(ctx, "id = ?", strings.TrimSpace(id))
}

// GetByUsername fetches a user by username.
func (r *Repository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.first(ctx, "username = ?", strings.TrimSpace(username))
}

// Delete removes a user by identifier.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := platformpostgres.Conn(ctx, r.db).Where("id = ?", strings.TrimSpace(id)).Delete(&userRecord{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// List returns users matching filter, active first and oldest first.
func (r *Repository) List(ctx context.Context, filter ports.ListFilter) ([]*domain.User, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := platformpostgres.Conn(ctx, r.db).Model(&userRecord{})
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if filter.Role != "" {
		query = query.Where("? = ANY(roles)", string(filter.Role))
	}
	var records []userRecord
	if err := query.Order("is_active DESC").Order("created_at ASC").Order("id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	users := make([]*domain.User, 0, len(records))
	for i := range records {
		users = append(users, records[i].toDomain())
	}
	return users, nil
}

func (r *Repository) first(ctx context.Context, query string, arg any) (*domain.User, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record userRecord
	if err := platformpostgres.Conn(ctx, r.db).Where(query, arg).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres user repository not configured")
	}
	return nil
}

func toRecord(user *domain.User) userRecord {
	roles := make(pq.StringArray, 0, len(user.Roles))
	for _, role := range user.Roles {
		roles = append(roles, string(role))
	}
	return userRecord{
		ID:              user.ID,
		Username:        user.Username,
		PasswordHash:    user.PasswordHash,
		Roles:           roles,
		IsActive:        user.IsActive,
		EmployeeProfile: toProfileRecord(user.Employee),
		CustomerProfile: toProfileRecord(user.Customer),
		CreatedAt:       user.CreatedAt,
		UpdatedAt:       user.UpdatedAt,
	}
}

func toProfileRecord(p *domain.Profile) *profileRecord {
	if p == nil {
		return nil
	}
	return &profileRecord{FirstName: p.FirstName, LastName: p.LastName, Email: p.Email, Phone: p.Phone, Address: p.Address}
}

func (r userRecord) toDomain() *domain.User {
	roles := make([]authz.Role, 0, len(r.Roles))
	for _, role := range r.Roles {
		roles = append(roles, authz.Role(role))
	}
	return &domain.User{
		ID:           r.ID,
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
		Roles:        roles,
		IsActive:     r.IsActive,
		Employee:     r.EmployeeProfile.toDomain(),
		Customer:     r.CustomerProfile.toDomain(),
		Metadata:     projection.Metadata{CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt},
	}
}

func (p *profileRecord) toDomain() *domain.Profile {
	if p == nil {
		return nil
	}
	return &domain.Profile{FirstName: p.FirstName, LastName: p.LastName, Email: p.Email, Phone: p.Phone, Address: p.Address}
}
