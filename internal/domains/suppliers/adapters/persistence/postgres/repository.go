package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-gin-commerce-api/internal/domains/suppliers/domain"
	"github.com/Apurer/go-gin-commerce-api/internal/domains/suppliers/ports"
	platformpostgres "github.com/Apurer/go-gin-commerce-api/internal/platform/postgres"
	"github.com/Apurer/go-gin-commerce-api/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists suppliers in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle and migrations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type supplierRecord struct {
	ID        string    `gorm:"primaryKey;column:id;size:64"`
	Name      string    `gorm:"column:name"`
	Email     string    `gorm:"column:email"`
	Phone     string    `gorm:"column:phone"`
	IsActive  bool      `gorm:"column:is_active;index"`
	CreatedAt time.Time `gorm:"column:created_at;index"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (supplierRecord) TableName() string { return "suppliers" }

// Save inserts or updates a supplier keyed by ID.
func (r *Repository) Save(ctx context.Context, supplier *domain.Supplier) (*domain.Supplier, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, errors.New("supplier is nil")
	}
	clone := *supplier
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	record := toRecord(&clone)
	if err := platformpostgres.Conn(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "email", "phone", "is_active", "updated_at"}),
		}).
		Create(&record).Error; err != nil {
		return nil, err
	}
	return r.GetByID(ctx, record.ID)
}

// GetByID fetches a supplier.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Supplier, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record supplierRecord
	if err := platformpostgres.Conn(ctx, r.db).First(&record, "id = ?", strings.TrimSpace(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// ActiveSupplier reports whether id names an active supplier.
func (r *Repository) ActiveSupplier(ctx context.Context, id string) (bool, error) {
	if err := r.ensureDB(); err != nil {
		return false, err
	}
	var count int64
	err := platformpostgres.Conn(ctx, r.db).Model(&supplierRecord{}).
		Where("id = ? AND is_active = ?", strings.TrimSpace(id), true).
		Count(&count).Error
	return count > 0, err
}

// Delete removes a supplier.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := platformpostgres.Conn(ctx, r.db).Where("id = ?", strings.TrimSpace(id)).Delete(&supplierRecord{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// List returns suppliers ordered by creation time.
func (r *Repository) List(ctx context.Context, activeOnly bool) ([]*domain.Supplier, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := platformpostgres.Conn(ctx, r.db).Model(&supplierRecord{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var records []supplierRecord
	if err := query.Order("created_at ASC").Order("id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	suppliers := make([]*domain.Supplier, 0, len(records))
	for i := range records {
		suppliers = append(suppliers, records[i].toDomain())
	}
	return suppliers, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres supplier repository not configured")
	}
	return nil
}

func toRecord(s *domain.Supplier) supplierRecord {
	return supplierRecord{
		ID:        s.ID,
		Name:      s.Name,
		Email:     s.Email,
		Phone:     s.Phone,
		IsActive:  s.IsActive,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func (r supplierRecord) toDomain() *domain.Supplier {
	return &domain.Supplier{
		ID:       r.ID,
		Name:     r.Name,
		Email:    r.Email,
		Phone:    r.Phone,
		IsActive: r.IsActive,
		Metadata: projection.Metadata{CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt},
	}
}
