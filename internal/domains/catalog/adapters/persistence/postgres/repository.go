package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-gin-commerce-api/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-commerce-api/internal/domains/catalog/ports"
	platformpostgres "github.com/Apurer/go-gin-commerce-api/internal/platform/postgres"
	"github.com/Apurer/go-gin-commerce-api/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists products in PostgreSQL using GORM.
type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle and migrations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

type productRecord struct {
	ID             string          `gorm:"primaryKey;column:id;size:64"`
	ProductCode    string          `gorm:"column:product_code;size:32;uniqueIndex"`
	Title          string          `gorm:"column:title"`
	Description    string          `gorm:"column:description"`
	Price          decimal.Decimal `gorm:"column:price;type:numeric(12,2)"`
	Condition      string          `gorm:"column:condition"`
	State          string          `gorm:"column:state;size:16;index"`
	ColorVariation map[string]int  `gorm:"column:color_variation;type:jsonb;serializer:json"`
	SoldInfo       map[string]int  `gorm:"column:sold_info;type:jsonb;serializer:json"`
	SupplierID     string          `gorm:"column:supplier_id;size:64;index"`
	Images         pq.StringArray  `gorm:"column:images;type:text[]"`
	CreatedAt      time.Time       `gorm:"column:created_at;index"`
	UpdatedAt      time.Time       `gorm:"column:updated_at"`
}

func (productRecord) TableName() string { return "products" }

// sold_info is owned by Reserve and Release and never overwritten by Save.
var upsertColumns = []string{"title", "description", "price", "condition", "state", "color_variation", "supplier_id", "images", "updated_at"}

// Save inserts or updates a product keyed by ID.
func (r *Repository) Save(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if product == nil {
		return nil, errors.New("product is nil")
	}
	clone := product.Clone()
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	record := toRecord(clone)
	if err := platformpostgres.Conn(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(upsertColumns),
		}).
		Create(&record).Error; err != nil {
		if platformpostgres.IsUniqueViolation(err) {
			return nil, ports.ErrDuplicateProductCode
		}
		return nil, err
	}
	return r.GetByID(ctx, record.ID)
}

// GetByID fetches a product.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record productRecord
	if err := platformpostgres.Conn(ctx, r.db).First(&record, "id = ?", strings.TrimSpace(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// Delete removes a product.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := platformpostgres.Conn(ctx, r.db).Where("id = ?", strings.TrimSpace(id)).Delete(&productRecord{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// List returns products newest first.
func (r *Repository) List(ctx context.Context, filter ports.ListFilter) ([]*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := platformpostgres.Conn(ctx, r.db).Model(&productRecord{})
	if filter.State != "" {
		query = query.Where("state = ?", string(filter.State))
	}
	if len(filter.IDs) > 0 {
		query = query.Where("id IN ?", filter.IDs)
	}
	var records []productRecord
	if err := query.Order("created_at DESC").Order("id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	products := make([]*domain.Product, 0, len(records))
	for i := range records {
		products = append(products, records[i].toDomain())
	}
	return products, nil
}

// Reserve decrements stock line by line with a conditional update. Any short line
// rolls back the lines already applied.
func (r *Repository) Reserve(ctx context.Context, lines []ports.Reservation) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	now := r.now()
	return platformpostgres.Conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		for _, line := range lines {
			result := tx.Model(&productRecord{}).
				Where("id = ? AND COALESCE((color_variation->>?::text)::int, 0) >= ?::int", line.ProductID, line.Color, line.Qty).
				Updates(map[string]any{
					"color_variation": gorm.Expr(
						"jsonb_set(COALESCE(color_variation, '{}'::jsonb), ARRAY[?::text], to_jsonb(COALESCE((color_variation->>?::text)::int, 0) - ?::int))",
						line.Color, line.Color, line.Qty),
					"sold_info": gorm.Expr(
						"jsonb_set(COALESCE(sold_info, '{}'::jsonb), ARRAY[?::text], to_jsonb(COALESCE((sold_info->>?::text)::int, 0) + ?::int))",
						line.Color, line.Color, line.Qty),
					"updated_at": now,
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return r.missOrShort(tx, line.ProductID)
			}
		}
		return nil
	})
}

// Release returns stock for each line and lowers the sold counter, never below zero. Lines for
// deleted products match no row and are skipped.
func (r *Repository) Release(ctx context.Context, lines []ports.Reservation) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	now := r.now()
	return platformpostgres.Conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		for _, line := range lines {
			result := tx.Model(&productRecord{}).
				Where("id = ?", line.ProductID).
				Updates(map[string]any{
					"color_variation": gorm.Expr(
						"jsonb_set(COALESCE(color_variation, '{}'::jsonb), ARRAY[?::text], to_jsonb(COALESCE((color_variation->>?::text)::int, 0) + ?::int))",
						line.Color, line.Color, line.Qty),
					"sold_info": gorm.Expr(
						"jsonb_set(COALESCE(sold_info, '{}'::jsonb), ARRAY[?::text], to_jsonb(GREATEST(COALESCE((sold_info->>?::text)::int, 0) - ?::int, 0)))",
						line.Color, line.Color, line.Qty),
					"updated_at": now,
				})
			if result.Error != nil {
				return result.Error
			}
		}
		return nil
	})
}

// SupplierReferenced reports whether any product points at the supplier.
func (r *Repository) SupplierReferenced(ctx context.Context, supplierID string) (bool, error) {
	if err := r.ensureDB(); err != nil {
		return false, err
	}
	var count int64
	err := platformpostgres.Conn(ctx, r.db).Model(&productRecord{}).
		Where("supplier_id = ?", strings.TrimSpace(supplierID)).
		Count(&count).Error
	return count > 0, err
}

func (r *Repository) missOrShort(tx *gorm.DB, id string) error {
	var count int64
	if err := tx.Model(&productRecord{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ports.ErrNotFound
	}
	return ports.ErrInsufficientStock
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres product repository not configured")
	}
	return nil
}

func toRecord(p *domain.Product) productRecord {
	return productRecord{
		ID:             p.ID,
		ProductCode:    p.ProductCode,
		Title:          p.Title,
		Description:    p.Description,
		Price:          p.Price,
		Condition:      p.Condition,
		State:          string(p.State),
		ColorVariation: p.ColorVariation,
		SoldInfo:       p.SoldInfo,
		SupplierID:     p.SupplierID,
		Images:         pq.StringArray(p.Images),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func (r productRecord) toDomain() *domain.Product {
	product := &domain.Product{
		ID:             r.ID,
		ProductCode:    r.ProductCode,
		Title:          r.Title,
		Description:    r.Description,
		Price:          r.Price,
		Condition:      r.Condition,
		State:          domain.State(r.State),
		ColorVariation: r.ColorVariation,
		SoldInfo:       r.SoldInfo,
		SupplierID:     r.SupplierID,
		Images:         []string(r.Images),
		Metadata:       projection.Metadata{CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt},
	}
	if product.ColorVariation == nil {
		product.ColorVariation = map[string]int{}
	}
	if product.SoldInfo == nil {
		product.SoldInfo = map[string]int{}
	}
	return product
}
