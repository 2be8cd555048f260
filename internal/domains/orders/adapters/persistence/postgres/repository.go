package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-gin-commerce-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-commerce-api/internal/domains/orders/ports"
	platformpostgres "github.com/Apurer/go-gin-commerce-api/internal/platform/postgres"
	"github.com/Apurer/go-gin-commerce-api/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository stores every order variant in the orders table. Queryable fields are columns;
// the variant payload lives in details.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle and migrations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type orderRecord struct {
	ID           string          `gorm:"primaryKey;column:id;size:64"`
	Kind         string          `gorm:"column:kind;size:32;index"`
	CustomerID   string          `gorm:"column:customer_id;size:64;index"`
	HandledBy    string          `gorm:"column:handled_by;size:64;index"`
	Status       string          `gorm:"column:status;size:64"`
	IsUndertaken bool            `gorm:"column:is_undertaken"`
	IsPaid       bool            `gorm:"column:is_paid"`
	PaidAt       *time.Time      `gorm:"column:paid_at"`
	Amount       decimal.Decimal `gorm:"column:amount;type:numeric(12,2)"`
	Details      string          `gorm:"column:details;type:jsonb"`
	Version      int64           `gorm:"column:version"`
	CreatedAt    time.Time       `gorm:"column:created_at;index"`
	UpdatedAt    time.Time       `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

func (r *Repository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	record, err := toRecord(order)
	if err != nil {
		return nil, err
	}
	record.Version = 1
	if err := platformpostgres.Conn(ctx, r.db).Create(&record).Error; err != nil {
		if platformpostgres.IsUniqueViolation(err) {
			return nil, ports.ErrDuplicateOrder
		}
		return nil, err
	}
	return record.toDomain()
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	record, err := r.find(platformpostgres.Conn(ctx, r.db), id)
	if err != nil {
		return nil, err
	}
	return record.toDomain()
}

// Update writes the order only if nobody wrote it since order.Version was read.
func (r *Repository) Update(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	record, err := toRecord(order)
	if err != nil {
		return nil, err
	}
	conn := platformpostgres.Conn(ctx, r.db)
	result := conn.Model(&orderRecord{}).
		Where("id = ? AND version = ? AND kind = ?", record.ID, order.Version, record.Kind).
		Updates(map[string]any{
			"customer_id":   record.CustomerID,
			"handled_by":    record.HandledBy,
			"status":        record.Status,
			"is_undertaken": record.IsUndertaken,
			"is_paid":       record.IsPaid,
			"paid_at":       record.PaidAt,
			"amount":        record.Amount,
			"details":       record.Details,
			"version":       gorm.Expr("version + 1"),
			"updated_at":    record.UpdatedAt,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.find(conn, record.ID); err != nil {
			return nil, err
		}
		return nil, ports.ErrStaleOrder
	}
	return r.GetByID(ctx, record.ID)
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := platformpostgres.Conn(ctx, r.db).Where("id = ?", strings.TrimSpace(id)).Delete(&orderRecord{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// List returns matching orders newest first.
func (r *Repository) List(ctx context.Context, filter ports.ListFilter) ([]*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := platformpostgres.Conn(ctx, r.db).Model(&orderRecord{})
	if len(filter.Kinds) > 0 {
		kinds := make([]string, 0, len(filter.Kinds))
		for _, kind := range filter.Kinds {
			kinds = append(kinds, string(kind))
		}
		query = query.Where("kind IN ?", kinds)
	}
	if filter.CustomerID != "" {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.HandledBy != "" {
		query = query.Where("handled_by = ?", filter.HandledBy)
	}
	if filter.Available {
		query = query.Where("kind = ? AND is_undertaken = ?", string(domain.KindOnlineService), false)
	}
	var records []orderRecord
	if err := query.Order("created_at DESC").Order("id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	orders := make([]*domain.Order, 0, len(records))
	for i := range records {
		order, err := records[i].toDomain()
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

// Accept locks the row and binds the handler when the request is still open.
func (r *Repository) Accept(ctx context.Context, id, handlerID string, at time.Time) (*domain.Order, error) {
	return r.mutateLocked(ctx, id, at, func(order *domain.Order) error {
		request, ok := order.ServiceRequest()
		if !ok {
			return ports.ErrNotFound
		}
		return request.Accept(handlerID)
	})
}

// MarkPaid locks the row and flips an unpaid purchase to paid.
func (r *Repository) MarkPaid(ctx context.Context, id string, paidAt time.Time, result map[string]any) (*domain.Order, error) {
	return r.mutateLocked(ctx, id, paidAt, func(order *domain.Order) error {
		purchase, ok := order.Purchase()
		if !ok {
			return ports.ErrNotFound
		}
		return purchase.MarkPaid(paidAt, result)
	})
}

func (r *Repository) mutateLocked(ctx context.Context, id string, at time.Time, mutate func(*domain.Order) error) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var updated *domain.Order
	err := platformpostgres.Conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		var record orderRecord
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&record, "id = ?", strings.TrimSpace(id)).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ports.ErrNotFound
			}
			return err
		}
		order, err := record.toDomain()
		if err != nil {
			return err
		}
		if err := mutate(order); err != nil {
			return err
		}
		order.Touch(at)
		next, err := toRecord(order)
		if err != nil {
			return err
		}
		next.Version = record.Version + 1
		if err := tx.Model(&orderRecord{}).Where("id = ?", record.ID).Updates(map[string]any{
			"handled_by":    next.HandledBy,
			"status":        next.Status,
			"is_undertaken": next.IsUndertaken,
			"is_paid":       next.IsPaid,
			"paid_at":       next.PaidAt,
			"details":       next.Details,
			"version":       next.Version,
			"updated_at":    next.UpdatedAt,
		}).Error; err != nil {
			return err
		}
		updated, err = next.toDomain()
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// CustomerHasOrders reports whether any order belongs to the customer.
func (r *Repository) CustomerHasOrders(ctx context.Context, customerID string) (bool, error) {
	return r.exists(ctx, "customer_id = ?", customerID)
}

// EmployeeHandlesOrders reports whether the employee handles any order.
func (r *Repository) EmployeeHandlesOrders(ctx context.Context, employeeID string) (bool, error) {
	return r.exists(ctx, "handled_by = ?", employeeID)
}

func (r *Repository) exists(ctx context.Context, where string, value string) (bool, error) {
	if err := r.ensureDB(); err != nil {
		return false, err
	}
	var count int64
	err := platformpostgres.Conn(ctx, r.db).Model(&orderRecord{}).
		Where(where, strings.TrimSpace(value)).
		Limit(1).
		Count(&count).Error
	return count > 0, err
}

func (r *Repository) find(conn *gorm.DB, id string) (*orderRecord, error) {
	var record orderRecord
	if err := conn.First(&record, "id = ?", strings.TrimSpace(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

func toRecord(order *domain.Order) (orderRecord, error) {
	details, err := json.Marshal(order.Payload)
	if err != nil {
		return orderRecord{}, fmt.Errorf("encode order details: %w", err)
	}
	record := orderRecord{
		ID:         order.ID,
		Kind:       string(order.Kind()),
		CustomerID: order.CustomerID,
		HandledBy:  order.HandledBy(),
		Status:     order.Status(),
		Details:    string(details),
		Version:    order.Version,
		CreatedAt:  order.CreatedAt,
		UpdatedAt:  order.UpdatedAt,
	}
	switch p := order.Payload.(type) {
	case *domain.Inplace:
		record.Amount = p.Price
	case *domain.ServiceRequest:
		record.IsUndertaken = p.IsUndertaken
		record.Amount = p.Price
	case *domain.Purchase:
		record.IsPaid = p.IsPaid
		record.PaidAt = p.PaidAt
		record.Amount = p.TotalPrice
	}
	return record, nil
}

func (r orderRecord) toDomain() (*domain.Order, error) {
	var payload domain.Payload
	switch domain.Kind(r.Kind) {
	case domain.KindInplace:
		payload = &domain.Inplace{}
	case domain.KindOnlineService:
		payload = &domain.ServiceRequest{}
	case domain.KindOnlinePurchase:
		payload = &domain.Purchase{}
	default:
		return nil, fmt.Errorf("order %s has unknown kind %q", r.ID, r.Kind)
	}
	if err := json.Unmarshal([]byte(r.Details), payload); err != nil {
		return nil, fmt.Errorf("decode order %s details: %w", r.ID, err)
	}
	return &domain.Order{
		ID:         r.ID,
		CustomerID: r.CustomerID,
		Payload:    payload,
		Version:    r.Version,
		Metadata:   projection.Metadata{CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt},
	}, nil
}
