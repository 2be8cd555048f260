package migrations

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Run applies the schema for the bounded contexts. Intended to replace adapter-level automigrate.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&userRecord{},
		&sessionRecord{},
		&supplierRecord{},
		&productRecord{},
		&orderRecord{},
		&orderIdempotencyRecord{},
	)
}

type profileRecord struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

// User schema mirrors the users Postgres adapter.
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

// Session schema mirrors the session store.
type sessionRecord struct {
	ID        string    `gorm:"primaryKey;column:id;size:64"`
	UserID    string    `gorm:"column:user_id;size:64;index"`
	ExpiresAt time.Time `gorm:"column:expires_at;index"`
	CreatedAt time.Time `gorm:"column:created_at;index"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (sessionRecord) TableName() string { return "user_sessions" }

// Supplier schema mirrors the suppliers Postgres adapter.
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

// Product schema mirrors the catalog Postgres adapter.
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

// Order schema mirrors the orders Postgres adapter. Every order variant shares the table.
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

type orderIdempotencyRecord struct {
	Key         string    `gorm:"primaryKey;column:key;size:255"`
	RequestHash string    `gorm:"column:request_hash;size:128"`
	OrderID     string    `gorm:"column:order_id;size:64"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (orderIdempotencyRecord) TableName() string { return "order_idempotency_keys" }
