package types

import (
	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-commerce-api/internal/domains/orders/domain"
)

// Progress updates an employee may apply to a service request.
const (
	ProgressPrice      = "price"
	ProgressCompletion = "completion"
	ProgressAccepted   = "accepted"
)

// Location carries optional coordinates so that a missing value can be told apart from zero.
type Location struct {
	Long *float64
	Lat  *float64
}

// InplaceInput creates or revises an in-store order.
type InplaceInput struct {
	CustomerID  string
	Description string
	Price       decimal.Decimal
	Status      string
}

// ServiceRequestInput creates or revises an online service request.
type ServiceRequestInput struct {
	Problem  string
	Contact  string
	Location Location
}

// ProgressInput is the body of a service request progress update.
type ProgressInput struct {
	Type  string
	Price decimal.Decimal
}

// PurchaseItemInput is one requested line of an online purchase.
type PurchaseItemInput struct {
	ProductID string
	Color     string
	Qty       int
}

// AddressInput is the delivery address of a purchase.
type AddressInput struct {
	Address    string
	City       string
	PostalCode string
}

// PurchaseInput places an online purchase. Prices come from the catalog; OrderTotal is the
// client's own total and must agree with it.
type PurchaseInput struct {
	Items            []PurchaseItemInput
	DeliveryLocation Location
	DeliveryAddress  AddressInput
	OrderTotal       decimal.Decimal
	IdempotencyKey   string
}

// PaymentInput records an opaque payment provider result.
type PaymentInput struct {
	Result map[string]any
}

// PurchaseDraft is a priced purchase that has not been persisted yet. It crosses the
// durable checkout boundary, so it holds only concrete types.
type PurchaseDraft struct {
	OrderID    string          `json:"orderId"`
	CustomerID string          `json:"customerId"`
	Purchase   domain.Purchase `json:"purchase"`
}

// Order rebuilds the aggregate from the draft.
func (d PurchaseDraft) Order() (*domain.Order, error) {
	purchase := d.Purchase
	return domain.NewOrder(d.OrderID, d.CustomerID, &purchase)
}
