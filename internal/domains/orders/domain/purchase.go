package domain

import (
	"errors"
	"maps"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-commerce-api/internal/shared/geo"
)

// PurchaseStatus tracks fulfilment of an online purchase.
type PurchaseStatus string

const (
	// PurchaseInventoryPending marks an order persisted by the durable checkout before stock is reserved.
	PurchaseInventoryPending PurchaseStatus = "inventory-pending"
	PurchasePending          PurchaseStatus = "pending"
	PurchaseProcessing       PurchaseStatus = "processing"
	PurchaseDispatched       PurchaseStatus = "dispatched"
	PurchaseDelivered        PurchaseStatus = "delivered"
	PurchaseCancelled        PurchaseStatus = "cancelled"
)

var (
	ErrNoItems           = errors.New("order items are required")
	ErrInvalidQuantity   = errors.New("item quantity must be greater than zero")
	ErrEmptyColor        = errors.New("item color is required")
	ErrEmptyProduct      = errors.New("item product is required")
	ErrIncompleteAddress = errors.New("delivery address is incomplete")
	ErrTotalMismatch     = errors.New("order total does not match the items")
	ErrInvalidStatus     = errors.New("purchase status is invalid")
	ErrStatusLocked      = errors.New("purchase status can no longer change")
	ErrAlreadyPaid       = errors.New("order is already paid")
)

// totalTolerance is the largest accepted gap between a client total and the computed one.
var totalTolerance = decimal.RequireFromString("0.01")

// ProductSnapshot freezes the catalog fields shown on an order line.
type ProductSnapshot struct {
	ID          string `json:"id"`
	ProductCode string `json:"productId"`
	Title       string `json:"title"`
	Condition   string `json:"condition"`
	Image       string `json:"image"`
}

// LineItem is one product color bought in some quantity.
type LineItem struct {
	Product    ProductSnapshot `json:"product"`
	Color      string          `json:"color"`
	Qty        int             `json:"qty"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

// NewLineItem computes the line total from the unit price.
func NewLineItem(product ProductSnapshot, color string, qty int, unitPrice decimal.Decimal) (LineItem, error) {
	item := LineItem{Product: product, Color: strings.TrimSpace(color), Qty: qty, UnitPrice: unitPrice}
	if err := item.validate(); err != nil {
		return LineItem{}, err
	}
	item.TotalPrice = unitPrice.Mul(decimal.NewFromInt(int64(qty)))
	return item, nil
}

func (i LineItem) validate() error {
	switch {
	case strings.TrimSpace(i.Product.ID) == "":
		return ErrEmptyProduct
	case i.Color == "":
		return ErrEmptyColor
	case i.Qty <= 0:
		return ErrInvalidQuantity
	case !i.UnitPrice.IsPositive():
		return ErrInvalidPrice
	}
	return nil
}

// Address is where a purchase is delivered.
type Address struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
}

func (a Address) normalized() (Address, error) {
	a.Address = strings.TrimSpace(a.Address)
	a.City = strings.TrimSpace(a.City)
	a.PostalCode = strings.TrimSpace(a.PostalCode)
	if a.Address == "" || a.City == "" || a.PostalCode == "" {
		return Address{}, ErrIncompleteAddress
	}
	return a, nil
}

// Purchase is an online order for catalog products.
type Purchase struct {
	Items            []LineItem      `json:"items"`
	DeliveryLocation geo.Point       `json:"deliveryLocation"`
	DeliveryAddress  Address         `json:"deliveryAddress"`
	Status           PurchaseStatus  `json:"status"`
	TotalPrice       decimal.Decimal `json:"totalPrice"`
	IsPaid           bool            `json:"isPaid"`
	PaidAt           *time.Time      `json:"paidAt,omitempty"`
	PaymentResult    map[string]any  `json:"paymentResult,omitempty"`

	// InventoryReserved is set once stock for every line has been taken.
	InventoryReserved bool `json:"inventoryReserved"`
}

// NewPurchase validates the items and computes the order total rounded to cents.
func NewPurchase(items []LineItem, location geo.Point, address Address, status PurchaseStatus) (*Purchase, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	total := decimal.Zero
	for _, item := range items {
		if err := item.validate(); err != nil {
			return nil, err
		}
		total = total.Add(item.TotalPrice)
	}
	if err := location.Validate(); err != nil {
		return nil, err
	}
	addr, err := address.normalized()
	if err != nil {
		return nil, err
	}
	if status != PurchaseInventoryPending && status != PurchasePending {
		return nil, ErrInvalidStatus
	}
	return &Purchase{
		Items:            append([]LineItem(nil), items...),
		DeliveryLocation: location,
		DeliveryAddress:  addr,
		Status:           status,
		TotalPrice:       total.Round(2),
	}, nil
}

// CheckTotal rejects a client total that is more than a cent away from the computed one.
func (p *Purchase) CheckTotal(clientTotal decimal.Decimal) error {
	if clientTotal.Sub(p.TotalPrice).Abs().GreaterThan(totalTolerance) {
		return ErrTotalMismatch
	}
	return nil
}

// ParsePurchaseStatus accepts the statuses an employee may set.
func ParsePurchaseStatus(raw string) (PurchaseStatus, error) {
	switch s := PurchaseStatus(strings.ToLower(strings.TrimSpace(raw))); s {
	case PurchasePending, PurchaseProcessing, PurchaseDispatched, PurchaseDelivered, PurchaseCancelled:
		return s, nil
	default:
		return "", ErrInvalidStatus
	}
}

// Transition moves to status. It reports whether reserved stock must be returned.
func (p *Purchase) Transition(status PurchaseStatus) (release bool, err error) {
	if _, err := ParsePurchaseStatus(string(status)); err != nil {
		return false, err
	}
	if p.Status == PurchaseCancelled || p.Status == PurchaseInventoryPending {
		return false, ErrStatusLocked
	}
	p.Status = status
	return status == PurchaseCancelled && p.InventoryReserved, nil
}

// Confirm completes the durable checkout once stock is reserved.
func (p *Purchase) Confirm() error {
	if p.Status != PurchaseInventoryPending || !p.InventoryReserved {
		return ErrStatusLocked
	}
	p.Status = PurchasePending
	return nil
}

// Abandon cancels a checkout that could not reserve stock. It reports whether stock must be returned.
func (p *Purchase) Abandon() bool {
	release := p.Status != PurchaseCancelled && p.InventoryReserved
	p.Status = PurchaseCancelled
	if release {
		p.InventoryReserved = false
	}
	return release
}

// MarkPaid records the payment. An order is paid at most once, and not while its stock is
// still being reserved or after it was cancelled.
func (p *Purchase) MarkPaid(at time.Time, result map[string]any) error {
	if p.IsPaid {
		return ErrAlreadyPaid
	}
	if p.Status == PurchaseCancelled || p.Status == PurchaseInventoryPending {
		return ErrStatusLocked
	}
	paidAt := at
	p.IsPaid = true
	p.PaidAt = &paidAt
	p.PaymentResult = maps.Clone(result)
	return nil
}

func (p *Purchase) Kind() Kind { return KindOnlinePurchase }

func (p *Purchase) validate() error {
	if len(p.Items) == 0 {
		return ErrNoItems
	}
	for _, item := range p.Items {
		if err := item.validate(); err != nil {
			return err
		}
	}
	if err := p.DeliveryLocation.Validate(); err != nil {
		return err
	}
	if _, err := p.DeliveryAddress.normalized(); err != nil {
		return err
	}
	switch p.Status {
	case PurchaseInventoryPending, PurchasePending, PurchaseProcessing, PurchaseDispatched, PurchaseDelivered, PurchaseCancelled:
		return nil
	default:
		return ErrInvalidStatus
	}
}

func (p *Purchase) clonePayload() Payload {
	clone := *p
	clone.Items = append([]LineItem(nil), p.Items...)
	clone.PaymentResult = maps.Clone(p.PaymentResult)
	if p.PaidAt != nil {
		paidAt := *p.PaidAt
		clone.PaidAt = &paidAt
	}
	return &clone
}
