package mapper

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	ordertypes "github.com/Apurer/go-gin-commerce-api/internal/domains/orders/application/types"
	orderdomain "github.com/Apurer/go-gin-commerce-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-commerce-api/internal/shared/geo"
)

// Order is the transport shape shared by every order type. Fields that a type does not
// carry are omitted.
type Order struct {
	ID        string    `json:"_id"`
	OrderType string    `json:"orderType"`
	Customer  string    `json:"customer"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	HandledBy   string           `json:"handledBy,omitempty"`
	Description string           `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`

	Problem         string     `json:"problem,omitempty"`
	ContactNo       string     `json:"contactNo,omitempty"`
	IsUndertaken    *bool      `json:"isUndertaken,omitempty"`
	CurrentLocation *geo.Point `json:"currentLocation,omitempty"`

	OrderItems       []OrderItem      `json:"orderItems,omitempty"`
	DeliveryLocation *geo.Point       `json:"deliveryLocation,omitempty"`
	DeliveryAddress  *Address         `json:"deliveryAddress,omitempty"`
	TotalPrice       *decimal.Decimal `json:"totalPrice,omitempty"`
	IsPaid           *bool            `json:"isPaid,omitempty"`
	PaidAt           *time.Time       `json:"paidAt,omitempty"`
	PaymentResult    map[string]any   `json:"paymentResult,omitempty"`
}

// OrderItem is one purchased line with its frozen product data.
type OrderItem struct {
	Product     string          `json:"product"`
	Color       string          `json:"color"`
	Qty         int             `json:"qty"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
	ProductData ProductData     `json:"productData"`
}

type ProductData struct {
	Title     string `json:"title"`
	Image     string `json:"image"`
	Condition string `json:"condition"`
	ProductID string `json:"productId"`
}

type Address struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
}

// InplaceRequest is the body of in-store order create and update.
type InplaceRequest struct {
	Customer    string          `json:"customer"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Status      string          `json:"status"`
}

// LocationRequest keeps coordinates optional so a missing value is reported, not read as zero.
type LocationRequest struct {
	Long *float64 `json:"long"`
	Lat  *float64 `json:"lat"`
}

// ServiceRequestBody is the body of service request create and update.
type ServiceRequestBody struct {
	Problem         string          `json:"problem"`
	Contact         string          `json:"contact"`
	CurrentLocation LocationRequest `json:"currentLocation"`
}

// ProgressRequest carries the price for a price progress update.
type ProgressRequest struct {
	Price decimal.Decimal `json:"price"`
}

type AcceptRequest struct {
	ID string `json:"id"`
}

type AddressRequest struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Zip        string `json:"zip"`
}

type PurchaseItemRequest struct {
	ID    string `json:"_id"`
	Color string `json:"color"`
	Qty   int    `json:"qty"`
}

// PurchaseRequest is the body of an online purchase. Item prices are looked up, never trusted.
type PurchaseRequest struct {
	DeliveryLocation LocationRequest       `json:"deliveryLocation"`
	DeliveryAddress  AddressRequest        `json:"deliveryAddress"`
	OrderItems       []PurchaseItemRequest `json:"orderItems"`
	OrderTotal       decimal.Decimal       `json:"orderTotal"`
}

type PaymentRequest struct {
	PaymentResults map[string]any `json:"paymentResults"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

func ToInplaceInput(req InplaceRequest) ordertypes.InplaceInput {
	return ordertypes.InplaceInput{
		CustomerID:  req.Customer,
		Description: req.Description,
		Price:       req.Price,
		Status:      req.Status,
	}
}

func ToServiceRequestInput(req ServiceRequestBody) ordertypes.ServiceRequestInput {
	return ordertypes.ServiceRequestInput{
		Problem:  req.Problem,
		Contact:  req.Contact,
		Location: toLocation(req.CurrentLocation),
	}
}

func ToProgressInput(progressType string, req ProgressRequest) ordertypes.ProgressInput {
	return ordertypes.ProgressInput{Type: progressType, Price: req.Price}
}

func ToPurchaseInput(req PurchaseRequest, idempotencyKey string) ordertypes.PurchaseInput {
	items := make([]ordertypes.PurchaseItemInput, 0, len(req.OrderItems))
	for _, item := range req.OrderItems {
		items = append(items, ordertypes.PurchaseItemInput{ProductID: item.ID, Color: item.Color, Qty: item.Qty})
	}
	postal := req.DeliveryAddress.PostalCode
	if strings.TrimSpace(postal) == "" {
		postal = req.DeliveryAddress.Zip
	}
	return ordertypes.PurchaseInput{
		Items:            items,
		DeliveryLocation: toLocation(req.DeliveryLocation),
		DeliveryAddress: ordertypes.AddressInput{
			Address:    req.DeliveryAddress.Address,
			City:       req.DeliveryAddress.City,
			PostalCode: postal,
		},
		OrderTotal:     req.OrderTotal,
		IdempotencyKey: strings.TrimSpace(idempotencyKey),
	}
}

func ToPaymentInput(req PaymentRequest) ordertypes.PaymentInput {
	return ordertypes.PaymentInput{Result: req.PaymentResults}
}

func toLocation(req LocationRequest) ordertypes.Location {
	return ordertypes.Location{Long: req.Long, Lat: req.Lat}
}

func FromDomainOrder(o *orderdomain.Order) Order {
	if o == nil {
		return Order{}
	}
	out := Order{
		ID:        o.ID,
		OrderType: string(o.Kind()),
		Customer:  o.CustomerID,
		Status:    o.Status(),
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
	switch p := o.Payload.(type) {
	case *orderdomain.Inplace:
		price := p.Price
		out.HandledBy = p.HandledBy
		out.Description = p.Description
		out.Price = &price
	case *orderdomain.ServiceRequest:
		price := p.Price
		undertaken := p.IsUndertaken
		location := p.Location
		out.HandledBy = p.HandledBy
		out.Problem = p.Problem
		out.ContactNo = p.ContactNo
		out.Price = &price
		out.IsUndertaken = &undertaken
		out.CurrentLocation = &location
	case *orderdomain.Purchase:
		total := p.TotalPrice
		paid := p.IsPaid
		location := p.DeliveryLocation
		out.OrderItems = fromLineItems(p.Items)
		out.DeliveryLocation = &location
		out.DeliveryAddress = &Address{
			Address:    p.DeliveryAddress.Address,
			City:       p.DeliveryAddress.City,
			PostalCode: p.DeliveryAddress.PostalCode,
		}
		out.TotalPrice = &total
		out.IsPaid = &paid
		out.PaidAt = p.PaidAt
		out.PaymentResult = p.PaymentResult
	}
	return out
}

func FromDomainOrders(list []*orderdomain.Order) []Order {
	result := make([]Order, 0, len(list))
	for _, o := range list {
		result = append(result, FromDomainOrder(o))
	}
	return result
}

func fromLineItems(items []orderdomain.LineItem) []OrderItem {
	out := make([]OrderItem, 0, len(items))
	for _, item := range items {
		out = append(out, OrderItem{
			Product:    item.Product.ID,
			Color:      item.Color,
			Qty:        item.Qty,
			UnitPrice:  item.UnitPrice,
			TotalPrice: item.TotalPrice,
			ProductData: ProductData{
				Title:     item.Product.Title,
				Image:     item.Product.Image,
				Condition: item.Product.Condition,
				ProductID: item.Product.ProductCode,
			},
		})
	}
	return out
}
