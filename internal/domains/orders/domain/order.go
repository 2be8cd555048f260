package domain

import (
	"errors"
	"strings"

	"github.com/Apurer/go-gin-commerce-api/internal/shared/projection"
)

// Kind names the order variant. It is derived from the payload and never stored separately.
type Kind string

const (
	KindInplace        Kind = "inplace"
	KindOnlineService  Kind = "online-service"
	KindOnlinePurchase Kind = "online-purchase"
)

var (
	ErrEmptyCustomer = errors.New("customer is required")
	ErrEmptyPayload  = errors.New("order payload is required")
	ErrWrongKind     = errors.New("order is of a different type")
)

// Payload is implemented by exactly the three order variants.
type Payload interface {
	Kind() Kind
	validate() error
	clonePayload() Payload
}

// Order is the aggregate shared by every order variant. Version increases on every write.
type Order struct {
	ID         string
	CustomerID string
	Payload    Payload
	Version    int64
	projection.Metadata
}

// NewOrder validates the aggregate.
func NewOrder(id, customerID string, payload Payload) (*Order, error) {
	o := &Order{ID: id, CustomerID: strings.TrimSpace(customerID), Payload: payload}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

// Kind reports the variant, or an empty kind when the payload is missing.
func (o *Order) Kind() Kind {
	if o == nil || o.Payload == nil {
		return ""
	}
	return o.Payload.Kind()
}

func (o *Order) Validate() error {
	if o.CustomerID == "" {
		return ErrEmptyCustomer
	}
	if o.Payload == nil {
		return ErrEmptyPayload
	}
	return o.Payload.validate()
}

// Inplace returns the payload when the order is an in-store order.
func (o *Order) Inplace() (*Inplace, bool) {
	p, ok := o.Payload.(*Inplace)
	return p, ok
}

// ServiceRequest returns the payload when the order is an online service request.
func (o *Order) ServiceRequest() (*ServiceRequest, bool) {
	p, ok := o.Payload.(*ServiceRequest)
	return p, ok
}

// Purchase returns the payload when the order is an online purchase.
func (o *Order) Purchase() (*Purchase, bool) {
	p, ok := o.Payload.(*Purchase)
	return p, ok
}

// HandledBy returns the employee bound to an in-store or service order.
func (o *Order) HandledBy() string {
	switch p := o.Payload.(type) {
	case *Inplace:
		return p.HandledBy
	case *ServiceRequest:
		return p.HandledBy
	default:
		return ""
	}
}

// Status returns the variant's status as text.
func (o *Order) Status() string {
	switch p := o.Payload.(type) {
	case *Inplace:
		return p.Status
	case *ServiceRequest:
		return string(p.Status)
	case *Purchase:
		return string(p.Status)
	default:
		return ""
	}
}

// Clone returns a deep copy.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	if o.Payload != nil {
		clone.Payload = o.Payload.clonePayload()
	}
	return &clone
}
