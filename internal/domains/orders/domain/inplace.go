package domain

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyDescription = errors.New("description is required")
	ErrInvalidPrice     = errors.New("price must be greater than zero")
	ErrEmptyStatus      = errors.New("status is required")
	ErrEmptyHandler     = errors.New("handling employee is required")
)

// Inplace is an order taken at the counter by an employee.
type Inplace struct {
	Description string
	Price       decimal.Decimal
	Status      string
	HandledBy   string
}

// NewInplace validates an in-store order.
func NewInplace(description string, price decimal.Decimal, status, handledBy string) (*Inplace, error) {
	p := &Inplace{HandledBy: strings.TrimSpace(handledBy)}
	if err := p.Revise(description, price, status); err != nil {
		return nil, err
	}
	if p.HandledBy == "" {
		return nil, ErrEmptyHandler
	}
	return p, nil
}

// Revise replaces description, price and status. The handler never changes.
func (p *Inplace) Revise(description string, price decimal.Decimal, status string) error {
	description = strings.TrimSpace(description)
	status = strings.TrimSpace(status)
	if description == "" {
		return ErrEmptyDescription
	}
	if !price.IsPositive() {
		return ErrInvalidPrice
	}
	if status == "" {
		return ErrEmptyStatus
	}
	p.Description = description
	p.Price = price.Round(2)
	p.Status = status
	return nil
}

func (p *Inplace) Kind() Kind { return KindInplace }

func (p *Inplace) validate() error {
	if p.HandledBy == "" {
		return ErrEmptyHandler
	}
	clone := *p
	return clone.Revise(p.Description, p.Price, p.Status)
}

func (p *Inplace) clonePayload() Payload {
	clone := *p
	return &clone
}
