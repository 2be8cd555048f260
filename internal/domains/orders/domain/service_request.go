package domain

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-commerce-api/internal/shared/geo"
)

// ServiceStatus tracks an online service request.
type ServiceStatus string

const (
	ServicePending   ServiceStatus = "pending"
	ServiceAccepted  ServiceStatus = "accepted"
	ServiceCompleted ServiceStatus = "completed"
)

var (
	ErrEmptyProblem        = errors.New("problem is required")
	ErrEmptyContact        = errors.New("contact number is required")
	ErrAlreadyUndertaken   = errors.New("this service order is already handled by an employee")
	ErrNotUndertaken       = errors.New("service order has not been accepted yet")
	ErrPriceNotSet         = errors.New("price not set yet")
	ErrInvalidServiceState = errors.New("service status is invalid")
)

// ServiceRequest is a customer call-out that an employee accepts and completes.
type ServiceRequest struct {
	Problem      string
	ContactNo    string
	Status       ServiceStatus
	IsUndertaken bool
	Location     geo.Point
	HandledBy    string

	// Price is zero until the handler quotes the job.
	Price decimal.Decimal
}

// NewServiceRequest opens a pending request.
func NewServiceRequest(problem, contactNo string, location geo.Point) (*ServiceRequest, error) {
	p := &ServiceRequest{Status: ServicePending}
	if err := p.Revise(problem, contactNo, location); err != nil {
		return nil, err
	}
	return p, nil
}

// Revise replaces the customer-editable fields.
func (p *ServiceRequest) Revise(problem, contactNo string, location geo.Point) error {
	problem = strings.TrimSpace(problem)
	contactNo = strings.TrimSpace(contactNo)
	if problem == "" {
		return ErrEmptyProblem
	}
	if contactNo == "" {
		return ErrEmptyContact
	}
	if err := location.Validate(); err != nil {
		return err
	}
	p.Problem = problem
	p.ContactNo = contactNo
	p.Location = location
	return nil
}

// Accept binds the handler. A request is accepted at most once.
func (p *ServiceRequest) Accept(handlerID string) error {
	if p.IsUndertaken {
		return ErrAlreadyUndertaken
	}
	handlerID = strings.TrimSpace(handlerID)
	if handlerID == "" {
		return ErrEmptyHandler
	}
	p.IsUndertaken = true
	p.HandledBy = handlerID
	p.Status = ServiceAccepted
	return nil
}

// Quote sets the price of the job.
func (p *ServiceRequest) Quote(price decimal.Decimal) error {
	if !price.IsPositive() {
		return ErrInvalidPrice
	}
	p.Price = price.Round(2)
	return nil
}

// Complete closes the request. A positive price must have been quoted.
func (p *ServiceRequest) Complete() error {
	if !p.Price.IsPositive() {
		return ErrPriceNotSet
	}
	p.Status = ServiceCompleted
	return nil
}

// Reopen moves the request back to accepted.
func (p *ServiceRequest) Reopen() error {
	if !p.IsUndertaken {
		return ErrNotUndertaken
	}
	p.Status = ServiceAccepted
	return nil
}

func (p *ServiceRequest) Kind() Kind { return KindOnlineService }

func (p *ServiceRequest) validate() error {
	switch p.Status {
	case ServicePending, ServiceAccepted, ServiceCompleted:
	default:
		return ErrInvalidServiceState
	}
	if p.IsUndertaken && p.HandledBy == "" {
		return ErrEmptyHandler
	}
	if p.Price.IsNegative() {
		return ErrInvalidPrice
	}
	clone := *p
	return clone.Revise(p.Problem, p.ContactNo, p.Location)
}

func (p *ServiceRequest) clonePayload() Payload {
	clone := *p
	return &clone
}
