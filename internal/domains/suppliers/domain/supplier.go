package domain

import (
	"errors"
	"strings"

	"github.com/Apurer/go-gin-commerce-api/internal/shared/projection"
)

var (
	ErrEmptyName    = errors.New("supplier name is required")
	ErrEmptyEmail   = errors.New("supplier email is required")
	ErrInvalidEmail = errors.New("supplier email must contain '@'")
	ErrEmptyPhone   = errors.New("supplier phone is required")
)

// Supplier provides products to the catalog.
type Supplier struct {
	ID       string
	Name     string
	Email    string
	Phone    string
	IsActive bool
	projection.Metadata
}

// NewSupplier builds an active supplier after validating contact details.
func NewSupplier(id, name, email, phone string) (*Supplier, error) {
	s := &Supplier{ID: id, IsActive: true}
	if err := s.UpdateContact(name, email, phone); err != nil {
		return nil, err
	}
	return s, nil
}

// UpdateContact replaces name, email and phone.
func (s *Supplier) UpdateContact(name, email, phone string) error {
	name, email, phone = strings.TrimSpace(name), strings.TrimSpace(email), strings.TrimSpace(phone)
	switch {
	case name == "":
		return ErrEmptyName
	case email == "":
		return ErrEmptyEmail
	case !strings.Contains(email, "@"):
		return ErrInvalidEmail
	case phone == "":
		return ErrEmptyPhone
	}
	s.Name, s.Email, s.Phone = name, email, phone
	return nil
}

// Deactivate hides the supplier while keeping product references valid.
func (s *Supplier) Deactivate() { s.IsActive = false }

// Validate re-applies invariants before persistence.
func (s *Supplier) Validate() error {
	return s.UpdateContact(s.Name, s.Email, s.Phone)
}
