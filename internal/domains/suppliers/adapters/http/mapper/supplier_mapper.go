package mapper

import (
	"time"

	suppliertypes "github.com/Apurer/go-gin-commerce-api/internal/domains/suppliers/application/types"
	supplierdomain "github.com/Apurer/go-gin-commerce-api/internal/domains/suppliers/domain"
)

// Supplier is the transport representation of a supplier.
type Supplier struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func FromDomainSupplier(s *supplierdomain.Supplier) Supplier {
	if s == nil {
		return Supplier{}
	}
	return Supplier{
		ID:        s.ID,
		Name:      s.Name,
		Email:     s.Email,
		Phone:     s.Phone,
		IsActive:  s.IsActive,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func FromDomainSuppliers(list []*supplierdomain.Supplier) []Supplier {
	result := make([]Supplier, 0, len(list))
	for _, s := range list {
		result = append(result, FromDomainSupplier(s))
	}
	return result
}

// SupplierRequest is the body of supplier create and update.
type SupplierRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func ToSupplierInput(req SupplierRequest) suppliertypes.SupplierInput {
	return suppliertypes.SupplierInput{Name: req.Name, Email: req.Email, Phone: req.Phone}
}
