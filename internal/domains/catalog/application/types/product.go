package types

import (
	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-commerce-api/internal/domains/catalog/domain"
)

// ProductInput carries the fields accepted by create and update. ImageCount is the
// number of images the client is about to upload.
type ProductInput struct {
	Title          string
	Description    string
	Price          decimal.Decimal
	Condition      string
	State          string
	ColorVariation map[string]int
	SupplierID     string
	ImageCount     int
}

// Details converts the input to domain details.
func (in ProductInput) Details() domain.Details {
	return domain.Details{
		Title:          in.Title,
		Description:    in.Description,
		Price:          in.Price,
		Condition:      in.Condition,
		State:          domain.State(in.State),
		ColorVariation: in.ColorVariation,
		SupplierID:     in.SupplierID,
	}
}
