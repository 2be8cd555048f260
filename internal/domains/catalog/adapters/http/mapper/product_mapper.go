package mapper

import (
	"time"

	"github.com/shopspring/decimal"

	catalogtypes "github.com/Apurer/go-gin-commerce-api/internal/domains/catalog/application/types"
	catalogdomain "github.com/Apurer/go-gin-commerce-api/internal/domains/catalog/domain"
)

// Product is the transport representation of a catalog item. productId carries the
// human-readable product code.
type Product struct {
	ID             string          `json:"_id"`
	ProductCode    string          `json:"productId"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Price          decimal.Decimal `json:"price"`
	Condition      string          `json:"condition"`
	State          string          `json:"state"`
	ColorVariation map[string]int  `json:"colorVariation"`
	SoldInfo       map[string]int  `json:"soldInfo"`
	Supplier       string          `json:"supplier"`
	Images         []string        `json:"images"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// ProductRequest is the body of product create and update.
type ProductRequest struct {
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Price          decimal.Decimal `json:"price"`
	Condition      string          `json:"condition"`
	State          string          `json:"state"`
	ColorVariation map[string]int  `json:"colorVariation"`
	Supplier       string          `json:"supplier"`
	ImageCount     int             `json:"imageCount"`
}

// ProductData is the catalog snapshot attached to an admitted cart entry.
type ProductData struct {
	Title     string          `json:"title"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `json:"price"`
	Condition string          `json:"condition"`
	ProductID string          `json:"productId"`
}

func FromDomainProduct(p *catalogdomain.Product) Product {
	if p == nil {
		return Product{}
	}
	images := p.Images
	if images == nil {
		images = []string{}
	}
	return Product{
		ID:             p.ID,
		ProductCode:    p.ProductCode,
		Title:          p.Title,
		Description:    p.Description,
		Price:          p.Price,
		Condition:      p.Condition,
		State:          string(p.State),
		ColorVariation: p.ColorVariation,
		SoldInfo:       p.SoldInfo,
		Supplier:       p.SupplierID,
		Images:         images,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func FromDomainProducts(list []*catalogdomain.Product) []Product {
	result := make([]Product, 0, len(list))
	for _, p := range list {
		result = append(result, FromDomainProduct(p))
	}
	return result
}

// ToProductInput converts a request body into a use-case input.
func ToProductInput(req ProductRequest) catalogtypes.ProductInput {
	return catalogtypes.ProductInput{
		Title:          req.Title,
		Description:    req.Description,
		Price:          req.Price,
		Condition:      req.Condition,
		State:          req.State,
		ColorVariation: req.ColorVariation,
		SupplierID:     req.Supplier,
		ImageCount:     req.ImageCount,
	}
}

// ToProductData builds the cart snapshot of a product.
func ToProductData(p *catalogdomain.Product) ProductData {
	return ProductData{
		Title:     p.Title,
		Image:     p.PrimaryImage(),
		Price:     p.Price,
		Condition: p.Condition,
		ProductID: p.ProductCode,
	}
}

// CartEntry is one raw cart element as sent by the client.
type CartEntry = map[string]any

// ToCartLines reads product id, color and quantity from raw entries. Entries whose
// fields have the wrong type get a zero quantity and are dropped by the cart check.
func ToCartLines(entries []CartEntry) []catalogdomain.CartLine {
	lines := make([]catalogdomain.CartLine, 0, len(entries))
	for i, entry := range entries {
		id, _ := entry["_id"].(string)
		color, _ := entry["color"].(string)
		lines = append(lines, catalogdomain.CartLine{
			Index:     i,
			ProductID: id,
			Color:     color,
			Qty:       toQty(entry["qty"]),
		})
	}
	return lines
}

// FromCartMatches echoes each admitted entry with its productData.
func FromCartMatches(entries []CartEntry, matches []catalogdomain.CartMatch) []CartEntry {
	out := make([]CartEntry, 0, len(matches))
	for _, match := range matches {
		entry := make(CartEntry, len(entries[match.Line.Index])+1)
		for k, v := range entries[match.Line.Index] {
			entry[k] = v
		}
		entry["productData"] = ToProductData(match.Product)
		out = append(out, entry)
	}
	return out
}

func toQty(v any) int {
	switch q := v.(type) {
	case float64:
		if q != float64(int(q)) {
			return 0
		}
		return int(q)
	case string:
		d, err := decimal.NewFromString(q)
		if err != nil || !d.IsInteger() {
			return 0
		}
		return int(d.IntPart())
	default:
		return 0
	}
}
