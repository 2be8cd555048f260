package domain

import (
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-commerce-api/internal/shared/projection"
)

// RequiredImages is the number of images a listed product carries.
const RequiredImages = 4

var (
	ErrEmptyTitle        = errors.New("title is required")
	ErrEmptyDescription  = errors.New("description is required")
	ErrNonPositivePrice  = errors.New("price must be greater than zero")
	ErrEmptyCondition    = errors.New("condition is required")
	ErrInvalidState      = errors.New("state must be draft or showroom")
	ErrEmptySupplier     = errors.New("supplier is required")
	ErrNegativeQuantity  = errors.New("variant quantity cannot be negative")
	ErrEmptyQuantity     = errors.New("product quantity cannot be empty")
	ErrImageCount        = errors.New("4 images are required")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// State controls whether customers can see and buy a product.
type State string

const (
	StateDraft    State = "draft"
	StateShowroom State = "showroom"
)

// ParseState validates a raw state value.
func ParseState(raw string) (State, error) {
	switch s := State(strings.ToLower(strings.TrimSpace(raw))); s {
	case StateDraft, StateShowroom:
		return s, nil
	default:
		return "", ErrInvalidState
	}
}

// Details groups the fields editable through create and update.
type Details struct {
	Title          string
	Description    string
	Price          decimal.Decimal
	Condition      string
	State          State
	ColorVariation map[string]int
	SupplierID     string
}

// Product is a catalog item with per-color stock.
type Product struct {
	ID             string
	ProductCode    string
	Title          string
	Description    string
	Price          decimal.Decimal
	Condition      string
	State          State
	ColorVariation map[string]int
	SoldInfo       map[string]int
	SupplierID     string
	Images         []string
	projection.Metadata
}

// NewProduct builds a product after validating its details.
func NewProduct(id, code string, details Details) (*Product, error) {
	p := &Product{ID: id, ProductCode: code, SoldInfo: map[string]int{}}
	if err := p.ApplyDetails(details); err != nil {
		return nil, err
	}
	return p, nil
}

// NewProductCode returns a human-readable unique code such as PRD-1A2B3C4D.
func NewProductCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "PRD-" + strings.ToUpper(raw[:8])
}

// ApplyDetails validates and replaces every editable field. Sold counters are kept.
func (p *Product) ApplyDetails(d Details) error {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	d.Condition = strings.TrimSpace(d.Condition)
	d.SupplierID = strings.TrimSpace(d.SupplierID)
	switch {
	case d.Title == "":
		return ErrEmptyTitle
	case d.Description == "":
		return ErrEmptyDescription
	case !d.Price.IsPositive():
		return ErrNonPositivePrice
	case d.Condition == "":
		return ErrEmptyCondition
	case d.SupplierID == "":
		return ErrEmptySupplier
	}
	state, err := ParseState(string(d.State))
	if err != nil {
		return err
	}
	if err := ValidateVariation(d.ColorVariation); err != nil {
		return err
	}
	p.Title = d.Title
	p.Description = d.Description
	p.Price = d.Price
	p.Condition = d.Condition
	p.State = state
	p.ColorVariation = cloneCounts(d.ColorVariation)
	p.SupplierID = d.SupplierID
	if p.SoldInfo == nil {
		p.SoldInfo = map[string]int{}
	}
	return nil
}

// TotalQuantity sums the positive variant quantities.
func TotalQuantity(variation map[string]int) int {
	total := 0
	for _, qty := range variation {
		if qty > 0 {
			total += qty
		}
	}
	return total
}

// ValidateVariation rejects negative quantities and an empty total.
func ValidateVariation(variation map[string]int) error {
	for _, qty := range variation {
		if qty < 0 {
			return ErrNegativeQuantity
		}
	}
	if TotalQuantity(variation) <= 0 {
		return ErrEmptyQuantity
	}
	return nil
}

// ValidateImageCount accepts exactly RequiredImages, or zero when allowZero is set.
func ValidateImageCount(count int, allowZero bool) error {
	if count == RequiredImages || (allowZero && count == 0) {
		return nil
	}
	return ErrImageCount
}

// SetImages replaces the image list. Exactly RequiredImages non-empty URLs are needed.
func (p *Product) SetImages(images []string) error {
	if len(images) != RequiredImages {
		return ErrImageCount
	}
	cleaned := make([]string, 0, len(images))
	for _, img := range images {
		img = strings.TrimSpace(img)
		if img == "" {
			return ErrImageCount
		}
		cleaned = append(cleaned, img)
	}
	p.Images = cleaned
	return nil
}

// SwitchState moves the product between draft and showroom.
func (p *Product) SwitchState(raw string) error {
	state, err := ParseState(raw)
	if err != nil {
		return err
	}
	p.State = state
	return nil
}

// InShowroom reports whether customers can buy the product.
func (p *Product) InShowroom() bool { return p.State == StateShowroom }

// Available reports whether qty units of color are in stock.
func (p *Product) Available(color string, qty int) bool {
	return qty > 0 && p.ColorVariation[color] >= qty
}

// Reserve takes qty units of color out of stock and counts them as sold.
func (p *Product) Reserve(color string, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if !p.Available(color, qty) {
		return ErrInsufficientStock
	}
	p.ColorVariation[color] -= qty
	if p.SoldInfo == nil {
		p.SoldInfo = map[string]int{}
	}
	p.SoldInfo[color] += qty
	return nil
}

// Release returns qty units of color to stock.
func (p *Product) Release(color string, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if p.ColorVariation == nil {
		p.ColorVariation = map[string]int{}
	}
	p.ColorVariation[color] += qty
	if p.SoldInfo == nil {
		p.SoldInfo = map[string]int{}
	}
	p.SoldInfo[color] = max(p.SoldInfo[color]-qty, 0)
	return nil
}

// PrimaryImage returns the first image or an empty string.
func (p *Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// Colors lists the variant names in a stable order.
func (p *Product) Colors() []string {
	colors := make([]string, 0, len(p.ColorVariation))
	for c := range p.ColorVariation {
		colors = append(colors, c)
	}
	sort.Strings(colors)
	return colors
}

// Clone returns a deep copy.
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	clone := *p
	clone.ColorVariation = cloneCounts(p.ColorVariation)
	clone.SoldInfo = cloneCounts(p.SoldInfo)
	clone.Images = append([]string(nil), p.Images...)
	return &clone
}

// Validate re-applies invariants before persistence. Stock may legitimately reach zero after sales.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.ProductCode) == "" {
		return errors.New("product code is required")
	}
	if strings.TrimSpace(p.Title) == "" {
		return ErrEmptyTitle
	}
	if !p.Price.IsPositive() {
		return ErrNonPositivePrice
	}
	if _, err := ParseState(string(p.State)); err != nil {
		return err
	}
	for _, qty := range p.ColorVariation {
		if qty < 0 {
			return ErrNegativeQuantity
		}
	}
	if len(p.Images) != 0 && len(p.Images) != RequiredImages {
		return ErrImageCount
	}
	return nil
}

func cloneCounts(src map[string]int) map[string]int {
	out := make(map[string]int, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
