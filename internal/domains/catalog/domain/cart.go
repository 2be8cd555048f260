package domain

// CartLine is one requested entry of a shopping cart.
type CartLine struct {
	Index     int
	ProductID string
	Color     string
	Qty       int
}

// CartMatch pairs an admissible cart line with the product that satisfies it.
type CartMatch struct {
	Line    CartLine
	Product *Product
}

// CheckCart keeps the lines whose product is in the showroom with enough stock of
// the requested color. Every other line is dropped without error. Input order is kept.
func CheckCart(lines []CartLine, products []*Product) []CartMatch {
	byID := make(map[string]*Product, len(products))
	for _, p := range products {
		if p != nil {
			byID[p.ID] = p
		}
	}
	matches := make([]CartMatch, 0, len(lines))
	for _, line := range lines {
		product, ok := byID[line.ProductID]
		if !ok || !product.InShowroom() || !product.Available(line.Color, line.Qty) {
			continue
		}
		matches = append(matches, CartMatch{Line: line, Product: product})
	}
	return matches
}
