package types

// SupplierInput carries the editable supplier fields.
type SupplierInput struct {
	Name  string
	Email string
	Phone string
}
