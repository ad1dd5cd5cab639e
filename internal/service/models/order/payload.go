package order

// ProductSelection references a product and the quantity ordered of it.
// Whether the product actually exists is a referential check, not a shape
// check, so it stays out of the validate tags.
type ProductSelection struct {
	ID       int64 `json:"id"       validate:"gt=0"`
	Quantity int   `json:"quantity" validate:"gt=0"`
}

// SearchQuery is the parsed payload of a search operation. Date is kept as
// the raw string until validation has confirmed it parses as a calendar date.
type SearchQuery struct {
	Date        string `json:"date"                  validate:"required,datetime=2006-01-02"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// CreatePayload is the parsed payload of a create operation.
type CreatePayload struct {
	Name        string             `json:"name"           validate:"required"`
	Description string             `json:"description"    validate:"required"`
	Date        string             `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Products    []ProductSelection `json:"products"       validate:"required,min=1,dive"`
}

// UpdatePayload is the parsed payload of an update operation. The products
// fully replace the order's current line items.
type UpdatePayload struct {
	ID          int64              `json:"id"             validate:"gt=0"`
	Name        string             `json:"name"           validate:"required"`
	Description string             `json:"description"    validate:"required"`
	Date        string             `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Products    []ProductSelection `json:"products"       validate:"required,min=1,dive"`
}
