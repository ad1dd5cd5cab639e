package order

import "time"

// SearchOrdersModel represents filter parameters for searching orders.
// Date is always applied as an exact in-storage match; Ids restricts the
// result to candidates returned by the search index, when present.
type SearchOrdersModel struct {
	Date        time.Time `json:"date"`
	Description string    `json:"description,omitempty"`
	Ids         []int64   `json:"ids,omitempty"`
}

// Fields carries the mutable order attributes of a create or update payload.
type Fields struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
}
