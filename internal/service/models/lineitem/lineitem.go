package lineitem

import "time"

// LineItem represents a quantity-bearing association between an order and a
// product. It has no lifecycle of its own: items are attached on order
// creation and fully replaced on update.
type LineItem struct {
	ID        int64     `json:"id"`
	OrderID   int64     `json:"orderId"`
	ProductID int64     `json:"productId"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
