package order

import (
	"time"

	"github.com/ordent/fulfillment/internal/service/models/lineitem"
)

// Order represents a customer order in the system.
type Order struct {
	ID          int64               `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Date        time.Time           `json:"date"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
	LineItems   []lineitem.LineItem `json:"lineItems"`
}
