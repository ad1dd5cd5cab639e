package iorderrepo

import (
	"context"

	"github.com/ordent/fulfillment/internal/service/models/order"
)

// IOrderRepository is an interface for the order postgres repository.
type IOrderRepository interface {
	// FindByID returns the order without line items, or nil when absent.
	FindByID(ctx context.Context, id int64) (*order.Order, error)
	Insert(ctx context.Context, o order.Order) (*order.Order, error)
	Update(ctx context.Context, id int64, fields order.Fields) (*order.Order, error)
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, filter *order.SearchOrdersModel) ([]order.Order, error)
	Exists(ctx context.Context, id int64) (bool, error)
}
