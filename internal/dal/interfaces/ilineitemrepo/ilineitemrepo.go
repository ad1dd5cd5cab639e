package ilineitemrepo

import (
	"context"

	"github.com/ordent/fulfillment/internal/service/models/lineitem"
)

// ILineItemRepository is an interface for the line item postgres repository.
type ILineItemRepository interface {
	BulkInsert(ctx context.Context, items []lineitem.LineItem) ([]lineitem.LineItem, error)
	DeleteByOrder(ctx context.Context, orderID int64) error
	QueryByOrderIDs(ctx context.Context, orderIDs []int64) ([]lineitem.LineItem, error)
}
