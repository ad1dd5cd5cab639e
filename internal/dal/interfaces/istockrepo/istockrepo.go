package istockrepo

import "context"

// IStockRepository is an interface for the stock ledger postgres repository.
// Each call is atomic at the storage layer; the fulfillment engine wraps
// multiple calls in a unit of work when they must commit together.
type IStockRepository interface {
	// Decrement reduces the product's stock by qty. Fails with
	// apperror.KindInsufficientStock when stock < qty and with
	// apperror.KindNotFound when the product does not exist.
	Decrement(ctx context.Context, productID int64, qty int) error
	// Increment raises the product's stock by qty with no upper bound.
	Increment(ctx context.Context, productID int64, qty int) error
	// CheckAvailability reports whether stock >= qty without mutating it.
	CheckAvailability(ctx context.Context, productID int64, qty int) (bool, error)
	Exists(ctx context.Context, productID int64) (bool, error)
}
