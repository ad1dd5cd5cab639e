package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an operation failure. Handlers map kinds to HTTP statuses;
// the kind travels on the error value, never inferred from message text.
type Kind int

const (
	// KindUnknown is the zero value. An Error constructed without a kind is
	// treated as an internal failure, never as a client error.
	KindUnknown Kind = iota
	// KindValidation means the payload was malformed or missing fields.
	KindValidation
	// KindNotFound means a referenced order or product does not exist,
	// or a search matched nothing.
	KindNotFound
	// KindInsufficientStock means a decrement asked for more than is available.
	KindInsufficientStock
	// KindPersistence means the store failed for infrastructural reasons.
	KindPersistence
)

// Error is the failure type returned by the fulfillment engine and its
// collaborators.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Msg, e.Err.Error())
	}

	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the status code the transport layer should answer with.
// Insufficient stock is a business-rule violation, not an input-shape error,
// but both surface as 400.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation, KindInsufficientStock:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// NewValidation creates a validation error.
func NewValidation(msg string) *Error {
	return &Error{Kind: KindValidation, Msg: msg}
}

// NewNotFound creates a not-found error.
func NewNotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Msg: msg}
}

// NewInsufficientStock creates an insufficient-stock error for a product.
func NewInsufficientStock(productID int64) *Error {
	return &Error{
		Kind: KindInsufficientStock,
		Msg:  fmt.Sprintf("insufficient stock for product %d", productID),
	}
}

// NewPersistence wraps an infrastructural failure from the store.
func NewPersistence(msg string, err error) *Error {
	return &Error{Kind: KindPersistence, Msg: msg, Err: err}
}

// KindOf extracts the kind from an error chain. Untyped errors are treated
// as persistence failures.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}

	return KindPersistence
}

// StatusOf returns the HTTP status for any error in the chain.
func StatusOf(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus()
	}

	return http.StatusInternalServerError
}
