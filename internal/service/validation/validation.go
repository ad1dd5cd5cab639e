// Package validation holds one validator per fulfillment operation. The
// validators are plain values constructed with their dependencies injected;
// there is no global registry and no lookup by operation name. Payload shape
// is checked with go-playground/validator struct tags and fails with
// apperror.KindValidation, dangling references fail with
// apperror.KindNotFound, so the transport layer can map statuses without
// inspecting message text.
package validation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ordent/fulfillment/internal/apperror"
	"github.com/ordent/fulfillment/internal/service/models/order"
)

// DateLayout is the calendar date format accepted in payloads.
const DateLayout = "2006-01-02"

// ParseDate parses a payload date string.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// OrderChecker reports whether an order exists.
type OrderChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// ProductChecker reports whether a product exists.
type ProductChecker interface {
	Exists(ctx context.Context, productID int64) (bool, error)
}

// Validators bundles the per-operation validators. One field per operation
// keeps the dispatch explicit and exhaustive at compile time.
type Validators struct {
	Search SearchValidator
	Create CreateValidator
	Update UpdateValidator
	Delete DeleteValidator
}

// New constructs the validator set. Struct-tag validation runs on the given
// instance; the checkers back the referential-integrity rules.
func New(v *validator.Validate, orders OrderChecker, products ProductChecker) Validators {
	return Validators{
		Search: SearchValidator{v: v},
		Create: CreateValidator{v: v, products: products},
		Update: UpdateValidator{v: v, orders: orders, products: products},
		Delete: DeleteValidator{v: v, orders: orders},
	}
}

// toValidationError converts a validator.ValidationErrors into a typed
// validation failure carrying a payload-level message for the first
// violated rule.
func toValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperror.NewValidation("invalid payload")
	}

	e := verrs[0]
	field := strings.ToLower(e.Field())
	switch e.Tag() {
	case "required":
		return apperror.NewValidation(fmt.Sprintf("the %s field is required", field))
	case "datetime":
		return apperror.NewValidation(fmt.Sprintf("the %s field must be a valid date", field))
	case "min":
		return apperror.NewValidation(fmt.Sprintf("the %s field must contain at least %s entry", field, e.Param()))
	case "gt":
		return apperror.NewValidation(fmt.Sprintf("the %s field must be greater than %s", field, e.Param()))
	default:
		return apperror.NewValidation(fmt.Sprintf("the %s field is invalid", field))
	}
}

// checkProducts verifies every referenced product exists. Runs after the
// shape checks so malformed selections never reach the store.
func checkProducts(ctx context.Context, products ProductChecker, selections []order.ProductSelection) error {
	for _, sel := range selections {
		exists, err := products.Exists(ctx, sel.ID)
		if err != nil {
			return apperror.NewPersistence("failed to check product existence", err)
		}
		if !exists {
			return apperror.NewNotFound(fmt.Sprintf("product %d not found", sel.ID))
		}
	}

	return nil
}

// SearchValidator validates search payloads: date is required and must parse
// as a calendar date, name and description are optional.
type SearchValidator struct {
	v *validator.Validate
}

func (s SearchValidator) Validate(_ context.Context, q order.SearchQuery) error {
	if err := s.v.Struct(q); err != nil {
		return toValidationError(err)
	}

	return nil
}

// CreateValidator validates create payloads.
type CreateValidator struct {
	v        *validator.Validate
	products ProductChecker
}

func (c CreateValidator) Validate(ctx context.Context, p order.CreatePayload) error {
	if err := c.v.Struct(p); err != nil {
		return toValidationError(err)
	}

	return checkProducts(ctx, c.products, p.Products)
}

// UpdateValidator validates update payloads: the create rules plus an id that
// must reference an existing order.
type UpdateValidator struct {
	v        *validator.Validate
	orders   OrderChecker
	products ProductChecker
}

func (u UpdateValidator) Validate(ctx context.Context, p order.UpdatePayload) error {
	if err := u.v.Struct(p); err != nil {
		return toValidationError(err)
	}

	if err := checkProducts(ctx, u.products, p.Products); err != nil {
		return err
	}

	exists, err := u.orders.Exists(ctx, p.ID)
	if err != nil {
		return apperror.NewPersistence("failed to check order existence", err)
	}
	if !exists {
		return apperror.NewNotFound(fmt.Sprintf("order %d not found", p.ID))
	}

	return nil
}

// DeleteValidator validates delete payloads: a single identifier string that
// must reference an existing order.
type DeleteValidator struct {
	v      *validator.Validate
	orders OrderChecker
}

func (d DeleteValidator) Validate(ctx context.Context, id string) error {
	if err := d.v.Var(id, "required"); err != nil {
		return apperror.NewValidation("the id field is required")
	}

	orderID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return apperror.NewValidation("the id field must be an integer")
	}

	exists, err := d.orders.Exists(ctx, orderID)
	if err != nil {
		return apperror.NewPersistence("failed to check order existence", err)
	}
	if !exists {
		return apperror.NewNotFound(fmt.Sprintf("order %d not found", orderID))
	}

	return nil
}
