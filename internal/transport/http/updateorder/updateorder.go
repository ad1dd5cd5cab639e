package updateorder

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ordent/fulfillment/internal/apperror"
	"github.com/ordent/fulfillment/internal/service/models/order"
	"github.com/ordent/fulfillment/internal/transport/http/response"
)

// service is an interface for the service layer.
type service interface {
	UpdateOrder(ctx context.Context, p order.UpdatePayload) (*order.Order, error)
}

// UpdateOrder handles the order update request. The payload's products fully
// replace the order's current line items.
func UpdateOrder(w http.ResponseWriter, r *http.Request, service service) {
	var payload order.UpdatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		slog.Error("Error decoding update order request body", "error", err)
		response.Error(w, apperror.NewValidation("invalid request body"))

		return
	}

	updated, err := service.UpdateOrder(r.Context(), payload)
	if err != nil {
		slog.Error("Error updating order", "error", err)
		response.Error(w, err)

		return
	}

	response.Success(w, http.StatusOK, updated, "Order updated successfully.")
}
