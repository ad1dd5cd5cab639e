package createorder

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
	CreateOrder(ctx context.Context, p order.CreatePayload) (*order.Order, error)
}

// CreateOrder handles the order creation request.
func CreateOrder(w http.ResponseWriter, r *http.Request, service service) {
	var payload order.CreatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		slog.Error("Error decoding create order request body", "error", err)
		response.Error(w, apperror.NewValidation("invalid request body"))

		return
	}

	created, err := service.CreateOrder(r.Context(), payload)
	if err != nil {
		slog.Error("Error creating order", "error", err)
		response.Error(w, err)

		return
	}

	response.Success(w, http.StatusCreated, created, "Order created successfully.")
}
