package searchorders

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ordent/fulfillment/internal/service/models/order"
	"github.com/ordent/fulfillment/internal/transport/http/response"
)

// service is an interface for the service layer.
type service interface {
	SearchOrders(ctx context.Context, q order.SearchQuery) ([]order.Order, error)
}

// SearchOrders handles the order search request. Filters come in as query
// parameters: date is required, name and description are optional.
func SearchOrders(w http.ResponseWriter, r *http.Request, service service) {
	query := r.URL.Query()

	q := order.SearchQuery{
		Date:        query.Get("date"),
		Name:        query.Get("name"),
		Description: query.Get("description"),
	}

	orders, err := service.SearchOrders(r.Context(), q)
	if err != nil {
		slog.Error("Error searching orders", "error", err)
		response.Error(w, err)

		return
	}

	response.Success(w, http.StatusOK, orders, "Order viewed successfully.")
}
