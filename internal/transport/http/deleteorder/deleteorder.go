package deleteorder

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ordent/fulfillment/internal/transport/http/response"
)

// service is an interface for the service layer.
type service interface {
	DeleteOrder(ctx context.Context, id string) error
}

// DeleteOrder handles the order deletion request. The identifier stays a
// string up to the engine, which validates it.
func DeleteOrder(w http.ResponseWriter, r *http.Request, service service) {
	id := chi.URLParam(r, "id")

	if err := service.DeleteOrder(r.Context(), id); err != nil {
		slog.Error("Error deleting order", "error", err)
		response.Error(w, err)

		return
	}

	response.Success(w, http.StatusOK, struct{}{}, "Order deleted successfully.")
}
