package response

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ordent/fulfillment/internal/apperror"
)

// envelope is the JSON body shape shared by every endpoint.
type envelope struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
	Errors  interface{} `json:"errors"`
}

// Success writes a success envelope with the given status code.
func Success(w http.ResponseWriter, statusCode int, data interface{}, message string) {
	write(w, statusCode, envelope{
		Status:  "success",
		Message: message,
		Data:    data,
	})
}

// Error writes an error envelope. The status code comes from the error's
// kind, never from its message text. Validation failures repeat the rule
// violations in the errors list.
func Error(w http.ResponseWriter, err error) {
	body := envelope{
		Status:  "error",
		Message: err.Error(),
	}
	if apperror.KindOf(err) == apperror.KindValidation {
		body.Errors = []string{err.Error()}
	}

	write(w, apperror.StatusOf(err), body)
}

func write(w http.ResponseWriter, statusCode int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Error writing response", "error", err)
	}
}
