package searchorders_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ordent/fulfillment/internal/apperror"
	"github.com/ordent/fulfillment/internal/service/models/order"
	"github.com/ordent/fulfillment/internal/transport/http/searchorders"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	gotQuery order.SearchQuery
	orders   []order.Order
	err      error
}

func (s *stubService) SearchOrders(_ context.Context, q order.SearchQuery) ([]order.Order, error) {
	s.gotQuery = q

	return s.orders, s.err
}

func TestSearchOrders(t *testing.T) {
	stub := &stubService{
		orders: []order.Order{{
			ID:   1,
			Name: "march one",
			Date: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		}},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/orders/search?date=2026-03-01&name=march", nil)
	rec := httptest.NewRecorder()

	searchorders.SearchOrders(rec, req, stub)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2026-03-01", stub.gotQuery.Date)
	assert.Equal(t, "march", stub.gotQuery.Name)

	var body struct {
		Status  string        `json:"status"`
		Message string        `json:"message"`
		Data    []order.Order `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "success", body.Status)
	assert.Equal(t, "Order viewed successfully.", body.Message)
	require.Len(t, body.Data, 1)
	assert.Equal(t, int64(1), body.Data[0].ID)
}

func TestSearchOrdersNotFound(t *testing.T) {
	stub := &stubService{err: apperror.NewNotFound("order not found")}

	req := httptest.NewRequest(http.MethodGet, "/api/orders/search?date=2030-01-01", nil)
	rec := httptest.NewRecorder()

	searchorders.SearchOrders(rec, req, stub)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "error", body.Status)
	assert.Equal(t, "order not found", body.Message)
}

func TestSearchOrdersMissingDate(t *testing.T) {
	stub := &stubService{err: apperror.NewValidation("the date field is required")}

	req := httptest.NewRequest(http.MethodGet, "/api/orders/search", nil)
	rec := httptest.NewRecorder()

	searchorders.SearchOrders(rec, req, stub)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
