package fulfillsvc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/ordent/fulfillment/internal/apperror"
	"github.com/ordent/fulfillment/internal/dal/interfaces/ilineitemrepo"
	"github.com/ordent/fulfillment/internal/dal/interfaces/iorderrepo"
	"github.com/ordent/fulfillment/internal/dal/interfaces/ioutboxrepo"
	"github.com/ordent/fulfillment/internal/dal/interfaces/istockrepo"
	"github.com/ordent/fulfillment/internal/dal/postgres"
	"github.com/ordent/fulfillment/internal/dal/searchindex"
	"github.com/ordent/fulfillment/internal/dal/uow"
	"github.com/ordent/fulfillment/internal/service/models/lineitem"
	"github.com/ordent/fulfillment/internal/service/models/order"
	"github.com/ordent/fulfillment/internal/service/models/outbox"
	"github.com/ordent/fulfillment/internal/service/validation"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
)

// UnitOfWork scopes repositories to one transaction. Everything the engine
// mutates between Begin and Commit lands atomically or not at all.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	OrderRepository() iorderrepo.IOrderRepository
	LineItemRepository() ilineitemrepo.ILineItemRepository
	StockRepository() istockrepo.IStockRepository
	OutboxRepository() ioutboxrepo.IOutboxRepository
}

// Service is the order-fulfillment engine. It validates operation payloads,
// reconciles them against the stock ledger and keeps stock counts and
// order-product associations consistent under partial failure.
type Service struct {
	pgClient   *postgres.Client
	index      searchindex.Index
	validators validation.Validators
	uowFactory func() UnitOfWork
}

func (s *Service) newUOW() UnitOfWork {
	return s.uowFactory()
}

// option is a function that configures the Service.
type option func(*Service)

// MustNewService creates a new fulfillment service.
func MustNewService(opts ...option) *Service {
	s := &Service{}
	for _, opt := range opts {
		opt(s)
	}

	if s.uowFactory == nil {
		s.uowFactory = func() UnitOfWork {
			return uow.NewUnitOfWork(s.pgClient)
		}
	}

	return s
}

// WithPostgresClient sets the Postgres client for the Service.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *Service) {
		s.pgClient = pgClient
	}
}

// WithSearchIndex sets the free-text search adapter.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithSearchIndex(index searchindex.Index) option {
	return func(s *Service) {
		s.index = index
	}
}

// WithValidators sets the operation validators.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithValidators(v validation.Validators) option {
	return func(s *Service) {
		s.validators = v
	}
}

// WithUnitOfWorkFactory overrides how units of work are created.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUnitOfWorkFactory(factory func() UnitOfWork) option {
	return func(s *Service) {
		s.uowFactory = factory
	}
}

// SearchOrders validates the query and returns the matching orders with their
// line items. Zero matches is a not-found failure, not an empty success.
func (s *Service) SearchOrders(ctx context.Context, q order.SearchQuery) ([]order.Order, error) {
	ctx, span := otel.Tracer("fulfillment").Start(ctx, "fulfillsvc.SearchOrders")
	defer span.End()

	if err := s.validators.Search.Validate(ctx, q); err != nil {
		return nil, err
	}

	date, err := validation.ParseDate(q.Date)
	if err != nil {
		return nil, apperror.NewValidation("the date field must be a valid date")
	}

	filter := &order.SearchOrdersModel{
		Date:        date,
		Description: q.Description,
	}

	// Free-text terms go through the search index first; the date constraint
	// is applied in storage on top of the candidate set.
	if q.Name != "" || q.Description != "" {
		term := q.Name
		if q.Description != "" {
			if term != "" {
				term += " "
			}
			term += q.Description
		}

		ids, err := s.index.Search(ctx, term)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return nil, apperror.NewNotFound("order not found")
		}
		filter.Ids = ids
	}

	work := s.newUOW()

	orders, err := work.OrderRepository().Search(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, apperror.NewNotFound("order not found")
	}

	orderIDs := make([]int64, 0, len(orders))
	for _, o := range orders {
		orderIDs = append(orderIDs, o.ID)
	}

	items, err := work.LineItemRepository().QueryByOrderIDs(ctx, orderIDs)
	if err != nil {
		return nil, err
	}

	for i := range orders {
		for _, item := range items {
			if item.OrderID == orders[i].ID {
				orders[i].LineItems = append(orders[i].LineItems, item)
			}
		}
	}

	return orders, nil
}

// CreateOrder validates the payload, then persists the order, decrements
// stock for every line item and attaches the items inside one unit of work.
// Any failed decrement rolls the whole creation back.
func (s *Service) CreateOrder(ctx context.Context, p order.CreatePayload) (*order.Order, error) {
	ctx, span := otel.Tracer("fulfillment").Start(ctx, "fulfillsvc.CreateOrder")
	defer span.End()

	if err := s.validators.Create.Validate(ctx, p); err != nil {
		return nil, err
	}

	now := time.Now()
	date := now
	if p.Date != "" {
		parsed, err := validation.ParseDate(p.Date)
		if err != nil {
			return nil, apperror.NewValidation("the date field must be a valid date")
		}
		date = parsed
	}

	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return nil, apperror.NewPersistence("failed to begin transaction", err)
	}
	defer func() {
		if err := work.Rollback(ctx); err != nil {
			slog.Error("Failed to roll back create order transaction", "error", err)
		}
	}()

	created, err := work.OrderRepository().Insert(ctx, order.Order{
		Name:        p.Name,
		Description: p.Description,
		Date:        date,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, err
	}

	items, err := s.allocate(ctx, work, created.ID, p.Products, now)
	if err != nil {
		return nil, err
	}
	created.LineItems = items

	if err := s.enqueueEvent(ctx, work, "order.created", created.ID, now); err != nil {
		return nil, err
	}

	if err := work.Commit(ctx); err != nil {
		return nil, apperror.NewPersistence("failed to commit transaction", err)
	}

	slog.Info("Order created", "order_id", created.ID, "items", len(created.LineItems))

	return created, nil
}

// UpdateOrder restocks the order's current line items, detaches them, applies
// the field updates, then allocates the new line items — all in one unit of
// work, so a partial overlap between old and new products nets out against a
// pre-order stock baseline.
func (s *Service) UpdateOrder(ctx context.Context, p order.UpdatePayload) (*order.Order, error) {
	ctx, span := otel.Tracer("fulfillment").Start(ctx, "fulfillsvc.UpdateOrder")
	defer span.End()

	if err := s.validators.Update.Validate(ctx, p); err != nil {
		return nil, err
	}

	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return nil, apperror.NewPersistence("failed to begin transaction", err)
	}
	defer func() {
		if err := work.Rollback(ctx); err != nil {
			slog.Error("Failed to roll back update order transaction", "error", err)
		}
	}()

	existing, err := work.OrderRepository().FindByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, apperror.NewNotFound(fmt.Sprintf("order %d not found", p.ID))
	}

	if err := s.restock(ctx, work, existing.ID); err != nil {
		return nil, err
	}

	now := time.Now()
	date := existing.Date
	if p.Date != "" {
		parsed, err := validation.ParseDate(p.Date)
		if err != nil {
			return nil, apperror.NewValidation("the date field must be a valid date")
		}
		date = parsed
	}

	updated, err := work.OrderRepository().Update(ctx, existing.ID, order.Fields{
		Name:        p.Name,
		Description: p.Description,
		Date:        date,
	})
	if err != nil {
		return nil, err
	}

	items, err := s.allocate(ctx, work, updated.ID, p.Products, now)
	if err != nil {
		return nil, err
	}
	updated.LineItems = items

	if err := s.enqueueEvent(ctx, work, "order.updated", updated.ID, now); err != nil {
		return nil, err
	}

	if err := work.Commit(ctx); err != nil {
		return nil, apperror.NewPersistence("failed to commit transaction", err)
	}

	slog.Info("Order updated", "order_id", updated.ID, "items", len(updated.LineItems))

	return updated, nil
}

// DeleteOrder restocks the order's line items, detaches them and removes the
// order in one unit of work.
func (s *Service) DeleteOrder(ctx context.Context, id string) error {
	ctx, span := otel.Tracer("fulfillment").Start(ctx, "fulfillsvc.DeleteOrder")
	defer span.End()

	if err := s.validators.Delete.Validate(ctx, id); err != nil {
		return err
	}

	orderID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return apperror.NewValidation("the id field must be an integer")
	}

	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return apperror.NewPersistence("failed to begin transaction", err)
	}
	defer func() {
		if err := work.Rollback(ctx); err != nil {
			slog.Error("Failed to roll back delete order transaction", "error", err)
		}
	}()

	existing, err := work.OrderRepository().FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if existing == nil {
		return apperror.NewNotFound(fmt.Sprintf("order %d not found", orderID))
	}

	if err := s.restock(ctx, work, existing.ID); err != nil {
		return err
	}

	if err := work.OrderRepository().Delete(ctx, existing.ID); err != nil {
		return err
	}

	if err := s.enqueueEvent(ctx, work, "order.deleted", existing.ID, time.Now()); err != nil {
		return err
	}

	if err := work.Commit(ctx); err != nil {
		return apperror.NewPersistence("failed to commit transaction", err)
	}

	slog.Info("Order deleted", "order_id", existing.ID)

	return nil
}

// allocate decrements stock for each product selection and attaches the
// resulting line items to the order.
func (s *Service) allocate(ctx context.Context, work UnitOfWork, orderID int64, selections []order.ProductSelection, now time.Time) ([]lineitem.LineItem, error) {
	items := make([]lineitem.LineItem, 0, len(selections))
	for _, sel := range selections {
		if err := work.StockRepository().Decrement(ctx, sel.ID, sel.Quantity); err != nil {
			return nil, err
		}

		items = append(items, lineitem.LineItem{
			OrderID:   orderID,
			ProductID: sel.ID,
			Quantity:  sel.Quantity,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	return work.LineItemRepository().BulkInsert(ctx, items)
}

// restock returns every current line item's quantity to its product and
// detaches the items from the order.
func (s *Service) restock(ctx context.Context, work UnitOfWork, orderID int64) error {
	items, err := work.LineItemRepository().QueryByOrderIDs(ctx, []int64{orderID})
	if err != nil {
		return err
	}

	for _, item := range items {
		if err := work.StockRepository().Increment(ctx, item.ProductID, item.Quantity); err != nil {
			return err
		}
	}

	return work.LineItemRepository().DeleteByOrder(ctx, orderID)
}

type orderEvent struct {
	EventID    string    `json:"eventId"`
	Type       string    `json:"type"`
	OrderID    int64     `json:"orderId"`
	OccurredAt time.Time `json:"occurredAt"`
}

// enqueueEvent inserts an order lifecycle event into the outbox, inside the
// current unit of work.
func (s *Service) enqueueEvent(ctx context.Context, work UnitOfWork, eventType string, orderID int64, now time.Time) error {
	payload, err := json.Marshal(orderEvent{
		EventID:    uuid.NewString(),
		Type:       eventType,
		OrderID:    orderID,
		OccurredAt: now,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	return work.OutboxRepository().Insert(ctx, outbox.Message{
		ExchangeName: viper.GetString("rabbitmq.exchange"),
		RoutingKey:   eventType,
		Payload:      payload,
		ContentType:  "application/json",
		MaxRetries:   10,
		CreatedAt:    now,
		UpdatedAt:    now,
		NextRetryAt:  now,
	})
}
