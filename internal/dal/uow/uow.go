package uow

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/ordent/fulfillment/internal/dal/interfaces/ilineitemrepo"
	"github.com/ordent/fulfillment/internal/dal/interfaces/iorderrepo"
	"github.com/ordent/fulfillment/internal/dal/interfaces/ioutboxrepo"
	"github.com/ordent/fulfillment/internal/dal/interfaces/istockrepo"
	"github.com/ordent/fulfillment/internal/dal/postgres"
	lineitemrepo "github.com/ordent/fulfillment/internal/dal/repositories/lineitem/postgres"
	orderrepo "github.com/ordent/fulfillment/internal/dal/repositories/order/postgres"
	outboxrepo "github.com/ordent/fulfillment/internal/dal/repositories/outbox/postgres"
	stockrepo "github.com/ordent/fulfillment/internal/dal/repositories/stock/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// unitOfWork scopes the order, line item, stock and outbox repositories to a
// single transaction. Before Begin the repositories run on the pool; after
// Begin they are rebound to the transaction, so every mutation between Begin
// and Commit lands atomically or not at all.
type unitOfWork struct {
	pool         *pgxpool.Pool
	tx           pgx.Tx
	orderRepo    iorderrepo.IOrderRepository
	lineItemRepo ilineitemrepo.ILineItemRepository
	stockRepo    istockrepo.IStockRepository
	outboxRepo   ioutboxrepo.IOutboxRepository
}

func (u *unitOfWork) OrderRepository() iorderrepo.IOrderRepository {
	return u.orderRepo
}

func (u *unitOfWork) LineItemRepository() ilineitemrepo.ILineItemRepository {
	return u.lineItemRepo
}

func (u *unitOfWork) StockRepository() istockrepo.IStockRepository {
	return u.stockRepo
}

func (u *unitOfWork) OutboxRepository() ioutboxrepo.IOutboxRepository {
	return u.outboxRepo
}

// NewUnitOfWork creates a unit of work bound to the pool.
func NewUnitOfWork(client *postgres.Client) *unitOfWork {
	pool := client.Pool()

	return &unitOfWork{
		pool:         pool,
		orderRepo:    orderrepo.NewPostgresOrderRepository(pool),
		lineItemRepo: lineitemrepo.NewPostgresLineItemRepository(pool),
		stockRepo:    stockrepo.NewPostgresStockRepository(pool),
		outboxRepo:   outboxrepo.NewPostgresOutboxRepository(pool),
	}
}

// Begin opens a transaction and rebinds the repositories onto it.
func (u *unitOfWork) Begin(ctx context.Context) error {
	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return err
	}

	u.tx = tx
	u.orderRepo = orderrepo.NewPostgresOrderRepository(tx)
	u.lineItemRepo = lineitemrepo.NewPostgresLineItemRepository(tx)
	u.stockRepo = stockrepo.NewPostgresStockRepository(tx)
	u.outboxRepo = outboxrepo.NewPostgresOutboxRepository(tx)

	return nil
}

// Commit commits the transaction, if one was begun.
func (u *unitOfWork) Commit(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}

	return u.tx.Commit(ctx)
}

// Rollback aborts the transaction. Safe to defer: rolling back after a
// successful commit is a no-op.
func (u *unitOfWork) Rollback(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}

	err := u.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}

	return err
}
