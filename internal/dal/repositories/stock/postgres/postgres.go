package postgresrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ordent/fulfillment/internal/apperror"
)

// GenericConn is an interface that works with both pgxpool.Pool and pgx.Tx.
type GenericConn interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// PostgresStockRepository is the stock ledger over the products table. The
// stock row is locked with FOR UPDATE so concurrent adjustments to the same
// product serialize instead of losing updates. When the repository runs on a
// transaction the lock is held until that transaction ends.
type PostgresStockRepository struct {
	conn GenericConn
}

// NewPostgresStockRepository creates a new Postgres stock repository.
func NewPostgresStockRepository(conn GenericConn) *PostgresStockRepository {
	return &PostgresStockRepository{
		conn: conn,
	}
}

// Decrement reduces the product's stock by qty, failing when the product is
// missing or the remaining stock would go negative.
func (r *PostgresStockRepository) Decrement(ctx context.Context, productID int64, qty int) error {
	var stock int
	err := r.conn.QueryRow(ctx,
		"SELECT stock FROM products WHERE id = $1 FOR UPDATE", productID,
	).Scan(&stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperror.NewNotFound(fmt.Sprintf("product %d not found", productID))
	}
	if err != nil {
		return fmt.Errorf("failed to lock stock row: %w", err)
	}

	if stock < qty {
		return apperror.NewInsufficientStock(productID)
	}

	_, err = r.conn.Exec(ctx,
		"UPDATE products SET stock = stock - $1, updated_at = $2 WHERE id = $3",
		qty, time.Now(), productID,
	)
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}

	return nil
}

// Increment raises the product's stock by qty. Restock is unconditional,
// there is no upper bound.
func (r *PostgresStockRepository) Increment(ctx context.Context, productID int64, qty int) error {
	tag, err := r.conn.Exec(ctx,
		"UPDATE products SET stock = stock + $1, updated_at = $2 WHERE id = $3",
		qty, time.Now(), productID,
	)
	if err != nil {
		return fmt.Errorf("failed to increment stock: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound(fmt.Sprintf("product %d not found", productID))
	}

	return nil
}

// CheckAvailability reports whether the product has at least qty in stock.
func (r *PostgresStockRepository) CheckAvailability(ctx context.Context, productID int64, qty int) (bool, error) {
	var stock int
	err := r.conn.QueryRow(ctx,
		"SELECT stock FROM products WHERE id = $1", productID,
	).Scan(&stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, apperror.NewNotFound(fmt.Sprintf("product %d not found", productID))
	}
	if err != nil {
		return false, fmt.Errorf("failed to read stock: %w", err)
	}

	return stock >= qty, nil
}

// Exists reports whether a product with the given id exists.
func (r *PostgresStockRepository) Exists(ctx context.Context, productID int64) (bool, error) {
	var exists bool
	err := r.conn.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)", productID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check product existence: %w", err)
	}

	return exists, nil
}
