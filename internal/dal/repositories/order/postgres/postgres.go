package postgresrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ordent/fulfillment/internal/service/models/lineitem"
	"github.com/ordent/fulfillment/internal/service/models/order"
)

// OrderDal represents the order data access layer model.
type OrderDal struct {
	Id          int64     `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	Date        time.Time `db:"date"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// ToModel converts OrderDal to the service layer Order model.
func (o *OrderDal) ToModel() *order.Order {
	return &order.Order{
		ID:          o.Id,
		Name:        o.Name,
		Description: o.Description,
		Date:        o.Date,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
		LineItems:   []lineitem.LineItem{}, // Populated separately
	}
}

// GenericConn is an interface that works with both pgxpool.Pool and pgx.Tx.
type GenericConn interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// PostgresOrderRepository represents a Postgres order repository.
type PostgresOrderRepository struct {
	conn GenericConn
	sb   sq.StatementBuilderType
}

// NewPostgresOrderRepository creates a new Postgres order repository.
func NewPostgresOrderRepository(conn GenericConn) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

const orderColumns = "id, name, description, date, created_at, updated_at"

func scanOrder(row pgx.Row) (*OrderDal, error) {
	var dal OrderDal
	err := row.Scan(
		&dal.Id,
		&dal.Name,
		&dal.Description,
		&dal.Date,
		&dal.CreatedAt,
		&dal.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &dal, nil
}

// FindByID returns the order with the given id, or nil when it is absent.
// Absence is a normal outcome here, not an error.
func (r *PostgresOrderRepository) FindByID(ctx context.Context, id int64) (*order.Order, error) {
	query, args, err := r.sb.
		Select("id", "name", "description", "date", "created_at", "updated_at").
		From("orders").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build find order query: %w", err)
	}

	dal, err := scanOrder(r.conn.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find order: %w", err)
	}

	return dal.ToModel(), nil
}

// Exists reports whether an order with the given id exists.
func (r *PostgresOrderRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.conn.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)", id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check order existence: %w", err)
	}

	return exists, nil
}

// Insert persists a new order and returns it with generated id and timestamps.
func (r *PostgresOrderRepository) Insert(ctx context.Context, o order.Order) (*order.Order, error) {
	query, args, err := r.sb.
		Insert("orders").
		Columns("name", "description", "date", "created_at", "updated_at").
		Values(o.Name, o.Description, o.Date, o.CreatedAt, o.UpdatedAt).
		Suffix("RETURNING " + orderColumns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert order query: %w", err)
	}

	dal, err := scanOrder(r.conn.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}

	return dal.ToModel(), nil
}

// Update applies field changes to an existing order and returns the updated row.
func (r *PostgresOrderRepository) Update(ctx context.Context, id int64, fields order.Fields) (*order.Order, error) {
	query, args, err := r.sb.
		Update("orders").
		Set("name", fields.Name).
		Set("description", fields.Description).
		Set("date", fields.Date).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + orderColumns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update order query: %w", err)
	}

	dal, err := scanOrder(r.conn.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	return dal.ToModel(), nil
}

// Delete removes the order. Line items go with it via ON DELETE CASCADE, but
// the engine detaches them explicitly before calling this.
func (r *PostgresOrderRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := r.sb.
		Delete("orders").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete order query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}

	return nil
}

// Search returns orders matching the filter. The date constraint is always an
// exact match applied in storage; Ids narrows the result to candidates from
// the search index when free-text terms were supplied.
func (r *PostgresOrderRepository) Search(ctx context.Context, filter *order.SearchOrdersModel) ([]order.Order, error) {
	builder := r.sb.
		Select("id", "name", "description", "date", "created_at", "updated_at").
		From("orders").
		Where(sq.Eq{"date": filter.Date}).
		OrderBy("id")

	if filter.Description != "" {
		builder = builder.Where(sq.ILike{"description": "%" + filter.Description + "%"})
	}

	if filter.Ids != nil {
		builder = builder.Where(sq.Eq{"id": filter.Ids})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build search orders query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search orders: %w", err)
	}
	defer rows.Close()

	var result []order.Order
	for rows.Next() {
		dal, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		result = append(result, *dal.ToModel())
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
