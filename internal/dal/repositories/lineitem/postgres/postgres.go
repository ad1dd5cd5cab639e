package postgresrepo

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ordent/fulfillment/internal/service/models/lineitem"
)

// LineItemDal represents the line item data access layer model.
type LineItemDal struct {
	Id        int64     `db:"id"`
	OrderId   int64     `db:"order_id"`
	ProductId int64     `db:"product_id"`
	Quantity  int       `db:"quantity"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// ToModel converts LineItemDal to the service layer LineItem model.
func (li *LineItemDal) ToModel() *lineitem.LineItem {
	return &lineitem.LineItem{
		ID:        li.Id,
		OrderID:   li.OrderId,
		ProductID: li.ProductId,
		Quantity:  li.Quantity,
		CreatedAt: li.CreatedAt,
		UpdatedAt: li.UpdatedAt,
	}
}

// GenericConn is an interface that works with both pgxpool.Pool and pgx.Tx.
type GenericConn interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// PostgresLineItemRepository represents a Postgres line item repository.
type PostgresLineItemRepository struct {
	conn GenericConn
	sb   sq.StatementBuilderType
}

// NewPostgresLineItemRepository creates a new Postgres line item repository.
func NewPostgresLineItemRepository(conn GenericConn) *PostgresLineItemRepository {
	return &PostgresLineItemRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// BulkInsert attaches line items to their orders and returns them with
// generated ids.
func (r *PostgresLineItemRepository) BulkInsert(ctx context.Context, items []lineitem.LineItem) ([]lineitem.LineItem, error) {
	if len(items) == 0 {
		return []lineitem.LineItem{}, nil
	}

	builder := r.sb.
		Insert("order_products").
		Columns("order_id", "product_id", "quantity", "created_at", "updated_at")

	for _, item := range items {
		builder = builder.Values(item.OrderID, item.ProductID, item.Quantity, item.CreatedAt, item.UpdatedAt)
	}

	query, args, err := builder.
		Suffix("RETURNING id, order_id, product_id, quantity, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert line items query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to bulk insert line items: %w", err)
	}
	defer rows.Close()

	result := make([]lineitem.LineItem, 0, len(items))
	for rows.Next() {
		var dal LineItemDal
		err := rows.Scan(
			&dal.Id,
			&dal.OrderId,
			&dal.ProductId,
			&dal.Quantity,
			&dal.CreatedAt,
			&dal.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan line item: %w", err)
		}
		result = append(result, *dal.ToModel())
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// DeleteByOrder detaches every line item of the given order.
func (r *PostgresLineItemRepository) DeleteByOrder(ctx context.Context, orderID int64) error {
	query, args, err := r.sb.
		Delete("order_products").
		Where(sq.Eq{"order_id": orderID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete line items query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete line items: %w", err)
	}

	return nil
}

// QueryByOrderIDs returns the line items of the given orders.
func (r *PostgresLineItemRepository) QueryByOrderIDs(ctx context.Context, orderIDs []int64) ([]lineitem.LineItem, error) {
	if len(orderIDs) == 0 {
		return []lineitem.LineItem{}, nil
	}

	query, args, err := r.sb.
		Select("id", "order_id", "product_id", "quantity", "created_at", "updated_at").
		From("order_products").
		Where(sq.Eq{"order_id": orderIDs}).
		OrderBy("order_id", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query line items query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query line items: %w", err)
	}
	defer rows.Close()

	var result []lineitem.LineItem
	for rows.Next() {
		var dal LineItemDal
		err := rows.Scan(
			&dal.Id,
			&dal.OrderId,
			&dal.ProductId,
			&dal.Quantity,
			&dal.CreatedAt,
			&dal.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan line item: %w", err)
		}
		result = append(result, *dal.ToModel())
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
