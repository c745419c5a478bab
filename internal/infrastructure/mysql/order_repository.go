package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/order-allocation/internal/domain"
	"github.com/jhoicas/order-allocation/internal/domain/entity"
	"github.com/jhoicas/order-allocation/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo OrderRepository sobre MySQL.
type OrderRepo struct {
	db *sql.DB
}

// NewOrderRepository construye el adaptador.
func NewOrderRepository(db *sql.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

const orderColumns = `order_id, quantity, zip_code, center_id, status, allocation_id, created_at`

// Create inserta la orden; clave duplicada (1062) devuelve domain.ErrDuplicate.
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		o.OrderID, o.Quantity, o.ZipCode, o.CenterID, o.Status, o.AllocationID, o.CreatedAt.UTC(),
	)
	if err != nil {
		if isDuplicateEntry(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *OrderRepo) GetByOrderID(ctx context.Context, orderID string) (*entity.Order, error) {
	var o entity.Order
	err := r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE order_id = ?`, orderID,
	).Scan(&o.OrderID, &o.Quantity, &o.ZipCode, &o.CenterID, &o.Status, &o.AllocationID, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}
	return &o, nil
}

func (r *OrderRepo) Exists(ctx context.Context, orderID string) (bool, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM orders WHERE order_id = ?)`, orderID,
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("order exists: %w", err)
	}
	return exists, nil
}

func (r *OrderRepo) ListAllocatedSince(ctx context.Context, from time.Time) ([]*entity.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE status = ? AND created_at >= ?
		ORDER BY created_at ASC`, entity.OrderStatusAllocated, from.UTC())
	if err != nil {
		return nil, fmt.Errorf("list allocated orders: %w", err)
	}
	defer rows.Close()

	var list []*entity.Order
	for rows.Next() {
		var o entity.Order
		if err := rows.Scan(&o.OrderID, &o.Quantity, &o.ZipCode, &o.CenterID, &o.Status, &o.AllocationID, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		list = append(list, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return list, nil
}
