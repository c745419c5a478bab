package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/order-allocation/internal/domain"
	"github.com/jhoicas/order-allocation/internal/domain/entity"
	"github.com/jhoicas/order-allocation/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementación de OrderRepository sobre PostgreSQL.
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

const orderColumns = `order_id, quantity, zip_code, center_id, status, allocation_id, created_at`

// Create inserta la orden. Un order_id repetido devuelve domain.ErrDuplicate.
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO orders (order_id, quantity, zip_code, center_id, status, allocation_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		o.OrderID, o.Quantity, o.ZipCode, o.CenterID, o.Status, o.AllocationID, o.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

// GetByOrderID obtiene la orden; nil si no existe.
func (r *OrderRepo) GetByOrderID(ctx context.Context, orderID string) (*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE order_id = $1`
	var o entity.Order
	err := r.q.QueryRow(ctx, query, orderID).Scan(
		&o.OrderID, &o.Quantity, &o.ZipCode, &o.CenterID, &o.Status, &o.AllocationID, &o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &o, nil
}

// Exists indica si ya hay una orden con ese id.
func (r *OrderRepo) Exists(ctx context.Context, orderID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE order_id = $1)`, orderID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("order exists: %w", err)
	}
	return exists, nil
}

// ListAllocatedSince lista las órdenes allocated con created_at >= from.
func (r *OrderRepo) ListAllocatedSince(ctx context.Context, from time.Time) ([]*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
		WHERE status = $1 AND created_at >= $2
		ORDER BY created_at ASC`
	rows, err := r.q.Query(ctx, query, entity.OrderStatusAllocated, from)
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
