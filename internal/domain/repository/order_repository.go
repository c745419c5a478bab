package repository

import (
	"context"
	"time"

	"github.com/jhoicas/order-allocation/internal/domain/entity"
)

// OrderRepository define el puerto de persistencia de órdenes.
// El almacenamiento garantiza unicidad de order_id.
type OrderRepository interface {
	// Create inserta la orden; devuelve domain.ErrDuplicate si order_id ya existe.
	Create(ctx context.Context, order *entity.Order) error
	// GetByOrderID devuelve nil, nil si no existe.
	GetByOrderID(ctx context.Context, orderID string) (*entity.Order, error)
	Exists(ctx context.Context, orderID string) (bool, error)
	// ListAllocatedSince devuelve las órdenes con status=allocated y created_at >= from.
	ListAllocatedSince(ctx context.Context, from time.Time) ([]*entity.Order, error)
}
