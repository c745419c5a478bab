package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/order-allocation/internal/domain"
	"github.com/jhoicas/order-allocation/internal/domain/entity"
	"github.com/jhoicas/order-allocation/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderStore)(nil)

// OrderStore guarda órdenes con unicidad de order_id.
type OrderStore struct {
	mu     sync.RWMutex
	orders map[string]entity.Order
}

// NewOrderStore crea un store vacío.
func NewOrderStore() *OrderStore {
	return &OrderStore{orders: make(map[string]entity.Order)}
}

// Create inserta la orden o devuelve domain.ErrDuplicate.
func (s *OrderStore) Create(_ context.Context, order *entity.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[order.OrderID]; ok {
		return domain.ErrDuplicate
	}
	s.orders[order.OrderID] = cloneOrder(*order)
	return nil
}

// GetByOrderID devuelve una copia de la orden o nil.
func (s *OrderStore) GetByOrderID(_ context.Context, orderID string) (*entity.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[orderID]
	if !ok {
		return nil, nil
	}
	cp := cloneOrder(o)
	return &cp, nil
}

// Exists indica si ya hay una orden con ese id.
func (s *OrderStore) Exists(_ context.Context, orderID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.orders[orderID]
	return ok, nil
}

// ListAllocatedSince devuelve las órdenes allocated con created_at >= from, por fecha.
func (s *OrderStore) ListAllocatedSince(_ context.Context, from time.Time) ([]*entity.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var list []*entity.Order
	for _, o := range s.orders {
		if o.Status != entity.OrderStatusAllocated || o.CreatedAt.Before(from) {
			continue
		}
		cp := cloneOrder(o)
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	return list, nil
}

// Len número de órdenes registradas.
func (s *OrderStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders)
}

// Put registra una orden tal cual, sin verificar unicidad (fixtures de tests).
func (s *OrderStore) Put(order *entity.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[order.OrderID] = cloneOrder(*order)
}

func cloneOrder(o entity.Order) entity.Order {
	if o.CenterID != nil {
		id := *o.CenterID
		o.CenterID = &id
	}
	return o
}
