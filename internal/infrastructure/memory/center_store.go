package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/order-allocation/internal/domain/entity"
	"github.com/jhoicas/order-allocation/internal/domain/repository"
)

var _ repository.CenterRepository = (*CenterStore)(nil)

// CenterStore guarda centros de distribución protegidos por un único mutex;
// CommitDecrement verifica y descuenta bajo el mismo lock.
type CenterStore struct {
	mu      sync.RWMutex
	centers map[string]entity.DistributionCenter
}

// NewCenterStore crea el store con los centros iniciales (se copian).
func NewCenterStore(centers ...*entity.DistributionCenter) *CenterStore {
	s := &CenterStore{centers: make(map[string]entity.DistributionCenter, len(centers))}
	for _, c := range centers {
		s.centers[c.CenterID] = *c
	}
	return s
}

// FindEligible devuelve copias de los centros con stock >= minStock ordenados por center_id.
func (s *CenterStore) FindEligible(_ context.Context, minStock int) ([]*entity.DistributionCenter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]*entity.DistributionCenter, 0, len(s.centers))
	for _, c := range s.centers {
		if c.Stock >= minStock {
			cp := c
			list = append(list, &cp)
		}
	}
	sortByID(list)
	return list, nil
}

// CommitDecrement descuenta amount si el stock actual lo permite.
func (s *CenterStore) CommitDecrement(_ context.Context, centerID string, amount int) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.centers[centerID]
	if !ok || amount <= 0 || c.Stock < amount {
		return c.Stock, false, nil
	}
	c.Stock -= amount
	c.UpdatedAt = time.Now()
	s.centers[centerID] = c
	return c.Stock, true, nil
}

// Restock devuelve amount al centro (compensación).
func (s *CenterStore) Restock(_ context.Context, centerID string, amount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.centers[centerID]
	if !ok {
		return nil
	}
	c.Stock += amount
	c.UpdatedAt = time.Now()
	s.centers[centerID] = c
	return nil
}

// GetByID devuelve una copia del centro o nil si no existe.
func (s *CenterStore) GetByID(_ context.Context, centerID string) (*entity.DistributionCenter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.centers[centerID]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// List devuelve todos los centros ordenados por center_id.
func (s *CenterStore) List(_ context.Context) ([]*entity.DistributionCenter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]*entity.DistributionCenter, 0, len(s.centers))
	for _, c := range s.centers {
		cp := c
		list = append(list, &cp)
	}
	sortByID(list)
	return list, nil
}

// Upsert crea el centro si no existe; si existe no lo modifica.
func (s *CenterStore) Upsert(_ context.Context, center *entity.DistributionCenter) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.centers[center.CenterID]; ok {
		return false, nil
	}
	s.centers[center.CenterID] = *center
	return true, nil
}

// Delete elimina un centro (reinicio administrativo; usado en tests de referencia débil).
func (s *CenterStore) Delete(centerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.centers, centerID)
}

// SetStock fuerza el stock de un centro (tests y fixtures).
func (s *CenterStore) SetStock(centerID string, stock int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.centers[centerID]; ok {
		c.Stock = stock
		s.centers[centerID] = c
	}
}

func sortByID(list []*entity.DistributionCenter) {
	sort.Slice(list, func(i, j int) bool { return list[i].CenterID < list[j].CenterID })
}
