package repository

import (
	"context"

	"github.com/jhoicas/order-allocation/internal/domain/entity"
)

// CenterRepository define el puerto de inventario para centros de distribución.
// Todas las mutaciones de stock pasan por CommitDecrement (o Restock como compensación).
type CenterRepository interface {
	// FindEligible devuelve los centros con stock >= minStock ordenados por center_id ascendente.
	// Una lista vacía no es error.
	FindEligible(ctx context.Context, minStock int) ([]*entity.DistributionCenter, error)
	// CommitDecrement descuenta amount de forma atómica re-verificando stock >= amount.
	// ok=false (sin error) si la condición no se cumple; en ese caso no se modifica nada.
	CommitDecrement(ctx context.Context, centerID string, amount int) (newStock int, ok bool, err error)
	// Restock devuelve amount al centro; sólo para compensar un descuento cuya orden no se pudo registrar.
	Restock(ctx context.Context, centerID string, amount int) error
	// GetByID devuelve nil, nil si el centro no existe.
	GetByID(ctx context.Context, centerID string) (*entity.DistributionCenter, error)
	List(ctx context.Context) ([]*entity.DistributionCenter, error)
	// Upsert crea el centro si no existe (get-or-create). created=false si ya existía.
	Upsert(ctx context.Context, center *entity.DistributionCenter) (created bool, err error)
}
