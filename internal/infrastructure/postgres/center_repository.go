package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/order-allocation/internal/domain/entity"
	"github.com/jhoicas/order-allocation/internal/domain/repository"
)

var _ repository.CenterRepository = (*CenterRepo)(nil)

// CenterRepo implementación de CenterRepository sobre PostgreSQL (usable con pool o tx).
type CenterRepo struct {
	q Querier
}

// NewCenterRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCenterRepository(q Querier) *CenterRepo {
	return &CenterRepo{q: q}
}

const centerColumns = `center_id, stock, initial_stock, zip_code, updated_at`

// FindEligible lista los centros con stock >= minStock ordenados por center_id.
func (r *CenterRepo) FindEligible(ctx context.Context, minStock int) ([]*entity.DistributionCenter, error) {
	query := `SELECT ` + centerColumns + ` FROM distribution_centers WHERE stock >= $1 ORDER BY center_id ASC`
	rows, err := r.q.Query(ctx, query, minStock)
	if err != nil {
		return nil, fmt.Errorf("find eligible centers: %w", err)
	}
	defer rows.Close()
	return scanCenters(rows)
}

// CommitDecrement descuenta amount sólo si el stock sigue alcanzando; la condición se evalúa en la misma sentencia.
func (r *CenterRepo) CommitDecrement(ctx context.Context, centerID string, amount int) (int, bool, error) {
	if amount <= 0 {
		return 0, false, nil
	}
	query := `
		UPDATE distribution_centers
		SET stock = stock - $2, updated_at = now()
		WHERE center_id = $1 AND stock >= $2
		RETURNING stock`
	var newStock int
	err := r.q.QueryRow(ctx, query, centerID, amount).Scan(&newStock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("commit decrement: %w", err)
	}
	return newStock, true, nil
}

// Restock devuelve amount al centro (compensación).
func (r *CenterRepo) Restock(ctx context.Context, centerID string, amount int) error {
	query := `UPDATE distribution_centers SET stock = stock + $2, updated_at = now() WHERE center_id = $1`
	tag, err := r.q.Exec(ctx, query, centerID, amount)
	if err != nil {
		return fmt.Errorf("restock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("restock: centro %s no existe", centerID)
	}
	return nil
}

// GetByID obtiene un centro; nil si no existe.
func (r *CenterRepo) GetByID(ctx context.Context, centerID string) (*entity.DistributionCenter, error) {
	query := `SELECT ` + centerColumns + ` FROM distribution_centers WHERE center_id = $1`
	var c entity.DistributionCenter
	err := r.q.QueryRow(ctx, query, centerID).Scan(&c.CenterID, &c.Stock, &c.InitialStock, &c.ZipCode, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get center: %w", err)
	}
	return &c, nil
}

// List devuelve todos los centros ordenados por center_id.
func (r *CenterRepo) List(ctx context.Context) ([]*entity.DistributionCenter, error) {
	query := `SELECT ` + centerColumns + ` FROM distribution_centers ORDER BY center_id ASC`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list centers: %w", err)
	}
	defer rows.Close()
	return scanCenters(rows)
}

// Upsert crea el centro si no existe; uno existente no se modifica.
func (r *CenterRepo) Upsert(ctx context.Context, c *entity.DistributionCenter) (bool, error) {
	query := `
		INSERT INTO distribution_centers (center_id, stock, initial_stock, zip_code, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (center_id) DO NOTHING`
	tag, err := r.q.Exec(ctx, query, c.CenterID, c.Stock, c.InitialStock, c.ZipCode)
	if err != nil {
		return false, fmt.Errorf("upsert center: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func scanCenters(rows pgx.Rows) ([]*entity.DistributionCenter, error) {
	var list []*entity.DistributionCenter
	for rows.Next() {
		var c entity.DistributionCenter
		if err := rows.Scan(&c.CenterID, &c.Stock, &c.InitialStock, &c.ZipCode, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan center: %w", err)
		}
		list = append(list, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate centers: %w", err)
	}
	return list, nil
}
