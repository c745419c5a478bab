package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jhoicas/order-allocation/internal/domain/entity"
	"github.com/jhoicas/order-allocation/internal/domain/repository"
)

var _ repository.CenterRepository = (*CenterRepo)(nil)

// CenterRepo CenterRepository sobre MySQL; cada descuento incrementa version.
type CenterRepo struct {
	db *sql.DB
}

// NewCenterRepository construye el adaptador.
func NewCenterRepository(db *sql.DB) *CenterRepo {
	return &CenterRepo{db: db}
}

const centerColumns = `center_id, stock, initial_stock, zip_code, updated_at`

func (r *CenterRepo) FindEligible(ctx context.Context, minStock int) ([]*entity.DistributionCenter, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+centerColumns+` FROM distribution_centers WHERE stock >= ? ORDER BY center_id ASC`, minStock)
	if err != nil {
		return nil, fmt.Errorf("find eligible centers: %w", err)
	}
	defer rows.Close()
	return scanCenters(rows)
}

// CommitDecrement aplica el UPDATE condicional y relee el stock en la misma transacción.
func (r *CenterRepo) CommitDecrement(ctx context.Context, centerID string, amount int) (int, bool, error) {
	if amount <= 0 {
		return 0, false, nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE distribution_centers
		SET stock = stock - ?, version = version + 1, updated_at = NOW(6)
		WHERE center_id = ? AND stock >= ?`,
		amount, centerID, amount,
	)
	if err != nil {
		return 0, false, fmt.Errorf("commit decrement: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("commit decrement: %w", err)
	}
	if rows == 0 {
		return 0, false, nil
	}

	var newStock int
	if err := tx.QueryRowContext(ctx,
		`SELECT stock FROM distribution_centers WHERE center_id = ?`, centerID,
	).Scan(&newStock); err != nil {
		return 0, false, fmt.Errorf("read stock: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, false, fmt.Errorf("commit tx: %w", err)
	}
	return newStock, true, nil
}

func (r *CenterRepo) Restock(ctx context.Context, centerID string, amount int) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE distribution_centers
		SET stock = stock + ?, version = version + 1, updated_at = NOW(6)
		WHERE center_id = ?`, amount, centerID)
	if err != nil {
		return fmt.Errorf("restock: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("restock: centro %s no existe", centerID)
	}
	return nil
}

func (r *CenterRepo) GetByID(ctx context.Context, centerID string) (*entity.DistributionCenter, error) {
	var c entity.DistributionCenter
	err := r.db.QueryRowContext(ctx,
		`SELECT `+centerColumns+` FROM distribution_centers WHERE center_id = ?`, centerID,
	).Scan(&c.CenterID, &c.Stock, &c.InitialStock, &c.ZipCode, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get center: %w", err)
	}
	return &c, nil
}

func (r *CenterRepo) List(ctx context.Context) ([]*entity.DistributionCenter, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+centerColumns+` FROM distribution_centers ORDER BY center_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list centers: %w", err)
	}
	defer rows.Close()
	return scanCenters(rows)
}

// Upsert usa INSERT IGNORE: un centro existente queda intacto.
func (r *CenterRepo) Upsert(ctx context.Context, c *entity.DistributionCenter) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT IGNORE INTO distribution_centers (center_id, stock, initial_stock, zip_code, version)
		VALUES (?, ?, ?, ?, 0)`,
		c.CenterID, c.Stock, c.InitialStock, c.ZipCode,
	)
	if err != nil {
		return false, fmt.Errorf("upsert center: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("upsert center: %w", err)
	}
	return rows == 1, nil
}

func scanCenters(rows *sql.Rows) ([]*entity.DistributionCenter, error) {
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
