// Package store abre los repositorios según DB_DRIVER.
package store

import (
	"context"
	"fmt"

	"github.com/jhoicas/order-allocation/internal/domain/repository"
	"github.com/jhoicas/order-allocation/internal/infrastructure/memory"
	"github.com/jhoicas/order-allocation/internal/infrastructure/mysql"
	"github.com/jhoicas/order-allocation/internal/infrastructure/postgres"
	"github.com/jhoicas/order-allocation/pkg/config"
)

// Stores repositorios abiertos y su cierre.
type Stores struct {
	Driver  string
	Centers repository.CenterRepository
	Orders  repository.OrderRepository
	close   func() error
}

// Close libera las conexiones.
func (s *Stores) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// Open conecta con el driver configurado.
func Open(ctx context.Context, cfg config.DBConfig) (*Stores, error) {
	switch cfg.Driver {
	case config.DriverPostgres, "":
		pool, err := postgres.NewPool(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		return &Stores{
			Driver:  config.DriverPostgres,
			Centers: postgres.NewCenterRepository(pool),
			Orders:  postgres.NewOrderRepository(pool),
			close:   func() error { pool.Close(); return nil },
		}, nil
	case config.DriverMySQL:
		db, err := mysql.Open(ctx, cfg.MySQLDSN)
		if err != nil {
			return nil, fmt.Errorf("conexión a MySQL: %w", err)
		}
		return &Stores{
			Driver:  config.DriverMySQL,
			Centers: mysql.NewCenterRepository(db),
			Orders:  mysql.NewOrderRepository(db),
			close:   db.Close,
		}, nil
	case config.DriverMemory:
		return &Stores{
			Driver:  config.DriverMemory,
			Centers: memory.NewCenterStore(),
			Orders:  memory.NewOrderStore(),
		}, nil
	default:
		return nil, fmt.Errorf("DB_DRIVER desconocido: %q", cfg.Driver)
	}
}
