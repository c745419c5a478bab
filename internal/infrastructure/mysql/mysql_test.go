package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/order-allocation/internal/domain"
	"github.com/jhoicas/order-allocation/internal/domain/entity"
)

var testSchema = []string{
	`DROP TABLE IF EXISTS orders`,
	`DROP TABLE IF EXISTS distribution_centers`,
	`CREATE TABLE distribution_centers (
		center_id VARCHAR(10) NOT NULL PRIMARY KEY,
		stock INT NOT NULL,
		initial_stock INT NOT NULL DEFAULT 100,
		zip_code VARCHAR(10) NOT NULL,
		version BIGINT NOT NULL DEFAULT 0,
		updated_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6)
	) ENGINE=InnoDB`,
	`CREATE TABLE orders (
		order_id VARCHAR(20) NOT NULL PRIMARY KEY,
		quantity INT NOT NULL,
		zip_code VARCHAR(10) NOT NULL,
		center_id VARCHAR(10) NULL,
		status VARCHAR(10) NOT NULL,
		allocation_id VARCHAR(36) NOT NULL DEFAULT '',
		created_at DATETIME(6) NOT NULL
	) ENGINE=InnoDB`,
}

func getMySQLDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("TEST_MYSQL_DSN no definido")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	db, err := Open(ctx, dsn)
	if err != nil {
		t.Skipf("MySQL no disponible: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	for _, stmt := range testSchema {
		_, err := db.ExecContext(ctx, stmt)
		require.NoError(t, err)
	}
	return db
}

func TestCenterRepo_CommitDecrement(t *testing.T) {
	db := getMySQLDB(t)
	ctx := context.Background()
	repo := NewCenterRepository(db)

	created, err := repo.Upsert(ctx, &entity.DistributionCenter{CenterID: "C1", Stock: 15, InitialStock: 100, ZipCode: "10000"})
	require.NoError(t, err)
	assert.True(t, created)
	created, err = repo.Upsert(ctx, &entity.DistributionCenter{CenterID: "C1", Stock: 80, InitialStock: 100, ZipCode: "10000"})
	require.NoError(t, err)
	assert.False(t, created)

	stock, ok, err := repo.CommitDecrement(ctx, "C1", 10)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 5, stock)

	_, ok, err = repo.CommitDecrement(ctx, "C1", 6)
	require.NoError(t, err)
	assert.False(t, ok)

	var version int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT version FROM distribution_centers WHERE center_id = 'C1'`).Scan(&version))
	assert.Equal(t, 1, version)

	require.NoError(t, repo.Restock(ctx, "C1", 10))
	eligible, err := repo.FindEligible(ctx, 15)
	require.NoError(t, err)
	require.Len(t, eligible, 1)
	assert.Equal(t, 15, eligible[0].Stock)
}

func TestCenterRepo_DecrementConcurrente(t *testing.T) {
	db := getMySQLDB(t)
	ctx := context.Background()
	repo := NewCenterRepository(db)
	_, err := repo.Upsert(ctx, &entity.DistributionCenter{CenterID: "C1", Stock: 30, InitialStock: 100, ZipCode: "10000"})
	require.NoError(t, err)

	var ok int64
	var wg sync.WaitGroup
	for i := 0; i < 60; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, won, err := repo.CommitDecrement(ctx, "C1", 1); err == nil && won {
				atomic.AddInt64(&ok, 1)
			}
		}()
	}
	wg.Wait()

	c, err := repo.GetByID(ctx, "C1")
	require.NoError(t, err)
	assert.Equal(t, int64(30), ok)
	assert.Equal(t, 0, c.Stock)
}

func TestOrderRepo_Duplicado(t *testing.T) {
	db := getMySQLDB(t)
	ctx := context.Background()
	orders := NewOrderRepository(db)

	o := &entity.Order{OrderID: "O1", Quantity: 1, ZipCode: "10000", Status: entity.OrderStatusAllocated,
		AllocationID: "a", CreatedAt: time.Now().UTC()}
	require.NoError(t, orders.Create(ctx, o))
	assert.ErrorIs(t, orders.Create(ctx, o), domain.ErrDuplicate)

	got, err := orders.GetByOrderID(ctx, "O1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Nil(t, got.CenterID)

	missing, err := orders.GetByOrderID(ctx, "NOPE")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestIsDuplicateEntry(t *testing.T) {
	assert.True(t, isDuplicateEntry(fmt.Errorf("insert: %w", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})))
	assert.False(t, isDuplicateEntry(&mysql.MySQLError{Number: 1213}))
	assert.False(t, isDuplicateEntry(sql.ErrNoRows))
}
