package memory_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/order-allocation/internal/domain"
	"github.com/jhoicas/order-allocation/internal/domain/entity"
	"github.com/jhoicas/order-allocation/internal/infrastructure/memory"
)

func TestCenterStore_FindEligibleOrdenadoPorID(t *testing.T) {
	s := memory.NewCenterStore(
		&entity.DistributionCenter{CenterID: "C3", Stock: 75, InitialStock: 100, ZipCode: "10005"},
		&entity.DistributionCenter{CenterID: "C1", Stock: 15, InitialStock: 100, ZipCode: "10000"},
		&entity.DistributionCenter{CenterID: "C2", Stock: 8, InitialStock: 100, ZipCode: "10003"},
	)
	list, err := s.FindEligible(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "C1", list[0].CenterID)
	assert.Equal(t, "C3", list[1].CenterID)

	list, err = s.FindEligible(context.Background(), 1000)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCenterStore_CommitDecrementFallaSinMutar(t *testing.T) {
	s := memory.NewCenterStore(&entity.DistributionCenter{CenterID: "C1", Stock: 5, InitialStock: 100, ZipCode: "1"})
	ctx := context.Background()

	_, ok, err := s.CommitDecrement(ctx, "C1", 6)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = s.CommitDecrement(ctx, "NOPE", 1)
	require.NoError(t, err)
	assert.False(t, ok)

	newStock, ok, err := s.CommitDecrement(ctx, "C1", 5)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, newStock)
}

func TestCenterStore_CommitDecrementConcurrenteNuncaNegativo(t *testing.T) {
	s := memory.NewCenterStore(&entity.DistributionCenter{CenterID: "C1", Stock: 100, InitialStock: 100, ZipCode: "1"})
	var wg sync.WaitGroup
	var okCount int64
	for i := 0; i < 300; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok, _ := s.CommitDecrement(context.Background(), "C1", 1); ok {
				atomic.AddInt64(&okCount, 1)
			}
		}()
	}
	wg.Wait()

	c, err := s.GetByID(context.Background(), "C1")
	require.NoError(t, err)
	assert.Equal(t, int64(100), okCount)
	assert.Equal(t, 0, c.Stock)
}

func TestCenterStore_UpsertGetOrCreate(t *testing.T) {
	s := memory.NewCenterStore()
	ctx := context.Background()
	created, err := s.Upsert(ctx, &entity.DistributionCenter{CenterID: "C1", Stock: 10, InitialStock: 100, ZipCode: "1"})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = s.Upsert(ctx, &entity.DistributionCenter{CenterID: "C1", Stock: 99, InitialStock: 100, ZipCode: "1"})
	require.NoError(t, err)
	assert.False(t, created)

	c, _ := s.GetByID(ctx, "C1")
	assert.Equal(t, 10, c.Stock)
}

func TestOrderStore_UnicidadYFiltro(t *testing.T) {
	s := memory.NewOrderStore()
	ctx := context.Background()
	now := time.Now()
	c1 := "C1"

	require.NoError(t, s.Create(ctx, &entity.Order{OrderID: "O1", Quantity: 1, CenterID: &c1, Status: entity.OrderStatusAllocated, CreatedAt: now}))
	err := s.Create(ctx, &entity.Order{OrderID: "O1", Quantity: 2})
	assert.True(t, errors.Is(err, domain.ErrDuplicate))

	s.Put(&entity.Order{OrderID: "OLD", Quantity: 3, CenterID: &c1, Status: entity.OrderStatusAllocated, CreatedAt: now.AddDate(0, 0, -40)})
	s.Put(&entity.Order{OrderID: "PEND", Quantity: 4, CenterID: &c1, Status: entity.OrderStatusPending, CreatedAt: now})

	list, err := s.ListAllocatedSince(ctx, now.AddDate(0, 0, -30))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "O1", list[0].OrderID)

	got, err := s.GetByOrderID(ctx, "O1")
	require.NoError(t, err)
	*got.CenterID = "MUTADO"
	again, _ := s.GetByOrderID(ctx, "O1")
	assert.Equal(t, "C1", *again.CenterID, "el store devuelve copias")
}

func TestOrderGuard_ClaimRelease(t *testing.T) {
	g := memory.NewOrderGuard(0)
	ctx := context.Background()

	ok, _ := g.Claim(ctx, "O1", "a")
	assert.True(t, ok)
	ok, _ = g.Claim(ctx, "O1", "b")
	assert.False(t, ok)

	require.NoError(t, g.Release(ctx, "O1", "b")) // token ajeno: no libera
	ok, _ = g.Claim(ctx, "O1", "b")
	assert.False(t, ok)

	require.NoError(t, g.Release(ctx, "O1", "a"))
	ok, _ = g.Claim(ctx, "O1", "b")
	assert.True(t, ok)
}

func TestOrderGuard_Expira(t *testing.T) {
	g := memory.NewOrderGuard(10 * time.Millisecond)
	ctx := context.Background()
	ok, _ := g.Claim(ctx, "O1", "a")
	require.True(t, ok)
	time.Sleep(20 * time.Millisecond)
	ok, _ = g.Claim(ctx, "O1", "b")
	assert.True(t, ok)
}

func TestOrderGuard_PurgaReservasVencidas(t *testing.T) {
	g := memory.NewOrderGuard(time.Millisecond)
	ctx := context.Background()
	for i := 0; i < 10000; i++ {
		ok, err := g.Claim(ctx, fmt.Sprintf("O%d", i), "t")
		require.NoError(t, err)
		require.True(t, ok)
	}
	time.Sleep(5 * time.Millisecond)

	ok, _ := g.Claim(ctx, "nuevo", "t")
	assert.True(t, ok)
	assert.Equal(t, 1, g.Len(), "sólo queda la reserva vigente")
}

func TestOrderGuard_ConcurrenteUnSoloGanador(t *testing.T) {
	g := memory.NewOrderGuard(time.Minute)
	var wins int64
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := g.Claim(context.Background(), "O5", "t"); ok {
				atomic.AddInt64(&wins, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(1), wins)
}
