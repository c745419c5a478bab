package redis

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR no definido")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis no disponible: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestOrderGuard_ClaimRelease(t *testing.T) {
	client := getRedisClient(t)
	ctx := context.Background()
	guard := NewOrderGuard(client, time.Minute)
	orderID := "test-" + uuid.NewString()
	t.Cleanup(func() { client.Del(ctx, claimKey(orderID)) })

	ok, err := guard.Claim(ctx, orderID, "a")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = guard.Claim(ctx, orderID, "b")
	require.NoError(t, err)
	assert.False(t, ok)

	// Un token ajeno no libera la reserva.
	require.NoError(t, guard.Release(ctx, orderID, "b"))
	assert.Equal(t, "a", client.Get(ctx, claimKey(orderID)).Val())

	require.NoError(t, guard.Release(ctx, orderID, "a"))
	ok, err = guard.Claim(ctx, orderID, "b")
	require.NoError(t, err)
	assert.True(t, ok)

	ttl := client.TTL(ctx, claimKey(orderID)).Val()
	assert.Greater(t, ttl, time.Duration(0))
}

func TestOrderGuard_ConcurrenteUnSoloGanador(t *testing.T) {
	client := getRedisClient(t)
	ctx := context.Background()
	guard := NewOrderGuard(client, time.Minute)
	orderID := "test-" + uuid.NewString()
	t.Cleanup(func() { client.Del(ctx, claimKey(orderID)) })

	var winners int64
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, err := guard.Claim(ctx, orderID, uuid.NewString()); err == nil && ok {
				atomic.AddInt64(&winners, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(1), winners)
}

func TestNewOrderGuard_TTLPorDefecto(t *testing.T) {
	g := NewOrderGuard(nil, 0)
	assert.Equal(t, defaultClaimTTL, g.ttl)
	assert.Equal(t, "order-claim:O1", claimKey("O1"))
}
