// Package redis implementa la reserva de order_id compartida entre instancias.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/order-allocation/pkg/config"
)

const (
	claimKeyPrefix  = "order-claim:"
	defaultClaimTTL = 24 * time.Hour
)

// releaseScript borra la reserva sólo si sigue perteneciendo al token.
var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

// OrderGuard reserva order_id con SET NX y TTL.
type OrderGuard struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewOrderGuard construye el guard; ttl <= 0 usa 24h.
func NewOrderGuard(client redis.Cmdable, ttl time.Duration) *OrderGuard {
	if ttl <= 0 {
		ttl = defaultClaimTTL
	}
	return &OrderGuard{client: client, ttl: ttl}
}

// NewClient abre el cliente y verifica la conexión.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return client, nil
}

func claimKey(orderID string) string { return claimKeyPrefix + orderID }

// Claim devuelve true si token obtuvo la reserva.
func (g *OrderGuard) Claim(ctx context.Context, orderID, token string) (bool, error) {
	ok, err := g.client.SetNX(ctx, claimKey(orderID), token, g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim %s: %w", orderID, err)
	}
	return ok, nil
}

// Release libera la reserva si sigue siendo de token.
func (g *OrderGuard) Release(ctx context.Context, orderID, token string) error {
	if err := releaseScript.Run(ctx, g.client, []string{claimKey(orderID)}, token).Err(); err != nil {
		return fmt.Errorf("release %s: %w", orderID, err)
	}
	return nil
}
