package memory

import (
	"context"
	"sync"
	"time"
)

const defaultClaimTTL = 24 * time.Hour

// OrderGuard reserva order_id dentro del proceso con expiración.
// Las reservas vencidas se purgan desde Claim, a lo sumo una vez por ttl.
type OrderGuard struct {
	mu        sync.Mutex
	ttl       time.Duration
	now       func() time.Time
	lastSweep time.Time
	claims    map[string]claim
}

type claim struct {
	token     string
	expiresAt time.Time
}

// NewOrderGuard crea el guard; ttl <= 0 usa 24h.
func NewOrderGuard(ttl time.Duration) *OrderGuard {
	if ttl <= 0 {
		ttl = defaultClaimTTL
	}
	return &OrderGuard{ttl: ttl, now: time.Now, lastSweep: time.Now(), claims: make(map[string]claim)}
}

// Claim reserva orderID para token si no hay una reserva vigente.
func (g *OrderGuard) Claim(_ context.Context, orderID, token string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	if now.Sub(g.lastSweep) >= g.ttl {
		g.sweep(now)
	}
	if c, ok := g.claims[orderID]; ok && now.Before(c.expiresAt) {
		return false, nil
	}
	g.claims[orderID] = claim{token: token, expiresAt: now.Add(g.ttl)}
	return true, nil
}

// Release libera la reserva sólo si pertenece a token.
func (g *OrderGuard) Release(_ context.Context, orderID, token string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if c, ok := g.claims[orderID]; ok && c.token == token {
		delete(g.claims, orderID)
	}
	return nil
}

// Len devuelve la cantidad de reservas retenidas (vigentes o pendientes de purga).
func (g *OrderGuard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.claims)
}

func (g *OrderGuard) sweep(now time.Time) {
	for id, c := range g.claims {
		if !now.Before(c.expiresAt) {
			delete(g.claims, id)
		}
	}
	g.lastSweep = now
}
