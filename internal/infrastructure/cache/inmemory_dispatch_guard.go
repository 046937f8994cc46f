package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	appdelivery "github.com/storefront/backend/internal/application/delivery"
)

// guardEntry represents a held guard with expiration
type guardEntry struct {
	expiresAt time.Time
}

// InMemoryDispatchGuard implements DispatchGuard using an in-memory map.
// This is suitable for single-instance deployments and testing.
type InMemoryDispatchGuard struct {
	mu      sync.Mutex
	entries map[uuid.UUID]guardEntry
	ttl     time.Duration
}

// NewInMemoryDispatchGuard creates a new in-memory dispatch guard. The TTL
// bounds how long a crashed dispatch can hold the guard.
func NewInMemoryDispatchGuard(ttl time.Duration) *InMemoryDispatchGuard {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &InMemoryDispatchGuard{
		entries: make(map[uuid.UUID]guardEntry),
		ttl:     ttl,
	}
}

// Acquire takes the guard for an order. Returns true if the guard was newly
// taken, false if another dispatch currently holds it. Expired entries are
// reclaimed lazily on the next Acquire.
func (g *InMemoryDispatchGuard) Acquire(_ context.Context, orderID uuid.UUID) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if e, exists := g.entries[orderID]; exists {
		if time.Now().Before(e.expiresAt) {
			return false, nil
		}
	}

	g.entries[orderID] = guardEntry{expiresAt: time.Now().Add(g.ttl)}
	return true, nil
}

// Release frees the guard for an order.
func (g *InMemoryDispatchGuard) Release(_ context.Context, orderID uuid.UUID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.entries, orderID)
	return nil
}

// Ensure InMemoryDispatchGuard implements DispatchGuard
var _ appdelivery.DispatchGuard = (*InMemoryDispatchGuard)(nil)
