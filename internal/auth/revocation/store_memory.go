package revocation

import (
	"context"
	"sync"
	"time"
)

// MemoryTRL is an in-memory token revocation list for single-instance
// deployments and tests. Expired entries are pruned lazily on access.
type MemoryTRL struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewMemoryTRL() *MemoryTRL {
	return &MemoryTRL{revoked: make(map[string]time.Time)}
}

func (t *MemoryTRL) RevokeToken(_ context.Context, jti string, ttl time.Duration) error {
	if jti == "" || ttl <= 0 {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.revoked[jti] = time.Now().Add(ttl)
	return nil
}

func (t *MemoryTRL) IsRevoked(_ context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	expiry, ok := t.revoked[jti]
	if !ok {
		return false, nil
	}
	if time.Now().After(expiry) {
		delete(t.revoked, jti)
		return false, nil
	}
	return true, nil
}
