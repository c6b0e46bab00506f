package payment

import (
	"context"
	"sort"
	"sync"

	id "workcheck/pkg/domain"
)

// InMemoryStore keeps payments in a slice guarded by a mutex.
type InMemoryStore struct {
	mu       sync.RWMutex
	payments []*Payment
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Create(_ context.Context, p *Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *p
	s.payments = append(s.payments, &clone)
	return nil
}

func (s *InMemoryStore) ListByUser(_ context.Context, userID id.UserID) ([]*Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Payment
	for _, p := range s.payments {
		if p.UserID == userID {
			clone := *p
			out = append(out, &clone)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
