package subscription

import (
	"context"
	"sync"

	id "workcheck/pkg/domain"
	"workcheck/pkg/platform/sentinel"
)

type usageKey struct {
	userID id.UserID
	month  string
}

// InMemoryStore keeps subscriptions and search counters in maps guarded by
// a mutex.
type InMemoryStore struct {
	mu     sync.Mutex
	byUser map[id.UserID]*Subscription
	usage  map[usageKey]int
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byUser: make(map[id.UserID]*Subscription),
		usage:  make(map[usageKey]int),
	}
}

func (s *InMemoryStore) Upsert(_ context.Context, sub *Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *sub
	s.byUser[sub.UserID] = &clone
	return nil
}

func (s *InMemoryStore) FindByUser(_ context.Context, userID id.UserID) (*Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.byUser[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *sub
	return &clone, nil
}

func (s *InMemoryStore) IncrementSearchUsage(_ context.Context, userID id.UserID, month string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := usageKey{userID: userID, month: month}
	s.usage[key]++
	return s.usage[key], nil
}
