package user

import (
	"context"
	"sort"
	"sync"
	"time"

	id "workcheck/pkg/domain"
	"workcheck/pkg/platform/sentinel"
)

// InMemoryStore keeps accounts in maps guarded by a mutex. Used in memory
// deployments and tests.
type InMemoryStore struct {
	mu      sync.RWMutex
	byID    map[id.UserID]*User
	byEmail map[string]*User
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:    make(map[id.UserID]*User),
		byEmail: make(map[string]*User),
	}
}

func (s *InMemoryStore) Create(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[u.Email]; exists {
		return sentinel.ErrAlreadyExists
	}
	clone := *u
	s.byID[u.ID] = &clone
	s.byEmail[u.Email] = &clone
	return nil
}

func (s *InMemoryStore) FindByEmail(_ context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byEmail[email]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (s *InMemoryStore) FindByID(_ context.Context, userID id.UserID) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*User, 0, len(s.byID))
	for _, u := range s.byID {
		clone := *u
		users = append(users, &clone)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

func (s *InMemoryStore) UpdateLastLogin(_ context.Context, userID id.UserID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[userID]
	if !ok {
		return sentinel.ErrNotFound
	}
	u.LastLogin = &at
	return nil
}
