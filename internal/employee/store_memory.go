package employee

import (
	"context"
	"sort"
	"sync"

	id "workcheck/pkg/domain"
	"workcheck/pkg/platform/sentinel"
)

// InMemoryStore keeps the directory in maps behind a mutex. The mutex plays
// the role of the database uniqueness constraint: CreateIfAbsent is atomic,
// so concurrent resolves for the same new document number still produce
// exactly one row.
type InMemoryStore struct {
	mu         sync.RWMutex
	byDocument map[string]*Employee
	byID       map[id.EmployeeID]*Employee
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byDocument: make(map[string]*Employee),
		byID:       make(map[id.EmployeeID]*Employee),
	}
}

func (s *InMemoryStore) CreateIfAbsent(_ context.Context, e *Employee) (*Employee, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.byDocument[e.DocumentNumber]; ok {
		copied := *existing
		return &copied, false, nil
	}

	stored := *e
	s.byDocument[e.DocumentNumber] = &stored
	s.byID[e.ID] = &stored

	copied := stored
	return &copied, true, nil
}

func (s *InMemoryStore) FindByDocumentNumber(_ context.Context, documentNumber string) (*Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Exact match only: no trimming, no case folding. Two document numbers
	// differing in casing are distinct identities here.
	if e, ok := s.byDocument[documentNumber]; ok {
		copied := *e
		return &copied, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) FindByID(_ context.Context, employeeID id.EmployeeID) (*Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if e, ok := s.byID[employeeID]; ok {
		copied := *e
		return &copied, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) List(_ context.Context) ([]*Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	employees := make([]*Employee, 0, len(s.byID))
	for _, e := range s.byID {
		copied := *e
		employees = append(employees, &copied)
	}
	sort.Slice(employees, func(i, j int) bool {
		return employees[i].CreatedAt.Before(employees[j].CreatedAt)
	})
	return employees, nil
}
