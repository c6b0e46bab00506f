package searchlog

import (
	"context"
	"sort"
	"sync"

	"workcheck/internal/employee"
	"workcheck/internal/user"
	id "workcheck/pkg/domain"
)

// UserDirectory resolves accounts for the joined listing.
type UserDirectory interface {
	FindByID(ctx context.Context, userID id.UserID) (*user.User, error)
}

// EmployeeDirectory resolves employee rows for the joined listing.
type EmployeeDirectory interface {
	FindByID(ctx context.Context, employeeID id.EmployeeID) (*employee.Employee, error)
}

// InMemoryStore keeps entries in a slice guarded by a mutex, joining at
// read time like the Postgres store does with SQL.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries []*Entry

	users     UserDirectory
	employees EmployeeDirectory
}

func NewInMemoryStore(users UserDirectory, employees EmployeeDirectory) *InMemoryStore {
	return &InMemoryStore{users: users, employees: employees}
}

func (s *InMemoryStore) Append(_ context.Context, e *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *e
	s.entries = append(s.entries, &clone)
	return nil
}

func (s *InMemoryStore) List(ctx context.Context) ([]*Detail, error) {
	s.mu.RLock()
	snapshot := make([]*Entry, len(s.entries))
	copy(snapshot, s.entries)
	s.mu.RUnlock()

	sort.SliceStable(snapshot, func(i, j int) bool {
		return snapshot[i].CreatedAt.After(snapshot[j].CreatedAt)
	})

	details := make([]*Detail, 0, len(snapshot))
	for _, e := range snapshot {
		clone := *e
		d := &Detail{Entry: &clone}
		if u, err := s.users.FindByID(ctx, e.UserID); err == nil {
			d.UserEmail = u.Email
			d.UserName = u.FirstName + " " + u.LastName
		}
		if e.EmployeeID != nil {
			if emp, err := s.employees.FindByID(ctx, *e.EmployeeID); err == nil {
				d.EmployeeName = emp.FirstName + " " + emp.LastName
				d.DocumentNumber = emp.DocumentNumber
			}
		}
		details = append(details, d)
	}
	return details, nil
}
