package report

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"workcheck/internal/employee"
	id "workcheck/pkg/domain"
	"workcheck/pkg/platform/sentinel"
)

// SubmitterSource resolves the account projection for a user id. In memory
// mode the user store backs it; the Postgres store joins instead.
type SubmitterSource interface {
	Submitter(ctx context.Context, userID id.UserID) (*Submitter, error)
}

// SubmitterSourceFunc adapts a function to SubmitterSource.
type SubmitterSourceFunc func(ctx context.Context, userID id.UserID) (*Submitter, error)

func (f SubmitterSourceFunc) Submitter(ctx context.Context, userID id.UserID) (*Submitter, error) {
	return f(ctx, userID)
}

// EmployeeSource resolves employee rows for the joined listings.
type EmployeeSource interface {
	FindByID(ctx context.Context, employeeID id.EmployeeID) (*employee.Employee, error)
}

// InMemoryStore keeps the ledger in a slice guarded by a mutex. Joins are
// resolved at read time through the provided sources, mirroring what the
// Postgres store does with SQL joins.
type InMemoryStore struct {
	mu      sync.RWMutex
	reports []*Report

	submitters SubmitterSource
	employees  EmployeeSource
}

func NewInMemoryStore(submitters SubmitterSource, employees EmployeeSource) *InMemoryStore {
	return &InMemoryStore{
		submitters: submitters,
		employees:  employees,
	}
}

func (s *InMemoryStore) Append(ctx context.Context, r *Report) error {
	if _, err := s.submitters.Submitter(ctx, r.UserID); err != nil {
		return fmt.Errorf("%w: user %s", sentinel.ErrNotFound, r.UserID.String())
	}
	if _, err := s.employees.FindByID(ctx, r.EmployeeID); err != nil {
		return fmt.Errorf("%w: employee %s", sentinel.ErrNotFound, r.EmployeeID.String())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *r
	s.reports = append(s.reports, &clone)
	return nil
}

func (s *InMemoryStore) ListAll(ctx context.Context) ([]*Detail, error) {
	s.mu.RLock()
	snapshot := make([]*Report, len(s.reports))
	copy(snapshot, s.reports)
	s.mu.RUnlock()

	sort.SliceStable(snapshot, func(i, j int) bool {
		return snapshot[i].CreatedAt.After(snapshot[j].CreatedAt)
	})

	details := make([]*Detail, 0, len(snapshot))
	for _, r := range snapshot {
		submitter, err := s.submitters.Submitter(ctx, r.UserID)
		if err != nil {
			return nil, err
		}
		emp, err := s.employees.FindByID(ctx, r.EmployeeID)
		if err != nil {
			return nil, err
		}
		clone := *r
		details = append(details, &Detail{Report: &clone, Submitter: submitter, Employee: emp})
	}
	return details, nil
}

func (s *InMemoryStore) ListByEmployee(ctx context.Context, employeeID id.EmployeeID) ([]*WithSubmitter, error) {
	s.mu.RLock()
	var matched []*Report
	for _, r := range s.reports {
		if r.EmployeeID == employeeID {
			clone := *r
			matched = append(matched, &clone)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})

	out := make([]*WithSubmitter, 0, len(matched))
	for _, r := range matched {
		submitter, err := s.submitters.Submitter(ctx, r.UserID)
		if err != nil {
			return nil, err
		}
		out = append(out, &WithSubmitter{Report: r, Submitter: submitter})
	}
	return out, nil
}

func (s *InMemoryStore) CountByEmployee(ctx context.Context, employeeID id.EmployeeID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, r := range s.reports {
		if r.EmployeeID == employeeID {
			count++
		}
	}
	return count, nil
}
