package report

import (
	"context"

	id "workcheck/pkg/domain"
)

// Store persists the report ledger. Append is the only write: there is no
// update or delete, and implementations must reject an append whose user or
// employee reference does not resolve to an existing row.
//
// ListByEmployee returns entries oldest first so a dispute history reads in
// the order it happened. ListAll returns newest first.
type Store interface {
	Append(ctx context.Context, r *Report) error
	ListAll(ctx context.Context) ([]*Detail, error)
	ListByEmployee(ctx context.Context, employeeID id.EmployeeID) ([]*WithSubmitter, error)
	CountByEmployee(ctx context.Context, employeeID id.EmployeeID) (int, error)
}
