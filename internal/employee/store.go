package employee

import (
	"context"

	id "workcheck/pkg/domain"
)

// Store persists employee rows. Implementations must enforce document-number
// uniqueness at the storage layer, not with an application-level check: the
// resolve-or-create path races under concurrent submissions and only a
// storage constraint closes the check-then-create window.
type Store interface {
	// CreateIfAbsent inserts e unless a row with its document number already
	// exists. It returns the canonical row for that document number and
	// whether this call created it. When the row already exists the incoming
	// descriptive fields are discarded, never merged.
	CreateIfAbsent(ctx context.Context, e *Employee) (*Employee, bool, error)

	// FindByDocumentNumber looks up an employee by exact document-number
	// match. Returns sentinel.ErrNotFound when the document number is
	// unknown to the directory.
	FindByDocumentNumber(ctx context.Context, documentNumber string) (*Employee, error)

	// FindByID returns the employee row for id, or sentinel.ErrNotFound.
	FindByID(ctx context.Context, employeeID id.EmployeeID) (*Employee, error)

	// List returns every employee row, oldest first.
	List(ctx context.Context) ([]*Employee, error)
}
