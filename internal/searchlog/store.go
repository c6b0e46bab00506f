package searchlog

import (
	"context"
)

// Store persists the audit trail. Append-only; List returns newest first.
type Store interface {
	Append(ctx context.Context, e *Entry) error
	List(ctx context.Context) ([]*Detail, error)
}
