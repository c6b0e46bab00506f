package payment

import (
	"context"

	id "workcheck/pkg/domain"
)

// Store persists payment records. ListByUser returns newest first.
type Store interface {
	Create(ctx context.Context, p *Payment) error
	ListByUser(ctx context.Context, userID id.UserID) ([]*Payment, error)
}
