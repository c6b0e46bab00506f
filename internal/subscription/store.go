package subscription

import (
	"context"

	id "workcheck/pkg/domain"
)

// Store persists subscriptions and the per-user monthly search counters.
// Month keys are "YYYY-MM" strings so a counter naturally resets when the
// calendar month rolls over.
type Store interface {
	Upsert(ctx context.Context, sub *Subscription) error
	FindByUser(ctx context.Context, userID id.UserID) (*Subscription, error)
	IncrementSearchUsage(ctx context.Context, userID id.UserID, month string) (int, error)
}
