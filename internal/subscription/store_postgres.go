package subscription

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	id "workcheck/pkg/domain"
	"workcheck/pkg/platform/sentinel"
	txcontext "workcheck/pkg/platform/tx"
)

// PostgresStore persists subscriptions in PostgreSQL. The user_id UNIQUE
// constraint gives Upsert its replace-on-conflict semantics, and the search
// counter uses an atomic upsert so concurrent searches never lose counts.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Upsert(ctx context.Context, sub *Subscription) error {
	query := `
		INSERT INTO subscriptions (id, user_id, plan_type, start_date, end_date, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			plan_type  = EXCLUDED.plan_type,
			start_date = EXCLUDED.start_date,
			end_date   = EXCLUDED.end_date,
			status     = EXCLUDED.status
	`
	var endDate sql.NullTime
	if sub.EndDate != nil {
		endDate = sql.NullTime{Time: *sub.EndDate, Valid: true}
	}
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(sub.ID),
		uuid.UUID(sub.UserID),
		string(sub.Plan),
		sub.StartDate,
		endDate,
		string(sub.Status),
	)
	if err != nil {
		return fmt.Errorf("upsert subscription: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByUser(ctx context.Context, userID id.UserID) (*Subscription, error) {
	query := `
		SELECT id, user_id, plan_type, start_date, end_date, status
		FROM subscriptions
		WHERE user_id = $1
	`
	var (
		sub     Subscription
		rawID   uuid.UUID
		rawUser uuid.UUID
		endDate sql.NullTime
	)
	err := s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(userID)).
		Scan(&rawID, &rawUser, &sub.Plan, &sub.StartDate, &endDate, &sub.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find subscription: %w", err)
	}
	sub.ID = id.SubscriptionID(rawID)
	sub.UserID = id.UserID(rawUser)
	if endDate.Valid {
		t := endDate.Time
		sub.EndDate = &t
	}
	return &sub, nil
}

func (s *PostgresStore) IncrementSearchUsage(ctx context.Context, userID id.UserID, month string) (int, error) {
	query := `
		INSERT INTO search_usage (user_id, month, count)
		VALUES ($1, $2, 1)
		ON CONFLICT (user_id, month) DO UPDATE SET count = search_usage.count + 1
		RETURNING count
	`
	var count int
	err := s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(userID), month).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("increment search usage: %w", err)
	}
	return count, nil
}
