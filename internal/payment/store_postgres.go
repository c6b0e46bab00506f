package payment

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "workcheck/pkg/domain"
	txcontext "workcheck/pkg/platform/tx"
)

// PostgresStore persists payments in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Create(ctx context.Context, p *Payment) error {
	query := `
		INSERT INTO payments (id, user_id, amount, currency, method, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(p.ID),
		uuid.UUID(p.UserID),
		p.Amount,
		p.Currency,
		string(p.Method),
		string(p.Status),
		p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID id.UserID) ([]*Payment, error) {
	query := `
		SELECT id, user_id, amount, currency, method, status, created_at
		FROM payments
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query, uuid.UUID(userID))
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var out []*Payment
	for rows.Next() {
		var (
			p       Payment
			rawID   uuid.UUID
			rawUser uuid.UUID
		)
		if err := rows.Scan(&rawID, &rawUser, &p.Amount, &p.Currency, &p.Method, &p.Status, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		p.ID = id.PaymentID(rawID)
		p.UserID = id.UserID(rawUser)
		out = append(out, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list payments rows: %w", err)
	}
	return out, nil
}
