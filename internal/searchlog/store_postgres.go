package searchlog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "workcheck/pkg/domain"
	txcontext "workcheck/pkg/platform/tx"
)

// PostgresStore persists the audit trail in PostgreSQL.
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

func (s *PostgresStore) Append(ctx context.Context, e *Entry) error {
	query := `
		INSERT INTO search_logs (id, user_id, employee_id, query, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	var employeeID any
	if e.EmployeeID != nil {
		employeeID = uuid.UUID(*e.EmployeeID)
	}
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(e.ID),
		uuid.UUID(e.UserID),
		employeeID,
		e.Query,
		e.IPAddress,
		e.UserAgent,
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert search log: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*Detail, error) {
	query := `
		SELECT l.id, l.user_id, l.employee_id, l.query, l.ip_address, l.user_agent, l.created_at,
			u.email, u.first_name || ' ' || u.last_name,
			COALESCE(e.first_name || ' ' || e.last_name, ''),
			COALESCE(e.document_number, '')
		FROM search_logs l
		JOIN users u ON u.id = l.user_id
		LEFT JOIN employees e ON e.id = l.employee_id
		ORDER BY l.created_at DESC
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list search logs: %w", err)
	}
	defer rows.Close()

	var details []*Detail
	for rows.Next() {
		var (
			e          Entry
			rawID      uuid.UUID
			rawUser    uuid.UUID
			employeeID uuid.NullUUID
			d          Detail
		)
		err := rows.Scan(&rawID, &rawUser, &employeeID, &e.Query, &e.IPAddress, &e.UserAgent, &e.CreatedAt,
			&d.UserEmail, &d.UserName, &d.EmployeeName, &d.DocumentNumber)
		if err != nil {
			return nil, fmt.Errorf("scan search log: %w", err)
		}
		e.ID = id.SearchLogID(rawID)
		e.UserID = id.UserID(rawUser)
		if employeeID.Valid {
			empID := id.EmployeeID(employeeID.UUID)
			e.EmployeeID = &empID
		}
		d.Entry = &e
		details = append(details, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list search logs rows: %w", err)
	}
	return details, nil
}
