package employee

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

// PostgresStore persists the employee directory in PostgreSQL. The
// document_number UNIQUE constraint is what makes CreateIfAbsent safe under
// concurrent submissions.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed employee store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const employeeColumns = `id, document_number, first_name, last_name, city, industry, status, created_at`

func (s *PostgresStore) CreateIfAbsent(ctx context.Context, e *Employee) (*Employee, bool, error) {
	query := `
		INSERT INTO employees (id, document_number, first_name, last_name, city, industry, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (document_number) DO NOTHING
	`
	res, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(e.ID),
		e.DocumentNumber,
		e.FirstName,
		e.LastName,
		e.City,
		e.Industry,
		string(e.Status),
		e.CreatedAt,
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert employee: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("insert employee rows affected: %w", err)
	}
	if inserted == 1 {
		copied := *e
		return &copied, true, nil
	}

	// The uniqueness constraint rejected the insert: another submission won
	// the race. Re-read and proceed with the now-existing row. The losing
	// insert may momentarily see no row if the winner has not committed, so
	// one retry covers the gap before giving up.
	for attempt := 0; attempt < 2; attempt++ {
		existing, err := s.FindByDocumentNumber(ctx, e.DocumentNumber)
		if err == nil {
			return existing, false, nil
		}
		if !errors.Is(err, sentinel.ErrNotFound) {
			return nil, false, err
		}
	}
	return nil, false, fmt.Errorf("employee %q: %w", e.DocumentNumber, sentinel.ErrConflict)
}

func (s *PostgresStore) FindByDocumentNumber(ctx context.Context, documentNumber string) (*Employee, error) {
	// Exact match on document_number. No normalization is applied here.
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE document_number = $1`
	return s.scanEmployee(s.execer(ctx).QueryRowContext(ctx, query, documentNumber))
}

func (s *PostgresStore) FindByID(ctx context.Context, employeeID id.EmployeeID) (*Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`
	return s.scanEmployee(s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(employeeID)))
}

func (s *PostgresStore) List(ctx context.Context) ([]*Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees ORDER BY created_at ASC`
	rows, err := s.execer(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	var employees []*Employee
	for rows.Next() {
		var (
			e     Employee
			rawID uuid.UUID
		)
		if err := rows.Scan(&rawID, &e.DocumentNumber, &e.FirstName, &e.LastName, &e.City, &e.Industry, &e.Status, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		e.ID = id.EmployeeID(rawID)
		employees = append(employees, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list employees rows: %w", err)
	}
	return employees, nil
}

func (s *PostgresStore) scanEmployee(row *sql.Row) (*Employee, error) {
	var (
		e     Employee
		rawID uuid.UUID
	)
	err := row.Scan(&rawID, &e.DocumentNumber, &e.FirstName, &e.LastName, &e.City, &e.Industry, &e.Status, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan employee: %w", err)
	}
	e.ID = id.EmployeeID(rawID)
	return &e, nil
}
