package report

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"workcheck/internal/employee"
	id "workcheck/pkg/domain"
	"workcheck/pkg/platform/sentinel"
	txcontext "workcheck/pkg/platform/tx"
)

// PostgresStore persists the report ledger in PostgreSQL. Foreign keys on
// user_id and employee_id are the referential backstop for Append.
type PostgresStore struct {
	db *sql.DB
}

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

// foreignKeyViolation is the PostgreSQL class 23 code for a broken FK.
const foreignKeyViolation = "23503"

func (s *PostgresStore) Append(ctx context.Context, r *Report) error {
	query := `
		INSERT INTO reports (id, user_id, employee_id, description, incident_date, city, evidence_url, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	var evidenceURL sql.NullString
	if r.EvidenceURL != "" {
		evidenceURL = sql.NullString{String: r.EvidenceURL, Valid: true}
	}

	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(r.ID),
		uuid.UUID(r.UserID),
		uuid.UUID(r.EmployeeID),
		r.Description,
		r.IncidentDate,
		r.City,
		evidenceURL,
		string(r.Status),
		r.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == foreignKeyViolation {
			return fmt.Errorf("%w: %s", sentinel.ErrNotFound, pqErr.Constraint)
		}
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

const detailColumns = `
	r.id, r.user_id, r.employee_id, r.description, r.incident_date, r.city, r.evidence_url, r.status, r.created_at,
	u.id, u.email, u.first_name, u.last_name, u.document_number`

func (s *PostgresStore) ListAll(ctx context.Context) ([]*Detail, error) {
	query := `
		SELECT ` + detailColumns + `,
			e.id, e.document_number, e.first_name, e.last_name, e.city, e.industry, e.status, e.created_at
		FROM reports r
		JOIN users u ON u.id = r.user_id
		JOIN employees e ON e.id = r.employee_id
		ORDER BY r.created_at DESC
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var details []*Detail
	for rows.Next() {
		var (
			r     Report
			sub   Submitter
			emp   employee.Employee
			ids   [4]uuid.UUID
			empID uuid.UUID
			eURL  sql.NullString
		)
		err := rows.Scan(
			&ids[0], &ids[1], &ids[2], &r.Description, &r.IncidentDate, &r.City, &eURL, &r.Status, &r.CreatedAt,
			&ids[3], &sub.Email, &sub.FirstName, &sub.LastName, &sub.DocumentNumber,
			&empID, &emp.DocumentNumber, &emp.FirstName, &emp.LastName, &emp.City, &emp.Industry, &emp.Status, &emp.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan report detail: %w", err)
		}
		r.ID = id.ReportID(ids[0])
		r.UserID = id.UserID(ids[1])
		r.EmployeeID = id.EmployeeID(ids[2])
		r.EvidenceURL = eURL.String
		sub.ID = id.UserID(ids[3])
		emp.ID = id.EmployeeID(empID)
		details = append(details, &Detail{Report: &r, Submitter: &sub, Employee: &emp})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list reports rows: %w", err)
	}
	return details, nil
}

func (s *PostgresStore) ListByEmployee(ctx context.Context, employeeID id.EmployeeID) ([]*WithSubmitter, error) {
	query := `
		SELECT ` + detailColumns + `
		FROM reports r
		JOIN users u ON u.id = r.user_id
		WHERE r.employee_id = $1
		ORDER BY r.created_at ASC
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query, uuid.UUID(employeeID))
	if err != nil {
		return nil, fmt.Errorf("list reports by employee: %w", err)
	}
	defer rows.Close()

	var out []*WithSubmitter
	for rows.Next() {
		var (
			r    Report
			sub  Submitter
			ids  [4]uuid.UUID
			eURL sql.NullString
		)
		err := rows.Scan(
			&ids[0], &ids[1], &ids[2], &r.Description, &r.IncidentDate, &r.City, &eURL, &r.Status, &r.CreatedAt,
			&ids[3], &sub.Email, &sub.FirstName, &sub.LastName, &sub.DocumentNumber,
		)
		if err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		r.ID = id.ReportID(ids[0])
		r.UserID = id.UserID(ids[1])
		r.EmployeeID = id.EmployeeID(ids[2])
		r.EvidenceURL = eURL.String
		sub.ID = id.UserID(ids[3])
		out = append(out, &WithSubmitter{Report: &r, Submitter: &sub})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list reports by employee rows: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) CountByEmployee(ctx context.Context, employeeID id.EmployeeID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM reports WHERE employee_id = $1`
	err := s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(employeeID)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count reports by employee: %w", err)
	}
	return count, nil
}
