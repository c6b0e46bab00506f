package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	id "workcheck/pkg/domain"
	"workcheck/pkg/platform/sentinel"
	txcontext "workcheck/pkg/platform/tx"
)

// uniqueViolation is the PostgreSQL class 23 code for a duplicate key.
const uniqueViolation = "23505"

// PostgresStore persists employer accounts in PostgreSQL.
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

const userColumns = `id, email, password_hash, document_number, first_name, last_name, birth_date, phone, role, status, last_login, created_at`

func (s *PostgresStore) Create(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (id, email, password_hash, document_number, first_name, last_name, birth_date, phone, role, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(u.ID),
		u.Email,
		u.PasswordHash,
		u.DocumentNumber,
		u.FirstName,
		u.LastName,
		nullableTime(u.BirthDate),
		nullableString(u.Phone),
		u.Role,
		string(u.Status),
		u.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return sentinel.ErrAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return s.scanUser(s.execer(ctx).QueryRowContext(ctx, query, email))
}

func (s *PostgresStore) FindByID(ctx context.Context, userID id.UserID) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return s.scanUser(s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(userID)))
}

func (s *PostgresStore) List(ctx context.Context) ([]*User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at ASC`
	rows, err := s.execer(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u, err := scanUserRow(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users rows: %w", err)
	}
	return users, nil
}

func (s *PostgresStore) UpdateLastLogin(ctx context.Context, userID id.UserID, at time.Time) error {
	query := `UPDATE users SET last_login = $2 WHERE id = $1`
	res, err := s.execer(ctx).ExecContext(ctx, query, uuid.UUID(userID), at)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update last login rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *PostgresStore) scanUser(row *sql.Row) (*User, error) {
	u, err := scanUserRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func scanUserRow(row rowScanner) (*User, error) {
	var (
		u         User
		rawID     uuid.UUID
		birthDate sql.NullTime
		phone     sql.NullString
		lastLogin sql.NullTime
	)
	err := row.Scan(&rawID, &u.Email, &u.PasswordHash, &u.DocumentNumber, &u.FirstName, &u.LastName, &birthDate, &phone, &u.Role, &u.Status, &lastLogin, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.ID = id.UserID(rawID)
	u.Phone = phone.String
	if birthDate.Valid {
		t := birthDate.Time
		u.BirthDate = &t
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLogin = &t
	}
	return &u, nil
}

func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullableTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
