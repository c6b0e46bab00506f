package user

import (
	"context"
	"time"

	id "workcheck/pkg/domain"
)

// Store persists employer accounts. Create returns ErrAlreadyExists when the
// email is taken; the email UNIQUE constraint backs this in Postgres.
type Store interface {
	Create(ctx context.Context, u *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, userID id.UserID) (*User, error)
	List(ctx context.Context) ([]*User, error)
	UpdateLastLogin(ctx context.Context, userID id.UserID, at time.Time) error
}
