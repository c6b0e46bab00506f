// Package user manages the employer accounts that file reports: registration,
// credential login, token logout, and the admin account listing.
package user

import (
	"time"

	id "workcheck/pkg/domain"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusDisabled Status = "disabled"
)

// User is an employer account. PasswordHash never leaves this package.
type User struct {
	ID             id.UserID
	Email          string
	PasswordHash   string
	DocumentNumber string
	FirstName      string
	LastName       string
	BirthDate      *time.Time
	Phone          string
	Role           string
	Status         Status
	LastLogin      *time.Time
	CreatedAt      time.Time
}
