package employee

import (
	"time"

	id "workcheck/pkg/domain"
)

// Status is the employee lifecycle flag. Only StatusActive is assigned by
// this service; other values are reserved for administrative tooling.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Employee is a worker record in the directory. The document number is the
// natural key: at most one row exists per document number, and the field is
// immutable once set.
type Employee struct {
	ID             id.EmployeeID
	DocumentNumber string
	FirstName      string
	LastName       string
	City           string
	Industry       string
	Status         Status
	CreatedAt      time.Time
}
