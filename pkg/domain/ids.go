// Package domain holds typed identifiers shared across features. Typed IDs
// make cross-entity mixups (a user ID where an employee ID belongs) a compile
// error instead of a data bug.
package domain

import (
	"github.com/google/uuid"

	dErrors "workcheck/pkg/domain-errors"
)

type (
	// UserID identifies a registered platform account (the submitting employer).
	UserID uuid.UUID
	// EmployeeID identifies a worker record in the employee directory.
	// Employees are subjects of reports, not platform accounts.
	EmployeeID uuid.UUID
	// ReportID identifies one submitted report.
	ReportID uuid.UUID
	// SubscriptionID identifies a user's subscription row.
	SubscriptionID uuid.UUID
	// PaymentID identifies a payment row.
	PaymentID uuid.UUID
	// SearchLogID identifies one search audit entry.
	SearchLogID uuid.UUID
)

// parseUUID enforces the shared invariant: IDs must be valid, non-nil UUIDs.
func parseUUID(s, what string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" is required")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+what)
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+what)
	}
	return parsed, nil
}

// ParseUserID constructs a UserID from external input. Call at trust
// boundaries; direct casting bypasses validation.
func ParseUserID(s string) (UserID, error) {
	parsed, err := parseUUID(s, "user id")
	return UserID(parsed), err
}

// ParseEmployeeID constructs an EmployeeID from external input.
func ParseEmployeeID(s string) (EmployeeID, error) {
	parsed, err := parseUUID(s, "employee id")
	return EmployeeID(parsed), err
}

// ParseReportID constructs a ReportID from external input.
func ParseReportID(s string) (ReportID, error) {
	parsed, err := parseUUID(s, "report id")
	return ReportID(parsed), err
}

func (id UserID) String() string         { return uuid.UUID(id).String() }
func (id EmployeeID) String() string     { return uuid.UUID(id).String() }
func (id ReportID) String() string       { return uuid.UUID(id).String() }
func (id SubscriptionID) String() string { return uuid.UUID(id).String() }
func (id PaymentID) String() string      { return uuid.UUID(id).String() }
func (id SearchLogID) String() string    { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id EmployeeID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id ReportID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id SubscriptionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id PaymentID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id SearchLogID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
