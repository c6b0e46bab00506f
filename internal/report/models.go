// Package report implements the labor incident ledger: immutable report
// records appended by registered accounts against employee directory rows,
// plus the joined read models the query endpoints serve.
package report

import (
	"time"

	"workcheck/internal/employee"
	id "workcheck/pkg/domain"
)

// Status is the lifecycle state of a report. Reports are created active;
// no transition endpoint exists, the field is reserved for moderation.
type Status string

const (
	StatusActive   Status = "active"
	StatusResolved Status = "resolved"
	StatusClosed   Status = "closed"
)

// Report is a single ledger entry. Entries are append-only: once written,
// no field is ever updated or deleted.
type Report struct {
	ID           id.ReportID
	UserID       id.UserID
	EmployeeID   id.EmployeeID
	Description  string
	IncidentDate time.Time
	City         string
	EvidenceURL  string
	Status       Status
	CreatedAt    time.Time
}

// Submitter is the account projection joined onto report listings: the
// filer's name, document number, and email. The password hash and other
// account internals never leave the user package.
type Submitter struct {
	ID             id.UserID
	Email          string
	FirstName      string
	LastName       string
	DocumentNumber string
}

// WithSubmitter pairs a report with the account that filed it, for
// listings scoped to a single employee.
type WithSubmitter struct {
	Report    *Report
	Submitter *Submitter
}

// Detail is the fully joined read model for the global report listing.
type Detail struct {
	Report    *Report
	Submitter *Submitter
	Employee  *employee.Employee
}
