// Package searchlog records every employee search as an audit trail entry.
// Entries are written asynchronously so a slow sink never delays a search
// response.
package searchlog

import (
	"time"

	id "workcheck/pkg/domain"
)

// Entry is one recorded search. EmployeeID is nil when the search did not
// resolve to a directory row. IPAddress and UserAgent come from the client
// metadata captured by the middleware chain; either may be empty.
type Entry struct {
	ID         id.SearchLogID
	UserID     id.UserID
	EmployeeID *id.EmployeeID
	Query      string
	IPAddress  string
	UserAgent  string
	CreatedAt  time.Time
}

// Detail is an entry joined with who searched and who was searched for.
type Detail struct {
	Entry          *Entry
	UserEmail      string
	UserName       string
	EmployeeName   string
	DocumentNumber string
}
