// Package payment records plan payments. Processing is out of scope;
// records are created pending and settled by the upstream provider's
// callback flow.
package payment

import (
	"time"

	id "workcheck/pkg/domain"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

type Method string

const (
	MethodCard     Method = "card"
	MethodTransfer Method = "transfer"
)

func (m Method) IsValid() bool {
	return m == MethodCard || m == MethodTransfer
}

// Payment is one recorded charge against an employer account.
type Payment struct {
	ID        id.PaymentID
	UserID    id.UserID
	Amount    float64
	Currency  string
	Method    Method
	Status    Status
	CreatedAt time.Time
}
