// Package subscription manages employer plans and the monthly search quota
// the free plan is subject to.
package subscription

import (
	"time"

	id "workcheck/pkg/domain"
)

// Plan is a subscription tier. Free accounts get a limited number of
// employee searches per calendar month; paid tiers are unlimited.
type Plan string

const (
	PlanFree     Plan = "free"
	PlanStandard Plan = "standard"
	PlanPremium  Plan = "premium"
)

func (p Plan) IsValid() bool {
	switch p {
	case PlanFree, PlanStandard, PlanPremium:
		return true
	}
	return false
}

// Unlimited reports whether the plan has no monthly search cap.
func (p Plan) Unlimited() bool {
	return p == PlanStandard || p == PlanPremium
}

type Status string

const (
	StatusActive   Status = "active"
	StatusCanceled Status = "canceled"
)

// Subscription is a user's current plan. One row per user; subscribing
// again replaces the plan rather than stacking.
type Subscription struct {
	ID        id.SubscriptionID
	UserID    id.UserID
	Plan      Plan
	StartDate time.Time
	EndDate   *time.Time
	Status    Status
}
