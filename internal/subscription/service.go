package subscription

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	id "workcheck/pkg/domain"
	dErrors "workcheck/pkg/domain-errors"
	"workcheck/pkg/platform/sentinel"
	"workcheck/pkg/requestcontext"
)

// monthKeyLayout formats the calendar month a search counter belongs to.
const monthKeyLayout = "2006-01"

// Service owns plan management and the search quota gate. Users without a
// subscription row are on the free plan.
type Service struct {
	store           Store
	freeSearchLimit int
	logger          *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func NewService(store Store, freeSearchLimit int, opts ...Option) *Service {
	svc := &Service{
		store:           store,
		freeSearchLimit: freeSearchLimit,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Subscribe sets the user's plan, replacing any previous subscription.
func (s *Service) Subscribe(ctx context.Context, userID id.UserID, plan Plan) (*Subscription, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if !plan.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "plan must be one of free, standard, premium")
	}

	sub := &Subscription{
		ID:        id.SubscriptionID(uuid.New()),
		UserID:    userID,
		Plan:      plan,
		StartDate: requestcontext.Now(ctx),
		Status:    StatusActive,
	}
	if err := s.store.Upsert(ctx, sub); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save subscription")
	}

	s.logger.InfoContext(ctx, "subscription updated",
		"user_id", userID.String(),
		"plan", string(plan),
		"request_id", requestcontext.RequestID(ctx),
	)
	return sub, nil
}

// Current returns the user's subscription. Users who never subscribed get
// an implicit active free plan rather than a not-found error.
func (s *Service) Current(ctx context.Context, userID id.UserID) (*Subscription, error) {
	sub, err := s.store.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return &Subscription{
				UserID: userID,
				Plan:   PlanFree,
				Status: StatusActive,
			}, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load subscription")
	}
	return sub, nil
}

// ConsumeSearch spends one search from the user's monthly allowance.
// Unlimited plans pass through without touching the counter. A free-plan
// user over the limit gets CodeForbidden.
func (s *Service) ConsumeSearch(ctx context.Context, userID id.UserID) error {
	sub, err := s.Current(ctx, userID)
	if err != nil {
		return err
	}
	if sub.Status == StatusActive && sub.Plan.Unlimited() {
		return nil
	}

	month := requestcontext.Now(ctx).UTC().Format(monthKeyLayout)
	count, err := s.store.IncrementSearchUsage(ctx, userID, month)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to count search usage")
	}
	if count > s.freeSearchLimit {
		s.logger.InfoContext(ctx, "search quota exhausted",
			"user_id", userID.String(),
			"month", month,
			"used", count,
			"limit", s.freeSearchLimit,
		)
		return dErrors.New(dErrors.CodeForbidden, "search limit reached for the current plan")
	}
	return nil
}
