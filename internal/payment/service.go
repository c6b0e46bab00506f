package payment

import (
	"context"
	"log/slog"
	"math"
	"strings"

	"github.com/google/uuid"

	id "workcheck/pkg/domain"
	dErrors "workcheck/pkg/domain-errors"
	"workcheck/pkg/requestcontext"
)

// CreateInput carries a payment record request.
type CreateInput struct {
	Amount   float64
	Currency string
	Method   string
}

// Service owns payment record creation and listing.
type Service struct {
	store  Store
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func NewService(store Store, opts ...Option) *Service {
	svc := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Create records a pending payment for the user. Amounts are rounded to
// two decimal places to match the storage precision.
func (s *Service) Create(ctx context.Context, userID id.UserID, input CreateInput) (*Payment, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if input.Amount <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "amount must be positive")
	}
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if len(currency) != 3 {
		return nil, dErrors.New(dErrors.CodeValidation, "currency must be a 3-letter code")
	}
	method := Method(input.Method)
	if !method.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "method must be card or transfer")
	}

	p := &Payment{
		ID:        id.PaymentID(uuid.New()),
		UserID:    userID,
		Amount:    math.Round(input.Amount*100) / 100,
		Currency:  currency,
		Method:    method,
		Status:    StatusPending,
		CreatedAt: requestcontext.Now(ctx),
	}
	if err := s.store.Create(ctx, p); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record payment")
	}

	s.logger.InfoContext(ctx, "payment recorded",
		"payment_id", p.ID.String(),
		"user_id", userID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return p, nil
}

// ListByUser returns the user's payments, newest first.
func (s *Service) ListByUser(ctx context.Context, userID id.UserID) ([]*Payment, error) {
	payments, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list payments")
	}
	return payments, nil
}
