package subscription

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	dErrors "workcheck/pkg/domain-errors"
	"workcheck/pkg/platform/httputil"
	"workcheck/pkg/requestcontext"
)

// Handler serves the plan endpoints. Registered behind authentication.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/subscriptions", h.handleSubscribe)
	r.Get("/subscriptions", h.handleCurrent)
}

type subscribeRequest struct {
	Plan string `json:"plan"`
}

type subscriptionJSON struct {
	ID        string `json:"id,omitempty"`
	UserID    string `json:"userId"`
	Plan      string `json:"plan"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
	Status    string `json:"status"`
}

type subscriptionResponse struct {
	Subscription subscriptionJSON `json:"subscription"`
}

func (h *Handler) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid subscribe request",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	sub, err := h.service.Subscribe(ctx, userID, Plan(req.Plan))
	if err != nil {
		h.writeServiceError(ctx, w, "failed to subscribe", err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, subscriptionResponse{Subscription: toSubscriptionJSON(sub)})
}

func (h *Handler) handleCurrent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	sub, err := h.service.Current(ctx, userID)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to load subscription", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, subscriptionResponse{Subscription: toSubscriptionJSON(sub)})
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	requestID := requestcontext.RequestID(ctx)
	switch dErrors.CodeOf(err) {
	case dErrors.CodeValidation, dErrors.CodeBadRequest, dErrors.CodeUnauthorized,
		dErrors.CodeForbidden, dErrors.CodeNotFound:
		h.logger.WarnContext(ctx, msg,
			"request_id", requestID,
			"error", err.Error(),
		)
	default:
		h.logger.ErrorContext(ctx, msg,
			"request_id", requestID,
			"error", err.Error(),
		)
	}
	httputil.WriteError(w, err)
}

func toSubscriptionJSON(sub *Subscription) subscriptionJSON {
	out := subscriptionJSON{
		UserID: sub.UserID.String(),
		Plan:   string(sub.Plan),
		Status: string(sub.Status),
	}
	if !sub.ID.IsNil() {
		out.ID = sub.ID.String()
	}
	if !sub.StartDate.IsZero() {
		out.StartDate = sub.StartDate.UTC().Format(time.RFC3339)
	}
	if sub.EndDate != nil {
		out.EndDate = sub.EndDate.UTC().Format(time.RFC3339)
	}
	return out
}
