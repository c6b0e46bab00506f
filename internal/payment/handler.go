package payment

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	dErrors "workcheck/pkg/domain-errors"
	"workcheck/pkg/platform/httputil"
	"workcheck/pkg/requestcontext"
)

// Handler serves the payment endpoints. Registered behind authentication.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/payments", h.handleCreate)
	r.Get("/payments", h.handleList)
}

type createRequest struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Method   string  `json:"method"`
}

type paymentJSON struct {
	ID        string  `json:"id"`
	UserID    string  `json:"userId"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	Method    string  `json:"method"`
	Status    string  `json:"status"`
	CreatedAt string  `json:"createdAt"`
}

type createResponse struct {
	Payment paymentJSON `json:"payment"`
}

type listResponse struct {
	Payments []paymentJSON `json:"payments"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid payment request",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	p, err := h.service.Create(ctx, userID, CreateInput{
		Amount:   req.Amount,
		Currency: req.Currency,
		Method:   req.Method,
	})
	if err != nil {
		if dErrors.Is(err, dErrors.CodeValidation) {
			h.logger.WarnContext(ctx, "invalid payment request",
				"request_id", requestID,
				"error", err.Error(),
			)
		} else {
			h.logger.ErrorContext(ctx, "failed to record payment",
				"request_id", requestID,
				"error", err.Error(),
			)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, createResponse{Payment: toPaymentJSON(p)})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	payments, err := h.service.ListByUser(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list payments",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	out := make([]paymentJSON, 0, len(payments))
	for _, p := range payments {
		out = append(out, toPaymentJSON(p))
	}
	httputil.WriteJSON(w, http.StatusOK, listResponse{Payments: out})
}

func toPaymentJSON(p *Payment) paymentJSON {
	return paymentJSON{
		ID:        p.ID.String(),
		UserID:    p.UserID.String(),
		Amount:    p.Amount,
		Currency:  p.Currency,
		Method:    string(p.Method),
		Status:    string(p.Status),
		CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339),
	}
}
