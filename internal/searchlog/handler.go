package searchlog

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	dErrors "workcheck/pkg/domain-errors"
	"workcheck/pkg/platform/httputil"
	"workcheck/pkg/requestcontext"
)

// Handler serves the audit trail listing. Registered on the admin router.
type Handler struct {
	logger *slog.Logger
	store  Store
}

func NewHandler(store Store, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, store: store}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/searchlogs", h.handleList)
}

type entryJSON struct {
	ID             string `json:"id"`
	UserID         string `json:"userId"`
	UserEmail      string `json:"userEmail"`
	UserName       string `json:"userName"`
	EmployeeID     string `json:"employeeId,omitempty"`
	EmployeeName   string `json:"employeeName,omitempty"`
	DocumentNumber string `json:"documentNumber,omitempty"`
	Query          string `json:"query"`
	IPAddress      string `json:"ipAddress,omitempty"`
	UserAgent      string `json:"userAgent,omitempty"`
	CreatedAt      string `json:"createdAt"`
}

type listResponse struct {
	SearchLogs []entryJSON `json:"searchLogs"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	details, err := h.store.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list search logs",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list search logs"))
		return
	}

	out := make([]entryJSON, 0, len(details))
	for _, d := range details {
		item := entryJSON{
			ID:             d.Entry.ID.String(),
			UserID:         d.Entry.UserID.String(),
			UserEmail:      d.UserEmail,
			UserName:       d.UserName,
			EmployeeName:   d.EmployeeName,
			DocumentNumber: d.DocumentNumber,
			Query:          d.Entry.Query,
			IPAddress:      d.Entry.IPAddress,
			UserAgent:      d.Entry.UserAgent,
			CreatedAt:      d.Entry.CreatedAt.UTC().Format(time.RFC3339),
		}
		if d.Entry.EmployeeID != nil {
			item.EmployeeID = d.Entry.EmployeeID.String()
		}
		out = append(out, item)
	}
	httputil.WriteJSON(w, http.StatusOK, listResponse{SearchLogs: out})
}
