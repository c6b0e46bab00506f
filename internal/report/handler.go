package report

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"workcheck/internal/employee"
	id "workcheck/pkg/domain"
	dErrors "workcheck/pkg/domain-errors"
	"workcheck/pkg/platform/httputil"
	"workcheck/pkg/requestcontext"
)

// maxMultipartMemory bounds how much of a submission is buffered in memory
// before spilling to disk.
const maxMultipartMemory = 10 << 20

// SearchGate is consulted before an employee history lookup runs. It
// returns CodeForbidden when the caller's plan has no searches left.
type SearchGate interface {
	ConsumeSearch(ctx context.Context, userID id.UserID) error
}

// SearchRecorder receives every employee search for the audit trail. The
// context carries the client metadata captured by the middleware chain.
// Recording is fire-and-forget and never blocks the request.
type SearchRecorder interface {
	Record(ctx context.Context, userID id.UserID, employeeID *id.EmployeeID, query string)
}

// Handler serves report submission, the report listings, and the employee
// search endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	gate     SearchGate
	recorder SearchRecorder
}

func NewHandler(service *Service, logger *slog.Logger, gate SearchGate, recorder SearchRecorder) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		gate:     gate,
		recorder: recorder,
	}
}

// Register registers the report routes. The router is expected to already
// carry the authentication middleware.
func (h *Handler) Register(r chi.Router) {
	r.Post("/reports", h.handleSubmit)
	r.Get("/reports", h.handleListAll)
	r.Get("/employees", h.handleDirectory)
	r.Get("/employees/search/{documentNumber}", h.handleSearchEmployee)
	r.Get("/employees/search/{documentNumber}/reports", h.handleEmployeeHistory)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		h.logger.ErrorContext(ctx, "userID missing from context despite auth middleware",
			"request_id", requestID,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		h.logger.WarnContext(ctx, "invalid report submission",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "expected multipart form data"))
		return
	}

	input := SubmitInput{
		DocumentNumber: r.FormValue("documentNumber"),
		FirstName:      r.FormValue("firstName"),
		LastName:       r.FormValue("lastName"),
		Industry:       r.FormValue("industry"),
		Description:    r.FormValue("description"),
		IncidentDate:   r.FormValue("incidentDate"),
		City:           r.FormValue("city"),
	}

	file, header, err := r.FormFile("evidence")
	switch {
	case err == nil:
		defer file.Close()
		input.Evidence = file
		input.EvidenceFilename = header.Filename
	case errors.Is(err, http.ErrMissingFile):
		// Evidence is optional.
	default:
		h.logger.WarnContext(ctx, "invalid evidence upload",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid evidence file"))
		return
	}

	result, err := h.service.Submit(ctx, userID, input)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to submit report", err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, submitResponse{
		Report:          toReportJSON(result.Report),
		Employee:        toEmployeeJSON(result.Employee),
		EmployeeCreated: result.EmployeeCreated,
	})
}

func (h *Handler) handleListAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	details, err := h.service.ListAll(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to list reports", err)
		return
	}

	out := make([]detailJSON, 0, len(details))
	for _, d := range details {
		out = append(out, detailJSON{
			reportJSON: toReportJSON(d.Report),
			Submitter:  toSubmitterJSON(d.Submitter),
			Employee:   toEmployeeJSON(d.Employee),
		})
	}
	httputil.WriteJSON(w, http.StatusOK, listResponse{Reports: out})
}

func (h *Handler) handleDirectory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	entries, err := h.service.Directory(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to list employees", err)
		return
	}

	out := make([]directoryEntryJSON, 0, len(entries))
	for _, entry := range entries {
		reports := make([]historyReportJSON, 0, len(entry.Reports))
		for _, rs := range entry.Reports {
			reports = append(reports, historyReportJSON{
				reportJSON: toReportJSON(rs.Report),
				Submitter:  toSubmitterJSON(rs.Submitter),
			})
		}
		out = append(out, directoryEntryJSON{
			employeeJSON: toEmployeeJSON(entry.Employee),
			Reports:      reports,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, directoryResponse{Employees: out})
}

func (h *Handler) handleSearchEmployee(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	documentNumber := chi.URLParam(r, "documentNumber")

	emp, count, err := h.service.SearchEmployee(ctx, documentNumber)
	if err != nil {
		h.recordSearch(ctx, nil, documentNumber)
		h.writeServiceError(ctx, w, "failed to search employee", err)
		return
	}

	empID := emp.ID
	h.recordSearch(ctx, &empID, documentNumber)

	httputil.WriteJSON(w, http.StatusOK, searchResponse{
		Employee:     toEmployeeJSON(emp),
		ReportsCount: count,
	})
}

func (h *Handler) handleEmployeeHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	documentNumber := chi.URLParam(r, "documentNumber")

	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		h.logger.ErrorContext(ctx, "userID missing from context despite auth middleware",
			"request_id", requestID,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	if h.gate != nil {
		if err := h.gate.ConsumeSearch(ctx, userID); err != nil {
			h.logger.WarnContext(ctx, "search quota denied",
				"request_id", requestID,
				"error", err.Error(),
			)
			httputil.WriteError(w, err)
			return
		}
	}

	history, err := h.service.History(ctx, documentNumber)
	if err != nil {
		h.recordSearch(ctx, nil, documentNumber)
		h.writeServiceError(ctx, w, "failed to load employee history", err)
		return
	}

	empID := history.Employee.ID
	h.recordSearch(ctx, &empID, documentNumber)

	reports := make([]historyReportJSON, 0, len(history.Reports))
	for _, rs := range history.Reports {
		reports = append(reports, historyReportJSON{
			reportJSON: toReportJSON(rs.Report),
			Submitter:  toSubmitterJSON(rs.Submitter),
		})
	}
	httputil.WriteJSON(w, http.StatusOK, historyResponse{
		Employee: toEmployeeJSON(history.Employee),
		Reports:  reports,
	})
}

func (h *Handler) recordSearch(ctx context.Context, employeeID *id.EmployeeID, query string) {
	if h.recorder == nil {
		return
	}
	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		return
	}
	h.recorder.Record(ctx, userID, employeeID, query)
}

// writeServiceError logs at a severity matching the error class and writes
// the response. Expected outcomes (validation, not found, quota) log as
// warnings; everything else is an error with a generic body.
func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	requestID := requestcontext.RequestID(ctx)
	switch dErrors.CodeOf(err) {
	case dErrors.CodeValidation, dErrors.CodeBadRequest, dErrors.CodeNotFound,
		dErrors.CodeForbidden, dErrors.CodeUnauthorized, dErrors.CodeConflict,
		dErrors.CodeUnavailable:
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

type reportJSON struct {
	ID           string `json:"id"`
	UserID       string `json:"userId"`
	EmployeeID   string `json:"employeeId"`
	Description  string `json:"description"`
	IncidentDate string `json:"incidentDate"`
	City         string `json:"city"`
	EvidenceURL  string `json:"evidenceUrl,omitempty"`
	Status       string `json:"status"`
	CreatedAt    string `json:"createdAt"`
}

type submitterJSON struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	DocumentNumber string `json:"documentNumber"`
}

type employeeJSON struct {
	ID             string `json:"id"`
	DocumentNumber string `json:"documentNumber"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	City           string `json:"city"`
	Industry       string `json:"industry,omitempty"`
	Status         string `json:"status"`
	CreatedAt      string `json:"createdAt"`
}

type submitResponse struct {
	Report          reportJSON   `json:"report"`
	Employee        employeeJSON `json:"employee"`
	EmployeeCreated bool         `json:"employeeCreated"`
}

type detailJSON struct {
	reportJSON
	Submitter submitterJSON `json:"submitter"`
	Employee  employeeJSON  `json:"employee"`
}

type listResponse struct {
	Reports []detailJSON `json:"reports"`
}

type searchResponse struct {
	Employee     employeeJSON `json:"employee"`
	ReportsCount int          `json:"reportsCount"`
}

type historyReportJSON struct {
	reportJSON
	Submitter submitterJSON `json:"submitter"`
}

type historyResponse struct {
	Employee employeeJSON        `json:"employee"`
	Reports  []historyReportJSON `json:"reports"`
}

type directoryEntryJSON struct {
	employeeJSON
	Reports []historyReportJSON `json:"reports"`
}

type directoryResponse struct {
	Employees []directoryEntryJSON `json:"employees"`
}

func toReportJSON(r *Report) reportJSON {
	return reportJSON{
		ID:           r.ID.String(),
		UserID:       r.UserID.String(),
		EmployeeID:   r.EmployeeID.String(),
		Description:  r.Description,
		IncidentDate: r.IncidentDate.Format(incidentDateLayout),
		City:         r.City,
		EvidenceURL:  r.EvidenceURL,
		Status:       string(r.Status),
		CreatedAt:    r.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toSubmitterJSON(s *Submitter) submitterJSON {
	return submitterJSON{
		ID:             s.ID.String(),
		Email:          s.Email,
		FirstName:      s.FirstName,
		LastName:       s.LastName,
		DocumentNumber: s.DocumentNumber,
	}
}

func toEmployeeJSON(e *employee.Employee) employeeJSON {
	return employeeJSON{
		ID:             e.ID.String(),
		DocumentNumber: e.DocumentNumber,
		FirstName:      e.FirstName,
		LastName:       e.LastName,
		City:           e.City,
		Industry:       e.Industry,
		Status:         string(e.Status),
		CreatedAt:      e.CreatedAt.UTC().Format(time.RFC3339),
	}
}
