package user

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

// Handler serves account registration, login, logout, and the admin listing.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

// RegisterPublic registers the unauthenticated routes.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/users/register", h.handleRegister)
	r.Post("/users/login", h.handleLogin)
}

// RegisterProtected registers the routes that require authentication. The
// admin listing additionally expects a role check on the router.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Post("/users/logout", h.handleLogout)
}

// RegisterAdmin registers the admin-only routes.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/users", h.handleList)
}

type registerRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	DocumentNumber string `json:"documentNumber"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	BirthDate      string `json:"birthDate"`
	Phone          string `json:"phone"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userJSON struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	DocumentNumber string `json:"documentNumber"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	BirthDate      string `json:"birthDate,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Role           string `json:"role"`
	Status         string `json:"status"`
	LastLogin      string `json:"lastLogin,omitempty"`
	CreatedAt      string `json:"createdAt"`
}

type registerResponse struct {
	User userJSON `json:"user"`
}

type loginResponse struct {
	Token     string   `json:"token"`
	ExpiresIn int64    `json:"expiresIn"`
	User      userJSON `json:"user"`
}

type listResponse struct {
	Users []userJSON `json:"users"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid register request",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	u, err := h.service.Register(ctx, RegisterInput{
		Email:          req.Email,
		Password:       req.Password,
		DocumentNumber: req.DocumentNumber,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		BirthDate:      req.BirthDate,
		Phone:          req.Phone,
	})
	if err != nil {
		h.writeServiceError(ctx, w, "failed to register user", err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, registerResponse{User: toUserJSON(u)})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid login request",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	result, err := h.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to log in", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, loginResponse{
		Token:     result.Token,
		ExpiresIn: int64(result.ExpiresIn.Seconds()),
		User:      toUserJSON(result.User),
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	jti := requestcontext.TokenID(ctx)
	if err := h.service.Logout(ctx, jti); err != nil {
		h.writeServiceError(ctx, w, "failed to log out", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	users, err := h.service.List(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to list users", err)
		return
	}

	out := make([]userJSON, 0, len(users))
	for _, u := range users {
		out = append(out, toUserJSON(u))
	}
	httputil.WriteJSON(w, http.StatusOK, listResponse{Users: out})
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	requestID := requestcontext.RequestID(ctx)
	switch dErrors.CodeOf(err) {
	case dErrors.CodeValidation, dErrors.CodeBadRequest, dErrors.CodeUnauthorized,
		dErrors.CodeForbidden, dErrors.CodeConflict, dErrors.CodeNotFound,
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

func toUserJSON(u *User) userJSON {
	out := userJSON{
		ID:             u.ID.String(),
		Email:          u.Email,
		DocumentNumber: u.DocumentNumber,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Phone:          u.Phone,
		Role:           u.Role,
		Status:         string(u.Status),
		CreatedAt:      u.CreatedAt.UTC().Format(time.RFC3339),
	}
	if u.BirthDate != nil {
		out.BirthDate = u.BirthDate.UTC().Format(birthDateLayout)
	}
	if u.LastLogin != nil {
		out.LastLogin = u.LastLogin.UTC().Format(time.RFC3339)
	}
	return out
}
