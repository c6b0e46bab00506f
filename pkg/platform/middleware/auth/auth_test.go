package auth_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workcheck/internal/auth/revocation"
	jwttoken "workcheck/internal/jwt_token"
	authmw "workcheck/pkg/platform/middleware/auth"
	"workcheck/pkg/requestcontext"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestRequireAuth_ValidTokenInjectsContext(t *testing.T) {
	service := jwttoken.NewJWTService("test-signing-key", "test-issuer")
	validator := jwttoken.NewJWTServiceAdapter(service)

	userID := uuid.New()
	token, jti, err := service.GenerateAccessToken(userID, "admin", time.Hour)
	require.NoError(t, err)

	var gotUserID, gotRole, gotJTI string
	handler := authmw.RequireAuth(validator, revocation.NewMemoryTRL(), testLogger)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			gotUserID = requestcontext.UserID(ctx).String()
			gotRole = requestcontext.UserRole(ctx)
			gotJTI = requestcontext.TokenID(ctx)
			w.WriteHeader(http.StatusOK)
		}))

	req := httptest.NewRequest(http.MethodGet, "/reports", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID.String(), gotUserID)
	assert.Equal(t, "admin", gotRole)
	assert.Equal(t, jti, gotJTI)
}

func TestRequireAuth_MissingHeaderIs401(t *testing.T) {
	service := jwttoken.NewJWTService("test-signing-key", "test-issuer")
	validator := jwttoken.NewJWTServiceAdapter(service)
	handler := authmw.RequireAuth(validator, nil, testLogger)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	req := httptest.NewRequest(http.MethodGet, "/reports", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuth_GarbageTokenIs401(t *testing.T) {
	service := jwttoken.NewJWTService("test-signing-key", "test-issuer")
	validator := jwttoken.NewJWTServiceAdapter(service)
	handler := authmw.RequireAuth(validator, nil, testLogger)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	req := httptest.NewRequest(http.MethodGet, "/reports", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuth_RevokedTokenIs401(t *testing.T) {
	service := jwttoken.NewJWTService("test-signing-key", "test-issuer")
	validator := jwttoken.NewJWTServiceAdapter(service)
	trl := revocation.NewMemoryTRL()

	token, jti, err := service.GenerateAccessToken(uuid.New(), "user", time.Hour)
	require.NoError(t, err)

	handler := authmw.RequireAuth(validator, trl, testLogger)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	req := httptest.NewRequest(http.MethodPost, "/users/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, "token works before revocation")

	require.NoError(t, trl.RevokeToken(req.Context(), jti, time.Hour))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "revocation takes effect immediately")
}

func TestRequireRole(t *testing.T) {
	handler := authmw.RequireRole("admin", testLogger)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req = req.WithContext(requestcontext.WithUserRole(req.Context(), "user"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/users", nil)
	req = req.WithContext(requestcontext.WithUserRole(req.Context(), "admin"))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
