package user_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"workcheck/internal/auth/revocation"
	jwttoken "workcheck/internal/jwt_token"
	"workcheck/internal/user"
	"workcheck/pkg/requestcontext"
	"workcheck/pkg/testutil"
)

type HandlerSuite struct {
	suite.Suite
	router  chi.Router
	service *user.Service
	trl     *revocation.MemoryTRL
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	store := user.NewInMemoryStore()
	tokens := jwttoken.NewJWTService("test-signing-key", "test-issuer")
	s.trl = revocation.NewMemoryTRL()
	s.service = user.NewService(store, tokens, time.Hour,
		user.WithRevocationList(s.trl),
	)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := user.NewHandler(s.service, logger)

	s.router = chi.NewRouter()
	handler.RegisterPublic(s.router)
	handler.RegisterProtected(s.router)
	handler.RegisterAdmin(s.router)
}

func (s *HandlerSuite) register(email string) {
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/users/register", map[string]string{
		"email":          email,
		"password":       "s3cret-enough",
		"documentNumber": "900123456",
		"firstName":      "Diana",
		"lastName":       "Torres",
	})
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
}

func (s *HandlerSuite) TestRegister() {
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/users/register", map[string]string{
		"email":          "hr@acme.test",
		"password":       "s3cret-enough",
		"documentNumber": "900123456",
		"firstName":      "Diana",
		"lastName":       "Torres",
		"birthDate":      "1988-04-12",
		"phone":          "+57 300 000 0000",
	})
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		User map[string]any `json:"user"`
	}
	testutil.DecodeJSON(s.T(), rec, &resp)
	s.Equal("hr@acme.test", resp.User["email"])
	s.Equal("900123456", resp.User["documentNumber"])
	s.Equal("Diana", resp.User["firstName"])
	s.Equal("Torres", resp.User["lastName"])
	s.Equal("1988-04-12", resp.User["birthDate"])
	s.Equal("user", resp.User["role"])
	s.NotContains(resp.User, "password")
	s.NotContains(resp.User, "passwordHash")
}

func (s *HandlerSuite) TestRegister_DuplicateIs409() {
	s.register("hr@acme.test")

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/users/register", map[string]string{
		"email":          "hr@acme.test",
		"password":       "s3cret-enough",
		"documentNumber": "900123456",
		"firstName":      "Diana",
		"lastName":       "Torres",
	})
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusConflict, rec.Code)
}

func (s *HandlerSuite) TestRegister_InvalidBodyIs400() {
	req := httptest.NewRequest(http.MethodPost, "/users/register", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestLogin() {
	s.register("hr@acme.test")

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/users/login", map[string]string{
		"email":    "hr@acme.test",
		"password": "s3cret-enough",
	})
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Token     string `json:"token"`
		ExpiresIn int64  `json:"expiresIn"`
	}
	testutil.DecodeJSON(s.T(), rec, &resp)
	s.NotEmpty(resp.Token)
	s.Equal(int64(3600), resp.ExpiresIn)
}

func (s *HandlerSuite) TestLogin_BadCredentialsIs401() {
	s.register("hr@acme.test")

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/users/login", map[string]string{
		"email":    "hr@acme.test",
		"password": "wrong-password",
	})
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *HandlerSuite) TestLogout_RevokesToken() {
	req := httptest.NewRequest(http.MethodPost, "/users/logout", nil)
	req = req.WithContext(requestcontext.WithTokenID(req.Context(), "jti-xyz"))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Require().Equal(http.StatusNoContent, rec.Code)

	revoked, err := s.trl.IsRevoked(req.Context(), "jti-xyz")
	s.Require().NoError(err)
	s.True(revoked)
}

func (s *HandlerSuite) TestList() {
	s.register("hr@acme.test")
	s.register("ops@other.test")

	req := testutil.NewRequest(s.T(), http.MethodGet, "/users")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Require().Equal(http.StatusOK, rec.Code)

	var resp struct {
		Users []map[string]any `json:"users"`
	}
	testutil.DecodeJSON(s.T(), rec, &resp)
	s.Len(resp.Users, 2)
}
