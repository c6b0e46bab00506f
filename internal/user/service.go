package user

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"workcheck/internal/auth/revocation"
	"workcheck/internal/platform/metrics"
	id "workcheck/pkg/domain"
	dErrors "workcheck/pkg/domain-errors"
	"workcheck/pkg/platform/sentinel"
	"workcheck/pkg/requestcontext"
)

const minPasswordLength = 8

// TokenIssuer signs access tokens. Satisfied by jwttoken.JWTService.
type TokenIssuer interface {
	GenerateAccessToken(userID uuid.UUID, role string, expiresIn time.Duration) (string, string, error)
}

const birthDateLayout = "2006-01-02"

// RegisterInput carries a registration request. BirthDate is optional and
// formatted as YYYY-MM-DD when present.
type RegisterInput struct {
	Email          string
	Password       string
	DocumentNumber string
	FirstName      string
	LastName       string
	BirthDate      string
	Phone          string
}

// LoginResult is what a successful login returns to the transport layer.
type LoginResult struct {
	Token     string
	ExpiresIn time.Duration
	User      *User
}

// Service owns account registration, credential login, and token logout.
type Service struct {
	store    Store
	tokens   TokenIssuer
	trl      revocation.TokenRevocationList
	tokenTTL time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithRevocationList enables logout. Without it Logout reports unavailable.
func WithRevocationList(trl revocation.TokenRevocationList) Option {
	return func(s *Service) { s.trl = trl }
}

func NewService(store Store, tokens TokenIssuer, tokenTTL time.Duration, opts ...Option) *Service {
	svc := &Service{
		store:    store,
		tokens:   tokens,
		tokenTTL: tokenTTL,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Register creates an employer account. Emails are stored lowercased so
// login is case-insensitive on the email.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, dErrors.New(dErrors.CodeValidation, "a valid email is required")
	}
	if len(input.Password) < minPasswordLength {
		return nil, dErrors.New(dErrors.CodeValidation, "password must be at least 8 characters")
	}
	if input.DocumentNumber == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "documentNumber is required")
	}
	if input.FirstName == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "firstName is required")
	}
	if input.LastName == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "lastName is required")
	}
	var birthDate *time.Time
	if input.BirthDate != "" {
		parsed, err := time.Parse(birthDateLayout, input.BirthDate)
		if err != nil {
			return nil, dErrors.New(dErrors.CodeValidation, "birthDate must be formatted as YYYY-MM-DD")
		}
		birthDate = &parsed
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	u := &User{
		ID:             id.UserID(uuid.New()),
		Email:          email,
		PasswordHash:   string(hash),
		DocumentNumber: input.DocumentNumber,
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		BirthDate:      birthDate,
		Phone:          input.Phone,
		Role:           RoleUser,
		Status:         StatusActive,
		CreatedAt:      requestcontext.Now(ctx),
	}
	if err := s.store.Create(ctx, u); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyExists) {
			return nil, dErrors.New(dErrors.CodeConflict, "email already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}

	s.metrics.IncrementUsersRegistered()
	s.logger.InfoContext(ctx, "user registered",
		"user_id", u.ID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return u, nil
}

// Login verifies credentials and issues an access token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "email and password are required")
	}

	u, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	if u.Status != StatusActive {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}

	token, _, err := s.tokens.GenerateAccessToken(uuid.UUID(u.ID), u.Role, s.tokenTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}

	// Best effort; a failed timestamp update must not fail the login.
	if err := s.store.UpdateLastLogin(ctx, u.ID, requestcontext.Now(ctx)); err != nil {
		s.logger.WarnContext(ctx, "failed to update last login",
			"user_id", u.ID.String(),
			"error", err.Error(),
		)
	}

	s.logger.InfoContext(ctx, "user logged in",
		"user_id", u.ID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return &LoginResult{Token: token, ExpiresIn: s.tokenTTL, User: u}, nil
}

// Logout revokes the presented token's jti until the token would have
// expired on its own.
func (s *Service) Logout(ctx context.Context, jti string) error {
	if s.trl == nil {
		return dErrors.New(dErrors.CodeUnavailable, "logout is not available")
	}
	if jti == "" {
		return dErrors.New(dErrors.CodeUnauthorized, "missing token id")
	}
	if err := s.trl.RevokeToken(ctx, jti, s.tokenTTL); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke token")
	}
	s.logger.InfoContext(ctx, "token revoked",
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

// List returns all accounts, oldest first. Admin only; the transport layer
// enforces the role.
func (s *Service) List(ctx context.Context) ([]*User, error) {
	users, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list users")
	}
	return users, nil
}

// FindByID returns a single account.
func (s *Service) FindByID(ctx context.Context, userID id.UserID) (*User, error) {
	u, err := s.store.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return u, nil
}
