package employee

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"workcheck/internal/platform/metrics"
	id "workcheck/pkg/domain"
	dErrors "workcheck/pkg/domain-errors"
	"workcheck/pkg/platform/sentinel"
	"workcheck/pkg/requestcontext"
)

// ResolveInput carries the fields a submission knows about the employee. The
// descriptive fields only matter on the creation path; when the document
// number already resolves to a row they are ignored so the first-submitted
// record stays canonical.
type ResolveInput struct {
	DocumentNumber string
	FirstName      string
	LastName       string
	City           string
	Industry       string
}

// Service owns resolve-or-create semantics for the employee directory.
type Service struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(store Store, opts ...Option) *Service {
	svc := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Resolve returns the employee row for the input's document number, creating
// it if absent. The returned bool reports whether this call created the row.
//
// Lookups are exact-match: no whitespace or case normalization is applied to
// the document number, so callers must normalize upstream if they want
// "12345 " and "12345" to be the same identity.
func (s *Service) Resolve(ctx context.Context, input ResolveInput) (*Employee, bool, error) {
	if input.DocumentNumber == "" {
		return nil, false, dErrors.New(dErrors.CodeValidation, "documentNumber is required")
	}

	// Fast path: the common case is a repeat subject.
	existing, err := s.store.FindByDocumentNumber(ctx, input.DocumentNumber)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve employee")
	}

	// Creation path: the descriptive fields become the canonical record, so
	// they are required here and only here.
	if input.FirstName == "" {
		return nil, false, dErrors.New(dErrors.CodeValidation, "firstName is required")
	}
	if input.LastName == "" {
		return nil, false, dErrors.New(dErrors.CodeValidation, "lastName is required")
	}
	if input.City == "" {
		return nil, false, dErrors.New(dErrors.CodeValidation, "city is required")
	}

	candidate := &Employee{
		ID:             id.EmployeeID(uuid.New()),
		DocumentNumber: input.DocumentNumber,
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		City:           input.City,
		Industry:       input.Industry,
		Status:         StatusActive,
		CreatedAt:      requestcontext.Now(ctx),
	}

	resolved, created, err := s.store.CreateIfAbsent(ctx, candidate)
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			// The insert lost the uniqueness race and the re-read could not
			// recover the winning row. Should not happen in normal operation.
			return nil, false, dErrors.Wrap(err, dErrors.CodeConflict, "employee directory conflict")
		}
		return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create employee")
	}

	if created {
		s.metrics.IncrementEmployeesCreated()
		s.logger.InfoContext(ctx, "employee created",
			"employee_id", resolved.ID.String(),
			"request_id", requestcontext.RequestID(ctx),
		)
	}

	return resolved, created, nil
}

// FindByDocumentNumber looks up an employee without creating anything.
// Unknown document numbers yield CodeNotFound: an expected outcome the caller
// must distinguish from a system error.
func (s *Service) FindByDocumentNumber(ctx context.Context, documentNumber string) (*Employee, error) {
	if documentNumber == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "documentNumber is required")
	}
	e, err := s.store.FindByDocumentNumber(ctx, documentNumber)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "employee not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to search employee")
	}
	return e, nil
}

// List returns the whole directory, oldest row first.
func (s *Service) List(ctx context.Context) ([]*Employee, error) {
	employees, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list employees")
	}
	return employees, nil
}

// FindByID returns the employee row for employeeID.
func (s *Service) FindByID(ctx context.Context, employeeID id.EmployeeID) (*Employee, error) {
	e, err := s.store.FindByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "employee not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load employee")
	}
	return e, nil
}
