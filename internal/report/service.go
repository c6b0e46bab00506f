package report

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"workcheck/internal/employee"
	"workcheck/internal/evidence"
	"workcheck/internal/platform/metrics"
	id "workcheck/pkg/domain"
	dErrors "workcheck/pkg/domain-errors"
	"workcheck/pkg/platform/sentinel"
	"workcheck/pkg/requestcontext"
)

// incidentDateLayout is the wire format for incident dates.
const incidentDateLayout = "2006-01-02"

// EmployeeDirectory is the slice of the employee service the ledger needs.
type EmployeeDirectory interface {
	Resolve(ctx context.Context, input employee.ResolveInput) (*employee.Employee, bool, error)
	FindByDocumentNumber(ctx context.Context, documentNumber string) (*employee.Employee, error)
	List(ctx context.Context) ([]*employee.Employee, error)
}

// TxRunner executes fn atomically with respect to the stores. The Postgres
// deployment runs fn inside one transaction carried through the context;
// deployments without transactions run fn directly.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type passthroughTx struct{}

func (passthroughTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// SubmitInput carries one report submission. Evidence is optional; when nil
// the report is stored without an evidence URL.
type SubmitInput struct {
	DocumentNumber string
	FirstName      string
	LastName       string
	Industry       string
	Description    string
	IncidentDate   string
	City           string

	Evidence         io.Reader
	EvidenceFilename string
}

// SubmitResult reports what a submission produced.
type SubmitResult struct {
	Report          *Report
	Employee        *employee.Employee
	EmployeeCreated bool
}

// EmployeeHistory is the read model for a single employee's dispute record.
type EmployeeHistory struct {
	Employee *employee.Employee
	Reports  []*WithSubmitter
}

// Service owns report submission and the joined query layer.
type Service struct {
	store     Store
	employees EmployeeDirectory
	evidence  evidence.Store
	tx        TxRunner
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithTxRunner makes a submission's employee resolution and ledger append
// atomic. Without it the two writes run as separate statements.
func WithTxRunner(tx TxRunner) Option {
	return func(s *Service) { s.tx = tx }
}

func NewService(store Store, employees EmployeeDirectory, evidenceStore evidence.Store, opts ...Option) *Service {
	svc := &Service{
		store:     store,
		employees: employees,
		evidence:  evidenceStore,
		tx:        passthroughTx{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Submit validates the input, resolves the employee by document number
// (creating the directory row on first sighting), stores the evidence file
// if one was attached, and appends the report to the ledger.
//
// Evidence is stored before the append: a submission whose evidence cannot
// be persisted is rejected whole rather than recorded without its proof.
func (s *Service) Submit(ctx context.Context, userID id.UserID, input SubmitInput) (*SubmitResult, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if input.Description == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "description is required")
	}
	if input.City == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "city is required")
	}
	if input.IncidentDate == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "incidentDate is required")
	}
	incidentDate, err := time.Parse(incidentDateLayout, input.IncidentDate)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "incidentDate must be formatted as YYYY-MM-DD")
	}

	var (
		emp     *employee.Employee
		created bool
		rec     *Report
	)
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		emp, created, err = s.employees.Resolve(ctx, employee.ResolveInput{
			DocumentNumber: input.DocumentNumber,
			FirstName:      input.FirstName,
			LastName:       input.LastName,
			City:           input.City,
			Industry:       input.Industry,
		})
		if err != nil {
			return err
		}

		var evidenceURL string
		if input.Evidence != nil {
			evidenceURL, err = s.evidence.Save(ctx, input.Evidence, input.EvidenceFilename)
			if err != nil {
				s.logger.ErrorContext(ctx, "evidence upload failed",
					"request_id", requestcontext.RequestID(ctx),
					"error", err.Error(),
				)
				return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to store evidence")
			}
			s.metrics.IncrementEvidenceUploads()
		}

		rec = &Report{
			ID:           id.ReportID(uuid.New()),
			UserID:       userID,
			EmployeeID:   emp.ID,
			Description:  input.Description,
			IncidentDate: incidentDate,
			City:         input.City,
			EvidenceURL:  evidenceURL,
			Status:       StatusActive,
			CreatedAt:    requestcontext.Now(ctx),
		}
		if err := s.store.Append(ctx, rec); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				// A referenced row vanished between resolution and append.
				return dErrors.Wrap(err, dErrors.CodeInvariantViolation, "report references a missing record")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record report")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementReportsCreated()
	s.logger.InfoContext(ctx, "report recorded",
		"report_id", rec.ID.String(),
		"employee_id", emp.ID.String(),
		"employee_created", created,
		"request_id", requestcontext.RequestID(ctx),
	)

	return &SubmitResult{Report: rec, Employee: emp, EmployeeCreated: created}, nil
}

// ListAll returns every report joined with its submitter and employee,
// newest first.
func (s *Service) ListAll(ctx context.Context) ([]*Detail, error) {
	details, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list reports")
	}
	return details, nil
}

// Directory returns every employee joined with the reports filed against
// them, oldest employee first. Employees nobody has reported appear with an
// empty list.
func (s *Service) Directory(ctx context.Context) ([]*EmployeeHistory, error) {
	employees, err := s.employees.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*EmployeeHistory, 0, len(employees))
	for _, emp := range employees {
		reports, err := s.store.ListByEmployee(ctx, emp.ID)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list employee reports")
		}
		if reports == nil {
			reports = []*WithSubmitter{}
		}
		out = append(out, &EmployeeHistory{Employee: emp, Reports: reports})
	}
	return out, nil
}

// SearchEmployee looks up an employee by document number and counts the
// reports filed against them. Unknown document numbers yield CodeNotFound.
func (s *Service) SearchEmployee(ctx context.Context, documentNumber string) (*employee.Employee, int, error) {
	emp, err := s.employees.FindByDocumentNumber(ctx, documentNumber)
	if err != nil {
		return nil, 0, err
	}
	count, err := s.store.CountByEmployee(ctx, emp.ID)
	if err != nil {
		return nil, 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count reports")
	}
	return emp, count, nil
}

// History returns an employee's full dispute record, oldest report first.
// An unknown document number is CodeNotFound; a known employee with no
// reports is a valid empty history, not an error.
func (s *Service) History(ctx context.Context, documentNumber string) (*EmployeeHistory, error) {
	emp, err := s.employees.FindByDocumentNumber(ctx, documentNumber)
	if err != nil {
		return nil, err
	}
	reports, err := s.store.ListByEmployee(ctx, emp.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list employee reports")
	}
	if reports == nil {
		reports = []*WithSubmitter{}
	}
	return &EmployeeHistory{Employee: emp, Reports: reports}, nil
}
