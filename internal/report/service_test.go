package report_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"workcheck/internal/employee"
	"workcheck/internal/evidence"
	"workcheck/internal/report"
	id "workcheck/pkg/domain"
	dErrors "workcheck/pkg/domain-errors"
	"workcheck/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	employees *employee.InMemoryStore
	store     *report.InMemoryStore
	evidence  *evidence.InMemoryStore
	service   *report.Service

	userID     id.UserID
	submitters map[id.UserID]*report.Submitter
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.employees = employee.NewInMemoryStore()
	s.evidence = evidence.NewInMemoryStore()

	s.userID = id.UserID(uuid.New())
	s.submitters = map[id.UserID]*report.Submitter{
		s.userID: {
			ID:             s.userID,
			Email:          "hr@acme.test",
			FirstName:      "Diana",
			LastName:       "Torres",
			DocumentNumber: "900123456",
		},
	}
	submitters := report.SubmitterSourceFunc(func(_ context.Context, userID id.UserID) (*report.Submitter, error) {
		sub, ok := s.submitters[userID]
		if !ok {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return sub, nil
	})

	s.store = report.NewInMemoryStore(submitters, s.employees)
	s.service = report.NewService(s.store, employee.NewService(s.employees), s.evidence)
}

func validInput() report.SubmitInput {
	return report.SubmitInput{
		DocumentNumber: "12345",
		FirstName:      "Laura",
		LastName:       "Mendoza",
		Industry:       "construction",
		Description:    "abandoned the site mid-contract",
		IncidentDate:   "2025-11-03",
		City:           "Bogotá",
	}
}

func (s *ServiceSuite) TestSubmit_CreatesEmployeeOnFirstSighting() {
	result, err := s.service.Submit(context.Background(), s.userID, validInput())
	s.Require().NoError(err)

	s.True(result.EmployeeCreated)
	s.Equal("12345", result.Employee.DocumentNumber)
	s.Equal(result.Employee.ID, result.Report.EmployeeID)
	s.Equal(s.userID, result.Report.UserID)
	s.Equal(report.StatusActive, result.Report.Status)
	s.Equal("2025-11-03", result.Report.IncidentDate.Format("2006-01-02"))
	s.Empty(result.Report.EvidenceURL)
}

func (s *ServiceSuite) TestSubmit_ReusesExistingEmployee() {
	ctx := context.Background()

	first, err := s.service.Submit(ctx, s.userID, validInput())
	s.Require().NoError(err)

	input := validInput()
	input.FirstName = "Laura María"
	input.Description = "second incident, different site"
	second, err := s.service.Submit(ctx, s.userID, input)
	s.Require().NoError(err)

	s.False(second.EmployeeCreated)
	s.Equal(first.Employee.ID, second.Employee.ID)
	s.Equal("Laura", second.Employee.FirstName, "first-submitted record stays canonical")
	s.NotEqual(first.Report.ID, second.Report.ID)
}

func (s *ServiceSuite) TestSubmit_ValidatesFields() {
	ctx := context.Background()

	cases := []struct {
		name    string
		mutate  func(*report.SubmitInput)
		message string
	}{
		{"missing description", func(in *report.SubmitInput) { in.Description = "" }, "description is required"},
		{"missing city", func(in *report.SubmitInput) { in.City = "" }, "city is required"},
		{"missing incident date", func(in *report.SubmitInput) { in.IncidentDate = "" }, "incidentDate is required"},
		{"malformed incident date", func(in *report.SubmitInput) { in.IncidentDate = "03/11/2025" }, "incidentDate must be formatted as YYYY-MM-DD"},
		{"missing document number", func(in *report.SubmitInput) { in.DocumentNumber = "" }, "documentNumber is required"},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			input := validInput()
			tc.mutate(&input)
			_, err := s.service.Submit(ctx, s.userID, input)
			s.Require().Error(err)
			s.True(dErrors.Is(err, dErrors.CodeValidation), "expected validation error, got %v", err)
			s.Contains(err.Error(), tc.message)
		})
	}
}

func (s *ServiceSuite) TestSubmit_RejectsAnonymous() {
	_, err := s.service.Submit(context.Background(), id.UserID{}, validInput())
	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeUnauthorized))
}

func (s *ServiceSuite) TestSubmit_StoresEvidenceBeforeAppend() {
	input := validInput()
	input.Evidence = strings.NewReader("photo of the site")
	input.EvidenceFilename = "site.jpg"

	result, err := s.service.Submit(context.Background(), s.userID, input)
	s.Require().NoError(err)

	s.True(strings.HasPrefix(result.Report.EvidenceURL, "/uploads/"))
	data, ok := s.evidence.Get(result.Report.EvidenceURL)
	s.Require().True(ok)
	s.Equal("photo of the site", string(data))
}

func (s *ServiceSuite) TestSubmit_AbortsWhenEvidenceStorageFails() {
	s.evidence.FailNext = dErrors.New(dErrors.CodeUnavailable, "disk full")

	input := validInput()
	input.Evidence = strings.NewReader("proof")
	input.EvidenceFilename = "proof.pdf"

	_, err := s.service.Submit(context.Background(), s.userID, input)
	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeUnavailable))

	details, listErr := s.service.ListAll(context.Background())
	s.Require().NoError(listErr)
	s.Empty(details, "no report may be recorded when its evidence was lost")
}

func (s *ServiceSuite) TestSubmit_RejectsUnknownSubmitter() {
	_, err := s.service.Submit(context.Background(), id.UserID(uuid.New()), validInput())
	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeInvariantViolation), "expected invariant violation, got %v", err)
}

func (s *ServiceSuite) TestSubmit_UsesRequestTime() {
	at := time.Date(2025, 11, 5, 9, 30, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), at)

	result, err := s.service.Submit(ctx, s.userID, validInput())
	s.Require().NoError(err)
	s.Equal(at, result.Report.CreatedAt)
}

func (s *ServiceSuite) TestListAll_NewestFirstWithJoins() {
	ctx := context.Background()

	first, err := s.service.Submit(requestcontext.WithTime(ctx, time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)), s.userID, validInput())
	s.Require().NoError(err)

	input := validInput()
	input.DocumentNumber = "67890"
	input.FirstName = "Carlos"
	second, err := s.service.Submit(requestcontext.WithTime(ctx, time.Date(2025, 11, 2, 0, 0, 0, 0, time.UTC)), s.userID, input)
	s.Require().NoError(err)

	details, err := s.service.ListAll(ctx)
	s.Require().NoError(err)
	s.Require().Len(details, 2)

	s.Equal(second.Report.ID, details[0].Report.ID)
	s.Equal(first.Report.ID, details[1].Report.ID)
	s.Equal("hr@acme.test", details[0].Submitter.Email)
	s.Equal("Carlos", details[0].Employee.FirstName)
}

func (s *ServiceSuite) TestSearchEmployee_CountsReports() {
	ctx := context.Background()

	_, err := s.service.Submit(ctx, s.userID, validInput())
	s.Require().NoError(err)
	_, err = s.service.Submit(ctx, s.userID, validInput())
	s.Require().NoError(err)

	emp, count, err := s.service.SearchEmployee(ctx, "12345")
	s.Require().NoError(err)
	s.Equal("12345", emp.DocumentNumber)
	s.Equal(2, count)
}

func (s *ServiceSuite) TestSearchEmployee_UnknownIsNotFound() {
	_, _, err := s.service.SearchEmployee(context.Background(), "00000")
	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestHistory_OldestFirst() {
	ctx := context.Background()

	first, err := s.service.Submit(requestcontext.WithTime(ctx, time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)), s.userID, validInput())
	s.Require().NoError(err)
	second, err := s.service.Submit(requestcontext.WithTime(ctx, time.Date(2025, 11, 2, 0, 0, 0, 0, time.UTC)), s.userID, validInput())
	s.Require().NoError(err)

	history, err := s.service.History(ctx, "12345")
	s.Require().NoError(err)
	s.Require().Len(history.Reports, 2)
	s.Equal(first.Report.ID, history.Reports[0].Report.ID)
	s.Equal(second.Report.ID, history.Reports[1].Report.ID)
	s.Equal("Diana", history.Reports[0].Submitter.FirstName)
	s.Equal("Torres", history.Reports[0].Submitter.LastName)
	s.Equal("900123456", history.Reports[0].Submitter.DocumentNumber)
	s.Equal("hr@acme.test", history.Reports[0].Submitter.Email)
}

func (s *ServiceSuite) TestHistory_KnownEmployeeWithoutReportsIsEmptyNotError() {
	ctx := context.Background()

	_, _, err := employee.NewService(s.employees).Resolve(ctx, employee.ResolveInput{
		DocumentNumber: "55555",
		FirstName:      "Ana",
		LastName:       "Ruiz",
		City:           "Medellín",
	})
	s.Require().NoError(err)

	history, err := s.service.History(ctx, "55555")
	s.Require().NoError(err)
	s.NotNil(history.Reports)
	s.Empty(history.Reports)
}

// countingTxRunner runs fn directly but records each invocation.
type countingTxRunner struct {
	calls int
}

func (r *countingTxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	r.calls++
	return fn(ctx)
}

func (s *ServiceSuite) TestSubmit_RunsWritesInOneTransaction() {
	runner := &countingTxRunner{}
	svc := report.NewService(s.store, employee.NewService(s.employees), s.evidence,
		report.WithTxRunner(runner),
	)

	result, err := svc.Submit(context.Background(), s.userID, validInput())
	s.Require().NoError(err)

	s.Equal(1, runner.calls, "resolve and append share one transaction scope")
	s.True(result.EmployeeCreated)

	details, err := svc.ListAll(context.Background())
	s.Require().NoError(err)
	s.Len(details, 1)
}

func (s *ServiceSuite) TestSubmit_ValidationFailsBeforeTransactionStarts() {
	runner := &countingTxRunner{}
	svc := report.NewService(s.store, employee.NewService(s.employees), s.evidence,
		report.WithTxRunner(runner),
	)

	input := validInput()
	input.Description = ""
	_, err := svc.Submit(context.Background(), s.userID, input)
	s.Require().Error(err)
	s.Zero(runner.calls)
}

func (s *ServiceSuite) TestDirectory_ListsEveryEmployeeWithReports() {
	ctx := context.Background()

	_, err := s.service.Submit(requestcontext.WithTime(ctx, time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)), s.userID, validInput())
	s.Require().NoError(err)

	_, _, err = employee.NewService(s.employees).Resolve(ctx, employee.ResolveInput{
		DocumentNumber: "55555",
		FirstName:      "Ana",
		LastName:       "Ruiz",
		City:           "Medellín",
	})
	s.Require().NoError(err)

	entries, err := s.service.Directory(ctx)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)

	byDocument := map[string]int{}
	for _, entry := range entries {
		byDocument[entry.Employee.DocumentNumber] = len(entry.Reports)
	}
	s.Equal(1, byDocument["12345"])
	s.Equal(0, byDocument["55555"])

	for _, entry := range entries {
		s.NotNil(entry.Reports, "employees without reports carry an empty list, not null")
	}
}

func (s *ServiceSuite) TestHistory_UnknownIsNotFound() {
	_, err := s.service.History(context.Background(), "00000")
	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeNotFound))
}
