package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	UsersRegistered  prometheus.Counter
	ReportsCreated   prometheus.Counter
	EmployeesCreated prometheus.Counter
	EmployeeSearches *prometheus.CounterVec
	EvidenceUploads  prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		UsersRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "workcheck_users_registered_total",
			Help: "Total number of registered users",
		}),
		ReportsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "workcheck_reports_created_total",
			Help: "Total number of reports appended to the ledger",
		}),
		EmployeesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "workcheck_employees_created_total",
			Help: "Total number of employee rows created by resolve-or-create",
		}),
		EmployeeSearches: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "workcheck_employee_searches_total",
			Help: "Employee directory searches by outcome",
		}, []string{"outcome"}),
		EvidenceUploads: promauto.NewCounter(prometheus.CounterOpts{
			Name: "workcheck_evidence_uploads_total",
			Help: "Total number of evidence files stored",
		}),
	}
}

// The increment helpers are nil-safe so wiring metrics stays optional in
// tests and local runs.

func (m *Metrics) IncrementUsersRegistered() {
	if m != nil {
		m.UsersRegistered.Inc()
	}
}

func (m *Metrics) IncrementReportsCreated() {
	if m != nil {
		m.ReportsCreated.Inc()
	}
}

func (m *Metrics) IncrementEmployeesCreated() {
	if m != nil {
		m.EmployeesCreated.Inc()
	}
}

func (m *Metrics) IncrementEvidenceUploads() {
	if m != nil {
		m.EvidenceUploads.Inc()
	}
}

// IncrementSearch records one search with its outcome ("found", "not_found"
// or "denied").
func (m *Metrics) IncrementSearch(outcome string) {
	if m != nil {
		m.EmployeeSearches.WithLabelValues(outcome).Inc()
	}
}
