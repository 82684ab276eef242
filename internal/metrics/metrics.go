package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Dispatch outcomes
const (
	DispatchSent    = "sent"
	DispatchFailed  = "failed"
	DispatchDropped = "dropped"
)

// Admission outcomes
const (
	AdmissionAdmitted           = "admitted"
	AdmissionScreeningNotPassed = "screening_not_passed"
	AdmissionAccountNotFound    = "account_not_found"
	AdmissionStaleTimestamp     = "stale_timestamp"
)

// Metrics holds the Prometheus collectors of the account service. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	AccountsCreated       prometheus.Counter
	ScreeningDispatches   *prometheus.CounterVec
	ScreeningCallbacks    *prometheus.CounterVec
	TransactionAdmissions *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		AccountsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "account_service_accounts_created_total",
			Help: "Total number of accounts created",
		}),
		ScreeningDispatches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "account_service_screening_dispatches_total",
			Help: "Outbound background security check calls by outcome",
		}, []string{"outcome"}),
		ScreeningCallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "account_service_screening_callbacks_total",
			Help: "Inbound screening callbacks by verification outcome",
		}, []string{"outcome"}),
		TransactionAdmissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "account_service_transaction_admissions_total",
			Help: "Transaction admission decisions by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) IncAccountsCreated() {
	if m == nil {
		return
	}
	m.AccountsCreated.Inc()
}

func (m *Metrics) IncDispatch(outcome string) {
	if m == nil {
		return
	}
	m.ScreeningDispatches.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncCallback(outcome string) {
	if m == nil {
		return
	}
	m.ScreeningCallbacks.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncAdmission(outcome string) {
	if m == nil {
		return
	}
	m.TransactionAdmissions.WithLabelValues(outcome).Inc()
}
