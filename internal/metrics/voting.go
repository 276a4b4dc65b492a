package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/emilythestrangee/qa-forum/backend/internal/models"
	"github.com/emilythestrangee/qa-forum/backend/internal/voting"
)

// VotingMetrics records voting service events. It implements voting.Hooks.
type VotingMetrics struct {
	Operations        *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	VotesApplied      *prometheus.CounterVec
	Conflicts         *prometheus.CounterVec
	Retries           *prometheus.CounterVec
}

var _ voting.Hooks = (*VotingMetrics)(nil)

// NewVotingMetrics creates and registers voting metrics on the given registry.
func NewVotingMetrics(reg prometheus.Registerer) *VotingMetrics {
	m := &VotingMetrics{
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "voting",
			Name:      "operations_total",
			Help:      "Total number of voting operations, by operation and result.",
		}, []string{"operation", "status"}),
		OperationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "voting",
			Name:      "operation_duration_seconds",
			Help:      "Duration of voting operations in seconds, retries included.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}, []string{"operation"}),
		VotesApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "voting",
			Name:      "votes_applied_total",
			Help:      "Total number of applied votes, by target kind and ledger operation.",
		}, []string{"target", "op"}),
		Conflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "voting",
			Name:      "conflicts_total",
			Help:      "Total number of transactions that lost a race.",
		}, []string{"operation"}),
		Retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "voting",
			Name:      "retries_total",
			Help:      "Total number of retried voting operations.",
		}, []string{"operation"}),
	}

	reg.MustRegister(m.Operations, m.OperationDuration, m.VotesApplied, m.Conflicts, m.Retries)
	return m
}

func (m *VotingMetrics) ObserveOperation(name, status string, dur time.Duration) {
	m.Operations.WithLabelValues(name, status).Inc()
	m.OperationDuration.WithLabelValues(name).Observe(dur.Seconds())
}

func (m *VotingMetrics) VoteApplied(kind models.TargetKind, op voting.LedgerOp) {
	m.VotesApplied.WithLabelValues(string(kind), string(op)).Inc()
}

func (m *VotingMetrics) IncConflict(name string) {
	m.Conflicts.WithLabelValues(name).Inc()
}

func (m *VotingMetrics) IncRetry(name string) {
	m.Retries.WithLabelValues(name).Inc()
}
