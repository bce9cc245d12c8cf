package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Engine aggregates the competition engine's Prometheus counters.
type Engine struct {
	AttemptsAllowed       prometheus.Counter
	AttemptsDenied        *prometheus.CounterVec
	SubmissionsScored     prometheus.Counter
	SuspiciousSubmissions prometheus.Counter
	RankingRuns           prometheus.Counter
	RowsRanked            prometheus.Counter
	VouchersIssued        prometheus.Counter
}

// NewEngine registers engine counters on the given registerer.
func NewEngine(reg prometheus.Registerer) *Engine {
	factory := promauto.With(reg)
	return &Engine{
		AttemptsAllowed: factory.NewCounter(prometheus.CounterOpts{
			Name: "quiz_attempts_allowed_total",
			Help: "Attempts that passed the daily gate.",
		}),
		AttemptsDenied: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "quiz_attempts_denied_total",
			Help: "Attempts denied by the daily gate, by reason.",
		}, []string{"reason"}),
		SubmissionsScored: factory.NewCounter(prometheus.CounterOpts{
			Name: "quiz_submissions_scored_total",
			Help: "Completed attempts scored and persisted.",
		}),
		SuspiciousSubmissions: factory.NewCounter(prometheus.CounterOpts{
			Name: "quiz_submissions_suspicious_total",
			Help: "Submissions with out-of-range elapsed time, clamped and flagged.",
		}),
		RankingRuns: factory.NewCounter(prometheus.CounterOpts{
			Name: "quiz_ranking_runs_total",
			Help: "Completed ranking calculator runs.",
		}),
		RowsRanked: factory.NewCounter(prometheus.CounterOpts{
			Name: "quiz_rows_ranked_total",
			Help: "Attempt results assigned a rank.",
		}),
		VouchersIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "quiz_vouchers_issued_total",
			Help: "New consolation vouchers created.",
		}),
	}
}

// NewEngineForTest returns counters on a throwaway registry.
func NewEngineForTest() *Engine {
	return NewEngine(prometheus.NewRegistry())
}
