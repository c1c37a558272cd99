package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fee estimate result labels.
const (
	EstimateOK       = "ok"
	EstimateFallback = "fallback"
	EstimateStale    = "stale"
	EstimateError    = "error"
)

// Submission outcome labels.
const (
	OutcomeConfirmed    = "confirmed"
	OutcomeReverted     = "reverted"
	OutcomeUserRejected = "user_rejected"
	OutcomeNetworkError = "network_error"
)

var (
	// Submissions counts terminal submission outcomes per operation kind.
	Submissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "txlifecycle_submissions_total",
		Help: "Terminal submission outcomes by operation kind.",
	}, []string{"kind", "outcome"})

	// FeeEstimates counts fee-estimation results.
	FeeEstimates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "txlifecycle_fee_estimates_total",
		Help: "Fee estimation results.",
	}, []string{"result"})

	// ReconciliationAttempts counts every write attempt against the record
	// store, split by endpoint and result.
	ReconciliationAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "txlifecycle_reconciliation_attempts_total",
		Help: "Record-store write attempts by endpoint and result.",
	}, []string{"endpoint", "result"})

	// ReconciliationOutcomes counts terminal reconciliation outcomes.
	ReconciliationOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "txlifecycle_reconciliation_outcomes_total",
		Help: "Terminal reconciliation outcomes.",
	}, []string{"result"})
)
