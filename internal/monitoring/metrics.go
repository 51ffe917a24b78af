// Package monitoring exposes Prometheus metrics for the intake engine.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// IntakeRequests counts generator calls by mode (basic|enhanced) and
	// outcome (ok|invalid|error).
	IntakeRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_requests_total",
			Help: "Total number of smart question generation requests",
		},
		[]string{"mode", "outcome"},
	)

	// QuestionsSuppressed counts suppressed questions by id.
	QuestionsSuppressed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_questions_suppressed_total",
			Help: "Total number of questions removed by suppression",
		},
		[]string{"question_id"},
	)

	// DerivationFailures counts enhanced-path failures that degraded to the
	// basic path, by stage.
	DerivationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_derivation_failures_total",
			Help: "Total number of derivation failures recovered by degrading",
		},
		[]string{"stage"},
	)

	// WriteBackFailures counts swallowed score-record write-back failures.
	WriteBackFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_writeback_failures_total",
			Help: "Total number of failed score record write-backs",
		},
		[]string{"kind"},
	)

	// AnalyticsFailures counts swallowed analytics emission failures.
	AnalyticsFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_analytics_failures_total",
			Help: "Total number of analytics events that failed to emit",
		},
		[]string{"event"},
	)

	// ExpectationsLoads counts reads of the expectations backing store.
	ExpectationsLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_expectations_loads_total",
			Help: "Total number of expectations table loads from the backing store",
		},
		[]string{"result"},
	)

	// GenerateDuration observes end-to-end generation latency.
	GenerateDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "intake_generate_duration_seconds",
			Help:    "Duration of smart question generation in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"mode"},
	)
)
