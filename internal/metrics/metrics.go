// Package metrics holds the Prometheus collectors for the newsjack service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	actionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsjack_actions_total",
			Help: "Total number of action link requests by action and outcome.",
		},
		[]string{"action", "outcome"},
	)

	stepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "newsjack_pipeline_step_duration_seconds",
			Help:    "Duration of generation pipeline steps.",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 20, 40, 80},
		},
		[]string{"step"},
	)

	stepFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsjack_pipeline_step_failures_total",
			Help: "Total number of failed generation pipeline steps.",
		},
		[]string{"step"},
	)

	qualityResultsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsjack_quality_results_total",
			Help: "Total number of quality check results by verdict.",
		},
		[]string{"result"},
	)

	revalidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsjack_revalidations_total",
			Help: "Total number of site cache revalidation requests by status.",
		},
		[]string{"status"},
	)
)

// Pipeline step labels.
const (
	StepScrape  = "scrape"
	StepContext = "context"
	StepDraft   = "draft"
	StepQuality = "quality"
	StepPersist = "persist"
	StepNotify  = "notify"
)

// Quality verdict labels.
const (
	QualityPass     = "pass"
	QualityFail     = "fail"
	QualityFailOpen = "fail_open"
)

// RecordAction counts a handled action link.
func RecordAction(action, outcome string) {
	actionsTotal.WithLabelValues(action, outcome).Inc()
}

// ObserveStep records a step's duration and whether it failed.
func ObserveStep(step string, started time.Time, err error) {
	stepDuration.WithLabelValues(step).Observe(time.Since(started).Seconds())
	if err != nil {
		stepFailuresTotal.WithLabelValues(step).Inc()
	}
}

// RecordQuality counts a quality verdict.
func RecordQuality(result string) {
	qualityResultsTotal.WithLabelValues(result).Inc()
}

// RecordRevalidation counts a revalidation attempt.
func RecordRevalidation(err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	revalidationsTotal.WithLabelValues(status).Inc()
}
