// Package metrics collects scheduling counters for the node-exporter textfile collector.
// The CLI is short lived, so metrics are written to a file at exit instead of served.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "guard_rota"

// Metrics holds the collectors for one CLI run. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	conflicts       *prometheus.CounterVec
	eligibility     prometheus.Histogram
	bulkItems       *prometheus.CounterVec
	applications    *prometheus.CounterVec
	operationTiming *prometheus.HistogramVec
}

// New creates a Metrics with its own registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		conflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conflicts_total",
			Help:      "Conflicts found when validating assignments, by type and severity.",
		}, []string{"type", "severity"}),
		eligibility: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "eligibility_score",
			Help:      "Eligibility scores computed for guard and shift pairs.",
			Buckets:   []float64{10, 20, 30, 40, 50, 60, 70, 80, 85, 90, 100},
		}),
		bulkItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bulk_items_total",
			Help:      "Shifts processed by bulk operations, by operation and outcome.",
		}, []string{"operation", "outcome"}),
		applications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "application_transitions_total",
			Help:      "Application status changes, by resulting status.",
		}, []string{"status"}),
		operationTiming: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of service operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}

	m.registry.MustRegister(m.conflicts, m.eligibility, m.bulkItems, m.applications, m.operationTiming)
	return m
}

// ObserveConflict counts a single conflict
func (m *Metrics) ObserveConflict(conflictType, severity string) {
	if m == nil {
		return
	}
	m.conflicts.WithLabelValues(conflictType, severity).Inc()
}

// ObserveEligibility records an eligibility score
func (m *Metrics) ObserveEligibility(score float64) {
	if m == nil {
		return
	}
	m.eligibility.Observe(score)
}

// ObserveBulk counts the succeeded and failed items of a bulk operation
func (m *Metrics) ObserveBulk(operation string, succeeded, failed int) {
	if m == nil {
		return
	}
	m.bulkItems.WithLabelValues(operation, "succeeded").Add(float64(succeeded))
	m.bulkItems.WithLabelValues(operation, "failed").Add(float64(failed))
}

// ObserveApplication counts an application moving to status
func (m *Metrics) ObserveApplication(status string) {
	if m == nil {
		return
	}
	m.applications.WithLabelValues(status).Inc()
}

// Time returns a func that records the elapsed time of operation when called
func (m *Metrics) Time(operation string) func() {
	if m == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		m.operationTiming.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}

// WriteToTextfile writes every collected metric to path in the text exposition format.
// The file is written atomically so node-exporter never reads a partial file.
func (m *Metrics) WriteToTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
