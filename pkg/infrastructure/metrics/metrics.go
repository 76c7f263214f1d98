package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Collector records planning and substitution activity on its own registry
type Collector struct {
	registry *prometheus.Registry

	planningRuns     *prometheus.CounterVec
	planningDuration prometheus.Histogram
	planLines        prometheus.Gauge
	urgentLines      prometheus.Gauge
	replacements     *prometheus.CounterVec
	undos            *prometheus.CounterVec
	rowsRewritten    *prometheus.CounterVec
}

// NewCollector creates a collector with every metric registered
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		planningRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mrp_planning_runs_total",
				Help: "Planning runs by outcome",
			},
			[]string{"outcome"},
		),
		planningDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "mrp_planning_duration_seconds",
				Help:    "Time taken by a planning run",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
			},
		),
		planLines: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "mrp_plan_lines",
				Help: "Item codes in the most recent plan",
			},
		),
		urgentLines: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "mrp_plan_urgent_lines",
				Help: "Urgent item codes in the most recent plan",
			},
		),
		replacements: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mrp_replacements_total",
				Help: "Item code replacements by mode and outcome",
			},
			[]string{"mode", "outcome"},
		),
		undos: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mrp_undos_total",
				Help: "Replacement undos by outcome",
			},
			[]string{"outcome"},
		),
		rowsRewritten: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mrp_rows_rewritten_total",
				Help: "Rows re-pointed by replacements, per table",
			},
			[]string{"table"},
		),
	}

	registry.MustRegister(
		c.planningRuns,
		c.planningDuration,
		c.planLines,
		c.urgentLines,
		c.replacements,
		c.undos,
		c.rowsRewritten,
	)

	return c
}

// Registry exposes the registry for the /metrics handler
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObservePlanning records one planning run
func (c *Collector) ObservePlanning(duration time.Duration, lines, urgent int, err error) {
	if err != nil {
		c.planningRuns.WithLabelValues(OutcomeFailure).Inc()
		return
	}
	c.planningRuns.WithLabelValues(OutcomeSuccess).Inc()
	c.planningDuration.Observe(duration.Seconds())
	c.planLines.Set(float64(lines))
	c.urgentLines.Set(float64(urgent))
}

// ObserveReplacement records one replacement; mode is "single" or "bulk"
func (c *Collector) ObserveReplacement(mode string, err error) {
	c.replacements.WithLabelValues(mode, outcome(err)).Inc()
}

// ObserveRowsRewritten adds to the per-table rewrite counter
func (c *Collector) ObserveRowsRewritten(table string, n int64) {
	if n > 0 {
		c.rowsRewritten.WithLabelValues(table).Add(float64(n))
	}
}

// ObserveUndo records one undo
func (c *Collector) ObserveUndo(err error) {
	c.undos.WithLabelValues(outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}
