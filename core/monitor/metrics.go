package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	cyclesTotal      prometheus.Counter
	ticksDropped     prometheus.Counter
	unitFailures     prometheus.Counter
	cycleDuration    prometheus.Histogram
	unitsEvaluated   prometheus.Gauge
	predictionsTotal *prometheus.CounterVec
)

// newCollectors creates new metric collectors.
func newCollectors() (prometheus.Counter, prometheus.Counter, prometheus.Counter, prometheus.Histogram, prometheus.Gauge, *prometheus.CounterVec) {
	cycles := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "monitor_cycles_total",
			Help: "Number of completed evaluation cycles",
		},
	)
	dropped := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "monitor_ticks_dropped_total",
			Help: "Number of scheduler ticks dropped because a cycle was still running",
		},
	)
	failures := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "monitor_unit_failures_total",
			Help: "Number of per-unit evaluation or persistence failures",
		},
	)
	duration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "monitor_cycle_duration_seconds",
			Help:    "Wall time of one evaluation cycle",
			Buckets: prometheus.DefBuckets,
		},
	)
	units := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "monitor_cycle_units",
			Help: "Units evaluated in the last cycle",
		},
	)
	predictions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "monitor_predictions_total",
			Help: "Predictions produced, by resulting status",
		},
		[]string{"status"},
	)
	return cycles, dropped, failures, duration, units, predictions
}

func init() {
	cyclesTotal, ticksDropped, unitFailures, cycleDuration, unitsEvaluated, predictionsTotal = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers monitor metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(cyclesTotal, ticksDropped, unitFailures, cycleDuration, unitsEvaluated, predictionsTotal)
}

// ResetMetrics reinitializes metric collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	cyclesTotal, ticksDropped, unitFailures, cycleDuration, unitsEvaluated, predictionsTotal = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
