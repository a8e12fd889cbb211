package sink

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gridsentry/upswatch/core/model"
)

// PromSink exposes the latest per-unit prediction as Prometheus gauges and
// counts raised alerts.
type PromSink struct {
	probability *prometheus.GaugeVec
	confidence  *prometheus.GaugeVec
	status      *prometheus.GaugeVec
	alerts      *prometheus.CounterVec
}

// NewPromSink registers prediction metrics on the default Prometheus
// registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	probability := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ups_failure_probability",
		Help: "Latest predicted failure probability per unit",
	}, []string{"unit_id"})
	confidence := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ups_prediction_confidence",
		Help: "Latest prediction confidence per unit",
	}, []string{"unit_id"})
	status := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ups_unit_status",
		Help: "Latest unit status: 0 healthy, 1 at_risk, 2 critical",
	}, []string{"unit_id"})
	alerts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ups_alerts_total",
		Help: "Alerts raised, by severity",
	}, []string{"severity"})

	if err := reg.Register(probability); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			probability = are.ExistingCollector.(*prometheus.GaugeVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(confidence); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			confidence = are.ExistingCollector.(*prometheus.GaugeVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(status); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			status = are.ExistingCollector.(*prometheus.GaugeVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(alerts); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			alerts = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}

	return &PromSink{probability: probability, confidence: confidence, status: status, alerts: alerts}, nil
}

func statusValue(s model.Status) float64 {
	switch s {
	case model.StatusCritical:
		return 2
	case model.StatusAtRisk:
		return 1
	default:
		return 0
	}
}

// Save sets the per-unit gauges.
func (s *PromSink) Save(_ context.Context, p model.Prediction) error {
	s.probability.WithLabelValues(p.UnitID).Set(p.FailureProbability)
	s.confidence.WithLabelValues(p.UnitID).Set(p.Confidence)
	s.status.WithLabelValues(p.UnitID).Set(statusValue(p.Status))
	return nil
}

// RaiseAlert counts the alert.
func (s *PromSink) RaiseAlert(_ context.Context, a model.Alert) error {
	s.alerts.WithLabelValues(string(a.Severity)).Inc()
	return nil
}
