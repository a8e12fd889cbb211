package model

import "time"

// Status is the discrete health state assigned to a unit by an evaluation.
type Status string

const (
	StatusHealthy  Status = "healthy"
	StatusAtRisk   Status = "at_risk"
	StatusCritical Status = "critical"
)

// Severity grades a single diagnostic reason.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Metric names the telemetry dimension a reason refers to.
type Metric string

const (
	MetricBattery     Metric = "battery"
	MetricTemperature Metric = "temperature"
	MetricPower       Metric = "power"
	MetricLoad        Metric = "load"
	MetricEfficiency  Metric = "efficiency"

	// MetricSystem tags the fallback reason emitted when no metric band
	// triggers.
	MetricSystem Metric = "system"
)

// Reason is one explanatory statement attached to a prediction. It is
// produced fresh each cycle from current readings, never diffed against
// prior cycles.
type Reason struct {
	Severity Severity `json:"severity"`
	Metric   Metric   `json:"metric"`
	Message  string   `json:"message"`
}

// AnyCritical reports whether at least one reason carries critical severity.
func AnyCritical(reasons []Reason) bool {
	for _, r := range reasons {
		if r.Severity == SeverityCritical {
			return true
		}
	}
	return false
}

// Prediction is the outcome of evaluating one unit in one cycle. Created
// once, never mutated; owned by the result sink once persisted.
type Prediction struct {
	ID                 string    `json:"id"`
	UnitID             string    `json:"unit_id"`
	UnitName           string    `json:"unit_name,omitempty"`
	Timestamp          time.Time `json:"timestamp"`
	FailureProbability float64   `json:"failure_probability"`
	Confidence         float64   `json:"confidence"`
	Status             Status    `json:"status"`
	Reasons            []Reason  `json:"reasons"`
	RiskCategory       string    `json:"risk_category"`
	Timeframe          string    `json:"prediction_timeframe"`
}

// DisplayName returns the unit's label, falling back to the unit id.
func (p Prediction) DisplayName() string {
	if p.UnitName != "" {
		return p.UnitName
	}
	return p.UnitID
}

// IsCritical reports whether the prediction demands an alert.
func (p Prediction) IsCritical() bool {
	return p.Status == StatusCritical
}

// LeadingReason returns the message of the first reason, or an empty string.
func (p Prediction) LeadingReason() string {
	if len(p.Reasons) == 0 {
		return ""
	}
	return p.Reasons[0].Message
}

// CycleRecord summarises one scheduler tick. It feeds liveness and
// backpressure decisions and is not persisted as domain data.
type CycleRecord struct {
	StartedAt      time.Time
	EndedAt        time.Time
	UnitsEvaluated int
	UnitsFailed    int
}

// Duration returns the wall time the cycle took.
func (c CycleRecord) Duration() time.Duration {
	return c.EndedAt.Sub(c.StartedAt)
}
