package model

import "time"

// AlertTypePrediction marks alerts raised by the predictive engine, as
// opposed to threshold alerts raised directly from raw telemetry.
const AlertTypePrediction = "ml_prediction"

// Alert is the record handed to alerting sinks when a prediction turns
// critical.
type Alert struct {
	ID                string    `json:"id"`
	UnitID            string    `json:"unit_id"`
	UnitName          string    `json:"unit_name,omitempty"`
	Type              string    `json:"type"`
	Severity          Severity  `json:"severity"`
	Title             string    `json:"title"`
	Message           string    `json:"message"`
	RiskCategory      string    `json:"risk_category"`
	Timeframe         string    `json:"prediction_timeframe"`
	RecommendedAction string    `json:"recommended_action"`
	Confidence        float64   `json:"confidence"`
	CreatedAt         time.Time `json:"created_at"`
}

// HealthReport aggregates one cycle's predictions into a fleet summary.
type HealthReport struct {
	GeneratedAt    time.Time     `json:"generated_at"`
	FleetSize      int           `json:"fleet_size"`
	Healthy        int           `json:"healthy"`
	AtRisk         int           `json:"at_risk"`
	Critical       int           `json:"critical"`
	AvgBattery     float64       `json:"avg_battery_level"`
	AvgTemperature float64       `json:"avg_temperature"`
	AvgEfficiency  float64       `json:"avg_efficiency"`
	TopRisks       []RiskSummary `json:"top_risks"`
}

// RiskSummary names one unit in a health report's ranking.
type RiskSummary struct {
	UnitID             string  `json:"unit_id"`
	UnitName           string  `json:"unit_name,omitempty"`
	FailureProbability float64 `json:"failure_probability"`
	Status             Status  `json:"status"`
	LeadingReason      string  `json:"leading_reason"`
}
