// Package severity turns a failure probability and diagnostic reasons into
// the discrete unit status. Rule-based reasons and the model probability are
// independent signals: a critical reason always wins, whatever the model
// says, because the band rules encode domain knowledge the model may not
// have learned.
package severity

import (
	"fmt"

	"github.com/gridsentry/upswatch/core/model"
)

// Config holds the probability cutoffs separating statuses.
type Config struct {
	CriticalProbability float64 `json:"critical_probability"`
	AtRiskProbability   float64 `json:"at_risk_probability"`
}

// SetDefaults fills unset cutoffs with the standard policy values.
func (c *Config) SetDefaults() {
	if c.CriticalProbability == 0 {
		c.CriticalProbability = 0.7
	}
	if c.AtRiskProbability == 0 {
		c.AtRiskProbability = 0.3
	}
}

// Validate checks cutoff ordering and range.
func (c Config) Validate() error {
	if c.CriticalProbability <= 0 || c.CriticalProbability > 1 {
		return fmt.Errorf("critical_probability must be in (0,1], got %v", c.CriticalProbability)
	}
	if c.AtRiskProbability <= 0 || c.AtRiskProbability > 1 {
		return fmt.Errorf("at_risk_probability must be in (0,1], got %v", c.AtRiskProbability)
	}
	if c.AtRiskProbability >= c.CriticalProbability {
		return fmt.Errorf("at_risk_probability %v must be below critical_probability %v",
			c.AtRiskProbability, c.CriticalProbability)
	}
	return nil
}

// Classifier applies the status policy. It is stateless and safe for
// concurrent use.
type Classifier struct {
	cfg Config
}

// New builds a classifier; zero config fields fall back to defaults.
func New(cfg Config) Classifier {
	cfg.SetDefaults()
	return Classifier{cfg: cfg}
}

// Classify returns the unit status for one evaluation. Any critical reason
// forces critical regardless of probability; otherwise the probability is
// compared against the configured cutoffs.
func (c Classifier) Classify(probability float64, reasons []model.Reason) model.Status {
	if model.AnyCritical(reasons) {
		return model.StatusCritical
	}
	switch {
	case probability >= c.cfg.CriticalProbability:
		return model.StatusCritical
	case probability >= c.cfg.AtRiskProbability:
		return model.StatusAtRisk
	default:
		return model.StatusHealthy
	}
}

// RiskCategory maps a status to the risk bucket carried on predictions and
// alerts.
func RiskCategory(s model.Status) string {
	switch s {
	case model.StatusCritical:
		return "high"
	case model.StatusAtRisk:
		return "medium"
	default:
		return "low"
	}
}

// Timeframe maps a status to the horizon within which failure is expected.
func Timeframe(s model.Status) string {
	switch s {
	case model.StatusCritical:
		return "6_hours"
	case model.StatusAtRisk:
		return "12_hours"
	default:
		return "24_hours"
	}
}

// RecommendedAction maps a status to the operator guidance attached to
// alerts and reports.
func RecommendedAction(s model.Status) string {
	switch s {
	case model.StatusCritical:
		return "Immediate inspection required: verify battery health and cooling, prepare failover."
	case model.StatusAtRisk:
		return "Schedule maintenance within the prediction window and monitor closely."
	default:
		return "Continue regular monitoring and maintenance."
	}
}
