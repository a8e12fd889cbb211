// Package alerts builds the records handed to alerting sinks when a
// prediction turns critical.
package alerts

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/gridsentry/upswatch/core/model"
	"github.com/gridsentry/upswatch/core/severity"
)

func severityFor(s model.Status) model.Severity {
	switch s {
	case model.StatusCritical:
		return model.SeverityCritical
	case model.StatusAtRisk:
		return model.SeverityWarning
	default:
		return model.SeverityInfo
	}
}

// Build constructs the alert record for a prediction. The alert timestamp is
// the prediction's own timestamp so one cycle reads the clock once.
func Build(p model.Prediction) model.Alert {
	msg := fmt.Sprintf("predicted failure probability %.1f%%", p.FailureProbability*100)
	if lead := p.LeadingReason(); lead != "" {
		msg += "; " + lead
	}
	return model.Alert{
		ID:                uuid.NewString(),
		UnitID:            p.UnitID,
		UnitName:          p.UnitName,
		Type:              model.AlertTypePrediction,
		Severity:          severityFor(p.Status),
		Title:             fmt.Sprintf("Failure risk on %s", p.DisplayName()),
		Message:           msg,
		RiskCategory:      p.RiskCategory,
		Timeframe:         p.Timeframe,
		RecommendedAction: severity.RecommendedAction(p.Status),
		Confidence:        p.Confidence,
		CreatedAt:         p.Timestamp,
	}
}
