// Package report aggregates one cycle's output into a fleet health summary.
// Building is pure; writing the report anywhere is the caller's concern.
package report

import (
	"sort"
	"time"

	"github.com/gridsentry/upswatch/core/model"
)

// Build computes the fleet health report for one completed cycle. topN caps
// the at-risk ranking; readings supply the fleet-wide telemetry averages.
func Build(predictions []model.Prediction, readings []model.Reading, topN int) model.HealthReport {
	rep := model.HealthReport{
		GeneratedAt: time.Now().UTC(),
		FleetSize:   len(readings),
	}
	for _, p := range predictions {
		switch p.Status {
		case model.StatusCritical:
			rep.Critical++
		case model.StatusAtRisk:
			rep.AtRisk++
		default:
			rep.Healthy++
		}
	}
	if len(readings) > 0 {
		var battery, temp, eff float64
		for _, r := range readings {
			battery += r.BatteryLevel
			temp += r.Temperature
			eff += r.Efficiency
		}
		n := float64(len(readings))
		rep.AvgBattery = battery / n
		rep.AvgTemperature = temp / n
		rep.AvgEfficiency = eff / n
	}
	rep.TopRisks = topRisks(predictions, topN)
	return rep
}

// topRisks ranks units by failure probability, keeping only those that are
// not healthy.
func topRisks(predictions []model.Prediction, n int) []model.RiskSummary {
	if n <= 0 {
		return nil
	}
	ranked := make([]model.Prediction, 0, len(predictions))
	for _, p := range predictions {
		if p.Status == model.StatusHealthy {
			continue
		}
		ranked = append(ranked, p)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].FailureProbability != ranked[j].FailureProbability {
			return ranked[i].FailureProbability > ranked[j].FailureProbability
		}
		return ranked[i].UnitID < ranked[j].UnitID
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	res := make([]model.RiskSummary, len(ranked))
	for i, p := range ranked {
		res[i] = model.RiskSummary{
			UnitID:             p.UnitID,
			UnitName:           p.UnitName,
			FailureProbability: p.FailureProbability,
			Status:             p.Status,
			LeadingReason:      p.LeadingReason(),
		}
	}
	return res
}
