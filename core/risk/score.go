// Package risk derives a unit's history risk score from its recent archived
// readings. The score feeds the last feature of the classifier vector and the
// fleet health report.
package risk

import "github.com/gridsentry/upswatch/core/model"

// Component weights and normalization spans. Each component maps its nominal
// value to 0 and its critical value to 1, clamped.
const (
	tempNominal = 28.0
	tempMax     = 45.0

	efficiencyNominal = 95.0
	efficiencyMin     = 80.0

	loadNominal = 70.0
	loadMax     = 95.0

	// A battery drop of this many points over the window maxes the drop
	// component.
	batteryDropSpan = 20.0
)

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Score summarises a unit's recent readings, newest first, into [0,1]. A unit
// with no history scores zero.
func Score(history []model.Reading) float64 {
	if len(history) == 0 {
		return 0
	}

	tMax := history[0].Temperature
	lMax := history[0].Load
	for _, h := range history[1:] {
		if h.Temperature > tMax {
			tMax = h.Temperature
		}
		if h.Load > lMax {
			lMax = h.Load
		}
	}

	tempComponent := clamp01((tMax - tempNominal) / (tempMax - tempNominal))

	newest := history[0]
	oldest := history[len(history)-1]
	levelComponent := 1 - clamp01(newest.BatteryLevel/100)
	drop := newest.BatteryLevel - oldest.BatteryLevel
	if drop < 0 {
		drop = -drop
	}
	dropComponent := clamp01(drop / batteryDropSpan)
	batteryComponent := 0.6*levelComponent + 0.4*dropComponent

	efficiencyComponent := clamp01((efficiencyNominal - newest.Efficiency) / (efficiencyNominal - efficiencyMin))

	loadComponent := clamp01((lMax - loadNominal) / (loadMax - loadNominal))

	return clamp01(0.3*tempComponent + 0.3*batteryComponent + 0.2*efficiencyComponent + 0.2*loadComponent)
}

// Level buckets a score into the coarse risk levels used by reports.
func Level(score float64) string {
	switch {
	case score > 0.7:
		return "high"
	case score > 0.4:
		return "medium"
	default:
		return "low"
	}
}
