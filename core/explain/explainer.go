// Package explain translates raw telemetry values into ranked, human-readable
// diagnostic reasons. Each monitored metric owns a descending ladder of
// threshold bands; the first band that matches wins for that metric, and a
// value exactly on a cutoff takes the more severe band.
package explain

import (
	"fmt"

	"github.com/gridsentry/upswatch/core/model"
)

// band is one interval of a metric's ladder. Bands are ordered from most to
// least severe so a reading cannot match a milder band once a stricter one
// holds.
type band struct {
	limit    float64
	severity model.Severity
	format   string
}

var batteryBands = []band{
	{20, model.SeverityCritical, "battery level critically low (%.1f%%), imminent failure risk"},
	{30, model.SeverityCritical, "battery level very low (%.1f%%), high failure risk"},
	{40, model.SeverityWarning, "battery level low (%.1f%%), moderate failure risk"},
}

var temperatureBands = []band{
	{50, model.SeverityCritical, "temperature critically high (%.1f°C), overheating imminent"},
	{45, model.SeverityWarning, "temperature high (%.1f°C), approaching critical threshold"},
	{40, model.SeverityInfo, "temperature elevated (%.1f°C)"},
}

var imbalanceBands = []band{
	{50, model.SeverityCritical, "severe power imbalance (%.0f W between input and output)"},
	{20, model.SeverityWarning, "power imbalance detected (%.0f W between input and output)"},
}

var loadBands = []band{
	{95, model.SeverityCritical, "load critically high (%.1f%%), overload imminent"},
	{90, model.SeverityWarning, "load very high (%.1f%%), approaching capacity"},
	{80, model.SeverityInfo, "load high (%.1f%%)"},
}

var efficiencyBands = []band{
	{80, model.SeverityCritical, "efficiency critically degraded (%.1f%%)"},
	{85, model.SeverityWarning, "efficiency reduced (%.1f%%)"},
}

const normalMessage = "operating within normal parameters, continue regular monitoring"

// matchLow walks a ladder where lower values are worse. Bands carry ascending
// limits; the first one at or above the value wins.
func matchLow(metric model.Metric, value float64, ladder []band) (model.Reason, bool) {
	for _, b := range ladder {
		if value <= b.limit {
			return reason(metric, b, value), true
		}
	}
	return model.Reason{}, false
}

// matchHigh walks a ladder where higher values are worse. Bands carry
// descending limits; the first one at or below the value wins.
func matchHigh(metric model.Metric, value float64, ladder []band) (model.Reason, bool) {
	for _, b := range ladder {
		if value >= b.limit {
			return reason(metric, b, value), true
		}
	}
	return model.Reason{}, false
}

func reason(metric model.Metric, b band, value float64) model.Reason {
	return model.Reason{
		Severity: b.severity,
		Metric:   metric,
		Message:  fmt.Sprintf(b.format, value),
	}
}

// Explain produces the ordered diagnostic reasons for one reading. It is a
// deterministic pure function: same reading, same output. The result is never
// empty and always lists metrics in the fixed priority order battery,
// temperature, power, load, efficiency.
func Explain(r model.Reading) []model.Reason {
	reasons := make([]model.Reason, 0, 5)
	if reason, ok := matchLow(model.MetricBattery, r.BatteryLevel, batteryBands); ok {
		reasons = append(reasons, reason)
	}
	if reason, ok := matchHigh(model.MetricTemperature, r.Temperature, temperatureBands); ok {
		reasons = append(reasons, reason)
	}
	// Imbalance is meaningless while either side reads zero, e.g. a unit on
	// battery or a sensor gap.
	if r.PowerInput > 0 && r.PowerOutput > 0 {
		if reason, ok := matchHigh(model.MetricPower, r.PowerImbalance(), imbalanceBands); ok {
			reasons = append(reasons, reason)
		}
	}
	if reason, ok := matchHigh(model.MetricLoad, r.Load, loadBands); ok {
		reasons = append(reasons, reason)
	}
	if reason, ok := matchLow(model.MetricEfficiency, r.Efficiency, efficiencyBands); ok {
		reasons = append(reasons, reason)
	}
	if len(reasons) == 0 {
		return []model.Reason{{
			Severity: model.SeverityInfo,
			Metric:   model.MetricSystem,
			Message:  normalMessage,
		}}
	}
	return reasons
}
