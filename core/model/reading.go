package model

import (
	"math"
	"time"
)

// Reading is one telemetry snapshot of a UPS unit. Immutable once captured.
type Reading struct {
	UnitID string `json:"unit_id"`
	// Name is the unit's operator-facing label. Optional; alerts and
	// reports fall back to the unit id when it is empty.
	Name      string    `json:"name,omitempty"`
	Timestamp time.Time `json:"timestamp"`

	PowerInput   float64 `json:"power_input"`   // W drawn from mains
	PowerOutput  float64 `json:"power_output"`  // W delivered to the load
	BatteryLevel float64 `json:"battery_level"` // percent
	Temperature  float64 `json:"temperature"`   // degrees Celsius
	Load         float64 `json:"load"`          // percent of rated capacity, may exceed 100

	Efficiency    float64 `json:"efficiency"`     // percent
	VoltageInput  float64 `json:"voltage_input"`  // V
	VoltageOutput float64 `json:"voltage_output"` // V
	Frequency     float64 `json:"frequency"`      // Hz
	Capacity      float64 `json:"capacity"`       // VA rating
	CriticalLoad  float64 `json:"critical_load"`  // VA reserved for critical equipment

	Uptime float64 `json:"uptime"` // percent over the reporting window

	// FailureRisk is the history risk score carried with the snapshot,
	// written back by the previous evaluation cycle. Zero for a unit with
	// no history.
	FailureRisk float64 `json:"failure_risk"`
}

// PowerImbalance returns the absolute difference between input and output
// power in watts.
func (r Reading) PowerImbalance() float64 {
	return math.Abs(r.PowerInput - r.PowerOutput)
}
