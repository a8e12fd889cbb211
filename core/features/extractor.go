// Package features maps raw readings onto the fixed-order numeric vector the
// failure classifier consumes. The field order is a versioned contract shared
// with the model artifact; a mismatch fails at model load, never silently.
package features

import (
	"fmt"
	"math"

	"github.com/gridsentry/upswatch/core/model"
)

// Count is the length of the feature vector.
const Count = 13

// SchemaVersion identifies the extraction contract. Model artifacts trained
// against a different version are refused at load.
const SchemaVersion = 1

// Order lists the feature names in extraction order. The classifier artifact
// must name exactly these features in exactly this order.
var Order = []string{
	"power_input",
	"power_output",
	"battery_level",
	"temperature",
	"efficiency",
	"load",
	"voltage_input",
	"voltage_output",
	"frequency",
	"capacity",
	"critical_load",
	"uptime",
	"failure_risk",
}

// Vector is a fixed-order numeric view of one reading.
type Vector [Count]float64

// Values returns the vector as a slice for linear algebra consumers.
func (v Vector) Values() []float64 {
	return v[:]
}

// ValidationError reports a reading field that cannot be turned into a
// feature. It is a per-unit, recoverable condition: the unit is skipped for
// the cycle.
type ValidationError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid reading: %s=%v %s", e.Field, e.Value, e.Reason)
}

// MissingField builds the validation error used by sources when a required
// payload field is absent.
func MissingField(field string) *ValidationError {
	return &ValidationError{Field: field, Reason: "missing"}
}

func rangeError(field string, value, min, max float64) *ValidationError {
	return &ValidationError{
		Field:  field,
		Value:  value,
		Reason: fmt.Sprintf("outside [%v, %v]", min, max),
	}
}

// Physically plausible bounds per feature, in extraction order.
var bounds = [Count]struct{ min, max float64 }{
	{0, 1e6},     // power_input W
	{0, 1e6},     // power_output W
	{0, 100},     // battery_level %
	{-40, 150},   // temperature degC
	{0, 100},     // efficiency %
	{0, 500},     // load %, may exceed 100
	{0, 1000},    // voltage_input V
	{0, 1000},    // voltage_output V
	{0, 100},     // frequency Hz
	{0, 1e6},     // capacity VA, exclusive at zero (see capacityIdx)
	{0, 1e6},     // critical_load VA
	{0, 100},     // uptime %
	{0, 1},       // failure_risk
}

// Extract converts a reading into the classifier's feature vector. It fails
// with a ValidationError when a field is NaN or outside its plausible range;
// nothing is defaulted.
func Extract(r model.Reading) (Vector, error) {
	values := [Count]float64{
		r.PowerInput,
		r.PowerOutput,
		r.BatteryLevel,
		r.Temperature,
		r.Efficiency,
		r.Load,
		r.VoltageInput,
		r.VoltageOutput,
		r.Frequency,
		r.Capacity,
		r.CriticalLoad,
		r.Uptime,
		r.FailureRisk,
	}
	var v Vector
	for i, val := range values {
		b := bounds[i]
		if math.IsNaN(val) || math.IsInf(val, 0) || val < b.min || val > b.max {
			return Vector{}, rangeError(Order[i], val, b.min, b.max)
		}
		if i == capacityIdx && val == 0 {
			return Vector{}, &ValidationError{Field: Order[i], Value: val, Reason: "must be positive"}
		}
		v[i] = val
	}
	return v, nil
}

// capacityIdx is the one feature with an exclusive lower bound: a zero-rated
// unit is invalid, any positive rating is in range.
const capacityIdx = 9
