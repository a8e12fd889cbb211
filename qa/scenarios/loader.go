// Package scenarios runs YAML-defined fleet situations through the full
// evaluation pipeline and checks the resulting statuses and alerts. The
// scenario files double as living documentation of the status policy.
package scenarios

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gridsentry/upswatch/core/model"
)

// UnitDef describes one unit's telemetry snapshot. Fields left at zero fall
// back to nominal values so scenarios only spell out what they test.
type UnitDef struct {
	ID            string   `yaml:"id"`
	PowerInput    *float64 `yaml:"power_input,omitempty"`
	PowerOutput   *float64 `yaml:"power_output,omitempty"`
	BatteryLevel  *float64 `yaml:"battery_level,omitempty"`
	Temperature   *float64 `yaml:"temperature,omitempty"`
	Load          *float64 `yaml:"load,omitempty"`
	Efficiency    *float64 `yaml:"efficiency,omitempty"`
	VoltageInput  *float64 `yaml:"voltage_input,omitempty"`
	VoltageOutput *float64 `yaml:"voltage_output,omitempty"`
	Frequency     *float64 `yaml:"frequency,omitempty"`
	Capacity      *float64 `yaml:"capacity,omitempty"`
	CriticalLoad  *float64 `yaml:"critical_load,omitempty"`
	Uptime        *float64 `yaml:"uptime,omitempty"`
	FailureRisk   *float64 `yaml:"failure_risk,omitempty"`
}

func orDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

// ToModel materializes the reading with nominal defaults.
func (u UnitDef) ToModel(ts time.Time) model.Reading {
	return model.Reading{
		UnitID:        u.ID,
		Timestamp:     ts,
		PowerInput:    orDefault(u.PowerInput, 500),
		PowerOutput:   orDefault(u.PowerOutput, 490),
		BatteryLevel:  orDefault(u.BatteryLevel, 95),
		Temperature:   orDefault(u.Temperature, 26),
		Load:          orDefault(u.Load, 45),
		Efficiency:    orDefault(u.Efficiency, 96),
		VoltageInput:  orDefault(u.VoltageInput, 230),
		VoltageOutput: orDefault(u.VoltageOutput, 229),
		Frequency:     orDefault(u.Frequency, 50),
		Capacity:      orDefault(u.Capacity, 3000),
		CriticalLoad:  orDefault(u.CriticalLoad, 1200),
		Uptime:        orDefault(u.Uptime, 99.9),
		FailureRisk:   orDefault(u.FailureRisk, 0),
	}
}

// Expected is the outcome the scenario asserts.
type Expected struct {
	Statuses    map[string]string `yaml:"statuses"`
	Alerts      int               `yaml:"alerts"`
	FailedUnits int               `yaml:"failed_units,omitempty"`
}

// Scenario is one fleet situation fed through a single evaluation cycle.
type Scenario struct {
	Name             string    `yaml:"name"`
	Description      string    `yaml:"description,omitempty"`
	ModelProbability float64   `yaml:"model_probability"`
	Units            []UnitDef `yaml:"units"`
	Expected         Expected  `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}
