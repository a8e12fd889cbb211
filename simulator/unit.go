package simulator

import (
	"math/rand"
	"time"

	"github.com/gridsentry/upswatch/core/model"
)

// SimulatedUnit models one UPS with drifting telemetry. Healthy units hover
// around nominal values; degraded units run hotter, discharge faster and lose
// efficiency over time.
type SimulatedUnit struct {
	ID       string
	Name     string
	Degraded bool

	rng *rand.Rand

	battery    float64 // percent
	temp       float64 // degC
	efficiency float64 // percent
	load       float64 // percent
	capacity   float64 // VA
	uptime     float64 // percent
	onBattery  bool
}

// NewSimulatedUnit creates a unit with its own deterministic rng stream.
func NewSimulatedUnit(id string, degraded bool, seed int64) *SimulatedUnit {
	rng := rand.New(rand.NewSource(seed))
	u := &SimulatedUnit{
		ID:         id,
		Degraded:   degraded,
		rng:        rng,
		battery:    90 + rng.Float64()*10,
		temp:       24 + rng.Float64()*4,
		efficiency: 94 + rng.Float64()*4,
		load:       30 + rng.Float64()*30,
		capacity:   3000,
		uptime:     99.5 + rng.Float64()*0.5,
	}
	if degraded {
		u.efficiency -= 8
		u.temp += 10
		u.battery = 35 + rng.Float64()*20
	}
	return u
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Step advances the unit by dt and returns the resulting snapshot.
func (u *SimulatedUnit) Step(dt time.Duration) model.Reading {
	hours := dt.Hours()

	// Mains loss is rare; recovery is quick.
	if u.onBattery {
		if u.rng.Float64() < 0.3 {
			u.onBattery = false
		}
	} else if u.rng.Float64() < 0.02 {
		u.onBattery = true
	}

	u.load = clampRange(u.load+u.rng.NormFloat64()*3, 5, 130)

	dischargeRate := 15.0 // percent per hour at full load
	if u.Degraded {
		dischargeRate = 40
	}
	if u.onBattery {
		u.battery -= dischargeRate * (u.load / 100) * hours
	} else {
		u.battery += 30 * hours // recharge
	}
	u.battery = clampRange(u.battery, 0, 100)

	ambient := 22.0
	target := ambient + u.load*0.15
	if u.Degraded {
		target += 12
	}
	u.temp += (target-u.temp)*0.2 + u.rng.NormFloat64()*0.5
	u.temp = clampRange(u.temp, ambient, 80)

	if u.Degraded {
		u.efficiency -= 0.05 * hours
	}
	u.efficiency = clampRange(u.efficiency+u.rng.NormFloat64()*0.2, 60, 99)

	powerOut := u.capacity * (u.load / 100) * 0.8
	powerIn := 0.0
	if !u.onBattery {
		powerIn = powerOut/(u.efficiency/100) + u.rng.NormFloat64()*5
		if powerIn < 0 {
			powerIn = 0
		}
	}

	return model.Reading{
		UnitID:        u.ID,
		Name:          u.Name,
		Timestamp:     time.Now().UTC(),
		PowerInput:    powerIn,
		PowerOutput:   powerOut,
		BatteryLevel:  u.battery,
		Temperature:   u.temp,
		Efficiency:    u.efficiency,
		Load:          u.load,
		VoltageInput:  230 + u.rng.NormFloat64()*2,
		VoltageOutput: 230 + u.rng.NormFloat64(),
		Frequency:     50 + u.rng.NormFloat64()*0.05,
		Capacity:      u.capacity,
		CriticalLoad:  u.capacity * 0.4,
		Uptime:        u.uptime,
	}
}
