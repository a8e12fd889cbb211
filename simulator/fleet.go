package simulator

import (
	"fmt"
	"math/rand"
	"time"
)

// GenerateFleet creates cfg.Count units with IDs ups0001..upsNNNN. Units are
// marked degraded according to cfg.DegradedPct; with a fixed Seed the same
// units are degraded every run.
func GenerateFleet(cfg Config) []*SimulatedUnit {
	if cfg.Count <= 0 {
		return nil
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	units := make([]*SimulatedUnit, cfg.Count)
	for i := 0; i < cfg.Count; i++ {
		id := fmt.Sprintf("ups%04d", i+1)
		degraded := rng.Float64() < cfg.DegradedPct
		units[i] = NewSimulatedUnit(id, degraded, rng.Int63())
		units[i].Name = fmt.Sprintf("UPS Unit %d", i+1)
	}
	return units
}
