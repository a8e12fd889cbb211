// Package fleetreport turns completed-cycle events into the fleet health
// report served by the API and optionally written to disk.
package fleetreport

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/gridsentry/upswatch/config"
	"github.com/gridsentry/upswatch/core/events"
	"github.com/gridsentry/upswatch/core/model"
	"github.com/gridsentry/upswatch/core/report"
	"github.com/gridsentry/upswatch/infra/logger"
	"github.com/gridsentry/upswatch/internal/eventbus"
)

// Job subscribes to cycle events and rebuilds the health report after every
// completed cycle. It never touches the evaluation path.
type Job struct {
	cfg config.ReportConfig
	bus eventbus.EventBus
	log logger.Logger

	mu     sync.RWMutex
	latest model.HealthReport
	ready  bool
}

// New creates a report job.
func New(cfg config.ReportConfig, bus eventbus.EventBus) *Job {
	return &Job{cfg: cfg, bus: bus, log: logger.New("fleetreport")}
}

// Latest returns the most recent report; ok is false before the first cycle.
func (j *Job) Latest() (model.HealthReport, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.latest, j.ready
}

// Run consumes cycle events until the bus closes or the subscription is
// cancelled. Meant to run on its own goroutine.
func (j *Job) Run() {
	sub := j.bus.Subscribe()
	for ev := range sub {
		ce, ok := ev.(events.CycleEvent)
		if !ok {
			continue
		}
		j.handle(ce)
	}
}

func (j *Job) handle(ce events.CycleEvent) {
	rep := report.Build(ce.Predictions, ce.Readings, j.cfg.TopRisks)
	if j.cfg.Path != "" {
		if err := j.write(rep); err != nil {
			j.log.Errorf("write report: %v", err)
		}
	}
	j.mu.Lock()
	j.latest = rep
	j.ready = true
	j.mu.Unlock()

	j.log.Infof("fleet health: %d units, %d healthy, %d at risk, %d critical",
		rep.FleetSize, rep.Healthy, rep.AtRisk, rep.Critical)
}

// write replaces the report file atomically so readers never see a partial
// document.
func (j *Job) write(rep model.HealthReport) error {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	tmp := j.cfg.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, j.cfg.Path)
}
