package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gridsentry/upswatch/core/classifier"
	"github.com/gridsentry/upswatch/core/logger"
	"github.com/gridsentry/upswatch/core/model"
	"github.com/gridsentry/upswatch/core/monitoring"
)

// State is the scheduler's lifecycle state.
type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateDraining State = "draining"
)

// Scheduler triggers evaluation cycles on a fixed interval. At most one
// cycle runs at a time: a tick that fires while a cycle is in progress is
// dropped, never queued, so a slow cycle cannot build a backlog.
type Scheduler struct {
	engine   *Engine
	log      logger.Logger
	interval time.Duration

	mu    sync.RWMutex
	state State
	last  model.CycleRecord
}

// NewScheduler builds a scheduler around an engine.
func NewScheduler(engine *Engine, log logger.Logger, cfg Config) (*Scheduler, error) {
	if engine == nil {
		return nil, fmt.Errorf("monitor: nil engine provided to NewScheduler")
	}
	if log == nil {
		log = logger.Nop{}
	}
	return &Scheduler{
		engine:   engine,
		log:      log,
		interval: cfg.CycleInterval(),
		state:    StateIdle,
	}, nil
}

// State reports the current lifecycle state.
func (s *Scheduler) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// LastRecord returns the record of the most recent cycle.
func (s *Scheduler) LastRecord() model.CycleRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

func (s *Scheduler) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// setDraining flips running to draining; any other state is left alone so a
// late cancellation cannot overwrite idle.
func (s *Scheduler) setDraining() {
	s.mu.Lock()
	if s.state == StateRunning {
		s.state = StateDraining
	}
	s.mu.Unlock()
}

// Run evaluates once immediately, then on every tick until the context is
// cancelled. Shutdown is cooperative: a cancellation mid-cycle finishes the
// in-flight unit and stops.
func (s *Scheduler) Run(ctx context.Context) {
	s.runCycle(ctx)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.runCycle(ctx)
			// A tick that fired while the cycle ran would start another
			// cycle back to back; drop it.
			select {
			case <-ticker.C:
				s.dropTick()
			default:
			}
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) dropTick() {
	ticksDropped.Inc()
	s.log.Warnf("tick dropped: previous evaluation cycle still running")
}

func (s *Scheduler) runCycle(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	s.setState(StateRunning)
	watchDone := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			s.setDraining()
		case <-watchDone:
		}
	}()
	rec, err := s.engine.EvaluateCycle(ctx)
	close(watchDone)
	s.setState(StateIdle)
	s.mu.Lock()
	s.last = rec
	s.mu.Unlock()

	switch {
	case err == nil:
		if rec.UnitsFailed > 0 {
			s.log.Warnf("cycle degraded: %d of %d units failed", rec.UnitsFailed, rec.UnitsEvaluated)
		} else {
			s.log.Infof("cycle completed: %d units in %s", rec.UnitsEvaluated, rec.Duration())
		}
	case errors.Is(err, classifier.ErrUnavailable):
		// One fatal event for the whole tick; the scheduler stays up and
		// retries on the next one.
		s.log.Errorf("cycle aborted: %v", err)
		monitoring.CaptureException(err, map[string]string{"component": "scheduler"})
	default:
		s.log.Errorf("cycle failed: %v", err)
	}
}
