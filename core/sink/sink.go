// Package sink defines the persistence and alerting boundary the engine
// writes results to. Backends implement Sink and optionally the narrower
// capabilities; fan-out and capability discovery happen in infra.
package sink

import (
	"context"
	"fmt"

	"github.com/gridsentry/upswatch/core/model"
)

// Sink persists one prediction record per unit per cycle. Implementations
// must support independent per-record writes: a failure for one unit must
// not affect writes for another.
type Sink interface {
	Save(ctx context.Context, p model.Prediction) error
}

// Alerter is implemented by sinks able to raise operator alerts. The engine
// invokes it only for critical predictions.
type Alerter interface {
	RaiseAlert(ctx context.Context, a model.Alert) error
}

// ReadingArchiver is implemented by sinks that keep the raw telemetry
// snapshots alongside predictions.
type ReadingArchiver interface {
	ArchiveReading(ctx context.Context, r model.Reading) error
}

// HistoryProvider supplies a unit's recent archived readings, newest first.
// The engine uses it to derive the history risk feature.
type HistoryProvider interface {
	RecentReadings(ctx context.Context, unitID string, limit int) ([]model.Reading, error)
}

// Error wraps a backend failure with the backend's name. Per-unit sink
// failures are logged and never abort sibling units.
type Error struct {
	Sink string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("sink %s: %v", e.Sink, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Nop discards everything. It is the default when no backend is configured.
type Nop struct{}

func (Nop) Save(context.Context, model.Prediction) error        { return nil }
func (Nop) RaiseAlert(context.Context, model.Alert) error       { return nil }
func (Nop) ArchiveReading(context.Context, model.Reading) error { return nil }
