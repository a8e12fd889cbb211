package sink

import (
	"context"
	"errors"
	"fmt"

	"github.com/gridsentry/upswatch/core/model"
)

// Multi fans results out to multiple sinks. Every sink is attempted even when
// an earlier one fails; failures are joined so the caller sees them all.
type Multi struct {
	Sinks []Sink
}

// NewMulti creates a Multi with the provided sinks.
func NewMulti(sinks ...Sink) *Multi {
	return &Multi{Sinks: sinks}
}

// Save forwards the prediction to all sinks.
func (m *Multi) Save(ctx context.Context, p model.Prediction) error {
	var errs []error
	for _, s := range m.Sinks {
		if err := s.Save(ctx, p); err != nil {
			errs = append(errs, &Error{Sink: sinkName(s), Err: err})
		}
	}
	return errors.Join(errs...)
}

// RaiseAlert forwards the alert to all sinks implementing Alerter.
func (m *Multi) RaiseAlert(ctx context.Context, a model.Alert) error {
	var errs []error
	for _, s := range m.Sinks {
		al, ok := s.(Alerter)
		if !ok {
			continue
		}
		if err := al.RaiseAlert(ctx, a); err != nil {
			errs = append(errs, &Error{Sink: sinkName(s), Err: err})
		}
	}
	return errors.Join(errs...)
}

// ArchiveReading forwards the reading to all sinks implementing ReadingArchiver.
func (m *Multi) ArchiveReading(ctx context.Context, r model.Reading) error {
	var errs []error
	for _, s := range m.Sinks {
		ar, ok := s.(ReadingArchiver)
		if !ok {
			continue
		}
		if err := ar.ArchiveReading(ctx, r); err != nil {
			errs = append(errs, &Error{Sink: sinkName(s), Err: err})
		}
	}
	return errors.Join(errs...)
}

// RecentReadings queries the first sink able to provide history.
func (m *Multi) RecentReadings(ctx context.Context, unitID string, limit int) ([]model.Reading, error) {
	for _, s := range m.Sinks {
		if hp, ok := s.(HistoryProvider); ok {
			return hp.RecentReadings(ctx, unitID, limit)
		}
	}
	return nil, nil
}

func sinkName(s Sink) string {
	return fmt.Sprintf("%T", s)
}
