package logging

import (
	"context"
	"time"

	"github.com/gridsentry/upswatch/core/model"
)

// Kind distinguishes the two record types the monitor writes.
type Kind string

const (
	KindPrediction Kind = "prediction"
	KindAlert      Kind = "alert"
)

// Record captures one audit entry: a completed prediction or a raised alert.
type Record struct {
	Timestamp  time.Time         `json:"timestamp"`
	Kind       Kind              `json:"kind"`
	UnitID     string            `json:"unit_id"`
	Status     model.Status      `json:"status,omitempty"`
	Prediction *model.Prediction `json:"prediction,omitempty"`
	Alert      *model.Alert      `json:"alert,omitempty"`
}

// NewPredictionRecord wraps a prediction for the audit log.
func NewPredictionRecord(p model.Prediction) Record {
	return Record{
		Timestamp:  p.Timestamp,
		Kind:       KindPrediction,
		UnitID:     p.UnitID,
		Status:     p.Status,
		Prediction: &p,
	}
}

// NewAlertRecord wraps a raised alert for the audit log.
func NewAlertRecord(a model.Alert) Record {
	return Record{
		Timestamp: a.CreatedAt,
		Kind:      KindAlert,
		UnitID:    a.UnitID,
		Status:    model.StatusCritical,
		Alert:     &a,
	}
}

// Query defines filters for retrieving records.
type Query struct {
	Start  time.Time
	End    time.Time
	UnitID string
	Kind   Kind
}

// LogStore persists Records and supports querying.
type LogStore interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}
