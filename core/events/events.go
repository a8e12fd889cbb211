// Package events defines the messages published on the internal bus so
// observers (status API, health reporter) can follow the engine without
// entering the evaluation path.
package events

import "github.com/gridsentry/upswatch/core/model"

// PredictionEvent is published after each successful unit evaluation.
type PredictionEvent struct {
	Prediction model.Prediction
}

// AlertEvent is published when a critical prediction raises an alert.
type AlertEvent struct {
	Alert model.Alert
}

// CycleEvent is published when an evaluation cycle finishes. It carries the
// cycle's output so subscribers never re-enter the data path.
type CycleEvent struct {
	Record      model.CycleRecord
	Readings    []model.Reading
	Predictions []model.Prediction
}
