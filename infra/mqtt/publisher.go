package mqtt

import (
	"fmt"
	"sync"

	coremqtt "github.com/gridsentry/upswatch/core/mqtt"
	"github.com/gridsentry/upswatch/core/model"
)

// Notifier mirrors the core mqtt.Notifier interface.
type Notifier = coremqtt.Notifier

// MockNotifier is a simple notifier used in tests.
type MockNotifier struct {
	Predictions []model.Prediction
	Alerts      []model.Alert
	FailIDs     map[string]bool
	mu          sync.Mutex
}

// NewMockNotifier creates a new MockNotifier.
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{FailIDs: make(map[string]bool)}
}

// PublishPrediction records the prediction or returns an error if configured to fail.
func (m *MockNotifier) PublishPrediction(p model.Prediction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailIDs[p.UnitID] {
		return fmt.Errorf("publish failed")
	}
	m.Predictions = append(m.Predictions, p)
	return nil
}

// Snapshot returns copies of the recorded predictions and alerts.
func (m *MockNotifier) Snapshot() ([]model.Prediction, []model.Alert) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Prediction(nil), m.Predictions...), append([]model.Alert(nil), m.Alerts...)
}

// PublishAlert records the alert or returns an error if configured to fail.
func (m *MockNotifier) PublishAlert(a model.Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailIDs[a.UnitID] {
		return fmt.Errorf("publish failed")
	}
	m.Alerts = append(m.Alerts, a)
	return nil
}
