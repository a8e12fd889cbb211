package test

import (
	"context"
	"sync"

	"github.com/gridsentry/upswatch/core/model"
)

// recordingSink captures predictions and alerts for assertions.
type recordingSink struct {
	mu     sync.Mutex
	saved  []model.Prediction
	alerts []model.Alert
}

func (s *recordingSink) Save(_ context.Context, p model.Prediction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, p)
	return nil
}

func (s *recordingSink) RaiseAlert(_ context.Context, a model.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, a)
	return nil
}

func (s *recordingSink) predictions() []model.Prediction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Prediction(nil), s.saved...)
}
