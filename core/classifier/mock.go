package classifier

import (
	"math"
	"sync"
	"time"

	"github.com/gridsentry/upswatch/core/features"
)

// Mock returns deterministic predictions for tests. When Confidence is left
// zero it is derived from the probability the way the real model does.
type Mock struct {
	Probability float64
	Confidence  float64
	Err         error
	// Delay stalls each call, for evaluation-timeout tests.
	Delay time.Duration
	// Fn, when set, overrides the canned values entirely.
	Fn func(features.Vector) (float64, float64, error)

	mu    sync.Mutex
	calls int
}

func (m *Mock) Predict(v features.Vector) (float64, float64, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.Delay > 0 {
		time.Sleep(m.Delay)
	}
	if m.Fn != nil {
		return m.Fn(v)
	}
	if m.Err != nil {
		return 0, 0, m.Err
	}
	conf := m.Confidence
	if conf == 0 {
		conf = math.Max(m.Probability, 1-m.Probability)
	}
	return m.Probability, conf, nil
}

// Calls reports how many times Predict ran.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
