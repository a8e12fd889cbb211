package scenarios

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gridsentry/upswatch/core/classifier"
	"github.com/gridsentry/upswatch/core/model"
	"github.com/gridsentry/upswatch/core/monitor"
	"github.com/gridsentry/upswatch/core/severity"
)

// recordingSink captures predictions and alerts for assertions.
type recordingSink struct {
	mu     sync.Mutex
	saved  map[string]model.Prediction
	alerts []model.Alert
}

func newRecordingSink() *recordingSink {
	return &recordingSink{saved: map[string]model.Prediction{}}
}

func (s *recordingSink) Save(_ context.Context, p model.Prediction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved[p.UnitID] = p
	return nil
}

func (s *recordingSink) RaiseAlert(_ context.Context, a model.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, a)
	return nil
}

// RunScenario feeds the scenario's fleet through one evaluation cycle and
// checks every expectation it declares.
func RunScenario(t *testing.T, sc *Scenario) {
	t.Helper()
	monitor.ResetMetrics(nil)

	ts := time.Now().UTC()
	readings := make([]model.Reading, len(sc.Units))
	for i, u := range sc.Units {
		readings[i] = u.ToModel(ts)
	}

	snk := newRecordingSink()
	engine, err := monitor.NewEngine(
		monitor.Static(readings),
		&classifier.Mock{Probability: sc.ModelProbability},
		severity.New(severity.Config{}),
		snk,
		nil,
		monitor.Config{},
	)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}

	rec, err := engine.EvaluateCycle(context.Background())
	if err != nil {
		t.Fatalf("cycle: %v", err)
	}
	if rec.UnitsFailed != sc.Expected.FailedUnits {
		t.Errorf("scenario %s: %d units failed, want %d", sc.Name, rec.UnitsFailed, sc.Expected.FailedUnits)
	}
	for unit, want := range sc.Expected.Statuses {
		p, ok := snk.saved[unit]
		if !ok {
			t.Errorf("scenario %s: no prediction for %s", sc.Name, unit)
			continue
		}
		if string(p.Status) != want {
			t.Errorf("scenario %s: unit %s status %q, want %q", sc.Name, unit, p.Status, want)
		}
		if len(p.Reasons) == 0 {
			t.Errorf("scenario %s: unit %s prediction carries no reasons", sc.Name, unit)
		}
	}
	if len(snk.alerts) != sc.Expected.Alerts {
		t.Errorf("scenario %s: %d alerts raised, want %d", sc.Name, len(snk.alerts), sc.Expected.Alerts)
	}
	for _, a := range snk.alerts {
		if a.Severity != model.SeverityCritical {
			t.Errorf("scenario %s: alert for %s has severity %q", sc.Name, a.UnitID, a.Severity)
		}
	}
}
