package monitor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gridsentry/upswatch/core/classifier"
	"github.com/gridsentry/upswatch/core/events"
	"github.com/gridsentry/upswatch/core/model"
	"github.com/gridsentry/upswatch/core/severity"
	"github.com/gridsentry/upswatch/core/sink"
	"github.com/gridsentry/upswatch/core/unitstatus"
	"github.com/gridsentry/upswatch/internal/eventbus"
)

func healthyReading(unit string) model.Reading {
	return model.Reading{
		UnitID:        unit,
		Timestamp:     time.Now().UTC(),
		PowerInput:    500,
		PowerOutput:   490,
		BatteryLevel:  95,
		Temperature:   26,
		Load:          45,
		Efficiency:    96,
		VoltageInput:  230,
		VoltageOutput: 229,
		Frequency:     50,
		Capacity:      3000,
		CriticalLoad:  1200,
		Uptime:        99.9,
	}
}

// memSink records everything the engine hands it. FailFor makes Save fail
// for a single unit.
type memSink struct {
	mu       sync.Mutex
	saved    []model.Prediction
	alerts   []model.Alert
	archived []model.Reading
	FailFor  string
}

func (m *memSink) Save(_ context.Context, p model.Prediction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailFor != "" && p.UnitID == m.FailFor {
		return &sink.Error{Sink: "mem", Err: errors.New("write refused")}
	}
	m.saved = append(m.saved, p)
	return nil
}

func (m *memSink) RaiseAlert(_ context.Context, a model.Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts = append(m.alerts, a)
	return nil
}

func (m *memSink) ArchiveReading(_ context.Context, r model.Reading) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.archived = append(m.archived, r)
	return nil
}

func (m *memSink) predictions() []model.Prediction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Prediction(nil), m.saved...)
}

func (m *memSink) alertCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.alerts)
}

func newTestEngine(t *testing.T, src Source, cls classifier.Classifier, snk sink.Sink, cfg Config) *Engine {
	t.Helper()
	ResetMetrics(nil)
	e, err := NewEngine(src, cls, severity.New(severity.Config{}), snk, nil, cfg)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return e
}

func TestCycleHealthyFleet(t *testing.T) {
	snk := &memSink{}
	src := Static{healthyReading("ups0001"), healthyReading("ups0002")}
	e := newTestEngine(t, src, &classifier.Mock{Probability: 0.05}, snk, Config{})

	rec, err := e.EvaluateCycle(context.Background())
	if err != nil {
		t.Fatalf("cycle: %v", err)
	}
	if rec.UnitsEvaluated != 2 || rec.UnitsFailed != 0 {
		t.Fatalf("record = %+v", rec)
	}
	preds := snk.predictions()
	if len(preds) != 2 {
		t.Fatalf("saved %d predictions, want 2", len(preds))
	}
	for _, p := range preds {
		if p.Status != model.StatusHealthy {
			t.Errorf("unit %s status = %q, want healthy", p.UnitID, p.Status)
		}
		if len(p.Reasons) != 1 || p.Reasons[0].Severity != model.SeverityInfo {
			t.Errorf("unit %s reasons = %+v, want one informational reason", p.UnitID, p.Reasons)
		}
	}
	if snk.alertCount() != 0 {
		t.Errorf("healthy fleet raised %d alerts", snk.alertCount())
	}
	if len(snk.archived) != 2 {
		t.Errorf("archived %d readings, want 2", len(snk.archived))
	}
}

func TestCycleCriticalBatteryOverridesModel(t *testing.T) {
	r := healthyReading("ups0001")
	r.BatteryLevel = 15
	snk := &memSink{}
	// The model is confident the unit is fine; the battery rule must win.
	e := newTestEngine(t, Static{r}, &classifier.Mock{Probability: 0.05}, snk, Config{})

	if _, err := e.EvaluateCycle(context.Background()); err != nil {
		t.Fatalf("cycle: %v", err)
	}
	preds := snk.predictions()
	if len(preds) != 1 {
		t.Fatalf("saved %d predictions, want 1", len(preds))
	}
	p := preds[0]
	if p.Status != model.StatusCritical {
		t.Fatalf("status = %q, want critical", p.Status)
	}
	if p.Reasons[0].Metric != model.MetricBattery || p.Reasons[0].Severity != model.SeverityCritical {
		t.Errorf("leading reason = %+v, want critical battery", p.Reasons[0])
	}
	if snk.alertCount() != 1 {
		t.Fatalf("raised %d alerts, want 1", snk.alertCount())
	}
	a := snk.alerts[0]
	if a.UnitID != "ups0001" || a.Severity != model.SeverityCritical {
		t.Errorf("alert = %+v", a)
	}
}

func TestCycleUnitFailureLeavesSiblings(t *testing.T) {
	bad := healthyReading("ups0001")
	bad.Temperature = 200 // outside the physical range, extraction rejects it
	snk := &memSink{}
	e := newTestEngine(t, Static{bad, healthyReading("ups0002")}, &classifier.Mock{Probability: 0.1}, snk, Config{})

	rec, err := e.EvaluateCycle(context.Background())
	if err != nil {
		t.Fatalf("cycle: %v", err)
	}
	if rec.UnitsEvaluated != 2 || rec.UnitsFailed != 1 {
		t.Fatalf("record = %+v", rec)
	}
	preds := snk.predictions()
	if len(preds) != 1 || preds[0].UnitID != "ups0002" {
		t.Fatalf("predictions = %+v, want only ups0002", preds)
	}
}

func TestCycleSinkFailureCountsUnit(t *testing.T) {
	snk := &memSink{FailFor: "ups0001"}
	e := newTestEngine(t, Static{healthyReading("ups0001"), healthyReading("ups0002")}, &classifier.Mock{Probability: 0.1}, snk, Config{})

	rec, err := e.EvaluateCycle(context.Background())
	if err != nil {
		t.Fatalf("cycle: %v", err)
	}
	if rec.UnitsFailed != 1 {
		t.Fatalf("units failed = %d, want 1", rec.UnitsFailed)
	}
	preds := snk.predictions()
	if len(preds) != 1 || preds[0].UnitID != "ups0002" {
		t.Fatalf("predictions = %+v, want only ups0002", preds)
	}
}

func TestCycleModelUnavailableAborts(t *testing.T) {
	snk := &memSink{}
	mock := &classifier.Mock{Err: classifier.ErrUnavailable}
	e := newTestEngine(t, Static{healthyReading("ups0001"), healthyReading("ups0002")}, mock, snk, Config{})

	_, err := e.EvaluateCycle(context.Background())
	if !errors.Is(err, classifier.ErrUnavailable) {
		t.Fatalf("error = %v, want ErrUnavailable", err)
	}
	if len(snk.predictions()) != 0 {
		t.Fatalf("aborted cycle persisted %d predictions", len(snk.predictions()))
	}
}

func TestCycleEvaluationTimeout(t *testing.T) {
	snk := &memSink{}
	mock := &classifier.Mock{Probability: 0.1, Delay: 1500 * time.Millisecond}
	e := newTestEngine(t, Static{healthyReading("ups0001")}, mock, snk, Config{EvaluationTimeoutSeconds: 1})

	rec, err := e.EvaluateCycle(context.Background())
	if err != nil {
		t.Fatalf("cycle: %v", err)
	}
	if rec.UnitsFailed != 1 {
		t.Fatalf("units failed = %d, want 1", rec.UnitsFailed)
	}
	if len(snk.predictions()) != 0 {
		t.Fatalf("timed-out unit persisted a prediction")
	}
}

type staticHistory []model.Reading

func (h staticHistory) RecentReadings(context.Context, string, int) ([]model.Reading, error) {
	return append([]model.Reading(nil), h...), nil
}

func TestCycleEnrichesRiskFromHistory(t *testing.T) {
	hot := healthyReading("ups0001")
	hot.Temperature = 44
	hot.BatteryLevel = 40
	hot.Efficiency = 82

	snk := &memSink{}
	e := newTestEngine(t, Static{healthyReading("ups0001")}, &classifier.Mock{Probability: 0.1}, snk, Config{})
	e.SetHistoryProvider(staticHistory{hot, healthyReading("ups0001")})
	store := unitstatus.NewMemoryStore()
	e.SetStatusStore(store)

	if _, err := e.EvaluateCycle(context.Background()); err != nil {
		t.Fatalf("cycle: %v", err)
	}
	statuses := store.List(unitstatus.Filter{})
	if len(statuses) != 1 {
		t.Fatalf("statuses = %d, want 1", len(statuses))
	}
	if statuses[0].Reading.FailureRisk <= 0 {
		t.Errorf("failure risk = %v, want enriched above zero", statuses[0].Reading.FailureRisk)
	}
}

func TestCyclePublishesEvents(t *testing.T) {
	r := healthyReading("ups0001")
	r.BatteryLevel = 15
	bus := eventbus.New(16)
	defer bus.Close()
	sub := bus.Subscribe()

	e := newTestEngine(t, Static{r}, &classifier.Mock{Probability: 0.1}, &memSink{}, Config{})
	e.SetBus(bus)

	if _, err := e.EvaluateCycle(context.Background()); err != nil {
		t.Fatalf("cycle: %v", err)
	}
	var gotPrediction, gotAlert, gotCycle bool
	for len(sub) > 0 {
		switch (<-sub).(type) {
		case events.PredictionEvent:
			gotPrediction = true
		case events.AlertEvent:
			gotAlert = true
		case events.CycleEvent:
			gotCycle = true
		}
	}
	if !gotPrediction || !gotAlert || !gotCycle {
		t.Fatalf("events prediction=%v alert=%v cycle=%v, want all", gotPrediction, gotAlert, gotCycle)
	}
}
