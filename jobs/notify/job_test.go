package notify

import (
	"testing"
	"time"

	"github.com/gridsentry/upswatch/core/events"
	"github.com/gridsentry/upswatch/core/model"
	"github.com/gridsentry/upswatch/infra/mqtt"
	"github.com/gridsentry/upswatch/internal/eventbus"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestJobForwardsPredictionsAndAlerts(t *testing.T) {
	bus := eventbus.New(8)
	notifier := mqtt.NewMockNotifier()
	job := New(notifier, bus)
	done := make(chan struct{})
	go func() {
		job.Run()
		close(done)
	}()
	// Give the subscriber time to register before publishing.
	time.Sleep(20 * time.Millisecond)

	bus.Publish(events.PredictionEvent{Prediction: model.Prediction{UnitID: "ups0001", Status: model.StatusHealthy}})
	bus.Publish(events.AlertEvent{Alert: model.Alert{UnitID: "ups0002", Severity: model.SeverityCritical}})
	bus.Publish(events.CycleEvent{})

	waitFor(t, func() bool {
		preds, alerts := notifier.Snapshot()
		return len(preds) == 1 && len(alerts) == 1
	})
	bus.Close()
	<-done

	preds, alerts := notifier.Snapshot()
	if preds[0].UnitID != "ups0001" {
		t.Fatalf("predictions = %+v", preds)
	}
	if alerts[0].UnitID != "ups0002" {
		t.Fatalf("alerts = %+v", alerts)
	}
}

func TestJobSurvivesPublishFailure(t *testing.T) {
	bus := eventbus.New(8)
	notifier := mqtt.NewMockNotifier()
	notifier.FailIDs["ups0001"] = true
	job := New(notifier, bus)
	done := make(chan struct{})
	go func() {
		job.Run()
		close(done)
	}()
	time.Sleep(20 * time.Millisecond)

	bus.Publish(events.PredictionEvent{Prediction: model.Prediction{UnitID: "ups0001"}})
	bus.Publish(events.PredictionEvent{Prediction: model.Prediction{UnitID: "ups0002"}})

	waitFor(t, func() bool {
		preds, _ := notifier.Snapshot()
		return len(preds) == 1
	})
	bus.Close()
	<-done

	preds, _ := notifier.Snapshot()
	if preds[0].UnitID != "ups0002" {
		t.Fatalf("predictions = %+v, want only ups0002", preds)
	}
}
