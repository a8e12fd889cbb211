// Package notify forwards predictions and alerts from the event bus to
// unit-scoped MQTT topics, so dashboards follow the fleet without polling
// the API.
package notify

import (
	"github.com/gridsentry/upswatch/core/events"
	coremqtt "github.com/gridsentry/upswatch/core/mqtt"
	"github.com/gridsentry/upswatch/infra/logger"
	"github.com/gridsentry/upswatch/internal/eventbus"
)

// Job consumes the event bus and pushes monitor output through a Notifier.
// It sits outside the evaluation path: a slow or failing broker can drop
// notifications but never stalls a cycle.
type Job struct {
	notifier coremqtt.Notifier
	bus      eventbus.EventBus
	log      logger.Logger
}

// New builds the job. Run must be called before the first cycle completes or
// early events are missed.
func New(n coremqtt.Notifier, bus eventbus.EventBus) *Job {
	return &Job{
		notifier: n,
		bus:      bus,
		log:      logger.New("notify"),
	}
}

// Run consumes events until the bus closes.
func (j *Job) Run() {
	sub := j.bus.Subscribe()
	for ev := range sub {
		switch e := ev.(type) {
		case events.PredictionEvent:
			if err := j.notifier.PublishPrediction(e.Prediction); err != nil {
				j.log.Errorf("publish prediction for %s: %v", e.Prediction.UnitID, err)
			}
		case events.AlertEvent:
			if err := j.notifier.PublishAlert(e.Alert); err != nil {
				j.log.Errorf("publish alert for %s: %v", e.Alert.UnitID, err)
			}
		}
	}
}
