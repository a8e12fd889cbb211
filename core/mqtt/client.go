package mqtt

import "github.com/gridsentry/upswatch/core/model"

// Notifier pushes monitor output to unit-scoped MQTT topics so downstream
// dashboards react without polling the API.
type Notifier interface {
	// PublishPrediction sends the prediction to the topic of its unit.
	PublishPrediction(p model.Prediction) error

	// PublishAlert sends a raised alert to the topic of its unit.
	PublishAlert(a model.Alert) error
}
