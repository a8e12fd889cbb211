package classifier

import (
	"errors"

	"github.com/gridsentry/upswatch/core/features"
)

// ErrUnavailable marks the classifier as absent or unusable. It is fatal for
// the whole evaluation cycle: the scheduler reports it once and retries on
// the next tick instead of predicting from a missing model.
var ErrUnavailable = errors.New("failure model unavailable")

// Classifier scores a feature vector for near-term failure. Implementations
// are immutable after load; the engine never retrains or mutates them.
type Classifier interface {
	// Predict returns the failure probability and the model's confidence,
	// both in [0,1].
	Predict(v features.Vector) (probability, confidence float64, err error)
}
