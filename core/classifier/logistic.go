package classifier

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/gridsentry/upswatch/core/features"
)

// Artifact is the serialized form of a trained failure model. The feature
// list doubles as the training contract: it must match the extractor's order
// exactly or the artifact is refused.
type Artifact struct {
	SchemaVersion int       `json:"schema_version"`
	TrainedAt     time.Time `json:"trained_at"`
	Features      []string  `json:"features"`
	Means         []float64 `json:"means"`
	Scales        []float64 `json:"scales"`
	Coefficients  []float64 `json:"coefficients"`
	Intercept     float64   `json:"intercept"`
}

// Logistic is a standardized logistic model loaded from an artifact file.
// The zero value is unusable; obtain instances through Load.
type Logistic struct {
	means     *mat.VecDense
	scales    *mat.VecDense
	weights   *mat.VecDense
	intercept float64
	trainedAt time.Time
}

// Load reads and validates a model artifact. Every failure wraps
// ErrUnavailable so callers can treat a bad artifact and a missing one the
// same way.
func Load(path string) (*Logistic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read artifact: %v", ErrUnavailable, err)
	}
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: decode artifact: %v", ErrUnavailable, err)
	}
	return New(a)
}

// New builds a model from an in-memory artifact, validating it against the
// extraction contract.
func New(a Artifact) (*Logistic, error) {
	if a.SchemaVersion != features.SchemaVersion {
		return nil, fmt.Errorf("%w: artifact schema version %d, extractor expects %d",
			ErrUnavailable, a.SchemaVersion, features.SchemaVersion)
	}
	if len(a.Features) != features.Count {
		return nil, fmt.Errorf("%w: artifact has %d features, extractor produces %d",
			ErrUnavailable, len(a.Features), features.Count)
	}
	for i, name := range a.Features {
		if name != features.Order[i] {
			return nil, fmt.Errorf("%w: feature %d is %q, extractor produces %q",
				ErrUnavailable, i, name, features.Order[i])
		}
	}
	if len(a.Means) != features.Count || len(a.Scales) != features.Count || len(a.Coefficients) != features.Count {
		return nil, fmt.Errorf("%w: means/scales/coefficients must each have %d entries",
			ErrUnavailable, features.Count)
	}
	for i, s := range a.Scales {
		if s == 0 || math.IsNaN(s) {
			return nil, fmt.Errorf("%w: zero scale for feature %q", ErrUnavailable, a.Features[i])
		}
	}
	return &Logistic{
		means:     mat.NewVecDense(features.Count, append([]float64(nil), a.Means...)),
		scales:    mat.NewVecDense(features.Count, append([]float64(nil), a.Scales...)),
		weights:   mat.NewVecDense(features.Count, append([]float64(nil), a.Coefficients...)),
		intercept: a.Intercept,
		trainedAt: a.TrainedAt,
	}, nil
}

// TrainedAt reports when the loaded model was trained.
func (l *Logistic) TrainedAt() time.Time {
	return l.trainedAt
}

// Predict standardizes the vector and maps the logit through the sigmoid.
// Confidence is the distance from the decision boundary, max(p, 1-p).
func (l *Logistic) Predict(v features.Vector) (float64, float64, error) {
	x := mat.NewVecDense(features.Count, v.Values())
	x.SubVec(x, l.means)
	x.DivElemVec(x, l.scales)
	z := l.intercept + mat.Dot(l.weights, x)
	p := 1 / (1 + math.Exp(-z))
	return p, math.Max(p, 1-p), nil
}
