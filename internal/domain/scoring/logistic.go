package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/okian/glyco/internal/domain/features"
)

// artifactFormat tags the supported artifact layout.
const artifactFormat = "logreg/1"

// artifact is the on-disk JSON layout of an exported logistic regression:
// the feature list in training order, one coefficient per feature, the
// intercept, and an optional standard scaler.
type artifact struct {
	Format       string      `json:"format"`
	Features     []string    `json:"features"`
	Coefficients []float64   `json:"coefficients"`
	Intercept    float64     `json:"intercept"`
	Scaler       *scalerSpec `json:"scaler,omitempty"`
}

type scalerSpec struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// Logistic is a classifier backed by exported logistic-regression weights.
type Logistic struct {
	coef      [features.Count]float64
	intercept float64
	mean      [features.Count]float64
	scale     [features.Count]float64
	scaled    bool
}

// LoadArtifact reads and verifies a logistic-regression artifact. The
// feature list must match the selected features byte for byte and in order;
// a model trained on different columns must never be scored against.
func LoadArtifact(path string) (*Logistic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var a artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrArtifact, err)
	}
	if a.Format != artifactFormat {
		return nil, fmt.Errorf("%w: unsupported format %q", ErrArtifact, a.Format)
	}
	if len(a.Features) != features.Count {
		return nil, fmt.Errorf("%w: expected %d features, got %d", ErrArtifact, features.Count, len(a.Features))
	}
	for i, name := range a.Features {
		if name != features.Selected[i] {
			return nil, fmt.Errorf("%w: feature %d is %q, want %q", ErrArtifact, i, name, features.Selected[i])
		}
	}
	if len(a.Coefficients) != features.Count {
		return nil, fmt.Errorf("%w: expected %d coefficients, got %d", ErrArtifact, features.Count, len(a.Coefficients))
	}

	l := &Logistic{intercept: a.Intercept}
	copy(l.coef[:], a.Coefficients)

	if a.Scaler != nil {
		if len(a.Scaler.Mean) != features.Count || len(a.Scaler.Scale) != features.Count {
			return nil, fmt.Errorf("%w: scaler must carry %d means and scales", ErrArtifact, features.Count)
		}
		for i, s := range a.Scaler.Scale {
			if s <= 0 {
				return nil, fmt.Errorf("%w: scaler scale %d must be positive", ErrArtifact, i)
			}
		}
		copy(l.mean[:], a.Scaler.Mean)
		copy(l.scale[:], a.Scaler.Scale)
		l.scaled = true
	}

	return l, nil
}

// PredictProba returns the positive-class probability for one feature row.
func (l *Logistic) PredictProba(_ context.Context, v features.Vector) (float64, error) {
	z := l.intercept
	for i := range v {
		x := v[i]
		if l.scaled {
			x = (x - l.mean[i]) / l.scale[i]
		}
		z += l.coef[i] * x
	}
	return 1 / (1 + math.Exp(-z)), nil
}
