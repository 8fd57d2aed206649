// Package scoring wraps the trained classifier behind a lazily loaded,
// process-wide engine and applies the decision threshold.
package scoring

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/glyco/internal/domain/features"
)

// DefaultThreshold is the probability cutoff above which a request is
// classified high risk. Strict greater-than: a probability exactly at the
// threshold classifies as low risk.
const DefaultThreshold = 0.502

// Classifier produces the positive-class probability for one feature row.
// The implementation is opaque to the rest of the pipeline.
type Classifier interface {
	PredictProba(ctx context.Context, v features.Vector) (float64, error)
}

// Loader builds a Classifier from an artifact path.
type Loader func(path string) (Classifier, error)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithArtifactPath sets the classifier artifact location.
func WithArtifactPath(path string) Option {
	return func(e *Engine) {
		if path != "" {
			e.artifactPath = path
		}
	}
}

// WithThreshold overrides the decision threshold.
func WithThreshold(threshold float64) Option {
	return func(e *Engine) {
		if threshold > 0 && threshold < 1 {
			e.threshold = threshold
		}
	}
}

// WithLoader replaces the artifact loader.
func WithLoader(loader Loader) Option {
	return func(e *Engine) {
		if loader != nil {
			e.loader = loader
		}
	}
}

// WithClassifier injects an already constructed classifier, skipping the
// artifact load entirely.
func WithClassifier(clf Classifier) Option {
	return func(e *Engine) {
		e.clf = clf
	}
}

// Engine owns the loaded classifier as write-once singleton state. The first
// caller performs the load under the mutex; later calls observe the cached
// classifier or the cached failure. A failed load is not retried until
// Reload is invoked out of band.
type Engine struct {
	mu           sync.Mutex
	artifactPath string
	threshold    float64
	loader       Loader

	clf       Classifier
	loadErr   error
	attempted bool
}

// NewEngine constructs an Engine with default configuration.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		artifactPath: "diabetes_model.json",
		threshold:    DefaultThreshold,
		loader: func(path string) (Classifier, error) {
			return LoadArtifact(path)
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EnsureLoaded loads the classifier on first use. It is idempotent and safe
// to call before every request; once loaded (or failed) it only inspects
// cached state.
func (e *Engine) EnsureLoaded(_ context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ensureLoadedLocked()
}

func (e *Engine) ensureLoadedLocked() error {
	if e.clf != nil {
		return nil
	}
	if e.attempted {
		return fmt.Errorf("%w: %s", ErrUnavailable, e.loadErr)
	}
	e.attempted = true
	clf, err := e.loader(e.artifactPath)
	if err != nil {
		e.loadErr = fmt.Errorf("load artifact %s: %w", e.artifactPath, err)
		return fmt.Errorf("%w: %s", ErrUnavailable, e.loadErr)
	}
	e.clf = clf
	e.loadErr = nil
	return nil
}

// Reload clears cached load state and retries immediately. Operators use
// this after replacing a bad artifact; requests never trigger it.
func (e *Engine) Reload(_ context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clf = nil
	e.loadErr = nil
	e.attempted = false
	return e.ensureLoadedLocked()
}

// Loaded reports whether a classifier is available without triggering a load.
func (e *Engine) Loaded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clf != nil
}

// Score runs the classifier on one feature row and returns the
// positive-class probability.
func (e *Engine) Score(ctx context.Context, v features.Vector) (float64, error) {
	e.mu.Lock()
	if err := e.ensureLoadedLocked(); err != nil {
		e.mu.Unlock()
		return 0, err
	}
	clf := e.clf
	e.mu.Unlock()

	prob, err := clf.PredictProba(ctx, v)
	if err != nil {
		return 0, fmt.Errorf("predict: %w", err)
	}
	if prob < 0 || prob > 1 {
		return 0, fmt.Errorf("%w: probability %v outside [0,1]", ErrPrediction, prob)
	}
	return prob, nil
}

// Threshold returns the configured decision threshold.
func (e *Engine) Threshold() float64 { return e.threshold }

// Decide applies the threshold. Strict greater-than by contract.
func (e *Engine) Decide(prob float64) bool { return prob > e.threshold }
