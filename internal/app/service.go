// Package service composes validation, feature assembly, inference, and
// persistence into the scoring pipeline behind the HTTP entry points.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	repository "github.com/okian/glyco/internal/adapters/repository"
	"github.com/okian/glyco/internal/domain/features"
	"github.com/okian/glyco/internal/domain/scoring"
	"github.com/okian/glyco/internal/domain/validate"
	"github.com/okian/glyco/pkg/logger"
	"github.com/okian/glyco/pkg/metrics"
)

// Risk labels derived from the threshold decision.
const (
	RiskHigh = "high"
	RiskLow  = "low"
)

// Outcome is the result of one successful scoring call.
type Outcome struct {
	RecordID    uint64
	Probability float64
	Result      bool
	RiskLevel   string
	Threshold   float64
	CreatedAt   time.Time
}

// Service implements the scoring pipeline for the HTTP API.
type Service struct {
	mu sync.RWMutex

	store  repository.Store
	engine *scoring.Engine

	// Configuration
	modelPath string
	storePath string
	threshold float64

	// Test seams: injected implementations bypass Start's construction.
	injectedStore repository.Store
	injectedClf   scoring.Classifier

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithModelPath sets the classifier artifact location.
func WithModelPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.modelPath = path
		}
	}
}

// WithStorePath sets the record store location.
func WithStorePath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.storePath = path
		}
	}
}

// WithThreshold overrides the decision threshold.
func WithThreshold(threshold float64) Option {
	return func(s *Service) {
		if threshold > 0 && threshold < 1 {
			s.threshold = threshold
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore injects a record store, bypassing the badger store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		s.injectedStore = store
	}
}

// WithClassifier injects a classifier, bypassing the artifact load.
func WithClassifier(clf scoring.Classifier) Option {
	return func(s *Service) {
		s.injectedClf = clf
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		modelPath: "diabetes_model.json",
		storePath: "data/predictions",
		threshold: scoring.DefaultThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens the record store and warms the classifier. A classifier that
// fails to load does not fail Start: the service comes up and answers
// scoring requests with an unavailable condition until a reload succeeds.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting scoring service...")

	if s.injectedStore != nil {
		s.store = s.injectedStore
	} else {
		store, err := repository.Open(s.storePath)
		if err != nil {
			return fmt.Errorf("open record store: %w", err)
		}
		s.store = store
	}

	engineOpts := []scoring.Option{
		scoring.WithArtifactPath(s.modelPath),
		scoring.WithThreshold(s.threshold),
	}
	if s.injectedClf != nil {
		engineOpts = append(engineOpts, scoring.WithClassifier(s.injectedClf))
	}
	s.engine = scoring.NewEngine(engineOpts...)

	if err := s.engine.EnsureLoaded(ctx); err != nil {
		metrics.SetModelLoaded(false)
		metrics.RecordModelLoadFailure()
		s.logger.Warn(ctx, "classifier not loaded; scoring requests will be rejected until reload",
			logger.String("model_path", s.modelPath),
			logger.Error(err),
		)
	} else {
		metrics.SetModelLoaded(true)
	}

	s.started = true
	s.logger.Info(ctx, "scoring service started",
		logger.String("store_path", s.storePath),
		logger.Float64("threshold", s.threshold),
		logger.Bool("model_loaded", s.engine.Loaded()),
	)
	return nil
}

// Stop releases the record store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Error(context.Background(), "closing record store", logger.Error(err))
		}
	}
	s.started = false
	s.logger.Info(context.Background(), "scoring service stopped")
}

// Predict runs the full pipeline on one raw request: validate, derive BMI,
// assemble the feature vector, score, persist. Any stage failure
// short-circuits; no partial record is ever written.
func (s *Service) Predict(ctx context.Context, raw map[string]string) (Outcome, error) {
	input, err := validate.Validate(ctx, raw)
	if err != nil {
		metrics.RecordValidationFailure()
		return Outcome{}, err
	}

	vector, err := features.Assemble(ctx, input.Values())
	if err != nil {
		// Cannot happen after a successful validation pass; an occurrence
		// means the field tables diverged.
		s.logger.Error(ctx, "feature assembly failed after validation", logger.Error(err))
		return Outcome{}, fmt.Errorf("assemble features: %w", err)
	}

	start := time.Now()
	prob, err := s.engine.Score(ctx, vector)
	if err != nil {
		if errors.Is(err, scoring.ErrUnavailable) {
			metrics.SetModelLoaded(false)
			return Outcome{}, err
		}
		metrics.RecordInferenceError()
		return Outcome{}, err
	}
	metrics.ObserveInferenceDuration(float64(time.Since(start).Microseconds()) / 1000)
	metrics.ObserveProbability(prob)

	result := s.engine.Decide(prob)

	id, err := s.store.Create(ctx, input, prob, result)
	if err != nil {
		return Outcome{}, err
	}

	level := RiskLow
	if result {
		level = RiskHigh
	}
	metrics.RecordPrediction(level)

	s.logger.Info(ctx, "request scored",
		logger.Uint64("record_id", id),
		logger.Float64("probability", prob),
		logger.Bool("result", result),
	)

	return Outcome{
		RecordID:    id,
		Probability: prob,
		Result:      result,
		RiskLevel:   level,
		Threshold:   s.engine.Threshold(),
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// Record returns a stored prediction record by id.
func (s *Service) Record(ctx context.Context, id uint64) (repository.Record, error) {
	return s.store.Get(ctx, id)
}

// ReloadModel retries the classifier load. Exposed for operators; requests
// never trigger it.
func (s *Service) ReloadModel(ctx context.Context) error {
	err := s.engine.Reload(ctx)
	metrics.SetModelLoaded(err == nil)
	if err != nil {
		metrics.RecordModelLoadFailure()
	}
	return err
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":   s.started,
		"threshold": s.threshold,
	}
	if s.started {
		stats["model_loaded"] = s.engine.Loaded()
		records := s.store.Count(context.Background())
		stats["records"] = records
		metrics.UpdateRecordsTotal(records)
	}
	return stats
}
