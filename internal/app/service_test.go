package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	repository "github.com/okian/glyco/internal/adapters/repository"
	service "github.com/okian/glyco/internal/app"
	"github.com/okian/glyco/internal/domain/features"
	"github.com/okian/glyco/internal/domain/scoring"
	"github.com/okian/glyco/internal/domain/validate"
	"github.com/okian/glyco/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// stubClassifier returns a fixed probability.
type stubClassifier struct {
	prob float64
}

func (s *stubClassifier) PredictProba(_ context.Context, _ features.Vector) (float64, error) {
	return s.prob, nil
}

// recordingStore tracks creates in memory.
type recordingStore struct {
	records map[uint64]repository.Record
	next    uint64
}

func newRecordingStore() *recordingStore {
	return &recordingStore{records: make(map[uint64]repository.Record)}
}

func (s *recordingStore) Create(_ context.Context, input validate.Input, probability float64, result bool) (uint64, error) {
	s.next++
	res := 0
	if result {
		res = 1
	}
	s.records[s.next] = repository.Record{ID: s.next, Input: input, Probability: probability, Result: res}
	return s.next, nil
}

func (s *recordingStore) Get(_ context.Context, id uint64) (repository.Record, error) {
	rec, ok := s.records[id]
	if !ok {
		return repository.Record{}, repository.ErrNotFound
	}
	return rec, nil
}

func (s *recordingStore) Count(_ context.Context) int { return len(s.records) }
func (s *recordingStore) Close() error                { return nil }

func validRaw() map[string]string {
	return map[string]string{
		"height_cm":            "170",
		"weight_kg":            "70",
		"HighBP":               "1",
		"HighChol":             "0",
		"GenHlth":              "2",
		"PhysHlth":             "0",
		"DiffWalk":             "0",
		"HeartDiseaseorAttack": "0",
		"PhysActivity":         "1",
		"Gender":               "1",
		"Age":                  "7",
	}
}

func startService(t *testing.T, opts ...service.Option) *service.Service {
	t.Helper()
	svc := service.New(opts...)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(svc.Stop)
	return svc
}

func TestPredictPipeline(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service with a low-probability classifier", t, func() {
		store := newRecordingStore()
		svc := startService(t,
			service.WithStore(store),
			service.WithClassifier(&stubClassifier{prob: 0.3}),
		)

		Convey("When scoring a valid request", func() {
			out, err := svc.Predict(ctx, validRaw())

			Convey("Then the outcome should be low risk", func() {
				So(err, ShouldBeNil)
				So(out.Probability, ShouldAlmostEqual, 0.3, 1e-12)
				So(out.Result, ShouldBeFalse)
				So(out.RiskLevel, ShouldEqual, service.RiskLow)
				So(out.Threshold, ShouldEqual, 0.502)
			})

			Convey("And a record should be persisted with the derived BMI", func() {
				rec, err := svc.Record(ctx, out.RecordID)
				So(err, ShouldBeNil)
				So(rec.Input.BMI, ShouldEqual, 24.2)
				So(rec.Result, ShouldEqual, 0)
			})
		})
	})

	Convey("Given a service with a high-probability classifier", t, func() {
		svc := startService(t,
			service.WithStore(newRecordingStore()),
			service.WithClassifier(&stubClassifier{prob: 0.9}),
		)

		Convey("When scoring the same request", func() {
			out, err := svc.Predict(ctx, validRaw())

			Convey("Then the outcome should be high risk", func() {
				So(err, ShouldBeNil)
				So(out.Result, ShouldBeTrue)
				So(out.RiskLevel, ShouldEqual, service.RiskHigh)
			})
		})
	})

	Convey("Given a classifier sitting exactly on the threshold", t, func() {
		svc := startService(t,
			service.WithStore(newRecordingStore()),
			service.WithClassifier(&stubClassifier{prob: 0.502}),
		)

		Convey("When scoring", func() {
			out, err := svc.Predict(ctx, validRaw())

			Convey("Then strict greater-than semantics should yield low risk", func() {
				So(err, ShouldBeNil)
				So(out.Result, ShouldBeFalse)
				So(out.RiskLevel, ShouldEqual, service.RiskLow)
			})
		})
	})

	Convey("Given an invalid request", t, func() {
		store := newRecordingStore()
		svc := startService(t,
			service.WithStore(store),
			service.WithClassifier(&stubClassifier{prob: 0.9}),
		)

		Convey("When scoring with an out-of-range weight", func() {
			raw := validRaw()
			raw["weight_kg"] = "500"
			_, err := svc.Predict(ctx, raw)

			Convey("Then a validation batch should come back", func() {
				var errs validate.Errors
				So(errors.As(err, &errs), ShouldBeTrue)
				So(errs, ShouldHaveLength, 1)
			})

			Convey("And nothing should be persisted", func() {
				So(store.Count(ctx), ShouldEqual, 0)
			})
		})
	})

	Convey("Given a service whose artifact is missing", t, func() {
		store := newRecordingStore()
		svc := startService(t,
			service.WithStore(store),
			service.WithModelPath(filepath.Join(t.TempDir(), "missing.json")),
		)

		Convey("When scoring a valid request", func() {
			_, err := svc.Predict(ctx, validRaw())

			Convey("Then the unavailable condition should surface", func() {
				So(errors.Is(err, scoring.ErrUnavailable), ShouldBeTrue)
			})

			Convey("And no record should be created", func() {
				So(store.Count(ctx), ShouldEqual, 0)
			})
		})
	})
}

func TestThresholdOverride(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service with a raised threshold", t, func() {
		svc := startService(t,
			service.WithStore(newRecordingStore()),
			service.WithClassifier(&stubClassifier{prob: 0.6}),
			service.WithThreshold(0.7),
		)

		Convey("When scoring", func() {
			out, err := svc.Predict(ctx, validRaw())

			Convey("Then the override should govern the decision", func() {
				So(err, ShouldBeNil)
				So(out.Result, ShouldBeFalse)
				So(out.Threshold, ShouldEqual, 0.7)
			})
		})
	})
}

func TestGetStats(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := startService(t,
			service.WithStore(newRecordingStore()),
			service.WithClassifier(&stubClassifier{prob: 0.3}),
		)

		Convey("When fetching stats", func() {
			stats := svc.GetStats()

			Convey("Then they should describe the running service", func() {
				So(stats["started"], ShouldEqual, true)
				So(stats["model_loaded"], ShouldEqual, true)
				So(stats["records"], ShouldEqual, 0)
				So(stats["threshold"], ShouldEqual, 0.502)
			})
		})
	})
}
