package scoring_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/okian/glyco/internal/domain/features"
	"github.com/okian/glyco/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

// stubClassifier returns a fixed probability.
type stubClassifier struct {
	prob float64
	err  error
}

func (s *stubClassifier) PredictProba(_ context.Context, _ features.Vector) (float64, error) {
	return s.prob, s.err
}

func TestEngineDecide(t *testing.T) {
	Convey("Given an engine with the default threshold", t, func() {
		e := scoring.NewEngine(scoring.WithClassifier(&stubClassifier{prob: 0.3}))

		Convey("Then the boundary value should classify as low risk", func() {
			So(e.Decide(scoring.DefaultThreshold), ShouldBeFalse)
		})

		Convey("And anything strictly above should classify as high risk", func() {
			So(e.Decide(scoring.DefaultThreshold+1e-9), ShouldBeTrue)
		})

		Convey("And the threshold accessor should expose the default", func() {
			So(e.Threshold(), ShouldEqual, 0.502)
		})
	})

	Convey("Given an engine with an overridden threshold", t, func() {
		e := scoring.NewEngine(
			scoring.WithClassifier(&stubClassifier{prob: 0.6}),
			scoring.WithThreshold(0.7),
		)

		Convey("Then decisions should honor the override", func() {
			So(e.Decide(0.7), ShouldBeFalse)
			So(e.Decide(0.71), ShouldBeTrue)
		})
	})
}

func TestEngineScore(t *testing.T) {
	ctx := context.Background()

	Convey("Given an engine with an injected classifier", t, func() {
		e := scoring.NewEngine(scoring.WithClassifier(&stubClassifier{prob: 0.9}))

		Convey("When scoring a vector", func() {
			prob, err := e.Score(ctx, features.Vector{})

			Convey("Then it should return the classifier probability", func() {
				So(err, ShouldBeNil)
				So(prob, ShouldEqual, 0.9)
			})
		})
	})

	Convey("Given a classifier that reports out-of-range probabilities", t, func() {
		e := scoring.NewEngine(scoring.WithClassifier(&stubClassifier{prob: 1.5}))

		Convey("When scoring", func() {
			_, err := e.Score(ctx, features.Vector{})

			Convey("Then the engine should reject the prediction", func() {
				So(errors.Is(err, scoring.ErrPrediction), ShouldBeTrue)
			})
		})
	})
}

func TestEngineLazyLoad(t *testing.T) {
	ctx := context.Background()

	Convey("Given an engine backed by a counting loader", t, func() {
		var loads atomic.Int32
		e := scoring.NewEngine(scoring.WithLoader(func(string) (scoring.Classifier, error) {
			loads.Add(1)
			return &stubClassifier{prob: 0.5}, nil
		}))

		Convey("When EnsureLoaded is called twice", func() {
			So(e.EnsureLoaded(ctx), ShouldBeNil)
			So(e.EnsureLoaded(ctx), ShouldBeNil)

			Convey("Then the loader should run exactly once", func() {
				So(loads.Load(), ShouldEqual, 1)
				So(e.Loaded(), ShouldBeTrue)
			})
		})

		Convey("When many goroutines race the first load", func() {
			var wg sync.WaitGroup
			for i := 0; i < 16; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_ = e.EnsureLoaded(ctx)
				}()
			}
			wg.Wait()

			Convey("Then the singleton should still load exactly once", func() {
				So(loads.Load(), ShouldEqual, 1)
			})
		})
	})

	Convey("Given a loader that always fails", t, func() {
		var loads atomic.Int32
		e := scoring.NewEngine(scoring.WithLoader(func(string) (scoring.Classifier, error) {
			loads.Add(1)
			return nil, errors.New("artifact missing")
		}))

		Convey("When scoring repeatedly", func() {
			_, err1 := e.Score(ctx, features.Vector{})
			_, err2 := e.Score(ctx, features.Vector{})

			Convey("Then both calls should report unavailability", func() {
				So(errors.Is(err1, scoring.ErrUnavailable), ShouldBeTrue)
				So(errors.Is(err2, scoring.ErrUnavailable), ShouldBeTrue)
			})

			Convey("And the failure should be cached, not retried", func() {
				So(loads.Load(), ShouldEqual, 1)
				So(e.Loaded(), ShouldBeFalse)
			})
		})

		Convey("When an operator triggers a reload", func() {
			_ = e.EnsureLoaded(ctx)
			err := e.Reload(ctx)

			Convey("Then the loader should be retried", func() {
				So(err, ShouldNotBeNil)
				So(loads.Load(), ShouldEqual, 2)
			})
		})
	})
}
