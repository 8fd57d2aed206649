package service_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	service "github.com/okian/glyco/internal/app"
	"github.com/okian/glyco/pkg/logger"
)

// writeArtifact drops a small but real logistic-regression artifact into a
// temp dir. The weights lean on GenHlth, BMI, and Age so the at-risk and
// healthy inputs below land on opposite sides of the threshold.
func writeArtifact(t *testing.T) string {
	t.Helper()

	body := `{
  "format": "logreg/1",
  "features": ["HighBP", "HighChol", "GenHlth", "PhysHlth", "DiffWalk",
               "HeartDiseaseorAttack", "PhysActivity", "Gender", "Age", "BMI"],
  "coefficients": [0.45, 0.3, 0.55, 0.02, 0.25, 0.3, -0.2, 0.1, 0.15, 0.08],
  "intercept": -6.5
}`
	path := filepath.Join(t.TempDir(), "model.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	return path
}

func TestServiceEndToEnd(t *testing.T) {
	Convey("Given a service backed by a real store and classifier", t, func() {
		_ = logger.InitWithWriter(io.Discard)
		ctx := context.Background()

		svc := service.New(
			service.WithModelPath(writeArtifact(t)),
			service.WithStorePath(t.TempDir()),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		healthy := map[string]string{
			"height_cm": "175", "weight_kg": "68", "HighBP": "0", "HighChol": "0",
			"GenHlth": "1", "PhysHlth": "0", "DiffWalk": "0", "HeartDiseaseorAttack": "0",
			"PhysActivity": "1", "Gender": "0", "Age": "3",
		}
		atRisk := map[string]string{
			"height_cm": "165", "weight_kg": "120", "HighBP": "1", "HighChol": "1",
			"GenHlth": "5", "PhysHlth": "30", "DiffWalk": "1", "HeartDiseaseorAttack": "1",
			"PhysActivity": "0", "Gender": "1", "Age": "13",
		}

		Convey("When scoring a healthy profile", func() {
			out, err := svc.Predict(ctx, healthy)

			Convey("Then it should classify low risk and persist a record", func() {
				So(err, ShouldBeNil)
				So(out.Result, ShouldBeFalse)
				So(out.RiskLevel, ShouldEqual, service.RiskLow)
				So(out.Probability, ShouldBeLessThan, out.Threshold)
				So(out.RecordID, ShouldBeGreaterThan, 0)

				rec, err := svc.Record(ctx, out.RecordID)
				So(err, ShouldBeNil)
				So(rec.Probability, ShouldEqual, out.Probability)
				So(rec.Result, ShouldEqual, 0)
				So(rec.Input.BMI, ShouldEqual, 22.2)
			})
		})

		Convey("When scoring an at-risk profile", func() {
			out, err := svc.Predict(ctx, atRisk)

			Convey("Then it should classify high risk", func() {
				So(err, ShouldBeNil)
				So(out.Result, ShouldBeTrue)
				So(out.RiskLevel, ShouldEqual, service.RiskHigh)
				So(out.Probability, ShouldBeGreaterThan, out.Threshold)

				rec, err := svc.Record(ctx, out.RecordID)
				So(err, ShouldBeNil)
				So(rec.Result, ShouldEqual, 1)
				So(rec.Input.BMI, ShouldEqual, 44.1)
			})
		})

		Convey("When scoring both profiles in sequence", func() {
			first, err := svc.Predict(ctx, healthy)
			So(err, ShouldBeNil)
			second, err := svc.Predict(ctx, atRisk)
			So(err, ShouldBeNil)

			Convey("Then record ids should ascend", func() {
				So(second.RecordID, ShouldEqual, first.RecordID+1)
			})

			Convey("And stats should count both records", func() {
				stats := svc.GetStats()
				So(stats["model_loaded"], ShouldBeTrue)
				So(stats["records"], ShouldEqual, 2)
			})
		})
	})
}
