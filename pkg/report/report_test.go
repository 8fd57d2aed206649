package report_test

import (
	"strings"
	"testing"
	"time"

	"github.com/okian/glyco/internal/adapters/repository"
	"github.com/okian/glyco/internal/domain/validate"
	"github.com/okian/glyco/pkg/report"
	. "github.com/smartystreets/goconvey/convey"
)

func sampleRecord() repository.Record {
	return repository.Record{
		ID:        12,
		CreatedAt: time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC),
		Input: validate.Input{
			HeightCM: 170, WeightKG: 70,
			HighBP: 1, HighChol: 0, GenHlth: 2, PhysHlth: 0,
			DiffWalk: 0, HeartDiseaseOrAttack: 0, PhysActivity: 1,
			Gender: 1, Age: 7, BMI: 24.2,
		},
		Probability: 0.314,
		Result:      0,
	}
}

func TestTextReport(t *testing.T) {
	Convey("Given a low-risk record", t, func() {
		g := report.New()

		Convey("When rendering the text report", func() {
			body := string(g.Text(sampleRecord()))

			Convey("Then it should carry the record details", func() {
				So(body, ShouldContainSubstring, "Report number: 12")
				So(body, ShouldContainSubstring, "Date: 2025-06-01 12:30")
				So(body, ShouldContainSubstring, "Risk probability: 31.4%")
				So(body, ShouldContainSubstring, "Result: Low risk")
			})

			Convey("And every answer with its readable label", func() {
				So(body, ShouldContainSubstring, "Height (cm)")
				So(body, ShouldContainSubstring, "Body-mass index (derived)")
				So(body, ShouldContainSubstring, "24.2")
			})

			Convey("And the screening disclaimer", func() {
				So(body, ShouldContainSubstring, "Not a medical diagnosis")
			})
		})
	})

	Convey("Given a high-risk record", t, func() {
		rec := sampleRecord()
		rec.Probability = 0.91
		rec.Result = 1

		Convey("When rendering", func() {
			body := string(report.New().Text(rec))

			Convey("Then the result line should flip", func() {
				So(body, ShouldContainSubstring, "Result: High risk")
			})
		})
	})
}

func TestRenderFallback(t *testing.T) {
	Convey("Given a generator with PDF rendering disabled", t, func() {
		g := report.New(report.WithPDFDisabled())

		Convey("When rendering a record", func() {
			data, contentType, ext := g.Render(sampleRecord())

			Convey("Then the plain-text fallback should be used", func() {
				So(contentType, ShouldStartWith, "text/plain")
				So(ext, ShouldEqual, "txt")
				So(strings.Contains(string(data), "Report number: 12"), ShouldBeTrue)
			})
		})
	})
}

func TestFilename(t *testing.T) {
	Convey("Given a record", t, func() {
		name := report.Filename(sampleRecord(), "pdf")

		Convey("Then the download name should embed id and date", func() {
			So(name, ShouldStartWith, "diabetes_risk_report_12_")
			So(name, ShouldEndWith, ".pdf")
		})
	})
}
