// Package report renders a stored prediction record into a downloadable
// document. PDF output is produced through pdfcpu's create API; when that
// fails the exporter degrades to a plain-text rendering rather than
// surfacing an error to the caller.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/okian/glyco/internal/adapters/repository"
	"github.com/okian/glyco/internal/domain/features"
	"github.com/okian/glyco/internal/domain/validate"
	"github.com/okian/glyco/pkg/metrics"
)

// Output formats.
const (
	FormatPDF  = "pdf"
	FormatText = "text"
)

const disclaimer = "Screening tool only. Not a medical diagnosis. Consult a physician."

// labels maps raw field names to human-readable report lines.
var labels = map[string]string{
	validate.FieldHeightCM:        "Height (cm)",
	validate.FieldWeightKG:        "Weight (kg)",
	features.HighBP:               "High blood pressure",
	features.HighChol:             "High cholesterol",
	features.GenHlth:              "General health (1=excellent .. 5=poor)",
	features.PhysHlth:             "Days of poor physical health (last 30)",
	features.DiffWalk:             "Difficulty walking",
	features.HeartDiseaseOrAttack: "History of heart disease or attack",
	features.PhysActivity:         "Regular physical activity",
	features.Gender:               "Gender (0=female, 1=male)",
	features.Age:                  "Age category",
	features.BMI:                  "Body-mass index (derived)",
}

// displayOrder lists report rows: physical fields first, then the model
// inputs in training order.
var displayOrder = append([]string{validate.FieldHeightCM, validate.FieldWeightKG}, features.Selected...)

// Generator renders records into downloadable documents.
type Generator struct {
	pdfEnabled bool
	title      string
	subtitle   string
}

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithPDFDisabled forces the plain-text fallback. Tests use this to avoid
// exercising the PDF engine.
func WithPDFDisabled() Option {
	return func(g *Generator) {
		g.pdfEnabled = false
	}
}

// WithTitle overrides the report heading.
func WithTitle(title, subtitle string) Option {
	return func(g *Generator) {
		if title != "" {
			g.title = title
		}
		if subtitle != "" {
			g.subtitle = subtitle
		}
	}
}

// New constructs a Generator with default configuration.
func New(opts ...Option) *Generator {
	g := &Generator{
		pdfEnabled: true,
		title:      "Diabetes Risk Assessment Report",
		subtitle:   "Type 2 diabetes risk screening",
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Render produces the report for a record, preferring PDF and falling back
// to plain text. It returns the document bytes, the MIME type, and the file
// extension.
func (g *Generator) Render(rec repository.Record) (data []byte, contentType, ext string) {
	if g.pdfEnabled {
		pdf, err := g.PDF(rec)
		if err == nil {
			metrics.RecordReport(FormatPDF)
			return pdf, "application/pdf", "pdf"
		}
	}
	metrics.RecordReport(FormatText)
	return g.Text(rec), "text/plain; charset=utf-8", "txt"
}

// Filename returns the download name for a record's report.
func Filename(rec repository.Record, ext string) string {
	return fmt.Sprintf("diabetes_risk_report_%d_%s.%s", rec.ID, time.Now().Format("20060102"), ext)
}

// Text renders the plain-text fallback report.
func (g *Generator) Text(rec repository.Record) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n%s\n\n", g.title, g.subtitle)
	fmt.Fprintf(&b, "Report number: %d\n", rec.ID)
	fmt.Fprintf(&b, "Date: %s\n", rec.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Risk probability: %.1f%%\n", rec.Probability*100)
	fmt.Fprintf(&b, "Result: %s\n\n", riskText(rec.Result))

	b.WriteString("Your answers\n")
	values := rec.Input.Values()
	for _, key := range displayOrder {
		fmt.Fprintf(&b, "  %-42s %s\n", labels[key], formatValue(key, values[key]))
	}

	fmt.Fprintf(&b, "\n%s\n", disclaimer)
	return []byte(b.String())
}

func riskText(result int) string {
	if result == 1 {
		return "High risk"
	}
	return "Low risk"
}

// formatValue renders BMI with one decimal and everything else as a whole
// number or plain float.
func formatValue(key string, v float64) string {
	if key == features.BMI {
		return fmt.Sprintf("%.1f", v)
	}
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}
