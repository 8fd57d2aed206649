package report

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/okian/glyco/internal/adapters/repository"
)

// Colors used by the risk box.
const (
	colHeader   = "#1A80B3"
	colHighRisk = "#E64C4C"
	colLowRisk  = "#4CCC66"
	colFooter   = "#808080"
)

// pdfText is one positioned text element of the generated page.
type pdfText struct {
	Value    string   `json:"value"`
	Position []int    `json:"position,omitempty"`
	Anchor   string   `json:"anchor,omitempty"`
	Dx       int      `json:"dx,omitempty"`
	Dy       int      `json:"dy,omitempty"`
	Font     *pdfFont `json:"font,omitempty"`
	FillCol  string   `json:"fillCol,omitempty"`
}

type pdfFont struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

type pdfBox struct {
	Rect    []int  `json:"rect"`
	FillCol string `json:"fillCol"`
}

type pdfContent struct {
	Text  []pdfText `json:"text,omitempty"`
	Boxes []pdfBox  `json:"box,omitempty"`
}

type pdfPage struct {
	Content pdfContent `json:"content"`
}

// pdfSpec is the page description handed to pdfcpu's create API.
type pdfSpec struct {
	Paper     string             `json:"paper"`
	MediaUnit string             `json:"mediaUnit"`
	Origin    string             `json:"origin"`
	Pages     map[string]pdfPage `json:"pages"`
}

// PDF renders the record as a single-page PDF report.
func (g *Generator) PDF(rec repository.Record) ([]byte, error) {
	spec := g.buildSpec(rec)

	js, err := json.Marshal(spec)
	if err != nil {
		return nil, fmt.Errorf("marshal page spec: %w", err)
	}

	var out bytes.Buffer
	if err := api.Create(nil, bytes.NewReader(js), &out, model.NewDefaultConfiguration()); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return out.Bytes(), nil
}

// buildSpec lays out the report: header, record details, a colored risk box,
// the answer table, and the disclaimer footer. Coordinates are points on
// letter paper with the origin at the lower left.
func (g *Generator) buildSpec(rec repository.Record) pdfSpec {
	const (
		pageHeight = 792 // letter, points
		pageWidth  = 612
		leftMargin = 50
		rowStep    = 22
	)

	text := []pdfText{
		{Value: g.title, Anchor: "tc", Dy: -70, Font: &pdfFont{Name: "Helvetica-Bold", Size: 20}, FillCol: colHeader},
		{Value: g.subtitle, Anchor: "tc", Dy: -100, Font: &pdfFont{Name: "Helvetica", Size: 12}, FillCol: colHeader},

		{Value: "Report details", Position: []int{leftMargin, pageHeight - 140}, Font: &pdfFont{Name: "Helvetica-Bold", Size: 14}},
		{Value: fmt.Sprintf("Report number: %d", rec.ID), Position: []int{leftMargin, pageHeight - 165}, Font: &pdfFont{Name: "Helvetica", Size: 11}},
		{Value: fmt.Sprintf("Date: %s", rec.CreatedAt.Format("2006-01-02 15:04")), Position: []int{leftMargin, pageHeight - 185}, Font: &pdfFont{Name: "Helvetica", Size: 11}},
		{Value: fmt.Sprintf("Risk probability: %.1f%%", rec.Probability*100), Position: []int{leftMargin, pageHeight - 205}, Font: &pdfFont{Name: "Helvetica", Size: 11}},
		{Value: fmt.Sprintf("Result: %s", riskText(rec.Result)), Position: []int{leftMargin, pageHeight - 225}, Font: &pdfFont{Name: "Helvetica", Size: 11}},

		{Value: riskText(rec.Result), Position: []int{460, pageHeight - 220}, Font: &pdfFont{Name: "Helvetica-Bold", Size: 16}, FillCol: "#FFFFFF"},

		{Value: "Your answers", Position: []int{leftMargin, pageHeight - 290}, Font: &pdfFont{Name: "Helvetica-Bold", Size: 13}},
	}

	values := rec.Input.Values()
	y := pageHeight - 320
	for _, key := range displayOrder {
		text = append(text,
			pdfText{Value: labels[key], Position: []int{leftMargin + 10, y}, Font: &pdfFont{Name: "Helvetica", Size: 11}},
			pdfText{Value: formatValue(key, values[key]), Position: []int{320, y}, Font: &pdfFont{Name: "Helvetica", Size: 11}},
		)
		y -= rowStep
	}

	text = append(text, pdfText{
		Value: disclaimer, Anchor: "bc", Dy: 30,
		Font: &pdfFont{Name: "Helvetica-Oblique", Size: 9}, FillCol: colFooter,
	})

	boxCol := colLowRisk
	if rec.Result == 1 {
		boxCol = colHighRisk
	}

	return pdfSpec{
		Paper:     "Letter",
		MediaUnit: "points",
		Origin:    "lowerLeft",
		Pages: map[string]pdfPage{
			"1": {Content: pdfContent{
				Text:  text,
				Boxes: []pdfBox{{Rect: []int{380, pageHeight - 240, 540, pageHeight - 190}, FillCol: boxCol}},
			}},
		},
	}
}
