// Package validate normalizes and range-checks raw survey input and derives
// BMI. Field errors are accumulated across the whole request and returned as
// one batch; nothing here is fatal to the process.
package validate

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/okian/glyco/internal/domain/features"
)

// Supplementary physical fields. They are not model inputs themselves; they
// exist to derive BMI and are persisted for record keeping.
const (
	FieldHeightCM = "height_cm"
	FieldWeightKG = "weight_kg"
)

// Range bounds, all inclusive.
const (
	minHeightCM = 90
	maxHeightCM = 230
	minWeightKG = 25
	maxWeightKG = 220
	minAgeCode  = 1
	maxAgeCode  = 13
	minGenHlth  = 1
	maxGenHlth  = 5
	minPhysHlth = 0
	maxPhysHlth = 30

	// Plausibility bounds for the derived BMI.
	minBMI = 10
	maxBMI = 80
)

// Input holds a fully validated scoring request: the nine supplied model
// fields, the derived BMI, and the two raw physical fields kept for display.
type Input struct {
	HeightCM             float64 `json:"height_cm"`
	WeightKG             float64 `json:"weight_kg"`
	HighBP               int     `json:"HighBP"`
	HighChol             int     `json:"HighChol"`
	GenHlth              int     `json:"GenHlth"`
	PhysHlth             int     `json:"PhysHlth"`
	DiffWalk             int     `json:"DiffWalk"`
	HeartDiseaseOrAttack int     `json:"HeartDiseaseorAttack"`
	PhysActivity         int     `json:"PhysActivity"`
	Gender               int     `json:"Gender"`
	Age                  int     `json:"Age"`
	BMI                  float64 `json:"BMI"`
}

// Values flattens the input into a field-name map. It carries every selected
// feature plus the two physical fields, so it serves both feature assembly
// and record display.
func (in Input) Values() map[string]float64 {
	return map[string]float64{
		FieldHeightCM:                 in.HeightCM,
		FieldWeightKG:                 in.WeightKG,
		features.HighBP:               float64(in.HighBP),
		features.HighChol:             float64(in.HighChol),
		features.GenHlth:              float64(in.GenHlth),
		features.PhysHlth:             float64(in.PhysHlth),
		features.DiffWalk:             float64(in.DiffWalk),
		features.HeartDiseaseOrAttack: float64(in.HeartDiseaseOrAttack),
		features.PhysActivity:         float64(in.PhysActivity),
		features.Gender:               float64(in.Gender),
		features.Age:                  float64(in.Age),
		features.BMI:                  in.BMI,
	}
}

// fieldKind selects the coercion rule for a raw field.
type fieldKind int

const (
	kindFloat fieldKind = iota // parsed as float64
	kindInt                    // parsed as float then truncated, accepts "1.0"
)

// fieldSpec describes one required raw field: how to coerce it and, when
// bounded, the inclusive range it must fall in.
type fieldSpec struct {
	name     string
	kind     fieldKind
	min, max float64
	bounded  bool
	rangeMsg string
}

// requiredFields lists the eleven raw fields in a fixed order so error
// batches come back deterministically.
var requiredFields = []fieldSpec{
	{name: FieldHeightCM, kind: kindFloat, min: minHeightCM, max: maxHeightCM, bounded: true,
		rangeMsg: "height must be between 90 and 230 cm"},
	{name: FieldWeightKG, kind: kindFloat, min: minWeightKG, max: maxWeightKG, bounded: true,
		rangeMsg: "weight must be between 25 and 220 kg"},
	{name: features.HighBP, kind: kindInt},
	{name: features.HighChol, kind: kindInt},
	{name: features.GenHlth, kind: kindInt, min: minGenHlth, max: maxGenHlth, bounded: true,
		rangeMsg: "general health must be between 1 (excellent) and 5 (poor)"},
	{name: features.PhysHlth, kind: kindInt, min: minPhysHlth, max: maxPhysHlth, bounded: true,
		rangeMsg: "days of poor physical health must be between 0 and 30"},
	{name: features.DiffWalk, kind: kindInt},
	{name: features.HeartDiseaseOrAttack, kind: kindInt},
	{name: features.PhysActivity, kind: kindInt},
	{name: features.Gender, kind: kindInt},
	{name: features.Age, kind: kindInt, min: minAgeCode, max: maxAgeCode, bounded: true,
		rangeMsg: "age category must be between 1 and 13 (BRFSS coding)"},
}

// Validate coerces and range-checks raw and derives BMI. On failure it
// returns a non-empty Errors batch; the Input is only meaningful when the
// error is nil.
func Validate(_ context.Context, raw map[string]string) (Input, error) {
	var (
		errs   Errors
		values = make(map[string]float64, len(requiredFields))
	)

	for _, spec := range requiredFields {
		rawVal, ok := raw[spec.name]
		if !ok || strings.TrimSpace(rawVal) == "" {
			errs = append(errs, FieldError{
				Field:   spec.name,
				Message: fmt.Sprintf("required field missing: %s", spec.name),
			})
			continue
		}

		val, err := strconv.ParseFloat(strings.TrimSpace(rawVal), 64)
		if err != nil {
			errs = append(errs, FieldError{
				Field:   spec.name,
				Message: fmt.Sprintf("invalid value for %s: %s", spec.name, rawVal),
			})
			continue
		}
		if spec.kind == kindInt {
			val = math.Trunc(val)
		}

		if spec.bounded && (val < spec.min || val > spec.max) {
			errs = append(errs, FieldError{Field: spec.name, Message: spec.rangeMsg})
			continue
		}

		values[spec.name] = val
	}

	if len(errs) > 0 {
		return Input{}, errs
	}

	heightM := values[FieldHeightCM] / 100
	if heightM <= 0 {
		// Unreachable given the height range check; kept as a guard against
		// a future loosening of the bounds.
		return Input{}, Errors{{Field: FieldHeightCM, Message: "height must be positive"}}
	}
	bmi := round1(values[FieldWeightKG] / (heightM * heightM))
	if bmi < minBMI || bmi > maxBMI {
		return Input{}, Errors{{
			Field:   features.BMI,
			Message: fmt.Sprintf("computed BMI %.1f is outside the plausible range %d-%d", bmi, minBMI, maxBMI),
		}}
	}

	return Input{
		HeightCM:             values[FieldHeightCM],
		WeightKG:             values[FieldWeightKG],
		HighBP:               int(values[features.HighBP]),
		HighChol:             int(values[features.HighChol]),
		GenHlth:              int(values[features.GenHlth]),
		PhysHlth:             int(values[features.PhysHlth]),
		DiffWalk:             int(values[features.DiffWalk]),
		HeartDiseaseOrAttack: int(values[features.HeartDiseaseOrAttack]),
		PhysActivity:         int(values[features.PhysActivity]),
		Gender:               int(values[features.Gender]),
		Age:                  int(values[features.Age]),
		BMI:                  bmi,
	}, nil
}

// round1 rounds to one decimal place, matching the BMI display contract.
func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
