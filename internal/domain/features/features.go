// Package features maps a validated survey onto the fixed feature vector the
// classifier consumes. The vector is positional: the model was trained on
// exactly these ten columns in exactly this order.
package features

import (
	"context"
	"errors"
	"fmt"
)

// Model input field names. These are the column names the classifier was
// trained with and are case-sensitive on the wire.
const (
	HighBP               = "HighBP"
	HighChol             = "HighChol"
	GenHlth              = "GenHlth"
	PhysHlth             = "PhysHlth"
	DiffWalk             = "DiffWalk"
	HeartDiseaseOrAttack = "HeartDiseaseorAttack"
	PhysActivity         = "PhysActivity"
	Gender               = "Gender"
	Age                  = "Age"
	BMI                  = "BMI"
)

// Count is the number of model inputs.
const Count = 10

// Selected lists the model inputs in training order.
var Selected = []string{
	HighBP,
	HighChol,
	GenHlth,
	PhysHlth,
	DiffWalk,
	HeartDiseaseOrAttack,
	PhysActivity,
	Gender,
	Age,
	BMI,
}

// Vector is an ordered feature row ready for inference.
type Vector [Count]float64

// ErrMissingValue signals that a selected feature had no value. After a
// successful validation pass this cannot happen; callers should treat it as
// an internal invariant violation, not a user error.
var ErrMissingValue = errors.New("feature value missing")

// Assemble projects values onto the selected features in training order.
func Assemble(_ context.Context, values map[string]float64) (Vector, error) {
	var v Vector
	for i, name := range Selected {
		val, ok := values[name]
		if !ok {
			return Vector{}, fmt.Errorf("%w: %s", ErrMissingValue, name)
		}
		v[i] = val
	}
	return v, nil
}
