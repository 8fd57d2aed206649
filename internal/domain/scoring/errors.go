package scoring

import "errors"

// Sentinel kinds for scoring errors.
var (
	// ErrUnavailable marks every failure caused by a classifier that could
	// not be loaded. Callers translate it to a service-unavailable response.
	ErrUnavailable = errors.New("model unavailable")

	// ErrArtifact marks a structurally invalid model artifact.
	ErrArtifact = errors.New("invalid model artifact")

	// ErrPrediction marks a classifier output outside the probability range.
	ErrPrediction = errors.New("invalid prediction")
)
