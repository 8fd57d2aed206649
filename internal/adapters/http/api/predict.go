package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"github.com/okian/glyco/internal/domain/scoring"
	"github.com/okian/glyco/internal/domain/validate"
	"github.com/okian/glyco/pkg/logger"
)

// maxRequestBody bounds the JSON payload size; survey answers are tiny.
const maxRequestBody = 64 << 10

// PredictHandler serves the JSON scoring endpoint.
type PredictHandler struct {
	deps Dependencies
}

// NewPredictHandler creates a handler bound to the given dependencies.
func NewPredictHandler(deps Dependencies) *PredictHandler {
	return &PredictHandler{deps: deps}
}

// HandlePredict processes POST /api/predict requests.
func (h *PredictHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !isJSONRequest(r) {
		writeError(w, http.StatusBadRequest, "JSON request required")
		return
	}

	var payload map[string]any
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "malformed JSON body")
		return
	}

	outcome, err := h.deps.Predict(r.Context(), normalize(payload))
	if err != nil {
		var verrs validate.Errors
		switch {
		case errors.As(err, &verrs):
			writeJSON(w, http.StatusBadRequest, validationResponse{Errors: verrs.Messages()})
		case errors.Is(err, scoring.ErrUnavailable):
			// The engine error names the artifact path it tried; that is the
			// detail an operator needs and carries no internal state.
			writeError(w, http.StatusServiceUnavailable, err.Error())
		default:
			logger.Get().Error(r.Context(), "scoring request failed", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, predictionResponse{
		Probability: round4(outcome.Probability),
		Result:      boolToInt(outcome.Result),
		RiskLevel:   outcome.RiskLevel,
		RecordID:    outcome.RecordID,
		Threshold:   outcome.Threshold,
	})
}

func isJSONRequest(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}

// normalize flattens a decoded JSON object into the string map the
// validation layer consumes. Numbers keep their shortest representation so
// integer-coded answers survive the round trip.
func normalize(payload map[string]any) map[string]string {
	raw := make(map[string]string, len(payload))
	for key, value := range payload {
		switch v := value.(type) {
		case string:
			raw[key] = v
		case float64:
			raw[key] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			if v {
				raw[key] = "1"
			} else {
				raw[key] = "0"
			}
		case nil:
			raw[key] = ""
		default:
			raw[key] = fmt.Sprintf("%v", v)
		}
	}
	return raw
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
