package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	repository "github.com/okian/glyco/internal/adapters/repository"
	"github.com/okian/glyco/pkg/logger"
)

// RecordHandler serves stored prediction records.
type RecordHandler struct {
	deps Dependencies
}

// NewRecordHandler creates a handler bound to the given dependencies.
func NewRecordHandler(deps Dependencies) *RecordHandler {
	return &RecordHandler{deps: deps}
}

// recordResponse is the JSON view of a stored record.
type recordResponse struct {
	ID          uint64             `json:"id"`
	CreatedAt   time.Time          `json:"created_at"`
	Input       map[string]float64 `json:"input"`
	Probability float64            `json:"prob"`
	Result      int                `json:"result"`
	RiskLevel   string             `json:"risk_level"`
}

// HandleGetRecord processes GET /record/{id} requests.
func (h *RecordHandler) HandleGetRecord(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id, ok := recordID(r.URL.Path, "/record/")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid record id")
		return
	}

	rec, err := h.deps.Record(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "record not found")
			return
		}
		logger.Get().Error(r.Context(), "record lookup failed",
			logger.Uint64("record_id", id), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, toRecordResponse(rec))
}

func toRecordResponse(rec repository.Record) recordResponse {
	level := "low"
	if rec.Result == 1 {
		level = "high"
	}
	return recordResponse{
		ID:          rec.ID,
		CreatedAt:   rec.CreatedAt,
		Input:       rec.Input.Values(),
		Probability: rec.Probability,
		Result:      rec.Result,
		RiskLevel:   level,
	}
}

// recordID extracts a positive numeric id from a path like /record/42.
func recordID(path, prefix string) (uint64, bool) {
	raw := strings.TrimPrefix(path, prefix)
	if raw == "" || strings.Contains(raw, "/") {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
