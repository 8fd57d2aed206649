package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	repository "github.com/okian/glyco/internal/adapters/repository"
	"github.com/okian/glyco/pkg/logger"
	"github.com/okian/glyco/pkg/report"
)

// DownloadHandler serves rendered report documents for stored records.
type DownloadHandler struct {
	deps     Dependencies
	reporter *report.Generator
}

// NewDownloadHandler creates a handler bound to the given dependencies.
func NewDownloadHandler(deps Dependencies, reporter *report.Generator) *DownloadHandler {
	if reporter == nil {
		reporter = report.New()
	}
	return &DownloadHandler{deps: deps, reporter: reporter}
}

// HandleDownload processes GET /download/{id} requests and streams the
// report as an attachment.
func (h *DownloadHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id, ok := recordID(r.URL.Path, "/download/")
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

	data, contentType, ext := h.reporter.Render(rec)

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", report.Filename(rec, ext)))
	_, _ = w.Write(data)
}
