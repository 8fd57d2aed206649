// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"math"
	"net/http"

	repository "github.com/okian/glyco/internal/adapters/repository"
	service "github.com/okian/glyco/internal/app"
	"github.com/okian/glyco/pkg/report"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Predict runs the full scoring pipeline on raw key/value input.
	Predict(ctx context.Context, raw map[string]string) (service.Outcome, error)

	// Record returns a stored prediction by id.
	Record(ctx context.Context, id uint64) (repository.Record, error)
}

// StatsProvider defines the interface for getting service statistics.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// Server wires HTTP routes for the scoring API.
type Server struct {
	predictHandler   *PredictHandler
	formHandler      *FormHandler
	recordHandler    *RecordHandler
	downloadHandler  *DownloadHandler
	statsHandler     *StatsHandler
	healthHandler    *HealthHandler
	dashboardHandler *dashboardHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, reporter *report.Generator) *Server {
	return &Server{
		predictHandler:   NewPredictHandler(deps),
		formHandler:      NewFormHandler(deps),
		recordHandler:    NewRecordHandler(deps),
		downloadHandler:  NewDownloadHandler(deps, reporter),
		statsHandler:     NewStatsHandler(statsProvider),
		healthHandler:    NewHealthHandler(),
		dashboardHandler: newDashboardHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/dashboard", s.dashboardHandler.HandleDashboard)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/predict", MetricsMiddleware(s.formHandler.HandlePostForm, "predict"))
	mux.HandleFunc("/api/predict", MetricsMiddleware(s.predictHandler.HandlePredict, "api_predict"))
	mux.HandleFunc("/record/", MetricsMiddleware(s.recordHandler.HandleGetRecord, "record"))
	mux.HandleFunc("/download/", MetricsMiddleware(s.downloadHandler.HandleDownload, "download"))
}

// predictionResponse mirrors the OpenAPI schema for POST /api/predict.
type predictionResponse struct {
	Probability float64 `json:"probability"`
	Result      int     `json:"result"`
	RiskLevel   string  `json:"risk_level"`
	RecordID    uint64  `json:"record_id"`
	Threshold   float64 `json:"threshold"`
}

// validationResponse carries the full batch of field error messages.
type validationResponse struct {
	Errors []string `json:"errors"`
}

// errorResponse carries a single error condition.
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// round4 rounds probabilities for the API payload.
func round4(x float64) float64 {
	return math.Round(x*1e4) / 1e4
}
