package probe

import "time"

// Config holds configuration for the scoring probe run.
type Config struct {
	BaseURL        string        // Base URL of the service
	NumSubmissions int           // Number of submissions to generate
	Workers        int           // Number of concurrent workers
	Timeout        time.Duration // HTTP request timeout
	OutputFile     string        // Output file for submissions
	LogFile        string        // Log file for probe output
	Verbose        bool          // Enable verbose logging
}

// Submission is one generated survey payload keyed for later verification.
type Submission struct {
	ProbeID string             `json:"probe_id"`
	Fields  map[string]float64 `json:"fields"`
}

// Prediction mirrors the scoring response from POST /api/predict.
type Prediction struct {
	Probability float64 `json:"probability"`
	Result      int     `json:"result"`
	RiskLevel   string  `json:"risk_level"`
	RecordID    uint64  `json:"record_id"`
	Threshold   float64 `json:"threshold"`
}

// RecordView mirrors the stored record from GET /record/{id}.
type RecordView struct {
	ID          uint64             `json:"id"`
	CreatedAt   time.Time          `json:"created_at"`
	Input       map[string]float64 `json:"input"`
	Probability float64            `json:"prob"`
	Result      int                `json:"result"`
	RiskLevel   string             `json:"risk_level"`
}

// Stats holds probe statistics.
type Stats struct {
	Generated       int
	Submitted       int
	Scored          int
	Rejected        int
	Failed          int
	RecordsVerified int
	RecordMismatch  int
	HighRisk        int
	LowRisk         int
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}
