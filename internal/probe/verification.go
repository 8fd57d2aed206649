package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"

	"github.com/okian/glyco/pkg/logger"
)

// probabilityTolerance allows for the four-decimal rounding in the API
// response when comparing against the stored record.
const probabilityTolerance = 0.0001

// verifyRecords reads every scored submission back through GET /record/{id}
// and checks the persisted record against the prediction that was returned.
func verifyRecords(ctx context.Context, config *Config, results []submitResult, stats *Stats) error {
	logger.Get().Info(ctx, "verifying persisted records")

	client := newHTTPClient(config.Timeout)

	for _, res := range results {
		if res.Failed || res.Rejected {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rec, err := fetchRecord(ctx, client, config.BaseURL, res.Prediction.RecordID)
		if err != nil {
			stats.RecordMismatch++
			logger.Get().Warn(ctx, "record read-back failed",
				logger.Uint64("record_id", res.Prediction.RecordID),
				logger.Error(err))
			continue
		}

		if err := checkRecord(res, rec); err != nil {
			stats.RecordMismatch++
			logger.Get().Warn(ctx, "record contract violation",
				logger.Uint64("record_id", res.Prediction.RecordID),
				logger.Error(err))
			continue
		}
		stats.RecordsVerified++

		if res.Prediction.Result == 1 {
			stats.HighRisk++
		} else {
			stats.LowRisk++
		}
	}

	if stats.RecordMismatch > 0 {
		return fmt.Errorf("%d of %d records failed verification", stats.RecordMismatch, stats.Scored)
	}

	logger.Get().Info(ctx, "all records verified", logger.Int("count", stats.RecordsVerified))
	return nil
}

// verifyRejections posts deliberately broken payloads and checks that the
// service answers 400 with a batched error list and persists nothing new.
func verifyRejections(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "verifying rejection contract")

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/api/predict"

	bad := []map[string]float64{
		// Out-of-range weight.
		{"height_cm": 170, "weight_kg": 500, "HighBP": 0, "HighChol": 0,
			"GenHlth": 3, "PhysHlth": 0, "DiffWalk": 0, "HeartDiseaseorAttack": 0,
			"PhysActivity": 1, "Gender": 0, "Age": 5},
		// Missing almost everything.
		{"height_cm": 170},
		// Implausible derived BMI.
		{"height_cm": 230, "weight_kg": 25, "HighBP": 0, "HighChol": 0,
			"GenHlth": 3, "PhysHlth": 0, "DiffWalk": 0, "HeartDiseaseorAttack": 0,
			"PhysActivity": 1, "Gender": 0, "Age": 5},
	}

	for i, payload := range bad {
		resp, err := client.Post(ctx, url, payload)
		if err != nil {
			return fmt.Errorf("post bad payload %d: %w", i, err)
		}
		body, err := readResponseBody(resp)
		if err != nil {
			return fmt.Errorf("read rejection body %d: %w", i, err)
		}
		if resp.StatusCode != http.StatusBadRequest {
			return fmt.Errorf("bad payload %d: got status %d, want 400", i, resp.StatusCode)
		}
		var batch struct {
			Errors []string `json:"errors"`
		}
		if err := json.Unmarshal(body, &batch); err != nil || len(batch.Errors) == 0 {
			return fmt.Errorf("bad payload %d: expected a non-empty errors batch, got %s", i, body)
		}
	}

	logger.Get().Info(ctx, "rejection contract holds", logger.Int("payloads", len(bad)))
	return nil
}

// fetchRecord retrieves one stored record.
func fetchRecord(ctx context.Context, client *HTTPClient, baseURL string, id uint64) (RecordView, error) {
	var rec RecordView

	resp, err := client.Get(ctx, fmt.Sprintf("%s/record/%d", baseURL, id))
	if err != nil {
		return rec, fmt.Errorf("fetch record: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return rec, fmt.Errorf("read record body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return rec, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.Unmarshal(body, &rec); err != nil {
		return rec, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}

// checkRecord verifies a persisted record against the live prediction.
func checkRecord(res submitResult, rec RecordView) error {
	pred := res.Prediction

	if rec.ID != pred.RecordID {
		return fmt.Errorf("id mismatch: got %d, want %d", rec.ID, pred.RecordID)
	}
	if math.Abs(rec.Probability-pred.Probability) > probabilityTolerance {
		return fmt.Errorf("probability mismatch: stored %v, predicted %v", rec.Probability, pred.Probability)
	}
	if rec.Result != pred.Result {
		return fmt.Errorf("result mismatch: stored %d, predicted %d", rec.Result, pred.Result)
	}

	// The threshold decision must be strict: above scores high, at or below
	// scores low.
	wantHigh := rec.Probability > pred.Threshold
	if wantHigh != (rec.Result == 1) {
		return fmt.Errorf("threshold contract broken: prob %v, threshold %v, result %d",
			rec.Probability, pred.Threshold, rec.Result)
	}

	// The stored input must echo the submitted answers, plus a derived BMI.
	for field, want := range res.Submission.Fields {
		got, ok := rec.Input[field]
		if !ok {
			return fmt.Errorf("stored input missing field %s", field)
		}
		if math.Abs(got-want) > probabilityTolerance {
			return fmt.Errorf("stored input %s mismatch: got %v, want %v", field, got, want)
		}
	}
	if _, ok := rec.Input["BMI"]; !ok {
		return fmt.Errorf("stored input missing derived BMI")
	}
	return nil
}
