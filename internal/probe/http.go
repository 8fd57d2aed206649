package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/glyco/pkg/logger"
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client  *http.Client
	timeout time.Duration
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// Get performs a GET request
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with JSON body
func (c *HTTPClient) Post(ctx context.Context, url string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// submitResult pairs a submission with the prediction the service returned.
type submitResult struct {
	Submission Submission
	Prediction Prediction
	Rejected   bool
	Failed     bool
}

// submitAll posts every submission concurrently using a worker pool and
// returns the per-submission results.
func submitAll(ctx context.Context, config *Config, subs []Submission, stats *Stats) ([]submitResult, error) {
	logger.Get().Info(ctx, "submitting survey payloads",
		logger.Int("count", len(subs)),
		logger.Int("workers", config.Workers))

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/api/predict"

	var (
		scored    int64
		rejected  int64
		failed    int64
		submitted int64
	)

	results := make([]submitResult, len(subs))

	type job struct {
		index int
		sub   Submission
	}
	jobChan := make(chan job, config.Workers*2)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobChan {
				select {
				case <-ctx.Done():
					return
				default:
				}

				res := submitSingle(ctx, client, url, j.sub)
				results[j.index] = res

				atomic.AddInt64(&submitted, 1)
				switch {
				case res.Failed:
					atomic.AddInt64(&failed, 1)
				case res.Rejected:
					atomic.AddInt64(&rejected, 1)
				default:
					atomic.AddInt64(&scored, 1)
				}
			}
		}()
	}

	go func() {
		defer close(jobChan)
		for i, sub := range subs {
			select {
			case <-ctx.Done():
				return
			case jobChan <- job{index: i, sub: sub}:
			}
		}
	}()

	wg.Wait()

	stats.Submitted = int(atomic.LoadInt64(&submitted))
	stats.Scored = int(atomic.LoadInt64(&scored))
	stats.Rejected = int(atomic.LoadInt64(&rejected))
	stats.Failed = int(atomic.LoadInt64(&failed))

	logger.Get().Info(ctx, "submission completed",
		logger.Int("scored", stats.Scored),
		logger.Int("rejected", stats.Rejected),
		logger.Int("failed", stats.Failed))

	return results, nil
}

// submitSingle posts one submission and classifies the outcome.
func submitSingle(ctx context.Context, client *HTTPClient, url string, sub Submission) submitResult {
	res := submitResult{Submission: sub}

	resp, err := client.Post(ctx, url, sub.Fields)
	if err != nil {
		res.Failed = true
		return res
	}

	body, err := readResponseBody(resp)
	if err != nil {
		res.Failed = true
		return res
	}

	switch resp.StatusCode {
	case http.StatusOK:
		if err := json.Unmarshal(body, &res.Prediction); err != nil {
			res.Failed = true
		}
	case http.StatusBadRequest:
		// Generated payloads are always in range; a rejection here means the
		// service and the generator disagree on the contract.
		res.Rejected = true
	default:
		res.Failed = true
	}
	return res
}
