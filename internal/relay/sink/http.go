package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const userAgent = "bega-mon-bridge-relay/1.0"

// HTTPSink submits mint requests to an HTTP endpoint. Success is any 2xx
// response; everything else, including transport errors, is a failure.
type HTTPSink struct {
	endpoint   string
	httpClient *http.Client
}

// NewHTTPSink creates a sink for the given endpoint. The timeout bounds each
// submission attempt.
func NewHTTPSink(endpoint string, timeout time.Duration) *HTTPSink {
	return &HTTPSink{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

func (s *HTTPSink) Submit(ctx context.Context, mintReq *MintRequest) error {
	payload, err := json.Marshal(mintReq)
	if err != nil {
		return fmt.Errorf("marshal mint request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	// Per-attempt correlation ID; the event itself is identified by
	// sourceTransactionHash in the payload.
	req.Header.Set("X-Relay-Request-ID", uuid.NewString())

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("submit mint request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return fmt.Errorf("destination returned %d: %s", resp.StatusCode, body)
	}

	return nil
}
