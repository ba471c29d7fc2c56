// Package client holds the readiness gate and request-deduplication
// transport exposed to callers of the API (spec §4.6).
package client

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// ReadyGate blocks until the API's /health endpoint answers 200 OK, or
// the timeout elapses.
type ReadyGate struct {
	BaseURL  string
	Client   *http.Client
	Interval time.Duration
	Timeout  time.Duration
}

// NewReadyGate builds a ReadyGate polling baseURL+"/health" every 200ms,
// up to 60s, per spec §4.6.
func NewReadyGate(baseURL string) *ReadyGate {
	return &ReadyGate{
		BaseURL:  baseURL,
		Client:   &http.Client{Timeout: 2 * time.Second},
		Interval: 200 * time.Millisecond,
		Timeout:  60 * time.Second,
	}
}

// Wait polls until /health returns 200 or ctx/timeout expires.
func (g *ReadyGate) Wait(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, g.Timeout)
	defer cancel()

	ticker := time.NewTicker(g.Interval)
	defer ticker.Stop()

	for {
		if g.probe(ctx) {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("api not ready after %s: %w", g.Timeout, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (g *ReadyGate) probe(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.BaseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := g.Client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
