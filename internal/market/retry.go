package market

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const (
	maxRetries        = 5
	initialRetryDelay = 2 * time.Second
)

// getJSON performs a GET with exponential backoff for transport-level
// failures (connection errors and non-2xx statuses). Provider-reported
// semantic errors arrive as 200 bodies and are never retried here.
func (g *Gateway) getJSON(ctx context.Context, rawURL string) ([]byte, error) {
	var lastErr error
	delay := g.retryDelay

	for attempt := 1; attempt <= maxRetries; attempt++ {
		body, err := g.getOnce(ctx, rawURL)
		if err == nil {
			return body, nil
		}
		lastErr = err
		log.Printf("[WARN] fetch attempt %d/%d failed: %v", attempt, maxRetries, err)

		if attempt == maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return nil, &TransportError{Err: ctx.Err()}
		case <-time.After(delay):
		}
		delay *= 2
	}
	return nil, &TransportError{Err: lastErr}
}

func (g *Gateway) getOnce(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d, body: %s", resp.StatusCode, truncate(string(body), 200))
	}
	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
