package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/mgrigorov/newsgrid/app/cfg"
)

const (
	// One bounded attempt per call; failures degrade to an empty
	// result at the orchestrator, never a retry.
	requestTimeout   = 20 * time.Second
	maxResponseBytes = 4 << 20 // 4MB
)

// doGet issues one GET with the shared timeout bound and returns the
// response body. Non-2xx statuses are failures.
func doGet(ctx context.Context, client *http.Client, endpoint string, params url.Values) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", cfg.Get().UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
