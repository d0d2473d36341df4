// Package source provides the transaction feeds the reporting engine reads
// from: a live sync endpoint, the MongoDB archive, and a merged view that
// combines both with duplicate suppression.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/parkops/backoffice/internal/domain/transaction"
)

// ErrFetch indicates that a transaction source could not deliver records
type ErrFetch struct {
	Source string
	Reason string
}

func (e ErrFetch) Error() string {
	return fmt.Sprintf("failed to fetch from %s: %s", e.Source, e.Reason)
}

// Is implements the errors.Is interface for ErrFetch
func (e ErrFetch) Is(target error) bool {
	t, ok := target.(ErrFetch)
	if !ok {
		return false
	}
	if t.Source == "" {
		return true
	}
	return e.Source == t.Source
}

// syncResponse is the envelope returned by the sync endpoint
type syncResponse struct {
	Data []transaction.Record `json:"data"`
}

// SyncClient fetches live parking transactions over HTTP
type SyncClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewSyncClient creates a client for the live sync endpoint
func NewSyncClient(logger *slog.Logger, baseURL string, timeout time.Duration) *SyncClient {
	return &SyncClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Fetch retrieves up to limit records from the sync endpoint. Any transport
// failure, non-2xx status or malformed body yields an ErrFetch; partial
// results are never returned.
func (c *SyncClient) Fetch(ctx context.Context, limit int) ([]transaction.Record, error) {
	url := c.baseURL + "/sync?limit=" + strconv.Itoa(limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build sync request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Sync request failed", "url", url, "error", err)
		return nil, ErrFetch{Source: "sync", Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.logger.Error("Sync endpoint returned unexpected status", "url", url, "status", resp.StatusCode)
		return nil, ErrFetch{Source: "sync", Reason: "unexpected status " + strconv.Itoa(resp.StatusCode)}
	}

	var payload syncResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.logger.Error("Failed to decode sync response", "url", url, "error", err)
		return nil, ErrFetch{Source: "sync", Reason: "malformed response: " + err.Error()}
	}

	return payload.Data, nil
}
