// Package healthgw is the JSON-over-HTTP client for the local health data
// gateway that owns the raw step samples.
package healthgw

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/steppet/steppet-engine/internal/logger"
	"github.com/steppet/steppet-engine/internal/model"
)

var _ model.StepProvider = (*Client)(nil)

type Client struct {
	baseURL string
	http    *http.Client
	logger  *logger.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *logger.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type stepsResponse struct {
	Steps int64 `json:"steps"`
}

// FetchCumulativeSteps reads the total for [from, to). Missing authorization
// maps to ErrProviderUnavailable; anything transient maps to ErrFetchFailed.
func (c *Client) FetchCumulativeSteps(ctx context.Context, from, to time.Time) (int64, error) {
	q := url.Values{}
	q.Set("from", from.UTC().Format(time.RFC3339))
	q.Set("to", to.UTC().Format(time.RFC3339))

	return c.fetch(ctx, "/v1/steps/cumulative?"+q.Encode())
}

// FetchTodaySteps reads today's resettable counter.
func (c *Client) FetchTodaySteps(ctx context.Context) (int64, error) {
	return c.fetch(ctx, "/v1/steps/today")
}

func (c *Client) fetch(ctx context.Context, path string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build provider request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", model.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return 0, model.ErrProviderUnavailable
	case resp.StatusCode != http.StatusOK:
		return 0, fmt.Errorf("%w: provider returned status %d", model.ErrFetchFailed, resp.StatusCode)
	}

	var body stepsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("%w: failed to decode provider response: %v", model.ErrFetchFailed, err)
	}

	return body.Steps, nil
}
