package enrichment

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Client fetches reputation profiles from the users service over HTTP.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zap.SugaredLogger
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.SugaredLogger) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		Logger: logger,
	}
}

// Fetch looks up GET {base}/users/{id}/reputacion. Any failure -
// connection error, non-200 status, unparseable body - is logged here
// and reported as an absent Result, never as an error.
func (c *Client) Fetch(ctx context.Context, clientID string) Result {
	url := c.BaseURL + "/users/" + clientID + "/reputacion"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.Logger.Errorf("Failed to build reputation request for client %s: %v", clientID, err)
		return Result{}
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.Logger.Warnf("Reputation lookup for client %s failed: %v", clientID, err)
		return Result{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.Logger.Warnf("Reputation lookup for client %s returned status %d", clientID, resp.StatusCode)
		return Result{}
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		c.Logger.Warnf("Failed to decode reputation response for client %s: %v", clientID, err)
		return Result{}
	}

	return Result{
		Profile: profile,
		Found:   true,
	}
}
