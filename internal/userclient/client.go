// Package userclient validates user ids against the user service.
package userclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client checks user existence over the user service HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a client with sane defaults.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// ValidateUser reports whether the user id refers to a registered user. An
// unknown user is a negative answer, not an error; transport failures and
// unexpected statuses are errors for the caller to surface.
func (c *Client) ValidateUser(ctx context.Context, userID string) (bool, error) {
	url := fmt.Sprintf("%s/api/users/%s/validate", c.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return false, fmt.Errorf("user service error (status=%d): %s", resp.StatusCode, body)
	}

	var valid bool
	if err := json.NewDecoder(resp.Body).Decode(&valid); err != nil {
		return false, err
	}
	return valid, nil
}
