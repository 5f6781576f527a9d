// Package mailer sends transactional email through an HTTP mail API.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTimeout = 15 * time.Second

// Client sends mail via a JSON-over-HTTP mail API (e.g. a hosted SMTP relay's
// REST endpoint).
type Client struct {
	APIKey     string
	BaseURL    string
	From       string
	HTTPClient *http.Client
}

// NewClient returns a client that uses the given API key, endpoint URL, and sender address.
func NewClient(apiKey, baseURL, from string) *Client {
	return &Client{
		APIKey:     apiKey,
		BaseURL:    baseURL,
		From:       from,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
}

// Deliver sends the message to the given address. Does not log the body, which
// may contain a one-time code.
func (c *Client) Deliver(ctx context.Context, identity, subject, body string) error {
	if c.APIKey == "" || c.BaseURL == "" {
		return fmt.Errorf("mailer: API key or base URL not configured")
	}
	payload := map[string]interface{}{
		"from":    c.From,
		"to":      identity,
		"subject": subject,
		"html":    body,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("mailer: request failed status=%d body=%s", resp.StatusCode, string(b))
	}
	return nil
}
