// Package docs talks to a Google Apps Script web app that instantiates a
// Google Doc from a template, replacing placeholders with caller-provided
// values.
package docs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client posts document requests to the configured Apps Script webhook.
type Client struct {
	webhookURL string
	httpClient *http.Client
}

// NewClient creates a Client. timeout defaults to 30 seconds.
func NewClient(webhookURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Configured reports whether a webhook URL is set.
func (c *Client) Configured() bool { return c.webhookURL != "" }

// createRespBody is the subset of the Apps Script response we care about.
type createRespBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	URL     string `json:"url"`
}

// Create instantiates the template as a new document named filename,
// applying the placeholder replacements, and returns the document URL.
func (c *Client) Create(ctx context.Context, filename string, replacements map[string]string) (string, error) {
	if c.webhookURL == "" {
		return "", fmt.Errorf("docs webhook URL not configured")
	}
	if filename == "" {
		return "", fmt.Errorf("filename is required")
	}

	payload := map[string]any{
		"filename":     filename,
		"replacements": replacements,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		body := strings.TrimSpace(string(raw))
		if len(body) > 300 {
			body = body[:300]
		}
		return "", fmt.Errorf("connection error: HTTP %d: %s", resp.StatusCode, body)
	}

	var parsed createRespBody
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if parsed.Status == "error" {
		return "", fmt.Errorf("%s", parsed.Message)
	}
	if parsed.URL == "" {
		return "", fmt.Errorf("webhook returned no document URL")
	}
	return parsed.URL, nil
}
