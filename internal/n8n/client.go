// Package n8n invokes n8n agent workflows over their webhook trigger and
// schedules recurring invocations.
package n8n

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

// Client posts inputs to an n8n webhook and extracts the workflow's reply.
// The payload field names are configurable because workflows differ in what
// their trigger node expects.
type Client struct {
	url           string
	bearerToken   string
	inputField    string
	responseField string
	httpClient    *http.Client
}

// Params configures a Client. InputField defaults to "chatInput" and
// ResponseField to "output", matching the common n8n agent template.
type Params struct {
	URL           string
	BearerToken   string
	InputField    string
	ResponseField string
	Timeout       time.Duration
}

// NewClient creates a Client.
func NewClient(p Params) *Client {
	if p.InputField == "" {
		p.InputField = "chatInput"
	}
	if p.ResponseField == "" {
		p.ResponseField = "output"
	}
	if p.Timeout <= 0 {
		p.Timeout = 60 * time.Second
	}
	return &Client{
		url:           p.URL,
		bearerToken:   p.BearerToken,
		inputField:    p.InputField,
		responseField: p.ResponseField,
		httpClient:    &http.Client{Timeout: p.Timeout},
	}
}

// Invoke sends input to the workflow and returns the configured response
// field. sessionID, when non-empty, lets the workflow correlate turns of the
// same conversation.
func (c *Client) Invoke(ctx context.Context, input, sessionID string) (string, error) {
	if c.url == "" {
		return "", fmt.Errorf("n8n URL not configured")
	}
	if input == "" {
		return "", fmt.Errorf("no input text provided")
	}

	payload := map[string]any{c.inputField: input}
	if sessionID != "" {
		payload["sessionId"] = sessionID
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearerToken)
	}

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
		return "", fmt.Errorf("workflow returned HTTP %d: %s", resp.StatusCode, body)
	}

	var parsed map[string]any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	value, ok := parsed[c.responseField]
	if !ok {
		return "", fmt.Errorf("response field %q missing from workflow output", c.responseField)
	}
	switch v := value.(type) {
	case string:
		return v, nil
	default:
		// Non-string outputs are returned as compact JSON.
		out, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("encode response field: %w", err)
		}
		return string(out), nil
	}
}
