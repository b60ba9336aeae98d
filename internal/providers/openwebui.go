// Package providers implements model endpoint clients.
//
// OpenWebUIClient talks to any OpenWebUI-compatible API and degrades to a
// plain OpenAI-compatible endpoint (OpenAI, OpenRouter) when no OpenWebUI
// credentials can be resolved.
package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/assistkit/assistkit/internal/config"
)

const (
	localBaseURL  = "http://localhost:3000/api"
	dockerBaseURL = "http://host.docker.internal:3000/api"

	// probeTimeout bounds the base-URL auto-detection probe.
	probeTimeout = 2 * time.Second
)

// Params carries the raw values an OpenWebUIClient is built from. The caller
// extracts these from config.Config so this package stays decoupled from the
// config file layout.
type Params struct {
	BaseURL        string
	APIKey         string
	FallbackKey    string
	FallbackBase   string
	RequestTimeout time.Duration
}

// OpenWebUIClient implements schema.ModelClient over HTTP.
type OpenWebUIClient struct {
	baseURL       string
	apiKey        string
	usingFallback bool
	httpClient    *http.Client
}

// Env is the subset of os.Getenv the resolver needs; tests substitute a map.
type Env func(key string) string

// New resolves credentials and endpoint in priority order and returns a
// ready client.
//
// API key: explicit param → OPENWEBUI_API_KEY. Base URL: explicit param →
// OPENWEBUI_BASE_URL → probe localhost, then the Docker host gateway.
// When no OpenWebUI key resolves, the fallback key (explicit →
// OPENAI_API_KEY → OPENROUTER_API_KEY) and fallback base are used instead.
func New(p Params, getenv Env) (*OpenWebUIClient, error) {
	timeout := p.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	apiKey := p.APIKey
	if apiKey == "" {
		apiKey = getenv("OPENWEBUI_API_KEY")
	}

	if apiKey != "" {
		base := resolveBaseURL(p.BaseURL, getenv)
		return &OpenWebUIClient{
			baseURL:    base,
			apiKey:     apiKey,
			httpClient: &http.Client{Timeout: timeout},
		}, nil
	}

	fallbackKey := p.FallbackKey
	if fallbackKey == "" {
		for _, envVar := range []string{"OPENAI_API_KEY", "OPENROUTER_API_KEY"} {
			if k := getenv(envVar); k != "" {
				fallbackKey = k
				break
			}
		}
	}
	if fallbackKey == "" {
		return nil, fmt.Errorf("no API key found: set OPENWEBUI_API_KEY or OPENAI_API_KEY, or configure one in %s", config.ConfigPath())
	}

	base := p.FallbackBase
	if base == "" {
		base = "https://api.openai.com/v1"
	}
	return &OpenWebUIClient{
		baseURL:       strings.TrimRight(base, "/"),
		apiKey:        fallbackKey,
		usingFallback: true,
		httpClient:    &http.Client{Timeout: timeout},
	}, nil
}

// resolveBaseURL picks the effective API base: explicit → env → probe.
func resolveBaseURL(explicit string, getenv Env) string {
	if explicit != "" {
		return strings.TrimRight(explicit, "/")
	}
	if env := getenv("OPENWEBUI_BASE_URL"); env != "" {
		return strings.TrimRight(env, "/")
	}

	probe := &http.Client{Timeout: probeTimeout}
	resp, err := probe.Get(localBaseURL + "/models")
	if err == nil {
		resp.Body.Close()
		switch resp.StatusCode {
		case http.StatusOK, http.StatusUnauthorized, http.StatusForbidden:
			return localBaseURL
		}
	}
	return dockerBaseURL
}

// UsingFallback reports whether the client talks to the fallback endpoint
// rather than an OpenWebUI instance.
func (c *OpenWebUIClient) UsingFallback() bool { return c.usingFallback }

// BaseURL returns the resolved API base.
func (c *OpenWebUIClient) BaseURL() string { return c.baseURL }

// chatRespBody is the subset of the chat completion response we care about.
type chatRespBody struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete implements schema.ModelClient.
func (c *OpenWebUIClient) Complete(ctx context.Context, model, prompt string) (string, error) {
	body := map[string]any{
		"model": model,
		"messages": []map[string]any{
			{"role": "user", "content": prompt},
		},
	}
	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

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
		return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, friendlyHTTPError(resp.StatusCode, raw))
	}

	var parsed chatRespBody
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("empty choices in response")
	}
	return parsed.Choices[0].Message.Content, nil
}

// modelsRespBody models the /models listing response.
type modelsRespBody struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

// ListModels implements schema.ModelClient.
func (c *OpenWebUIClient) ListModels(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, friendlyHTTPError(resp.StatusCode, raw))
	}

	var parsed modelsRespBody
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse models response: %w", err)
	}
	ids := make([]string, 0, len(parsed.Data))
	for _, m := range parsed.Data {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

func friendlyHTTPError(code int, body []byte) string {
	if code == http.StatusTooManyRequests {
		return "rate limit exceeded"
	}
	s := strings.TrimSpace(string(body))
	if len(s) > 300 {
		s = s[:300]
	}
	return s
}
