package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

const controlPlaneURL = "https://api.pinecone.io"

// PineconeClient talks to one Pinecone index. The index's data-plane host is
// discovered from the control plane on first use and cached; the cache is
// dropped when a query fails so the next call rediscovers.
type PineconeClient struct {
	apiKey    string
	indexName string

	// controlBase and hostScheme exist so tests can point the client at
	// httptest servers.
	controlBase string
	hostScheme  string

	httpClient *http.Client

	mu         sync.Mutex
	cachedHost string
}

// NewPineconeClient creates a client for the named index.
func NewPineconeClient(apiKey, indexName string) *PineconeClient {
	return &PineconeClient{
		apiKey:      apiKey,
		indexName:   indexName,
		controlBase: controlPlaneURL,
		hostScheme:  "https",
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Match is one scored result from a query.
type Match struct {
	ID       string         `json:"id"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata"`
}

// Vector is one record for upsert.
type Vector struct {
	ID       string         `json:"id"`
	Values   []float64      `json:"values"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// indexListBody models the control-plane index listing.
type indexListBody struct {
	Indexes []struct {
		Name string `json:"name"`
		Host string `json:"host"`
	} `json:"indexes"`
}

// host returns the cached data-plane host, discovering it if needed.
func (c *PineconeClient) host(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cachedHost != "" {
		return c.cachedHost, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.controlBase+"/indexes", nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("list indexes: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to list indexes: %s", truncateBody(raw))
	}

	var parsed indexListBody
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("parse index list: %w", err)
	}
	for _, idx := range parsed.Indexes {
		if idx.Name == c.indexName {
			c.cachedHost = idx.Host
			return c.cachedHost, nil
		}
	}
	return "", fmt.Errorf("index %q not found in the Pinecone account", c.indexName)
}

// invalidateHost drops the cached host so the next call rediscovers.
func (c *PineconeClient) invalidateHost() {
	c.mu.Lock()
	c.cachedHost = ""
	c.mu.Unlock()
}

// dataPlanePost posts body to path on the index host and decodes into out.
func (c *PineconeClient) dataPlanePost(ctx context.Context, path string, body, out any) error {
	host, err := c.host(ctx)
	if err != nil {
		return err
	}

	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	url := fmt.Sprintf("%s://%s%s", c.hostScheme, host, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Api-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.invalidateHost()
		return fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.invalidateHost()
		return fmt.Errorf("Pinecone error (HTTP %d): %s", resp.StatusCode, truncateBody(raw))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

// Query searches the index and returns scored matches with metadata.
func (c *PineconeClient) Query(ctx context.Context, vector []float64, topK int) ([]Match, error) {
	if c.apiKey == "" || c.indexName == "" {
		return nil, fmt.Errorf("Pinecone settings are missing")
	}
	if topK <= 0 {
		topK = 5
	}
	body := map[string]any{
		"vector":          vector,
		"topK":            topK,
		"includeMetadata": true,
		"includeValues":   false,
	}
	var parsed struct {
		Matches []Match `json:"matches"`
	}
	if err := c.dataPlanePost(ctx, "/query", body, &parsed); err != nil {
		return nil, err
	}
	return parsed.Matches, nil
}

// Upsert writes vectors into the index.
func (c *PineconeClient) Upsert(ctx context.Context, vectors []Vector) error {
	if c.apiKey == "" || c.indexName == "" {
		return fmt.Errorf("Pinecone settings are missing")
	}
	if len(vectors) == 0 {
		return nil
	}
	body := map[string]any{"vectors": vectors}
	return c.dataPlanePost(ctx, "/vectors/upsert", body, nil)
}
