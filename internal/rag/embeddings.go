// Package rag retrieves context from a Pinecone vector index and ingests
// new documents into it. Queries are embedded with OpenAI's embedding API.
package rag

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

const defaultEmbeddingModel = "text-embedding-3-small"

// EmbeddingClient turns text into vectors via the OpenAI embeddings API.
// The model must match the one the index was built with.
type EmbeddingClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewEmbeddingClient creates an EmbeddingClient. baseURL defaults to the
// OpenAI API; tests point it at a local server.
func NewEmbeddingClient(apiKey, baseURL string) *EmbeddingClient {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &EmbeddingClient{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      defaultEmbeddingModel,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// embedRespBody is the subset of the embeddings response we care about.
type embedRespBody struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// Embed returns one vector per input text, in input order.
func (c *EmbeddingClient) Embed(ctx context.Context, inputs []string) ([][]float64, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("OpenAI key is missing")
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no input to embed")
	}

	body := map[string]any{"input": inputs, "model": c.model}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/embeddings", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
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
		return nil, fmt.Errorf("OpenAI error (HTTP %d): %s", resp.StatusCode, truncateBody(raw))
	}

	var parsed embedRespBody
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if len(parsed.Data) != len(inputs) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(inputs), len(parsed.Data))
	}
	vectors := make([][]float64, len(parsed.Data))
	for i, d := range parsed.Data {
		vectors[i] = d.Embedding
	}
	return vectors, nil
}

// EmbedOne embeds a single text.
func (c *EmbeddingClient) EmbedOne(ctx context.Context, input string) ([]float64, error) {
	vectors, err := c.Embed(ctx, []string{input})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func truncateBody(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > 300 {
		s = s[:300]
	}
	return s
}
