package rag

import (
	"context"
	"crypto/sha1"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"

	"github.com/assistkit/assistkit/internal/status"
)

const (
	// chunkSize is the target chunk length in runes. Chunks break on
	// paragraph boundaries when possible.
	chunkSize    = 1500
	chunkOverlap = 200
)

// Ingestor fetches pages, extracts their readable text, and writes embedded
// chunks into the index.
type Ingestor struct {
	embedder   *EmbeddingClient
	index      *PineconeClient
	emitter    status.Emitter
	httpClient *http.Client
}

// NewIngestor creates an Ingestor.
func NewIngestor(embedder *EmbeddingClient, index *PineconeClient, emitter status.Emitter) *Ingestor {
	if emitter == nil {
		emitter = status.Nop
	}
	return &Ingestor{
		embedder:   embedder,
		index:      index,
		emitter:    emitter,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// IngestURL fetches the page, chunks its readable content, and upserts the
// embedded chunks. Returns the number of chunks written.
func (g *Ingestor) IngestURL(ctx context.Context, rawURL string) (int, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return 0, fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return 0, fmt.Errorf("only http/https allowed, got %q", parsed.Scheme)
	}

	status.Info(g.emitter, "Fetching %s...", rawURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("fetch page: HTTP %d", resp.StatusCode)
	}

	article, err := readability.FromReader(resp.Body, parsed)
	if err != nil {
		return 0, fmt.Errorf("extract content: %w", err)
	}
	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return 0, fmt.Errorf("no readable content at %s", rawURL)
	}

	chunks := chunkText(text)
	status.Info(g.emitter, "Embedding %d chunks...", len(chunks))

	vectors, err := g.embedder.Embed(ctx, chunks)
	if err != nil {
		return 0, err
	}

	records := make([]Vector, len(chunks))
	for i, chunk := range chunks {
		records[i] = Vector{
			ID:     chunkID(rawURL, i),
			Values: vectors[i],
			Metadata: map[string]any{
				"text":   chunk,
				"source": rawURL,
				"title":  article.Title,
			},
		}
	}

	status.Info(g.emitter, "Upserting into Pinecone...")
	if err := g.index.Upsert(ctx, records); err != nil {
		return 0, err
	}

	status.Done(g.emitter, "Ingested %d chunks from %s.", len(records), rawURL)
	return len(records), nil
}

// chunkText splits text into overlapping chunks, preferring paragraph
// boundaries near the target size.
func chunkText(text string) []string {
	runes := []rune(text)
	if len(runes) <= chunkSize {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + chunkSize
		if end >= len(runes) {
			chunks = append(chunks, strings.TrimSpace(string(runes[start:])))
			break
		}
		// Prefer breaking at a paragraph or sentence end inside the window.
		// Boundary offsets from LastIndex are bytes; convert to runes before
		// comparing against the rune-based size threshold.
		cut := end
		window := string(runes[start:end])
		if r := runeLen(window, strings.LastIndex(window, "\n\n"), 0); r > chunkSize/2 {
			cut = start + r
		} else if r := runeLen(window, strings.LastIndex(window, ". "), 1); r > chunkSize/2 {
			cut = start + r
		}
		chunks = append(chunks, strings.TrimSpace(string(runes[start:cut])))
		next := cut - chunkOverlap
		if next <= start {
			next = cut
		}
		start = next
	}

	// Drop empties from aggressive trimming.
	out := chunks[:0]
	for _, c := range chunks {
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

// runeLen returns the rune count of s up to byte offset i plus keep extra
// bytes, or -1 when i is negative.
func runeLen(s string, i, keep int) int {
	if i < 0 {
		return -1
	}
	return len([]rune(s[:i+keep]))
}

func chunkID(source string, i int) string {
	sum := sha1.Sum([]byte(source))
	return fmt.Sprintf("%x-%d", sum[:6], i)
}
