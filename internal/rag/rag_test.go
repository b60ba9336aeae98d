package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// newEmbedServer serves a fixed vector per input.
func newEmbedServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode embed request: %v", err)
		}
		if body.Model != "text-embedding-3-small" {
			t.Errorf("model = %q", body.Model)
		}
		data := make([]map[string]any, len(body.Input))
		for i := range body.Input {
			data[i] = map[string]any{"embedding": []float64{0.1, 0.2, float64(i)}}
		}
		json.NewEncoder(w).Encode(map[string]any{"data": data})
	}))
}

// newIndexServer serves both the control plane (/indexes) and the data plane
// (/query, /vectors/upsert) from one host.
func newIndexServer(t *testing.T, matches []Match) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var discoveries atomic.Int32
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/indexes":
			discoveries.Add(1)
			u, _ := url.Parse(server.URL)
			json.NewEncoder(w).Encode(map[string]any{
				"indexes": []map[string]string{
					{"name": "docs-index", "host": u.Host},
					{"name": "other", "host": "other.example.com"},
				},
			})
		case "/query":
			if r.Header.Get("Api-Key") != "pc-key" {
				t.Errorf("missing api key header")
			}
			var body map[string]any
			json.NewDecoder(r.Body).Decode(&body)
			if body["includeMetadata"] != true {
				t.Error("includeMetadata must be set")
			}
			json.NewEncoder(w).Encode(map[string]any{"matches": matches})
		case "/vectors/upsert":
			json.NewEncoder(w).Encode(map[string]any{"upsertedCount": 1})
		default:
			http.NotFound(w, r)
		}
	}))
	return server, &discoveries
}

func newTestIndex(server *httptest.Server) *PineconeClient {
	c := NewPineconeClient("pc-key", "docs-index")
	c.controlBase = server.URL
	c.hostScheme = "http"
	return c
}

func TestRetriever_Query(t *testing.T) {
	embed := newEmbedServer(t)
	defer embed.Close()
	index, _ := newIndexServer(t, []Match{
		{ID: "1", Score: 0.93, Metadata: map[string]any{"text": "first document body"}},
		{ID: "2", Score: 0.71, Metadata: map[string]any{"content": "second document body"}},
	})
	defer index.Close()

	r := NewRetriever(NewEmbeddingClient("sk-test", embed.URL), newTestIndex(index), 5, nil)
	out, err := r.Query(context.Background(), "what is in the docs?")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if !strings.HasPrefix(out, "Context retrieved from Pinecone:") {
		t.Errorf("unexpected prefix: %q", out)
	}
	if !strings.Contains(out, "--- Document (Relevance: 0.93) ---\nfirst document body") {
		t.Errorf("missing first block:\n%s", out)
	}
	if !strings.Contains(out, "second document body") {
		t.Errorf("content fallback field not used:\n%s", out)
	}
}

func TestRetriever_NoMatches(t *testing.T) {
	embed := newEmbedServer(t)
	defer embed.Close()
	index, _ := newIndexServer(t, nil)
	defer index.Close()

	r := NewRetriever(NewEmbeddingClient("sk-test", embed.URL), newTestIndex(index), 5, nil)
	out, err := r.Query(context.Background(), "anything")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if !strings.Contains(out, "No relevant information was found") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestPinecone_HostCachedAcrossQueries(t *testing.T) {
	index, discoveries := newIndexServer(t, []Match{{ID: "1", Score: 1}})
	defer index.Close()

	c := newTestIndex(index)
	for i := 0; i < 3; i++ {
		if _, err := c.Query(context.Background(), []float64{0.1}, 5); err != nil {
			t.Fatalf("Query %d: %v", i, err)
		}
	}
	if n := discoveries.Load(); n != 1 {
		t.Errorf("host discovered %d times, want 1", n)
	}
}

func TestPinecone_HostInvalidatedOnQueryFailure(t *testing.T) {
	var fail atomic.Bool
	var discoveries atomic.Int32
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/indexes":
			discoveries.Add(1)
			u, _ := url.Parse(server.URL)
			json.NewEncoder(w).Encode(map[string]any{
				"indexes": []map[string]string{{"name": "docs-index", "host": u.Host}},
			})
		case "/query":
			if fail.Load() {
				http.Error(w, "internal", http.StatusInternalServerError)
				return
			}
			json.NewEncoder(w).Encode(map[string]any{"matches": []Match{}})
		}
	}))
	defer server.Close()

	c := newTestIndex(server)
	if _, err := c.Query(context.Background(), []float64{0.1}, 5); err != nil {
		t.Fatalf("first query: %v", err)
	}

	fail.Store(true)
	if _, err := c.Query(context.Background(), []float64{0.1}, 5); err == nil {
		t.Fatal("expected query failure")
	}

	fail.Store(false)
	if _, err := c.Query(context.Background(), []float64{0.1}, 5); err != nil {
		t.Fatalf("query after recovery: %v", err)
	}
	if n := discoveries.Load(); n != 2 {
		t.Errorf("host discovered %d times, want rediscovery after failure (2)", n)
	}
}

func TestPinecone_IndexNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"indexes": []map[string]string{}})
	}))
	defer server.Close()

	c := newTestIndex(server)
	_, err := c.Query(context.Background(), []float64{0.1}, 5)
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected index-not-found error, got %v", err)
	}
}

func TestPinecone_MissingSettings(t *testing.T) {
	c := NewPineconeClient("", "")
	if _, err := c.Query(context.Background(), []float64{0.1}, 5); err == nil {
		t.Error("expected error for missing settings")
	}
}

func TestEmbed_MissingKey(t *testing.T) {
	c := NewEmbeddingClient("", "")
	if _, err := c.EmbedOne(context.Background(), "text"); err == nil {
		t.Error("expected error for missing key")
	}
}

func TestIngestURL(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><head><title>Doc</title></head><body><article>`)
		for i := 0; i < 80; i++ {
			fmt.Fprintf(w, "<p>Paragraph %d with enough words to count as real content for extraction.</p>", i)
		}
		fmt.Fprint(w, `</article></body></html>`)
	}))
	defer page.Close()

	embed := newEmbedServer(t)
	defer embed.Close()

	var upserted atomic.Int32
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/indexes":
			u, _ := url.Parse(server.URL)
			json.NewEncoder(w).Encode(map[string]any{
				"indexes": []map[string]string{{"name": "docs-index", "host": u.Host}},
			})
		case "/vectors/upsert":
			var body struct {
				Vectors []Vector `json:"vectors"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			upserted.Store(int32(len(body.Vectors)))
			for _, v := range body.Vectors {
				if v.Metadata["source"] != page.URL {
					t.Errorf("chunk source = %v", v.Metadata["source"])
				}
				if v.Metadata["text"] == "" {
					t.Error("chunk missing text metadata")
				}
			}
			json.NewEncoder(w).Encode(map[string]any{})
		}
	}))
	defer server.Close()

	g := NewIngestor(NewEmbeddingClient("sk-test", embed.URL), newTestIndex(server), nil)
	n, err := g.IngestURL(context.Background(), page.URL)
	if err != nil {
		t.Fatalf("IngestURL: %v", err)
	}
	if n < 2 {
		t.Errorf("expected multiple chunks, got %d", n)
	}
	if int(upserted.Load()) != n {
		t.Errorf("upserted %d vectors, reported %d", upserted.Load(), n)
	}
}

func TestIngestURL_RejectsNonHTTP(t *testing.T) {
	g := NewIngestor(NewEmbeddingClient("sk-test", ""), NewPineconeClient("k", "i"), nil)
	if _, err := g.IngestURL(context.Background(), "ftp://example.com/file"); err == nil {
		t.Error("expected error for non-http scheme")
	}
}

func TestChunkText_ShortTextSingleChunk(t *testing.T) {
	chunks := chunkText("short text")
	if len(chunks) != 1 || chunks[0] != "short text" {
		t.Errorf("unexpected chunks: %v", chunks)
	}
}

func TestChunkText_MultibyteRunes(t *testing.T) {
	// A paragraph break early in rune terms but past the halfway mark in
	// byte terms; a byte-based boundary check would rewind instead of
	// advancing and never terminate.
	text := strings.Repeat("\U0001D552", 188) + "\n\n" + strings.Repeat("\U0001D553", 2000)

	done := make(chan []string, 1)
	go func() { done <- chunkText(text) }()

	var chunks []string
	select {
	case chunks = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("chunkText did not terminate on multibyte input")
	}

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len([]rune(c)) > chunkSize {
			t.Errorf("chunk %d exceeds target size: %d runes", i, len([]rune(c)))
		}
	}
	last := chunks[len(chunks)-1]
	if !strings.HasSuffix(last, "\U0001D553") {
		t.Error("expected final chunk to reach the end of the text")
	}
}

func TestChunkText_MultibyteBoundaryPreferred(t *testing.T) {
	text := strings.Repeat("\U0001D552", 800) + "\n\n" + strings.Repeat("\U0001D553", 1000)
	chunks := chunkText(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	if n := len([]rune(chunks[0])); n != 800 {
		t.Errorf("expected first chunk cut at the paragraph break (800 runes), got %d", n)
	}
}

func TestChunkText_LongTextOverlaps(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 100; i++ {
		fmt.Fprintf(&sb, "Sentence number %d carries some meaningful content. ", i)
	}
	chunks := chunkText(sb.String())
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len([]rune(c)) > chunkSize {
			t.Errorf("chunk %d exceeds target size: %d runes", i, len([]rune(c)))
		}
	}
}
