package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/assistkit/assistkit/internal/status"
)

// Retriever answers queries with concatenated context blocks from the index.
type Retriever struct {
	embedder *EmbeddingClient
	index    *PineconeClient
	topK     int
	emitter  status.Emitter
}

// NewRetriever creates a Retriever. topK defaults to 5.
func NewRetriever(embedder *EmbeddingClient, index *PineconeClient, topK int, emitter status.Emitter) *Retriever {
	if topK <= 0 {
		topK = 5
	}
	if emitter == nil {
		emitter = status.Nop
	}
	return &Retriever{embedder: embedder, index: index, topK: topK, emitter: emitter}
}

// Query embeds the question, searches the index, and formats the matches as
// relevance-annotated document blocks. An empty result set is not an error;
// the caller gets a human-readable notice instead.
func (r *Retriever) Query(ctx context.Context, query string) (string, error) {
	status.Info(r.emitter, "Generating search vectors...")
	vector, err := r.embedder.EmbedOne(ctx, query)
	if err != nil {
		return "", err
	}

	status.Info(r.emitter, "Querying Pinecone...")
	matches, err := r.index.Query(ctx, vector, r.topK)
	if err != nil {
		return "", err
	}

	if len(matches) == 0 {
		status.Done(r.emitter, "No relevant documents found.")
		return "No relevant information was found in the database to answer this question.", nil
	}

	contexts := make([]string, 0, len(matches))
	for _, m := range matches {
		contexts = append(contexts, fmt.Sprintf("--- Document (Relevance: %.2f) ---\n%s",
			m.Score, metadataText(m.Metadata)))
	}

	status.Done(r.emitter, "Success: %d documents retrieved.", len(matches))
	return "Context retrieved from Pinecone:\n" + strings.Join(contexts, "\n\n"), nil
}

// metadataText extracts the document body from metadata, trying the common
// field names before falling back to the whole map.
func metadataText(metadata map[string]any) string {
	for _, key := range []string{"text", "content", "context"} {
		if v, ok := metadata[key].(string); ok && v != "" {
			return v
		}
	}
	return fmt.Sprintf("%v", metadata)
}
