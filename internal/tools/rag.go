package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/assistkit/assistkit/internal/rag"
)

// RAGQueryTool retrieves context from the Pinecone knowledge base.
type RAGQueryTool struct {
	retriever *rag.Retriever
}

// NewRAGQueryTool creates a RAGQueryTool.
func NewRAGQueryTool(retriever *rag.Retriever) *RAGQueryTool {
	return &RAGQueryTool{retriever: retriever}
}

func (t *RAGQueryTool) Name() string { return string(ToolRAGQuery) }
func (t *RAGQueryTool) Description() string {
	return "Search the Pinecone knowledge base for documents relevant to a question."
}

func (t *RAGQueryTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"query": {
				"type": "string",
				"description": "The question to search for"
			}
		},
		"required": ["query"]
	}`)
}

func (t *RAGQueryTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	query, _ := params["query"].(string)
	if query == "" {
		return "Error: query is required", nil
	}

	out, err := t.retriever.Query(ctx, query)
	if err != nil {
		return fmt.Sprintf("An error occurred while searching the knowledge base: %v", err), nil
	}
	return out, nil
}

// RAGIngestTool adds a web page to the knowledge base.
type RAGIngestTool struct {
	ingestor *rag.Ingestor
}

// NewRAGIngestTool creates a RAGIngestTool.
func NewRAGIngestTool(ingestor *rag.Ingestor) *RAGIngestTool {
	return &RAGIngestTool{ingestor: ingestor}
}

func (t *RAGIngestTool) Name() string { return string(ToolRAGIngest) }
func (t *RAGIngestTool) Description() string {
	return "Fetch a web page, extract its readable content, and store it in the Pinecone knowledge base."
}

func (t *RAGIngestTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"url": {
				"type": "string",
				"description": "URL of the page to ingest"
			}
		},
		"required": ["url"]
	}`)
}

func (t *RAGIngestTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	url, _ := params["url"].(string)
	if url == "" {
		return "Error: url is required", nil
	}

	n, err := t.ingestor.IngestURL(ctx, url)
	if err != nil {
		return fmt.Sprintf("Error: %v", err), nil
	}
	return fmt.Sprintf("Ingested %d chunks from %s into the knowledge base.", n, url), nil
}
