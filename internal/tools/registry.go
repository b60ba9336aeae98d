// Package tools exposes the host-platform integrations as named tools with
// JSON-schema parameters, ready for function-calling hosts.
package tools

import (
	"encoding/json"

	"github.com/assistkit/assistkit/internal/schema"
)

// ToolName is the canonical name of a built-in tool.
type ToolName string

const (
	ToolCouncil     ToolName = "ask_llm_council"
	ToolCreateDoc   ToolName = "create_google_doc"
	ToolRunWorkflow ToolName = "invoke_n8n_workflow"
	ToolRAGQuery    ToolName = "query_pinecone"
	ToolRAGIngest   ToolName = "ingest_document"
	ToolFindVibe    ToolName = "find_vibe_playlist"
)

// Registry holds a set of named tools and exposes them for execution.
type Registry struct {
	tools map[string]schema.Tool
}

// GetTool returns the tool with the given name, or nil.
func (r *Registry) GetTool(name ToolName) schema.Tool {
	return r.tools[string(name)]
}

// All returns every registered tool keyed by name.
func (r *Registry) All() map[string]schema.Tool {
	out := make(map[string]schema.Tool, len(r.tools))
	for k, t := range r.tools {
		out[k] = t
	}
	return out
}

// Definitions returns all tool definitions in OpenAI function-calling format.
func (r *Registry) Definitions() []map[string]any {
	list := make([]map[string]any, 0, len(r.tools))
	for _, t := range r.tools {
		var params any
		if err := json.Unmarshal(t.Parameters(), &params); err != nil {
			params = map[string]any{"type": "object", "properties": map[string]any{}}
		}
		list = append(list, map[string]any{
			"type": "function",
			"function": map[string]any{
				"name":        t.Name(),
				"description": t.Description(),
				"parameters":  params,
			},
		})
	}
	return list
}
