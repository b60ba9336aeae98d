package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/assistkit/assistkit/internal/docs"
	"github.com/assistkit/assistkit/internal/status"
)

// CreateDocTool instantiates a Google Doc from the configured template.
type CreateDocTool struct {
	client  *docs.Client
	emitter status.Emitter
}

// NewCreateDocTool creates a CreateDocTool.
func NewCreateDocTool(client *docs.Client, emitter status.Emitter) *CreateDocTool {
	if emitter == nil {
		emitter = status.Nop
	}
	return &CreateDocTool{client: client, emitter: emitter}
}

func (t *CreateDocTool) Name() string { return string(ToolCreateDoc) }
func (t *CreateDocTool) Description() string {
	return "Create a Google Doc from the configured template, replacing placeholders like {client} with provided values."
}

func (t *CreateDocTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"filename": {
				"type": "string",
				"description": "Name of the new document"
			},
			"replacements": {
				"type": "object",
				"description": "Placeholder to value map, e.g. {\"{client}\": \"Company X\"}",
				"additionalProperties": {"type": "string"}
			}
		},
		"required": ["filename"]
	}`)
}

func (t *CreateDocTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	if !t.client.Configured() {
		return "Error: you need to configure the docs webhook URL first", nil
	}
	filename, _ := params["filename"].(string)
	if filename == "" {
		return "Error: filename is required", nil
	}

	replacements := make(map[string]string)
	if raw, ok := params["replacements"].(map[string]any); ok {
		for k, v := range raw {
			if s, ok := v.(string); ok {
				replacements[k] = s
			}
		}
	}

	status.Info(t.emitter, "Sending data to Google...")
	url, err := t.client.Create(ctx, filename, replacements)
	if err != nil {
		status.Error(t.emitter, "Error: %v", err)
		return fmt.Sprintf("Failed to create document: %v", err), nil
	}

	status.Done(t.emitter, "Document created!")
	return fmt.Sprintf("Success! The document was created.\n\n**Name:** %s\n**Access here:** [Open Document](%s)", filename, url), nil
}
