package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/assistkit/assistkit/internal/n8n"
	"github.com/assistkit/assistkit/internal/status"
)

// WorkflowTool invokes the configured n8n agent workflow.
type WorkflowTool struct {
	client  *n8n.Client
	emitter status.Emitter
}

// NewWorkflowTool creates a WorkflowTool.
func NewWorkflowTool(client *n8n.Client, emitter status.Emitter) *WorkflowTool {
	if emitter == nil {
		emitter = status.Nop
	}
	return &WorkflowTool{client: client, emitter: emitter}
}

func (t *WorkflowTool) Name() string { return string(ToolRunWorkflow) }
func (t *WorkflowTool) Description() string {
	return "Send input text to the configured n8n agent workflow and return its response."
}

func (t *WorkflowTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"input_text": {
				"type": "string",
				"description": "Text to send to the workflow"
			},
			"session_id": {
				"type": "string",
				"description": "Conversation identifier for multi-turn workflows"
			}
		},
		"required": ["input_text"]
	}`)
}

func (t *WorkflowTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	input, _ := params["input_text"].(string)
	if input == "" {
		status.Error(t.emitter, "No input text provided")
		return "Error: no input text provided", nil
	}
	sessionID, _ := params["session_id"].(string)

	status.Info(t.emitter, "Executing N8N Workflow...")
	out, err := t.client.Invoke(ctx, input, sessionID)
	if err != nil {
		status.Error(t.emitter, "Error during execution: %v", err)
		return fmt.Sprintf("Error: %v", err), nil
	}

	status.Done(t.emitter, "Workflow complete.")
	return out, nil
}
