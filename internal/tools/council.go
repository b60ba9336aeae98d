package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/assistkit/assistkit/internal/council"
)

// CouncilTool runs a full council deliberation over a question.
type CouncilTool struct {
	orchestrator *council.Orchestrator
}

// NewCouncilTool creates a CouncilTool.
func NewCouncilTool(o *council.Orchestrator) *CouncilTool {
	return &CouncilTool{orchestrator: o}
}

func (t *CouncilTool) Name() string { return string(ToolCouncil) }
func (t *CouncilTool) Description() string {
	return "Ask a council of LLMs. Each model answers, peers rank the anonymized answers, and a chairperson synthesizes the final response."
}

func (t *CouncilTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"question": {
				"type": "string",
				"description": "The question to deliberate on"
			}
		},
		"required": ["question"]
	}`)
}

func (t *CouncilTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	question, _ := params["question"].(string)
	if question == "" {
		return "Error: question is required", nil
	}

	report, err := t.orchestrator.Run(ctx, question)
	if err != nil {
		return fmt.Sprintf("Error: %v", err), nil
	}
	return report.Markdown(), nil
}
