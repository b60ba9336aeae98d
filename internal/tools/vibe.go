package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/assistkit/assistkit/internal/spotify"
)

// VibeTool finds Spotify playlists matching the mood of a conversation.
type VibeTool struct {
	finder *spotify.Finder
}

// NewVibeTool creates a VibeTool.
func NewVibeTool(finder *spotify.Finder) *VibeTool {
	return &VibeTool{finder: finder}
}

func (t *VibeTool) Name() string { return string(ToolFindVibe) }
func (t *VibeTool) Description() string {
	return "Find Spotify playlists matching the mood or context of the conversation, e.g. 'nostalgic about 2000s RPG games'."
}

func (t *VibeTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"context_text": {
				"type": "string",
				"description": "Text describing the mood, context, or desired music vibe"
			}
		},
		"required": ["context_text"]
	}`)
}

func (t *VibeTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	text, _ := params["context_text"].(string)
	if text == "" {
		return "Error: context_text is required", nil
	}

	result, err := t.finder.Find(ctx, text)
	if err != nil {
		return fmt.Sprintf("Error: %v", err), nil
	}
	return result.Markdown(), nil
}
