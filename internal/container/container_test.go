package container

import (
	"context"
	"testing"
	"time"

	"github.com/assistkit/assistkit/internal/config"
)

func TestNew_WiresAllServices(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.OpenWebUI.APIKey = "sk-test"
	cfg.OpenWebUI.BaseURL = "http://localhost:3000/api"

	c, err := New(&cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if c.ModelClient() == nil {
		t.Error("nil model client")
	}
	if c.Emitter() == nil {
		t.Error("nil emitter")
	}
	if c.Council() == nil {
		t.Error("nil council orchestrator")
	}
	if c.Docs() == nil || c.Workflow() == nil || c.Scheduler() == nil {
		t.Error("nil integration client")
	}
	if c.Retriever() == nil || c.Ingestor() == nil || c.VibeFinder() == nil {
		t.Error("nil rag/spotify service")
	}
	if c.Notifier() == nil {
		t.Error("nil notifier")
	}
	if c.ToolRegistry() == nil || len(c.ToolRegistry().All()) != 6 {
		t.Errorf("expected 6 registered tools")
	}
}

func TestModelParams_CarriesRequestTimeout(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Council.TimeoutSeconds = 120

	p := modelParams(&cfg)
	if p.RequestTimeout != 120*time.Second {
		t.Errorf("RequestTimeout = %v, want 120s", p.RequestTimeout)
	}
}

func TestNew_SlackDisabledUsesNopNotifier(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.OpenWebUI.APIKey = "sk-test"
	cfg.OpenWebUI.BaseURL = "http://localhost:3000/api"
	cfg.Slack.Enabled = false

	c, err := New(&cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Notifier().Notify(context.Background(), "title", "body"); err != nil {
		t.Errorf("nop notifier returned error: %v", err)
	}
}
