package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/assistkit/assistkit/internal/config"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show assistkit status",
	RunE:  runStatus,
}

func runStatus(_ *cobra.Command, _ []string) error {
	cfgPath := configPathFlag
	if cfgPath == "" {
		cfgPath = config.ConfigPath()
	}

	fmt.Printf("%s assistkit Status\n\n", logo)

	_, statErr := os.Stat(cfgPath)
	cfgMark := "✗"
	if statErr == nil {
		cfgMark = "✓"
	}
	fmt.Printf("Config: %s %s\n\n", cfgPath, cfgMark)

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("  (could not load config: %v)\n", err)
		return nil
	}

	fmt.Println("Integrations:")
	printIntegration("OpenWebUI", cfg.OpenWebUI.APIKey != "" || os.Getenv("OPENWEBUI_API_KEY") != "")
	printIntegration("Fallback (OpenAI)", cfg.Fallback.APIKey != "" || os.Getenv("OPENAI_API_KEY") != "" || os.Getenv("OPENROUTER_API_KEY") != "")
	printIntegration("Google Docs", cfg.Docs.WebhookURL != "")
	printIntegration("n8n", cfg.N8N.URL != "")
	printIntegration("Pinecone", cfg.Pinecone.APIKey != "" && cfg.Pinecone.IndexName != "")
	printIntegration("Spotify", cfg.Spotify.ClientID != "" && cfg.Spotify.ClientSecret != "")
	printIntegration("Slack notifier", cfg.Slack.Enabled && cfg.Slack.Token != "")

	fmt.Printf("\nCouncil models: %s\n", cfg.Council.Models)
	return nil
}

func printIntegration(label string, configured bool) {
	if configured {
		fmt.Printf("  %-20s ✓\n", label)
	} else {
		fmt.Printf("  %-20s (not set)\n", label)
	}
}
