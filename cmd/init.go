package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/assistkit/assistkit/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the configuration file",
	RunE:  runInit,
}

func runInit(_ *cobra.Command, _ []string) error {
	cfgPath := configPathFlag
	if cfgPath == "" {
		cfgPath = config.ConfigPath()
	}

	if _, err := os.Stat(cfgPath); err == nil {
		fmt.Printf("Config already exists at %s\n", cfgPath)
		fmt.Printf("Press Enter to refresh (keep existing values) or Ctrl+C to cancel: ")
		fmt.Scanln()
		existing, loadErr := config.Load(cfgPath)
		if loadErr != nil {
			def := config.DefaultConfig()
			existing = &def
		}
		if err := config.Save(existing, cfgPath); err != nil {
			return err
		}
		fmt.Printf("✓ Config refreshed at %s\n", cfgPath)
	} else {
		cfg := config.DefaultConfig()
		if err := config.Save(&cfg, cfgPath); err != nil {
			return err
		}
		fmt.Printf("✓ Created config at %s\n", cfgPath)
	}

	jobsDir := filepath.Join(config.DataDir(), "workflows")
	if err := os.MkdirAll(jobsDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	fmt.Printf("\n%s assistkit is ready!\n\n", logo)
	fmt.Println("Next steps:")
	fmt.Printf("  1. Add your integration credentials to %s\n", cfgPath)
	fmt.Printf("  2. Check what is wired up: assistkit status\n")
	fmt.Printf("  3. Try it: assistkit council \"Which database fits this workload?\"\n")
	return nil
}
