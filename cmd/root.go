// Package cmd implements the assistkit CLI using cobra.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/assistkit/assistkit/internal/config"
	"github.com/assistkit/assistkit/internal/container"
)

const version = "0.1.0"
const logo = "🧩"

var configPathFlag string

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "assistkit",
	Short: logo + " assistkit — Assistant Integration Toolkit",
	Long:  logo + " assistkit — host-platform integration tools for chat assistants",
}

// Execute runs the root command and exits on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = version
	rootCmd.PersistentFlags().StringVar(&configPathFlag, "config", "", "Config file path (default ~/.assistkit/config.json)")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(councilCmd)
	rootCmd.AddCommand(docCmd)
	rootCmd.AddCommand(workflowCmd)
	rootCmd.AddCommand(ragCmd)
	rootCmd.AddCommand(vibeCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(toolsCmd)
}

// buildContainer loads the config and wires all services. It is the shared
// startup path for every command that talks to an external integration.
func buildContainer() (*container.Container, error) {
	cfg, err := config.Load(configPathFlag)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return container.New(cfg)
}
