package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
)

var toolsJSON bool

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the registered assistant tools",
	RunE: func(_ *cobra.Command, _ []string) error {
		c, err := buildContainer()
		if err != nil {
			return err
		}
		registry := c.ToolRegistry()

		if toolsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(registry.Definitions())
		}

		all := registry.All()
		names := make([]string, 0, len(all))
		for name := range all {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			fmt.Printf("%-22s %s\n", name, all[name].Description())
		}
		return nil
	},
}

func init() {
	toolsCmd.Flags().BoolVar(&toolsJSON, "json", false, "Print OpenAI function definitions as JSON")
}
