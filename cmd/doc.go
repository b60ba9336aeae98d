package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var docCmd = &cobra.Command{
	Use:   "doc",
	Short: "Create Google Docs from templates",
}

func init() {
	docCmd.AddCommand(docCreateCmd)
}

var (
	docCreateFilename string
	docCreateSet      []string
)

var docCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a document from the template",
	RunE: func(_ *cobra.Command, _ []string) error {
		replacements := make(map[string]string, len(docCreateSet))
		for _, kv := range docCreateSet {
			k, v, ok := strings.Cut(kv, "=")
			if !ok {
				return fmt.Errorf("invalid --set value %q: want key=value", kv)
			}
			replacements[k] = v
		}

		c, err := buildContainer()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		url, err := c.Docs().Create(ctx, docCreateFilename, replacements)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Created document '%s'\n  %s\n", docCreateFilename, url)
		return nil
	},
}

func init() {
	docCreateCmd.Flags().StringVarP(&docCreateFilename, "filename", "f", "", "Name of the new document (required)")
	docCreateCmd.Flags().StringArrayVarP(&docCreateSet, "set", "s", nil, "Placeholder replacement key=value (repeatable)")

	_ = docCreateCmd.MarkFlagRequired("filename")
}
