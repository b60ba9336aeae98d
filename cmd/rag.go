package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var ragCmd = &cobra.Command{
	Use:   "rag",
	Short: "Query and populate the Pinecone knowledge base",
}

func init() {
	ragCmd.AddCommand(ragQueryCmd)
	ragCmd.AddCommand(ragIngestCmd)
}

var ragQueryCmd = &cobra.Command{
	Use:   "query <question>",
	Short: "Retrieve relevant context for a question",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		c, err := buildContainer()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		out, err := c.Retriever().Query(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	},
}

var ragIngestCmd = &cobra.Command{
	Use:   "ingest <url>",
	Short: "Fetch a web page, chunk it, and upsert it into the index",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		c, err := buildContainer()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		count, err := c.Ingestor().IngestURL(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("✓ Ingested %d chunk(s) from %s\n", count, args[0])
		return nil
	},
}
