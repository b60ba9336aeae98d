package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	councilTimeout int
	councilNotify  bool
)

var councilCmd = &cobra.Command{
	Use:   "council <question>",
	Short: "Ask the LLM council to deliberate on a question",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCouncil,
}

func init() {
	councilCmd.Flags().IntVarP(&councilTimeout, "timeout", "t", 600, "Overall deliberation timeout in seconds")
	councilCmd.Flags().BoolVar(&councilNotify, "notify", false, "Deliver the report through the notifier")
}

func runCouncil(_ *cobra.Command, args []string) error {
	c, err := buildContainer()
	if err != nil {
		return err
	}

	question := strings.Join(args, " ")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(councilTimeout)*time.Second)
	defer cancel()

	report, err := c.Council().Run(ctx, question)
	if err != nil {
		return err
	}

	fmt.Println(report.Markdown())

	if councilNotify {
		if err := c.Notifier().Notify(ctx, "LLM Council: "+question, report.Markdown()); err != nil {
			fmt.Fprintf(os.Stderr, "notify failed: %v\n", err)
		}
	}
	return nil
}
