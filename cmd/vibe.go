package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var vibeCmd = &cobra.Command{
	Use:   "vibe <description>",
	Short: "Find Spotify playlists matching a mood or activity",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		c, err := buildContainer()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		result, err := c.VibeFinder().Find(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Println(result.Markdown())
		return nil
	},
}
