package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/redline/internal/platform"
	"github.com/aretw0/redline/pkg/adapters/fsback"
)

// uploadCmd appends a new revision to a local review lineage.
var uploadCmd = &cobra.Command{
	Use:   "upload <document.pdf>",
	Short: "Add a new version of the document",
	Long:  `Add a new revision to the lineage and make it current. The revision budget caps how many rounds a review allows.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dir := target
		if dir == "" {
			cwd, err := os.Getwd()
			if err != nil {
				fatal("Failed to get CWD", err)
			}
			dir, err = platform.FindReview(cwd)
			if err != nil {
				fatal("No review found", err)
			}
		}

		backend, err := fsback.Open(fsback.Config{Path: dir, Logger: slog.Default()})
		if err != nil {
			fatal("Failed to open review", err)
		}
		v, err := backend.AddVersion(context.Background(), args[0])
		if err != nil {
			fatal("Failed to add version", err)
		}
		fmt.Printf("Added version %d (%s)\n", v.VersionNumber, args[0])
	},
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}
