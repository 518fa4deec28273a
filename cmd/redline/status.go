package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the review state of the current version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		session := openSession(context.Background())
		v := session.Review().Version

		fmt.Printf("Version %d (%s)\n", v.VersionNumber, v.Status)
		fmt.Printf("  File:       %s\n", v.FileURL)
		fmt.Printf("  Unresolved: %d comment(s)\n", session.UnresolvedComments())
		fmt.Printf("  Revisions:  %d of %d used\n", v.RevisionsUsed, v.RevisionLimit)
		if session.ReadOnly() {
			fmt.Println("  This version is read-only.")
		}
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
