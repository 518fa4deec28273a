package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "List the version lineage",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		session := openSession(context.Background())
		loaded := session.Review().Version.ID

		for _, v := range session.Versions() {
			marker := " "
			if v.ID == loaded {
				marker = "*"
			}
			current := ""
			if v.IsCurrent {
				current = " (current)"
			}
			fmt.Printf("%s v%d  %-17s %s%s\n", marker, v.VersionNumber, v.Status, v.ID, current)
		}
	},
}

func init() {
	rootCmd.AddCommand(versionsCmd)
}
