package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var approveCmd = &cobra.Command{
	Use:   "approve",
	Short: "Approve the current version",
	Long:  `Approve the current version. Approval is final: the version becomes read-only. Unresolved comments block it.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		session := openSession(ctx)
		if err := session.Approve(ctx); err != nil {
			fatal("Cannot approve", err)
		}
		fmt.Printf("Approved version %d\n", session.Review().Version.VersionNumber)
	},
}

var requestCmd = &cobra.Command{
	Use:   "request-changes",
	Short: "Request another revision of the document",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		session := openSession(ctx)
		if err := session.RequestChanges(ctx); err != nil {
			fatal("Cannot request changes", err)
		}
		v := session.Review().Version
		fmt.Printf("Requested changes on version %d (%d of %d revisions used)\n",
			v.VersionNumber, v.RevisionsUsed, v.RevisionLimit)
	},
}

func init() {
	rootCmd.AddCommand(approveCmd)
	rootCmd.AddCommand(requestCmd)
}
