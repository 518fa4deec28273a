package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/redline/pkg/adapters/fsback"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init <document.pdf>",
	Short: "Start a review of a document in the current directory",
	Long:  `Initialize a review directory for a document. The document becomes version 1 of a fresh lineage.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cwd, err := os.Getwd()
		if err != nil {
			fatal("Failed to get CWD", err)
		}

		dir := target
		if dir == "" {
			dir = cwd
		}
		backend, err := fsback.Init(fsback.Config{Path: dir, Logger: slog.Default()}, args[0])
		if err != nil {
			fatal("Failed to initialize review", err)
		}

		fmt.Println("Initialized review of", args[0], "in", backend.Path())
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
