package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/redline"
	"github.com/aretw0/redline/internal/platform"
	"github.com/aretw0/redline/pkg/adapters/fsback"
)

// watchCmd follows a local review directory and reports changes made by
// other processes, e.g. a reviewer annotating from another machine syncing
// the same directory.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the review and report incoming changes",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

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
		session, err := redline.New(ctx, dir, redline.WithBackend(backend), redline.WithIdentityStore(backend))
		if err != nil {
			fatal("Failed to open review", err)
		}

		changes, err := backend.Watch(ctx)
		if err != nil {
			fatal("Failed to watch review", err)
		}

		fmt.Println("Watching", dir)
		for range changes {
			if err := session.Refresh(ctx); err != nil {
				slog.Default().Warn("refresh failed", "error", err)
				continue
			}
			v := session.Review().Version
			fmt.Printf("Version %d (%s): %d annotation(s), %d unresolved\n",
				v.VersionNumber, v.Status, len(session.Annotations()), session.UnresolvedComments())
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
