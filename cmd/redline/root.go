package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/redline"
	"github.com/aretw0/redline/internal/platform"
)

var (
	verbose    bool
	target     string
	adapter    string
	token      string
	configPath string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "redline",
	Short: "Review and annotate document versions from the terminal",
	Long: `Redline drives a document review from the command line: list versions,
add and resolve annotations, approve or request changes, and render pages
with their annotation overlay.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&target, "target", "", "Review directory or server URL (default: search upwards for review.yaml)")
	rootCmd.PersistentFlags().StringVar(&adapter, "adapter", "", "Backend adapter: fs or http")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "Bearer token for the http adapter")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "redline.yaml", "Configuration file")
}

// openSession resolves the target from flags, config file, or the nearest
// review directory, and opens a session against it.
func openSession(ctx context.Context) *redline.Session {
	cfg, err := platform.LoadConfig(configPath)
	if err != nil {
		fatal("Failed to load config", err)
	}

	uri := target
	if uri == "" {
		uri = cfg.Target
	}
	opts := cfg.Options()
	if adapter != "" {
		opts = append(opts, redline.WithAdapter(adapter))
	}
	if token != "" {
		opts = append(opts, redline.WithToken(token))
	}
	opts = append(opts, redline.WithLogger(slog.Default()))

	if uri == "" {
		cwd, err := os.Getwd()
		if err != nil {
			fatal("Failed to get CWD", err)
		}
		uri, err = platform.FindReview(cwd)
		if err != nil {
			fatal("No review found", err)
		}
	}

	session, err := redline.New(ctx, uri, opts...)
	if err != nil {
		fatal("Failed to open review", err)
	}
	return session
}
