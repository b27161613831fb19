package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/infinai/infinai/internal/config"
	"github.com/infinai/infinai/internal/repository"
	"github.com/infinai/infinai/internal/storage"
)

type rootOptions struct {
	timeout time.Duration
	verbose bool
	json    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "infinaictl",
		Short: "Maintenance commands for the InfinAI site",
		Long: `infinaictl talks to the same store and identity provider as the web
server, configured through the same environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 2*time.Minute, "overall deadline for the command")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log progress to stderr")
	cmd.PersistentFlags().BoolVar(&opts.json, "json", false, "print results as JSON")

	cmd.AddCommand(
		newSyncUsersCmd(opts),
		newStatsCmd(opts),
		newMigrateCmd(opts),
		newHashSecretCmd(),
	)
	return cmd
}

// env bundles what the store-backed commands share.
type env struct {
	cfg    *config.Config
	store  repository.Store
	logger *slog.Logger
}

func (o *rootOptions) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// open loads config and connects to the store. The caller closes it.
func (o *rootOptions) open(ctx context.Context, cmd *cobra.Command) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	store, err := storage.Open(ctx, cfg.DatabaseURL, cfg.DatabaseName)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return &env{cfg: cfg, store: store, logger: o.logger(cmd.ErrOrStderr())}, nil
}

func (o *rootOptions) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), o.timeout)
}
