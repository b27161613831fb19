package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/infinai/infinai/internal/auth"
	"github.com/infinai/infinai/internal/cache"
	"github.com/infinai/infinai/internal/content"
	"github.com/infinai/infinai/internal/identity"
	"github.com/infinai/infinai/internal/service"
)

func newSyncUsersCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync-users",
		Short: "Copy every identity provider account into the users collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := opts.context(cmd)
			defer cancel()

			e, err := opts.open(ctx, cmd)
			if err != nil {
				return err
			}
			defer e.store.Close()

			provider, err := identity.New(ctx, e.cfg)
			if err != nil {
				return err
			}

			// Share the server's lock when Redis is configured.
			var locker service.SyncLocker
			if e.cfg.RedisURL != "" {
				c, err := cache.New(ctx, e.cfg.RedisURL)
				if err != nil {
					return fmt.Errorf("connect redis: %w", err)
				}
				defer c.Close()
				locker = c
			}

			svc := service.NewUserSyncService(e.store, provider, locker, service.SyncOptions{
				PageSize: e.cfg.SyncPageSize,
				MaxPages: e.cfg.SyncMaxPages,
				LockTTL:  e.cfg.SyncLockTTL,
			}, nil, e.logger)

			result, err := svc.Sync(ctx)
			if err != nil {
				return err
			}
			if opts.json {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "synced %d users from %s in %d page(s)\n", result.Synced, provider.Name(), result.Pages)
			if result.Skipped > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "skipped %d users without an id\n", result.Skipped)
			}
			if result.Truncated {
				fmt.Fprintf(cmd.OutOrStdout(), "stopped at SYNC_MAX_PAGES=%d; run again to continue\n", e.cfg.SyncMaxPages)
			}
			return nil
		},
	}
}

func newStatsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print subscriber, user and project counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := opts.context(cmd)
			defer cancel()

			e, err := opts.open(ctx, cmd)
			if err != nil {
				return err
			}
			defer e.store.Close()

			site, err := content.Default()
			if err != nil {
				return err
			}
			stats, err := service.NewStatsService(e.store, site).Stats(ctx)
			if err != nil {
				return err
			}
			if opts.json {
				return writeJSON(cmd.OutOrStdout(), stats)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "subscribers  %d\n", stats.Subscribers)
			fmt.Fprintf(w, "users        %d\n", stats.Users)
			fmt.Fprintf(w, "projects     active=%d future=%d research=%d\n",
				stats.Projects.Active, stats.Projects.Future, stats.Projects.Research)
			fmt.Fprintf(w, "team members %d\n", stats.Projects.TeamMembers)
			return nil
		},
	}
}

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the schema of the configured store",
		Long:  "Every store applies its idempotent schema when opened. migrate opens it once and checks the connection.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := opts.context(cmd)
			defer cancel()

			e, err := opts.open(ctx, cmd)
			if err != nil {
				return err
			}
			defer e.store.Close()

			if err := e.store.Ping(ctx); err != nil {
				return fmt.Errorf("ping store: %w", err)
			}
			driver, _ := e.cfg.StorageDriver()
			fmt.Fprintf(cmd.OutOrStdout(), "%s schema is up to date\n", driver)
			return nil
		},
	}
}

func newHashSecretCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-secret [secret]",
		Short: "Print an argon2id hash for SYNC_API_SECRET_HASH",
		Long:  "Reads the secret from the argument, or from stdin when no argument is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := ""
			if len(args) == 1 {
				secret = args[0]
			} else {
				b, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), 4096))
				if err != nil {
					return fmt.Errorf("read secret: %w", err)
				}
				secret = string(b)
			}
			secret = strings.TrimSpace(secret)
			if secret == "" {
				return errors.New("secret must not be empty")
			}

			hash, err := auth.HashPassword(secret)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
