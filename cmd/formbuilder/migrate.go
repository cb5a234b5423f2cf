package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmynk/formbuilder/internal/storage/sqlstore"
)

func newMigrateCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate [up|down|status]",
		Short: "Apply, roll back or inspect schema migrations",
		Long: `Manage the database schema.

  up      apply all pending migrations (default)
  down    roll back the most recent migration
  status  list migrations and whether they are applied`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"up", "down", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			action := "up"
			if len(args) == 1 {
				action = args[0]
			}
			return runMigrate(cmd, opts, action)
		},
	}
	return cmd
}

func runMigrate(cmd *cobra.Command, opts *options, action string) error {
	ctx := cmd.Context()
	store, err := sqlstore.Connect(ctx, opts.cfg.Database.Driver, opts.cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer store.Close()

	switch action {
	case "up":
		err = store.Migrate(ctx)
	case "down":
		err = store.MigrateDown(ctx)
	case "status":
		err = store.MigrationStatus(ctx)
	default:
		return fmt.Errorf("unknown migrate action %q (valid: up, down, status)", action)
	}
	if err != nil {
		return err
	}
	return printVersion(ctx, cmd, store)
}

func printVersion(ctx context.Context, cmd *cobra.Command, store *sqlstore.Store) error {
	v, err := store.Version(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version: %d\n", v)
	return nil
}
