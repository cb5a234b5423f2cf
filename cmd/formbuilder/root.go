package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmynk/formbuilder/internal/config"
	"github.com/mmynk/formbuilder/pkg/logging"
)

// options are the flags shared by every subcommand.
type options struct {
	configPath string
	addr       string
	dbDriver   string
	dbDSN      string

	cfg    *config.Config
	logger *slog.Logger
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "formbuilder",
		Short: "Form builder API server",
		Long: `formbuilder serves a REST API for building forms with nested field
structures, collecting responses and managing presets.

Configuration is read from a YAML file, then FORMBUILDER_* environment
variables, then flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", envOr("FORMBUILDER_CONFIG", "formbuilder.yaml"), "path to the YAML config file")
	flags.StringVar(&opts.dbDriver, "db-driver", "", "database driver: sqlite or postgres")
	flags.StringVar(&opts.dbDSN, "db-dsn", "", "database DSN (file path for sqlite)")

	root.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newCreateAdminCmd(opts),
		newPruneTokensCmd(opts),
	)
	return root
}

// load reads the config file and applies flag overrides, then installs the
// configured logger.
func (o *options) load(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("addr") {
		cfg.Server.Addr = o.addr
	}
	if o.dbDriver != "" {
		cfg.Database.Driver = o.dbDriver
	}
	if o.dbDSN != "" {
		cfg.Database.DSN = o.dbDSN
	}

	logger, err := logging.Configure(cfg.Logging.Format, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("invalid logging config: %w", err)
	}
	o.cfg = cfg
	o.logger = logger
	return nil
}
