package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
)

func newPruneTokensCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "prune-tokens",
		Short: "Delete revocation records of tokens that have expired",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := openStore(ctx, opts.cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := store.PruneRevokedTokens(ctx, time.Now().Unix())
			if err != nil {
				return err
			}
			slog.Info("Pruned revoked tokens", "count", n)
			fmt.Fprintf(cmd.OutOrStdout(), "pruned %d revoked tokens\n", n)
			return nil
		},
	}
}
