package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/formbuilder/internal/config"
	"github.com/mmynk/formbuilder/pkg/logging"
)

func newServeCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config, \":8000\")")
	return cmd
}

func runServe(ctx context.Context, opts *options) error {
	cfg := opts.cfg
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	handler := newServer(cfg, store, opts.logger).Handler()

	srv := &http.Server{
		Addr: cfg.Server.Addr,
		// h2c serves HTTP/2 without TLS
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Server starting", "address", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down", "timeout", cfg.Server.ShutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if _, err := os.Stat(opts.configPath); err == nil {
		g.Go(func() error {
			return config.Watch(gctx, opts.configPath, func(next *config.Config) {
				if err := logging.SetLevel(next.Logging.Level); err != nil {
					slog.Warn("Ignoring log level change", "error", err)
				}
			})
		})
	}

	if err := g.Wait(); err != nil {
		slog.Error("Server failed", "error", err)
		return err
	}
	slog.Info("Server stopped")
	return nil
}
