package main

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/mmynk/formbuilder/internal/api"
	"github.com/mmynk/formbuilder/internal/auth"
	"github.com/mmynk/formbuilder/internal/config"
	"github.com/mmynk/formbuilder/internal/service"
	"github.com/mmynk/formbuilder/internal/storage/sqlstore"
)

func openStore(ctx context.Context, cfg *config.Config) (*sqlstore.Store, error) {
	store, err := sqlstore.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	slog.Info("Storage initialized", "driver", string(store.Dialect()))
	return store, nil
}

func newAuthenticator(cfg *config.Config, store *sqlstore.Store) *auth.PasswordAuthenticator {
	return auth.NewPasswordAuthenticator(store,
		auth.WithMinLength(cfg.Auth.MinPasswordLength),
		auth.WithCost(cfg.Auth.BcryptCost),
	)
}

// newServer wires the services, the token verifier and the metrics
// registry into an API server.
func newServer(cfg *config.Config, store *sqlstore.Store, logger *slog.Logger) *api.Server {
	authenticator := newAuthenticator(cfg, store)
	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)
	verifier := auth.NewVerifier(jwtManager, store)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(store.DB(), string(store.Dialect())),
	)

	return api.New(api.Deps{
		Auth:           service.NewAuthService(authenticator, jwtManager, verifier, store),
		Users:          service.NewUserService(store, authenticator),
		Forms:          service.NewFormService(store),
		Responses:      service.NewResponseService(store),
		Presets:        service.NewPresetService(store),
		Fields:         service.NewFieldService(store),
		Comments:       service.NewCommentService(store),
		Verifier:       verifier,
		Registry:       reg,
		Ping:           store.Ping,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         logger,
	})
}
