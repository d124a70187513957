package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/enginemock/enginemock/internal/api"
	"github.com/enginemock/enginemock/internal/bootstrap"
	"github.com/enginemock/enginemock/internal/catalog"
	"github.com/enginemock/enginemock/internal/config"
	"github.com/enginemock/enginemock/internal/observability"
	"github.com/enginemock/enginemock/internal/query/sample"
	"github.com/enginemock/enginemock/internal/server"
)

func main() {
	cfg, err := config.LoadFromEnv(config.ConnectorServiceName, config.ConnectorDefaultPort)
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg, os.Stdout)
	seed := bootstrap.LoadOrWarn(logger, cfg.Bootstrap.Path)
	manifest := catalog.NewStore(seed.Manifest)
	observability.SetManifestKeys(manifest.Len())

	handler := api.NewConnectorHandler(cfg, api.Dependencies{
		Logger:         logger,
		QueryEngine:    sample.NewConnectorEngine(),
		Manifest:       manifest,
		ConnectionInfo: catalog.NewStore(seed.ConnectionInfo),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting local ibis server", slog.String("addr", cfg.HTTP.Address))
	if err := server.Run(ctx, logger, server.New(cfg, handler), nil); err != nil {
		logger.Error("api server failed", slog.Any("error", err))
		os.Exit(1)
	}
}
