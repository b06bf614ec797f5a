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

	"github.com/siddharth-behl/100cr/pkg/config"
	"github.com/siddharth-behl/100cr/pkg/db"
	"github.com/siddharth-behl/100cr/pkg/gateway"
	"github.com/siddharth-behl/100cr/pkg/repository"
	"github.com/siddharth-behl/100cr/pkg/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if err := run(logger); err != nil {
		logger.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		return err
	}

	// Catalog load is fail-fast: an invalid catalog prevents startup.
	loader := config.NewConfigLoader(cfg.CatalogPath, logger)
	if _, err := loader.LoadConfig(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The remote store is optional: a failed connection commits the gateway
	// to its in-memory fallback for the process lifetime.
	gw := connectGateway(ctx, cfg, logger)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.New(gw, logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("API server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// connectGateway connects to PostgreSQL within the load timeout. Any failure
// degrades to in-memory operation; the remote is only retried at next start.
func connectGateway(ctx context.Context, cfg config.ServerConfig, logger *slog.Logger) *gateway.Gateway {
	if cfg.RemoteDisabled {
		return gateway.New(nil, cfg.LoadTimeout, logger)
	}

	dbCfg := db.NewConfigFromEnv()
	sqlDB, err := db.Connect(ctx, dbCfg, cfg.LoadTimeout)
	if err != nil {
		logger.Error("Failed to connect to database, using in-memory fallback", "error", err)
		return gateway.New(nil, cfg.LoadTimeout, logger)
	}

	repo := repository.NewPostgresRepository(sqlDB)
	if err := repo.EnsureSchema(ctx); err != nil {
		logger.Error("Failed to ensure database schema, using in-memory fallback", "error", err)
		_ = sqlDB.Close()
		return gateway.New(nil, cfg.LoadTimeout, logger)
	}

	logger.Info("Connected to database", "host", dbCfg.Host, "database", dbCfg.Database)
	return gateway.New(repo, cfg.LoadTimeout, logger)
}
