package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/glowupgrow/terrarium-api/internal/api"
	"github.com/glowupgrow/terrarium-api/internal/auth"
	"github.com/glowupgrow/terrarium-api/internal/catalog"
	"github.com/glowupgrow/terrarium-api/internal/config"
	"github.com/glowupgrow/terrarium-api/internal/observability"
	"github.com/glowupgrow/terrarium-api/internal/repository"
	"github.com/glowupgrow/terrarium-api/internal/repository/memory"
	"github.com/glowupgrow/terrarium-api/internal/repository/postgres"
	"github.com/glowupgrow/terrarium-api/internal/service"
	"github.com/glowupgrow/terrarium-api/internal/websocket"
)

const shutdownTimeout = 30 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP API. The terrarium catalog is seeded on startup so a
fresh database is immediately usable.`,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hasher := newHasher(cfg)
	repos, err := openRepositories(ctx, cfg, hasher)
	if err != nil {
		return err
	}

	metrics := observability.NewMetrics()
	sessions := auth.NewSessionManager(cfg.SessionSecret, cfg.SessionTTL, cfg.SecureCookies)
	services := service.NewServices(repos, hasher, sessions, metrics)

	if err := seedCatalog(ctx, services.Catalog, cfg.CatalogFile); err != nil {
		return err
	}

	hub := websocket.NewHub(services.Terrarium, metrics)
	services.Terrarium.SetPublisher(hub)
	go hub.Run()
	defer hub.Stop()

	srv := &http.Server{
		Addr:         "0.0.0.0" + cfg.Addr(),
		Handler:      api.NewRouter(services, hub, metrics),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting",
			"addr", srv.Addr,
			"environment", cfg.Environment,
			"in_memory", cfg.InMemory)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return oops.Code("SERVER_FAILED").With("addr", srv.Addr).Wrap(err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return oops.Code("SHUTDOWN_FAILED").Wrap(err)
	}

	slog.Info("server stopped")
	return nil
}

func newHasher(cfg *config.Config) *auth.Argon2idHasher {
	return auth.NewArgon2idHasher(auth.Argon2Params{
		Memory:      cfg.Argon2MemoryKiB,
		Iterations:  cfg.Argon2Iterations,
		Parallelism: cfg.Argon2Parallelism,
	})
}

func openRepositories(ctx context.Context, cfg *config.Config, hasher auth.PasswordHasher) (*repository.Repositories, error) {
	if cfg.InMemory {
		slog.Warn("using in-memory stores; data is lost on exit")
		return memory.NewRepositories(hasher), nil
	}

	db, err := postgres.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	return postgres.NewRepositories(db, hasher), nil
}

func seedCatalog(ctx context.Context, catalogService *service.CatalogService, path string) error {
	c, err := catalog.Load(path)
	if err != nil {
		return err
	}

	result, err := catalogService.Seed(ctx, c)
	if err != nil {
		return oops.Code("SEED_FAILED").With("operation", "seed catalog").Wrap(err)
	}
	slog.Info("catalog seeded", "models", result.Models, "plants", result.Plants)
	return nil
}
