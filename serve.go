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

	"github.com/gin-gonic/gin"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"mindcare-be/internal/cache"
	"mindcare-be/internal/config"
	"mindcare-be/internal/database"
	"mindcare-be/internal/jwt"
	"mindcare-be/internal/logging"
	"mindcare-be/internal/metrics"
	"mindcare-be/internal/repository"
	"mindcare-be/internal/router"
	"mindcare-be/internal/service"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}
	if err := cfg.Validate(); err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}

	logger := logging.Setup(cfg.LogFormat, cfg.LogLevel, os.Stderr)
	slog.SetDefault(logger)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	accountRepo, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logging.LogError(logger, "failed to open account store", err, "driver", cfg.StoreDriver)
		return err
	}
	defer closeStore()

	// Initialize Redis cache (optional - continue if Redis is unavailable)
	var profileCache cache.Cache
	if cfg.RedisURL != "" {
		profileCache, err = cache.NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn("redis unavailable, continuing without profile cache", "error", err)
			profileCache = nil
		} else {
			defer profileCache.Close()
			logger.Info("connected to redis cache")
		}
	}

	m := metrics.New()
	jwtService := jwt.NewJWTService(cfg.JWTSecret, jwt.SessionTTL)
	hasher := service.NewPasswordHasher(cfg.HashConcurrency, m)
	authService := service.NewAuthService(accountRepo, jwtService, hasher, profileCache, m, logger)

	engine := router.New(ctx, router.Deps{
		Config:      cfg,
		AuthService: authService,
		Metrics:     m,
		Logger:      logger,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", cfg.Addr(), "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return oops.Code("SERVER_FAILED").Wrap(err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down", "timeout", cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return oops.Code("SHUTDOWN_FAILED").Wrap(err)
	}
	return nil
}

// openStore builds the account repository selected by STORE_DRIVER. The
// returned func releases its connections.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repository.AccountRepository, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := database.NewConnection(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, nil, oops.Code("DB_CONNECT_FAILED").Wrap(err)
		}
		if err := database.RunMigrations(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, oops.Code("MIGRATION_FAILED").Wrap(err)
		}
		return repository.NewPostgresAccountRepository(db), func() { _ = db.Close() }, nil

	case config.DriverMongo:
		db, err := database.NewMongoDatabase(ctx, cfg.MongoURI, cfg.MongoDatabase, logger)
		if err != nil {
			return nil, nil, oops.Code("DB_CONNECT_FAILED").Wrap(err)
		}
		return repository.NewMongoAccountRepository(db), func() {
			_ = db.Client().Disconnect(context.Background())
		}, nil

	case config.DriverMemory:
		logger.Warn("using in-memory account store, accounts are lost on restart")
		return repository.NewMemoryAccountRepository(), func() {}, nil
	}

	return nil, nil, oops.Code("CONFIG_INVALID").Errorf("unknown store driver %q", cfg.StoreDriver)
}
