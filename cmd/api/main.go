package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-retry"
	"go.uber.org/multierr"

	"github.com/nearbuyhq/nearbuy-backend/api/routes"
	"github.com/nearbuyhq/nearbuy-backend/internal/auth"
	"github.com/nearbuyhq/nearbuy-backend/internal/cache"
	"github.com/nearbuyhq/nearbuy-backend/internal/inventory"
	"github.com/nearbuyhq/nearbuy-backend/internal/items"
	"github.com/nearbuyhq/nearbuy-backend/internal/search"
	"github.com/nearbuyhq/nearbuy-backend/internal/shops"
	"github.com/nearbuyhq/nearbuy-backend/pkg/config"
	"github.com/nearbuyhq/nearbuy-backend/pkg/db"
	"github.com/nearbuyhq/nearbuy-backend/pkg/logger"
	"github.com/nearbuyhq/nearbuy-backend/pkg/migrate"
	"github.com/nearbuyhq/nearbuy-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		return err
	}

	if cfg.FeatureFlags.AutoMigrate && !cfg.FeatureFlags.UseSQLite {
		sqlDB, err := dbClient.DB().DB()
		if err != nil {
			return err
		}
		if err := migrate.Up(ctx, sqlDB); err != nil {
			return err
		}
		logg.Info(ctx, "migrations applied")
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return multierr.Append(err, dbClient.Close())
	}

	searchClient := search.NewClient(cfg.Typesense)
	if err := bootstrapSearch(ctx, searchClient); err != nil {
		// The index is rebuilt from the primary store on writes; a dead
		// search backend delays nearby queries but not the rest of the API.
		logg.Error(ctx, "search index bootstrap failed, continuing without it", err)
	}

	cacher := cache.New(redisClient, cfg.Cache.TTL, logg)
	indexer := search.NewBestEffort(searchClient, logg)

	authenticator := auth.NewAuthenticator(dbClient.DB(), logg)
	authService := auth.NewService(dbClient, indexer, cfg.Session, cfg.Password, logg)
	shopService := shops.NewService(dbClient, cacher, indexer, logg)
	itemService := items.NewService(dbClient, cacher, indexer, logg)
	inventoryService := inventory.NewService(dbClient, logg)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:        cfg,
			Logger:        logg,
			DB:            dbClient,
			Redis:         redisClient,
			Authenticator: authenticator,
			AuthService:   authService,
			Shops:         shopService,
			Items:         itemService,
			Inventory:     inventoryService,
			Search:        searchClient,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logCtx := logg.WithFields(ctx, map[string]any{
			"env":  cfg.App.Env,
			"addr": addr,
		})
		logg.Info(logCtx, "starting api server")
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return multierr.Combine(err, redisClient.Close(), dbClient.Close())
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var errs error
	if err := server.Shutdown(shutdownCtx); err != nil {
		errs = multierr.Append(errs, err)
	}
	errs = multierr.Append(errs, redisClient.Close())
	errs = multierr.Append(errs, dbClient.Close())
	return errs
}

// bootstrapSearch retries collection setup so the API survives a search
// backend that comes up after it does.
func bootstrapSearch(ctx context.Context, client *search.Client) error {
	backoff := retry.WithMaxRetries(5, retry.NewExponential(500*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := client.Ping(ctx); err != nil {
			return retry.RetryableError(err)
		}
		if err := client.EnsureCollections(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}
