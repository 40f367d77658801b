package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"product-catalog/internal/cache"
	"product-catalog/internal/config"
	"product-catalog/internal/database"
	"product-catalog/internal/handler"
	"product-catalog/internal/repository"
	"product-catalog/internal/router"
	"product-catalog/internal/seed"
	"product-catalog/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadEnvFile(envFile()); err != nil {
		return err
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting product catalog API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.EnsureSchema(ctx, pool, logger); err != nil {
		return err
	}

	// Initialize repository, optionally behind the Redis read cache
	productRepo := repository.NewProductRepository(pool, logger)

	var cached cache.CachedRepository
	if cfg.Cache.Enabled {
		client, err := cache.NewClient(ctx, cfg.Cache.Addr, cfg.Cache.Password, cfg.Cache.DB)
		if err != nil {
			return fmt.Errorf("failed to initialize cache: %w", err)
		}
		defer client.Close()

		cached = cache.NewCachedProductRepository(productRepo, client, cfg.Cache.Prefix, cfg.Cache.TTLDuration(), logger)
		productRepo = cached
		logger.Info().
			Str("addr", cfg.Cache.Addr).
			Dur("ttl", cfg.Cache.TTLDuration()).
			Msg("product cache enabled")
	}

	if cfg.Seed.OnStartup {
		seeder := seed.NewSeeder(seed.NewLoader(ctx, cfg.S3, logger), productRepo, logger)
		if _, err := seeder.Run(ctx, cfg.Seed.File); err != nil {
			return fmt.Errorf("failed to seed catalog: %w", err)
		}
	}

	// Initialize service and handlers
	productService := service.NewProductService(productRepo, logger)
	productHandler := handler.NewProductHandler(productService, logger)

	// Initialize router
	mux := router.New(productHandler, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		if cached != nil {
			stats := cached.Stats()
			logger.Info().
				Uint64("hits", stats.Hits).
				Uint64("misses", stats.Misses).
				Float64("hit_rate", stats.HitRate).
				Msg("product cache statistics")
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

func envFile() string {
	if path := os.Getenv("ENV_FILE"); path != "" {
		return path
	}
	return ".env"
}
