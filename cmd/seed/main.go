package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"product-catalog/internal/cache"
	"product-catalog/internal/config"
	"product-catalog/internal/database"
	"product-catalog/internal/repository"
	"product-catalog/internal/seed"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	envFile := flag.String("env", ".env", "dotenv file to load before reading the environment")
	file := flag.String("file", "", "catalog file to seed from (defaults to SEED_FILE)")
	flag.Parse()

	if err := config.LoadEnvFile(*envFile); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)

	path := *file
	if path == "" {
		path = cfg.Seed.File
	}
	if path == "" {
		return fmt.Errorf("no catalog file given: use -file or set SEED_FILE")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.EnsureSchema(ctx, pool, logger); err != nil {
		return err
	}

	productRepo := repository.NewProductRepository(pool, logger)

	// Seeding must flush cached products, or readers would keep seeing the old catalog.
	if cfg.Cache.Enabled {
		client, err := cache.NewClient(ctx, cfg.Cache.Addr, cfg.Cache.Password, cfg.Cache.DB)
		if err != nil {
			return fmt.Errorf("failed to initialize cache: %w", err)
		}
		defer client.Close()
		productRepo = cache.NewCachedProductRepository(productRepo, client, cfg.Cache.Prefix, cfg.Cache.TTLDuration(), logger)
	}

	seeder := seed.NewSeeder(seed.NewLoader(ctx, cfg.S3, logger), productRepo, logger)
	result, err := seeder.Run(ctx, path)
	if err != nil {
		return err
	}

	fmt.Printf("seeded %d products from %s (%d replaced) in %s\n", result.Inserted, result.Source, result.Removed, result.Duration)
	return nil
}
