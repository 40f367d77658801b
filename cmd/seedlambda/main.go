package main

import (
	"context"
	"fmt"
	"os"

	"product-catalog/internal/cache"
	"product-catalog/internal/config"
	"product-catalog/internal/database"
	"product-catalog/internal/repository"
	"product-catalog/internal/seed"

	"github.com/aws/aws-lambda-go/lambda"
)

func main() {
	handler, err := newHandler(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	lambda.Start(handler.Handle)
}

// newHandler wires the seed event handler once per Lambda execution environment.
func newHandler(ctx context.Context) (*seed.EventHandler, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := database.EnsureSchema(ctx, pool, logger); err != nil {
		return nil, err
	}

	productRepo := repository.NewProductRepository(pool, logger)
	if cfg.Cache.Enabled {
		client, err := cache.NewClient(ctx, cfg.Cache.Addr, cfg.Cache.Password, cfg.Cache.DB)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize cache: %w", err)
		}
		productRepo = cache.NewCachedProductRepository(productRepo, client, cfg.Cache.Prefix, cfg.Cache.TTLDuration(), logger)
	}

	newLoader := func(ctx context.Context, bucket string) (seed.Loader, error) {
		return seed.NewS3Loader(ctx, bucket, cfg.S3.Region, logger)
	}

	return seed.NewEventHandler(newLoader, productRepo, logger), nil
}
