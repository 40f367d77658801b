package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// ProductsSchema is the DDL for the products table.
const ProductsSchema = `
	CREATE TABLE IF NOT EXISTS products (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL CHECK (name <> ''),
		brand TEXT,
		price DOUBLE PRECISION,
		quantity INTEGER NOT NULL DEFAULT 0,
		description TEXT,
		image TEXT,
		seeded BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);
`

// EnsureSchema creates the products table if it does not exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) error {
	if _, err := pool.Exec(ctx, ProductsSchema); err != nil {
		logger.Error().Err(err).Msg("failed to create products table")
		return fmt.Errorf("failed to ensure schema: %w", err)
	}

	logger.Debug().Msg("products schema ensured")
	return nil
}
