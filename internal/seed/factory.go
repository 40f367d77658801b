package seed

import (
	"context"

	appconfig "product-catalog/internal/config"

	"github.com/rs/zerolog"
)

// NewLoader builds the catalog loader described by cfg: S3 with a local
// fallback when S3 is enabled, otherwise the local file system only. An S3
// client that cannot be configured degrades to local only.
func NewLoader(ctx context.Context, cfg appconfig.S3Config, logger zerolog.Logger) Loader {
	fileLoader := NewFileLoader(logger)

	if !cfg.Enabled {
		logger.Info().Msg("using local file system for catalog files (S3 disabled)")
		return NewFallbackLoader(nil, fileLoader, "", logger)
	}

	s3Loader, err := NewS3Loader(ctx, cfg.Bucket, cfg.Region, logger)
	if err != nil {
		logger.Warn().
			Err(err).
			Msg("failed to initialise S3 loader, falling back to local file system only")
		return NewFallbackLoader(nil, fileLoader, "", logger)
	}

	return NewFallbackLoader(s3Loader, fileLoader, cfg.Prefix, logger)
}
