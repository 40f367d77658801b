package seed

import (
	"context"
	"fmt"
	"os"

	"product-catalog/internal/model"

	"github.com/rs/zerolog"
)

// fileLoader implements Loader for catalog files on the local file system.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based catalog loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "catalog-loader").Logger(),
	}
}

// Load reads a catalog file from disk.
func (l *fileLoader) Load(ctx context.Context, path string) ([]model.ProductCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.logger.Info().Str("file", path).Msg("loading catalog file")

	file, err := os.Open(path)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to open catalog file")
		return nil, fmt.Errorf("failed to open catalog file %s: %w", path, err)
	}
	defer file.Close()

	candidates, err := decodeCatalog(file, path)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to decode catalog file")
		return nil, err
	}

	l.logger.Info().
		Str("file", path).
		Int("rows", len(candidates)).
		Msg("catalog file loaded successfully")

	return candidates, nil
}
