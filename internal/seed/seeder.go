package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"product-catalog/internal/model"
	"product-catalog/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrEmptyCatalog is returned when a catalog file has no data rows.
var ErrEmptyCatalog = errors.New("catalog contains no products")

// Result summarises a seeding run.
type Result struct {
	Source   string        `json:"source"`
	Inserted int           `json:"inserted"`
	Removed  int64         `json:"removed"`
	Duration time.Duration `json:"duration"`
}

// Seeder replaces the seeded portion of the catalog with the contents of a
// catalog file. Products created by users are never touched.
type Seeder struct {
	loader Loader
	repo   repository.ProductRepository
	now    func() time.Time
	logger zerolog.Logger
}

// NewSeeder creates a new seeder.
func NewSeeder(loader Loader, repo repository.ProductRepository, logger zerolog.Logger) *Seeder {
	return &Seeder{
		loader: loader,
		repo:   repo,
		now:    time.Now,
		logger: logger.With().Str("component", "seeder").Logger(),
	}
}

// Run loads path, validates every row and swaps the result in atomically.
// Nothing is written unless every row is valid.
func (s *Seeder) Run(ctx context.Context, path string) (*Result, error) {
	start := s.now()

	candidates, err := s.loader.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	if len(candidates) == 0 {
		s.logger.Warn().Str("source", path).Msg("refusing to seed an empty catalog")
		return nil, ErrEmptyCatalog
	}

	now := s.now()
	products := make([]model.Product, 0, len(candidates))
	for i, c := range candidates {
		p, err := model.Validate(c)
		if err != nil {
			s.logger.Warn().Err(err).Int("row", i+1).Str("source", path).Msg("invalid catalog row")
			return nil, &RowError{Row: i + 1, Err: err}
		}

		p.ID = uuid.New()
		p.Seeded = true
		model.ApplyTimestamps(p, true, now)
		products = append(products, *p)
	}

	removed, err := s.repo.ReplaceSeeded(ctx, products)
	if err != nil {
		return nil, fmt.Errorf("failed to store seeded products: %w", err)
	}

	result := &Result{
		Source:   path,
		Inserted: len(products),
		Removed:  removed,
		Duration: s.now().Sub(start),
	}

	s.logger.Info().
		Str("source", path).
		Int("inserted", result.Inserted).
		Int64("removed", result.Removed).
		Dur("duration", result.Duration).
		Msg("catalog seeded")

	return result, nil
}
