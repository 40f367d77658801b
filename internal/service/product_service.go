package service

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

// productService implements ProductService.
type productService struct {
	productRepo repository.ProductRepository
	now         func() time.Time
	logger      zerolog.Logger
}

// Option configures a product service.
type Option func(*productService)

// WithClock overrides the time source used for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *productService) {
		s.now = now
	}
}

// NewProductService creates a new product service.
func NewProductService(productRepo repository.ProductRepository, logger zerolog.Logger, opts ...Option) ProductService {
	s := &productService{
		productRepo: productRepo,
		now:         time.Now,
		logger:      logger.With().Str("service", "product").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List retrieves products with pagination.
func (s *productService) List(ctx context.Context, limit, offset int) ([]model.Product, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	products, err := s.productRepo.GetAll(ctx, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to list products")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	s.logger.Debug().
		Int("count", len(products)).
		Int("limit", limit).
		Int("offset", offset).
		Msg("retrieved products")

	return products, nil
}

// Get retrieves a single product by ID.
func (s *productService) Get(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Stringer("product_id", id).Msg("failed to get product by ID")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if product == nil {
		s.logger.Debug().Stringer("product_id", id).Msg("product not found")
		return nil, model.ErrProductNotFound
	}

	return product, nil
}

// Create validates a candidate and stores it as a new product.
func (s *productService) Create(ctx context.Context, candidate model.ProductCandidate) (*model.Product, error) {
	product, err := model.Validate(candidate)
	if err != nil {
		s.logger.Debug().Err(err).Msg("rejected product candidate")
		return nil, err
	}

	product.ID = uuid.New()
	model.ApplyTimestamps(product, true, s.now())

	if err := s.productRepo.Create(ctx, product); err != nil {
		s.logger.Error().Err(err).Stringer("product_id", product.ID).Msg("failed to create product")
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info().
		Stringer("product_id", product.ID).
		Str("name", product.Name).
		Msg("product created")

	return product, nil
}

// Update applies a partial update to an existing product and revalidates it.
func (s *productService) Update(ctx context.Context, id uuid.UUID, patch model.ProductCandidate) (*model.Product, error) {
	existing, err := s.productRepo.GetForUpdate(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Stringer("product_id", id).Msg("failed to load product for update")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if existing == nil {
		s.logger.Debug().Stringer("product_id", id).Msg("product to update not found")
		return nil, model.ErrProductNotFound
	}

	product, err := model.Validate(model.Merge(existing, patch))
	if err != nil {
		s.logger.Debug().Err(err).Stringer("product_id", id).Msg("rejected product update")
		return nil, err
	}

	product.ID = existing.ID
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = existing.UpdatedAt
	model.ApplyTimestamps(product, false, s.now())

	if err := s.productRepo.Update(ctx, product); err != nil {
		if errors.Is(err, model.ErrProductNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Stringer("product_id", id).Msg("failed to update product")
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.logger.Info().Stringer("product_id", id).Msg("product updated")

	return product, nil
}

// Delete removes a product.
func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, model.ErrProductNotFound) {
			return err
		}
		s.logger.Error().Err(err).Stringer("product_id", id).Msg("failed to delete product")
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.logger.Info().Stringer("product_id", id).Msg("product deleted")
	return nil
}
