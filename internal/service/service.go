package service

import (
	"context"

	"product-catalog/internal/model"

	"github.com/google/uuid"
)

// ProductService defines operations for product management.
type ProductService interface {
	// List retrieves products with pagination.
	List(ctx context.Context, limit, offset int) ([]model.Product, error)

	// Get retrieves a single product by ID.
	Get(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// Create validates a candidate and stores it as a new product.
	Create(ctx context.Context, candidate model.ProductCandidate) (*model.Product, error)

	// Update applies a partial update to an existing product.
	Update(ctx context.Context, id uuid.UUID, patch model.ProductCandidate) (*model.Product, error)

	// Delete removes a product.
	Delete(ctx context.Context, id uuid.UUID) error
}
