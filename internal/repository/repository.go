package repository

import (
	"context"

	"product-catalog/internal/model"

	"github.com/google/uuid"
)

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// GetAll retrieves all products with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by its ID.
	// Returns nil without error when the product does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// GetForUpdate retrieves a product from the primary store, bypassing any
	// cache. Read-modify-write paths must merge onto this copy.
	// Returns nil without error when the product does not exist.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// Create inserts a new product.
	Create(ctx context.Context, product *model.Product) error

	// Update writes the mutable fields of an existing product. The stored
	// updated_at is scanned back into product; created_at is never written.
	Update(ctx context.Context, product *model.Product) error

	// Delete removes a product by its ID.
	Delete(ctx context.Context, id uuid.UUID) error

	// ReplaceSeeded removes every seeded product and inserts the given ones
	// in a single transaction. Returns the number of rows removed.
	ReplaceSeeded(ctx context.Context, products []model.Product) (int64, error)
}
