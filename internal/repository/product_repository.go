package repository

import (
	"context"
	"errors"
	"fmt"

	"product-catalog/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const productColumns = `id, name, brand, price, quantity, description, image, seeded, created_at, updated_at`

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

func scanProduct(row pgx.Row, p *model.Product) error {
	return row.Scan(
		&p.ID,
		&p.Name,
		&p.Brand,
		&p.Price,
		&p.Quantity,
		&p.Description,
		&p.Image,
		&p.Seeded,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
}

// GetAll retrieves all products with pagination support.
func (r *productRepository) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		ORDER BY name, id
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		var p model.Product
		if err := scanProduct(rows, &p); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = $1
	`

	var p model.Product
	err := scanProduct(r.pool.QueryRow(ctx, query, id), &p)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Stringer("product_id", id).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Stringer("product_id", id).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return &p, nil
}

// GetForUpdate reads the stored row; the database is the primary store.
func (r *productRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	return r.GetByID(ctx, id)
}

// Create inserts a new product.
func (r *productRepository) Create(ctx context.Context, p *model.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		p.ID, p.Name, p.Brand, p.Price, p.Quantity,
		p.Description, p.Image, p.Seeded, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Stringer("product_id", p.ID).Msg("failed to insert product")
		return fmt.Errorf("failed to insert product: %w", err)
	}

	r.logger.Debug().Stringer("product_id", p.ID).Msg("product created")
	return nil
}

// Update writes the mutable fields of an existing product.
func (r *productRepository) Update(ctx context.Context, p *model.Product) error {
	// updated_at never moves backwards, even if another writer got there first.
	query := `
		UPDATE products
		SET name = $2,
			brand = $3,
			price = $4,
			quantity = $5,
			description = $6,
			image = $7,
			seeded = $8,
			updated_at = GREATEST($9, updated_at + INTERVAL '1 microsecond')
		WHERE id = $1
		RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		p.ID, p.Name, p.Brand, p.Price, p.Quantity,
		p.Description, p.Image, p.Seeded, p.UpdatedAt,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Stringer("product_id", p.ID).Msg("product to update not found")
			return model.ErrProductNotFound
		}
		r.logger.Error().Err(err).Stringer("product_id", p.ID).Msg("failed to update product")
		return fmt.Errorf("failed to update product: %w", err)
	}

	return nil
}

// Delete removes a product by its ID.
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Stringer("product_id", id).Msg("failed to delete product")
		return fmt.Errorf("failed to delete product: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.logger.Debug().Stringer("product_id", id).Msg("product to delete not found")
		return model.ErrProductNotFound
	}

	return nil
}

// ReplaceSeeded removes every seeded product and bulk inserts the given ones.
func (r *productRepository) ReplaceSeeded(ctx context.Context, products []model.Product) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	tag, err := tx.Exec(ctx, `DELETE FROM products WHERE seeded`)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to delete seeded products")
		return 0, fmt.Errorf("failed to delete seeded products: %w", err)
	}
	deleted := tag.RowsAffected()

	rows := make([][]any, 0, len(products))
	for _, p := range products {
		rows = append(rows, []any{
			p.ID, p.Name, p.Brand, p.Price, p.Quantity,
			p.Description, p.Image, p.Seeded, p.CreatedAt, p.UpdatedAt,
		})
	}

	inserted, err := tx.CopyFrom(ctx,
		pgx.Identifier{"products"},
		[]string{"id", "name", "brand", "price", "quantity", "description", "image", "seeded", "created_at", "updated_at"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(products)).Msg("failed to copy seeded products")
		return 0, fmt.Errorf("failed to insert seeded products: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Error().Err(err).Msg("failed to commit seeded products")
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.logger.Info().
		Int64("deleted", deleted).
		Int64("inserted", inserted).
		Msg("seeded products replaced")

	return deleted, nil
}
