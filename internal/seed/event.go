package seed

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"product-catalog/internal/repository"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog"
)

// LoaderFactory returns a Loader reading from the named bucket.
type LoaderFactory func(ctx context.Context, bucket string) (Loader, error)

// EventHandler seeds the catalog from objects announced by S3 notifications.
type EventHandler struct {
	newLoader LoaderFactory
	repo      repository.ProductRepository
	logger    zerolog.Logger
}

// NewEventHandler creates a handler for S3 ObjectCreated notifications.
func NewEventHandler(newLoader LoaderFactory, repo repository.ProductRepository, logger zerolog.Logger) *EventHandler {
	return &EventHandler{
		newLoader: newLoader,
		repo:      repo,
		logger:    logger.With().Str("component", "seed-event-handler").Logger(),
	}
}

// Handle seeds from every catalog object in event. Objects that are not
// catalog files are skipped. Processing stops at the first failure.
func (h *EventHandler) Handle(ctx context.Context, event events.S3Event) error {
	for _, record := range event.Records {
		bucket := record.S3.Bucket.Name

		// Keys arrive form-encoded, so "new catalog.csv" is "new+catalog.csv".
		key, err := url.QueryUnescape(record.S3.Object.Key)
		if err != nil {
			return fmt.Errorf("invalid object key %q: %w", record.S3.Object.Key, err)
		}

		if !IsCatalogFile(key) {
			h.logger.Debug().Str("bucket", bucket).Str("key", key).Msg("skipping non-catalog object")
			continue
		}

		loader, err := h.newLoader(ctx, bucket)
		if err != nil {
			return fmt.Errorf("failed to create loader for bucket %s: %w", bucket, err)
		}

		if _, err := NewSeeder(loader, h.repo, h.logger).Run(ctx, key); err != nil {
			h.logger.Error().Err(err).Str("bucket", bucket).Str("key", key).Msg("seeding from S3 object failed")
			return err
		}
	}
	return nil
}

// IsCatalogFile reports whether name looks like a catalog file.
func IsCatalogFile(name string) bool {
	name = strings.ToLower(name)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".csv.gz")
}
