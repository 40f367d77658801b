// Package cache provides a Redis read-through cache in front of the product repository.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"product-catalog/internal/model"
	"product-catalog/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits    uint64  `json:"hits"`
	Misses  uint64  `json:"misses"`
	Sets    uint64  `json:"sets"`
	Deletes uint64  `json:"deletes"`
	Errors  uint64  `json:"errors"`
	HitRate float64 `json:"hitRate"`
}

type counters struct {
	hits, misses, sets, deletes, errors atomic.Uint64
}

// cachedProductRepository decorates a ProductRepository with cache-aside reads.
// Redis failures never fail a call; they are logged and the inner repository answers.
type cachedProductRepository struct {
	next   repository.ProductRepository
	client *redis.Client
	prefix string
	ttl    time.Duration
	stats  *counters
	loads  singleflight.Group // collapses concurrent misses for the same key
	logger zerolog.Logger
}

// CachedRepository is a ProductRepository that also reports cache statistics.
type CachedRepository interface {
	repository.ProductRepository
	Stats() Stats
}

// NewCachedProductRepository wraps next with a Redis cache.
func NewCachedProductRepository(next repository.ProductRepository, client *redis.Client, prefix string, ttl time.Duration, logger zerolog.Logger) CachedRepository {
	return &cachedProductRepository{
		next:   next,
		client: client,
		prefix: prefix,
		ttl:    ttl,
		stats:  &counters{},
		logger: logger.With().Str("component", "product-cache").Logger(),
	}
}

// NewClient connects to Redis and verifies the connection.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return client, nil
}

func (c *cachedProductRepository) key(id uuid.UUID) string {
	return c.prefix + id.String()
}

// GetAll is not cached; page contents change with every write.
func (c *cachedProductRepository) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	return c.next.GetAll(ctx, limit, offset)
}

// entry is the cached value for one product id. A deleted entry is a
// tombstone that keeps in-flight loads from refilling the key.
type entry struct {
	Product *model.Product `json:"product,omitempty"`
	Deleted bool           `json:"deleted,omitempty"`
}

// supersedes reports whether e may replace the cached value raw. Writes only
// move a key forward: a tombstone is final, and a product replaces another
// only when its updatedAt is later.
func (e entry) supersedes(raw []byte) bool {
	var current entry
	if err := json.Unmarshal(raw, &current); err != nil {
		return true
	}
	switch {
	case e.Deleted:
		return !current.Deleted
	case current.Deleted:
		return false
	case current.Product == nil:
		return true
	default:
		return e.Product.UpdatedAt.After(current.Product.UpdatedAt)
	}
}

var errSuperseded = errors.New("cached entry is newer")

// GetByID reads through the cache.
func (c *cachedProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	data, err := c.client.Get(ctx, c.key(id)).Bytes()
	switch {
	case err == nil:
		var e entry
		if err := json.Unmarshal(data, &e); err == nil && (e.Deleted || e.Product != nil) {
			c.stats.hits.Add(1)
			return e.Product, nil
		}
		c.stats.errors.Add(1)
		c.logger.Warn().Stringer("product_id", id).Msg("discarding corrupt cache entry")
	case errors.Is(err, redis.Nil):
		c.stats.misses.Add(1)
	default:
		c.stats.errors.Add(1)
		c.logger.Warn().Err(err).Stringer("product_id", id).Msg("cache read failed")
	}

	// The load is shared, so one caller going away must not fail the others.
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := c.loads.Do(id.String(), func() (interface{}, error) {
		p, err := c.next.GetByID(loadCtx, id)
		if err != nil || p == nil {
			return p, err
		}
		// Loses to any write that landed while the row was being read.
		c.store(loadCtx, id, entry{Product: p})
		return p, nil
	})
	if err != nil {
		return nil, err
	}

	p := v.(*model.Product)
	if p == nil {
		return nil, nil
	}
	// Callers sharing a load must not share the struct.
	clone := *p
	return &clone, nil
}

// GetForUpdate always goes to the inner repository.
func (c *cachedProductRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	return c.next.GetForUpdate(ctx, id)
}

// Create writes through and primes the cache.
func (c *cachedProductRepository) Create(ctx context.Context, p *model.Product) error {
	if err := c.next.Create(ctx, p); err != nil {
		return err
	}
	c.store(ctx, p.ID, entry{Product: p})
	return nil
}

// Update writes through and caches the stored version. A product found
// missing is tombstoned; any other failure evicts the key.
func (c *cachedProductRepository) Update(ctx context.Context, p *model.Product) error {
	err := c.next.Update(ctx, p)
	switch {
	case err == nil:
		c.storeOrEvict(ctx, p.ID, entry{Product: p})
	case errors.Is(err, model.ErrProductNotFound):
		c.storeOrEvict(ctx, p.ID, entry{Deleted: true})
	default:
		c.evict(ctx, p.ID)
	}
	return err
}

// Delete writes through and leaves a tombstone for the id.
func (c *cachedProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := c.next.Delete(ctx, id)
	if err == nil || errors.Is(err, model.ErrProductNotFound) {
		c.storeOrEvict(ctx, id, entry{Deleted: true})
	} else {
		c.evict(ctx, id)
	}
	return err
}

// ReplaceSeeded writes through and evicts every cached product.
func (c *cachedProductRepository) ReplaceSeeded(ctx context.Context, products []model.Product) (int64, error) {
	deleted, err := c.next.ReplaceSeeded(ctx, products)
	if err != nil {
		return 0, err
	}
	c.evictAll(ctx)
	return deleted, nil
}

// Stats returns a snapshot of the cache counters.
func (c *cachedProductRepository) Stats() Stats {
	hits := c.stats.hits.Load()
	misses := c.stats.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	return Stats{
		Hits:    hits,
		Misses:  misses,
		Sets:    c.stats.sets.Load(),
		Deletes: c.stats.deletes.Load(),
		Errors:  c.stats.errors.Load(),
		HitRate: hitRate,
	}
}

// store writes e under id unless the cached value is at least as new.
// The compare and the write run in one WATCH transaction, so a writer that
// slips in between makes this one fail with redis.TxFailedErr.
func (c *cachedProductRepository) store(ctx context.Context, id uuid.UUID, e entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		c.stats.errors.Add(1)
		c.logger.Warn().Err(err).Stringer("product_id", id).Msg("failed to encode product for cache")
		return err
	}

	key := c.key(id)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			if !e.supersedes(current) {
				return errSuperseded
			}
		case !errors.Is(err, redis.Nil):
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, c.ttl)
			return nil
		})
		return err
	}, key)

	switch {
	case err == nil && e.Deleted:
		c.stats.deletes.Add(1)
	case err == nil:
		c.stats.sets.Add(1)
	case errors.Is(err, errSuperseded), errors.Is(err, redis.TxFailedErr):
		c.logger.Debug().Err(err).Stringer("product_id", id).Msg("skipped stale cache write")
	default:
		c.stats.errors.Add(1)
		c.logger.Warn().Err(err).Stringer("product_id", id).Msg("cache write failed")
	}
	return err
}

// storeOrEvict falls back to dropping the key when e could not be written
// for any reason other than a newer cached value.
func (c *cachedProductRepository) storeOrEvict(ctx context.Context, id uuid.UUID, e entry) {
	if err := c.store(ctx, id, e); err != nil && !errors.Is(err, errSuperseded) {
		c.evict(ctx, id)
	}
}

func (c *cachedProductRepository) evict(ctx context.Context, id uuid.UUID) {
	if err := c.client.Del(ctx, c.key(id)).Err(); err != nil {
		c.stats.errors.Add(1)
		c.logger.Warn().Err(err).Stringer("product_id", id).Msg("cache eviction failed")
		return
	}
	c.stats.deletes.Add(1)
}

func (c *cachedProductRepository) evictAll(ctx context.Context) {
	var cursor uint64
	var evicted int

	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.prefix+"*", 100).Result()
		if err != nil {
			c.stats.errors.Add(1)
			c.logger.Warn().Err(err).Msg("cache scan failed")
			return
		}

		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				c.stats.errors.Add(1)
				c.logger.Warn().Err(err).Msg("cache eviction failed")
				return
			}
			evicted += len(keys)
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	c.stats.deletes.Add(uint64(evicted))
	c.logger.Debug().Int("evicted", evicted).Msg("product cache flushed")
}
