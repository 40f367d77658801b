package integration

import (
	"context"
	"net/http"
	"testing"
	"time"

	"product-catalog/internal/cache"
	"product-catalog/internal/model"
	"product-catalog/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()

	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(ctx)
	})

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	opts, err := redis.ParseURL(uri)
	require.NoError(t, err)

	client, err := cache.NewClient(ctx, opts.Addr, "", 0)
	require.NoError(t, err)
	t.Cleanup(func() {
		client.Close()
	})

	return client
}

func TestSeeding_PreservesUserProducts(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := SetupTestDB(t)
	repo := repository.NewProductRepository(testDB.Pool, zerolog.Nop())
	server := setupTestServer(t, repo)

	first := SeedProducts(t, repo, testCatalog)
	assert.Equal(t, 3, first.Inserted)
	assert.Equal(t, int64(0), first.Removed)

	w := doJSON(t, server, http.MethodPost, "/api/products", map[string]interface{}{"name": "Custom Sneaker"})
	require.Equal(t, http.StatusCreated, w.Code)

	second := SeedProducts(t, repo, "name\nStan Smith\n")
	assert.Equal(t, 1, second.Inserted)
	assert.Equal(t, int64(3), second.Removed)

	products, err := repo.GetAll(ctx, 100, 0)
	require.NoError(t, err)
	require.Len(t, products, 2)

	names := map[string]bool{}
	for _, p := range products {
		names[p.Name] = p.Seeded
	}
	assert.Equal(t, map[string]bool{"Custom Sneaker": false, "Stan Smith": true}, names)
}

func TestSeeding_FlushesCache(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := SetupTestDB(t)
	client := setupRedis(t)

	repo := cache.NewCachedProductRepository(
		repository.NewProductRepository(testDB.Pool, zerolog.Nop()),
		client, "product:", time.Minute, zerolog.Nop(),
	)

	SeedProducts(t, repo, testCatalog)

	products, err := repo.GetAll(ctx, 10, 0)
	require.NoError(t, err)
	require.NotEmpty(t, products)

	id := products[0].ID
	cachedProduct, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, cachedProduct)

	SeedProducts(t, repo, "name\nStan Smith\n")

	// The old seeded product is gone from both the database and the cache.
	gone, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, gone)

	stats := repo.Stats()
	assert.Equal(t, uint64(0), stats.Errors)
	assert.GreaterOrEqual(t, stats.Misses, uint64(2))
}

func TestCachedAPI_UpdateIsVisible(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	client := setupRedis(t)

	repo := cache.NewCachedProductRepository(
		repository.NewProductRepository(testDB.Pool, zerolog.Nop()),
		client, "product:", time.Minute, zerolog.Nop(),
	)
	server := setupTestServer(t, repo)

	w := doJSON(t, server, http.MethodPost, "/api/products", map[string]interface{}{"name": "Dunk Low", "quantity": 1})
	require.Equal(t, http.StatusCreated, w.Code)
	var created model.Product
	require.NoError(t, decodeBody(w.Body.Bytes(), &created))

	w = doJSON(t, server, http.MethodPatch, "/api/products/"+created.ID.String(), map[string]interface{}{"quantity": 9})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, server, http.MethodGet, "/api/products/"+created.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var fetched model.Product
	require.NoError(t, decodeBody(w.Body.Bytes(), &fetched))
	assert.Equal(t, 9, fetched.Quantity)
}
