package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"product-catalog/internal/handler"
	"product-catalog/internal/model"
	"product-catalog/internal/repository"
	"product-catalog/internal/router"
	"product-catalog/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCatalog = `name,brand,price,quantity,description,image
Air Jordan 4,Jordan,200,5,Military Black,jordan4.jpg
Dunk Low,Nike,110.5,,,dunk-low.jpg
Samba OG,Adidas,100,2,,samba.jpg
`

func setupTestServer(t *testing.T, repo repository.ProductRepository, opts ...service.Option) http.Handler {
	t.Helper()

	logger := zerolog.Nop()

	productService := service.NewProductService(repo, logger, opts...)
	productHandler := handler.NewProductHandler(productService, logger)

	return router.New(productHandler, logger)
}

func decodeBody(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func doJSON(t *testing.T, server http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	server.ServeHTTP(w, req)
	return w
}

func TestProductAPI_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	repo := repository.NewProductRepository(testDB.Pool, zerolog.Nop())
	server := setupTestServer(t, repo)

	t.Run("GET /health", func(t *testing.T) {
		w := doJSON(t, server, http.MethodGet, "/health", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "healthy")
	})

	t.Run("GET /api/products lists seeded products", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedProducts(t, repo, testCatalog)

		w := doJSON(t, server, http.MethodGet, "/api/products", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

		var products []model.Product
		require.NoError(t, json.NewDecoder(w.Body).Decode(&products))
		assert.Len(t, products, 3)
		for _, p := range products {
			assert.True(t, p.Seeded)
		}
	})

	t.Run("GET /api/products honours pagination", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedProducts(t, repo, testCatalog)

		w := doJSON(t, server, http.MethodGet, "/api/products?limit=2&offset=2", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var products []model.Product
		require.NoError(t, json.NewDecoder(w.Body).Decode(&products))
		assert.Len(t, products, 1)
	})

	t.Run("product lifecycle", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		w := doJSON(t, server, http.MethodPost, "/api/products", map[string]interface{}{
			"name":  "Gel-Lyte III",
			"brand": "Asics",
			"price": 130,
		})
		require.Equal(t, http.StatusCreated, w.Code)

		var created model.Product
		require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
		assert.Equal(t, "/api/products/"+created.ID.String(), w.Header().Get("Location"))
		assert.Equal(t, 0, created.Quantity)
		assert.False(t, created.Seeded)
		assert.Equal(t, created.CreatedAt, created.UpdatedAt)

		w = doJSON(t, server, http.MethodGet, "/api/products/"+created.ID.String(), nil)
		require.Equal(t, http.StatusOK, w.Code)
		var fetched model.Product
		require.NoError(t, json.NewDecoder(w.Body).Decode(&fetched))
		assert.Equal(t, created.ID, fetched.ID)
		assert.True(t, created.CreatedAt.Equal(fetched.CreatedAt))

		w = doJSON(t, server, http.MethodPatch, "/api/products/"+created.ID.String(), map[string]interface{}{
			"quantity": 4,
		})
		require.Equal(t, http.StatusOK, w.Code)
		var updated model.Product
		require.NoError(t, json.NewDecoder(w.Body).Decode(&updated))
		assert.Equal(t, 4, updated.Quantity)
		assert.Equal(t, "Asics", *updated.Brand)
		assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))
		assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

		w = doJSON(t, server, http.MethodPut, "/api/products/"+created.ID.String(), map[string]interface{}{
			"name": "",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = doJSON(t, server, http.MethodDelete, "/api/products/"+created.ID.String(), nil)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = doJSON(t, server, http.MethodGet, "/api/products/"+created.ID.String(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = doJSON(t, server, http.MethodDelete, "/api/products/"+created.ID.String(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("POST /api/products rejects invalid records", func(t *testing.T) {
		tests := []struct {
			name  string
			body  interface{}
			code  string
			field string
		}{
			{"missing name", map[string]interface{}{"brand": "Nike"}, model.ErrCodeValidation, "name"},
			{"empty name", map[string]interface{}{"name": ""}, model.ErrCodeValidation, "name"},
			{"string price", map[string]interface{}{"name": "Dunk", "price": "cheap"}, model.ErrCodeValidation, "price"},
			{"fractional quantity", map[string]interface{}{"name": "Dunk", "quantity": 1.5}, model.ErrCodeValidation, "quantity"},
			{"quantity beyond column range", map[string]interface{}{"name": "Bulk", "quantity": 3000000000}, model.ErrCodeValidation, "quantity"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				w := doJSON(t, server, http.MethodPost, "/api/products", tt.body)
				assert.Equal(t, http.StatusBadRequest, w.Code)

				var resp model.ErrorResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
				assert.Equal(t, tt.code, resp.Error)
				assert.Equal(t, tt.field, resp.Field)
				assert.NotEmpty(t, resp.CorrelationID)
			})
		}
	})

	t.Run("GET /api/products/{id} rejects malformed IDs", func(t *testing.T) {
		w := doJSON(t, server, http.MethodGet, "/api/products/P001", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("OPTIONS preflight", func(t *testing.T) {
		w := doJSON(t, server, http.MethodOptions, "/api/products", nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestProductAPI_UpdatedAtIsMonotonic(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	repo := repository.NewProductRepository(testDB.Pool, zerolog.Nop())

	// A frozen clock forces every update to land on the same instant.
	frozen := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	server := setupTestServer(t, repo, service.WithClock(func() time.Time { return frozen }))

	w := doJSON(t, server, http.MethodPost, "/api/products", map[string]interface{}{"name": "Dunk Low"})
	require.Equal(t, http.StatusCreated, w.Code)
	var p model.Product
	require.NoError(t, json.NewDecoder(w.Body).Decode(&p))

	previous := p.UpdatedAt
	for i := 0; i < 3; i++ {
		w = doJSON(t, server, http.MethodPatch, "/api/products/"+p.ID.String(), map[string]interface{}{"quantity": i})
		require.Equal(t, http.StatusOK, w.Code)

		var updated model.Product
		require.NoError(t, json.NewDecoder(w.Body).Decode(&updated))
		assert.True(t, updated.UpdatedAt.After(previous))
		assert.True(t, updated.CreatedAt.Equal(frozen))
		previous = updated.UpdatedAt
	}
}
