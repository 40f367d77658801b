package handler

import (
	"net/http"
	"strconv"

	"product-catalog/internal/model"
	"product-catalog/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ProductHandler handles product-related HTTP requests.
type ProductHandler struct {
	service service.ProductService
	logger  zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(service service.ProductService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger.With().Str("handler", "product").Logger(),
	}
}

// List handles GET /api/products requests with pagination.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(r, "limit", 10)
	if !ok {
		writeError(w, r, model.NewValidationError("limit", "limit must be an integer"), h.logger)
		return
	}

	offset, ok := queryInt(r, "offset", 0)
	if !ok {
		writeError(w, r, model.NewValidationError("offset", "offset must be an integer"), h.logger)
		return
	}

	products, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// Get handles GET /api/products/{id} requests.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	product, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// Create handles POST /api/products requests.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	candidate, err := model.DecodeCandidate(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	product, err := h.service.Create(r.Context(), *candidate)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	w.Header().Set("Location", "/api/products/"+product.ID.String())
	writeJSON(w, http.StatusCreated, product)
}

// Update handles PATCH and PUT /api/products/{id} requests. Fields missing
// from the body keep their stored values.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	patch, err := model.DecodeCandidate(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	product, err := h.service.Update(r.Context(), id, *patch)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// Delete handles DELETE /api/products/{id} requests.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductHandler) productID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, r, model.ErrInvalidProductID, h.logger)
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(r *http.Request, key string, fallback int) (int, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
