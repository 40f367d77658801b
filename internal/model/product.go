package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/google/uuid"
)

// TimestampPrecision is the resolution at which product timestamps are stored.
const TimestampPrecision = time.Microsecond

// Product represents a catalog item.
type Product struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Brand       *string   `json:"brand,omitempty" db:"brand"`
	Price       *float64  `json:"price,omitempty" db:"price"`
	Quantity    int       `json:"quantity" db:"quantity"`
	Description *string   `json:"description,omitempty" db:"description"`
	Image       *string   `json:"image,omitempty" db:"image"` // bare filename, e.g. "jordan4.jpg"
	Seeded      bool      `json:"seeded" db:"seeded"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// ProductCandidate is a partially populated product as supplied by a writer.
// A nil field was not supplied.
type ProductCandidate struct {
	Name        *string  `json:"name"`
	Brand       *string  `json:"brand"`
	Price       *float64 `json:"price"`
	Quantity    *int     `json:"quantity"`
	Description *string  `json:"description"`
	Image       *string  `json:"image"`
	Seeded      *bool    `json:"seeded"`
}

// Validate checks a candidate against the product schema and returns the
// product with defaults applied. Identity and timestamps are left zero.
func Validate(c ProductCandidate) (*Product, error) {
	if c.Name == nil {
		return nil, NewValidationError("name", "name is required")
	}
	if *c.Name == "" {
		return nil, NewValidationError("name", "name must not be empty")
	}

	if c.Price != nil && (math.IsNaN(*c.Price) || math.IsInf(*c.Price, 0)) {
		return nil, NewValidationError("price", "price must be a finite number")
	}
	// quantity is stored as a 32-bit integer.
	if c.Quantity != nil && (*c.Quantity < math.MinInt32 || *c.Quantity > math.MaxInt32) {
		return nil, NewValidationError("quantity", fmt.Sprintf("quantity must be between %d and %d", math.MinInt32, math.MaxInt32))
	}

	p := &Product{
		Name:        *c.Name,
		Brand:       c.Brand,
		Price:       c.Price,
		Description: c.Description,
		Image:       c.Image,
	}
	if c.Quantity != nil {
		p.Quantity = *c.Quantity
	}
	if c.Seeded != nil {
		p.Seeded = *c.Seeded
	}

	return p, nil
}

// ApplyTimestamps maintains the system-managed timestamps of a record.
// New records get createdAt = updatedAt = now. Existing records only have
// updatedAt moved forward, and it always ends up strictly later than before.
func ApplyTimestamps(p *Product, isNew bool, now time.Time) {
	now = now.UTC().Truncate(TimestampPrecision)

	if isNew {
		p.CreatedAt = now
		p.UpdatedAt = now
		return
	}

	if !now.After(p.UpdatedAt) {
		now = p.UpdatedAt.Add(TimestampPrecision)
	}
	p.UpdatedAt = now
}

// Merge overlays a patch onto an existing product and returns the combined
// candidate, ready to be validated as a whole.
func Merge(p *Product, patch ProductCandidate) ProductCandidate {
	name := p.Name
	quantity := p.Quantity
	seeded := p.Seeded

	merged := ProductCandidate{
		Name:        &name,
		Brand:       p.Brand,
		Price:       p.Price,
		Quantity:    &quantity,
		Description: p.Description,
		Image:       p.Image,
		Seeded:      &seeded,
	}

	if patch.Name != nil {
		merged.Name = patch.Name
	}
	if patch.Brand != nil {
		merged.Brand = patch.Brand
	}
	if patch.Price != nil {
		merged.Price = patch.Price
	}
	if patch.Quantity != nil {
		merged.Quantity = patch.Quantity
	}
	if patch.Description != nil {
		merged.Description = patch.Description
	}
	if patch.Image != nil {
		merged.Image = patch.Image
	}
	if patch.Seeded != nil {
		merged.Seeded = patch.Seeded
	}

	return merged
}

// DecodeCandidate reads a single JSON product candidate. A field holding a
// value of the wrong type is reported as a *ValidationError for that field.
func DecodeCandidate(r io.Reader) (*ProductCandidate, error) {
	var c ProductCandidate
	dec := json.NewDecoder(r)
	if err := dec.Decode(&c); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, NewValidationError(typeErr.Field, "expected "+typeErr.Type.String()+" but got "+typeErr.Value)
		}
		return nil, ErrInvalidJSON
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, ErrInvalidJSON
	}
	return &c, nil
}
