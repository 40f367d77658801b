// Package seed bulk-loads catalog files into the products table.
//
// Catalog files are CSV with the header
//
//	name,brand,price,quantity,description,image
//
// optionally gzip-compressed when the path ends in ".gz". Empty cells are
// treated as absent fields.
package seed

import (
	"context"
	"fmt"

	"product-catalog/internal/model"
)

// Loader defines the interface for loading catalog files.
type Loader interface {
	// Load reads a catalog file and returns one candidate per data row.
	Load(ctx context.Context, path string) ([]model.ProductCandidate, error)
}

// RowError ties an error to a data row of a catalog file. Row 1 is the
// first line after the header.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}
