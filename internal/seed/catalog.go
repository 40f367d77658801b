package seed

import (
	"compress/gzip"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"product-catalog/internal/model"

	"github.com/gocarina/gocsv"
)

// catalogRow is a raw CSV record. Every cell is read as text so that empty
// cells can be told apart from zero values.
type catalogRow struct {
	Name        string `csv:"name"`
	Brand       string `csv:"brand"`
	Price       string `csv:"price"`
	Quantity    string `csv:"quantity"`
	Description string `csv:"description"`
	Image       string `csv:"image"`
}

// decodeCatalog parses a catalog stream, transparently un-gzipping it when
// path ends in ".gz".
func decodeCatalog(r io.Reader, path string) ([]model.ProductCandidate, error) {
	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		gzipReader, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader for %s: %w", path, err)
		}
		defer gzipReader.Close()
		r = gzipReader
	}

	var rows []*catalogRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}

	candidates := make([]model.ProductCandidate, 0, len(rows))
	for i, row := range rows {
		c, err := row.candidate()
		if err != nil {
			return nil, &RowError{Row: i + 1, Err: err}
		}
		candidates = append(candidates, c)
	}

	return candidates, nil
}

func (r *catalogRow) candidate() (model.ProductCandidate, error) {
	c := model.ProductCandidate{
		Name:        optional(r.Name),
		Brand:       optional(r.Brand),
		Description: optional(r.Description),
		Image:       optional(r.Image),
	}

	if s := strings.TrimSpace(r.Price); s != "" {
		price, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
			return c, model.NewValidationError("price", fmt.Sprintf("%q is not a finite number", s))
		}
		c.Price = &price
	}

	if s := strings.TrimSpace(r.Quantity); s != "" {
		// quantity is stored as a 32-bit integer.
		n, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return c, model.NewValidationError("quantity", fmt.Sprintf("%q is not a 32-bit integer", s))
		}
		quantity := int(n)
		c.Quantity = &quantity
	}

	return c, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
