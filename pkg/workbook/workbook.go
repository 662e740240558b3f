// Package workbook defines the document-service boundary for the translation
// pipeline.
//
// The pipeline never touches spreadsheet bytes directly: it enumerates cells,
// rewrites individual cell values, and asks the service to persist the result.
// Formatting preservation and legacy format conversion are the service's
// problem, not the pipeline's.
package workbook

import (
	"context"
	"errors"
)

// ErrNotFound indicates the requested document does not exist.
var ErrNotFound = errors.New("document not found")

// Service loads and saves documents by storage key.
//
// Implementations should be safe for concurrent use. Load must return an
// independent Workbook: mutations on one loaded copy must not leak into
// another.
type Service interface {
	// Load fetches the document stored under key.
	// Returns ErrNotFound if no document exists for the key.
	Load(ctx context.Context, key string) (Workbook, error)

	// Save persists the document under key, overwriting any existing one.
	Save(ctx context.Context, wb Workbook, key string) error
}

// Workbook is a loaded document: an ordered collection of sheets.
type Workbook interface {
	// Sheets returns the sheets in document order.
	Sheets() []Sheet
}

// Sheet exposes cell enumeration and single-cell mutation.
type Sheet interface {
	// Name returns the sheet name, unique within the workbook.
	Name() string

	// Cells returns every populated cell in a stable enumeration order.
	Cells() []Cell

	// SetCell replaces the value of the cell at coord.
	// Setting a coordinate that does not exist yet is allowed.
	SetCell(coord, value string)
}

// Cell is one populated cell: its coordinate (e.g. "B12") and raw value.
type Cell struct {
	Coordinate string
	Value      string
}
