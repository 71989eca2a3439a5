// Package store defines where assembled dataset rows are kept once a run
// finishes, so they can be reloaded for inspection.
package store

import (
	"context"
	"errors"

	"genomecorrupt/internal/domain"
)

// ErrNotInitialized is returned when rows are written before Init.
var ErrNotInitialized = errors.New("store: not initialized")

// ErrWidthMismatch is returned when a row does not match the initialized width.
var ErrWidthMismatch = errors.New("store: row width mismatch")

// Storage persists dataset rows and supports lookup by genome.
type Storage interface {
	// Init resets the store for a vocabulary; rows must be 2*len(markers) wide.
	Init(ctx context.Context, markers []string) error
	Append(ctx context.Context, rows []domain.Row) error
	// Search returns rows whose genome id starts with prefix, in insertion
	// order. An empty prefix matches all rows; limit <= 0 means no limit.
	Search(ctx context.Context, prefix string, limit int) ([]domain.Row, error)
	Markers(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
}
