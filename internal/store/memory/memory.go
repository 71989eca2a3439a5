// Package memory is an in-process dataset store.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"genomecorrupt/internal/domain"
	"genomecorrupt/internal/store"
)

// Storage keeps rows in memory.
type Storage struct {
	mu      sync.RWMutex
	markers []string
	width   int
	rows    []domain.Row
}

func NewStorage() *Storage { return &Storage{} }

func (s *Storage) Init(_ context.Context, markers []string) error {
	if len(markers) == 0 {
		return fmt.Errorf("%w: empty vocabulary", store.ErrNotInitialized)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markers = append([]string(nil), markers...)
	s.width = 2 * len(markers)
	s.rows = nil
	return nil
}

func (s *Storage) Append(_ context.Context, rows []domain.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width == 0 {
		return store.ErrNotInitialized
	}
	for _, r := range rows {
		if len(r.Vector) != s.width {
			return fmt.Errorf("%w: got %d, want %d", store.ErrWidthMismatch, len(r.Vector), s.width)
		}
	}
	s.rows = append(s.rows, rows...)
	return nil
}

func (s *Storage) Search(_ context.Context, prefix string, limit int) ([]domain.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Row
	for _, r := range s.rows {
		if !strings.HasPrefix(r.GenomeID, prefix) {
			continue
		}
		out = append(out, r)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *Storage) Markers(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.markers...), nil
}

func (s *Storage) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows), nil
}

func (s *Storage) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = nil
	return nil
}
