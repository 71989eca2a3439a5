// Package sqlite persists dataset rows in a single SQLite file so a run can
// be inspected after the process exits.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"genomecorrupt/internal/domain"
	"genomecorrupt/internal/store"
)

// Store keeps rows as sparse position lists: only set bits are written.
type Store struct {
	db    *sql.DB
	mu    sync.Mutex
	path  string
	width int
}

// Open opens (or creates) the database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		path = "genomecorrupt.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value BLOB NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS rows (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			genome TEXT NOT NULL,
			replicate INTEGER NOT NULL,
			corrupted BLOB NOT NULL,
			clean BLOB NOT NULL,
			retained BLOB NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS rows_genome ON rows(genome)`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}
	s := &Store{db: db, path: path}
	markers, err := s.Markers(context.Background())
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s.width = 2 * len(markers)
	return s, nil
}

// Init resets the rows and records the vocabulary.
func (s *Store) Init(ctx context.Context, markers []string) (retErr error) {
	if len(markers) == 0 {
		return fmt.Errorf("%w: empty vocabulary", store.ErrNotInitialized)
	}
	payload, err := json.Marshal(markers)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, `DELETE FROM rows`); err != nil {
		return fmt.Errorf("clear rows: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO meta(key,value) VALUES('markers',?) ON CONFLICT(key) DO UPDATE SET value=excluded.value`, payload); err != nil {
		return fmt.Errorf("upsert markers: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.width = 2 * len(markers)
	return nil
}

// Append writes rows in one transaction.
func (s *Store) Append(ctx context.Context, rows []domain.Row) (retErr error) {
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
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO rows(genome,replicate,corrupted,clean,retained) VALUES(?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()
	for _, r := range rows {
		corrupted, err := json.Marshal(r.Corrupted().Positions())
		if err != nil {
			return err
		}
		clean, err := json.Marshal(r.Clean().Positions())
		if err != nil {
			return err
		}
		retained, err := json.Marshal(r.Retained)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, r.GenomeID, r.Replicate, corrupted, clean, retained); err != nil {
			return fmt.Errorf("insert %s/%d: %w", r.GenomeID, r.Replicate, err)
		}
	}
	return tx.Commit()
}

// Search returns rows whose genome id starts with prefix, in insertion order.
func (s *Store) Search(ctx context.Context, prefix string, limit int) ([]domain.Row, error) {
	s.mu.Lock()
	width := s.width
	s.mu.Unlock()
	if width == 0 {
		return nil, nil
	}
	query := `SELECT genome, replicate, corrupted, clean, retained FROM rows WHERE substr(genome, 1, ?) = ? ORDER BY seq`
	args := []any{len(prefix), prefix}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select rows: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []domain.Row
	for rows.Next() {
		var (
			r                          domain.Row
			corrupted, clean, retained []byte
		)
		if err := rows.Scan(&r.GenomeID, &r.Replicate, &corrupted, &clean, &retained); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		half := width / 2
		r.Vector = make(domain.Vector, width)
		if err := setPositions(r.Vector[:half], corrupted); err != nil {
			return nil, fmt.Errorf("decode corrupted %s: %w", r.GenomeID, err)
		}
		if err := setPositions(r.Vector[half:], clean); err != nil {
			return nil, fmt.Errorf("decode clean %s: %w", r.GenomeID, err)
		}
		if err := json.Unmarshal(retained, &r.Retained); err != nil {
			return nil, fmt.Errorf("decode retained %s: %w", r.GenomeID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func setPositions(dst domain.Vector, payload []byte) error {
	var pos []int
	if err := json.Unmarshal(payload, &pos); err != nil {
		return err
	}
	for _, p := range pos {
		if p < 0 || p >= len(dst) {
			return fmt.Errorf("position %d out of range", p)
		}
		dst[p] = 1
	}
	return nil
}

// Markers returns the recorded vocabulary, or nil before Init.
func (s *Store) Markers(ctx context.Context) ([]string, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key='markers'`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select markers: %w", err)
	}
	var markers []string
	if err := json.Unmarshal(payload, &markers); err != nil {
		return nil, fmt.Errorf("decode markers: %w", err)
	}
	return markers, nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rows`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count rows: %w", err)
	}
	return n, nil
}

func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx, `DELETE FROM rows`); err != nil {
		return fmt.Errorf("clear rows: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }

var _ store.Storage = (*Store)(nil)
