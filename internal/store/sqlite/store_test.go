package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"genomecorrupt/internal/domain"
	"genomecorrupt/internal/store"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "runs.db")
	s, err := Open(path)
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestStorePersistAndReload(t *testing.T) {
	ctx := context.Background()
	s, path := openTemp(t)

	require.ErrorIs(t, s.Append(ctx, nil), store.ErrNotInitialized)
	require.NoError(t, s.Init(ctx, []string{"K1", "K2", "K3"}))
	rows := []domain.Row{
		{GenomeID: "T01", Replicate: 0, Vector: domain.Vector{1, 0, 0, 1, 1, 0}, Retained: []string{"M1"}},
		{GenomeID: "T01", Replicate: 1, Vector: domain.Vector{0, 1, 0, 1, 1, 0}, Retained: []string{"M2"}},
		{GenomeID: "T02", Replicate: 0, Vector: domain.Vector{0, 0, 1, 0, 0, 1}, Retained: []string{}},
	}
	require.NoError(t, s.Append(ctx, rows))
	require.ErrorIs(t, s.Append(ctx, []domain.Row{{GenomeID: "X", Vector: domain.Vector{1}}}), store.ErrWidthMismatch)
	require.NoError(t, s.Close())

	reloaded, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reloaded.Close() })
	require.Equal(t, path, reloaded.Path())

	markers, err := reloaded.Markers(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"K1", "K2", "K3"}, markers)

	n, err := reloaded.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	all, err := reloaded.Search(ctx, "", 0)
	require.NoError(t, err)
	require.Equal(t, rows, all)

	some, err := reloaded.Search(ctx, "T01", 1)
	require.NoError(t, err)
	require.Equal(t, rows[:1], some)

	none, err := reloaded.Search(ctx, "Z", 0)
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestStoreInitResetsRows(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)

	require.NoError(t, s.Init(ctx, []string{"K1"}))
	require.NoError(t, s.Append(ctx, []domain.Row{{GenomeID: "T", Vector: domain.Vector{1, 1}, Retained: []string{"M"}}}))
	require.NoError(t, s.Init(ctx, []string{"K1", "K2"}))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	require.Zero(t, n)

	require.NoError(t, s.Append(ctx, []domain.Row{{GenomeID: "T", Vector: domain.Vector{1, 0, 1, 1}, Retained: []string{"M"}}}))
	require.NoError(t, s.Clear(ctx))
	n, err = s.Count(ctx)
	require.NoError(t, err)
	require.Zero(t, n)

	require.ErrorIs(t, s.Init(ctx, nil), store.ErrNotInitialized)
}

func TestStoreSearchBeforeInit(t *testing.T) {
	s, _ := openTemp(t)
	rows, err := s.Search(context.Background(), "", 0)
	require.NoError(t, err)
	require.Nil(t, rows)
	markers, err := s.Markers(context.Background())
	require.NoError(t, err)
	require.Nil(t, markers)
}
