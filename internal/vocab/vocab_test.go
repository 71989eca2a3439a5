package vocab_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"genomecorrupt/internal/domain"
	"genomecorrupt/internal/vocab"
)

func TestNewDeduplicatesInFirstSeenOrder(t *testing.T) {
	t.Parallel()

	v, err := vocab.New([]string{"K2", "K1", "K2", "K3", "K1"})
	require.NoError(t, err)
	require.Equal(t, []string{"K2", "K1", "K3"}, v.Markers())
	require.Equal(t, 3, v.Size())

	i, err := v.Index("K3")
	require.NoError(t, err)
	require.Equal(t, 2, i)
	require.Equal(t, "K1", v.Marker(1))
}

func TestIndexUnknownMarker(t *testing.T) {
	t.Parallel()

	v, err := vocab.New([]string{"K1"})
	require.NoError(t, err)
	_, err = v.Index("K9")
	require.ErrorIs(t, err, vocab.ErrUnknownMarker)
	require.False(t, v.Contains("K9"))
}

func TestNewEmpty(t *testing.T) {
	t.Parallel()

	_, err := vocab.New(nil)
	require.ErrorIs(t, err, vocab.ErrEmpty)
}

func TestBuildFollowsGenomeOrder(t *testing.T) {
	t.Parallel()

	ann := map[string][]string{
		"T1": {"K3", "K1"},
		"T2": {"K2", "K3"},
	}
	v, err := vocab.Build([]string{"T2", "T1"}, ann)
	require.NoError(t, err)
	require.Equal(t, []string{"K2", "K3", "K1"}, v.Markers())
}

func TestBuildMatrix(t *testing.T) {
	t.Parallel()

	ann := map[string][]string{
		"T1": {"K1", "K3"},
		"T2": {"K2"},
	}
	v, err := vocab.New([]string{"K1", "K2", "K3"})
	require.NoError(t, err)
	m, err := vocab.BuildMatrix(v, []string{"T1", "T2"}, ann)
	require.NoError(t, err)

	require.Equal(t, 2, m.Rows())
	require.Equal(t, 3, m.Width())
	require.Equal(t, domain.Vector{1, 0, 1}, m.Row(0))
	row, err := m.RowOf("T2")
	require.NoError(t, err)
	require.Equal(t, domain.Vector{0, 1, 0}, row)

	_, err = m.RowOf("T9")
	require.ErrorIs(t, err, vocab.ErrUnknownGenome)
}

func TestMatrixRowIsACopy(t *testing.T) {
	t.Parallel()

	v, err := vocab.New([]string{"K1"})
	require.NoError(t, err)
	m, err := vocab.BuildMatrix(v, []string{"T1"}, map[string][]string{"T1": {"K1"}})
	require.NoError(t, err)

	row := m.Row(0)
	row[0] = 0
	require.Equal(t, domain.Vector{1}, m.Row(0))
}

func TestBuildMatrixUnknownMarker(t *testing.T) {
	t.Parallel()

	v, err := vocab.New([]string{"K1"})
	require.NoError(t, err)
	_, err = vocab.BuildMatrix(v, []string{"T1"}, map[string][]string{"T1": {"K2"}})
	require.ErrorIs(t, err, vocab.ErrUnknownMarker)
}
