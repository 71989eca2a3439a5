package corruption_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"genomecorrupt/internal/corruption"
	"genomecorrupt/internal/domain"
	"genomecorrupt/internal/modules"
	"genomecorrupt/internal/vocab"
)

// fixture builds a genome with n modules; module i holds markers K<i>a, K<i>b
// and, for even i, K<i>c.
func fixture(t *testing.T, n int) (*corruption.Corpus, domain.Genome) {
	t.Helper()
	var all []string
	var mods []domain.Module
	for i := 0; i < n; i++ {
		ms := []string{fmt.Sprintf("K%da", i), fmt.Sprintf("K%db", i)}
		if i%2 == 0 {
			ms = append(ms, fmt.Sprintf("K%dc", i))
		}
		all = append(all, ms...)
		mods = append(mods, domain.Module{Name: fmt.Sprintf("M%02d", i), Markers: ms})
	}
	all = append(all, "Kextra")
	v, err := vocab.New(all)
	require.NoError(t, err)
	clean := make(domain.Vector, v.Size())
	for i := range clean {
		clean[i] = 1
	}
	corpus, err := corruption.NewCorpus(v, nil)
	require.NoError(t, err)
	return corpus, domain.Genome{ID: "G", Modules: domain.Decomposition{Modules: mods}, Clean: clean}
}

func markerSet(t *testing.T, corpus *corruption.Corpus, vec domain.Vector) map[string]bool {
	t.Helper()
	out := map[string]bool{}
	for _, i := range vec.Positions() {
		out[corpus.Vocabulary().Marker(i)] = true
	}
	return out
}

func TestResolve(t *testing.T) {
	t.Parallel()

	for alias, want := range map[string]string{
		"v0":              corruption.PolicyMarkerFraction,
		"v1":              corruption.PolicyModuleSubset,
		"V2":              corruption.PolicyModuleSubsetRepeat,
		" v3 ":            corruption.PolicyMarkerDrop,
		"module-subset":   corruption.PolicyModuleSubset,
		"marker-fraction": corruption.PolicyMarkerFraction,
	} {
		got, err := corruption.Resolve(alias)
		require.NoError(t, err, alias)
		assert.Equal(t, want, got, alias)
	}

	_, err := corruption.Resolve("v4")
	require.ErrorIs(t, err, corruption.ErrUnknownPolicy)
	require.True(t, corruption.IsConfiguration(err))
	require.False(t, corruption.IsIntegrity(err))
	require.Len(t, corruption.Names(), 4)
}

func TestNewRejectsBadParams(t *testing.T) {
	t.Parallel()
	corpus, _ := fixture(t, 3)

	tests := []struct {
		name   string
		policy string
		params corruption.Params
	}{
		{"zero target", "v1", corruption.Params{}},
		{"negative target repeat", "v2", corruption.Params{TargetModules: -1}},
		{"canonical without table", "v1", corruption.Params{TargetModules: 1, UseCanonical: true}},
		{"zero fraction", "v0", corruption.Params{}},
		{"fraction above one", "v0", corruption.Params{Fraction: 1.5}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := corruption.New(tc.policy, corpus, tc.params)
			require.ErrorIs(t, err, corruption.ErrInvalidParams)
			require.Nil(t, p)
		})
	}

	_, err := corruption.New("nope", corpus, corruption.Params{})
	require.ErrorIs(t, err, corruption.ErrUnknownPolicy)
	_, err = corruption.New("v3", nil, corruption.Params{})
	require.ErrorIs(t, err, corruption.ErrInvalidParams)
	_, err = corruption.NewCorpus(nil, nil)
	require.ErrorIs(t, err, corruption.ErrInvalidParams)
}

func TestModuleSubsetRetainsUnionOfSampledModules(t *testing.T) {
	t.Parallel()
	corpus, g := fixture(t, 14)
	p, err := corruption.New("v1", corpus, corruption.Params{TargetModules: 10})
	require.NoError(t, err)
	require.Equal(t, corruption.PolicyModuleSubset, p.Name())

	rng := corruption.NewRand(7, 0)
	for i := 0; i < 50; i++ {
		s, err := p.Corrupt(g, rng)
		require.NoError(t, err)
		require.Equal(t, "G", s.GenomeID)
		require.Len(t, s.Retained, 10)

		want := map[string]bool{}
		seen := map[string]bool{}
		for _, name := range s.Retained {
			require.False(t, seen[name], "module %s sampled twice", name)
			seen[name] = true
			m, ok := g.Modules.Lookup(name)
			require.True(t, ok)
			for _, k := range m.Markers {
				want[k] = true
			}
		}
		require.Equal(t, want, markerSet(t, corpus, s.Vector))
		require.False(t, s.Vector.IsZero())
	}
}

func TestModuleSubsetReproducibleWithSeed(t *testing.T) {
	t.Parallel()
	corpus, g := fixture(t, 14)
	p, err := corruption.New("v1", corpus, corruption.Params{TargetModules: 10})
	require.NoError(t, err)

	a, err := p.Corrupt(g, corruption.NewRand(42, 3))
	require.NoError(t, err)
	b, err := p.Corrupt(g, corruption.NewRand(42, 3))
	require.NoError(t, err)
	require.Equal(t, a, b)

	rng := corruption.NewRand(42, 3)
	first, err := p.Corrupt(g, rng)
	require.NoError(t, err)
	differs := false
	for i := 0; i < 20 && !differs; i++ {
		next, err := p.Corrupt(g, rng)
		require.NoError(t, err)
		differs = !assert.ObjectsAreEqual(first.Vector, next.Vector)
	}
	require.True(t, differs, "successive draws never differed")
}

func TestModuleSubsetTooFewModules(t *testing.T) {
	t.Parallel()
	corpus, g := fixture(t, 4)
	p, err := corruption.New("v1", corpus, corruption.Params{TargetModules: 10})
	require.NoError(t, err)

	_, err = p.Corrupt(g, corruption.NewRand(1, 1))
	require.ErrorIs(t, err, corruption.ErrTooFewModules)
	require.True(t, corruption.IsConfiguration(err))
}

func TestUnknownMarkerIsIntegrityError(t *testing.T) {
	t.Parallel()
	corpus, g := fixture(t, 12)
	g.Modules.Modules[11].Markers = append(g.Modules.Modules[11].Markers, "K_missing")

	for _, name := range []string{"v1", "v2", "v3"} {
		p, err := corruption.New(name, corpus, corruption.Params{TargetModules: 10})
		require.NoError(t, err)
		_, err = p.Corrupt(g, corruption.NewRand(1, 1))
		require.ErrorIs(t, err, corruption.ErrUnknownMarker, name)
		require.True(t, corruption.IsIntegrity(err), name)
	}
}

func TestModuleSubsetCanonicalMarkers(t *testing.T) {
	t.Parallel()
	v, err := vocab.New([]string{"K1", "K2", "K3", "K4"})
	require.NoError(t, err)
	canon := modules.NewCanonical([]string{"M1", "M2"}, map[string][]string{
		"M1": {"K4"},
		"M2": {"K3"},
	})
	corpus, err := corruption.NewCorpus(v, canon)
	require.NoError(t, err)
	g := domain.Genome{ID: "G", Modules: domain.Decomposition{Modules: []domain.Module{
		{Name: "M1", Markers: []string{"K1", "K2"}},
		{Name: "M2", Markers: []string{"K2"}},
	}}}

	p, err := corruption.New("v1", corpus, corruption.Params{TargetModules: 2, UseCanonical: true})
	require.NoError(t, err)
	s, err := p.Corrupt(g, corruption.NewRand(5, 5))
	require.NoError(t, err)
	require.Equal(t, domain.Vector{0, 0, 1, 1}, s.Vector)

	g.Modules.Modules = append(g.Modules.Modules, domain.Module{Name: "M3", Markers: []string{"K1"}})
	p, err = corruption.New("v1", corpus, corruption.Params{TargetModules: 3, UseCanonical: true})
	require.NoError(t, err)
	_, err = p.Corrupt(g, corruption.NewRand(5, 5))
	require.ErrorIs(t, err, corruption.ErrUnknownModule)
}

func TestModuleSubsetRepeatKeepsFinalDraw(t *testing.T) {
	t.Parallel()
	corpus, g := fixture(t, 12)
	params := corruption.Params{TargetModules: 10}
	v1, err := corruption.New("v1", corpus, params)
	require.NoError(t, err)
	v2, err := corruption.New("v2", corpus, params)
	require.NoError(t, err)
	require.Equal(t, corruption.PolicyModuleSubsetRepeat, v2.Name())

	rng := corruption.NewRand(11, 2)
	var last domain.Sample
	for range g.Modules.Modules {
		last, err = v1.Corrupt(g, rng)
		require.NoError(t, err)
	}
	got, err := v2.Corrupt(g, corruption.NewRand(11, 2))
	require.NoError(t, err)
	require.Equal(t, last, got)
	require.Len(t, got.Retained, 10)
}

func TestModuleSubsetRepeatEmptyGenome(t *testing.T) {
	t.Parallel()
	corpus, _ := fixture(t, 1)
	for _, name := range []string{"v1", "v2"} {
		p, err := corruption.New(name, corpus, corruption.Params{TargetModules: 10})
		require.NoError(t, err)
		_, err = p.Corrupt(domain.Genome{ID: "G"}, corruption.NewRand(1, 1))
		require.ErrorIs(t, err, corruption.ErrTooFewModules, name)
		require.True(t, corruption.IsConfiguration(err), name)
	}
}

func TestMarkerDropScenario(t *testing.T) {
	t.Parallel()
	v, err := vocab.New([]string{"K1", "K2", "K3", "K4"})
	require.NoError(t, err)
	corpus, err := corruption.NewCorpus(v, nil)
	require.NoError(t, err)
	g := domain.Genome{ID: "G", Modules: domain.Decomposition{Modules: []domain.Module{
		{Name: "M1", Markers: []string{"K1", "K2"}},
		{Name: "M2", Markers: []string{"K3"}},
	}}}
	p, err := corruption.New("v3", corpus, corruption.Params{})
	require.NoError(t, err)

	seen := map[string]bool{}
	for seed := uint64(0); seed < 64; seed++ {
		s, err := p.Corrupt(g, corruption.NewRand(seed, 0))
		require.NoError(t, err)
		switch {
		case assert.ObjectsAreEqual(domain.Vector{1, 0, 0, 0}, s.Vector):
			require.Equal(t, []string{"K1"}, s.Retained)
			seen["K1"] = true
		case assert.ObjectsAreEqual(domain.Vector{0, 1, 0, 0}, s.Vector):
			require.Equal(t, []string{"K2"}, s.Retained)
			seen["K2"] = true
		default:
			t.Fatalf("unexpected vector %v", s.Vector)
		}
	}
	require.Len(t, seen, 2)
}

func TestMarkerDropKeepsAllButOnePerModule(t *testing.T) {
	t.Parallel()
	corpus, g := fixture(t, 12)
	p, err := corruption.New("single-marker-drop-per-module", corpus, corruption.Params{})
	require.NoError(t, err)

	rng := corruption.NewRand(3, 9)
	for i := 0; i < 20; i++ {
		s, err := p.Corrupt(g, rng)
		require.NoError(t, err)
		got := markerSet(t, corpus, s.Vector)
		for _, m := range g.Modules.Modules {
			n := 0
			for _, k := range m.Markers {
				if got[k] {
					n++
				}
			}
			require.Equal(t, len(m.Markers)-1, n, m.Name)
		}
		require.Len(t, s.Retained, g.Modules.MarkerCount()-g.Modules.Len())
		require.False(t, got["Kextra"])
	}
}

func TestMarkerDropLegacyProvenance(t *testing.T) {
	t.Parallel()
	v, err := vocab.New([]string{"A", "B", "C", "D", "E"})
	require.NoError(t, err)
	corpus, err := corruption.NewCorpus(v, nil)
	require.NoError(t, err)
	g := domain.Genome{ID: "G", Modules: domain.Decomposition{Modules: []domain.Module{
		{Name: "M1", Markers: []string{"A", "B", "C"}},
		{Name: "M2", Markers: []string{"D", "E"}},
	}}}
	p, err := corruption.New("v3", corpus, corruption.Params{LegacyProvenance: true})
	require.NoError(t, err)

	s, err := p.Corrupt(g, corruption.NewRand(8, 8))
	require.NoError(t, err)
	require.Len(t, s.Retained, 1)
	require.Contains(t, []string{"D", "E"}, s.Retained[0])
	require.Equal(t, 3, s.Vector.Ones())
}

func TestMarkerDropAllSingletonModulesIsDegenerate(t *testing.T) {
	t.Parallel()
	v, err := vocab.New([]string{"K1", "K2"})
	require.NoError(t, err)
	corpus, err := corruption.NewCorpus(v, nil)
	require.NoError(t, err)
	g := domain.Genome{ID: "G", Modules: domain.Decomposition{Modules: []domain.Module{
		{Name: "M1", Markers: []string{"K1"}},
		{Name: "M2", Markers: []string{"K2"}},
		{Name: "M3"},
	}}}
	p, err := corruption.New("v3", corpus, corruption.Params{})
	require.NoError(t, err)

	_, err = p.Corrupt(g, corruption.NewRand(1, 1))
	require.ErrorIs(t, err, corruption.ErrDegenerateSample)
	require.True(t, corruption.IsIntegrity(err))
}

func TestMarkerFraction(t *testing.T) {
	t.Parallel()
	corpus, g := fixture(t, 4)
	p, err := corruption.New("v0", corpus, corruption.Params{Fraction: 0.5})
	require.NoError(t, err)
	require.Equal(t, corruption.PolicyMarkerFraction, p.Name())

	present := g.Clean.Ones()
	s, err := p.Corrupt(g, corruption.NewRand(2, 2))
	require.NoError(t, err)
	require.Equal(t, present/2, s.Vector.Ones())
	require.Len(t, s.Retained, present/2)
	for _, k := range s.Retained {
		i, err := corpus.Vocabulary().Index(k)
		require.NoError(t, err)
		require.Equal(t, 1.0, s.Vector[i])
	}

	tiny := domain.Genome{ID: "T", Clean: make(domain.Vector, corpus.Width())}
	tiny.Clean[0] = 1
	_, err = p.Corrupt(tiny, corruption.NewRand(2, 2))
	require.ErrorIs(t, err, corruption.ErrDegenerateSample)

	_, err = p.Corrupt(domain.Genome{ID: "W", Clean: domain.Vector{1}}, corruption.NewRand(2, 2))
	require.ErrorIs(t, err, corruption.ErrInvalidParams)
}

func TestEligibleGenomesNeverDegenerate(t *testing.T) {
	t.Parallel()
	corpus, g := fixture(t, 10)
	for _, name := range []string{"v0", "v1", "v2", "v3"} {
		p, err := corruption.New(name, corpus, corruption.Params{TargetModules: 10, Fraction: 0.3})
		require.NoError(t, err)
		rng := corruption.NewRand(99, 1)
		for i := 0; i < 25; i++ {
			s, err := p.Corrupt(g, rng)
			require.NoError(t, err, name)
			require.False(t, s.Vector.IsZero(), name)
			require.Len(t, s.Vector, corpus.Width())
		}
	}
}
