package corruption

import (
	"fmt"
	"math/rand/v2"

	"genomecorrupt/internal/domain"
)

// ModuleSubset keeps the markers of a fixed number of uniformly sampled
// modules and zeroes everything else.
type ModuleSubset struct {
	corpus       *Corpus
	target       int
	useCanonical bool
}

// NewModuleSubset builds the module-subset policy.
func NewModuleSubset(corpus *Corpus, p Params) (*ModuleSubset, error) {
	if p.TargetModules <= 0 {
		return nil, fmt.Errorf("%w: target modules must be > 0, got %d", ErrInvalidParams, p.TargetModules)
	}
	if p.UseCanonical && corpus.Canonical() == nil {
		return nil, fmt.Errorf("%w: canonical markers requested without a canonical table", ErrInvalidParams)
	}
	return &ModuleSubset{corpus: corpus, target: p.TargetModules, useCanonical: p.UseCanonical}, nil
}

// Name returns the registered policy name.
func (p *ModuleSubset) Name() string { return PolicyModuleSubset }

// Corrupt samples the target number of modules and retains their markers.
func (p *ModuleSubset) Corrupt(g domain.Genome, rng *rand.Rand) (domain.Sample, error) {
	if err := p.corpus.validate(g); err != nil {
		return domain.Sample{}, err
	}
	picked, err := p.pick(g, rng)
	if err != nil {
		return domain.Sample{}, err
	}
	return p.build(g, picked)
}

func (p *ModuleSubset) pick(g domain.Genome, rng *rand.Rand) ([]domain.Module, error) {
	n := g.Modules.Len()
	if n < p.target {
		return nil, fmt.Errorf("%w: genome %s has %d modules, target is %d", ErrTooFewModules, g.ID, n, p.target)
	}
	picked := make([]domain.Module, p.target)
	for i, j := range sampleIndexes(rng, n, p.target) {
		picked[i] = g.Modules.Modules[j]
	}
	return picked, nil
}

func (p *ModuleSubset) build(g domain.Genome, picked []domain.Module) (domain.Sample, error) {
	vec := p.corpus.newVector()
	names := make([]string, len(picked))
	hasMarkers := false
	for i, m := range picked {
		names[i] = m.Name
		markers := m.Markers
		if p.useCanonical {
			cm, ok := p.corpus.Canonical().Lookup(m.Name)
			if !ok {
				return domain.Sample{}, fmt.Errorf("%w: %s (genome %s)", ErrUnknownModule, m.Name, g.ID)
			}
			markers = cm
		}
		if err := p.corpus.set(vec, markers); err != nil {
			return domain.Sample{}, fmt.Errorf("genome %s module %s: %w", g.ID, m.Name, err)
		}
		hasMarkers = hasMarkers || len(markers) > 0
	}
	return checkSample(g, domain.Sample{GenomeID: g.ID, Vector: vec, Retained: names}, hasMarkers || g.Modules.MarkerCount() > 0)
}
