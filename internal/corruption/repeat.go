package corruption

import (
	"math/rand/v2"

	"genomecorrupt/internal/domain"
)

// ModuleSubsetRepeat redraws the module subset once per module of the genome
// and keeps only the final draw. The intermediate draws only advance the
// random source; the output has the same shape as ModuleSubset.
type ModuleSubsetRepeat struct {
	*ModuleSubset
}

// NewModuleSubsetRepeat builds the repeated module-subset policy.
func NewModuleSubsetRepeat(corpus *Corpus, p Params) (*ModuleSubsetRepeat, error) {
	base, err := NewModuleSubset(corpus, p)
	if err != nil {
		return nil, err
	}
	return &ModuleSubsetRepeat{ModuleSubset: base}, nil
}

// Name returns the registered policy name.
func (p *ModuleSubsetRepeat) Name() string { return PolicyModuleSubsetRepeat }

// Corrupt draws one subset per module and builds the sample from the last one.
func (p *ModuleSubsetRepeat) Corrupt(g domain.Genome, rng *rand.Rand) (domain.Sample, error) {
	if err := p.corpus.validate(g); err != nil {
		return domain.Sample{}, err
	}
	picked, err := p.pick(g, rng)
	if err != nil {
		return domain.Sample{}, err
	}
	for range g.Modules.Len() - 1 {
		if picked, err = p.pick(g, rng); err != nil {
			return domain.Sample{}, err
		}
	}
	return p.build(g, picked)
}
