package corruption

import (
	"math/rand/v2"

	"genomecorrupt/internal/domain"
)

// MarkerDrop removes exactly one uniformly chosen marker from every module.
// A single-marker module therefore contributes nothing.
type MarkerDrop struct {
	corpus *Corpus
	legacy bool
}

// NewMarkerDrop builds the per-module single-marker drop policy.
func NewMarkerDrop(corpus *Corpus, p Params) (*MarkerDrop, error) {
	return &MarkerDrop{corpus: corpus, legacy: p.LegacyProvenance}, nil
}

// Name returns the registered policy name.
func (p *MarkerDrop) Name() string { return PolicyMarkerDrop }

// Corrupt keeps L-1 of the L markers of each module. The retained record lists
// every kept marker, or only the last module's kept markers in legacy mode.
func (p *MarkerDrop) Corrupt(g domain.Genome, rng *rand.Rand) (domain.Sample, error) {
	if err := p.corpus.validate(g); err != nil {
		return domain.Sample{}, err
	}
	vec := p.corpus.newVector()
	var all, last []string
	for _, m := range g.Modules.Modules {
		if len(m.Markers) == 0 {
			last = nil
			continue
		}
		kept := sampleStrings(rng, m.Markers, len(m.Markers)-1)
		if err := p.corpus.set(vec, kept); err != nil {
			return domain.Sample{}, err
		}
		all = append(all, kept...)
		last = kept
	}
	retained := all
	if p.legacy {
		retained = last
	}
	if retained == nil {
		retained = []string{}
	}
	return checkSample(g, domain.Sample{GenomeID: g.ID, Vector: vec, Retained: retained}, g.Modules.MarkerCount() > 0)
}
