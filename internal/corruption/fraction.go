package corruption

import (
	"fmt"
	"math/rand/v2"

	"genomecorrupt/internal/domain"
)

// MarkerFraction keeps a fixed fraction of the markers present in the clean
// vector, ignoring module structure.
type MarkerFraction struct {
	corpus   *Corpus
	fraction float64
}

// NewMarkerFraction builds the marker-fraction policy. The fraction must lie in (0, 1].
func NewMarkerFraction(corpus *Corpus, p Params) (*MarkerFraction, error) {
	if p.Fraction <= 0 || p.Fraction > 1 {
		return nil, fmt.Errorf("%w: fraction must be in (0, 1], got %v", ErrInvalidParams, p.Fraction)
	}
	return &MarkerFraction{corpus: corpus, fraction: p.Fraction}, nil
}

// Name returns the registered policy name.
func (p *MarkerFraction) Name() string { return PolicyMarkerFraction }

// Corrupt keeps floor(present*fraction) randomly chosen present markers.
func (p *MarkerFraction) Corrupt(g domain.Genome, rng *rand.Rand) (domain.Sample, error) {
	if len(g.Clean) != p.corpus.Width() {
		return domain.Sample{}, fmt.Errorf("%w: genome %s clean width %d, vocabulary %d", ErrInvalidParams, g.ID, len(g.Clean), p.corpus.Width())
	}
	present := g.Clean.Positions()
	k := int(float64(len(present)) * p.fraction)
	vec := p.corpus.newVector()
	retained := make([]string, 0, k)
	for _, j := range sampleIndexes(rng, len(present), k) {
		vec[present[j]] = 1
		retained = append(retained, p.corpus.vocab.Marker(present[j]))
	}
	return checkSample(g, domain.Sample{GenomeID: g.ID, Vector: vec, Retained: retained}, len(present) > 0)
}
