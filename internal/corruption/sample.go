package corruption

import (
	"fmt"
	"math/rand/v2"

	"genomecorrupt/internal/domain"
)

// sampleIndexes draws k distinct indexes from [0, n) in draw order using a
// partial Fisher-Yates shuffle.
func sampleIndexes(rng *rand.Rand, n, k int) []int {
	pool := make([]int, n)
	for i := range pool {
		pool[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + rng.IntN(n-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k]
}

// sampleStrings draws k distinct elements of xs in draw order.
func sampleStrings(rng *rand.Rand, xs []string, k int) []string {
	out := make([]string, k)
	for i, j := range sampleIndexes(rng, len(xs), k) {
		out[i] = xs[j]
	}
	return out
}

// checkSample enforces the non-degeneracy invariant shared by every policy.
func checkSample(g domain.Genome, s domain.Sample, hasMarkers bool) (domain.Sample, error) {
	if hasMarkers && s.Vector.IsZero() {
		return domain.Sample{}, fmt.Errorf("%w: genome %s", ErrDegenerateSample, g.ID)
	}
	return s, nil
}

// NewRand returns a PCG-backed source seeded from the two words.
func NewRand(seed, stream uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, stream))
}
