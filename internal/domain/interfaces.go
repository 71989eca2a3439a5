package domain

import "math/rand/v2"

// Policy corrupts a genome's module decomposition into a degraded marker vector.
// Implementations must be pure apart from the injected random source.
type Policy interface {
	Name() string
	Corrupt(g Genome, rng *rand.Rand) (Sample, error)
}

// Summarizer produces a brief summary of an assembled dataset.
type Summarizer interface {
	Summarize(ds Dataset, top int) (string, error)
}
