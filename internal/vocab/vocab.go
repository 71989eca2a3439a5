// Package vocab builds the corpus-wide marker vocabulary and the clean
// genome-by-marker matrix that every corruption run indexes into.
package vocab

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownMarker is returned when a marker is not part of the vocabulary.
	ErrUnknownMarker = errors.New("vocab: unknown marker")
	// ErrEmpty is returned when no marker was seen in the corpus.
	ErrEmpty = errors.New("vocab: empty corpus")
	// ErrUnknownGenome is returned when a matrix row is requested for an absent genome.
	ErrUnknownGenome = errors.New("vocab: unknown genome")
)

// Vocabulary is an ordered, deduplicated marker set. A marker's position is
// its column in every genome vector. It is immutable once built.
type Vocabulary struct {
	markers []string
	index   map[string]int
}

// New builds a vocabulary from markers in first-seen order, dropping duplicates.
func New(markers []string) (*Vocabulary, error) {
	v := &Vocabulary{index: make(map[string]int, len(markers))}
	for _, m := range markers {
		if _, ok := v.index[m]; ok {
			continue
		}
		v.index[m] = len(v.markers)
		v.markers = append(v.markers, m)
	}
	if len(v.markers) == 0 {
		return nil, ErrEmpty
	}
	return v, nil
}

// Build collects markers from per-genome annotation lists, walking genomes
// in the given order so the column layout is reproducible.
func Build(order []string, annotations map[string][]string) (*Vocabulary, error) {
	var all []string
	for _, g := range order {
		all = append(all, annotations[g]...)
	}
	return New(all)
}

// Size returns the number of markers.
func (v *Vocabulary) Size() int { return len(v.markers) }

// Index returns the column of a marker.
func (v *Vocabulary) Index(marker string) (int, error) {
	i, ok := v.index[marker]
	if !ok {
		return -1, fmt.Errorf("%w: %q", ErrUnknownMarker, marker)
	}
	return i, nil
}

// Contains reports whether the marker is part of the vocabulary.
func (v *Vocabulary) Contains(marker string) bool {
	_, ok := v.index[marker]
	return ok
}

// Marker returns the marker at column i.
func (v *Vocabulary) Marker(i int) string { return v.markers[i] }

// Markers returns a copy of the vocabulary in column order.
func (v *Vocabulary) Markers() []string {
	out := make([]string, len(v.markers))
	copy(out, v.markers)
	return out
}
