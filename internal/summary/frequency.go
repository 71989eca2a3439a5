// Package summary condenses an assembled dataset into a one-line overview.
package summary

import (
	"fmt"
	"sort"
	"strings"

	"genomecorrupt/internal/domain"
)

// DefaultTop is used when Summarize is asked for a non-positive count.
const DefaultTop = 5

// Count is one ranked provenance entry.
type Count struct {
	Name  string
	Count int
}

// Stats are the figures a summary is rendered from.
type Stats struct {
	Rows     int
	Genomes  int
	Markers  int
	Retained []Count
}

// Frequency ranks retained modules or markers by how many rows kept them.
type Frequency struct {
	skipped int
}

// NewFrequency returns a summarizer. skipped is the number of genomes the
// run left out and is reported alongside the row counts.
func NewFrequency(skipped int) *Frequency {
	return &Frequency{skipped: skipped}
}

// Compute tallies the dataset. Ties rank by name.
func Compute(ds domain.Dataset) Stats {
	freq := map[string]int{}
	genomes := map[string]struct{}{}
	for _, r := range ds.Rows {
		genomes[r.GenomeID] = struct{}{}
		for _, name := range r.Retained {
			freq[name]++
		}
	}
	counts := make([]Count, 0, len(freq))
	for name, n := range freq {
		counts = append(counts, Count{Name: name, Count: n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Name < counts[j].Name
	})
	return Stats{Rows: ds.Len(), Genomes: len(genomes), Markers: ds.Width / 2, Retained: counts}
}

// Summarize implements domain.Summarizer.
func (f *Frequency) Summarize(ds domain.Dataset, top int) (string, error) {
	if top <= 0 {
		top = DefaultTop
	}
	st := Compute(ds)
	var b strings.Builder
	fmt.Fprintf(&b, "%d rows, %d genomes, %d markers", st.Rows, st.Genomes, st.Markers)
	if f.skipped > 0 {
		fmt.Fprintf(&b, ", %d skipped", f.skipped)
	}
	if len(st.Retained) == 0 {
		return b.String(), nil
	}
	if top > len(st.Retained) {
		top = len(st.Retained)
	}
	parts := make([]string, top)
	for i, c := range st.Retained[:top] {
		parts[i] = fmt.Sprintf("%s (%d)", c.Name, c.Count)
	}
	b.WriteString("; most retained: ")
	b.WriteString(strings.Join(parts, ", "))
	return b.String(), nil
}
