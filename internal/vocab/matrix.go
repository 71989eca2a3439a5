package vocab

import (
	"fmt"

	"genomecorrupt/internal/domain"
)

// Matrix is the dense binary genome-by-marker matrix. Rows follow the
// declared genome order, columns follow the vocabulary.
type Matrix struct {
	genomes []string
	rows    []domain.Vector
	byID    map[string]int
	width   int
}

// BuildMatrix lays out one clean row per genome. Markers outside the
// vocabulary are an error: the vocabulary must cover every annotation.
func BuildMatrix(v *Vocabulary, genomes []string, annotations map[string][]string) (*Matrix, error) {
	m := &Matrix{
		genomes: make([]string, len(genomes)),
		rows:    make([]domain.Vector, len(genomes)),
		byID:    make(map[string]int, len(genomes)),
		width:   v.Size(),
	}
	copy(m.genomes, genomes)
	for i, g := range genomes {
		row := make(domain.Vector, v.Size())
		for _, marker := range annotations[g] {
			j, err := v.Index(marker)
			if err != nil {
				return nil, fmt.Errorf("genome %s: %w", g, err)
			}
			row[j] = 1
		}
		m.rows[i] = row
		m.byID[g] = i
	}
	return m, nil
}

// Rows returns the number of genomes.
func (m *Matrix) Rows() int { return len(m.rows) }

// Width returns the number of marker columns.
func (m *Matrix) Width() int { return m.width }

// Genomes returns the genome ids in row order.
func (m *Matrix) Genomes() []string {
	out := make([]string, len(m.genomes))
	copy(out, m.genomes)
	return out
}

// Row returns a copy of row i so callers can never mutate the clean matrix.
func (m *Matrix) Row(i int) domain.Vector {
	out := make(domain.Vector, m.width)
	copy(out, m.rows[i])
	return out
}

// RowOf returns the clean row of a genome by id.
func (m *Matrix) RowOf(genome string) (domain.Vector, error) {
	i, ok := m.byID[genome]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGenome, genome)
	}
	return m.Row(i), nil
}
