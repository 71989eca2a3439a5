package corruption

import (
	"fmt"

	"genomecorrupt/internal/domain"
	"genomecorrupt/internal/modules"
	"genomecorrupt/internal/vocab"
)

// Corpus holds the corpus-wide read-only tables shared by every corruption
// call. It is safe for concurrent use because nothing mutates it after NewCorpus.
type Corpus struct {
	vocab     *vocab.Vocabulary
	canonical *modules.Canonical
}

// NewCorpus binds the vocabulary and the canonical composition table.
// The canonical table may be nil when no policy needs it.
func NewCorpus(v *vocab.Vocabulary, canonical *modules.Canonical) (*Corpus, error) {
	if v == nil {
		return nil, fmt.Errorf("%w: nil vocabulary", ErrInvalidParams)
	}
	return &Corpus{vocab: v, canonical: canonical}, nil
}

// Width returns the vector width (vocabulary size).
func (c *Corpus) Width() int { return c.vocab.Size() }

// Vocabulary returns the marker vocabulary.
func (c *Corpus) Vocabulary() *vocab.Vocabulary { return c.vocab }

// Canonical returns the canonical composition table, possibly nil.
func (c *Corpus) Canonical() *modules.Canonical { return c.canonical }

func (c *Corpus) index(marker string) (int, error) {
	i, err := c.vocab.Index(marker)
	if err != nil {
		return -1, fmt.Errorf("%w: %w", ErrIntegrity, err)
	}
	return i, nil
}

// set marks every marker in vec.
func (c *Corpus) set(vec domain.Vector, markers []string) error {
	for _, m := range markers {
		i, err := c.index(m)
		if err != nil {
			return err
		}
		vec[i] = 1
	}
	return nil
}

// validate checks that every marker of every module resolves, so lookup
// failures surface on every call and not only when an unlucky module is drawn.
func (c *Corpus) validate(g domain.Genome) error {
	for _, m := range g.Modules.Modules {
		for _, marker := range m.Markers {
			if _, err := c.index(marker); err != nil {
				return fmt.Errorf("genome %s module %s: %w", g.ID, m.Name, err)
			}
		}
	}
	return nil
}

func (c *Corpus) newVector() domain.Vector { return make(domain.Vector, c.vocab.Size()) }
