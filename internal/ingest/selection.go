// Package ingest reads the pipeline's raw inputs: the genome selection list,
// per-genome annotation files, the module mapping and the holdout reference.
package ingest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// DefaultTaxon keeps bacterial genomes only.
const DefaultTaxon = "k__Bacteria"

// selectionHeaderLines precede the first data row of a selection list.
const selectionHeaderLines = 4

// ErrMalformed marks input that does not have the expected shape.
var ErrMalformed = errors.New("ingest: malformed input")

// Selection is the filtered genome selection list. IDs keeps file order.
type Selection struct {
	IDs     []string
	aliasID map[string]string
	idAlias map[string]string
}

// ReadSelection parses a whitespace-separated `idx alias id taxonomy`
// listing, keeping rows whose taxonomy contains taxon.
func ReadSelection(r io.Reader, taxon string) (*Selection, error) {
	if taxon == "" {
		taxon = DefaultTaxon
	}
	s := &Selection{aliasID: map[string]string{}, idAlias: map[string]string{}}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		if line <= selectionHeaderLines {
			continue
		}
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) < 4 {
			return nil, fmt.Errorf("%w: selection line %d has %d fields", ErrMalformed, line, len(fields))
		}
		alias, id, tax := fields[1], fields[2], fields[3]
		if !strings.Contains(tax, taxon) {
			continue
		}
		if _, dup := s.idAlias[id]; !dup {
			s.IDs = append(s.IDs, id)
		}
		s.aliasID[alias] = id
		s.idAlias[id] = alias
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadSelection reads a selection list from disk.
func LoadSelection(path, taxon string) (*Selection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := ReadSelection(f, taxon)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Len returns the number of selected genomes.
func (s *Selection) Len() int { return len(s.IDs) }

// ID translates an alias to a genome id.
func (s *Selection) ID(alias string) (string, bool) {
	id, ok := s.aliasID[alias]
	return id, ok
}

// Alias translates a genome id to its alias. Its signature matches
// assembly.Translator.
func (s *Selection) Alias(id string) (string, bool) {
	a, ok := s.idAlias[id]
	return a, ok
}
