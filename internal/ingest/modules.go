package ingest

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"genomecorrupt/internal/domain"
)

// ModuleMap is the per-genome module decomposition keyed by alias. Order is
// the document order of genomes.
type ModuleMap struct {
	Order          []string
	Decompositions map[string]domain.Decomposition
}

// ReadModules parses `alias: {module: [markers...]}`. JSON input is accepted
// since it parses as YAML. Document order is kept for genomes and modules.
func ReadModules(r io.Reader) (*ModuleMap, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &ModuleMap{Decompositions: map[string]domain.Decomposition{}}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: module mapping must be a mapping (line %d)", ErrMalformed, root.Line)
	}
	mm := &ModuleMap{Decompositions: make(map[string]domain.Decomposition, len(root.Content)/2)}
	for i := 0; i+1 < len(root.Content); i += 2 {
		alias := root.Content[i].Value
		mods := root.Content[i+1]
		if mods.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("%w: genome %q: modules must be a mapping (line %d)", ErrMalformed, alias, mods.Line)
		}
		var d domain.Decomposition
		for j := 0; j+1 < len(mods.Content); j += 2 {
			name := mods.Content[j].Value
			var markers []string
			if err := mods.Content[j+1].Decode(&markers); err != nil {
				return nil, fmt.Errorf("%w: genome %q module %q: %v", ErrMalformed, alias, name, err)
			}
			d.Modules = append(d.Modules, domain.Module{Name: name, Markers: markers})
		}
		if _, dup := mm.Decompositions[alias]; !dup {
			mm.Order = append(mm.Order, alias)
		}
		mm.Decompositions[alias] = d
	}
	return mm, nil
}

// LoadModules reads a module mapping from disk.
func LoadModules(path string) (*ModuleMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	mm, err := ReadModules(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return mm, nil
}
