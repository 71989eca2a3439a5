// Package modules derives corpus-wide tables from per-genome module
// decompositions: variant counts and the canonical composition per module.
package modules

import (
	"strings"

	"genomecorrupt/internal/domain"
)

// Variant is one observed marker list for a module and how often it occurs.
type Variant struct {
	Key     string
	Markers []string
	Count   int
}

// VariantCounter tallies, per module, every distinct marker list seen across
// genomes. Modules and variants keep first-seen order.
type VariantCounter struct {
	modules  []string
	variants map[string][]*Variant
	byKey    map[string]map[string]*Variant
}

// VariantKey joins a marker list into the key variants are counted under.
func VariantKey(markers []string) string { return strings.Join(markers, "_") }

// CountVariants walks genomes in the given order and counts module variants.
// Genomes without a decomposition are ignored.
func CountVariants(genomes []string, decomps map[string]domain.Decomposition) *VariantCounter {
	c := &VariantCounter{
		variants: make(map[string][]*Variant),
		byKey:    make(map[string]map[string]*Variant),
	}
	for _, g := range genomes {
		d, ok := decomps[g]
		if !ok {
			continue
		}
		for _, m := range d.Modules {
			c.add(m)
		}
	}
	return c
}

func (c *VariantCounter) add(m domain.Module) {
	keys, ok := c.byKey[m.Name]
	if !ok {
		keys = make(map[string]*Variant)
		c.byKey[m.Name] = keys
		c.modules = append(c.modules, m.Name)
	}
	key := VariantKey(m.Markers)
	if v, ok := keys[key]; ok {
		v.Count++
		return
	}
	markers := make([]string, len(m.Markers))
	copy(markers, m.Markers)
	v := &Variant{Key: key, Markers: markers, Count: 1}
	keys[key] = v
	c.variants[m.Name] = append(c.variants[m.Name], v)
}

// Modules returns module names in first-seen order.
func (c *VariantCounter) Modules() []string {
	out := make([]string, len(c.modules))
	copy(out, c.modules)
	return out
}

// Variants returns the variants of a module in first-seen order.
func (c *VariantCounter) Variants(module string) []Variant {
	vs := c.variants[module]
	out := make([]Variant, len(vs))
	for i, v := range vs {
		out[i] = *v
	}
	return out
}

// Canonical picks the most frequent variant of every module. On a tie the
// variant seen first wins.
func (c *VariantCounter) Canonical() *Canonical {
	out := &Canonical{markers: make(map[string][]string, len(c.modules))}
	for _, name := range c.modules {
		var best *Variant
		for _, v := range c.variants[name] {
			if best == nil || v.Count > best.Count {
				best = v
			}
		}
		out.names = append(out.names, name)
		out.markers[name] = best.Markers
	}
	return out
}
