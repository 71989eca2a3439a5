package modules

import "genomecorrupt/internal/domain"

// Exclusion removes one known-bad marker from one genome's module.
type Exclusion struct {
	Genome string `yaml:"genome"`
	Module string `yaml:"module"`
	Marker string `yaml:"marker"`
}

// Exclude returns a copy of decomps with the first occurrence of each
// excluded marker removed, plus the number of markers actually removed.
// Exclusions that match nothing are ignored.
func Exclude(decomps map[string]domain.Decomposition, exclusions []Exclusion) (map[string]domain.Decomposition, int) {
	out := make(map[string]domain.Decomposition, len(decomps))
	for g, d := range decomps {
		out[g] = clone(d)
	}
	removed := 0
	for _, ex := range exclusions {
		d, ok := out[ex.Genome]
		if !ok {
			continue
		}
		for i := range d.Modules {
			if d.Modules[i].Name != ex.Module {
				continue
			}
			if idx := indexOf(d.Modules[i].Markers, ex.Marker); idx >= 0 {
				ms := d.Modules[i].Markers
				d.Modules[i].Markers = append(ms[:idx:idx], ms[idx+1:]...)
				removed++
			}
			break
		}
	}
	return out, removed
}

func clone(d domain.Decomposition) domain.Decomposition {
	mods := make([]domain.Module, len(d.Modules))
	for i, m := range d.Modules {
		ms := make([]string, len(m.Markers))
		copy(ms, m.Markers)
		mods[i] = domain.Module{Name: m.Name, Markers: ms}
	}
	return domain.Decomposition{Modules: mods}
}

func indexOf(xs []string, x string) int {
	for i, v := range xs {
		if v == x {
			return i
		}
	}
	return -1
}
