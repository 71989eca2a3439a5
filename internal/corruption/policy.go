// Package corruption implements the corruption policies that degrade a clean
// genome marker vector into a training input, and the registry that selects
// them by name.
package corruption

import (
	"fmt"
	"sort"
	"strings"

	"genomecorrupt/internal/domain"
)

// Registered policy names.
const (
	PolicyModuleSubset       = "module-subset"
	PolicyModuleSubsetRepeat = "single-marker-drop-per-module-repeat"
	PolicyMarkerDrop         = "single-marker-drop-per-module"
	PolicyMarkerFraction     = "marker-fraction"
)

// DefaultTargetModules is the module count kept by the module-subset policies.
const DefaultTargetModules = 10

var aliases = map[string]string{
	"v0": PolicyMarkerFraction,
	"v1": PolicyModuleSubset,
	"v2": PolicyModuleSubsetRepeat,
	"v3": PolicyMarkerDrop,
}

// Params tunes a policy. Fields a policy does not use are ignored.
type Params struct {
	// TargetModules is the number of modules sampled by module-subset policies.
	TargetModules int
	// Fraction of present markers kept by marker-fraction.
	Fraction float64
	// UseCanonical makes module-subset take markers from the canonical table.
	UseCanonical bool
	// LegacyProvenance makes marker drop report only the last module's markers.
	LegacyProvenance bool
}

// Resolve maps a policy name or alias to its registered name.
func Resolve(name string) (string, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if full, ok := aliases[n]; ok {
		return full, nil
	}
	switch n {
	case PolicyModuleSubset, PolicyModuleSubsetRepeat, PolicyMarkerDrop, PolicyMarkerFraction:
		return n, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
}

// Names lists the registered policy names.
func Names() []string {
	out := []string{PolicyModuleSubset, PolicyModuleSubsetRepeat, PolicyMarkerDrop, PolicyMarkerFraction}
	sort.Strings(out)
	return out
}

// New returns the policy registered under name (or its alias).
func New(name string, corpus *Corpus, p Params) (domain.Policy, error) {
	if corpus == nil {
		return nil, fmt.Errorf("%w: nil corpus", ErrInvalidParams)
	}
	full, err := Resolve(name)
	if err != nil {
		return nil, err
	}
	var (
		pol  domain.Policy
		perr error
	)
	switch full {
	case PolicyModuleSubset:
		var v *ModuleSubset
		if v, perr = NewModuleSubset(corpus, p); perr == nil {
			pol = v
		}
	case PolicyModuleSubsetRepeat:
		var v *ModuleSubsetRepeat
		if v, perr = NewModuleSubsetRepeat(corpus, p); perr == nil {
			pol = v
		}
	case PolicyMarkerDrop:
		var v *MarkerDrop
		if v, perr = NewMarkerDrop(corpus, p); perr == nil {
			pol = v
		}
	default:
		var v *MarkerFraction
		if v, perr = NewMarkerFraction(corpus, p); perr == nil {
			pol = v
		}
	}
	if perr != nil {
		return nil, perr
	}
	return pol, nil
}
