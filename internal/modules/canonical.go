package modules

// Canonical is the immutable module name -> most frequent marker list table.
type Canonical struct {
	names   []string
	markers map[string][]string
}

// NewCanonical builds a table from explicit entries, keeping the given name order.
func NewCanonical(names []string, markers map[string][]string) *Canonical {
	c := &Canonical{markers: make(map[string][]string, len(names))}
	for _, n := range names {
		ms, ok := markers[n]
		if !ok {
			continue
		}
		cp := make([]string, len(ms))
		copy(cp, ms)
		c.names = append(c.names, n)
		c.markers[n] = cp
	}
	return c
}

// Lookup returns a copy of the canonical marker list of a module.
func (c *Canonical) Lookup(module string) ([]string, bool) {
	if c == nil {
		return nil, false
	}
	ms, ok := c.markers[module]
	if !ok {
		return nil, false
	}
	out := make([]string, len(ms))
	copy(out, ms)
	return out, true
}

// Names returns module names in table order.
func (c *Canonical) Names() []string {
	if c == nil {
		return nil
	}
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Len returns the number of modules in the table.
func (c *Canonical) Len() int {
	if c == nil {
		return 0
	}
	return len(c.names)
}
