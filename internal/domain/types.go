package domain

// Vector is a binary marker vector indexed by vocabulary position.
// Values are 0 or 1, stored as float64 so rows feed tensors directly.
type Vector []float64

// Ones returns the number of set positions.
func (v Vector) Ones() int {
	n := 0
	for _, x := range v {
		if x != 0 {
			n++
		}
	}
	return n
}

// IsZero reports whether no position is set.
func (v Vector) IsZero() bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

// Positions returns the indexes of set positions in ascending order.
func (v Vector) Positions() []int {
	out := make([]int, 0, v.Ones())
	for i, x := range v {
		if x != 0 {
			out = append(out, i)
		}
	}
	return out
}

// Module is a named functional unit instantiated by an ordered list of markers.
type Module struct {
	Name    string
	Markers []string
}

// Decomposition maps one genome to its modules, in declaration order.
type Decomposition struct {
	Modules []Module
}

// Len returns the number of modules.
func (d Decomposition) Len() int { return len(d.Modules) }

// Names returns the module names in declaration order.
func (d Decomposition) Names() []string {
	out := make([]string, len(d.Modules))
	for i, m := range d.Modules {
		out[i] = m.Name
	}
	return out
}

// MarkerCount returns the total number of marker references across modules.
func (d Decomposition) MarkerCount() int {
	n := 0
	for _, m := range d.Modules {
		n += len(m.Markers)
	}
	return n
}

// Lookup returns the module with the given name.
func (d Decomposition) Lookup(name string) (Module, bool) {
	for _, m := range d.Modules {
		if m.Name == name {
			return m, true
		}
	}
	return Module{}, false
}

// Genome is everything a policy may read about one genome.
type Genome struct {
	ID      string
	Modules Decomposition
	Clean   Vector
}

// Sample is one corrupted variant of a genome plus the record of what survived.
type Sample struct {
	GenomeID string
	Vector   Vector
	Retained []string
}

// Row is a corrupted vector concatenated with its source clean vector.
type Row struct {
	GenomeID  string
	Replicate int
	Vector    Vector
	Retained  []string
}

// Corrupted returns the first half of the row.
func (r Row) Corrupted() Vector { return r.Vector[:len(r.Vector)/2] }

// Clean returns the second half of the row.
func (r Row) Clean() Vector { return r.Vector[len(r.Vector)/2:] }

// NewRow concatenates a sample with the clean vector it was derived from.
func NewRow(s Sample, clean Vector, replicate int) Row {
	vec := make(Vector, 0, len(s.Vector)+len(clean))
	vec = append(vec, s.Vector...)
	vec = append(vec, clean...)
	return Row{GenomeID: s.GenomeID, Replicate: replicate, Vector: vec, Retained: s.Retained}
}

// Dataset is the assembled collection of paired rows.
type Dataset struct {
	Width int
	Rows  []Row
}

// Len returns the number of rows.
func (d Dataset) Len() int { return len(d.Rows) }

// Matrix returns the row vectors (corrupted ‖ clean) in order.
func (d Dataset) Matrix() [][]float64 {
	out := make([][]float64, len(d.Rows))
	for i, r := range d.Rows {
		out[i] = r.Vector
	}
	return out
}

// Genomes returns the source genome of every row, parallel to Matrix.
func (d Dataset) Genomes() []string {
	out := make([]string, len(d.Rows))
	for i, r := range d.Rows {
		out[i] = r.GenomeID
	}
	return out
}

// Retained returns the retained record of every row, parallel to Matrix.
func (d Dataset) Retained() [][]string {
	out := make([][]string, len(d.Rows))
	for i, r := range d.Rows {
		out[i] = r.Retained
	}
	return out
}
