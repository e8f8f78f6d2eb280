package od

// Record is an OD entry with a heterogeneous, explicitly-enumerated map
// (sub-index -> Variable).
type Record struct {
	Index     uint16
	Name      string
	Variables map[uint8]*Variable
}

// NewRecord builds an empty Record.
func NewRecord(index uint16, name string) *Record {
	return &Record{Index: index, Name: name, Variables: map[uint8]*Variable{}}
}

// Clone deep-copies the record.
func (r *Record) Clone() *Record {
	c := &Record{Index: r.Index, Name: r.Name, Variables: map[uint8]*Variable{}}
	for k, v := range r.Variables {
		c.Variables[k] = v.Clone()
	}
	return c
}

// Get returns the Variable at subIndex, if present. Records never
// auto-materialise sub-entries -- every sub-index must be added explicitly.
func (r *Record) Get(subIndex uint8) (*Variable, bool) {
	v, ok := r.Variables[subIndex]
	return v, ok
}

// Add inserts or overwrites the variable at its own sub-index.
func (r *Record) Add(v *Variable) {
	r.Variables[v.SubIndex] = v
}

// SubCount returns the number of explicitly-defined sub-entries.
func (r *Record) SubCount() int {
	return len(r.Variables)
}
