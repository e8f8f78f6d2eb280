package od

import "fmt"

// Array is an OD entry with a single element prototype at sub-index 1 and
// implicitly-materialised clones for sub-indices 2..254 on first access
// (CiA 306 §4.5.2.4 compact sub-object pattern). Sub-index 0 holds a U8
// "number of entries".
type Array struct {
	Index      uint16
	Name       string
	NumEntries *Variable // sub-index 0, U8
	Prototype  *Variable // sub-index 1
	extra      map[uint8]*Variable
}

// NewArray builds an Array from its sub-index 0 and sub-index 1 variables.
func NewArray(index uint16, name string, numEntries, prototype *Variable) *Array {
	return &Array{
		Index:      index,
		Name:       name,
		NumEntries: numEntries,
		Prototype:  prototype,
		extra:      map[uint8]*Variable{},
	}
}

// Clone deep-copies the array, including all materialised sub-entries.
func (a *Array) Clone() *Array {
	c := &Array{
		Index:      a.Index,
		Name:       a.Name,
		NumEntries: a.NumEntries.Clone(),
		Prototype:  a.Prototype.Clone(),
		extra:      map[uint8]*Variable{},
	}
	for k, v := range a.extra {
		c.extra[k] = v.Clone()
	}
	return c
}

// Get returns the Variable at subIndex if it exists (sub-index 0, 1, or any
// already-materialised entry). It does not materialise new entries -- use
// GetOrMaterialise for that.
func (a *Array) Get(subIndex uint8) (*Variable, bool) {
	switch {
	case subIndex == 0:
		return a.NumEntries, a.NumEntries != nil
	case subIndex == 1:
		return a.Prototype, a.Prototype != nil
	default:
		v, ok := a.extra[subIndex]
		return v, ok
	}
}

// GetOrMaterialise returns the Variable at subIndex, synthesising it by
// cloning the sub-index 1 prototype and renaming it "{name}_{subIndex}" if
// subIndex is in 2..254 and not yet present. Sub-indices 0 and 255 never
// auto-materialise.
func (a *Array) GetOrMaterialise(subIndex uint8) (*Variable, error) {
	if v, ok := a.Get(subIndex); ok {
		return v, nil
	}
	if subIndex < 2 || subIndex > MaxArraySubIndex || a.Prototype == nil {
		return nil, ErrSubIndexDoesNotExist
	}
	clone := a.Prototype.Clone()
	clone.SubIndex = subIndex
	clone.Name = fmt.Sprintf("%s_%d", a.Name, subIndex)
	a.extra[subIndex] = clone
	if subIndex > a.NumEntries.Uint8() {
		a.NumEntries.setRaw([]byte{subIndex})
	}
	return clone, nil
}

// SubCount returns the number of sub-entries materialised so far, plus the
// fixed sub-index 0 and 1.
func (a *Array) SubCount() int {
	return 2 + len(a.extra)
}
