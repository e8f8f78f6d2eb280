package od

// Object is the tagged union over {Variable, Array, Record} stored at one OD
// index.
type Object struct {
	Variable *Variable
	Array    *Array
	Record   *Record
}

func (o *Object) Type() ObjectType {
	switch {
	case o.Array != nil:
		return ObjectTypeArray
	case o.Record != nil:
		return ObjectTypeRecord
	default:
		return ObjectTypeVariable
	}
}

func (o *Object) Index() uint16 {
	switch {
	case o.Variable != nil:
		return o.Variable.Index
	case o.Array != nil:
		return o.Array.Index
	case o.Record != nil:
		return o.Record.Index
	default:
		return 0
	}
}

func (o *Object) Name() string {
	switch {
	case o.Variable != nil:
		return o.Variable.Name
	case o.Array != nil:
		return o.Array.Name
	case o.Record != nil:
		return o.Record.Name
	default:
		return ""
	}
}

// Get returns the Variable at subIndex without materialising anything.
func (o *Object) Get(subIndex uint8) (*Variable, bool) {
	switch {
	case o.Variable != nil:
		if subIndex != 0 {
			return nil, false
		}
		return o.Variable, true
	case o.Array != nil:
		return o.Array.Get(subIndex)
	case o.Record != nil:
		return o.Record.Get(subIndex)
	default:
		return nil, false
	}
}

// GetOrMaterialise returns the Variable at subIndex, auto-materialising
// Array sub-entries 2..254 on first access.
func (o *Object) GetOrMaterialise(subIndex uint8) (*Variable, error) {
	switch {
	case o.Variable != nil:
		if subIndex != 0 {
			return nil, ErrSubIndexDoesNotExist
		}
		return o.Variable, nil
	case o.Array != nil:
		return o.Array.GetOrMaterialise(subIndex)
	case o.Record != nil:
		v, ok := o.Record.Get(subIndex)
		if !ok {
			return nil, ErrSubIndexDoesNotExist
		}
		return v, nil
	default:
		return nil, ErrObjectDoesNotExist
	}
}

// SubCount returns the number of sub-entries (1 for a bare Variable).
func (o *Object) SubCount() int {
	switch {
	case o.Array != nil:
		return o.Array.SubCount()
	case o.Record != nil:
		return o.Record.SubCount()
	default:
		return 1
	}
}

// Clone returns a deep, independent copy.
func (o *Object) Clone() *Object {
	switch {
	case o.Variable != nil:
		return &Object{Variable: o.Variable.Clone()}
	case o.Array != nil:
		return &Object{Array: o.Array.Clone()}
	case o.Record != nil:
		return &Object{Record: o.Record.Clone()}
	default:
		return &Object{}
	}
}
