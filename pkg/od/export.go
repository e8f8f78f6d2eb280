package od

import (
	"fmt"
	"io"
	"sort"
)

// Export re-serializes the live OD back to INI/EDS text -- used for
// diagnostics and for hosts wiring 0x1021 StoreEDS. Only the fields
// required to rebuild a DefaultValue/AccessType/DataType/PDOMapping
// round-trip are written.
func (d *ObjectDictionary) Export(w io.Writer) error {
	indices := make([]uint16, 0, len(d.indexToObject))
	for idx := range d.indexToObject {
		indices = append(indices, idx)
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })

	for _, idx := range indices {
		obj := d.indexToObject[idx]
		if err := writeObjectSection(w, idx, obj); err != nil {
			return err
		}
	}
	return nil
}

func writeObjectSection(w io.Writer, idx uint16, obj *Object) error {
	if _, err := fmt.Fprintf(w, "[%04X]\n", idx); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "ParameterName=%s\n", obj.Name()); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "ObjectType=0x%X\n", int(obj.Type())); err != nil {
		return err
	}
	switch {
	case obj.Variable != nil:
		if err := writeVariableBody(w, obj.Variable); err != nil {
			return err
		}
	case obj.Array != nil:
		if _, err := fmt.Fprintf(w, "\n"); err != nil {
			return err
		}
		writeArraySubEntries(w, idx, obj.Array)
	case obj.Record != nil:
		if _, err := fmt.Fprintf(w, "\n"); err != nil {
			return err
		}
		writeRecordSubEntries(w, idx, obj.Record)
	}
	return nil
}

func writeVariableBody(w io.Writer, v *Variable) error {
	s, _ := DecodeToString(v.Value(), v.DataType)
	var code uint8
	for c, dt := range edsCode {
		if dt == v.DataType {
			code = c
		}
	}
	_, err := fmt.Fprintf(w, "DataType=0x%02X\nAccessType=%s\nPDOMapping=%d\nDefaultValue=%s\n\n",
		code, v.Access.String(), boolToInt(v.PDOMappable), s)
	return err
}

func writeArraySubEntries(w io.Writer, idx uint16, a *Array) {
	indices := []uint8{0, 1}
	for sub := range a.extra {
		indices = append(indices, sub)
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })
	for _, sub := range indices {
		v, ok := a.Get(sub)
		if !ok {
			continue
		}
		fmt.Fprintf(w, "[%04Xsub%X]\n", idx, sub)
		fmt.Fprintf(w, "ParameterName=%s\n", v.Name)
		writeVariableBody(w, v)
	}
}

func writeRecordSubEntries(w io.Writer, idx uint16, r *Record) {
	subs := make([]uint8, 0, len(r.Variables))
	for sub := range r.Variables {
		subs = append(subs, sub)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i] < subs[j] })
	for _, sub := range subs {
		v := r.Variables[sub]
		fmt.Fprintf(w, "[%04Xsub%X]\n", idx, sub)
		fmt.Fprintf(w, "ParameterName=%s\n", v.Name)
		writeVariableBody(w, v)
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
