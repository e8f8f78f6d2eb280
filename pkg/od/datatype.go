// Package od implements the CANopen object dictionary: typed entries
// (Variable/Array/Record) keyed by (index, sub-index), EDS ingestion, and
// access-checked get/set.
package od

// DataType is the CiA 301 primitive data type tag.
type DataType uint8

const (
	Unknown DataType = iota
	Boolean
	Integer8
	Integer16
	Integer32
	Integer64
	Unsigned8
	Unsigned16
	Unsigned32
	Unsigned64
	Real32
	Real64
	VisibleString
	OctetString
	UnicodeString
	Domain
)

// edsCode is the CiA 301 EDS "DataType" integer for each DataType.
var edsCode = map[uint8]DataType{
	0x01: Boolean,
	0x02: Integer8,
	0x03: Integer16,
	0x04: Integer32,
	0x05: Unsigned8,
	0x06: Unsigned16,
	0x07: Unsigned32,
	0x08: Real32,
	0x09: VisibleString,
	0x0A: OctetString,
	0x0B: UnicodeString,
	0x0F: Domain,
	0x11: Real64,
	0x15: Integer64,
	0x1B: Unsigned64,
}

// DataTypeFromEDS maps a CiA 301 EDS DataType code to a DataType. Unknown
// codes map to Unknown.
func DataTypeFromEDS(code uint8) DataType {
	if dt, ok := edsCode[code]; ok {
		return dt
	}
	return Unknown
}

// Size returns the fixed byte size of the data type, or 0 for variable-length
// types (strings, domain).
func (dt DataType) Size() int {
	switch dt {
	case Boolean, Integer8, Unsigned8:
		return 1
	case Integer16, Unsigned16:
		return 2
	case Integer32, Unsigned32, Real32:
		return 4
	case Integer64, Unsigned64, Real64:
		return 8
	default:
		return 0
	}
}

// IsVariableLength reports whether the data type has no fixed size.
func (dt DataType) IsVariableLength() bool {
	return dt.Size() == 0
}

// ZeroValue returns the canonical zero value encoding for the data type.
func (dt DataType) ZeroValue() []byte {
	if n := dt.Size(); n > 0 {
		return make([]byte, n)
	}
	return []byte{}
}

func (dt DataType) String() string {
	switch dt {
	case Boolean:
		return "BOOLEAN"
	case Integer8:
		return "INTEGER8"
	case Integer16:
		return "INTEGER16"
	case Integer32:
		return "INTEGER32"
	case Integer64:
		return "INTEGER64"
	case Unsigned8:
		return "UNSIGNED8"
	case Unsigned16:
		return "UNSIGNED16"
	case Unsigned32:
		return "UNSIGNED32"
	case Unsigned64:
		return "UNSIGNED64"
	case Real32:
		return "REAL32"
	case Real64:
		return "REAL64"
	case VisibleString:
		return "VISIBLE_STRING"
	case OctetString:
		return "OCTET_STRING"
	case UnicodeString:
		return "UNICODE_STRING"
	case Domain:
		return "DOMAIN"
	default:
		return "UNKNOWN"
	}
}
