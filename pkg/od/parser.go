package od

import (
	"regexp"
	"strconv"
	"strings"

	canopen "github.com/canopenio/gocanopen"
	"github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"
)

var (
	reIndex    = regexp.MustCompile(`^[0-9A-Fa-f]{4}$`)
	reSubIndex = regexp.MustCompile(`^([0-9A-Fa-f]{4})[sS]ub([0-9A-Fa-f]+)$`)
	reName     = regexp.MustCompile(`^([0-9A-Fa-f]{4})Name$`)
)

// ParseEDS ingests an EDS file (INI-style) and builds an ObjectDictionary
// for nodeId. file is anything gopkg.in/ini.v1 accepts: a path, []byte, or
// io.Reader.
func ParseEDS(file any, nodeId uint8, logger *logrus.Logger) (*ObjectDictionary, error) {
	edsFile, err := ini.Load(file)
	if err != nil {
		return nil, err
	}

	d := NewObjectDictionary(nodeId, logger)
	sections := edsFile.Sections()

	// Pass 1: top-level XXXX entries.
	for _, section := range sections {
		name := section.Name()
		if !reIndex.MatchString(name) {
			continue
		}
		idx64, _ := strconv.ParseUint(name, 16, 16)
		index := uint16(idx64)

		objType := uint8(ObjectTypeVariable)
		if v, err := strconv.ParseInt(section.Key("ObjectType").Value(), 0, 16); err == nil {
			objType = uint8(v)
		}

		switch ObjectType(objType) {
		case ObjectTypeVariable:
			v, err := newVariableFromSection(section, index, 0, nodeId)
			if err != nil {
				return nil, err
			}
			d.addObject(&Object{Variable: v})

		case ObjectTypeArray:
			numEntries := NewVariable("NrOfObjects", index, 0, Unsigned8, AccessType{Readable: true, Writable: false}, false, []byte{0})
			arr := NewArray(index, section.Key("ParameterName").String(), numEntries, nil)
			if section.HasKey("CompactSubObj") {
				proto, err := newVariableFromSection(section, index, 1, nodeId)
				if err != nil {
					return nil, err
				}
				arr.Set(1, proto)
			}
			d.addObject(&Object{Array: arr})

		case ObjectTypeRecord:
			rec := NewRecord(index, section.Key("ParameterName").String())
			d.addObject(&Object{Record: rec})

		default:
			// Unrecognised ObjectType values are ignored.
		}
	}

	// Pass 2: XXXXsubYY sub-entries.
	for _, section := range sections {
		m := reSubIndex.FindStringSubmatch(section.Name())
		if m == nil {
			continue
		}
		idx64, _ := strconv.ParseUint(m[1], 16, 16)
		sub64, _ := strconv.ParseUint(m[2], 16, 8)
		index := uint16(idx64)
		subIndex := uint8(sub64)

		obj := d.indexToObject[index]
		if obj == nil {
			continue
		}
		v, err := newVariableFromSection(section, index, subIndex, nodeId)
		if err != nil {
			return nil, err
		}
		switch {
		case obj.Array != nil:
			obj.Array.Set(subIndex, v)
			if subIndex > obj.Array.NumEntries.Uint8() {
				obj.Array.NumEntries.setRaw([]byte{subIndex})
			}
		case obj.Record != nil:
			obj.Record.Add(v)
		}
	}

	// Pass 3: XXXXName companion sections supplying explicit compact names.
	for _, section := range sections {
		m := reName.FindStringSubmatch(section.Name())
		if m == nil {
			continue
		}
		idx64, _ := strconv.ParseUint(m[1], 16, 16)
		index := uint16(idx64)
		obj := d.indexToObject[index]
		if obj == nil || obj.Array == nil {
			continue
		}
		nrOfEntries, err := strconv.ParseUint(section.Key("NrOfEntries").Value(), 0, 8)
		if err != nil {
			continue
		}
		for i := uint64(1); i <= nrOfEntries; i++ {
			key := section.Key(strconv.FormatUint(i, 10))
			if key == nil || key.Value() == "" {
				continue
			}
			v, err := obj.Array.GetOrMaterialise(uint8(i))
			if err != nil {
				continue
			}
			v.Name = key.Value()
		}
	}

	d.Snapshot()
	return d, nil
}

// newVariableFromSection builds a Variable from an EDS section's properties,
// resolving LowLimit/HighLimit/DefaultValue/ParameterValue through
// $NODEID-expression evaluation then type coercion.
func newVariableFromSection(section *ini.Section, index uint16, subIndex uint8, nodeId uint8) (*Variable, error) {
	name := section.Key("ParameterName").String()

	dataType := Unknown
	if v, err := strconv.ParseUint(section.Key("DataType").Value(), 0, 8); err == nil {
		dataType = DataTypeFromEDS(uint8(v))
	}

	access := ParseAccessType(strings.ToLower(section.Key("AccessType").Value()))

	pdoMappable := false
	if key, err := section.GetKey("PDOMapping"); err == nil {
		pdoMappable, _ = key.Bool()
	}

	valueKey := "DefaultValue"
	if !section.HasKey(valueKey) && section.HasKey("ParameterValue") {
		valueKey = "ParameterValue"
	}
	raw := section.Key(valueKey).Value()
	resolved := raw
	if strings.Contains(raw, "$NODEID") {
		resolved = canopen.EvaluateExpressionWithNodeId(nodeId, raw)
	}
	value, err := EncodeFromString(resolved, dataType)
	if err != nil {
		return nil, err
	}

	v := NewVariable(name, index, subIndex, dataType, access, pdoMappable, value)

	if section.HasKey("LowLimit") {
		raw := section.Key("LowLimit").Value()
		if strings.Contains(raw, "$NODEID") {
			raw = canopen.EvaluateExpressionWithNodeId(nodeId, raw)
		}
		if lo, err := EncodeFromString(raw, dataType); err == nil {
			v.Min = lo
		}
	}
	if section.HasKey("HighLimit") {
		raw := section.Key("HighLimit").Value()
		if strings.Contains(raw, "$NODEID") {
			raw = canopen.EvaluateExpressionWithNodeId(nodeId, raw)
		}
		if hi, err := EncodeFromString(raw, dataType); err == nil {
			v.Max = hi
		}
	}

	return v, nil
}
