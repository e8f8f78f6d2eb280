package sdo

import (
	"encoding/binary"

	"github.com/canopenio/gocanopen/pkg/od"
)

func inRange(index, lo, hi uint16) bool { return index >= lo && index <= hi }

// setValueWithCheck wraps an OD write with the protocol post-conditions an
// SDO download requires: PDO mapping-table entries are validated against
// the referenced variable before being committed, and a successful write
// into the PDO communication/mapping area or the heartbeat producer time
// triggers the corresponding re-derivation hook.
func (s *Server) setValueWithCheck(index uint16, subIndex uint8, data []byte) error {
	isMappingTable := (inRange(index, od.IndexRPDOMappingStart, od.IndexRPDOMappingEnd) ||
		inRange(index, od.IndexTPDOMappingStart, od.IndexTPDOMappingEnd)) && subIndex >= 1

	if isMappingTable && len(data) == 4 {
		if err := s.checkMappingEntry(index, data); err != nil {
			return err
		}
	}

	var previous []byte
	if obj := s.od.Index(index); obj != nil {
		if v, ok := obj.Get(subIndex); ok {
			previous = v.Value()
		}
	}

	if err := s.od.SetValue(index, subIndex, data, false); err != nil {
		return err
	}

	if inRange(index, od.IndexRPDOCommunicationStart, od.IndexTPDOMappingEnd) {
		if s.OnPDOConfigChanged != nil {
			if err := s.OnPDOConfigChanged(index); err != nil {
				// Veto: restore the previous value and re-derive from it.
				if previous != nil {
					_ = s.od.SetValue(index, subIndex, previous, true)
					_ = s.OnPDOConfigChanged(index)
				}
				return err
			}
		}
	}

	if index == od.IndexProducerHeartbeatTime && subIndex == 0 && s.OnHeartbeatPeriodChanged != nil {
		s.OnHeartbeatPeriodChanged(binary.LittleEndian.Uint16(data))
	}

	return nil
}

// checkMappingEntry validates a (index<<16 | subIndex<<8 | bitLength) entry
// before it is written into a 0x1600..0x17FF / 0x1A00..0x1BFF mapping table.
func (s *Server) checkMappingEntry(mappingIndex uint16, data []byte) error {
	bitLength := data[0]
	refSubIndex := data[1]
	refIndex := binary.LittleEndian.Uint16(data[2:4])
	_ = bitLength

	v, err := s.od.GetVariable(refIndex, refSubIndex)
	if err != nil {
		return &abortError{code: AbortNoMap, index: mappingIndex}
	}
	if !v.PDOMappable {
		return &abortError{code: AbortNoMap, index: mappingIndex}
	}
	if inRange(mappingIndex, od.IndexTPDOMappingStart, od.IndexTPDOMappingEnd) && !v.Access.Readable {
		return &abortError{code: AbortNoMap, index: mappingIndex}
	}
	return nil
}
