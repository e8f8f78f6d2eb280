package pdo

import (
	canopen "github.com/canopenio/gocanopen"
	"github.com/canopenio/gocanopen/pkg/od"
)

// CommitRPDOs runs the RPDO commit pass for slots 0..3: for each valid slot
// whose trigger predicate fires and holds cached data, the cached payload
// is split per the mapping bit-widths and written into the object
// dictionary with set_value_with_fitting_size. Call this before EmitTPDOs
// for the same tick.
func (p *Objects) CommitRPDOs(dictionary *od.ObjectDictionary, isSync bool, event Event, counter uint32) {
	for slot := 0; slot < firstTPDOSlot; slot++ {
		obj := p.slots[slot]
		if !obj.Valid || len(obj.CachedData) == 0 {
			continue
		}
		if !ShouldFire(isSync, event, obj.TransmissionType, obj.EventTimer, counter) {
			continue
		}

		widths := make([]uint8, len(obj.Mappings))
		for i, m := range obj.Mappings {
			widths[i] = m.Bits
		}
		fields := canopen.UnpackData(obj.CachedData, widths)
		for i, m := range obj.Mappings {
			nBytes := (int(m.Bits) + 7) / 8
			dictionary.SetValueWithFittingSize(m.Index, m.SubIndex, od.EncodeUint64(fields[i].Value, nBytes))
		}
		obj.CachedData = nil
	}
}

// IngestRPDO routes a received frame by cob_id into the matching slot's
// cache. It returns true if the frame should instead raise an Emergency
// PdoNotProcessed (payload length mismatch).
func (p *Objects) IngestRPDO(cobId uint32, data []byte) (mismatch bool) {
	slot, ok := p.cobToSlot[cobId]
	if !ok {
		return false
	}
	obj := p.slots[slot]
	if !obj.Valid {
		return false
	}
	expected := (obj.TotalBits + 7) / 8
	if len(data) != expected {
		return true
	}
	obj.CachedData = append(obj.CachedData[:0], data...)
	return false
}

// EmitTPDOs runs the TPDO emission pass for slots 4..7: for each valid slot
// whose trigger predicate fires, the current object dictionary values are
// packed per the mapping bit-widths and transmitted.
func (p *Objects) EmitTPDOs(dictionary *od.ObjectDictionary, isSync bool, event Event, counter uint32, transmit func(canopen.Frame) error) error {
	for slot := firstTPDOSlot; slot < NumSlots; slot++ {
		obj := p.slots[slot]
		if !obj.Valid {
			continue
		}
		if !ShouldFire(isSync, event, obj.TransmissionType, obj.EventTimer, counter) {
			continue
		}

		fields := make([]canopen.PackField, len(obj.Mappings))
		for i, m := range obj.Mappings {
			var value uint64
			if v, err := dictionary.GetVariable(m.Index, m.SubIndex); err == nil {
				value = od.DecodeUint64(v.Value())
			}
			fields[i] = canopen.PackField{Value: value, Bits: m.Bits}
		}
		payload := canopen.PackData(fields)
		frame, err := canopen.CreateFrame(obj.CobId, payload)
		if err != nil {
			p.logger.WithField("slot", slot).WithError(err).Warn("failed to build TPDO frame")
			continue
		}
		if err := transmit(frame); err != nil {
			return err
		}
	}
	return nil
}
