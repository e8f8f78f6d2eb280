package pdo

import (
	"github.com/canopenio/gocanopen/pkg/od"
)

// LoadFromOD derives all 8 slots from whatever communication/mapping
// parameters are currently present in dictionary. Called at node
// construction, after EDS ingestion, and again after every NMT reset.
func (p *Objects) LoadFromOD(dictionary *od.ObjectDictionary) error {
	for slot := 0; slot < NumSlots; slot++ {
		if err := p.reload(dictionary, slot); err != nil {
			return err
		}
	}
	return nil
}

// Update re-derives the slot addressed by index after a successful SDO
// write into its communication or mapping parameter range.
func (p *Objects) Update(dictionary *od.ObjectDictionary, index uint16) error {
	slot, ok := SlotForIndex(index)
	if !ok {
		return nil
	}
	return p.reload(dictionary, slot)
}

func (p *Objects) reload(dictionary *od.ObjectDictionary, slot int) error {
	obj := p.slots[slot]
	oldCobId, oldValid := obj.CobId, obj.Valid

	commIndex := commIndexForSlot(slot)
	if cobVar, err := dictionary.GetVariable(commIndex, 1); err == nil {
		raw := cobVar.Uint32()
		obj.Valid = raw&0x80000000 == 0
		obj.CobId = raw & 0x7FF
	} else {
		obj.Valid = false
	}
	if ttVar, err := dictionary.GetVariable(commIndex, 2); err == nil {
		obj.TransmissionType = ttVar.Uint8()
	}
	if itVar, err := dictionary.GetVariable(commIndex, 3); err == nil {
		obj.InhibitTime = itVar.Uint16()
	}
	if etVar, err := dictionary.GetVariable(commIndex, 5); err == nil {
		obj.EventTimer = etVar.Uint16()
	}

	mapIndex := mapIndexForSlot(slot)
	countVar, err := dictionary.GetVariable(mapIndex, 0)
	if err != nil {
		obj.Mappings = nil
		obj.TotalBits = 0
	} else {
		count := countVar.Uint8()
		mappings := make([]Mapping, 0, count)
		totalBits := 0
		for sub := uint8(1); sub <= count; sub++ {
			entryVar, err := dictionary.GetVariable(mapIndex, sub)
			if err != nil {
				continue
			}
			raw := entryVar.Uint32()
			m := Mapping{
				Index:    uint16(raw >> 16),
				SubIndex: uint8(raw >> 8),
				Bits:     uint8(raw),
			}
			mappings = append(mappings, m)
			totalBits += int(m.Bits)
		}
		if totalBits > 64 {
			obj.Valid = false
			p.syncCobIndex(slot, oldCobId, oldValid)
			return od.ErrExceedPDOSize
		}
		obj.Mappings = mappings
		obj.TotalBits = totalBits
	}

	p.syncCobIndex(slot, oldCobId, oldValid)
	return nil
}

// syncCobIndex maintains invariant 4: cob_to_index[cob_id] == slot exactly
// when the slot is valid.
func (p *Objects) syncCobIndex(slot int, oldCobId uint32, oldValid bool) {
	if oldValid {
		delete(p.cobToSlot, oldCobId)
	}
	obj := p.slots[slot]
	if obj.Valid {
		p.cobToSlot[obj.CobId] = slot
	}
}
