// Package pdo implements the CANopen PDO engine: RPDO caching with commit
// to the object dictionary on trigger, and TPDO assembly from the object
// dictionary on trigger.
package pdo

import (
	canopen "github.com/canopenio/gocanopen"
	"github.com/canopenio/gocanopen/pkg/od"
	"github.com/sirupsen/logrus"
)

// NumSlots is the fixed slot count: RPDO0..3 at 0..3, TPDO0..3 at 4..7.
const NumSlots = 8

const firstTPDOSlot = 4

// Event classifies what triggered a non-SYNC dispatch pass.
type Event uint8

const (
	EventNone Event = iota
	EventTimer
	EventNodeStart
)

// Mapping is one (index, sub_index, bit_length) triple from a PDO mapping
// table.
type Mapping struct {
	Index    uint16
	SubIndex uint8
	Bits     uint8
}

// Object is a single PDO slot's live configuration.
type Object struct {
	Slot             int
	IsRPDO           bool
	Valid            bool
	CobId            uint32
	TransmissionType uint8
	InhibitTime      uint16
	EventTimer       uint16
	Mappings         []Mapping
	TotalBits        int
	CachedData       []byte
}

// Objects is the 8-slot PDO table plus its cob_id -> slot index.
type Objects struct {
	logger    *logrus.Entry
	slots     [NumSlots]*Object
	cobToSlot map[uint32]int
}

// NewObjects builds an empty PDO table.
func NewObjects(logger *logrus.Logger) *Objects {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	p := &Objects{
		logger:    logger.WithField("service", "pdo"),
		cobToSlot: map[uint32]int{},
	}
	for i := range p.slots {
		p.slots[i] = &Object{Slot: i, IsRPDO: i < firstTPDOSlot}
	}
	return p
}

// Slot returns the PDO object at slot i (0..3 RPDO, 4..7 TPDO), or nil.
func (p *Objects) Slot(i int) *Object {
	if i < 0 || i >= NumSlots {
		return nil
	}
	return p.slots[i]
}

// SlotForIndex derives the slot index from a communication or mapping
// parameter index, active only across 0x1400..0x1BFF.
func SlotForIndex(index uint16) (slot int, ok bool) {
	if index < od.IndexRPDOCommunicationStart || index > od.IndexTPDOMappingEnd {
		return 0, false
	}
	n := int(index & 0xF)
	if index >= od.IndexTPDOCommunicationStart {
		n += firstTPDOSlot
	}
	if n >= NumSlots {
		return 0, false
	}
	return n, true
}

// ShouldFire is the PDO trigger predicate.
func ShouldFire(isSync bool, event Event, transmissionType uint8, eventTimer uint16, counter uint32) bool {
	if isSync {
		return transmissionType != 0 && transmissionType <= 240 && counter%uint32(transmissionType) == 0
	}
	if event == EventNodeStart {
		return true
	}
	if transmissionType != 0xFE && transmissionType != 0xFF {
		return false
	}
	return eventTimer > 0 && counter%uint32(eventTimer) == 0
}

func commIndexForSlot(slot int) uint16 {
	if slot < firstTPDOSlot {
		return od.IndexRPDOCommunicationStart + uint16(slot)
	}
	return od.IndexTPDOCommunicationStart + uint16(slot-firstTPDOSlot)
}

func mapIndexForSlot(slot int) uint16 {
	if slot < firstTPDOSlot {
		return od.IndexRPDOMappingStart + uint16(slot)
	}
	return od.IndexTPDOMappingStart + uint16(slot-firstTPDOSlot)
}
