package sdo

import (
	"testing"

	canopen "github.com/canopenio/gocanopen"
	"github.com/canopenio/gocanopen/pkg/od"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildMappingDictionary() *od.ObjectDictionary {
	d := od.NewObjectDictionary(0x02, nil)
	d.InstallVariable(od.NewVariable("AppVar", 0x6000, 0, od.Unsigned8, od.AccessType{Readable: true, Writable: true}, true, []byte{0}))
	d.InstallVariable(od.NewVariable("NonMappable", 0x6001, 0, od.Unsigned8, od.AccessType{Readable: true, Writable: true}, false, []byte{0}))

	mapRecord := od.NewRecord(od.IndexTPDOMappingStart, "TPDO Mapping")
	mapRecord.Add(od.NewVariable("NrOfMapped", od.IndexTPDOMappingStart, 0, od.Unsigned8, od.AccessType{Readable: true, Writable: true}, false, []byte{0}))
	mapRecord.Add(od.NewVariable("Mapped1", od.IndexTPDOMappingStart, 1, od.Unsigned32, od.AccessType{Readable: true, Writable: true}, false, []byte{0, 0, 0, 0}))
	d.InstallRecord(mapRecord)

	comm := od.NewRecord(od.IndexTPDOCommunicationStart, "TPDO Communication")
	comm.Add(od.NewVariable("CobId", od.IndexTPDOCommunicationStart, 1, od.Unsigned32, od.AccessType{Readable: true, Writable: true}, false, od.EncodeUint64(0x180, 4)))
	d.InstallRecord(comm)

	d.Snapshot()
	return d
}

func mappingEntryBytes(index uint16, subIndex uint8, bits uint8) []byte {
	return []byte{bits, subIndex, byte(index), byte(index >> 8)}
}

func TestSetValueWithCheckRejectsNonMappableVariable(t *testing.T) {
	d := buildMappingDictionary()
	s := NewServer(d, 0x02, nil)

	err := s.setValueWithCheck(od.IndexTPDOMappingStart, 1, mappingEntryBytes(0x6001, 0, 8))
	require.Error(t, err)
	assert.Equal(t, AbortNoMap, mapODRToAbort(err))
}

func TestSetValueWithCheckAcceptsMappableVariable(t *testing.T) {
	d := buildMappingDictionary()
	s := NewServer(d, 0x02, nil)

	err := s.setValueWithCheck(od.IndexTPDOMappingStart, 1, mappingEntryBytes(0x6000, 0, 8))
	require.NoError(t, err)

	v, err := d.GetVariable(od.IndexTPDOMappingStart, 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x60000008), v.Uint32())
}

func TestSetValueWithCheckInvokesPDOHookOnCommunicationWrite(t *testing.T) {
	d := buildMappingDictionary()
	s := NewServer(d, 0x02, nil)

	var seen uint16
	s.OnPDOConfigChanged = func(index uint16) error { seen = index; return nil }

	err := s.setValueWithCheck(od.IndexTPDOCommunicationStart, 1, od.EncodeUint64(0x181, 4))
	require.NoError(t, err)
	assert.Equal(t, od.IndexTPDOCommunicationStart, seen)
}

func TestSetValueWithCheckInvokesHeartbeatHook(t *testing.T) {
	d := buildMappingDictionary()
	d.InstallVariable(od.NewVariable("ProducerHeartbeatTime", od.IndexProducerHeartbeatTime, 0, od.Unsigned16, od.AccessType{Readable: true, Writable: true}, false, []byte{0, 0}))
	d.Snapshot()
	s := NewServer(d, 0x02, nil)

	var seen uint16
	s.OnHeartbeatPeriodChanged = func(periodMs uint16) { seen = periodMs }

	err := s.setValueWithCheck(od.IndexProducerHeartbeatTime, 0, []byte{0xE8, 0x03})
	require.NoError(t, err)
	assert.Equal(t, uint16(1000), seen)
}

func TestAbortFrameResetsServerState(t *testing.T) {
	d := buildMappingDictionary()
	s := NewServer(d, 0x02, nil)
	s.state = StateSegmentUpload

	resp := s.HandleFrame(canopen.Frame{CobId: 0x602, DLC: 8, Data: [8]byte{0x80, 0, 0, 0, 0, 0, 0, 0}})
	assert.Nil(t, resp)
	assert.Equal(t, StateNormal, s.state)
}
