package emergency

import (
	"testing"

	"github.com/canopenio/gocanopen/pkg/od"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildEmergencyDictionary() *od.ObjectDictionary {
	d := od.NewObjectDictionary(0x05, nil)
	d.InstallVariable(od.NewVariable("ErrorRegister", od.IndexErrorRegister, 0, od.Unsigned8, od.AccessType{Readable: true, Writable: true}, false, []byte{0}))

	errField := od.NewRecord(od.IndexPredefinedErrorField, "Pre-defined Error Field")
	errField.Add(od.NewVariable("NumberOfErrors", od.IndexPredefinedErrorField, 0, od.Unsigned8, od.AccessType{Readable: true, Writable: true}, false, []byte{0}))
	for sub := uint8(1); sub <= 4; sub++ {
		errField.Add(od.NewVariable("StandardErrorField", od.IndexPredefinedErrorField, sub, od.Unsigned32, od.AccessType{Readable: true, Writable: true}, false, []byte{0, 0, 0, 0}))
	}
	d.InstallRecord(errField)

	d.Snapshot()
	return d
}

func TestTriggerEmitsFaultThenResetFrame(t *testing.T) {
	d := buildEmergencyDictionary()
	m := NewManager(d, 0x05, nil)

	frames := m.Trigger(ErrPdoNotProcessed, RegCommunication, [5]byte{0xAA, 0, 0, 0, 0})
	require.Len(t, frames, 2)

	fault := frames[0]
	assert.Equal(t, uint32(0x85), fault.CobId)
	assert.Equal(t, byte(0x10), fault.Data[0])
	assert.Equal(t, byte(0x82), fault.Data[1])
	assert.Equal(t, byte(RegCommunication), fault.Data[2])
	assert.Equal(t, byte(0xAA), fault.Data[3])

	reset := frames[1]
	assert.Equal(t, uint32(0x85), reset.CobId)
	assert.Equal(t, byte(0), reset.Data[0])
	assert.Equal(t, byte(0), reset.Data[1])
	assert.Equal(t, byte(0), reset.Data[2])
	assert.Equal(t, byte(0xAA), reset.Data[3])
}

func TestTriggerUpdatesPredefinedErrorFieldAndRegister(t *testing.T) {
	d := buildEmergencyDictionary()
	m := NewManager(d, 0x05, nil)

	m.Trigger(ErrPdoNotProcessed, RegCommunication, [5]byte{})

	countVar, err := d.GetVariable(od.IndexPredefinedErrorField, 0)
	require.NoError(t, err)
	assert.Equal(t, uint8(1), countVar.Uint8())

	entryVar, err := d.GetVariable(od.IndexPredefinedErrorField, 1)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x8210), uint16(entryVar.Uint32()))

	regVar, err := d.GetVariable(od.IndexErrorRegister, 0)
	require.NoError(t, err)
	assert.Equal(t, RegCommunication, regVar.Uint8())
}

func TestTriggerAppendsHistory(t *testing.T) {
	d := buildEmergencyDictionary()
	m := NewManager(d, 0x05, nil)

	m.Trigger(ErrPdoNotProcessed, RegCommunication, [5]byte{})
	m.Trigger(ErrGeneric, RegGeneric, [5]byte{})

	history := m.History()
	require.Len(t, history, 2)
	assert.Equal(t, ErrPdoNotProcessed, history[0].Code)
	assert.Equal(t, ErrGeneric, history[1].Code)
}

func TestTriggerCapsErrorFieldCountAtDeclaredDepth(t *testing.T) {
	d := buildEmergencyDictionary()
	m := NewManager(d, 0x05, nil)

	for i := 0; i < 10; i++ {
		m.Trigger(ErrGeneric, RegGeneric, [5]byte{})
	}

	countVar, err := d.GetVariable(od.IndexPredefinedErrorField, 0)
	require.NoError(t, err)
	assert.Equal(t, uint8(4), countVar.Uint8())
}
