package od

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestDictionary() *ObjectDictionary {
	d := NewObjectDictionary(0x10, nil)
	d.addObject(&Object{Variable: NewVariable("ErrorRegister", IndexErrorRegister, 0, Unsigned8, AccessType{Readable: true}, false, []byte{0})})

	numEntries := NewVariable("NrOfObjects", 0x2100, 0, Unsigned8, AccessType{Readable: true}, false, []byte{1})
	proto := NewVariable("Entry", 0x2100, 1, Unsigned16, AccessType{Readable: true, Writable: true}, true, []byte{0, 0})
	d.addObject(&Object{Array: NewArray(0x2100, "TestArray", numEntries, proto)})

	d.Snapshot()
	return d
}

func TestGetVariableRespectsReadAccess(t *testing.T) {
	d := buildTestDictionary()
	v, err := d.GetVariable(IndexErrorRegister, 0)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), v.Uint8())

	_, err = d.GetVariable(0x9999, 0)
	assert.Equal(t, ErrObjectDoesNotExist, err)
}

func TestSetValueChecksAccessAndSize(t *testing.T) {
	d := buildTestDictionary()
	err := d.SetValue(0x2100, 1, []byte{1, 2}, false)
	require.NoError(t, err)

	err = d.SetValue(IndexErrorRegister, 0, []byte{1}, false)
	assert.Equal(t, ErrAttemptToWriteReadOnlyObject, err)

	err = d.SetValue(0x2100, 1, []byte{1}, false)
	assert.Equal(t, ErrDataTypeMismatchLengthTooLow, err)
}

func TestSetValueMaterialisesArraySubEntry(t *testing.T) {
	d := buildTestDictionary()
	err := d.SetValue(0x2100, 5, []byte{9, 9}, false)
	require.NoError(t, err)
	v, err := d.GetVariable(0x2100, 5)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0909), v.Uint16())
}

func TestSetValueWithFittingSizeIsSilentOnMissingEntry(t *testing.T) {
	d := buildTestDictionary()
	assert.NotPanics(t, func() {
		d.SetValueWithFittingSize(0x9999, 0, []byte{1})
	})
}

func TestSetValueWithFittingSizeWritesPrefix(t *testing.T) {
	d := buildTestDictionary()
	d.SetValueWithFittingSize(0x2100, 1, []byte{0xAB, 0xCD, 0xEF})
	v, _ := d.GetVariable(0x2100, 1)
	assert.Equal(t, uint16(0xCDAB), v.Uint16())
}

func TestResetRangeRestoresBackupAndDropsMaterialised(t *testing.T) {
	d := buildTestDictionary()
	require.NoError(t, d.SetValue(0x2100, 5, []byte{1, 1}, false))
	require.NoError(t, d.SetValue(0x2100, 1, []byte{7, 7}, false))

	d.ResetRange(0x2100, 0x2100)

	_, err := d.GetVariable(0x2100, 5)
	assert.Equal(t, ErrSubIndexDoesNotExist, err)

	v, err := d.GetVariable(0x2100, 1)
	require.NoError(t, err)
	assert.Equal(t, uint16(0), v.Uint16())
}

func TestResetCommunicationLeavesDeviceProfileUntouched(t *testing.T) {
	d := buildTestDictionary()
	d.addObject(&Object{Variable: NewVariable("AppVar", 0x6000, 0, Unsigned8, AccessType{Readable: true, Writable: true}, false, []byte{0})})
	d.Snapshot()
	require.NoError(t, d.SetValue(0x6000, 0, []byte{42}, false))

	d.ResetCommunication()

	v, err := d.GetVariable(0x6000, 0)
	require.NoError(t, err)
	assert.Equal(t, uint8(42), v.Uint8())
}
