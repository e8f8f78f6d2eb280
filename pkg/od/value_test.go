package od

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeFromStringIntegerKinds(t *testing.T) {
	b, err := EncodeFromString("0x64", Unsigned16)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x64), DecodeUint64(b))

	b, err = EncodeFromString("1540", Unsigned32)
	require.NoError(t, err)
	assert.Equal(t, uint64(1540), DecodeUint64(b))
}

func TestEncodeFromStringUnparseableIntegerDefaultsToZero(t *testing.T) {
	b, err := EncodeFromString("not-a-number", Unsigned8)
	require.NoError(t, err)
	assert.Equal(t, []byte{0}, b)
}

func TestEncodeFromStringEmptyDefaultsToZero(t *testing.T) {
	b, err := EncodeFromString("", Unsigned32)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), DecodeUint64(b))
}

func TestEncodeFromStringRealFailsOnGarbage(t *testing.T) {
	_, err := EncodeFromString("not-a-float", Real32)
	require.Error(t, err)
	var target *ErrStringToValueFailed
	assert.ErrorAs(t, err, &target)
}

func TestEncodeFromStringVisibleString(t *testing.T) {
	b, err := EncodeFromString("hello", VisibleString)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))
}

func TestCheckSize(t *testing.T) {
	assert.NoError(t, CheckSize(4, Unsigned32))
	assert.Equal(t, ErrDataTypeMismatchLengthTooLow, CheckSize(2, Unsigned32))
	assert.Equal(t, ErrDataTypeMismatchLengthTooHigh, CheckSize(8, Unsigned32))
	assert.NoError(t, CheckSize(0, VisibleString))
}

func TestDecodeEncodeUint64RoundTrip(t *testing.T) {
	b := EncodeUint64(0x1122334455667788, 8)
	assert.Equal(t, uint64(0x1122334455667788), DecodeUint64(b))
}

func TestDecodeToString(t *testing.T) {
	s, err := DecodeToString(EncodeUint64(42, 1), Unsigned8)
	require.NoError(t, err)
	assert.Equal(t, "42", s)

	s, err = DecodeToString([]byte{0xFE}, Integer8)
	require.NoError(t, err)
	assert.Equal(t, "-2", s)
}
