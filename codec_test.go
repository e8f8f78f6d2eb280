package canopen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPackUnpackRoundTrip(t *testing.T) {
	fields := []PackField{
		{Value: 0xABCD, Bits: 12},
		{Value: 0x123456, Bits: 20},
		{Value: 0x0102, Bits: 9},
	}
	packed := PackData(fields)
	unpacked := UnpackData(packed, []uint8{12, 20, 9})

	for i, f := range fields {
		mask := uint64(1)<<f.Bits - 1
		assert.Equal(t, f.Value&mask, unpacked[i].Value)
		assert.Equal(t, f.Bits, unpacked[i].Bits)
	}
}

func TestPackDataLength(t *testing.T) {
	// 3 + 5 = 8 bits -> 1 byte
	packed := PackData([]PackField{{Value: 0x5, Bits: 3}, {Value: 0x11, Bits: 5}})
	assert.Len(t, packed, 1)

	// 1 + 7 = 8 bits still 1 byte, but 9 bits -> 2 bytes
	packed2 := PackData([]PackField{{Value: 1, Bits: 1}, {Value: 1, Bits: 8}})
	assert.Len(t, packed2, 2)
}

func TestParseNumber(t *testing.T) {
	assert.EqualValues(t, 1554, ParseNumber("1554"))
	assert.EqualValues(t, 0x600, ParseNumber("0x600"))
	assert.EqualValues(t, 0x600, ParseNumber("0X600"))
	assert.EqualValues(t, 0, ParseNumber("not-a-number"))
	assert.EqualValues(t, 0, ParseNumber(""))
}

func TestEvaluateExpressionWithNodeId(t *testing.T) {
	for nodeId := uint8(1); nodeId < 10; nodeId++ {
		got := EvaluateExpressionWithNodeId(nodeId, "$NODEID + 0x600")
		assert.Equal(t, ParseNumber(got), int64(nodeId)+0x600)
	}
	assert.Equal(t, "1540", EvaluateExpressionWithNodeId(2, "$NODEID + 0x600 + 2"))
}

func TestCreateFrame(t *testing.T) {
	_, err := CreateFrame(0x800, []byte{1})
	assert.ErrorIs(t, err, ErrInvalidStandardId)

	f, err := CreateFrame(0x600, []byte{1, 2, 3})
	assert.NoError(t, err)
	assert.EqualValues(t, 3, f.DLC)

	padded, err := CreateFrameWithPadding(0x600, []byte{1, 2, 3})
	assert.NoError(t, err)
	assert.EqualValues(t, 8, padded.DLC)
	assert.Equal(t, [8]byte{1, 2, 3, 0, 0, 0, 0, 0}, padded.Data)

	truncated, err := CreateFrameWithPadding(0x600, []byte{1, 2, 3, 4, 5, 6, 7, 8, 9})
	assert.NoError(t, err)
	assert.Equal(t, [8]byte{1, 2, 3, 4, 5, 6, 7, 8}, truncated.Data)
}
