package od

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testEDS = `
[1000]
ParameterName=Device Type
ObjectType=0x7
DataType=0x07
AccessType=ro
PDOMapping=0
DefaultValue=0

[1001]
ParameterName=Error Register
ObjectType=0x7
DataType=0x05
AccessType=ro
PDOMapping=1
DefaultValue=0

[1400]
ParameterName=RPDO 1 Communication Parameter
ObjectType=0x9
SubNumber=2

[1400sub0]
ParameterName=Highest sub-index supported
DataType=0x05
AccessType=ro
DefaultValue=2

[1400sub1]
ParameterName=COB-ID used by RPDO
DataType=0x07
AccessType=rw
DefaultValue=$NODEID+0x200

[2100]
ParameterName=Test Array
ObjectType=0x8
CompactSubObj=1
DataType=0x06
AccessType=rw
PDOMapping=1
DefaultValue=0
`

func TestParseEDSBuildsVariableAndArray(t *testing.T) {
	d, err := ParseEDS(strings.NewReader(testEDS), 0x05, nil)
	require.NoError(t, err)

	v, err := d.GetVariable(0x1000, 0)
	require.NoError(t, err)
	assert.Equal(t, Unsigned32, v.DataType)

	v, err = d.GetVariable(0x1001, 0)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), v.Uint8())

	sub1, err := d.GetVariable(0x1400, 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x205), sub1.Uint32())

	obj := d.Index(0x2100)
	require.NotNil(t, obj)
	require.NotNil(t, obj.Array)
	assert.Equal(t, Unsigned16, obj.Array.Prototype.DataType)
}

func TestParseEDSUnknownObjectTypeIsIgnored(t *testing.T) {
	const eds = `
[3000]
ParameterName=Weird
ObjectType=0x99
`
	d, err := ParseEDS(strings.NewReader(eds), 1, nil)
	require.NoError(t, err)
	assert.Nil(t, d.Index(0x3000))
}
