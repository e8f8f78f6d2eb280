package canopen

// Frame is a standard (11-bit) CAN 2.0A frame.
type Frame struct {
	CobId uint32
	DLC   uint8
	Data  [8]byte
}

// COB-ID function code bases, per CiA 301's predefined connection set.
const (
	FunctionNMT       uint32 = 0x000
	FunctionSYNC      uint32 = 0x080
	FunctionEMCY      uint32 = 0x080
	FunctionTPDO1     uint32 = 0x180
	FunctionRPDO1     uint32 = 0x200
	FunctionTPDO2     uint32 = 0x280
	FunctionRPDO2     uint32 = 0x300
	FunctionTPDO3     uint32 = 0x380
	FunctionRPDO3     uint32 = 0x400
	FunctionTPDO4     uint32 = 0x480
	FunctionRPDO4     uint32 = 0x500
	FunctionSDOTx     uint32 = 0x580 // server -> client (response)
	FunctionSDORx     uint32 = 0x600 // client -> server (request)
	FunctionHeartbeat uint32 = 0x700
	FunctionMask      uint32 = 0xFF80
	MaxStandardCobId  uint32 = 0x7FF
)

// CreateFrame builds a frame carrying at most 8 bytes of data as-is.
// DLC is set to len(data). Returns ErrInvalidStandardId if cobId is out of
// the 11-bit range, or ErrFrameCreationFailed if data does not fit.
func CreateFrame(cobId uint32, data []byte) (Frame, error) {
	if cobId > MaxStandardCobId {
		return Frame{}, ErrInvalidStandardId
	}
	if len(data) > 8 {
		return Frame{}, ErrFrameCreationFailed
	}
	f := Frame{CobId: cobId, DLC: uint8(len(data))}
	copy(f.Data[:], data)
	return f, nil
}

// CreateFrameWithPadding is like CreateFrame but always produces an 8-byte
// payload: longer data is truncated, shorter data is zero-padded. DLC is
// always 8; SDO and EMCY frames are built this way, PDO frames are not.
func CreateFrameWithPadding(cobId uint32, data []byte) (Frame, error) {
	if cobId > MaxStandardCobId {
		return Frame{}, ErrInvalidStandardId
	}
	f := Frame{CobId: cobId, DLC: 8}
	n := len(data)
	if n > 8 {
		n = 8
	}
	copy(f.Data[:], data[:n])
	return f, nil
}
