package od

// ObjectType tags the kind of OD entry. CiA 301 EDS "ObjectType" values.
type ObjectType uint8

const (
	ObjectTypeVariable ObjectType = 7
	ObjectTypeArray    ObjectType = 8
	ObjectTypeRecord   ObjectType = 9
)

// Standard CANopen object dictionary index ranges used by the SDO/PDO
// engines.
const (
	IndexErrorRegister         uint16 = 0x1001
	IndexPredefinedErrorField  uint16 = 0x1003
	IndexProducerHeartbeatTime uint16 = 0x1017

	IndexRPDOCommunicationStart uint16 = 0x1400
	IndexRPDOCommunicationEnd   uint16 = 0x15FF
	IndexRPDOMappingStart       uint16 = 0x1600
	IndexRPDOMappingEnd         uint16 = 0x17FF
	IndexTPDOCommunicationStart uint16 = 0x1800
	IndexTPDOCommunicationEnd   uint16 = 0x19FF
	IndexTPDOMappingStart       uint16 = 0x1A00
	IndexTPDOMappingEnd         uint16 = 0x1BFF

	IndexCommunicationProfileStart uint16 = 0x1000
	IndexCommunicationProfileEnd   uint16 = 0x1FFF
	IndexDeviceProfileEnd          uint16 = 0x9FFF
)

// MaxMappedObjects is the maximum number of mapping entries a single PDO may
// carry.
const MaxMappedObjects = 64

// MaxArraySubIndex bounds the CiA 306 compact-sub-object auto-materialisation
// range: sub-indices 2..254 may be synthesised from the sub-index 1
// prototype; 0, 1 and 255 never are.
const MaxArraySubIndex = 254
