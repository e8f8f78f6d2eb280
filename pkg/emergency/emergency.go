// Package emergency implements EMCY emission and the 0x1001/0x1003
// bookkeeping that goes with it.
package emergency

import (
	"encoding/binary"

	canopen "github.com/canopenio/gocanopen"
	"github.com/canopenio/gocanopen/pkg/od"
	"github.com/sirupsen/logrus"
)

// ErrorCode is a CiA 301 emergency error code. The table below is the
// CiA 301 standard error code set.
type ErrorCode uint16

const (
	ErrNoError          ErrorCode = 0x0000
	ErrGeneric          ErrorCode = 0x1000
	ErrCurrent          ErrorCode = 0x2000
	ErrVoltage          ErrorCode = 0x3000
	ErrTemperature      ErrorCode = 0x4000
	ErrHardware         ErrorCode = 0x5000
	ErrSoftwareDevice   ErrorCode = 0x6000
	ErrSoftwareInternal ErrorCode = 0x6100
	ErrSoftwareUser     ErrorCode = 0x6200
	ErrDataSet          ErrorCode = 0x6300
	ErrMonitoring       ErrorCode = 0x8000
	ErrCommunication    ErrorCode = 0x8100
	ErrProtocolError    ErrorCode = 0x8200
	ErrPdoNotProcessed  ErrorCode = 0x8210
	ErrPdoLengthExc     ErrorCode = 0x8220
	ErrExternalError    ErrorCode = 0x9000
	ErrDeviceSpecific   ErrorCode = 0xFF00
)

var errorCodeDescription = map[ErrorCode]string{
	ErrNoError:          "Reset or No Error",
	ErrGeneric:          "Generic Error",
	ErrCurrent:          "Current",
	ErrVoltage:          "Voltage",
	ErrTemperature:      "Temperature",
	ErrHardware:         "Device Hardware",
	ErrSoftwareDevice:   "Device Software",
	ErrSoftwareInternal: "Internal Software",
	ErrSoftwareUser:     "User Software",
	ErrDataSet:          "Data Set",
	ErrMonitoring:       "Monitoring",
	ErrCommunication:    "Communication",
	ErrProtocolError:    "Protocol Error",
	ErrPdoNotProcessed:  "PDO not processed due to length error",
	ErrPdoLengthExc:     "PDO length exceeded",
	ErrExternalError:    "External Error",
	ErrDeviceSpecific:   "Device specific",
}

func (e ErrorCode) String() string {
	if d, ok := errorCodeDescription[e]; ok {
		return d
	}
	return "unknown error code"
}

// ErrorRegister bits (CiA 301 object 0x1001).
const (
	RegGeneric       uint8 = 0x01
	RegCurrent       uint8 = 0x02
	RegVoltage       uint8 = 0x04
	RegTemperature   uint8 = 0x08
	RegCommunication uint8 = 0x10
	RegDevProfile    uint8 = 0x20
	RegManufacturer  uint8 = 0x80
)

// historyDepth bounds the in-memory ring of raised conditions kept purely
// for host introspection; it does not affect wire behaviour or 0x1003's
// own count/depth.
const historyDepth = 16

// Condition is one recorded emergency event.
type Condition struct {
	Code     ErrorCode
	Register uint8
	Data     [5]byte
}

// Manager emits EMCY frames and maintains 0x1001/0x1003.
type Manager struct {
	logger *logrus.Entry
	od     *od.ObjectDictionary
	nodeId uint8

	history []Condition
}

// NewManager builds an emergency manager bound to dictionary for nodeId.
func NewManager(dictionary *od.ObjectDictionary, nodeId uint8, logger *logrus.Logger) *Manager {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Manager{
		logger: logger.WithField("service", "emergency"),
		od:     dictionary,
		nodeId: nodeId,
	}
}

// CobId is the COB-ID this manager transmits EMCY frames on.
func (m *Manager) CobId() uint32 { return canopen.FunctionEMCY + uint32(m.nodeId) }

// Trigger emits the fault frame followed by the reset frame, in that
// order, and updates 0x1003/0x1001. The returned frames must be
// transmitted in order; a transmission failure is left to the caller to log
// (EMCY emission itself never aborts node processing).
func (m *Manager) Trigger(code ErrorCode, register uint8, data [5]byte) []canopen.Frame {
	fault := [8]byte{byte(code), byte(code >> 8), register}
	copy(fault[3:8], data[:])
	faultFrame, _ := canopen.CreateFrameWithPadding(m.CobId(), fault[:])

	m.recordHistory(code, register, data)
	m.recordErrorField(code)
	_ = m.od.SetValue(od.IndexErrorRegister, 0, []byte{register}, true)

	reset := [8]byte{0, 0, 0}
	copy(reset[3:8], data[:])
	resetFrame, _ := canopen.CreateFrameWithPadding(m.CobId(), reset[:])

	m.logger.WithFields(logrus.Fields{"code": code, "register": register}).Warn("emergency raised")
	return []canopen.Frame{faultFrame, resetFrame}
}

// recordErrorField writes the CiA 301 0x1003 pre-defined error field:
// sub0 is incremented and the new entry is pushed to subN.
func (m *Manager) recordErrorField(code ErrorCode) {
	countVar, err := m.od.GetVariable(od.IndexPredefinedErrorField, 0)
	if err != nil {
		return
	}
	count := countVar.Uint8()
	maxEntries := uint8(m.od.Index(od.IndexPredefinedErrorField).SubCount() - 1)
	if count < maxEntries {
		count++
	}
	_ = m.od.SetValue(od.IndexPredefinedErrorField, 0, []byte{count}, true)
	entry := make([]byte, 4)
	binary.LittleEndian.PutUint16(entry[0:2], uint16(code))
	_ = m.od.SetValue(od.IndexPredefinedErrorField, count, entry, true)
}

func (m *Manager) recordHistory(code ErrorCode, register uint8, data [5]byte) {
	m.history = append(m.history, Condition{Code: code, Register: register, Data: data})
	if len(m.history) > historyDepth {
		m.history = m.history[len(m.history)-historyDepth:]
	}
}

// History returns the most recent raised conditions, oldest first.
func (m *Manager) History() []Condition {
	out := make([]Condition, len(m.history))
	copy(out, m.history)
	return out
}
