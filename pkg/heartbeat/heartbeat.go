// Package heartbeat implements the CANopen heartbeat producer. The consumer
// side (monitoring a remote node's heartbeat) is a master-side concern and
// is out of scope for this slave node.
package heartbeat

import (
	canopen "github.com/canopenio/gocanopen"
	"github.com/sirupsen/logrus"
)

// StateCode is the single-byte heartbeat payload for each NMT state, per
// the CiA 301 NMT state encoding.
type StateCode uint8

const (
	StateInit           StateCode = 0
	StateStopped        StateCode = 4
	StateOperational    StateCode = 5
	StatePreOperational StateCode = 127
)

// Producer emits a single-byte heartbeat frame on COB-ID 0x700+node_id
// every periodTicks ticks of event_timer_callback.
type Producer struct {
	logger *logrus.Entry
	nodeId uint8

	periodTicks uint16
	ticks       uint32
}

// NewProducer builds a heartbeat producer for nodeId with the given period
// in ticks of the host's event timer (0 disables production).
func NewProducer(nodeId uint8, periodTicks uint16, logger *logrus.Logger) *Producer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Producer{
		logger:      logger.WithField("service", "heartbeat"),
		nodeId:      nodeId,
		periodTicks: periodTicks,
	}
}

// CobId is the COB-ID this producer transmits on.
func (p *Producer) CobId() uint32 { return canopen.FunctionHeartbeat + uint32(p.nodeId) }

// Heartbeats returns the number of event_timer_callback ticks observed
// since construction or the last Reset or SetPeriod.
func (p *Producer) Heartbeats() uint32 { return p.ticks }

// Reset zeroes the tick counter, as happens on NMT NodeStart.
func (p *Producer) Reset() { p.ticks = 0 }

// SetPeriod updates the production interval (0x1017 write).
func (p *Producer) SetPeriod(periodTicks uint16) {
	p.periodTicks = periodTicks
	p.ticks = 0
}

// Tick advances the producer's counter by one event_timer_callback
// invocation and returns the heartbeat frame to transmit, if this tick
// falls on the production boundary.
func (p *Producer) Tick(state StateCode) (frame canopen.Frame, fire bool) {
	p.ticks++
	if p.periodTicks == 0 {
		return canopen.Frame{}, false
	}
	if p.ticks%uint32(p.periodTicks) != 0 {
		return canopen.Frame{}, false
	}
	f, _ := canopen.CreateFrame(p.CobId(), []byte{byte(state)})
	p.logger.WithField("state", state).Debug("heartbeat")
	return f, true
}
