// Package nmt implements the slave-side CANopen NMT state machine. It owns
// transitions only; the reset and PDO side effects a transition implies are
// reported back to the caller (pkg/node) rather than performed here,
// keeping this package free of an od/pdo dependency.
package nmt

import (
	"github.com/sirupsen/logrus"
)

// State is the node's NMT operating state.
type State uint8

const (
	StateInit           State = 0
	StateStopped        State = 4
	StateOperational    State = 5
	StatePreOperational State = 127
)

// HeartbeatCode returns the single-byte heartbeat payload for state, per
// the CiA 301 NMT state encoding.
func (s State) HeartbeatCode() uint8 { return uint8(s) }

func (s State) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StatePreOperational:
		return "PRE-OPERATIONAL"
	case StateOperational:
		return "OPERATIONAL"
	case StateStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// Command is an NMT command specifier byte.
type Command uint8

const (
	CommandEnterOperational    Command = 0x01
	CommandEnterStopped        Command = 0x02
	CommandEnterPreOperational Command = 0x80
	CommandResetNode           Command = 0x81
	CommandResetCommunication  Command = 0x82
)

// Event reports a side effect the caller must carry out after a
// transition: firing the NodeStart event, or resetting a range of the
// object dictionary.
type Event uint8

const (
	EventNone Event = iota
	EventNodeStart
	EventResetFull
	EventResetCommunication
)

// StateMachine is the per-node NMT transition table.
type StateMachine struct {
	logger *logrus.Entry
	nodeId uint8
	state  State
}

// NewStateMachine builds a state machine starting in Init, the boot state
// a node constructs into.
func NewStateMachine(nodeId uint8, logger *logrus.Logger) *StateMachine {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &StateMachine{
		logger: logger.WithField("service", "nmt"),
		nodeId: nodeId,
		state:  StateInit,
	}
}

// State returns the current operating state.
func (m *StateMachine) State() State { return m.state }

// Process handles one inbound NMT frame's (command_specifier,
// target_node_id) pair. The node only acts when targetNodeId is an exact
// match; anything else, or an unrecognised command_specifier, is silently
// ignored.
func (m *StateMachine) Process(cs uint8, targetNodeId uint8) Event {
	if targetNodeId != m.nodeId {
		return EventNone
	}

	switch Command(cs) {
	case CommandEnterOperational:
		m.setState(StateOperational)
		return EventNodeStart
	case CommandEnterStopped:
		if m.state != StateInit {
			m.setState(StateStopped)
		}
		return EventNone
	case CommandEnterPreOperational:
		m.setState(StatePreOperational)
		return EventNone
	case CommandResetNode:
		m.setState(StateInit)
		return EventResetFull
	case CommandResetCommunication:
		m.setState(StateInit)
		return EventResetCommunication
	default:
		return EventNone
	}
}

func (m *StateMachine) setState(newState State) {
	if newState == m.state {
		return
	}
	m.logger.WithFields(logrus.Fields{"previous": m.state, "new": newState}).Info("nmt state changed")
	m.state = newState
}
