package nmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProcessIgnoresOtherNodeId(t *testing.T) {
	m := NewStateMachine(0x05, nil)
	event := m.Process(uint8(CommandEnterOperational), 0x06)
	assert.Equal(t, EventNone, event)
	assert.Equal(t, StateInit, m.State())
}

func TestProcessIgnoresNodeIdZero(t *testing.T) {
	m := NewStateMachine(0x05, nil)
	event := m.Process(uint8(CommandEnterOperational), 0)
	assert.Equal(t, EventNone, event)
	assert.Equal(t, StateInit, m.State())
}

func TestEnterOperationalFiresNodeStart(t *testing.T) {
	m := NewStateMachine(0x05, nil)
	event := m.Process(uint8(CommandEnterOperational), 0x05)
	assert.Equal(t, EventNodeStart, event)
	assert.Equal(t, StateOperational, m.State())
}

func TestEnterStoppedRefusedWhileInit(t *testing.T) {
	m := NewStateMachine(0x05, nil)
	m.Process(uint8(CommandEnterStopped), 0x05)
	assert.Equal(t, StateInit, m.State())
}

func TestEnterStoppedAllowedOnceOperational(t *testing.T) {
	m := NewStateMachine(0x05, nil)
	m.Process(uint8(CommandEnterOperational), 0x05)
	m.Process(uint8(CommandEnterStopped), 0x05)
	assert.Equal(t, StateStopped, m.State())
}

func TestEnterPreOperational(t *testing.T) {
	m := NewStateMachine(0x05, nil)
	event := m.Process(uint8(CommandEnterPreOperational), 0x05)
	assert.Equal(t, EventNone, event)
	assert.Equal(t, StatePreOperational, m.State())
}

func TestResetNodeReturnsToInitAndSignalsFullReset(t *testing.T) {
	m := NewStateMachine(0x05, nil)
	m.Process(uint8(CommandEnterOperational), 0x05)
	event := m.Process(uint8(CommandResetNode), 0x05)
	assert.Equal(t, EventResetFull, event)
	assert.Equal(t, StateInit, m.State())
}

func TestResetCommunicationReturnsToInitAndSignalsCommReset(t *testing.T) {
	m := NewStateMachine(0x05, nil)
	m.Process(uint8(CommandEnterOperational), 0x05)
	event := m.Process(uint8(CommandResetCommunication), 0x05)
	assert.Equal(t, EventResetCommunication, event)
	assert.Equal(t, StateInit, m.State())
}

func TestUnknownCommandIsIgnored(t *testing.T) {
	m := NewStateMachine(0x05, nil)
	event := m.Process(0xFF, 0x05)
	assert.Equal(t, EventNone, event)
	assert.Equal(t, StateInit, m.State())
}

func TestHeartbeatCodes(t *testing.T) {
	assert.Equal(t, uint8(0), StateInit.HeartbeatCode())
	assert.Equal(t, uint8(127), StatePreOperational.HeartbeatCode())
	assert.Equal(t, uint8(5), StateOperational.HeartbeatCode())
	assert.Equal(t, uint8(4), StateStopped.HeartbeatCode())
}
