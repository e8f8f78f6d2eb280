// Package can defines the transport contract a Node is driven through, plus
// a virtual loopback bus for testing and a brutella/can adapter for real
// interfaces.
package can

import (
	canopen "github.com/canopenio/gocanopen"
)

// ErrWouldBlock is returned by Transport.Receive when no frame is currently
// available.
var ErrWouldBlock = canopen.ErrWouldBlock

// Transport is the CAN bus contract a Node is driven through. Receive must
// never block: it returns ErrWouldBlock rather than waiting for a frame.
// Transmit is synchronous and must serialise concurrent callers itself if
// the underlying medium requires it; the Node itself only ever calls it
// from a single goroutine.
type Transport interface {
	Receive() (canopen.Frame, error)
	Transmit(frame canopen.Frame) error
}
