package can

import (
	"github.com/brutella/can"

	canopen "github.com/canopenio/gocanopen"
)

// FromBrutella converts a brutella/can wire frame into this module's Frame.
func FromBrutella(frame can.Frame) canopen.Frame {
	f := canopen.Frame{CobId: frame.ID, DLC: frame.Length}
	f.Data = frame.Data
	return f
}

// ToBrutella converts a Frame into the wire type brutella/can expects to
// Publish.
func ToBrutella(frame canopen.Frame) can.Frame {
	return can.Frame{ID: frame.CobId, Length: frame.DLC, Data: frame.Data}
}

// SocketcanTransport adapts a brutella/can socketcan bus to Transport. Frames
// received off the wire are buffered non-blockingly so Receive never waits.
type SocketcanTransport struct {
	bus   *can.Bus
	queue chan canopen.Frame
}

// NewSocketcanTransport opens a brutella/can bus on the named interface
// (e.g. "can0") and starts publishing/receiving.
func NewSocketcanTransport(interfaceName string) (*SocketcanTransport, error) {
	bus, err := can.NewBusForInterfaceWithName(interfaceName)
	if err != nil {
		return nil, err
	}
	t := &SocketcanTransport{bus: bus, queue: make(chan canopen.Frame, 256)}
	bus.Subscribe(t)
	go bus.ConnectAndPublish()
	return t, nil
}

// Handle implements brutella/can's frame handler interface.
func (t *SocketcanTransport) Handle(frame can.Frame) {
	select {
	case t.queue <- FromBrutella(frame):
	default:
	}
}

// Transmit publishes frame on the socketcan interface.
func (t *SocketcanTransport) Transmit(frame canopen.Frame) error {
	return t.bus.Publish(ToBrutella(frame))
}

// Receive returns the next received frame, or ErrWouldBlock if none is
// queued.
func (t *SocketcanTransport) Receive() (canopen.Frame, error) {
	select {
	case f := <-t.queue:
		return f, nil
	default:
		return canopen.Frame{}, ErrWouldBlock
	}
}
