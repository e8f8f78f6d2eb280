package can

import (
	"sync"

	canopen "github.com/canopenio/gocanopen"
)

// Bus is an in-process broadcast medium: every frame transmitted by one
// Endpoint is queued for every other Endpoint attached to the same Bus.
// Adequate for driving a Node under test or wiring two in-process nodes
// together without a real interface.
type Bus struct {
	mu        sync.Mutex
	endpoints []*Endpoint
}

// NewBus creates an empty virtual bus.
func NewBus() *Bus {
	return &Bus{}
}

// Endpoint attaches a new Transport to the bus. When receiveOwn is true,
// frames this endpoint transmits are also queued back to itself.
func (b *Bus) Endpoint(receiveOwn bool) *Endpoint {
	e := &Endpoint{bus: b, receiveOwn: receiveOwn, queue: make(chan canopen.Frame, 256)}
	b.mu.Lock()
	b.endpoints = append(b.endpoints, e)
	b.mu.Unlock()
	return e
}

func (b *Bus) broadcast(from *Endpoint, frame canopen.Frame) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, e := range b.endpoints {
		if e == from && !from.receiveOwn {
			continue
		}
		select {
		case e.queue <- frame:
		default:
			// Receiver queue full: drop rather than suspend the sender.
		}
	}
}

// Endpoint is one node's view of a Bus; it implements Transport.
type Endpoint struct {
	bus        *Bus
	receiveOwn bool
	queue      chan canopen.Frame
}

// Transmit broadcasts frame to every other endpoint on the bus, and back to
// this one when it was created with receiveOwn.
func (e *Endpoint) Transmit(frame canopen.Frame) error {
	e.bus.broadcast(e, frame)
	return nil
}

// Receive returns the next queued frame, or ErrWouldBlock if none is
// pending.
func (e *Endpoint) Receive() (canopen.Frame, error) {
	select {
	case f := <-e.queue:
		return f, nil
	default:
		return canopen.Frame{}, ErrWouldBlock
	}
}
