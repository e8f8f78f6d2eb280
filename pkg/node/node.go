// Package node ties the object dictionary, SDO server, PDO engine, NMT
// state machine, emergency manager and heartbeat producer together into the
// single dispatcher a host application drives.
package node

import (
	"io"

	canopen "github.com/canopenio/gocanopen"
	gocan "github.com/canopenio/gocanopen/pkg/can"
	"github.com/canopenio/gocanopen/pkg/emergency"
	"github.com/canopenio/gocanopen/pkg/heartbeat"
	"github.com/canopenio/gocanopen/pkg/nmt"
	"github.com/canopenio/gocanopen/pkg/od"
	"github.com/canopenio/gocanopen/pkg/pdo"
	"github.com/canopenio/gocanopen/pkg/sdo"
	"github.com/sirupsen/logrus"
)

// Stats is a read-only snapshot of the node's running counters.
type Stats struct {
	SyncCount  uint32
	EventCount uint32
	ErrorCount uint8
	Heartbeats uint32
}

// Node is the CiA 301 slave built from an EDS, driven by a host main loop
// through ProcessOneFrame and EventTimerCallback.
type Node struct {
	logger    *logrus.Entry
	nodeId    uint8
	transport gocan.Transport

	od        *od.ObjectDictionary
	pdoTable  *pdo.Objects
	sdoServer *sdo.Server
	nmt       *nmt.StateMachine
	emcy      *emergency.Manager
	heartbeat *heartbeat.Producer

	syncCount  uint32
	eventCount uint32
	errorCount uint8
}

// New builds a node from an already-parsed object dictionary. The PDO table
// is derived from whatever communication/mapping parameters are present,
// and the heartbeat producer's period is seeded from 0x1017:0 (the same
// update rule a later SDO write to 0x1017 applies, run once up front for
// whatever value the EDS ships with).
func New(dictionary *od.ObjectDictionary, nodeId uint8, transport gocan.Transport, logger *logrus.Logger) (*Node, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	n := &Node{
		logger:    logger.WithField("service", "node"),
		nodeId:    nodeId,
		transport: transport,
		od:        dictionary,
		pdoTable:  pdo.NewObjects(logger),
		sdoServer: sdo.NewServer(dictionary, nodeId, logger),
		nmt:       nmt.NewStateMachine(nodeId, logger),
		emcy:      emergency.NewManager(dictionary, nodeId, logger),
		heartbeat: heartbeat.NewProducer(nodeId, 0, logger),
	}

	if err := n.pdoTable.LoadFromOD(dictionary); err != nil {
		return nil, err
	}

	n.sdoServer.OnPDOConfigChanged = func(index uint16) error {
		return n.pdoTable.Update(n.od, index)
	}
	n.sdoServer.OnHeartbeatPeriodChanged = func(periodMs uint16) {
		n.heartbeat.SetPeriod(periodMs)
	}

	if v, err := dictionary.GetVariable(od.IndexProducerHeartbeatTime, 0); err == nil {
		n.heartbeat.SetPeriod(v.Uint16())
	}

	return n, nil
}

// NewFromEDS parses r as EDS/INI text and builds a Node from it. A malformed
// EDS fails construction rather than producing a partially-built node.
func NewFromEDS(r io.Reader, nodeId uint8, transport gocan.Transport, logger *logrus.Logger) (*Node, error) {
	dictionary, err := od.ParseEDS(r, nodeId, logger)
	if err != nil {
		return nil, err
	}
	return New(dictionary, nodeId, transport, logger)
}

// ObjectDictionary exposes the node's live OD for host introspection and
// configuration tooling.
func (n *Node) ObjectDictionary() *od.ObjectDictionary { return n.od }

// State returns the node's current NMT operating state.
func (n *Node) State() nmt.State { return n.nmt.State() }

// Stats returns a snapshot of the node's running counters.
func (n *Node) Stats() Stats {
	return Stats{
		SyncCount:  n.syncCount,
		EventCount: n.eventCount,
		ErrorCount: n.errorCount,
		Heartbeats: n.heartbeat.Heartbeats(),
	}
}

// Emergency exposes the emergency manager for host introspection of raised
// conditions.
func (n *Node) Emergency() *emergency.Manager { return n.emcy }

func (n *Node) transmit(frame canopen.Frame) error {
	if err := n.transport.Transmit(frame); err != nil {
		n.logger.WithError(err).Warn("transmit failed")
		return err
	}
	return nil
}

// ProcessOneFrame reads at most one inbound frame and dispatches it. It
// never blocks: if the transport has nothing queued it returns immediately.
func (n *Node) ProcessOneFrame() {
	frame, err := n.transport.Receive()
	if err != nil {
		if err != gocan.ErrWouldBlock {
			n.logger.WithError(err).Warn("receive failed")
		}
		return
	}
	n.dispatch(frame)
}

func (n *Node) dispatch(frame canopen.Frame) {
	switch frame.CobId & canopen.FunctionMask {
	case canopen.FunctionNMT:
		n.handleNMT(frame)
	case canopen.FunctionSYNC:
		n.handleSync()
	case canopen.FunctionRPDO1, canopen.FunctionRPDO2, canopen.FunctionRPDO3, canopen.FunctionRPDO4:
		n.handleRPDO(frame)
	case canopen.FunctionSDORx:
		n.handleSDO(frame)
	default:
		// unrecognised COB-ID ranges are silently ignored.
	}
}

func (n *Node) handleNMT(frame canopen.Frame) {
	if frame.DLC != 2 {
		return
	}
	event := n.nmt.Process(frame.Data[0], frame.Data[1])
	switch event {
	case nmt.EventNodeStart:
		n.syncCount = 0
		n.eventCount = 0
		n.errorCount = 0
		n.heartbeat.Reset()
		if err := n.pdoTable.EmitTPDOs(n.od, false, pdo.EventNodeStart, n.eventCount, n.transmit); err != nil {
			n.logger.WithError(err).Warn("TPDO emission on node start failed")
		}
	case nmt.EventResetFull:
		n.od.ResetFull()
		n.resetAfterReload()
	case nmt.EventResetCommunication:
		n.od.ResetCommunication()
		n.resetAfterReload()
	}
}

// resetAfterReload re-derives every in-memory component that caches OD
// state, mirroring the full construction path minus EDS re-parsing: an NMT
// reset clears SDO transfer buffers and re-derives the PDO and heartbeat
// parameters from the (possibly just-reset) dictionary.
func (n *Node) resetAfterReload() {
	n.sdoServer.Reset()
	if err := n.pdoTable.LoadFromOD(n.od); err != nil {
		n.logger.WithError(err).Warn("PDO reload after NMT reset failed")
	}
	if v, err := n.od.GetVariable(od.IndexProducerHeartbeatTime, 0); err == nil {
		n.heartbeat.SetPeriod(v.Uint16())
	} else {
		n.heartbeat.SetPeriod(0)
	}
}

func (n *Node) handleSync() {
	if n.nmt.State() != nmt.StateOperational {
		return
	}
	n.syncCount++
	n.pdoTable.CommitRPDOs(n.od, true, pdo.EventNone, n.syncCount)
	if err := n.pdoTable.EmitTPDOs(n.od, true, pdo.EventNone, n.syncCount, n.transmit); err != nil {
		n.logger.WithError(err).Warn("TPDO emission on sync failed")
	}
}

func (n *Node) handleRPDO(frame canopen.Frame) {
	mismatch := n.pdoTable.IngestRPDO(frame.CobId, frame.Data[:frame.DLC])
	if mismatch {
		n.errorCount++
		var data [5]byte
		data[0] = byte(frame.CobId)
		data[1] = byte(frame.CobId >> 8)
		for _, f := range n.emcy.Trigger(emergency.ErrPdoNotProcessed, emergency.RegGeneric, data) {
			_ = n.transmit(f)
		}
	}
}

func (n *Node) handleSDO(frame canopen.Frame) {
	if frame.CobId&0x7F != uint32(n.nodeId) {
		return
	}
	for _, resp := range n.sdoServer.HandleFrame(frame) {
		_ = n.transmit(resp)
	}
}

// EventTimerCallback is the second scheduled entry point: it advances the
// heartbeat producer and, while Operational, runs a non-SYNC RPDO/TPDO pass.
func (n *Node) EventTimerCallback() {
	if frame, fire := n.heartbeat.Tick(heartbeat.StateCode(n.nmt.State())); fire {
		_ = n.transmit(frame)
	}

	if n.nmt.State() != nmt.StateOperational {
		return
	}
	n.eventCount++
	n.pdoTable.CommitRPDOs(n.od, false, pdo.EventTimer, n.eventCount)
	if err := n.pdoTable.EmitTPDOs(n.od, false, pdo.EventTimer, n.eventCount, n.transmit); err != nil {
		n.logger.WithError(err).Warn("TPDO emission on event timer failed")
	}
}
