package sdo

import (
	"encoding/binary"

	canopen "github.com/canopenio/gocanopen"
	"github.com/canopenio/gocanopen/internal/crc"
	"github.com/canopenio/gocanopen/pkg/od"
	"github.com/sirupsen/logrus"
)

// State is the SDO server's current transfer mode.
type State uint8

const (
	StateNormal State = iota
	StateSegmentUpload
	StateSegmentDownload
	StateBlockDownload
	StateEndBlockDownload
	StateStartBlockUpload
	StateConfirmBlockUpload
)

const (
	ccsDownloadSegment  = 0
	ccsInitiateDownload = 1
	ccsInitiateUpload   = 2
	ccsUploadSegment    = 3
	ccsBlockUpload      = 5
	ccsBlockDownload    = 6
	csAbort             = 0x80

	scsUploadSegment    = 0
	scsDownloadInitiate = 3
	scsUploadInitiate   = 2
	scsDownloadSegment  = 1
	scsBlockDownload    = 5
	scsBlockUpload      = 6
)

const maxBlockSize = 127

// Server is the per-node SDO transfer state machine. It consumes one
// request frame at a time and produces zero or more response frames; it
// never blocks or retains a goroutine of its own.
type Server struct {
	logger *logrus.Entry
	od     *od.ObjectDictionary
	nodeId uint8

	state    State
	index    uint16
	subIndex uint8
	dataType od.DataType

	toggle bool

	// segmented upload
	readBuf []byte

	// segmented download
	writeBuf []byte

	// block transfer (download)
	blockCRCEnabled bool
	blockSeqNo      uint8
	blockSize       uint8
	blockCRC        crc.CRC16
	writeDataSize   int // declared total size in bytes, -1 if unknown

	// block transfer (upload)
	blockReadPos int

	// OnPDOConfigChanged is invoked after a successful write to
	// 0x1400..0x1BFF so the PDO engine can re-derive slot state. An error
	// (e.g. od.ErrExceedPDOSize) aborts the write that triggered it: the
	// previous value is restored and the hook is run again for it.
	OnPDOConfigChanged func(index uint16) error

	// OnHeartbeatPeriodChanged is invoked after a successful write to
	// 0x1017:0 with the new period in milliseconds.
	OnHeartbeatPeriodChanged func(periodMs uint16)
}

// NewServer builds an SDO server bound to dictionary for nodeId.
func NewServer(dictionary *od.ObjectDictionary, nodeId uint8, logger *logrus.Logger) *Server {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Server{
		logger: logger.WithField("service", "sdo"),
		od:     dictionary,
		nodeId: nodeId,
		state:  StateNormal,
	}
}

// RequestCobId is the COB-ID this server listens for client requests on.
func (s *Server) RequestCobId() uint32 { return canopen.FunctionSDORx + uint32(s.nodeId) }

// ResponseCobId is the COB-ID this server transmits responses on.
func (s *Server) ResponseCobId() uint32 { return canopen.FunctionSDOTx + uint32(s.nodeId) }

// Reset clears any in-flight transfer and returns to Normal, as happens on
// NMT reset.
func (s *Server) Reset() {
	s.state = StateNormal
	s.readBuf = nil
	s.writeBuf = nil
	s.toggle = false
}

// HandleFrame processes one inbound SDO request frame and returns the
// response frame(s) to transmit, in order.
func (s *Server) HandleFrame(req canopen.Frame) []canopen.Frame {
	data := req.Data[:]
	ccs := data[0] >> 5

	if data[0] == csAbort {
		s.Reset()
		return nil
	}

	// A ccs inconsistent with the in-flight state drops the transfer
	// and is treated as a fresh Normal-state request.
	switch s.state {
	case StateSegmentDownload:
		if ccs != ccsDownloadSegment {
			s.Reset()
		}
	case StateSegmentUpload:
		if ccs != ccsUploadSegment {
			s.Reset()
		}
	}

	switch s.state {
	case StateSegmentDownload:
		return s.handleDownloadSegment(data)
	case StateSegmentUpload:
		return s.handleUploadSegment(data)
	case StateBlockDownload:
		return s.handleBlockDownloadSegment(data)
	case StateEndBlockDownload:
		return s.handleBlockDownloadEnd(data)
	case StateStartBlockUpload:
		return s.handleBlockUploadStart(data)
	case StateConfirmBlockUpload:
		return s.handleBlockUploadConfirm(data)
	}

	switch ccs {
	case ccsInitiateDownload:
		return s.handleInitiateDownload(data)
	case ccsInitiateUpload:
		return s.handleInitiateUpload(data)
	case ccsBlockDownload:
		return s.handleBlockDownloadInit(data)
	case ccsBlockUpload:
		return s.handleBlockUploadInit(data)
	default:
		idx, sub := indexSubIndex(data)
		return []canopen.Frame{s.abort(idx, sub, AbortCmd)}
	}
}

func indexSubIndex(data []byte) (uint16, uint8) {
	return binary.LittleEndian.Uint16(data[1:3]), data[3]
}

func (s *Server) abort(index uint16, subIndex uint8, code AbortCode) canopen.Frame {
	s.Reset()
	var resp [8]byte
	resp[0] = csAbort
	binary.LittleEndian.PutUint16(resp[1:3], index)
	resp[3] = subIndex
	codeBytes := code.Bytes()
	copy(resp[4:8], codeBytes[:])
	s.logger.WithFields(logrus.Fields{"index": index, "subindex": subIndex, "code": code}).Debug("sdo abort")
	f, _ := canopen.CreateFrameWithPadding(s.ResponseCobId(), resp[:])
	return f
}

func (s *Server) reply(data []byte) canopen.Frame {
	f, _ := canopen.CreateFrameWithPadding(s.ResponseCobId(), data)
	return f
}
