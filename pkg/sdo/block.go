package sdo

import (
	"encoding/binary"

	canopen "github.com/canopenio/gocanopen"
	"github.com/canopenio/gocanopen/internal/crc"
)

const (
	blockDownloadInitAck = 0xA0 // ss=0
	blockDownloadSubAck  = 0xA2 // ss=2
	blockDownloadEndAck  = 0xA1 // ss=1

	blockUploadInitAck = 0xC2 // ccs=6<<5|2, ss=0 (initiate upload response)
	blockUploadEndAck  = 0xC1 // ss=1
	blockUploadStartCs = 0xA3 // client: ccs=5<<5|cs=3
	blockUploadAckCs   = 0xA2 // client: ccs=5<<5|cs=2
)

// handleBlockDownloadInit processes ccs=6, cs=0 (initiate block download):
// the client declares CRC support and optionally the total transfer size
//.
func (s *Server) handleBlockDownloadInit(data []byte) []canopen.Frame {
	index, subIndex := indexSubIndex(data)
	cc := data[0]&0x04 != 0
	sizeIndicated := data[0]&0x02 != 0

	if _, err := s.od.GetVariable(index, subIndex); err != nil {
		return []canopen.Frame{s.abort(index, subIndex, mapODRToAbort(err))}
	}

	s.state = StateBlockDownload
	s.index = index
	s.subIndex = subIndex
	s.blockCRCEnabled = cc
	s.blockSize = maxBlockSize
	s.blockSeqNo = 0
	s.blockCRC = 0
	s.writeBuf = s.writeBuf[:0]
	s.writeDataSize = -1
	if sizeIndicated {
		s.writeDataSize = int(binary.LittleEndian.Uint32(data[4:8]))
	}

	var resp [8]byte
	resp[0] = blockDownloadInitAck
	if cc {
		resp[0] |= 0x04
	}
	binary.LittleEndian.PutUint16(resp[1:3], index)
	resp[3] = subIndex
	resp[4] = s.blockSize
	return []canopen.Frame{s.reply(resp[:])}
}

// handleBlockDownloadSegment processes one block sub-segment: byte0 bit 7
// is the last-of-block flag, bits 6..0 the sequence number. Out-of-order
// sequence numbers abort the transfer.
func (s *Server) handleBlockDownloadSegment(data []byte) []canopen.Frame {
	last := data[0]&0x80 != 0
	seqNo := data[0] & 0x7F

	if seqNo != s.blockSeqNo+1 {
		index, subIndex := s.index, s.subIndex
		return []canopen.Frame{s.abort(index, subIndex, AbortSeqNum)}
	}
	s.blockSeqNo = seqNo
	s.writeBuf = append(s.writeBuf, data[1:8]...)

	if !last && seqNo < s.blockSize {
		return nil
	}

	var resp [8]byte
	resp[0] = blockDownloadSubAck
	resp[1] = seqNo
	resp[2] = s.blockSize
	s.blockSeqNo = 0

	if last {
		s.state = StateEndBlockDownload
	}
	return []canopen.Frame{s.reply(resp[:])}
}

// handleBlockDownloadEnd processes the end-of-transfer frame: n is the
// number of unused bytes in the final 7-byte segment already received
//.
func (s *Server) handleBlockDownloadEnd(data []byte) []canopen.Frame {
	index, subIndex := s.index, s.subIndex
	n := int((data[0] >> 2) & 0x07)

	finalLen := len(s.writeBuf) - n
	if finalLen < 0 {
		finalLen = 0
	}
	if s.writeDataSize >= 0 && finalLen != s.writeDataSize {
		return []canopen.Frame{s.abort(index, subIndex, AbortGeneral)}
	}
	payload := s.writeBuf[:finalLen]

	if s.blockCRCEnabled {
		received := binary.LittleEndian.Uint16(data[1:3])
		if computed := crc.CANopen(payload); computed != received {
			return []canopen.Frame{s.abort(index, subIndex, AbortCRC)}
		}
	}

	if err := s.setValueWithCheck(index, subIndex, payload); err != nil {
		return []canopen.Frame{s.abort(index, subIndex, mapODRToAbort(err))}
	}

	s.Reset()
	var resp [8]byte
	resp[0] = blockDownloadEndAck
	return []canopen.Frame{s.reply(resp[:])}
}

// handleBlockUploadInit processes ccs=5, cs=0 (initiate block upload):
// the client declares CRC support and a requested block size.
func (s *Server) handleBlockUploadInit(data []byte) []canopen.Frame {
	index, subIndex := indexSubIndex(data)
	cc := data[0]&0x04 != 0
	requestedBlockSize := data[4]

	if requestedBlockSize >= 0x80 {
		return []canopen.Frame{s.abort(index, subIndex, AbortBlockSize)}
	}
	v, err := s.od.GetVariable(index, subIndex)
	if err != nil {
		return []canopen.Frame{s.abort(index, subIndex, mapODRToAbort(err))}
	}

	s.state = StateStartBlockUpload
	s.index = index
	s.subIndex = subIndex
	s.blockCRCEnabled = cc
	s.readBuf = v.Value()

	var resp [8]byte
	resp[0] = blockUploadInitAck
	if cc {
		resp[0] |= 0x04
	}
	binary.LittleEndian.PutUint16(resp[1:3], index)
	resp[3] = subIndex
	binary.LittleEndian.PutUint32(resp[4:8], uint32(len(s.readBuf)))
	return []canopen.Frame{s.reply(resp[:])}
}

// handleBlockUploadStart processes ccs=5, cs=3 (start upload): every data
// segment is emitted eagerly, before the ConfirmBlockUpload state is
// entered.
func (s *Server) handleBlockUploadStart(data []byte) []canopen.Frame {
	if data[0] != blockUploadStartCs {
		index, subIndex := s.index, s.subIndex
		return []canopen.Frame{s.abort(index, subIndex, AbortCmd)}
	}

	total := len(s.readBuf)
	segments := (total + 6) / 7
	if segments == 0 {
		segments = 1
	}
	frames := make([]canopen.Frame, 0, segments)
	for k := 1; k <= segments; k++ {
		var seg [8]byte
		seg[0] = byte(k)
		if k == segments {
			seg[0] |= 0x80
		}
		lo := (k - 1) * 7
		hi := lo + 7
		if hi > total {
			hi = total
		}
		copy(seg[1:], s.readBuf[lo:hi])
		frames = append(frames, s.reply(seg[:]))
	}

	s.blockSeqNo = uint8(segments)
	s.state = StateConfirmBlockUpload
	return frames
}

// handleBlockUploadConfirm processes ccs=5, cs=2: the client confirms how
// many segments it received before the server emits the final ack
//.
func (s *Server) handleBlockUploadConfirm(data []byte) []canopen.Frame {
	index, subIndex := s.index, s.subIndex
	if data[0] != blockUploadAckCs {
		return []canopen.Frame{s.abort(index, subIndex, AbortCmd)}
	}
	ackSeq := data[1]
	if ackSeq != s.blockSeqNo {
		return []canopen.Frame{s.abort(index, subIndex, AbortCmd)}
	}

	total := len(s.readBuf)
	n := (7 - total%7) % 7

	var resp [8]byte
	resp[0] = blockUploadEndAck | byte(n<<2)
	if s.blockCRCEnabled {
		binary.LittleEndian.PutUint16(resp[1:3], crc.CANopen(s.readBuf))
	}

	s.Reset()
	return []canopen.Frame{s.reply(resp[:])}
}
