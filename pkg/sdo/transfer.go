package sdo

import (
	"encoding/binary"

	canopen "github.com/canopenio/gocanopen"
	"github.com/canopenio/gocanopen/pkg/od"
)

// handleInitiateDownload processes ccs=1: either an expedited write (e=1,
// s=1) or the start of a segmented download.
func (s *Server) handleInitiateDownload(data []byte) []canopen.Frame {
	index, subIndex := indexSubIndex(data)
	e := data[0]&0x02 != 0
	sizeBit := data[0]&0x01 != 0

	if e {
		n := 0
		if sizeBit {
			n = int((data[0] >> 2) & 0x03)
		}
		length := 4 - n
		payload := append([]byte(nil), data[4:4+length]...)
		if err := s.setValueWithCheck(index, subIndex, payload); err != nil {
			return []canopen.Frame{s.abort(index, subIndex, mapODRToAbort(err))}
		}
		return []canopen.Frame{s.downloadAck(index, subIndex)}
	}

	v, err := s.od.GetVariable(index, subIndex)
	if err != nil {
		return []canopen.Frame{s.abort(index, subIndex, mapODRToAbort(err))}
	}
	s.state = StateSegmentDownload
	s.index = index
	s.subIndex = subIndex
	s.dataType = v.DataType
	s.writeBuf = s.writeBuf[:0]
	s.toggle = false
	return []canopen.Frame{s.downloadAck(index, subIndex)}
}

func (s *Server) downloadAck(index uint16, subIndex uint8) canopen.Frame {
	var resp [8]byte
	resp[0] = scsDownloadInitiate << 5
	binary.LittleEndian.PutUint16(resp[1:3], index)
	resp[3] = subIndex
	return s.reply(resp[:])
}

// handleDownloadSegment processes ccs=0 frames while StateSegmentDownload.
func (s *Server) handleDownloadSegment(data []byte) []canopen.Frame {
	toggle := data[0]&0x10 != 0
	if toggle != s.toggle {
		idx, sub := s.index, s.subIndex
		return []canopen.Frame{s.abort(idx, sub, AbortToggleBit)}
	}
	last := data[0]&0x01 != 0
	n := int((data[0] >> 1) & 0x07)
	length := 7 - n
	s.writeBuf = append(s.writeBuf, data[1:1+length]...)

	var resp [8]byte
	resp[0] = scsDownloadSegment<<5 | boolBit(s.toggle, 0x10)

	if last {
		index, subIndex := s.index, s.subIndex
		payload := s.writeBuf
		s.Reset()
		if err := s.setValueWithCheck(index, subIndex, payload); err != nil {
			return []canopen.Frame{s.abort(index, subIndex, mapODRToAbort(err))}
		}
		return []canopen.Frame{s.reply(resp[:])}
	}
	s.toggle = !s.toggle
	return []canopen.Frame{s.reply(resp[:])}
}

func boolBit(b bool, mask byte) byte {
	if b {
		return mask
	}
	return 0
}

// handleInitiateUpload processes ccs=2: expedited read (<=4 bytes) or the
// start of a segmented upload.
func (s *Server) handleInitiateUpload(data []byte) []canopen.Frame {
	index, subIndex := indexSubIndex(data)
	v, err := s.od.GetVariable(index, subIndex)
	if err != nil {
		return []canopen.Frame{s.abort(index, subIndex, mapODRToAbort(err))}
	}
	value := v.Value()

	if len(value) <= 4 {
		var resp [8]byte
		n := 4 - len(value)
		resp[0] = 0x43 | byte(n<<2)
		binary.LittleEndian.PutUint16(resp[1:3], index)
		resp[3] = subIndex
		copy(resp[4:], value)
		return []canopen.Frame{s.reply(resp[:])}
	}

	s.state = StateSegmentUpload
	s.index = index
	s.subIndex = subIndex
	s.dataType = v.DataType
	s.readBuf = value
	s.toggle = false

	var resp [8]byte
	resp[0] = 0x41
	binary.LittleEndian.PutUint16(resp[1:3], index)
	resp[3] = subIndex
	binary.LittleEndian.PutUint32(resp[4:8], uint32(len(value)))
	return []canopen.Frame{s.reply(resp[:])}
}

// handleUploadSegment processes ccs=3 frames while StateSegmentUpload: one
// request yields up to 7 bytes of the remaining readBuf.
func (s *Server) handleUploadSegment(data []byte) []canopen.Frame {
	toggle := data[0]&0x10 != 0
	if toggle != s.toggle {
		idx, sub := s.index, s.subIndex
		return []canopen.Frame{s.abort(idx, sub, AbortToggleBit)}
	}

	chunk := s.readBuf
	last := true
	if len(chunk) > 7 {
		chunk = chunk[:7]
		last = false
	}
	s.readBuf = s.readBuf[len(chunk):]

	var resp [8]byte
	n := 7 - len(chunk)
	resp[0] = boolBit(s.toggle, 0x10)
	if last {
		resp[0] |= 0x01 | byte(n<<1)
	}
	copy(resp[1:], chunk)

	if last {
		s.Reset()
	} else {
		s.toggle = !s.toggle
	}
	return []canopen.Frame{s.reply(resp[:])}
}

// mapODRToAbort converts an od.ODR lookup/write failure to its SDO abort
// code equivalent.
func mapODRToAbort(err error) AbortCode {
	if ae, ok := err.(*abortError); ok {
		return ae.code
	}
	switch err {
	case od.ErrObjectDoesNotExist:
		return AbortNotExist
	case od.ErrSubIndexDoesNotExist:
		return AbortSubUnknown
	case od.ErrAttemptToReadWriteOnlyObject:
		return AbortWriteOnly
	case od.ErrAttemptToWriteReadOnlyObject:
		return AbortReadOnly
	case od.ErrDataTypeMismatchLengthTooHigh:
		return AbortDataLong
	case od.ErrDataTypeMismatchLengthTooLow:
		return AbortDataShort
	case od.ErrCannotBeMappedToPDO:
		return AbortNoMap
	case od.ErrPDOLengthExceeded:
		return AbortMapLen
	case od.ErrExceedPDOSize:
		return AbortExceedPDOSize
	default:
		return AbortGeneral
	}
}
