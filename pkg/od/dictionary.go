package od

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// ObjectDictionary is the node's addressable key/value store keyed by
// (index, sub-index), built once from EDS text at construction and never
// restructured afterwards -- only entry values mutate.
type ObjectDictionary struct {
	logger        *logrus.Entry
	NodeId        uint8
	indexToObject map[uint16]*Object
	nameToIndex   map[string]uint16
	backup        map[uint16]*Object
}

// NewObjectDictionary builds an empty OD for nodeId.
func NewObjectDictionary(nodeId uint8, logger *logrus.Logger) *ObjectDictionary {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ObjectDictionary{
		logger:        logger.WithField("service", "od"),
		NodeId:        nodeId,
		indexToObject: map[uint16]*Object{},
		nameToIndex:   map[string]uint16{},
	}
}

// addObject registers a freshly-parsed object, keeping name_to_index as a
// bijection with indexToObject.
func (d *ObjectDictionary) addObject(obj *Object) {
	idx := obj.Index()
	d.indexToObject[idx] = obj
	if name := obj.Name(); name != "" {
		d.nameToIndex[name] = idx
	}
}

// InstallVariable registers a bare Variable as a top-level OD entry. Used by
// ParseEDS and by hosts building a dictionary programmatically rather than
// from EDS text.
func (d *ObjectDictionary) InstallVariable(v *Variable) {
	d.addObject(&Object{Variable: v})
}

// InstallRecord registers a Record as a top-level OD entry, for hosts
// building a dictionary programmatically rather than from EDS text. Any
// index with more than one sub-index (comm/mapping parameters, PDO tables)
// must use this rather than repeated InstallVariable calls, which would
// each overwrite the previous entry at the same index.
func (d *ObjectDictionary) InstallRecord(r *Record) {
	d.addObject(&Object{Record: r})
}

// Snapshot deep-clones the current state into the backup used by NMT
// reset. Call it once the dictionary is fully built (ParseEDS does so after
// ingestion); a later call replaces the previous backup.
func (d *ObjectDictionary) Snapshot() {
	d.backup = make(map[uint16]*Object, len(d.indexToObject))
	for idx, obj := range d.indexToObject {
		d.backup[idx] = obj.Clone()
	}
}

// Index returns the raw object at index, or nil.
func (d *ObjectDictionary) Index(index uint16) *Object {
	return d.indexToObject[index]
}

// IndexByName returns the raw object registered under name, or nil.
func (d *ObjectDictionary) IndexByName(name string) *Object {
	idx, ok := d.nameToIndex[name]
	if !ok {
		return nil
	}
	return d.indexToObject[idx]
}

// GetVariable returns the current Variable at (index, subIndex) if it
// exists and is readable.
func (d *ObjectDictionary) GetVariable(index uint16, subIndex uint8) (*Variable, error) {
	obj, ok := d.indexToObject[index]
	if !ok {
		return nil, ErrObjectDoesNotExist
	}
	v, ok := obj.Get(subIndex)
	if !ok {
		return nil, ErrSubIndexDoesNotExist
	}
	if !v.Access.Readable {
		return nil, ErrAttemptToReadWriteOnlyObject
	}
	return v, nil
}

// lookupForWrite resolves (index, subIndex) for a write, materialising
// Array sub-entries as needed, without any access check.
func (d *ObjectDictionary) lookupForWrite(index uint16, subIndex uint8) (*Variable, error) {
	obj, ok := d.indexToObject[index]
	if !ok {
		return nil, ErrObjectDoesNotExist
	}
	return obj.GetOrMaterialise(subIndex)
}

// SetValue writes data to (index, subIndex). Unless bypassAccess is set, the
// entry must be writable. data must be exactly data_type.size bytes for
// fixed-size types.
func (d *ObjectDictionary) SetValue(index uint16, subIndex uint8, data []byte, bypassAccess bool) error {
	v, err := d.lookupForWrite(index, subIndex)
	if err != nil {
		return err
	}
	if !bypassAccess && !v.Access.Writable {
		return ErrAttemptToWriteReadOnlyObject
	}
	if err := CheckSize(len(data), v.DataType); err != nil {
		return err
	}
	v.setRaw(data)
	d.logger.WithFields(logrus.Fields{
		"index":    fmt.Sprintf("x%x", index),
		"subindex": subIndex,
	}).Debug("wrote value")
	return nil
}

// SetValueWithFittingSize writes only the first data_type.size bytes of data
// and is a silent no-op on read-only or missing entries, or short buffers.
// Used exclusively by the RPDO commit path, which must never fault the node
// on a misconfigured mapping.
func (d *ObjectDictionary) SetValueWithFittingSize(index uint16, subIndex uint8, data []byte) {
	obj, ok := d.indexToObject[index]
	if !ok {
		return
	}
	v, ok := obj.Get(subIndex)
	if !ok {
		return
	}
	if !v.Access.Writable {
		return
	}
	size := v.DataType.Size()
	if size == 0 {
		size = len(data)
	}
	if len(data) < size {
		return
	}
	v.setRaw(data[:size])
}

// ResetRange restores entries whose index lies in [lo, hi] to the backup
// snapshot, dropping entries created after startup (Array auto-materialised
// sub-entries), and rebuilds name_to_index for the survivors.
func (d *ObjectDictionary) ResetRange(lo, hi uint16) {
	for idx, obj := range d.indexToObject {
		if idx < lo || idx > hi {
			continue
		}
		backupObj, ok := d.backup[idx]
		if !ok {
			delete(d.indexToObject, idx)
			continue
		}
		d.indexToObject[idx] = backupObj.Clone()
		_ = obj
	}
	d.nameToIndex = map[string]uint16{}
	for idx, obj := range d.indexToObject {
		if name := obj.Name(); name != "" {
			d.nameToIndex[name] = idx
		}
	}
	d.logger.WithFields(logrus.Fields{"lo": fmt.Sprintf("x%x", lo), "hi": fmt.Sprintf("x%x", hi)}).Info("reset OD range")
}

// ResetFull resets the whole application+communication area, as the CiA
// 301 NMT reset-node command does: 0x1000..0x9FFF.
func (d *ObjectDictionary) ResetFull() {
	d.ResetRange(IndexCommunicationProfileStart, IndexDeviceProfileEnd)
}

// ResetCommunication resets only the communication profile area, as the
// CiA 301 NMT reset-communication command does: 0x1000..0x1FFF.
func (d *ObjectDictionary) ResetCommunication() {
	d.ResetRange(IndexCommunicationProfileStart, IndexCommunicationProfileEnd)
}
