// Package canopen implements a CiA 301-class CANopen slave node: an object
// dictionary loaded from an Electronic Data Sheet, an SDO server, a PDO
// engine, and NMT/emergency/heartbeat services, driven by a host-provided
// CAN transport and periodic tick.
package canopen

import "errors"

// Frame construction and transport-facing errors.
var (
	ErrInvalidStandardId   = errors.New("canopen: cob-id exceeds 11-bit standard range")
	ErrFrameCreationFailed = errors.New("canopen: transport rejected frame")
	ErrIllegalArgument     = errors.New("canopen: illegal argument")
	ErrWouldBlock          = errors.New("canopen: would block")
)
