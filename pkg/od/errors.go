package od

import "fmt"

// ODR is an object-dictionary error code, modelled after CiA 301's abort
// code taxonomy. It implements error.
type ODR int8

const (
	ErrNo ODR = iota
	ErrObjectDoesNotExist
	ErrSubIndexDoesNotExist
	ErrAttemptToReadWriteOnlyObject
	ErrAttemptToWriteReadOnlyObject
	ErrDataTypeMismatchLengthTooHigh
	ErrDataTypeMismatchLengthTooLow
	ErrCannotBeMappedToPDO
	ErrPDOLengthExceeded
	ErrGeneral
	ErrExceedPDOSize
	ErrInvalidValue
)

var odrDescription = map[ODR]string{
	ErrNo:                            "no error",
	ErrObjectDoesNotExist:            "object does not exist in the object dictionary",
	ErrSubIndexDoesNotExist:          "sub-index does not exist",
	ErrAttemptToReadWriteOnlyObject:  "attempt to read a write only object",
	ErrAttemptToWriteReadOnlyObject:  "attempt to write a read only object",
	ErrDataTypeMismatchLengthTooHigh: "data type does not match, length too high",
	ErrDataTypeMismatchLengthTooLow:  "data type does not match, length too low",
	ErrCannotBeMappedToPDO:           "object cannot be mapped to the PDO",
	ErrPDOLengthExceeded:             "number and length of mapped objects exceeds PDO length",
	ErrGeneral:                       "general error",
	ErrExceedPDOSize:                 "mapped PDO exceeds 64 bits",
	ErrInvalidValue:                  "invalid value for parameter",
}

func (e ODR) Error() string {
	if s, ok := odrDescription[e]; ok {
		return fmt.Sprintf("od error %d: %s", int8(e), s)
	}
	return fmt.Sprintf("od error %d: unknown", int8(e))
}
