package telephony

import "fmt"

// Error код ошибки платформенного клиента телефонии
type Error int

const (
	ErrNone Error = iota
	ErrOutOfMemory
	ErrInvalidParameter
	ErrPermissionDenied
	ErrNotSupported
	ErrNotRegistered
	ErrAlreadyRegistered
	ErrOperationFailed
	ErrInvalidState
)

var errorNames = map[Error]string{
	ErrNone:              "none",
	ErrOutOfMemory:       "out of memory",
	ErrInvalidParameter:  "invalid parameter",
	ErrPermissionDenied:  "permission denied",
	ErrNotSupported:      "not supported",
	ErrNotRegistered:     "not registered",
	ErrAlreadyRegistered: "already registered",
	ErrOperationFailed:   "operation failed",
	ErrInvalidState:      "invalid state",
}

// Error реализует интерфейс error
func (e Error) Error() string {
	if name, ok := errorNames[e]; ok {
		return "telephony: " + name
	}
	return fmt.Sprintf("telephony: error %d", int(e))
}
