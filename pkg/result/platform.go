package result

import (
	"github.com/arzzra/call_ui/pkg/telephony"
	"github.com/pkg/errors"
)

// FromPlatform переводит ошибку платформы телефонии в таксономию ядра.
// Все, что не удается сопоставить, становится UNKNOWN_ERROR.
func FromPlatform(err error, op string) error {
	if err == nil {
		return nil
	}
	var perr telephony.Error
	if !errors.As(err, &perr) {
		return &Error{Code: UnknownError, Op: op, Cause: err}
	}

	var code Code
	switch perr {
	case telephony.ErrNone:
		return nil
	case telephony.ErrOutOfMemory:
		code = AllocationFail
	case telephony.ErrInvalidParameter:
		code = InvalidParam
	case telephony.ErrPermissionDenied:
		code = PermissionDenied
	case telephony.ErrNotSupported:
		code = NotSupported
	case telephony.ErrNotRegistered:
		code = NotRegistered
	case telephony.ErrAlreadyRegistered:
		code = AlreadyRegistered
	case telephony.ErrOperationFailed, telephony.ErrInvalidState:
		code = Fail
	default:
		code = UnknownError
	}
	return &Error{Code: code, Op: op, Cause: err}
}
