// Package result содержит единую таксономию результатов, которую возвращают
// все операции ядра: менеджер вызовов, провайдер состояния, менеджер экранов
// и коллекции слушателей.
package result

import (
	"fmt"

	"github.com/pkg/errors"
)

// Code код результата операции
type Code int

const (
	OK Code = iota
	Fail
	InvalidParam
	AllocationFail
	PermissionDenied
	NotSupported
	NotRegistered
	AlreadyRegistered
	UnknownError
)

var codeNames = map[Code]string{
	OK:                "OK",
	Fail:              "FAIL",
	InvalidParam:      "INVALID_PARAM",
	AllocationFail:    "ALLOCATION_FAIL",
	PermissionDenied:  "PERMISSION_DENIED",
	NotSupported:      "NOT_SUPPORTED",
	NotRegistered:     "NOT_REGISTERED",
	AlreadyRegistered: "ALREADY_REGISTERED",
	UnknownError:      "UNKNOWN_ERROR",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

// Error структурированная ошибка ядра с кодом таксономии.
//
// Op - имя операции, в которой произошла ошибка (например "call_manager.Dial").
// Cause - исходная ошибка платформы, если она есть.
type Error struct {
	Code  Code
	Op    string
	Msg   string
	Cause error
}

// Error реализует интерфейс error
func (e *Error) Error() string {
	s := e.Code.String()
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += " (" + e.Msg + ")"
	}
	if e.Cause != nil {
		s += ": " + e.Cause.Error()
	}
	return s
}

// Unwrap позволяет использовать errors.Is и errors.As для исходной ошибки
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is сравнивает ошибки только по коду, поэтому errors.Is(err, ErrInvalidParam)
// срабатывает для любой ошибки с кодом INVALID_PARAM независимо от операции.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Предопределенные ошибки для сравнения через errors.Is
var (
	ErrFail              = &Error{Code: Fail}
	ErrInvalidParam      = &Error{Code: InvalidParam}
	ErrAllocationFail    = &Error{Code: AllocationFail}
	ErrPermissionDenied  = &Error{Code: PermissionDenied}
	ErrNotSupported      = &Error{Code: NotSupported}
	ErrNotRegistered     = &Error{Code: NotRegistered}
	ErrAlreadyRegistered = &Error{Code: AlreadyRegistered}
	ErrUnknown           = &Error{Code: UnknownError}
)

// New создает ошибку с кодом и именем операции
func New(code Code, op, msg string) *Error {
	return &Error{Code: code, Op: op, Msg: msg}
}

// Newf создает ошибку с форматированным сообщением
func Newf(code Code, op, format string, args ...interface{}) *Error {
	return &Error{Code: code, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Wrap оборачивает исходную ошибку кодом таксономии. Возвращает nil для nil.
func Wrap(cause error, code Code, op string) error {
	if cause == nil {
		return nil
	}
	return &Error{Code: code, Op: op, Cause: cause}
}

// CodeOf извлекает код из цепочки ошибок. nil дает OK, ошибка вне таксономии
// дает UNKNOWN_ERROR.
func CodeOf(err error) Code {
	if err == nil {
		return OK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return UnknownError
}
