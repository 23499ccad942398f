// internal/saunum/errors.go
package saunum

import (
	"errors"
	"fmt"
)

// Error categories. Use errors.Is() against these in calling code.
var (
	// ErrConnection: the link cannot be established or was lost.
	ErrConnection = errors.New("saunum: connection error")

	// ErrTimeout: an operation exceeded its deadline. The link may still be usable.
	ErrTimeout = errors.New("saunum: operation timed out")

	// ErrCommunication: the device answered with a protocol-level failure.
	ErrCommunication = errors.New("saunum: communication error")

	// ErrInvalidData: a successful response could not be decoded (wrong word count etc).
	ErrInvalidData = errors.New("saunum: invalid data")

	// ErrValidation: a caller-supplied value is outside its accepted domain.
	// Raised before any I/O.
	ErrValidation = errors.New("saunum: validation failed")
)

// Kind identifies an error category. The numeric value doubles as the
// error code published in device status.
type Kind uint16

const (
	KindConnection Kind = iota + 1
	KindTimeout
	KindCommunication
	KindInvalidData
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindConnection:
		return "connection"
	case KindTimeout:
		return "timeout"
	case KindCommunication:
		return "communication"
	case KindInvalidData:
		return "invalid data"
	case KindValidation:
		return "validation"
	default:
		return fmt.Sprintf("kind(%d)", uint16(k))
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindConnection:
		return ErrConnection
	case KindTimeout:
		return ErrTimeout
	case KindCommunication:
		return ErrCommunication
	case KindInvalidData:
		return ErrInvalidData
	case KindValidation:
		return ErrValidation
	default:
		return nil
	}
}

// Error is a classified failure of one session operation.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("saunum: %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("saunum: %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel of the error's kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// Code returns the numeric kind.
func (e *Error) Code() uint16 { return uint16(e.Kind) }

// KindOf returns the category of err, or 0 if err is not classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	var v *ValidationError
	if errors.As(err, &v) {
		return KindValidation
	}
	return 0
}

// ValidationError rejects a parameter before it reaches the transport.
type ValidationError struct {
	Param  string
	Value  int
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("saunum: invalid %s %d: %s", e.Param, e.Value, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func (e *ValidationError) Code() uint16 { return uint16(KindValidation) }

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}
