// internal/saunum/classify.go
package saunum

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"syscall"
)

// classify maps a transport error onto the error taxonomy.
//
// Order matters: a timed-out *net.OpError is a timeout, not a lost link.
// Anything not recognised as timeout or link loss is a protocol-level
// failure on a live link (exception responses, framing mismatches).
func classify(op string, err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return newError(e.Kind, op, e.Err)
	}

	switch {
	case isTimeout(err):
		return newError(KindTimeout, op, err)
	case isLinkLost(err):
		return newError(KindConnection, op, err)
	default:
		return newError(KindCommunication, op, err)
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func isLinkLost(err error) bool {
	switch {
	case errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, net.ErrClosed),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.ECONNABORTED),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.EPIPE):
		return true
	}
	var op *net.OpError
	return errors.As(err, &op)
}
