package chatclient

import (
	"net"

	"github.com/pkg/errors"
)

// ErrorKind categorizes the faults reported through the error notification.
type ErrorKind int

const (
	// KindHostDisconnected means the peer closed the connection.
	KindHostDisconnected ErrorKind = iota
	// KindInvalidOperation means the operation is not valid in the current state.
	KindInvalidOperation
	// KindIOFault means a read or write on an open stream failed.
	KindIOFault
	// KindStaleHandle means the operation ran against a torn-down handle.
	KindStaleHandle
	// KindPortOutOfRange means the configured port is not in 0-65535.
	KindPortOutOfRange
	// KindSocketFault means a connection-level network failure.
	KindSocketFault
)

// String returns the name of the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindHostDisconnected:
		return "HostDisconnected"
	case KindInvalidOperation:
		return "InvalidOperation"
	case KindIOFault:
		return "IOFault"
	case KindStaleHandle:
		return "StaleHandle"
	case KindPortOutOfRange:
		return "PortOutOfRange"
	case KindSocketFault:
		return "SocketFault"
	default:
		return "Unknown"
	}
}

// Errors returned by the connection handle.
var (
	// ErrAlreadyOpen is returned by Open when the handle is already connected.
	ErrAlreadyOpen = errors.New("connection already open")
	// ErrNotOpen is returned when the handle has never been opened.
	ErrNotOpen = errors.New("connection not open")
	// ErrClosed is returned when the handle has been torn down.
	ErrClosed = errors.New("connection closed")
	// ErrPortOutOfRange is returned when the endpoint port is invalid.
	ErrPortOutOfRange = errors.New("port out of range")
	// ErrHostDisconnected is reported when the liveness probe finds the peer gone.
	ErrHostDisconnected = errors.New("Connection lost (Host disconnected?)")
)

// Error is the record handed to error subscribers.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Kind.String() + ": " + e.Message
}

// Unwrap returns the underlying fault.
func (e *Error) Unwrap() error {
	return e.Err
}

// newError builds an Error record of the given kind from err.
func newError(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Message: err.Error(), Err: err}
}

// Classify maps a fault raised by the connection handle to an Error record.
// An err that already is an *Error is returned as is.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var record *Error
	if errors.As(err, &record) {
		return record
	}

	switch {
	case errors.Is(err, ErrHostDisconnected):
		return newError(KindHostDisconnected, ErrHostDisconnected)
	case errors.Is(err, ErrPortOutOfRange):
		return newError(KindPortOutOfRange, err)
	case errors.Is(err, ErrAlreadyOpen), errors.Is(err, ErrNotOpen):
		return newError(KindInvalidOperation, err)
	case errors.Is(err, ErrClosed), errors.Is(err, net.ErrClosed):
		return newError(KindStaleHandle, err)
	}

	var dialErr *dialError
	if errors.As(err, &dialErr) {
		return newError(KindSocketFault, err)
	}

	return newError(KindIOFault, err)
}

// dialError marks a failure while establishing the stream so it classifies
// as a socket fault rather than an I/O fault.
type dialError struct {
	err error
}

func (e *dialError) Error() string { return e.err.Error() }

func (e *dialError) Unwrap() error { return e.err }
