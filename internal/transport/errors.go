package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"syscall"

	"github.com/coder/websocket"
	"go.bug.st/serial"
)

// Kind is the recovery class of a transport error.
type Kind int

const (
	// KindNone means there was no error.
	KindNone Kind = iota
	// KindTimeout is an expired read with no data. Retry silently.
	KindTimeout
	// KindDisconnected means the device or bridge went away. The session
	// may wait for it to return.
	KindDisconnected
	// KindFatal covers everything the session cannot recover from.
	KindFatal
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindTimeout:
		return "timeout"
	case KindDisconnected:
		return "disconnected"
	case KindFatal:
		return "fatal"
	}
	return "unknown"
}

// Classify maps err to its recovery class.
func Classify(err error) Kind {
	if err == nil {
		return KindNone
	}
	if errors.Is(err, ErrInvalidFraming) || errors.Is(err, context.Canceled) {
		return KindFatal
	}
	if errors.Is(err, os.ErrDeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return KindTimeout
	}

	if code, ok := portErrorCode(err); ok {
		switch code {
		case serial.PortClosed, serial.PortNotFound:
			return KindDisconnected
		default:
			return KindFatal
		}
	}

	switch websocket.CloseStatus(err) {
	case -1:
	case websocket.StatusNormalClosure, websocket.StatusGoingAway, websocket.StatusAbnormalClosure:
		return KindDisconnected
	default:
		return KindFatal
	}

	switch {
	case errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, net.ErrClosed),
		errors.Is(err, os.ErrNotExist),
		errors.Is(err, syscall.EIO),
		errors.Is(err, syscall.ENXIO),
		errors.Is(err, syscall.ENODEV),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.EPIPE):
		return KindDisconnected
	}
	return KindFatal
}

// retryableOnReconnect reports errors that are expected while a replugged
// device is still being set up by the system.
func retryableOnReconnect(err error) bool {
	if code, ok := portErrorCode(err); ok {
		return code == serial.PermissionDenied || code == serial.PortBusy
	}
	return errors.Is(err, os.ErrPermission)
}

func portErrorCode(err error) (serial.PortErrorCode, bool) {
	var pe *serial.PortError
	if errors.As(err, &pe) {
		return pe.Code(), true
	}
	return 0, false
}
