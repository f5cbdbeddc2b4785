package transport

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// PollInterval bounds every blocking read so the reader notices shutdown
// within about one display frame.
const PollInterval = time.Second / 60

// DefaultBaudRate is the rate the FPGA UART is synthesized with.
const DefaultBaudRate = 115200

// ErrInvalidFraming is returned for framing values the UART cannot use.
var ErrInvalidFraming = errors.New("invalid framing")

// Parity selects the parity bit.
type Parity string

const (
	ParityNone Parity = "none"
	ParityOdd  Parity = "odd"
	ParityEven Parity = "even"
)

// ParseParity accepts the long names and the single-letter forms N, O and E.
func ParseParity(s string) (Parity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "n":
		return ParityNone, nil
	case "odd", "o":
		return ParityOdd, nil
	case "even", "e":
		return ParityEven, nil
	}
	return "", fmt.Errorf("%w: parity must be none, odd or even, got %q", ErrInvalidFraming, s)
}

// Framing is the byte-level encoding contract of the link.
type Framing struct {
	BaudRate int
	DataBits int
	StopBits int
	Parity   Parity
}

// DefaultFraming returns 115200 8N1.
func DefaultFraming() Framing {
	return Framing{
		BaudRate: DefaultBaudRate,
		DataBits: 8,
		StopBits: 1,
		Parity:   ParityNone,
	}
}

// Validate checks f against the values a UART accepts.
func (f Framing) Validate() error {
	if f.BaudRate <= 0 {
		return fmt.Errorf("%w: baud rate must be positive, got %d", ErrInvalidFraming, f.BaudRate)
	}
	switch f.DataBits {
	case 5, 6, 7, 8:
	default:
		return fmt.Errorf("%w: data bits must be 5, 6, 7 or 8, got %d", ErrInvalidFraming, f.DataBits)
	}
	switch f.StopBits {
	case 1, 2:
	default:
		return fmt.Errorf("%w: stop bits must be 1 or 2, got %d", ErrInvalidFraming, f.StopBits)
	}
	switch f.Parity {
	case ParityNone, ParityOdd, ParityEven:
	default:
		return fmt.Errorf("%w: parity must be none, odd or even, got %q", ErrInvalidFraming, f.Parity)
	}
	return nil
}

// String formats f the usual way, e.g. "115200 8N1".
func (f Framing) String() string {
	p := "N"
	switch f.Parity {
	case ParityOdd:
		p = "O"
	case ParityEven:
		p = "E"
	}
	return fmt.Sprintf("%d %d%s%d", f.BaudRate, f.DataBits, p, f.StopBits)
}

// Config describes the link to open.
type Config struct {
	// Port is a device path such as /dev/ttyUSB0 or COM3, or a ws:// or
	// wss:// URL of a serial bridge.
	Port        string
	Framing     Framing
	ReadTimeout time.Duration
}

// Validate checks c before anything is opened.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Port) == "" {
		return errors.New("port is required")
	}
	if c.ReadTimeout < 0 {
		return fmt.Errorf("read timeout must not be negative, got %s", c.ReadTimeout)
	}
	if IsBridgeURL(c.Port) {
		return nil
	}
	return c.Framing.Validate()
}

// IsBridgeURL reports whether port names a websocket serial bridge.
func IsBridgeURL(port string) bool {
	return strings.HasPrefix(port, "ws://") || strings.HasPrefix(port, "wss://")
}
