// Package session holds the state the terminal loop mutates: the pending
// input line, the pending output line and the message history.
package session

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/private-landing/uartterm/internal/history"
)

// LineEnding terminates every line written to the device.
const LineEnding = "\n"

// KeyKind classifies a key event.
type KeyKind int

const (
	KeyNone KeyKind = iota
	KeySubmit
	KeyCancel
	KeyDelete
	KeyChar
)

// Key is a classified key event. Rune is set for KeyChar.
type Key struct {
	Kind KeyKind
	Rune rune
}

// Config controls session behaviour.
type Config struct {
	MaxInput   int
	Charset    Charset
	LineEnding string
}

// DefaultConfig returns the settings used when no flags are given.
func DefaultConfig() Config {
	return Config{
		MaxInput:   DefaultMaxInput,
		Charset:    UTF8,
		LineEnding: LineEnding,
	}
}

// Option customizes a Session.
type Option func(*Session)

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithClock sets the clock used to stamp messages.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// Session is the state machine behind the terminal loop. It is not safe for
// concurrent use.
type Session struct {
	cfg     Config
	w       io.Writer
	history *history.Buffer
	input   InputBuffer
	output  OutputBuffer
	dec     *Decoder
	dropped int
	log     *slog.Logger
	now     func() time.Time
}

// New creates a session writing submitted lines to w and recording messages
// in h.
func New(w io.Writer, h *history.Buffer, cfg Config, opts ...Option) *Session {
	if cfg.LineEnding == "" {
		cfg.LineEnding = LineEnding
	}
	if cfg.Charset == "" {
		cfg.Charset = UTF8
	}
	if cfg.MaxInput <= 0 {
		cfg.MaxInput = DefaultMaxInput
	}
	s := &Session{
		cfg:     cfg,
		w:       w,
		history: h,
		input:   InputBuffer{Max: cfg.MaxInput},
		dec:     NewDecoder(cfg.Charset),
		log:     slog.New(slog.DiscardHandler),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetWriter replaces the device writer, e.g. after a reconnect.
func (s *Session) SetWriter(w io.Writer) {
	s.w = w
}

// HandleKey applies one key event. It reports whether the operator asked to
// quit. A write error leaves the input line untouched and pushes nothing.
func (s *Session) HandleKey(k Key) (bool, error) {
	switch k.Kind {
	case KeySubmit:
		return false, s.submit()
	case KeyCancel:
		return true, nil
	case KeyDelete:
		s.input.Backspace()
	case KeyChar:
		s.input.Append([]rune{k.Rune})
	}
	return false, nil
}

func (s *Session) submit() error {
	text := s.input.Value
	if text == "" {
		return nil
	}
	payload, dropped := Encode(s.cfg.Charset, text+s.cfg.LineEnding)
	if dropped > 0 {
		s.dropped += dropped
		s.log.Debug("dropped unencodable characters", "count", dropped, "charset", s.cfg.Charset)
	}
	if _, err := s.w.Write(payload); err != nil {
		return fmt.Errorf("write line: %w", err)
	}
	s.log.Debug("line sent", "bytes", len(payload))
	s.push(history.OperatorInput, text)
	s.input.Clear()
	return nil
}

// Feed appends bytes received from the device. Every line feed flushes the
// pending output line into the history, even when the line is empty.
func (s *Session) Feed(p []byte) {
	for len(p) > 0 {
		i := bytes.IndexByte(p, '\n')
		chunk := p
		if i >= 0 {
			chunk = p[:i]
		}
		s.appendOutput(chunk)
		if i < 0 {
			return
		}
		if n := s.dec.Flush(); n > 0 {
			s.dropped += n
		}
		line := strings.TrimSuffix(s.output.Take(), "\r")
		s.push(history.DeviceOutput, line)
		p = p[i+1:]
	}
}

func (s *Session) appendOutput(p []byte) {
	if len(p) == 0 {
		return
	}
	text, dropped := s.dec.Decode(p)
	if dropped > 0 {
		s.dropped += dropped
		s.log.Debug("dropped undecodable bytes", "count", dropped, "charset", s.cfg.Charset)
	}
	s.output.Append(text)
}

// Notice records a system message.
func (s *Session) Notice(format string, args ...any) {
	text := fmt.Sprintf(format, args...)
	s.log.Info("notice", "text", text)
	s.push(history.SystemNotice, text)
}

func (s *Session) push(d history.Direction, text string) {
	s.history.Push(history.NewMessage(d, text, s.now()))
}

// Input returns the pending input line.
func (s *Session) Input() string {
	return s.input.Value
}

// PendingOutput returns device text not yet terminated by a line feed.
func (s *Session) PendingOutput() string {
	return s.output.String()
}

// History returns the message history.
func (s *Session) History() *history.Buffer {
	return s.history
}

// Dropped reports how many bytes or characters were discarded by the
// charset codec so far.
func (s *Session) Dropped() int {
	return s.dropped
}
