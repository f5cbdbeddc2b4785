package ui

import (
	"errors"
	"fmt"
	"iter"
	"strings"
	"unicode"

	"github.com/charmbracelet/x/ansi"

	"github.com/private-landing/uartterm/internal/history"
)

// ErrUnknownLayout is returned by ParseLayout for unsupported names.
var ErrUnknownLayout = errors.New("unknown layout")

// Layout selects where the input line sits.
type Layout int

const (
	// LayoutBottom puts the input on the last rows with the history above
	// the separator, newest entry closest to it.
	LayoutBottom Layout = iota
	// LayoutTop puts the input on the first rows with the history below
	// the separator, newest entry first.
	LayoutTop
)

// ParseLayout parses "bottom" or "top".
func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "bottom":
		return LayoutBottom, nil
	case "top":
		return LayoutTop, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLayout, s)
}

func (l Layout) String() string {
	if l == LayoutTop {
		return "top"
	}
	return "bottom"
}

// Screen is everything a frame is drawn from.
type Screen struct {
	Input      string
	Entries    iter.Seq[history.Message] // newest first
	Width      int
	Height     int
	Layout     Layout
	Timestamps bool
}

// Render draws s as exactly s.Height lines. It has no side effects, so the
// same Screen always renders the same frame.
func Render(s Screen) string {
	if s.Width <= 0 || s.Height <= 0 {
		return ""
	}

	input := Wrap(s.Input, s.Width)
	if len(input) > s.Height {
		input = input[len(input)-s.Height:]
	}
	room := s.Height - len(input) - 1

	var blocks [][]string // newest first, clipped to room
	for m := range entries(s.Entries) {
		if room <= 0 {
			break
		}
		lines := Wrap(entryText(m, s.Timestamps), s.Width)
		if len(lines) > room {
			if s.Layout == LayoutTop {
				lines = lines[:room]
			} else {
				lines = lines[len(lines)-room:]
			}
		}
		style := StyleFor(m.Direction)
		for i, l := range lines {
			lines[i] = style.Render(l)
		}
		blocks = append(blocks, lines)
		room -= len(lines)
	}

	out := make([]string, 0, s.Height)
	separator := ""
	if len(input) < s.Height {
		separator = SeparatorStyle.Render(strings.Repeat("─", s.Width))
	}

	switch s.Layout {
	case LayoutTop:
		out = append(out, input...)
		if separator != "" {
			out = append(out, separator)
		}
		for _, b := range blocks {
			out = append(out, b...)
		}
		for len(out) < s.Height {
			out = append(out, "")
		}
	default:
		for i := 0; i < room; i++ {
			out = append(out, "")
		}
		for i := len(blocks) - 1; i >= 0; i-- {
			out = append(out, blocks[i]...)
		}
		if separator != "" {
			out = append(out, separator)
		}
		out = append(out, input...)
	}
	return strings.Join(out, "\n")
}

func entries(seq iter.Seq[history.Message]) iter.Seq[history.Message] {
	if seq == nil {
		return func(func(history.Message) bool) {}
	}
	return seq
}

func entryText(m history.Message, timestamps bool) string {
	if !timestamps || m.Time.IsZero() {
		return m.Text
	}
	return m.Time.Format("15:04:05") + " " + m.Text
}

// Wrap breaks s into lines no wider than width, breaking long words.
// Escape sequences and control characters are removed first. An empty
// string yields a single empty line.
func Wrap(s string, width int) []string {
	s = sanitize(s)
	if s == "" || width <= 0 {
		return []string{s}
	}
	return strings.Split(ansi.Wrap(s, width, ""), "\n")
}

func sanitize(s string) string {
	s = ansi.Strip(s)
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n':
			return r
		case r == '\t':
			return ' '
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, s)
}
