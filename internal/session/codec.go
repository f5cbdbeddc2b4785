package session

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// ErrUnknownCharset is returned by ParseCharset for unsupported names.
var ErrUnknownCharset = errors.New("unknown charset")

// Charset selects how bytes on the link map to text.
type Charset string

const (
	UTF8   Charset = "utf-8"
	Latin1 Charset = "latin1"
	ASCII  Charset = "ascii"
)

// ParseCharset normalizes a charset name.
func ParseCharset(name string) (Charset, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return UTF8, nil
	case "latin1", "latin-1", "iso-8859-1", "iso8859-1":
		return Latin1, nil
	case "ascii", "us-ascii":
		return ASCII, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCharset, name)
}

// Decoder turns link bytes into text, dropping sequences that are not valid
// in its charset. A multi-byte sequence split across calls is held back until
// it completes.
type Decoder struct {
	charset Charset
	pending []byte
}

// NewDecoder returns a streaming decoder for cs.
func NewDecoder(cs Charset) *Decoder {
	return &Decoder{charset: cs}
}

// Decode returns the text decoded from p and the number of bytes dropped.
func (d *Decoder) Decode(p []byte) (string, int) {
	switch d.charset {
	case Latin1:
		return decodeLatin1(p), 0
	case ASCII:
		return decodeASCII(p)
	}

	buf := p
	if len(d.pending) > 0 {
		buf = append(d.pending, p...)
		d.pending = nil
	}

	var b strings.Builder
	dropped := 0
	for len(buf) > 0 {
		r, size := utf8.DecodeRune(buf)
		if r == utf8.RuneError && size <= 1 {
			if !utf8.FullRune(buf) {
				d.pending = append([]byte(nil), buf...)
				break
			}
			dropped++
			buf = buf[1:]
			continue
		}
		b.WriteRune(r)
		buf = buf[size:]
	}
	return b.String(), dropped
}

// Flush discards an incomplete held-back sequence and returns its length.
func (d *Decoder) Flush() int {
	n := len(d.pending)
	d.pending = nil
	return n
}

// Encode converts text for the link, dropping characters cs cannot
// represent. It returns the encoded bytes and the number of characters
// dropped.
func Encode(cs Charset, text string) ([]byte, int) {
	out := make([]byte, 0, len(text))
	dropped := 0
	for len(text) > 0 {
		r, size := utf8.DecodeRuneInString(text)
		text = text[size:]
		if r == utf8.RuneError && size <= 1 {
			dropped++
			continue
		}
		switch cs {
		case Latin1:
			c, ok := charmap.ISO8859_1.EncodeRune(r)
			if !ok {
				dropped++
				continue
			}
			out = append(out, c)
		case ASCII:
			if r >= utf8.RuneSelf {
				dropped++
				continue
			}
			out = append(out, byte(r))
		default:
			out = utf8.AppendRune(out, r)
		}
	}
	return out, dropped
}

func decodeLatin1(p []byte) string {
	var b strings.Builder
	for _, c := range p {
		b.WriteRune(charmap.ISO8859_1.DecodeByte(c))
	}
	return b.String()
}

func decodeASCII(p []byte) (string, int) {
	var b strings.Builder
	dropped := 0
	for _, c := range p {
		if c >= utf8.RuneSelf {
			dropped++
			continue
		}
		b.WriteByte(c)
	}
	return b.String(), dropped
}
