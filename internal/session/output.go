package session

import "strings"

// OutputBuffer accumulates device text received since the last line feed.
type OutputBuffer struct {
	b strings.Builder
}

// Append adds decoded text.
func (o *OutputBuffer) Append(s string) {
	o.b.WriteString(s)
}

// String returns the pending text.
func (o *OutputBuffer) String() string {
	return o.b.String()
}

// Take returns the pending text and clears the buffer.
func (o *OutputBuffer) Take() string {
	s := o.b.String()
	o.b.Reset()
	return s
}
