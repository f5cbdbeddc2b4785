package session

import (
	"errors"
	"testing"
)

func TestParseCharset(t *testing.T) {
	tests := []struct {
		in      string
		want    Charset
		wantErr bool
	}{
		{"", UTF8, false},
		{"UTF-8", UTF8, false},
		{"utf8", UTF8, false},
		{"latin1", Latin1, false},
		{"ISO-8859-1", Latin1, false},
		{"ascii", ASCII, false},
		{"ebcdic", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCharset(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownCharset) {
					t.Fatalf("expected ErrUnknownCharset, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("ParseCharset(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDecodeWithFlush(t *testing.T) {
	tests := []struct {
		name        string
		cs          Charset
		in          []byte
		want        string
		wantDropped int
	}{
		{"utf8 valid", UTF8, []byte("ok ✓"), "ok ✓", 0},
		{"utf8 invalid byte", UTF8, []byte{'a', 0xff, 'b'}, "ab", 1},
		{"utf8 truncated tail", UTF8, []byte{'a', 0xe2, 0x9c}, "a", 2},
		{"utf8 bad continuation", UTF8, []byte{0xe2, 'x'}, "x", 1},
		{"latin1 high bytes", Latin1, []byte{'c', 0xe9}, "cé", 0},
		{"ascii high bytes", ASCII, []byte{'o', 0x80, 'k'}, "ok", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDecoder(tt.cs)
			got, dropped := d.Decode(tt.in)
			dropped += d.Flush()
			if got != tt.want || dropped != tt.wantDropped {
				t.Fatalf("Decode = (%q, %d), want (%q, %d)", got, dropped, tt.want, tt.wantDropped)
			}
		})
	}
}

func TestDecoderReassemblesSplitRune(t *testing.T) {
	d := NewDecoder(UTF8)
	var out string
	for _, c := range []byte("✓!") {
		text, dropped := d.Decode([]byte{c})
		if dropped != 0 {
			t.Fatalf("unexpected drop at byte %#x", c)
		}
		out += text
	}
	if out != "✓!" {
		t.Fatalf("expected '✓!', got %q", out)
	}
	if n := d.Flush(); n != 0 {
		t.Fatalf("expected nothing held back, got %d", n)
	}
}

func TestDecoderFlush(t *testing.T) {
	d := NewDecoder(UTF8)
	d.Decode([]byte{0xe2, 0x9c})
	if n := d.Flush(); n != 2 {
		t.Fatalf("expected 2 flushed bytes, got %d", n)
	}
	if text, _ := d.Decode([]byte("a")); text != "a" {
		t.Fatalf("expected 'a' after flush, got %q", text)
	}
}

func TestEncode(t *testing.T) {
	tests := []struct {
		name        string
		cs          Charset
		in          string
		want        string
		wantDropped int
	}{
		{"utf8", UTF8, "hé\n", "hé\n", 0},
		{"utf8 invalid", UTF8, "a\xffb", "ab", 1},
		{"latin1", Latin1, "hé✓", "h\xe9", 1},
		{"ascii", ASCII, "hé!", "h!", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, dropped := Encode(tt.cs, tt.in)
			if string(got) != tt.want || dropped != tt.wantDropped {
				t.Fatalf("Encode = (%q, %d), want (%q, %d)", got, dropped, tt.want, tt.wantDropped)
			}
		})
	}
}
