package transport

import (
	"errors"
	"testing"
)

func TestFramingValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Framing)
		wantErr bool
	}{
		{"default", func(*Framing) {}, false},
		{"five data bits", func(f *Framing) { f.DataBits = 5 }, false},
		{"two stop bits", func(f *Framing) { f.StopBits = 2 }, false},
		{"even parity", func(f *Framing) { f.Parity = ParityEven }, false},
		{"zero baud", func(f *Framing) { f.BaudRate = 0 }, true},
		{"nine data bits", func(f *Framing) { f.DataBits = 9 }, true},
		{"four data bits", func(f *Framing) { f.DataBits = 4 }, true},
		{"three stop bits", func(f *Framing) { f.StopBits = 3 }, true},
		{"mark parity", func(f *Framing) { f.Parity = "mark" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := DefaultFraming()
			tt.mutate(&f)
			err := f.Validate()
			if tt.wantErr && !errors.Is(err, ErrInvalidFraming) {
				t.Fatalf("expected ErrInvalidFraming, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestParseParity(t *testing.T) {
	tests := []struct {
		in      string
		want    Parity
		wantErr bool
	}{
		{"none", ParityNone, false},
		{"N", ParityNone, false},
		{"Odd", ParityOdd, false},
		{"e", ParityEven, false},
		{"space", "", true},
	}
	for _, tt := range tests {
		got, err := ParseParity(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseParity(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseParity(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFramingString(t *testing.T) {
	f := Framing{BaudRate: 9600, DataBits: 7, StopBits: 2, Parity: ParityEven}
	if got := f.String(); got != "9600 7E2" {
		t.Fatalf("expected '9600 7E2', got %q", got)
	}
	if got := DefaultFraming().String(); got != "115200 8N1" {
		t.Fatalf("expected '115200 8N1', got %q", got)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (Config{Framing: DefaultFraming()}).Validate(); err == nil {
		t.Fatal("expected error for empty port")
	}
	if err := (Config{Port: "/dev/ttyUSB0", Framing: DefaultFraming()}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Framing is the bridge's business.
	if err := (Config{Port: "ws://localhost:8080/uart"}).Validate(); err != nil {
		t.Fatalf("unexpected error for bridge URL: %v", err)
	}
	if err := (Config{Port: "/dev/ttyUSB0", Framing: DefaultFraming(), ReadTimeout: -1}).Validate(); err == nil {
		t.Fatal("expected error for negative timeout")
	}
}

func TestIsBridgeURL(t *testing.T) {
	for port, want := range map[string]bool{
		"ws://host/uart":  true,
		"wss://host/uart": true,
		"/dev/ttyUSB0":    false,
		"COM3":            false,
	} {
		if got := IsBridgeURL(port); got != want {
			t.Errorf("IsBridgeURL(%q) = %v, want %v", port, got, want)
		}
	}
}
