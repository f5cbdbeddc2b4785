package transport

import (
	"fmt"

	"go.bug.st/serial"
)

type serialLink struct {
	serial.Port
	name string
}

func (l *serialLink) Name() string {
	return l.name
}

func openSerial(cfg Config) (Link, error) {
	mode := &serial.Mode{
		BaudRate: cfg.Framing.BaudRate,
		DataBits: cfg.Framing.DataBits,
		Parity:   serialParity(cfg.Framing.Parity),
		StopBits: serial.OneStopBit,
	}
	if cfg.Framing.StopBits == 2 {
		mode.StopBits = serial.TwoStopBits
	}

	port, err := serial.Open(cfg.Port, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Port, err)
	}
	if err := port.SetReadTimeout(cfg.ReadTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("set read timeout on %s: %w", cfg.Port, err)
	}
	return &serialLink{Port: port, name: cfg.Port}, nil
}

func serialParity(p Parity) serial.Parity {
	switch p {
	case ParityOdd:
		return serial.OddParity
	case ParityEven:
		return serial.EvenParity
	}
	return serial.NoParity
}
