package history

import "time"

// Direction tags where a message came from.
type Direction int

const (
	// OperatorInput is a line the operator submitted to the device.
	OperatorInput Direction = iota
	// DeviceOutput is a line received from the device.
	DeviceOutput
	// SystemNotice is status text produced by the terminal itself.
	SystemNotice
)

func (d Direction) String() string {
	switch d {
	case OperatorInput:
		return "operator-input"
	case DeviceOutput:
		return "device-output"
	case SystemNotice:
		return "system-notice"
	}
	return "unknown"
}

// Message is a single history entry. It is a value type and is never
// modified once pushed.
type Message struct {
	Direction Direction
	Text      string
	Time      time.Time
}

// NewMessage creates a message stamped with at.
func NewMessage(d Direction, text string, at time.Time) Message {
	return Message{Direction: d, Text: text, Time: at}
}
