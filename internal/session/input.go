package session

import "unicode/utf8"

// DefaultMaxInput is the longest pending input line, in characters.
const DefaultMaxInput = 15

// InputBuffer manages the operator's pending input line.
type InputBuffer struct {
	Value string
	// Max caps the number of characters held. Zero means DefaultMaxInput.
	Max int
}

func (b *InputBuffer) limit() int {
	if b.Max <= 0 {
		return DefaultMaxInput
	}
	return b.Max
}

// Len reports the number of characters in the buffer.
func (b *InputBuffer) Len() int {
	return utf8.RuneCountInString(b.Value)
}

// Append adds runes to the buffer until it is full and returns how many
// were taken.
func (b *InputBuffer) Append(runes []rune) int {
	room := b.limit() - b.Len()
	if room <= 0 || len(runes) == 0 {
		return 0
	}
	if len(runes) > room {
		runes = runes[:room]
	}
	b.Value += string(runes)
	return len(runes)
}

// Backspace removes the last character.
func (b *InputBuffer) Backspace() {
	if len(b.Value) > 0 {
		_, size := utf8.DecodeLastRuneInString(b.Value)
		b.Value = b.Value[:len(b.Value)-size]
	}
}

// Clear resets the buffer.
func (b *InputBuffer) Clear() {
	b.Value = ""
}
