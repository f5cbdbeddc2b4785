package history

import "iter"

// DefaultCapacity is the number of messages kept when no capacity is given.
const DefaultCapacity = 50

// Buffer holds the most recent messages, newest first. Once full, each push
// evicts the oldest entry before inserting the new one.
//
// Buffer is not safe for concurrent use; it is owned by the session loop.
type Buffer struct {
	ring  []Message
	head  int // index of the newest entry
	count int
}

// New returns an empty buffer holding at most capacity messages.
// Capacities below one are clamped to one.
func New(capacity int) *Buffer {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer{
		ring: make([]Message, capacity),
		head: -1,
	}
}

// Push inserts m as the newest entry.
func (b *Buffer) Push(m Message) {
	// The slot after head is the oldest entry when full, so writing there
	// evicts it.
	b.head = (b.head + 1) % len(b.ring)
	b.ring[b.head] = m
	if b.count < len(b.ring) {
		b.count++
	}
}

// Len reports the number of stored messages.
func (b *Buffer) Len() int {
	return b.count
}

// Cap reports the maximum number of stored messages.
func (b *Buffer) Cap() int {
	return len(b.ring)
}

// At returns the i-th newest message; At(0) is the most recent.
func (b *Buffer) At(i int) (Message, bool) {
	if i < 0 || i >= b.count {
		return Message{}, false
	}
	n := len(b.ring)
	return b.ring[((b.head-i)%n+n)%n], true
}

// All yields the stored messages from newest to oldest. The sequence can be
// ranged over any number of times and does not modify the buffer.
func (b *Buffer) All() iter.Seq[Message] {
	return func(yield func(Message) bool) {
		for i := 0; i < b.count; i++ {
			m, _ := b.At(i)
			if !yield(m) {
				return
			}
		}
	}
}
