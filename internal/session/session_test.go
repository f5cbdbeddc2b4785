package session

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/private-landing/uartterm/internal/history"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestSession(w *bytes.Buffer, capacity int) *Session {
	return New(w, history.New(capacity), DefaultConfig(), WithClock(func() time.Time { return epoch }))
}

func typeText(t *testing.T, s *Session, text string) {
	t.Helper()
	for _, r := range text {
		quit, err := s.HandleKey(Key{Kind: KeyChar, Rune: r})
		require.NoError(t, err)
		require.False(t, quit)
	}
}

type failingWriter struct{ err error }

func (f failingWriter) Write([]byte) (int, error) { return 0, f.err }

func TestSubmitWritesAndRecords(t *testing.T) {
	var link bytes.Buffer
	s := newTestSession(&link, history.DefaultCapacity)

	typeText(t, s, "hi")
	quit, err := s.HandleKey(Key{Kind: KeySubmit})
	require.NoError(t, err)
	require.False(t, quit)

	require.Equal(t, "hi\n", link.String())
	require.Equal(t, "", s.Input())
	first, ok := s.History().At(0)
	require.True(t, ok)
	require.Equal(t, history.NewMessage(history.OperatorInput, "hi", epoch), first)
}

func TestSubmitEmptyInputDoesNothing(t *testing.T) {
	var link bytes.Buffer
	s := newTestSession(&link, 5)

	_, err := s.HandleKey(Key{Kind: KeySubmit})
	require.NoError(t, err)
	require.Zero(t, link.Len())
	require.Zero(t, s.History().Len())
}

func TestSubmitWriteErrorKeepsInput(t *testing.T) {
	boom := errors.New("device gone")
	s := New(failingWriter{boom}, history.New(5), DefaultConfig())
	typeText(t, s, "cmd")

	_, err := s.HandleKey(Key{Kind: KeySubmit})
	require.ErrorIs(t, err, boom)
	require.Equal(t, "cmd", s.Input())
	require.Zero(t, s.History().Len())
}

func TestSubmitDropsUnencodable(t *testing.T) {
	var link bytes.Buffer
	cfg := DefaultConfig()
	cfg.Charset = ASCII
	s := New(&link, history.New(5), cfg)
	typeText(t, s, "aé")

	_, err := s.HandleKey(Key{Kind: KeySubmit})
	require.NoError(t, err)
	require.Equal(t, "a\n", link.String())
	require.Equal(t, 1, s.Dropped())
	m, _ := s.History().At(0)
	require.Equal(t, "aé", m.Text)
}

func TestCancelQuits(t *testing.T) {
	s := newTestSession(&bytes.Buffer{}, 5)
	typeText(t, s, "x")
	quit, err := s.HandleKey(Key{Kind: KeyCancel})
	require.NoError(t, err)
	require.True(t, quit)
	require.Equal(t, "x", s.Input())
}

func TestDeleteOnEmptyInput(t *testing.T) {
	s := newTestSession(&bytes.Buffer{}, 5)
	quit, err := s.HandleKey(Key{Kind: KeyDelete})
	require.NoError(t, err)
	require.False(t, quit)
	require.Equal(t, "", s.Input())
	require.Zero(t, s.History().Len())
}

func TestDeleteRemovesLastChar(t *testing.T) {
	s := newTestSession(&bytes.Buffer{}, 5)
	typeText(t, s, "abc")
	_, _ = s.HandleKey(Key{Kind: KeyDelete})
	require.Equal(t, "ab", s.Input())
}

func TestUnknownKeyIgnored(t *testing.T) {
	s := newTestSession(&bytes.Buffer{}, 5)
	typeText(t, s, "ab")
	quit, err := s.HandleKey(Key{Kind: KeyNone})
	require.NoError(t, err)
	require.False(t, quit)
	require.Equal(t, "ab", s.Input())
}

func TestInputCappedAtMax(t *testing.T) {
	s := newTestSession(&bytes.Buffer{}, 5)
	typeText(t, s, "0123456789abcdefghij")
	require.Equal(t, "0123456789abcde", s.Input())
}

func TestFeedLineFlushes(t *testing.T) {
	s := newTestSession(&bytes.Buffer{}, 5)
	s.Feed([]byte("o"))
	s.Feed([]byte("k"))
	require.Equal(t, "ok", s.PendingOutput())
	require.Zero(t, s.History().Len())

	s.Feed([]byte("\n"))
	require.Equal(t, "", s.PendingOutput())
	m, ok := s.History().At(0)
	require.True(t, ok)
	require.Equal(t, history.DeviceOutput, m.Direction)
	require.Equal(t, "ok", m.Text)
}

func TestFeedEmptyLineStillRecorded(t *testing.T) {
	s := newTestSession(&bytes.Buffer{}, 5)
	s.Feed([]byte("\n"))
	m, ok := s.History().At(0)
	require.True(t, ok)
	require.Equal(t, "", m.Text)
}

func TestFeedMultipleLinesInOneChunk(t *testing.T) {
	s := newTestSession(&bytes.Buffer{}, 5)
	s.Feed([]byte("one\r\ntwo\nthr"))

	got := []string{}
	for m := range s.History().All() {
		got = append(got, m.Text)
	}
	require.Equal(t, []string{"two", "one"}, got)
	require.Equal(t, "thr", s.PendingOutput())
}

func TestFeedDropsInvalidBytes(t *testing.T) {
	s := newTestSession(&bytes.Buffer{}, 5)
	s.Feed([]byte{'o', 0xff, 'k', '\n'})
	m, _ := s.History().At(0)
	require.Equal(t, "ok", m.Text)
	require.Equal(t, 1, s.Dropped())
}

func TestFeedIncompleteRuneAtLineEndDropped(t *testing.T) {
	s := newTestSession(&bytes.Buffer{}, 5)
	s.Feed([]byte{'a', 0xe2, '\n', 'b', '\n'})
	require.Equal(t, 1, s.Dropped())
	m, _ := s.History().At(0)
	require.Equal(t, "b", m.Text)
	m, _ = s.History().At(1)
	require.Equal(t, "a", m.Text)
}

func TestInterleavedOrderPreserved(t *testing.T) {
	var link bytes.Buffer
	s := newTestSession(&link, 10)

	s.Feed([]byte("boot\n"))
	typeText(t, s, "ping")
	_, err := s.HandleKey(Key{Kind: KeySubmit})
	require.NoError(t, err)
	s.Feed([]byte("pong\n"))
	s.Notice("Serial connection %s.", "lost")

	var got []history.Message
	for m := range s.History().All() {
		got = append(got, m)
	}
	require.Len(t, got, 4)
	require.Equal(t, history.SystemNotice, got[0].Direction)
	require.Equal(t, "Serial connection lost.", got[0].Text)
	require.Equal(t, "pong", got[1].Text)
	require.Equal(t, history.OperatorInput, got[2].Direction)
	require.Equal(t, "boot", got[3].Text)
}

func TestSetWriterSwapsTransport(t *testing.T) {
	var first, second bytes.Buffer
	s := newTestSession(&first, 5)
	s.SetWriter(&second)
	typeText(t, s, "x")
	_, err := s.HandleKey(Key{Kind: KeySubmit})
	require.NoError(t, err)
	require.Zero(t, first.Len())
	require.Equal(t, "x\n", second.String())
}
