package main

import (
	"context"
	"errors"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/private-landing/uartterm/internal/session"
	"github.com/private-landing/uartterm/internal/transport"
	"github.com/private-landing/uartterm/internal/ui"
)

const (
	noticeConnected = "Serial connection established."
	noticeLost      = "Serial connection lost."
	noticeDropped   = "Undecodable bytes dropped; check --baud and --charset."
)

var errNotConnected = errors.New("not connected")

// offlineWriter stands in for the link while waiting for the device.
type offlineWriter struct{}

func (offlineWriter) Write([]byte) (int, error) {
	return 0, errNotConnected
}

// messages

// eventMsg carries one stream event. gen identifies the link it came from so
// events of a replaced link are ignored.
type eventMsg struct {
	gen    int
	event  transport.Event
	closed bool
}

type reconnectedMsg struct {
	gen  int
	link transport.Link
}

type reconnectFailedMsg struct {
	gen int
	err error
}

type model struct {
	ctx  context.Context
	sess *session.Session
	keys keyMap
	log  *slog.Logger
	opts options

	link         transport.Link
	events       <-chan transport.Event
	stopStream   context.CancelFunc
	gen          int
	reconnecting bool
	warnedDrops  bool

	width    int
	height   int
	err      error
	quitting bool
}

func newModel(ctx context.Context, sess *session.Session, link transport.Link, opts options, log *slog.Logger) model {
	m := model{
		ctx:  ctx,
		sess: sess,
		keys: defaultKeyMap(),
		log:  log,
		opts: opts,
	}
	m.attach(link)
	return m
}

// attach makes link the active transport and starts reading it.
func (m *model) attach(link transport.Link) {
	m.gen++
	m.link = link
	m.sess.SetWriter(link)
	streamCtx, cancel := context.WithCancel(m.ctx)
	m.stopStream = cancel
	m.events = transport.Stream(streamCtx, link, transport.DefaultStreamSize)
}

func (m model) Init() tea.Cmd {
	return waitForEvent(m.gen, m.events)
}

func waitForEvent(gen int, ch <-chan transport.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		return eventMsg{gen: gen, event: ev, closed: !ok}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case eventMsg:
		return m.handleEvent(msg)
	case reconnectedMsg:
		if msg.gen != m.gen {
			msg.link.Close()
			return m, nil
		}
		m.reconnecting = false
		m.attach(msg.link)
		m.log.Info("link reopened", "port", msg.link.Name())
		m.sess.Notice(noticeConnected)
		return m, waitForEvent(m.gen, m.events)
	case reconnectFailedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		return m.fail(msg.err)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	for _, k := range m.keys.classify(msg) {
		quit, err := m.sess.HandleKey(k)
		if quit {
			m.log.Info("operator quit")
			return m.end(nil)
		}
		if err != nil {
			return m.linkFailed(err, true)
		}
	}
	return m, nil
}

func (m model) handleEvent(msg eventMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.gen || msg.closed {
		return m, nil
	}
	if msg.event.Err != nil {
		return m.linkFailed(msg.event.Err, false)
	}
	m.sess.Feed(msg.event.Data)
	if !m.warnedDrops && m.sess.Dropped() > 0 {
		m.warnedDrops = true
		m.sess.Notice(noticeDropped)
	}
	return m, waitForEvent(m.gen, m.events)
}

// linkFailed decides what a transport error means for the session. Write
// failures leave the pending input line in place.
func (m model) linkFailed(err error, writing bool) (tea.Model, tea.Cmd) {
	kind := transport.Classify(err)
	m.log.Warn("link error", "port", m.opts.link.Port, "kind", kind.String(), "err", err)

	if m.reconnecting {
		if writing {
			m.sess.Notice("Not connected; line kept.")
		}
		return m, nil
	}

	switch kind {
	case transport.KindTimeout:
		if writing {
			m.sess.Notice("Write timed out; line kept.")
		}
		return m, nil
	case transport.KindDisconnected:
		m.sess.Notice(noticeLost)
		m.sess.Notice("%v", err)
		if !m.opts.reconnect {
			return m.fail(err)
		}
		m.stopStream()
		m.sess.SetWriter(offlineWriter{})
		m.gen++
		m.reconnecting = true
		m.sess.Notice("Waiting for %s...", m.opts.link.Port)
		return m, reconnect(m.ctx, m.opts.link, m.gen)
	}
	return m.fail(err)
}

func reconnect(ctx context.Context, cfg transport.Config, gen int) tea.Cmd {
	return func() tea.Msg {
		link, err := transport.Reconnect(ctx, cfg, reconnectInterval)
		if err != nil {
			return reconnectFailedMsg{gen: gen, err: err}
		}
		return reconnectedMsg{gen: gen, link: link}
	}
}

func (m model) fail(err error) (tea.Model, tea.Cmd) {
	if errors.Is(err, context.Canceled) && m.ctx.Err() != nil {
		err = nil
	}
	return m.end(err)
}

func (m model) end(err error) (tea.Model, tea.Cmd) {
	m.log.Info("session ended",
		"messages", m.sess.History().Len(),
		"dropped", m.sess.Dropped(),
		"unterminated", m.sess.PendingOutput(),
	)
	m.err = err
	m.quitting = true
	m.stopStream()
	return m, tea.Quit
}

func (m model) View() string {
	if m.quitting {
		return ""
	}
	return ui.Render(ui.Screen{
		Input:      m.sess.Input(),
		Entries:    m.sess.History().All(),
		Width:      m.width,
		Height:     m.height,
		Layout:     m.opts.layout,
		Timestamps: m.opts.timestamps,
	})
}
