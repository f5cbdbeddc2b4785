package main

import (
	"unicode"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/private-landing/uartterm/internal/session"
)

type keyMap struct {
	Submit key.Binding
	Cancel key.Binding
	Delete key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send line")),
		Cancel: key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "quit")),
		Delete: key.NewBinding(key.WithKeys("backspace", "ctrl+h"), key.WithHelp("backspace", "delete")),
	}
}

func (k keyMap) bindings() []key.Binding {
	return []key.Binding{k.Submit, k.Delete, k.Cancel}
}

// classify turns a terminal key message into session key events. A paste
// arrives as one message with many runes; control characters in it are
// dropped so a pasted newline never reaches the device mid-line.
func (k keyMap) classify(msg tea.KeyMsg) []session.Key {
	switch {
	case key.Matches(msg, k.Submit):
		return []session.Key{{Kind: session.KeySubmit}}
	case key.Matches(msg, k.Cancel):
		return []session.Key{{Kind: session.KeyCancel}}
	case key.Matches(msg, k.Delete):
		return []session.Key{{Kind: session.KeyDelete}}
	}

	switch msg.Type {
	case tea.KeySpace:
		return []session.Key{{Kind: session.KeyChar, Rune: ' '}}
	case tea.KeyRunes:
		if msg.Alt {
			break
		}
		keys := make([]session.Key, 0, len(msg.Runes))
		for _, r := range msg.Runes {
			if !unicode.IsPrint(r) {
				continue
			}
			keys = append(keys, session.Key{Kind: session.KeyChar, Rune: r})
		}
		if len(keys) > 0 {
			return keys
		}
	}
	return []session.Key{{Kind: session.KeyNone}}
}
