package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/private-landing/uartterm/internal/history"
)

var (
	TitleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5"))
	DimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	PromptStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	HeaderStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5"))
	SeparatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	OperatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4EEE94")) // seagreen2
	DeviceStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#40E0D0")) // turquoise
	NoticeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")) // gold
)

// StyleFor returns the style a message of direction d is drawn with.
func StyleFor(d history.Direction) lipgloss.Style {
	switch d {
	case history.OperatorInput:
		return OperatorStyle
	case history.DeviceOutput:
		return DeviceStyle
	}
	return NoticeStyle
}
