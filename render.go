package voxchat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))

	youStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	assistantStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	systemStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("8"))

	audioControlStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	audioStatusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	pulsingStyle      = lipgloss.NewStyle().Blink(true)
	errorStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	statusStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	helpStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// formatAllMessages renders the chat transcript for the viewport.
func (m *Model) formatAllMessages() string {
	var b strings.Builder
	for i, msg := range m.messages {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.formatMessage(msg))
	}
	return b.String()
}

func (m *Model) formatMessage(msg Message) string {
	var style lipgloss.Style
	switch msg.Sender {
	case senderYou:
		style = youStyle
	case senderAssistant:
		style = assistantStyle
	default:
		style = systemStyle
	}

	var b strings.Builder
	b.WriteString(style.Render(string(msg.Sender) + ":"))
	if controls := m.renderAudioControls(msg); controls != "" {
		b.WriteString(" ")
		b.WriteString(controls)
	}
	b.WriteString("\n")
	b.WriteString(msg.Content)
	b.WriteString("\n")
	return b.String()
}
