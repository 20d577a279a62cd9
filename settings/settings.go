// Package settings renders the audio settings side panel.
package settings

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Voices lists the selectable synthesis voices.
var Voices = []string{"alloy", "echo", "fable", "onyx", "nova", "shimmer"}

const (
	rowVoice = iota
	rowRate
	rowGrain
	rowOverlap
	rowAudio
	rowCount
)

// Model represents the settings panel state. The parent reads the exported
// fields after Update to apply changes.
type Model struct {
	Width   int
	Height  int
	Focused bool

	Voice        string
	PlaybackRate float64
	GrainSize    float64
	Overlap      float64
	AudioEnabled bool

	selected int
}

// New creates a new settings model with playback defaults.
func New() Model {
	return Model{
		Voice:        Voices[0],
		PlaybackRate: 1.0,
		GrainSize:    0.1,
		Overlap:      0.1,
		AudioEnabled: true,
	}
}

// Init initializes the settings model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles updating the settings model
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width / 3
		m.Height = msg.Height
	case tea.KeyMsg:
		if !m.Focused {
			return m, nil
		}
		switch msg.String() {
		case "esc":
			m.Focused = false
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
		case "down", "j":
			if m.selected < rowCount-1 {
				m.selected++
			}
		case "left", "h":
			m.adjust(-1)
		case "right", "l":
			m.adjust(1)
		}
	}

	return m, nil
}

// adjust moves the selected setting one step in the given direction.
func (m *Model) adjust(dir int) {
	switch m.selected {
	case rowVoice:
		idx := 0
		for i, v := range Voices {
			if v == m.Voice {
				idx = i
				break
			}
		}
		idx = (idx + dir + len(Voices)) % len(Voices)
		m.Voice = Voices[idx]
	case rowRate:
		m.PlaybackRate = clamp(m.PlaybackRate+0.25*float64(dir), 0.25, 4.0)
	case rowGrain:
		m.GrainSize = clamp(m.GrainSize+0.02*float64(dir), 0.02, 0.5)
	case rowOverlap:
		m.Overlap = clamp(m.Overlap+0.05*float64(dir), 0, 0.5)
	case rowAudio:
		m.AudioEnabled = !m.AudioEnabled
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// View renders the settings panel
func (m Model) View() string {
	if !m.Focused {
		return ""
	}

	style := lipgloss.NewStyle().
		Width(m.Width).
		Height(m.Height).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(1, 2)

	rows := []string{
		fmt.Sprintf("Voice:    %s", m.Voice),
		fmt.Sprintf("Rate:     %.2fx", m.PlaybackRate),
		fmt.Sprintf("Grain:    %.0fms", m.GrainSize*1000),
		fmt.Sprintf("Overlap:  %.0f%%", m.Overlap*100),
		fmt.Sprintf("Audio:    %t", m.AudioEnabled),
	}

	content := "Audio Settings\n\n"
	for i, row := range rows {
		cursor := "  "
		if i == m.selected {
			cursor = "> "
		}
		content += cursor + row + "\n"
	}
	content += "\n↑/↓ select  ←/→ adjust  ESC close"

	return style.Render(content)
}

// Focus sets focus on the settings panel
func (m *Model) Focus() {
	m.Focused = true
}

// Blur removes focus from the settings panel
func (m *Model) Blur() {
	m.Focused = false
}

// IsFocused returns whether the settings panel is focused
func (m Model) IsFocused() bool {
	return m.Focused
}
