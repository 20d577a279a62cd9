// Package voxchat is a terminal chat client with spoken replies: assistant
// messages are synthesized to audio and played back with adjustable speed.
package voxchat

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/jamalbot204/voxchat/audioplayer"
	"github.com/jamalbot204/voxchat/llm"
	"github.com/jamalbot204/voxchat/playback"
	"github.com/jamalbot204/voxchat/settings"
	"github.com/jamalbot204/voxchat/tts"
)

// uiUpdateBuffer bounds how many pending UI updates can queue before
// coalescing: progress ticks arrive faster than the terminal repaints.
const uiUpdateBuffer = 256

// New creates a new Model with default settings and applies the given
// options.
func New(opts ...Option) (*Model, error) {
	ta := textarea.New()
	ta.Placeholder = "Type a message..."
	ta.Focus()
	ta.Prompt = "┃ "
	ta.CharLimit = 0
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	m := &Model{
		textarea:      ta,
		viewport:      viewport.New(0, 0),
		spinner:       sp,
		enableAudio:   true,
		ttsSettings:   tts.DefaultSettings(),
		settingsPanel: settings.New(),
		uiUpdateChan:  make(chan tea.Msg, uiUpdateBuffer),
	}

	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}

	m.controller = playback.NewController(playback.ControllerConfig{
		Engine:   audioplayer.NewEngine(audioplayer.NewSink()),
		Fetcher:  m.fetcher,
		Cache:    m.cache,
		Settings: m.ttsSettings,
	})
	m.settingsPanel.Voice = m.ttsSettings.Voice

	// Playback state changes arrive from engine goroutines; funnel them
	// through the update channel so the UI loop stays the only writer.
	m.controller.Store().SetOnChange(func(st playback.State) {
		select {
		case m.uiUpdateChan <- playbackStateMsg(st):
		default:
		}
	})

	return m, nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.listenUIUpdates())
}

// listenUIUpdates forwards the next queued background message to Update.
func (m *Model) listenUIUpdates() tea.Cmd {
	return func() tea.Msg {
		return <-m.uiUpdateChan
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - m.textarea.Height() - 4
		m.textarea.SetWidth(msg.Width - 2)
		m.settingsPanel, _ = m.settingsPanel.Update(msg)
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}

	case assistantReplyMsg:
		m.sending = false
		reply := Message{
			ID:        uuid.New().String(),
			Sender:    senderAssistant,
			Content:   msg.text,
			Parts:     tts.SplitText(msg.text, tts.MaxPartLength),
			Timestamp: time.Now(),
		}
		m.messages = append(m.messages, reply)
		m.refreshViewport()
		m.viewport.GotoBottom()
		if m.enableAudio && m.fetcher != nil {
			m.controller.PlaySegment(reply.playable(), -1)
		}
		return m, nil

	case assistantErrorMsg:
		m.sending = false
		m.err = msg.err
		m.messages = append(m.messages, Message{
			ID:        uuid.New().String(),
			Sender:    senderSystem,
			Content:   fmt.Sprintf("Error: %v", msg.err),
			Timestamp: time.Now(),
		})
		m.refreshViewport()
		return m, nil

	case playbackStateMsg:
		m.refreshViewport()
		return m, m.listenUIUpdates()

	case spinner.TickMsg:
		if m.sending {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleKey resolves global key bindings. Returns handled=false for keys the
// focused component should consume instead.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if m.showSettings && m.settingsPanel.IsFocused() {
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return tea.Quit, true
		case "esc", "ctrl+s":
			m.closeSettings()
			return nil, true
		}
		m.settingsPanel, _ = m.settingsPanel.Update(msg)
		m.applySettings()
		return nil, true
	}

	switch msg.String() {
	case "ctrl+c", "esc":
		m.quitting = true
		m.controller.Stop()
		return tea.Quit, true
	case "enter":
		return m.sendMessage(), true
	case "ctrl+s":
		m.openSettings()
		return nil, true
	case "ctrl+p":
		m.togglePlayback()
		return nil, true
	case "ctrl+x":
		m.stopOrCancel()
		return nil, true
	case "ctrl+o":
		m.exportLastAudio()
		return nil, true
	case "shift+left":
		m.controller.SeekRelative(-5)
		return nil, true
	case "shift+right":
		m.controller.SeekRelative(5)
		return nil, true
	case "ctrl+up":
		m.stepRate(0.25)
		return nil, true
	case "ctrl+down":
		m.stepRate(-0.25)
		return nil, true
	}
	return nil, false
}

func (m *Model) openSettings() {
	m.showSettings = true
	snap := m.controller.Store().Snapshot()
	m.settingsPanel.PlaybackRate = snap.PlaybackRate
	m.settingsPanel.GrainSize = snap.GrainSize
	m.settingsPanel.Overlap = snap.Overlap
	m.settingsPanel.AudioEnabled = m.enableAudio
	m.settingsPanel.Voice = m.controller.TTSSettings().Voice
	m.settingsPanel.Focus()
}

func (m *Model) closeSettings() {
	m.showSettings = false
	m.settingsPanel.Blur()
}

// applySettings pushes the panel's values into the playback core.
func (m *Model) applySettings() {
	m.controller.SetPlaybackRate(m.settingsPanel.PlaybackRate)
	m.controller.SetGrainSize(m.settingsPanel.GrainSize)
	m.controller.SetOverlap(m.settingsPanel.Overlap)
	m.enableAudio = m.settingsPanel.AudioEnabled

	s := m.controller.TTSSettings()
	if s.Voice != m.settingsPanel.Voice {
		s.Voice = m.settingsPanel.Voice
		m.controller.SetTTSSettings(s)
	}
}

func (m *Model) stepRate(delta float64) {
	rate := m.controller.Store().Snapshot().PlaybackRate + delta
	if rate < 0.25 {
		rate = 0.25
	}
	if rate > 4.0 {
		rate = 4.0
	}
	m.controller.SetPlaybackRate(rate)
}

// sendMessage submits the textarea content to the assistant.
func (m *Model) sendMessage() tea.Cmd {
	text := strings.TrimSpace(m.textarea.Value())
	if text == "" || m.sending {
		return nil
	}
	if m.assistant == nil {
		m.err = fmt.Errorf("no assistant configured")
		return nil
	}

	m.messages = append(m.messages, Message{
		ID:        uuid.New().String(),
		Sender:    senderYou,
		Content:   text,
		Timestamp: time.Now(),
	})
	m.textarea.Reset()
	m.sending = true
	m.refreshViewport()
	m.viewport.GotoBottom()

	turns := m.historyTurns()
	assistant := m.assistant
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		reply, err := assistant.Reply(context.Background(), turns)
		if err != nil {
			log.Printf("[CHAT] Assistant request failed: %v", err)
			return assistantErrorMsg{err: err}
		}
		return assistantReplyMsg{text: reply}
	})
}

// historyTurns converts the chat transcript to model input, skipping system
// notices.
func (m *Model) historyTurns() []llm.Turn {
	turns := make([]llm.Turn, 0, len(m.messages)+1)
	if m.systemPrompt != "" {
		turns = append(turns, llm.Turn{Role: llm.RoleSystem, Content: m.systemPrompt})
	}
	for _, msg := range m.messages {
		switch msg.Sender {
		case senderYou:
			turns = append(turns, llm.Turn{Role: llm.RoleUser, Content: msg.Content})
		case senderAssistant:
			turns = append(turns, llm.Turn{Role: llm.RoleAssistant, Content: msg.Content})
		}
	}
	return turns
}

func (m *Model) refreshViewport() {
	m.viewport.SetContent(m.formatAllMessages())
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return "Goodbye.\n"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("voxchat"))
	b.WriteString("\n")

	main := m.viewport.View()
	if m.showSettings {
		main = lipgloss.JoinHorizontal(lipgloss.Top, main, m.settingsPanel.View())
	}
	b.WriteString(main)
	b.WriteString("\n")

	if status := m.renderAudioStatus(); status != "" {
		b.WriteString(status)
		b.WriteString("\n")
	}

	if m.sending {
		b.WriteString(statusStyle.Render(m.spinner.View() + " Waiting for reply..."))
		b.WriteString("\n")
	}

	b.WriteString(m.textarea.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter send · ctrl+p play/pause · ctrl+x stop · shift+←/→ seek · ctrl+↑/↓ speed · ctrl+o export wav · ctrl+s settings · ctrl+c quit"))
	return b.String()
}
