package voxchat

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jamalbot204/voxchat/audiocache"
	"github.com/jamalbot204/voxchat/llm"
	"github.com/jamalbot204/voxchat/playback"
	"github.com/jamalbot204/voxchat/settings"
	"github.com/jamalbot204/voxchat/tts"
)

type senderName string

const (
	senderYou       senderName = "You"
	senderAssistant senderName = "Assistant"
	senderSystem    senderName = "System"
)

// Message represents a chat message. Assistant messages carry the synthesis
// segmentation their audio is fetched and played by.
type Message struct {
	ID        string
	Sender    senderName
	Content   string
	Parts     []string // synthesis parts; empty for messages without audio
	Timestamp time.Time
}

// playable returns the playback view of the message.
func (m Message) playable() playback.Message {
	return playback.Message{ID: m.ID, Parts: m.Parts}
}

// Model represents the state of the Bubble Tea application.
type Model struct {
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	assistant  llm.Assistant
	controller *playback.Controller

	messages []Message
	err      error
	width    int
	height   int
	sending  bool
	quitting bool

	// Configuration
	enableAudio  bool
	fetcher      tts.Fetcher
	cache        audiocache.Cache
	ttsSettings  tts.Settings
	systemPrompt string

	// New UI components
	settingsPanel settings.Model
	showSettings  bool

	// Channel for goroutines to send messages back to the UI loop
	uiUpdateChan chan tea.Msg
}

// Option defines a functional option for configuring the Model.
type Option func(*Model) error

// --- Messages ---

type assistantReplyMsg struct{ text string }
type assistantErrorMsg struct{ err error }

// playbackStateMsg carries a fresh playback state snapshot to the UI loop.
type playbackStateMsg playback.State
