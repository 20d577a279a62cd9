package voxchat

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// lastAudioMessage returns the most recent message with synthesis parts.
func (m *Model) lastAudioMessage() (Message, bool) {
	for i := len(m.messages) - 1; i >= 0; i-- {
		if len(m.messages[i].Parts) > 0 {
			return m.messages[i], true
		}
	}
	return Message{}, false
}

// togglePlayback pauses/resumes the active segment, or starts the most
// recent assistant message when nothing is active.
func (m *Model) togglePlayback() {
	st := m.controller.Store().Snapshot()
	if st.CurrentSegment != "" {
		m.controller.TogglePlayPause()
		return
	}

	msg, ok := m.lastAudioMessage()
	if !ok {
		return
	}
	log.Printf("[UI] Triggering playback for message %s", msg.ID)
	m.controller.PlaySegment(msg.playable(), -1)
}

// stopOrCancel cancels an in-flight fetch if there is one, otherwise stops
// playback.
func (m *Model) stopOrCancel() {
	snap := m.controller.Tracker().Snapshot()
	if len(snap.Aggregates) > 0 {
		for id := range snap.Aggregates {
			m.controller.CancelAggregate(id)
		}
		return
	}
	if len(snap.Fetching) > 0 {
		for id := range snap.Fetching {
			m.controller.CancelFetch(id)
		}
		return
	}
	m.controller.Stop()
}

// exportLastAudio writes the most recent message's cached audio to a WAV
// file next to the binary.
func (m *Model) exportLastAudio() {
	msg, ok := m.lastAudioMessage()
	if !ok {
		return
	}
	path := fmt.Sprintf("voxchat-%s.wav", msg.ID)
	f, err := os.Create(path)
	if err != nil {
		log.Printf("[UI] Export failed: %v", err)
		return
	}
	defer f.Close()
	if err := m.controller.ExportWAV(msg.playable(), f); err != nil {
		log.Printf("[UI] Export failed for message %s: %v", msg.ID, err)
		os.Remove(path)
		return
	}
	log.Printf("[UI] Exported audio for message %s to %s", msg.ID, path)
}

// renderAudioControls renders the per-message control strip: one icon per
// affordance plus the error text when a fetch or decode failed.
func (m *Model) renderAudioControls(msg Message) string {
	if len(msg.Parts) == 0 {
		return ""
	}

	var b strings.Builder
	for i, a := range m.controller.Controls(msg.playable()) {
		if i > 0 {
			b.WriteString(" ")
		}
		icon := a.Icon
		if a.Pulsing {
			icon = pulsingStyle.Render(icon)
		}
		b.WriteString(fmt.Sprintf("[%s %s]", icon, a.Label))
		if a.Err != "" {
			b.WriteString(" ")
			b.WriteString(errorStyle.Render(a.Err))
		}
	}
	return audioControlStyle.Render(b.String())
}

// renderAudioStatus renders the playback status line with a progress bar,
// shown only while a segment is active.
func (m *Model) renderAudioStatus() string {
	st := m.controller.Store().Snapshot()
	if st.CurrentSegment == "" {
		return ""
	}

	var label string
	switch {
	case st.IsLoading:
		label = "⌛ loading"
	case st.IsPlaying:
		label = "🔊 playing"
	case st.Err != "":
		label = "⚠ " + st.Err
	default:
		label = "⏸ paused"
	}

	barWidth := m.width - 30
	if barWidth < 10 {
		barWidth = 10
	}
	status := fmt.Sprintf("%s %s %s/%s (%.2fx)",
		label,
		progressBar(barWidth, st.CurrentTime, st.Duration),
		formatDuration(st.CurrentTime),
		formatDuration(st.Duration),
		st.PlaybackRate,
	)
	return audioStatusStyle.Render(status)
}

// progressBar renders a fixed-width unicode bar for position pos of total.
func progressBar(width int, pos, total float64) string {
	if width < 2 {
		width = 2
	}
	filled := 0
	if total > 0 {
		filled = int(pos / total * float64(width))
	}
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// formatDuration formats seconds as M:SS.
func formatDuration(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	whole := int(seconds)
	return fmt.Sprintf("%d:%02d", whole/60, whole%60)
}
