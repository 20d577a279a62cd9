package audioplayer

import "github.com/gopxl/beep/v2"

// Sink is the audio output a playback voice streams into. The engine owns
// playback timing itself (see Engine's anchor pair), so a sink only has to
// pull samples; it is never queried for position.
type Sink interface {
	// Start begins pulling samples from the streamer at the given rate.
	Start(sampleRate int, s beep.Streamer) error

	// Stop stops pulling and drops the current streamer. Idempotent.
	Stop()
}

// NullSink discards all audio. Used when no audio device is available and
// in tests, where the engine's clock-based progress loop still runs.
type NullSink struct{}

func (NullSink) Start(sampleRate int, s beep.Streamer) error { return nil }

func (NullSink) Stop() {}
