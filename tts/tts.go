// Package tts retrieves synthesized speech audio for message text.
package tts

import "context"

// MaxPartLength is the longest text accepted per synthesis request.
// Messages longer than this are split into parts (see SplitText).
const MaxPartLength = 4096

// Settings selects the synthesis voice and provider parameters.
type Settings struct {
	Model string
	Voice string
	Speed float64
}

// DefaultSettings returns the provider defaults.
func DefaultSettings() Settings {
	return Settings{
		Model: "tts-1",
		Voice: "alloy",
		Speed: 1.0,
	}
}

// Fetcher retrieves raw synthesized audio (s16le mono PCM) for a piece of
// text. Implementations must observe ctx at their suspension points so an
// in-flight fetch can be cancelled cooperatively.
type Fetcher interface {
	Fetch(ctx context.Context, text string, settings Settings) ([]byte, error)
}
