//go:build !((linux && cgo) || windows || darwin)

package audioplayer

// SpeakerAvailable indicates whether real audio output is supported in this build.
const SpeakerAvailable = false

// NewSink returns the default sink for this platform. Without a supported
// audio backend playback is silent, but timing and state still work.
func NewSink() Sink {
	return NullSink{}
}
