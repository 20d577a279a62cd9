//go:build (linux && cgo) || windows || darwin

package audioplayer

import (
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

// SpeakerAvailable indicates whether real audio output is supported in this build.
const SpeakerAvailable = true

// SpeakerSink plays audio through the system speaker via beep.
type SpeakerSink struct {
	mu          sync.Mutex
	initialized bool
	sampleRate  beep.SampleRate
}

// NewSink returns the default sink for this platform.
func NewSink() Sink {
	return &SpeakerSink{}
}

// Start initializes the speaker on first use and begins playback. If the
// streamer's sample rate differs from the speaker's, it is resampled.
func (p *SpeakerSink) Start(sampleRate int, s beep.Streamer) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	in := beep.SampleRate(sampleRate)
	if !p.initialized {
		p.sampleRate = in
		if err := speaker.Init(p.sampleRate, p.sampleRate.N(time.Second/10)); err != nil {
			return err
		}
		p.initialized = true
	}

	if in != p.sampleRate {
		s = beep.Resample(4, in, p.sampleRate, s)
	}

	speaker.Clear()
	speaker.Play(s)
	return nil
}

// Stop drops whatever the speaker is currently playing.
func (p *SpeakerSink) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.initialized {
		speaker.Clear()
	}
}
