package audioplayer

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/jamalbot204/voxchat/internal/helpers"
)

const (
	// completionEpsilon absorbs progress-tick jitter near the end of a buffer.
	completionEpsilon = 0.05

	// progressInterval is how often the progress loop reports position,
	// roughly one display frame.
	progressInterval = 16 * time.Millisecond

	// backupTimerSlack pads the backup completion timer so it only fires
	// when the progress loop has been throttled or starved.
	backupTimerSlack = 100 * time.Millisecond

	// DefaultGrainSize is the default time-stretch grain length in seconds.
	DefaultGrainSize = 0.1

	// DefaultOverlap is the default fraction of each grain crossfaded with
	// its neighbor.
	DefaultOverlap = 0.1
)

var errEmptyBuffer = errors.New("audio buffer is empty")

// PlayParams configures one playback voice.
type PlayParams struct {
	Rate      float64 // Playback-rate multiplier, 1.0 when zero.
	GrainSize float64 // Grain length in seconds, DefaultGrainSize when zero.
	Overlap   float64 // Grain overlap fraction, DefaultOverlap when zero.

	// OnTimeUpdate is invoked from the progress loop with the current
	// playback position in seconds.
	OnTimeUpdate func(position float64)

	// OnEnded is invoked exactly once when playback completes naturally.
	// It never fires after Stop.
	OnEnded func()
}

// Engine owns the single active playback voice. It decodes nothing itself;
// callers hand it an already-decoded Buffer. Position is tracked with an
// anchor pair (wall-clock timestamp, logical position) so the audio backend
// is never polled: position = clamp(p0 + (now-t0)*rate, 0, duration).
type Engine struct {
	mu   sync.Mutex
	sink Sink
	now  func() time.Time

	voice    *stretchStreamer
	duration float64
	playing  bool
	gen      int // voice generation; stale timers and loops check it

	t0   time.Time
	p0   float64
	rate float64

	onTimeUpdate func(float64)
	onEnded      func()

	stopTick chan struct{}
	backup   *time.Timer
}

// NewEngine creates an engine that plays through the given sink. A nil sink
// means silent playback (timing and callbacks still run).
func NewEngine(sink Sink) *Engine {
	if sink == nil {
		sink = NullSink{}
	}
	return &Engine{sink: sink, now: time.Now, rate: 1}
}

// Play tears down any current voice and starts playing buf from startOffset
// seconds. It returns once playback has started; completion is reported via
// params.OnEnded.
func (e *Engine) Play(buf *Buffer, startOffset float64, params PlayParams) error {
	if buf == nil || buf.Len() == 0 {
		return errEmptyBuffer
	}

	rate := params.Rate
	if rate <= 0 {
		rate = 1
	}
	grainSec := params.GrainSize
	if grainSec <= 0 {
		grainSec = DefaultGrainSize
	}
	overlap := params.Overlap
	if overlap <= 0 {
		overlap = DefaultOverlap
	}

	duration := buf.Duration()
	if startOffset < 0 {
		startOffset = 0
	}
	if startOffset > duration {
		startOffset = duration
	}

	e.mu.Lock()
	e.teardownLocked()

	voice := newStretchStreamer(buf, startOffset, rate, int(grainSec*float64(buf.SampleRate)), overlap)
	if err := e.sink.Start(buf.SampleRate, voice); err != nil {
		// The voice was never registered, so nothing dangles.
		e.mu.Unlock()
		return fmt.Errorf("starting audio output: %w", err)
	}

	e.voice = voice
	e.duration = duration
	e.playing = true
	e.gen++
	e.t0 = e.now()
	e.p0 = startOffset
	e.rate = rate
	e.onTimeUpdate = params.OnTimeUpdate
	e.onEnded = params.OnEnded

	stop := make(chan struct{})
	e.stopTick = stop
	gen := e.gen
	e.armBackupLocked(gen)
	e.mu.Unlock()

	if helpers.IsAudioTraceEnabled() {
		log.Printf("[ENGINE] Play: offset=%.3fs duration=%.3fs rate=%.2f", startOffset, duration, rate)
	}

	go e.progressLoop(gen, stop)
	return nil
}

// Stop tears down the current voice, the progress loop, and the backup
// timer. The last known position is retained so a later Play can resume
// from it. Safe to call when nothing is playing.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.playing {
		e.p0 = e.positionLocked()
	}
	e.teardownLocked()
	e.mu.Unlock()
}

// SetPlaybackRate changes the playback rate in place. The anchor pair is
// re-set to (now, currentPosition) in the same critical section as the rate
// change, so the progress loop never mixes a stale anchor with the new rate.
func (e *Engine) SetPlaybackRate(rate, currentPosition float64) {
	if rate <= 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if currentPosition < 0 {
		currentPosition = 0
	}
	if e.playing && currentPosition > e.duration {
		currentPosition = e.duration
	}

	e.rate = rate
	if !e.playing {
		return
	}
	e.t0 = e.now()
	e.p0 = currentPosition
	if e.voice != nil {
		e.voice.SetRate(rate)
	}
	e.armBackupLocked(e.gen)
}

// SetGrainSize live-updates the time-stretch grain length (seconds).
func (e *Engine) SetGrainSize(seconds float64) {
	if seconds <= 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.voice != nil {
		e.voice.SetGrain(int(seconds * float64(e.voice.buf.SampleRate)))
	}
}

// SetOverlap live-updates the grain overlap fraction.
func (e *Engine) SetOverlap(overlap float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.voice != nil {
		e.voice.SetOverlap(overlap)
	}
}

// CurrentTime returns the playback position in seconds. When nothing is
// playing it returns the last anchored position.
func (e *Engine) CurrentTime() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.playing {
		return e.p0
	}
	return e.positionLocked()
}

// IsPlaying reports whether a voice is currently active.
func (e *Engine) IsPlaying() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playing
}

// positionLocked computes the anchor-pair position. Caller holds e.mu.
func (e *Engine) positionLocked() float64 {
	pos := e.p0 + e.now().Sub(e.t0).Seconds()*e.rate
	if pos < 0 {
		pos = 0
	}
	if pos > e.duration {
		pos = e.duration
	}
	return pos
}

// armBackupLocked schedules the backup completion timer for the current
// anchor and rate. Frame-style ticks can be throttled when the process is
// backgrounded; the timer bounds how late completion can be observed.
// Caller holds e.mu.
func (e *Engine) armBackupLocked(gen int) {
	if e.backup != nil {
		e.backup.Stop()
	}
	remaining := (e.duration - e.p0) / e.rate
	if remaining < 0 {
		remaining = 0
	}
	e.backup = time.AfterFunc(time.Duration(remaining*float64(time.Second))+backupTimerSlack, func() {
		if helpers.IsAudioTraceEnabled() {
			log.Printf("[ENGINE] Backup completion timer fired (gen %d)", gen)
		}
		e.handleComplete(gen)
	})
}

// progressLoop reports position every tick until the voice completes or is
// torn down.
func (e *Engine) progressLoop(gen int, stop chan struct{}) {
	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !e.tick(gen) {
				return
			}
		}
	}
}

// tick performs one progress-loop step. Returns false when the loop should
// exit. The anchor pair and rate are read in a single critical section so
// each tick sees one consistent snapshot.
func (e *Engine) tick(gen int) bool {
	e.mu.Lock()
	if !e.playing || gen != e.gen {
		e.mu.Unlock()
		return false
	}
	pos := e.positionLocked()
	if pos >= e.duration-completionEpsilon {
		e.mu.Unlock()
		e.handleComplete(gen)
		return false
	}
	update := e.onTimeUpdate
	e.mu.Unlock()

	if update != nil {
		update(pos)
	}
	return true
}

// handleComplete finishes playback exactly once per voice: both the
// progress loop and the backup timer funnel through it, and the playing
// flag plus generation check under the lock make the second caller a no-op.
// On completion the final position update is delivered before OnEnded.
func (e *Engine) handleComplete(gen int) {
	e.mu.Lock()
	if !e.playing || gen != e.gen {
		e.mu.Unlock()
		return
	}
	update := e.onTimeUpdate
	ended := e.onEnded
	duration := e.duration
	e.teardownLocked()
	e.p0 = duration
	e.mu.Unlock()

	if helpers.IsAudioTraceEnabled() {
		log.Printf("[ENGINE] Playback complete at %.3fs (gen %d)", duration, gen)
	}
	if update != nil {
		update(duration)
	}
	if ended != nil {
		ended()
	}
}

// teardownLocked disposes the voice and all per-voice resources. Caller
// holds e.mu. Idempotent.
func (e *Engine) teardownLocked() {
	if e.stopTick != nil {
		close(e.stopTick)
		e.stopTick = nil
	}
	if e.backup != nil {
		e.backup.Stop()
		e.backup = nil
	}
	if e.voice != nil {
		e.sink.Stop()
		e.voice = nil
	}
	e.playing = false
	e.onTimeUpdate = nil
	e.onEnded = nil
}
