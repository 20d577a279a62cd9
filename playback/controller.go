package playback

import (
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/jamalbot204/voxchat/audiocache"
	"github.com/jamalbot204/voxchat/audioplayer"
	"github.com/jamalbot204/voxchat/internal/helpers"
	"github.com/jamalbot204/voxchat/tts"
)

// Message is the playback view of a chat message: its id plus the text
// segmentation used for synthesis. A message with one part plays as a
// single whole-message segment.
type Message struct {
	ID    string
	Parts []string
}

func (m Message) segment(part int) SegmentID {
	if len(m.Parts) <= 1 {
		return WholeMessage(m.ID)
	}
	return MessagePart(m.ID, part)
}

// ControllerConfig wires the controller's collaborators. Zero-value fields
// get working defaults (silent engine, in-memory cache, PCM decoder).
type ControllerConfig struct {
	Engine   *audioplayer.Engine
	Fetcher  tts.Fetcher
	Decoder  audioplayer.Decoder
	Cache    audiocache.Cache
	Settings tts.Settings
}

// Controller is the UI-facing surface of the playback core. It owns the
// shared state store and fetch tracker, and coordinates fetch, cache,
// decode, and the engine for every user action. All methods are safe to
// call from UI event handlers.
type Controller struct {
	engine  *audioplayer.Engine
	fetcher tts.Fetcher
	decoder audioplayer.Decoder
	cache   audiocache.Cache
	store   *Store
	tracker *FetchTracker

	mu       sync.Mutex
	settings tts.Settings
	current  *activeSegment
}

// activeSegment is the segment whose decoded buffer is loaded in the
// engine, kept so pause/resume and seeking avoid a refetch.
type activeSegment struct {
	msg        Message
	part       int
	buf        *audioplayer.Buffer
	sequential bool // part of a whole-message multi-part run
}

// NewController creates a controller around the given collaborators.
func NewController(cfg ControllerConfig) *Controller {
	if cfg.Engine == nil {
		cfg.Engine = audioplayer.NewEngine(nil)
	}
	if cfg.Decoder == nil {
		cfg.Decoder = audioplayer.PCMDecoder{}
	}
	if cfg.Cache == nil {
		cfg.Cache = audiocache.NewMemory()
	}
	if cfg.Settings == (tts.Settings{}) {
		cfg.Settings = tts.DefaultSettings()
	}
	return &Controller{
		engine:   cfg.Engine,
		fetcher:  cfg.Fetcher,
		decoder:  cfg.Decoder,
		cache:    cfg.Cache,
		store:    NewStore(),
		tracker:  NewFetchTracker(),
		settings: cfg.Settings,
	}
}

// Store exposes the shared playback state store.
func (c *Controller) Store() *Store { return c.store }

// Tracker exposes the fetch tracker.
func (c *Controller) Tracker() *FetchTracker { return c.tracker }

// Cached reports whether audio for the part is already fetched.
func (c *Controller) Cached(messageID string, part int) bool {
	return c.cache.Has(messageID, part)
}

// Controls derives the affordances for a message's audio controls.
func (c *Controller) Controls(msg Message) []Affordance {
	parts := len(msg.Parts)
	return MessageControls(c.store.Snapshot(), c.tracker.Snapshot(), msg.ID, parts, c.cache.Has)
}

// TTSSettings returns the synthesis settings used for new fetches.
func (c *Controller) TTSSettings() tts.Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

// SetTTSSettings changes the synthesis settings for new fetches.
func (c *Controller) SetTTSSettings(s tts.Settings) {
	c.mu.Lock()
	c.settings = s
	c.mu.Unlock()
}

// PlaySegment starts playback of one part (part >= 0) or the whole message
// (part < 0). Cached segments play immediately; uncached ones are fetched
// first. A whole-message request on a multi-part message fetches all parts
// as one cancellable aggregate, then plays them in sequence.
func (c *Controller) PlaySegment(msg Message, part int) {
	if len(msg.Parts) == 0 {
		return
	}
	if part >= 0 {
		if part >= len(msg.Parts) {
			return
		}
		c.playPart(msg, part, 0, false)
		return
	}
	if len(msg.Parts) == 1 {
		c.playPart(msg, 0, 0, false)
		return
	}
	c.playAll(msg)
}

// TogglePlayPause pauses the playing segment (retaining position) or
// resumes the paused one.
func (c *Controller) TogglePlayPause() {
	st := c.store.Snapshot()
	if st.IsPlaying {
		pos := c.engine.CurrentTime()
		c.engine.Stop()
		c.store.Pause(pos)
		if helpers.IsAudioTraceEnabled() {
			log.Printf("[PLAYBACK] Paused %q at %.2fs", st.CurrentSegment, pos)
		}
		return
	}

	c.mu.Lock()
	cur := c.current
	c.mu.Unlock()
	if cur == nil || st.CurrentSegment == "" {
		return
	}
	c.startVoice(cur, st.CurrentTime)
}

// Stop tears down playback and returns the store to idle.
func (c *Controller) Stop() {
	c.engine.Stop()
	c.mu.Lock()
	c.current = nil
	c.mu.Unlock()
	c.store.Reset()
}

// CancelFetch cancels the in-flight fetch for one segment.
func (c *Controller) CancelFetch(id SegmentID) {
	c.tracker.Cancel(id)
}

// CancelAggregate cancels a whole-message fetch and all of its pending
// per-part fetches. Already-cached parts are kept.
func (c *Controller) CancelAggregate(messageID string) {
	c.tracker.CancelAggregate(messageID)
}

// SeekAbsolute moves the active segment to position t seconds.
func (c *Controller) SeekAbsolute(t float64) {
	c.mu.Lock()
	cur := c.current
	c.mu.Unlock()
	if cur == nil {
		return
	}

	if t < 0 {
		t = 0
	}
	if d := cur.buf.Duration(); t > d {
		t = d
	}

	if c.store.Snapshot().IsPlaying {
		c.startVoice(cur, t)
		return
	}
	c.store.SetTime(t)
}

// SeekRelative moves the active segment by dt seconds.
func (c *Controller) SeekRelative(dt float64) {
	c.SeekAbsolute(c.store.Snapshot().CurrentTime + dt)
}

// SetPlaybackRate changes the playback rate, re-anchoring the live voice so
// position stays continuous.
func (c *Controller) SetPlaybackRate(rate float64) {
	if rate <= 0 {
		return
	}
	c.store.SetRate(rate)
	if c.engine.IsPlaying() {
		c.engine.SetPlaybackRate(rate, c.engine.CurrentTime())
	}
}

// SetGrainSize changes the time-stretch grain length (seconds), applied
// live to the active voice.
func (c *Controller) SetGrainSize(size float64) {
	if size <= 0 {
		return
	}
	c.store.SetGrainSize(size)
	c.engine.SetGrainSize(size)
}

// SetOverlap changes the time-stretch overlap fraction, applied live.
func (c *Controller) SetOverlap(overlap float64) {
	if overlap < 0 {
		return
	}
	c.store.SetOverlap(overlap)
	c.engine.SetOverlap(overlap)
}

// HandleClick resolves a click on a segment control per the affordance's
// action: cancel beats pause beats play.
func (c *Controller) HandleClick(msg Message, a Affordance) {
	if !a.Enabled {
		return
	}
	switch a.Action {
	case ActionCancel:
		if c.tracker.IsAggregateFetching(msg.ID) {
			c.CancelAggregate(msg.ID)
		} else {
			c.CancelFetch(a.ID)
		}
	case ActionPause:
		c.TogglePlayPause()
	case ActionPlay:
		st := c.store.Snapshot()
		if st.CurrentSegment == a.ID && !st.IsPlaying && !st.IsLoading && st.Err == "" && st.CurrentTime > 0 {
			c.TogglePlayPause() // resume from the retained position
			return
		}
		part, isPart := a.ID.Part()
		if !isPart {
			part = -1
		}
		c.PlaySegment(msg, part)
	}
}

// playPart plays a single segment, fetching on cache miss. The fetch runs
// asynchronously; exclusivity per segment id is enforced by the tracker.
func (c *Controller) playPart(msg Message, part int, offset float64, sequential bool) {
	id := msg.segment(part)

	if data, ok := c.cache.Get(msg.ID, part); ok {
		if helpers.IsAudioTraceEnabled() {
			log.Printf("[PLAYBACK] Cache hit for %q (%d bytes)", id, len(data))
		}
		c.startPlayback(msg, part, data, offset, sequential)
		return
	}

	if c.fetcher == nil {
		c.store.SetError(id, "no synthesis backend configured")
		return
	}

	ctx, ok := c.tracker.Begin(id)
	if !ok {
		return // a fetch for this segment is already in flight
	}

	go func() {
		data, err := c.fetcher.Fetch(ctx, msg.Parts[part], c.TTSSettings())
		if ctx.Err() != nil {
			// Cancelled by the user; not an error state.
			c.tracker.End(id, nil)
			return
		}
		if err != nil {
			log.Printf("[PLAYBACK] Fetch failed for %q: %v", id, err)
			c.tracker.End(id, err)
			return
		}
		c.cache.Put(msg.ID, part, data, len(msg.Parts))
		c.tracker.End(id, nil)
		c.startPlayback(msg, part, data, offset, sequential)
	}()
}

// playAll fetches every uncached part of a multi-part message under one
// aggregate record, then plays the parts in sequence from part 0.
func (c *Controller) playAll(msg Message) {
	if c.fetcher == nil {
		allCached := true
		for i := range msg.Parts {
			if !c.cache.Has(msg.ID, i) {
				allCached = false
				break
			}
		}
		if !allCached {
			c.store.SetError(WholeMessage(msg.ID), "no synthesis backend configured")
			return
		}
	}

	aggCtx, ok := c.tracker.BeginAggregate(msg.ID)
	if !ok {
		return
	}

	go func() {
		for i := range msg.Parts {
			if aggCtx.Err() != nil {
				c.tracker.EndAggregate(msg.ID)
				return
			}
			if c.cache.Has(msg.ID, i) {
				continue
			}

			id := MessagePart(msg.ID, i)
			ctx, ok := c.tracker.Begin(id)
			if !ok {
				continue // already being fetched individually
			}
			data, err := c.fetcher.Fetch(ctx, msg.Parts[i], c.TTSSettings())
			if ctx.Err() != nil || aggCtx.Err() != nil {
				c.tracker.End(id, nil)
				c.tracker.EndAggregate(msg.ID)
				return
			}
			if err != nil {
				log.Printf("[PLAYBACK] Aggregate fetch failed for %q: %v", id, err)
				c.tracker.End(id, err)
				c.tracker.EndAggregate(msg.ID)
				return
			}
			c.cache.Put(msg.ID, i, data, len(msg.Parts))
			c.tracker.End(id, nil)
		}
		c.tracker.EndAggregate(msg.ID)

		if data, ok := c.cache.Get(msg.ID, 0); ok {
			c.startPlayback(msg, 0, data, 0, true)
		}
	}()
}

// startPlayback decodes raw audio and hands it to the engine. Decode
// failures become a playback error on the segment; the engine guarantees no
// partial voice survives a failed start.
func (c *Controller) startPlayback(msg Message, part int, raw []byte, offset float64, sequential bool) {
	id := msg.segment(part)
	c.store.StartLoading(id)

	buf, err := c.decoder.Decode(raw)
	if err != nil {
		log.Printf("[PLAYBACK] Decode failed for %q: %v", id, err)
		c.store.SetError(id, err.Error())
		return
	}

	cur := &activeSegment{msg: msg, part: part, buf: buf, sequential: sequential}
	c.mu.Lock()
	c.current = cur
	c.mu.Unlock()
	c.startVoice(cur, offset)
}

// startVoice (re)starts the engine for the active segment at the given
// offset, using the store's current stretch parameters.
func (c *Controller) startVoice(cur *activeSegment, offset float64) {
	id := cur.msg.segment(cur.part)
	st := c.store.Snapshot()

	err := c.engine.Play(cur.buf, offset, audioplayer.PlayParams{
		Rate:      st.PlaybackRate,
		GrainSize: st.GrainSize,
		Overlap:   st.Overlap,
		OnTimeUpdate: func(pos float64) {
			c.store.SetTime(pos)
		},
		OnEnded: func() {
			c.segmentEnded(cur.msg, cur.part, cur.sequential)
		},
	})
	if err != nil {
		c.store.SetError(id, err.Error())
		return
	}
	c.store.StartPlaying(id, cur.buf.Duration())
	c.store.SetTime(offset)
}

// ExportWAV writes the message's cached audio to w as a mono 16-bit WAV
// file. Every part must already be cached.
func (c *Controller) ExportWAV(msg Message, w io.Writer) error {
	parts := len(msg.Parts)
	if parts == 0 {
		parts = 1
	}
	var data []byte
	for i := 0; i < parts; i++ {
		chunk, ok := c.cache.Get(msg.ID, i)
		if !ok {
			return fmt.Errorf("audio for part %d is not cached", i)
		}
		data = append(data, chunk...)
	}

	header := helpers.CreateWavHeader(len(data), 1, audioplayer.DefaultSampleRate, 16)
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("writing wav header: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing wav data: %w", err)
	}
	return nil
}

// segmentEnded advances a sequential whole-message run to the next cached
// part, or returns the store to idle.
func (c *Controller) segmentEnded(msg Message, part int, sequential bool) {
	if sequential && part+1 < len(msg.Parts) {
		if data, ok := c.cache.Get(msg.ID, part+1); ok {
			c.startPlayback(msg, part+1, data, 0, true)
			return
		}
	}
	c.mu.Lock()
	c.current = nil
	c.mu.Unlock()
	c.store.Reset()
}
