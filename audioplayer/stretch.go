package audioplayer

import "sync"

// stretchStreamer renders a decoded buffer at a variable rate without
// shifting pitch. Output is assembled from short overlapping grains of the
// source: each grain plays at its original speed, and the source read
// position advances faster or slower than the output depending on the rate.
//
// The streamer is pulled by the output sink's goroutine while the engine
// updates rate and grain parameters from the UI side, so all fields are
// guarded by a mutex.
type stretchStreamer struct {
	mu sync.Mutex

	buf     *Buffer
	srcPos  float64 // read position in the source, in sample frames
	rate    float64
	grain   int     // grain length in sample frames
	overlap float64 // fraction of each grain crossfaded with its neighbor

	cur      [][2]float64 // synthesized samples not yet handed to the sink
	curIdx   int
	prevTail [][2]float64 // end of the previous grain, mixed into the next
	drained  bool
}

func newStretchStreamer(buf *Buffer, startOffset, rate float64, grain int, overlap float64) *stretchStreamer {
	s := &stretchStreamer{
		buf:    buf,
		srcPos: startOffset * float64(buf.SampleRate),
	}
	s.setRate(rate)
	s.setGrain(grain)
	s.setOverlap(overlap)
	return s
}

// Stream fills out with time-stretched samples. Implements beep.Streamer.
func (s *stretchStreamer) Stream(out [][2]float64) (n int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for n < len(out) {
		if s.curIdx >= len(s.cur) {
			if !s.synthesizeGrain() {
				break
			}
		}
		out[n] = s.cur[s.curIdx]
		s.curIdx++
		n++
	}
	return n, n > 0
}

// Err implements beep.Streamer. Stretching never fails mid-stream.
func (s *stretchStreamer) Err() error { return nil }

// SetRate changes the playback-rate multiplier for subsequent grains.
func (s *stretchStreamer) SetRate(rate float64) {
	s.mu.Lock()
	s.setRate(rate)
	s.mu.Unlock()
}

// SetGrain changes the grain length (in sample frames) for subsequent grains.
func (s *stretchStreamer) SetGrain(frames int) {
	s.mu.Lock()
	s.setGrain(frames)
	s.mu.Unlock()
}

// SetOverlap changes the grain overlap fraction for subsequent grains.
func (s *stretchStreamer) SetOverlap(overlap float64) {
	s.mu.Lock()
	s.setOverlap(overlap)
	s.mu.Unlock()
}

func (s *stretchStreamer) setRate(rate float64) {
	if rate <= 0 {
		rate = 1
	}
	s.rate = rate
}

func (s *stretchStreamer) setGrain(frames int) {
	if frames < 64 {
		frames = 64
	}
	s.grain = frames
}

func (s *stretchStreamer) setOverlap(overlap float64) {
	if overlap < 0 {
		overlap = 0
	}
	if overlap > 0.9 {
		overlap = 0.9
	}
	s.overlap = overlap
}

// synthesizeGrain reads the next grain from the source, crossfades it with
// the tail of the previous grain, and queues the result for output. Returns
// false once the source is exhausted.
func (s *stretchStreamer) synthesizeGrain() bool {
	total := len(s.buf.Samples)
	if s.drained || int(s.srcPos) >= total {
		s.drained = true
		return false
	}

	g := s.grain
	fade := int(float64(g) * s.overlap)
	if fade > g/2 {
		fade = g / 2
	}
	hop := g - fade

	start := int(s.srcPos)
	grain := make([][2]float64, g)
	for i := 0; i < g; i++ {
		if start+i < total {
			grain[i] = s.buf.Samples[start+i]
		}
	}

	// Crossfade the head of this grain with the stored tail of the previous
	// one, then emit one hop worth of samples.
	emit := make([][2]float64, hop)
	for i := 0; i < hop; i++ {
		if i < fade && i < len(s.prevTail) {
			w := float64(i+1) / float64(fade+1)
			emit[i][0] = s.prevTail[i][0]*(1-w) + grain[i][0]*w
			emit[i][1] = s.prevTail[i][1]*(1-w) + grain[i][1]*w
		} else {
			emit[i] = grain[i]
		}
	}

	s.prevTail = grain[hop:]
	s.cur = emit
	s.curIdx = 0

	// The source advances by a rate-scaled hop: this is what stretches or
	// compresses time while each grain keeps its original pitch.
	s.srcPos += float64(hop) * s.rate
	return true
}

// sourcePos reports the current source read position in sample frames.
func (s *stretchStreamer) sourcePos() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.srcPos
}
