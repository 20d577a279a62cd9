package playback

import (
	"sync"

	"github.com/jamalbot204/voxchat/audioplayer"
)

// State is the process-wide playback state, the single source of truth the
// UI renders from. IsPlaying and IsLoading are mutually exclusive;
// CurrentTime stays within [0, Duration].
type State struct {
	CurrentSegment SegmentID // "" when idle
	IsPlaying      bool
	IsLoading      bool
	Err            string
	CurrentTime    float64
	Duration       float64
	PlaybackRate   float64
	GrainSize      float64
	Overlap        float64
}

// Store holds the shared State behind controlled mutators. It is mutated
// only by the engine's callbacks and by user-action handlers; everything
// else reads snapshots.
type Store struct {
	mu       sync.Mutex
	state    State
	onChange func(State)
}

// NewStore creates a store with default playback parameters.
func NewStore() *Store {
	return &Store{state: State{
		PlaybackRate: 1.0,
		GrainSize:    audioplayer.DefaultGrainSize,
		Overlap:      audioplayer.DefaultOverlap,
	}}
}

// SetOnChange registers a callback invoked (outside the store's lock) after
// every mutation, with a snapshot of the new state.
func (s *Store) SetOnChange(fn func(State)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// StartLoading marks a segment as the current target while its buffer is
// decoded and playback starts.
func (s *Store) StartLoading(id SegmentID) {
	s.mutate(func(st *State) {
		st.CurrentSegment = id
		st.IsLoading = true
		st.IsPlaying = false
		st.Err = ""
		st.CurrentTime = 0
		st.Duration = 0
	})
}

// StartPlaying marks the segment as actively playing.
func (s *Store) StartPlaying(id SegmentID, duration float64) {
	s.mutate(func(st *State) {
		st.CurrentSegment = id
		st.IsPlaying = true
		st.IsLoading = false
		st.Err = ""
		st.Duration = duration
	})
}

// SetTime records the progress-loop position, clamped to [0, Duration].
func (s *Store) SetTime(t float64) {
	s.mutate(func(st *State) {
		if t < 0 {
			t = 0
		}
		if st.Duration > 0 && t > st.Duration {
			t = st.Duration
		}
		st.CurrentTime = t
	})
}

// Pause stops playback but keeps the current segment and position so the
// same segment can resume.
func (s *Store) Pause(position float64) {
	s.mutate(func(st *State) {
		st.IsPlaying = false
		st.IsLoading = false
		if position >= 0 {
			st.CurrentTime = position
		}
	})
}

// SetError records a playback error on the current target and clears the
// playing/loading flags.
func (s *Store) SetError(id SegmentID, msg string) {
	s.mutate(func(st *State) {
		st.CurrentSegment = id
		st.IsPlaying = false
		st.IsLoading = false
		st.Err = msg
	})
}

// Reset returns the store to idle. Called on stop and natural completion.
func (s *Store) Reset() {
	s.mutate(func(st *State) {
		st.CurrentSegment = ""
		st.IsPlaying = false
		st.IsLoading = false
		st.Err = ""
		st.CurrentTime = 0
		st.Duration = 0
	})
}

// SetRate updates the playback-rate parameter.
func (s *Store) SetRate(rate float64) {
	if rate <= 0 {
		return
	}
	s.mutate(func(st *State) { st.PlaybackRate = rate })
}

// SetGrainSize updates the time-stretch grain length parameter.
func (s *Store) SetGrainSize(size float64) {
	if size <= 0 {
		return
	}
	s.mutate(func(st *State) { st.GrainSize = size })
}

// SetOverlap updates the time-stretch overlap parameter.
func (s *Store) SetOverlap(overlap float64) {
	if overlap < 0 {
		return
	}
	s.mutate(func(st *State) { st.Overlap = overlap })
}

func (s *Store) mutate(fn func(*State)) {
	s.mu.Lock()
	fn(&s.state)
	snapshot := s.state
	notify := s.onChange
	s.mu.Unlock()

	if notify != nil {
		notify(snapshot)
	}
}
