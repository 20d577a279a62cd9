package playback

// SegmentState is the derived per-segment UI state. It is computed on
// demand from the shared State plus fetch activity and cache presence,
// never stored, so the many segment-id variants cannot drift out of sync.
type SegmentState int

const (
	// StateIdle means nothing is known about the segment.
	StateIdle SegmentState = iota
	// StateFetching means a TTS fetch for the segment is in flight.
	StateFetching
	// StateLoading means the segment is decoding / playback is starting.
	StateLoading
	// StatePlaying means the segment is audible right now.
	StatePlaying
	// StatePaused means playback stopped mid-segment and can resume.
	StatePaused
	// StateReady means a cached buffer exists for zero-latency replay.
	StateReady
	// StateError means the segment's last fetch or playback failed.
	StateError
)

func (s SegmentState) String() string {
	switch s {
	case StateFetching:
		return "Fetching"
	case StateLoading:
		return "Loading"
	case StatePlaying:
		return "Playing"
	case StatePaused:
		return "Paused"
	case StateReady:
		return "Ready"
	case StateError:
		return "Error"
	default:
		return "Idle"
	}
}

// Action is what a click on the segment's control does.
type Action int

const (
	// ActionPlay starts or resumes playback (fetching first on cache miss).
	ActionPlay Action = iota
	// ActionPause pauses the playing segment, retaining its position.
	ActionPause
	// ActionCancel cancels the in-flight fetch or aggregate.
	ActionCancel
)

// Affordance describes how to render one segment control and what clicking
// it does.
type Affordance struct {
	ID      SegmentID
	State   SegmentState
	Action  Action
	Icon    string
	Label   string
	Enabled bool
	Pulsing bool
	Err     string
}

// Project derives the affordance for one segment control. cached reports
// whether a decoded-ready buffer exists for the segment. aggregate marks
// the message-level control: it matches any current segment of its message
// and reflects the message's aggregate fetch.
func Project(st State, fs FetchSnapshot, cached bool, id SegmentID, aggregate bool) Affordance {
	a := Affordance{ID: id, Enabled: true}

	current := st.CurrentSegment == id
	if aggregate && !current && st.CurrentSegment != "" {
		current = st.CurrentSegment.MessageID() == id.MessageID()
	}

	fetching := fs.Fetching[id]
	if aggregate && fs.Aggregates[id.MessageID()] {
		fetching = true
	}

	errMsg := fs.Errors[id]
	if errMsg == "" && aggregate {
		for other, msg := range fs.Errors {
			if other.MessageID() == id.MessageID() {
				errMsg = msg
				break
			}
		}
	}
	if errMsg == "" && current && st.Err != "" {
		errMsg = st.Err
	}

	switch {
	case fetching:
		a.State = StateFetching
		a.Action = ActionCancel
		a.Icon = "⏳"
		a.Label = "cancel"
		a.Pulsing = true
	case current && st.IsPlaying:
		a.State = StatePlaying
		a.Action = ActionPause
		a.Icon = "🔊"
		a.Label = "pause"
	case current && st.IsLoading:
		a.State = StateLoading
		a.Action = ActionPlay
		a.Icon = "⌛"
		a.Label = "loading"
		a.Enabled = false
		a.Pulsing = true
	case errMsg != "":
		a.State = StateError
		a.Action = ActionPlay
		a.Icon = "⚠"
		a.Label = "retry"
		a.Err = errMsg
	case current && st.CurrentTime > 0:
		a.State = StatePaused
		a.Action = ActionPlay
		a.Icon = "⏸"
		a.Label = "resume"
	case cached:
		a.State = StateReady
		a.Action = ActionPlay
		a.Icon = "✓"
		a.Label = "replay"
	default:
		a.State = StateIdle
		a.Action = ActionPlay
		a.Icon = "🔈"
		a.Label = "play"
	}
	return a
}

// CacheLookup reports whether a given part of a message has cached audio.
type CacheLookup func(messageID string, part int) bool

// MessageControls implements the multi-part display policy: when a message
// was split into more than one synthesis part and every part is cached, the
// user gets one control per part; otherwise a single aggregate control that
// fetches and plays the whole message as one unit.
func MessageControls(st State, fs FetchSnapshot, messageID string, parts int, cached CacheLookup) []Affordance {
	if parts < 1 {
		parts = 1
	}

	if parts > 1 {
		allCached := true
		for i := 0; i < parts; i++ {
			if !cached(messageID, i) {
				allCached = false
				break
			}
		}
		if allCached {
			controls := make([]Affordance, parts)
			for i := 0; i < parts; i++ {
				controls[i] = Project(st, fs, true, MessagePart(messageID, i), false)
			}
			return controls
		}
	}

	wholeCached := true
	for i := 0; i < parts; i++ {
		if !cached(messageID, i) {
			wholeCached = false
			break
		}
	}
	return []Affordance{Project(st, fs, wholeCached, WholeMessage(messageID), true)}
}
