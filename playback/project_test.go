package playback

import "testing"

func emptyFetch() FetchSnapshot {
	return FetchSnapshot{
		Fetching:   map[SegmentID]bool{},
		Errors:     map[SegmentID]string{},
		Aggregates: map[string]bool{},
	}
}

func TestProjectStatePrecedence(t *testing.T) {
	id := WholeMessage("m1")

	cases := []struct {
		name   string
		st     State
		fs     FetchSnapshot
		cached bool
		want   SegmentState
		action Action
	}{
		{
			name: "idle",
			st:   State{}, fs: emptyFetch(),
			want: StateIdle, action: ActionPlay,
		},
		{
			name: "cached is ready",
			st:   State{}, fs: emptyFetch(), cached: true,
			want: StateReady, action: ActionPlay,
		},
		{
			name: "playing",
			st:   State{CurrentSegment: id, IsPlaying: true},
			fs:   emptyFetch(),
			want: StatePlaying, action: ActionPause,
		},
		{
			name: "loading",
			st:   State{CurrentSegment: id, IsLoading: true},
			fs:   emptyFetch(),
			want: StateLoading, action: ActionPlay,
		},
		{
			name: "paused when stopped mid-segment",
			st:   State{CurrentSegment: id, CurrentTime: 3.2, Duration: 10},
			fs:   emptyFetch(), cached: true,
			want: StatePaused, action: ActionPlay,
		},
		{
			name: "playback error",
			st:   State{CurrentSegment: id, Err: "decode failed"},
			fs:   emptyFetch(), cached: true,
			want: StateError, action: ActionPlay,
		},
		{
			name: "fetching beats everything",
			st:   State{CurrentSegment: id, IsPlaying: true},
			fs: FetchSnapshot{
				Fetching:   map[SegmentID]bool{id: true},
				Errors:     map[SegmentID]string{id: "old error"},
				Aggregates: map[string]bool{},
			},
			cached: true,
			want:   StateFetching, action: ActionCancel,
		},
		{
			name: "fetch error",
			st:   State{}, cached: true,
			fs: FetchSnapshot{
				Fetching:   map[SegmentID]bool{},
				Errors:     map[SegmentID]string{id: "rate limited"},
				Aggregates: map[string]bool{},
			},
			want: StateError, action: ActionPlay,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := Project(tc.st, tc.fs, tc.cached, id, false)
			if a.State != tc.want {
				t.Errorf("State = %v, want %v", a.State, tc.want)
			}
			if a.Action != tc.action {
				t.Errorf("Action = %v, want %v", a.Action, tc.action)
			}
		})
	}
}

func TestProjectLoadingIsDisabled(t *testing.T) {
	id := WholeMessage("m1")
	a := Project(State{CurrentSegment: id, IsLoading: true}, emptyFetch(), false, id, false)
	if a.Enabled {
		t.Error("loading control should be disabled")
	}
	if !a.Pulsing {
		t.Error("loading control should pulse")
	}
}

func TestProjectAggregateMatchesParts(t *testing.T) {
	whole := WholeMessage("m1")

	// A playing part lights up the message-level control.
	st := State{CurrentSegment: MessagePart("m1", 1), IsPlaying: true}
	a := Project(st, emptyFetch(), false, whole, true)
	if a.State != StatePlaying {
		t.Errorf("aggregate State = %v, want Playing", a.State)
	}

	// A non-aggregate control for a different segment stays idle.
	a = Project(st, emptyFetch(), false, whole, false)
	if a.State != StateIdle {
		t.Errorf("non-aggregate State = %v, want Idle", a.State)
	}

	// An aggregate fetch shows on the message-level control.
	fs := emptyFetch()
	fs.Aggregates["m1"] = true
	a = Project(State{}, fs, false, whole, true)
	if a.State != StateFetching || a.Action != ActionCancel {
		t.Errorf("aggregate fetch: State=%v Action=%v", a.State, a.Action)
	}

	// A part's fetch error surfaces on the message-level control.
	fs = emptyFetch()
	fs.Errors[MessagePart("m1", 0)] = "boom"
	a = Project(State{}, fs, false, whole, true)
	if a.State != StateError || a.Err != "boom" {
		t.Errorf("aggregate error: State=%v Err=%q", a.State, a.Err)
	}
}

func TestMessageControlsSinglePart(t *testing.T) {
	controls := MessageControls(State{}, emptyFetch(), "m1", 1, func(string, int) bool { return false })
	if len(controls) != 1 {
		t.Fatalf("got %d controls, want 1", len(controls))
	}
	if controls[0].ID != WholeMessage("m1") {
		t.Errorf("control ID = %q, want whole-message id", controls[0].ID)
	}
}

func TestMessageControlsMultiPartAllCached(t *testing.T) {
	controls := MessageControls(State{}, emptyFetch(), "m1", 2, func(string, int) bool { return true })
	if len(controls) != 2 {
		t.Fatalf("got %d controls, want 2 per-part controls", len(controls))
	}
	for i, c := range controls {
		if c.ID != MessagePart("m1", i) {
			t.Errorf("control %d ID = %q, want %q", i, c.ID, MessagePart("m1", i))
		}
		if c.State != StateReady {
			t.Errorf("control %d State = %v, want Ready", i, c.State)
		}
	}
}

func TestMessageControlsMultiPartPartiallyCached(t *testing.T) {
	cached := func(_ string, part int) bool { return part == 0 }
	controls := MessageControls(State{}, emptyFetch(), "m1", 3, cached)
	if len(controls) != 1 {
		t.Fatalf("got %d controls, want 1 aggregate control", len(controls))
	}
	c := controls[0]
	if c.ID != WholeMessage("m1") {
		t.Errorf("control ID = %q, want whole-message id", c.ID)
	}
	if c.State != StateIdle {
		t.Errorf("partially cached message State = %v, want Idle", c.State)
	}
}
