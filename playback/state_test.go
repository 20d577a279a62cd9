package playback

import "testing"

func TestStoreDefaults(t *testing.T) {
	st := NewStore().Snapshot()
	if st.PlaybackRate != 1.0 {
		t.Errorf("default PlaybackRate = %v, want 1.0", st.PlaybackRate)
	}
	if st.GrainSize <= 0 || st.Overlap < 0 {
		t.Errorf("default stretch params invalid: grain=%v overlap=%v", st.GrainSize, st.Overlap)
	}
	if st.CurrentSegment != "" || st.IsPlaying || st.IsLoading {
		t.Error("new store should be idle")
	}
}

func TestPlayingAndLoadingAreExclusive(t *testing.T) {
	s := NewStore()
	id := WholeMessage("m1")

	s.StartLoading(id)
	st := s.Snapshot()
	if !st.IsLoading || st.IsPlaying {
		t.Errorf("after StartLoading: loading=%t playing=%t", st.IsLoading, st.IsPlaying)
	}

	s.StartPlaying(id, 10)
	st = s.Snapshot()
	if !st.IsPlaying || st.IsLoading {
		t.Errorf("after StartPlaying: loading=%t playing=%t", st.IsLoading, st.IsPlaying)
	}
	if st.Duration != 10 {
		t.Errorf("Duration = %v, want 10", st.Duration)
	}
}

func TestSetTimeClampsToDuration(t *testing.T) {
	s := NewStore()
	s.StartPlaying(WholeMessage("m1"), 10)

	s.SetTime(-1)
	if got := s.Snapshot().CurrentTime; got != 0 {
		t.Errorf("CurrentTime after SetTime(-1) = %v, want 0", got)
	}
	s.SetTime(42)
	if got := s.Snapshot().CurrentTime; got != 10 {
		t.Errorf("CurrentTime after SetTime(42) = %v, want 10", got)
	}
	s.SetTime(3.5)
	if got := s.Snapshot().CurrentTime; got != 3.5 {
		t.Errorf("CurrentTime = %v, want 3.5", got)
	}
}

func TestPauseRetainsSegmentAndPosition(t *testing.T) {
	s := NewStore()
	id := WholeMessage("m1")
	s.StartPlaying(id, 10)
	s.Pause(4.2)

	st := s.Snapshot()
	if st.IsPlaying {
		t.Error("paused store should not be playing")
	}
	if st.CurrentSegment != id {
		t.Errorf("CurrentSegment = %q, want %q", st.CurrentSegment, id)
	}
	if st.CurrentTime != 4.2 {
		t.Errorf("CurrentTime = %v, want 4.2", st.CurrentTime)
	}
}

func TestSetErrorClearsActivityFlags(t *testing.T) {
	s := NewStore()
	id := WholeMessage("m1")
	s.StartLoading(id)
	s.SetError(id, "decode failed")

	st := s.Snapshot()
	if st.IsPlaying || st.IsLoading {
		t.Error("error state should clear playing and loading")
	}
	if st.Err != "decode failed" || st.CurrentSegment != id {
		t.Errorf("Err = %q segment = %q", st.Err, st.CurrentSegment)
	}

	// Starting a new attempt clears the error.
	s.StartLoading(id)
	if got := s.Snapshot().Err; got != "" {
		t.Errorf("Err after retry = %q, want empty", got)
	}
}

func TestResetReturnsToIdleButKeepsParams(t *testing.T) {
	s := NewStore()
	s.SetRate(2.0)
	s.SetGrainSize(0.2)
	s.StartPlaying(WholeMessage("m1"), 10)
	s.SetTime(5)
	s.Reset()

	st := s.Snapshot()
	if st.CurrentSegment != "" || st.IsPlaying || st.CurrentTime != 0 || st.Duration != 0 {
		t.Errorf("Reset left residue: %+v", st)
	}
	if st.PlaybackRate != 2.0 || st.GrainSize != 0.2 {
		t.Error("Reset should not touch playback parameters")
	}
}

func TestOnChangeGetsSnapshots(t *testing.T) {
	s := NewStore()
	var seen []State
	s.SetOnChange(func(st State) { seen = append(seen, st) })

	s.StartLoading(WholeMessage("m1"))
	s.StartPlaying(WholeMessage("m1"), 10)
	s.SetTime(1)

	if len(seen) != 3 {
		t.Fatalf("onChange fired %d times, want 3", len(seen))
	}
	if !seen[0].IsLoading || !seen[1].IsPlaying || seen[2].CurrentTime != 1 {
		t.Errorf("unexpected snapshot sequence: %+v", seen)
	}
}

func TestInvalidParameterUpdatesIgnored(t *testing.T) {
	s := NewStore()
	s.SetRate(0)
	s.SetRate(-1)
	s.SetGrainSize(0)
	s.SetOverlap(-0.5)

	st := s.Snapshot()
	if st.PlaybackRate != 1.0 {
		t.Errorf("PlaybackRate = %v, want 1.0", st.PlaybackRate)
	}
	if st.GrainSize <= 0 || st.Overlap < 0 {
		t.Errorf("stretch params corrupted: grain=%v overlap=%v", st.GrainSize, st.Overlap)
	}
}
