package playback

import "testing"

func TestSegmentIDRoundTrip(t *testing.T) {
	id := MessagePart("m1", 3)
	if string(id) != "m1_part_3" {
		t.Errorf("MessagePart = %q, want %q", id, "m1_part_3")
	}
	if got := id.MessageID(); got != "m1" {
		t.Errorf("MessageID() = %q, want %q", got, "m1")
	}
	part, ok := id.Part()
	if !ok || part != 3 {
		t.Errorf("Part() = %d, %t, want 3, true", part, ok)
	}
}

func TestWholeMessageSegment(t *testing.T) {
	id := WholeMessage("abc-123")
	if got := id.MessageID(); got != "abc-123" {
		t.Errorf("MessageID() = %q, want %q", got, "abc-123")
	}
	if _, ok := id.Part(); ok {
		t.Error("whole-message segment should have no part index")
	}
}

func TestSegmentIDNonNumericSuffix(t *testing.T) {
	// A message id that happens to contain the separator but no numeric
	// index is still a whole-message id.
	id := SegmentID("m1_part_final")
	if got := id.MessageID(); got != "m1_part_final" {
		t.Errorf("MessageID() = %q, want %q", got, "m1_part_final")
	}
	if _, ok := id.Part(); ok {
		t.Error("non-numeric suffix should not parse as a part")
	}
}
