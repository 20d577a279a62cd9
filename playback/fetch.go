package playback

import (
	"context"
	"sync"
)

// FetchSnapshot is a point-in-time view of fetch activity, consumed by the
// projector. Maps are never nil.
type FetchSnapshot struct {
	Fetching   map[SegmentID]bool
	Errors     map[SegmentID]string
	Aggregates map[string]bool
}

// FetchTracker tracks in-flight TTS fetches per segment and per message
// aggregate. It enforces at most one fetch per segment id and carries the
// cancellation tokens for cooperative cancellation: Begin hands out a
// context that the fetch observes at its suspension points.
type FetchTracker struct {
	mu         sync.Mutex
	fetching   map[SegmentID]context.CancelFunc
	errors     map[SegmentID]string
	aggregates map[string]context.CancelFunc
}

// NewFetchTracker creates an empty tracker.
func NewFetchTracker() *FetchTracker {
	return &FetchTracker{
		fetching:   make(map[SegmentID]context.CancelFunc),
		errors:     make(map[SegmentID]string),
		aggregates: make(map[string]context.CancelFunc),
	}
}

// Begin registers a fetch for the segment. It returns false (and no
// context) if a fetch for this segment is already in flight.
func (t *FetchTracker) Begin(id SegmentID) (context.Context, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, inFlight := t.fetching[id]; inFlight {
		return nil, false
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.fetching[id] = cancel
	return ctx, true
}

// End settles the segment's fetch. A non-nil err is recorded for the
// segment; a nil err clears any prior error. Unknown ids are ignored except
// for the error bookkeeping.
func (t *FetchTracker) End(id SegmentID, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if cancel, ok := t.fetching[id]; ok {
		cancel()
		delete(t.fetching, id)
	}
	if err != nil {
		t.errors[id] = err.Error()
	} else {
		delete(t.errors, id)
	}
}

// Cancel signals cancellation to the segment's in-flight fetch and settles
// it without an error: a user-initiated cancel is not a failure.
func (t *FetchTracker) Cancel(id SegmentID) {
	t.End(id, nil)
}

// IsFetching reports whether the segment has a fetch in flight.
func (t *FetchTracker) IsFetching(id SegmentID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.fetching[id]
	return ok
}

// Err returns the segment's last fetch error, or "".
func (t *FetchTracker) Err(id SegmentID) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.errors[id]
}

// BeginAggregate registers a message-level "fetch all parts" operation.
// Returns false if one is already running for this message.
func (t *FetchTracker) BeginAggregate(messageID string) (context.Context, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, inFlight := t.aggregates[messageID]; inFlight {
		return nil, false
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.aggregates[messageID] = cancel
	return ctx, true
}

// EndAggregate clears the message's aggregate record.
func (t *FetchTracker) EndAggregate(messageID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if cancel, ok := t.aggregates[messageID]; ok {
		cancel()
		delete(t.aggregates, messageID)
	}
}

// CancelAggregate cancels the aggregate and every still-pending per-part
// fetch belonging to the message. Parts already fetched stay cached, so a
// retry resumes where the cancel left off.
func (t *FetchTracker) CancelAggregate(messageID string) {
	t.mu.Lock()
	if cancel, ok := t.aggregates[messageID]; ok {
		cancel()
		delete(t.aggregates, messageID)
	}
	var pending []SegmentID
	for id := range t.fetching {
		if id.MessageID() == messageID {
			pending = append(pending, id)
		}
	}
	t.mu.Unlock()

	for _, id := range pending {
		t.Cancel(id)
	}
}

// IsAggregateFetching reports whether a message-level fetch is running.
func (t *FetchTracker) IsAggregateFetching(messageID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.aggregates[messageID]
	return ok
}

// Snapshot copies the tracker's visible state for projection.
func (t *FetchTracker) Snapshot() FetchSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap := FetchSnapshot{
		Fetching:   make(map[SegmentID]bool, len(t.fetching)),
		Errors:     make(map[SegmentID]string, len(t.errors)),
		Aggregates: make(map[string]bool, len(t.aggregates)),
	}
	for id := range t.fetching {
		snap.Fetching[id] = true
	}
	for id, msg := range t.errors {
		snap.Errors[id] = msg
	}
	for id := range t.aggregates {
		snap.Aggregates[id] = true
	}
	return snap
}
