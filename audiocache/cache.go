// Package audiocache stores fetched TTS audio per (message, part) so a
// segment is never synthesized twice. The playback layer only reads and
// writes; eviction policy belongs to the cache implementation.
package audiocache

// Cache maps (messageID, part) to previously fetched raw audio bytes.
type Cache interface {
	// Get returns the cached audio for the part, if present.
	Get(messageID string, part int) ([]byte, bool)

	// Put stores the audio for the part. totalParts records how many parts
	// the message was split into.
	Put(messageID string, part int, data []byte, totalParts int)

	// Has reports whether the part is cached without copying the data.
	Has(messageID string, part int) bool

	// PartCount returns the recorded number of parts for the message, or 0
	// if nothing is cached for it.
	PartCount(messageID string) int
}
