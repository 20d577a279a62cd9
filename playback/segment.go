// Package playback coordinates text-to-speech audio across chat messages:
// which segment is playing, which segments are being fetched, and how each
// segment's control should render. A message is either a single playable
// segment or is split into parts, each a segment of its own.
package playback

import (
	"fmt"
	"strconv"
	"strings"
)

// partSeparator joins a message id and a part index into a segment id.
const partSeparator = "_part_"

// SegmentID uniquely identifies one playable unit: a whole message, or one
// part of a message whose text was split for synthesis.
type SegmentID string

// WholeMessage returns the segment id for a single-segment message.
func WholeMessage(messageID string) SegmentID {
	return SegmentID(messageID)
}

// MessagePart returns the segment id for one part of a split message.
func MessagePart(messageID string, part int) SegmentID {
	return SegmentID(fmt.Sprintf("%s%s%d", messageID, partSeparator, part))
}

// MessageID returns the message this segment belongs to.
func (id SegmentID) MessageID() string {
	if i := strings.LastIndex(string(id), partSeparator); i >= 0 {
		if _, err := strconv.Atoi(string(id)[i+len(partSeparator):]); err == nil {
			return string(id)[:i]
		}
	}
	return string(id)
}

// Part returns the part index encoded in the segment id, or false for a
// whole-message segment.
func (id SegmentID) Part() (int, bool) {
	i := strings.LastIndex(string(id), partSeparator)
	if i < 0 {
		return 0, false
	}
	n, err := strconv.Atoi(string(id)[i+len(partSeparator):])
	if err != nil {
		return 0, false
	}
	return n, true
}
