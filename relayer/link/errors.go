package link

import "fmt"

// errOrderedSequenceGap is returned when an ordered channel's next
// SendPacket does not match the sequence this link expected next. The
// caller (relaySend) does not relay that packet: it drives a timeout for it
// instead of reordering, then goes on relaying from the next sequence.
func errOrderedSequenceGap(expected, got uint64) error {
	return fmt.Errorf("link: ordered channel sequence gap: expected %d, got %d", expected, got)
}
