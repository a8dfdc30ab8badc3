// Package height implements the revision-scoped height used throughout the
// IBC protocol value model (client states, consensus states, proofs,
// packet timeouts).
package height

import (
	"fmt"
	"strconv"
	"strings"

	errorsmod "cosmossdk.io/errors"
)

// Height is a monotonically increasing block height within a revision.
// Comparisons across revisions are total, not undefined: compare orders
// lexicographically on (RevisionNumber, RevisionHeight), so a mismatched
// revision never panics, it just dominates the comparison. It remains the
// caller's responsibility to decide whether comparing across revisions is
// meaningful for its client.
type Height struct {
	RevisionNumber uint64
	RevisionHeight uint64
}

// Zero is the height with both components unset. A packet timeout_height of
// Zero means "never time out by height" (spec.md §3).
var Zero = Height{}

// New builds a Height from its components.
func New(revisionNumber, revisionHeight uint64) Height {
	return Height{RevisionNumber: revisionNumber, RevisionHeight: revisionHeight}
}

// IsZero reports whether both components are zero.
func (h Height) IsZero() bool {
	return h.RevisionNumber == 0 && h.RevisionHeight == 0
}

// String renders the height as "<revision>-<height>".
func (h Height) String() string {
	return fmt.Sprintf("%d-%d", h.RevisionNumber, h.RevisionHeight)
}

// LT reports whether h is strictly before other in the (revision, height)
// order.
func (h Height) LT(other Height) bool {
	return h.compare(other) < 0
}

// LTE reports whether h is at or before other in the (revision, height)
// order.
func (h Height) LTE(other Height) bool {
	return h.compare(other) <= 0
}

// GT reports whether h is strictly after other in the (revision, height)
// order.
func (h Height) GT(other Height) bool {
	return h.compare(other) > 0
}

// GTE reports whether h is at or after other in the (revision, height)
// order.
func (h Height) GTE(other Height) bool {
	return h.compare(other) >= 0
}

// EQ reports height equality.
func (h Height) EQ(other Height) bool {
	return h.RevisionNumber == other.RevisionNumber && h.RevisionHeight == other.RevisionHeight
}

// compare returns -1, 0, or 1 the way bytes.Compare does, lexicographic on
// (RevisionNumber, RevisionHeight). Heights across revisions are still
// totally ordered by this definition (revision dominates); it is the
// caller's responsibility to decide whether that comparison is meaningful
// for its client.
func (h Height) compare(other Height) int {
	switch {
	case h.RevisionNumber != other.RevisionNumber:
		if h.RevisionNumber < other.RevisionNumber {
			return -1
		}
		return 1
	case h.RevisionHeight < other.RevisionHeight:
		return -1
	case h.RevisionHeight > other.RevisionHeight:
		return 1
	default:
		return 0
	}
}

// Increment returns the height with RevisionHeight advanced by one.
func (h Height) Increment() Height {
	return Height{RevisionNumber: h.RevisionNumber, RevisionHeight: h.RevisionHeight + 1}
}

// ErrInvalidHeightString is returned by Parse when the input is not of the
// form "<revision>-<height>".
var ErrInvalidHeightString = errorsmod.Register("height", 1, "invalid height string")

// Parse decodes a "<revision>-<height>" string, the form String renders and
// the wire form used in packet_timeout_height attributes.
func Parse(s string) (Height, error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return Height{}, errorsmod.Wrapf(ErrInvalidHeightString, "%q", s)
	}

	revisionNumber, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return Height{}, errorsmod.Wrapf(ErrInvalidHeightString, "%q: %s", s, err)
	}

	revisionHeight, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return Height{}, errorsmod.Wrapf(ErrInvalidHeightString, "%q: %s", s, err)
	}

	return Height{RevisionNumber: revisionNumber, RevisionHeight: revisionHeight}, nil
}
