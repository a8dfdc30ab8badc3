// Package ids implements the validated, opaque identifier types for
// chains, clients, connections, channels, and ports (spec.md §3 component A).
package ids

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	errorsmod "cosmossdk.io/errors"
)

// ErrInvalidIdentifier is returned whenever an identifier fails its
// character-set or length validation.
var ErrInvalidIdentifier = errorsmod.Register("ids", 1, "invalid identifier")

// identifierPattern matches the character set ibc-go validates against:
// lowercase/uppercase letters, digits, and `._+-#[]<>`.
var identifierPattern = regexp.MustCompile(`^[a-zA-Z0-9._+\-\[\]#<>]+$`)

const (
	minIdentifierLength = 1
	maxIdentifierLength = 64
)

func validate(kind, s string) error {
	if l := len(s); l < minIdentifierLength || l > maxIdentifierLength {
		return errorsmod.Wrapf(ErrInvalidIdentifier, "%s %q: length %d out of [%d,%d]",
			kind, s, l, minIdentifierLength, maxIdentifierLength)
	}
	if !identifierPattern.MatchString(s) {
		return errorsmod.Wrapf(ErrInvalidIdentifier, "%s %q: disallowed character", kind, s)
	}
	return nil
}

// ChainId identifies a chain. By convention it carries a trailing
// "-<revision_number>" suffix that fixes the chain's current height
// revision (spec.md §3).
type ChainId string

// Validate checks the identifier's character set and length.
func (id ChainId) Validate() error {
	return validate("chain id", string(id))
}

// String implements fmt.Stringer.
func (id ChainId) String() string { return string(id) }

// RevisionNumber extracts the trailing "-N" suffix, defaulting to 0 when
// absent (pre-IBC, non-revisioned chain ids).
func (id ChainId) RevisionNumber() uint64 {
	s := string(id)
	idx := strings.LastIndex(s, "-")
	if idx < 0 || idx == len(s)-1 {
		return 0
	}
	n, err := strconv.ParseUint(s[idx+1:], 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// ClientId identifies a light client.
type ClientId string

// Validate checks the identifier's character set and length.
func (id ClientId) Validate() error { return validate("client id", string(id)) }

// String implements fmt.Stringer.
func (id ClientId) String() string { return string(id) }

// ConnectionId identifies a connection end.
type ConnectionId string

// Validate checks the identifier's character set and length.
func (id ConnectionId) Validate() error { return validate("connection id", string(id)) }

// String implements fmt.Stringer.
func (id ConnectionId) String() string { return string(id) }

// ChannelId identifies a channel end, scoped to a port.
type ChannelId string

// Validate checks the identifier's character set and length.
func (id ChannelId) Validate() error { return validate("channel id", string(id)) }

// String implements fmt.Stringer.
func (id ChannelId) String() string { return string(id) }

// PortId identifies the application module bound to a channel.
type PortId string

// Validate checks the identifier's character set and length.
func (id PortId) Validate() error { return validate("port id", string(id)) }

// String implements fmt.Stringer.
func (id PortId) String() string { return string(id) }

// PortChannel is the (port, channel) pair used as a lookup key throughout
// the handler engine and chain runtime.
type PortChannel struct {
	PortId    PortId
	ChannelId ChannelId
}

// String renders the pair as "port/channel", the conventional IBC path
// fragment.
func (pc PortChannel) String() string {
	return fmt.Sprintf("%s/%s", pc.PortId, pc.ChannelId)
}
