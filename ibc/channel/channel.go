// Package channel implements the channel end and packet value types, and
// the packet commitment hashing contract (spec.md §3 component B,
// channel/packet half).
package channel

import (
	"encoding/binary"

	errorsmod "cosmossdk.io/errors"

	"github.com/tokenize-x/ibc-relayer/ibc/height"
	"github.com/tokenize-x/ibc-relayer/ibc/ids"
)

// State is the channel handshake/lifecycle state (spec.md §3).
type State int

const (
	// Uninitialized marks a channel end that has not been created.
	Uninitialized State = iota
	// Init is the state after ChanOpenInit.
	Init
	// TryOpen is the state after ChanOpenTry.
	TryOpen
	// Open is the usable state.
	Open
	// Closed is terminal: a closed channel never reopens.
	Closed
)

// String renders the state name.
func (s State) String() string {
	switch s {
	case Init:
		return "STATE_INIT"
	case TryOpen:
		return "STATE_TRYOPEN"
	case Open:
		return "STATE_OPEN"
	case Closed:
		return "STATE_CLOSED"
	default:
		return "STATE_UNINITIALIZED_UNSPECIFIED"
	}
}

// Order is the channel's delivery ordering guarantee.
type Order int

const (
	// Unordered channels deliver packets independently of sequence order.
	Unordered Order = iota
	// Ordered channels enforce strict ascending delivery.
	Ordered
)

// String renders the ordering name.
func (o Order) String() string {
	if o == Ordered {
		return "ORDER_ORDERED"
	}
	return "ORDER_UNORDERED"
}

// Counterparty identifies the channel end's peer.
type Counterparty struct {
	PortId    ids.PortId
	ChannelId ids.ChannelId // empty until the counterparty has opened its end
}

// End is a channel end (spec.md §3).
type End struct {
	State          State
	Ordering       Order
	Counterparty   Counterparty
	ConnectionHops []ids.ConnectionId
	Version        string
}

// ErrInvalidChannelEnd is returned by Validate.
var ErrInvalidChannelEnd = errorsmod.Register("channel", 1, "invalid channel end")

// Validate enforces spec.md §3's invariants: connection_hops non-empty, and
// once Open, the counterparty's channel id must be set.
func (e End) Validate() error {
	if len(e.ConnectionHops) == 0 {
		return errorsmod.Wrap(ErrInvalidChannelEnd, "connection_hops must be non-empty")
	}
	if e.State == Open && e.Counterparty.ChannelId == "" {
		return errorsmod.Wrap(ErrInvalidChannelEnd, "open channel must have counterparty channel id")
	}
	return nil
}

// Connection returns the connection identifying hop this channel runs over
// (the first hop, per spec.md §3: "a channel identifies its underlying
// connection by the first hop").
func (e End) Connection() ids.ConnectionId {
	if len(e.ConnectionHops) == 0 {
		return ""
	}
	return e.ConnectionHops[0]
}

// Packet is a single IBC packet (spec.md §3).
type Packet struct {
	Sequence            uint64
	SourcePort          ids.PortId
	SourceChannel       ids.ChannelId
	DestinationPort     ids.PortId
	DestinationChannel  ids.ChannelId
	Data                []byte
	TimeoutHeight       height.Height
	TimeoutTimestampNs  uint64 // 0 = disabled
}

// ErrInvalidPacket is returned by Validate.
var ErrInvalidPacket = errorsmod.Register("channel", 2, "invalid packet")

// Validate enforces spec.md §3's invariants: sequence >= 1, and at least
// one of the two timeouts enabled.
func (p Packet) Validate() error {
	if p.Sequence < 1 {
		return errorsmod.Wrap(ErrInvalidPacket, "sequence must be >= 1")
	}
	if p.TimeoutHeight.IsZero() && p.TimeoutTimestampNs == 0 {
		return errorsmod.Wrap(ErrInvalidPacket, "at least one timeout must be enabled")
	}
	return nil
}

// CommitmentInput serializes the fields a packet commitment hashes over:
// (timeout_timestamp, timeout_height, data), per spec.md §3. The hash
// function itself is a reader capability (spec.md §4.D); this only fixes
// the byte layout fed to it, so every caller hashes the same bytes.
func CommitmentInput(timeoutTimestampNs uint64, timeoutHeight height.Height, data []byte) []byte {
	buf := make([]byte, 0, 8+8+8+len(data))

	var tsBuf [8]byte
	binary.BigEndian.PutUint64(tsBuf[:], timeoutTimestampNs)
	buf = append(buf, tsBuf[:]...)

	var revBuf [8]byte
	binary.BigEndian.PutUint64(revBuf[:], timeoutHeight.RevisionNumber)
	buf = append(buf, revBuf[:]...)

	var heightBuf [8]byte
	binary.BigEndian.PutUint64(heightBuf[:], timeoutHeight.RevisionHeight)
	buf = append(buf, heightBuf[:]...)

	buf = append(buf, data...)
	return buf
}

// AcknowledgementSuccess is the canonical payload written by a successful
// application-level acknowledgement, used by tests and the mock context.
var AcknowledgementSuccess = []byte{byte(1)}
