package handler

import (
	"fmt"

	"github.com/tokenize-x/ibc-relayer/ibc/height"
	"github.com/tokenize-x/ibc-relayer/ibc/ids"
)

// Kind discriminates a handler error (spec.md §4.D). Unlike the ambient
// errorsmod-wrapped errors used elsewhere in this module, handler errors
// are a structured value with fields callers pattern-match on (the two
// ids and two heights involved in the failed check), so Kind and Error
// stay a local type rather than an errorsmod registration.
type Kind int

const (
	KindChannelNotFound Kind = iota
	KindChannelClosed
	KindInvalidPacketCounterparty
	KindMissingConnection
	KindConnectionNotOpen
	KindMissingClientConsensusState
	KindFrozenClient
	KindClientNotFound
	KindPacketTimeoutHeightNotReached
	KindPacketTimeoutTimestampNotReached
	KindPacketCommitmentNotFound
	KindIncorrectPacketCommitment
	KindInvalidPacketSequence
	KindErrorInvalidConsensusState
	KindPacketReceiptAlreadyExists
	KindPacketAcknowledgementNotFound
	KindMissingCapability
	KindInvalidConnectionState
	KindInvalidChannelState
	KindConnectionAlreadyExists
	KindChannelAlreadyExists
	KindInvalidProof
	KindUninitializedConnection
	KindClientAlreadyExists
	KindClientUpdateNotAdvancing
)

// String renders a short, stable kind name.
func (k Kind) String() string {
	switch k {
	case KindChannelNotFound:
		return "ChannelNotFound"
	case KindChannelClosed:
		return "ChannelClosed"
	case KindInvalidPacketCounterparty:
		return "InvalidPacketCounterparty"
	case KindMissingConnection:
		return "MissingConnection"
	case KindConnectionNotOpen:
		return "ConnectionNotOpen"
	case KindMissingClientConsensusState:
		return "MissingClientConsensusState"
	case KindFrozenClient:
		return "FrozenClient"
	case KindClientNotFound:
		return "ClientNotFound"
	case KindPacketTimeoutHeightNotReached:
		return "PacketTimeoutHeightNotReached"
	case KindPacketTimeoutTimestampNotReached:
		return "PacketTimeoutTimestampNotReached"
	case KindPacketCommitmentNotFound:
		return "PacketCommitmentNotFound"
	case KindIncorrectPacketCommitment:
		return "IncorrectPacketCommitment"
	case KindInvalidPacketSequence:
		return "InvalidPacketSequence"
	case KindErrorInvalidConsensusState:
		return "ErrorInvalidConsensusState"
	case KindPacketReceiptAlreadyExists:
		return "PacketReceiptAlreadyExists"
	case KindPacketAcknowledgementNotFound:
		return "PacketAcknowledgementNotFound"
	case KindMissingCapability:
		return "MissingCapability"
	case KindInvalidConnectionState:
		return "InvalidConnectionState"
	case KindInvalidChannelState:
		return "InvalidChannelState"
	case KindConnectionAlreadyExists:
		return "ConnectionAlreadyExists"
	case KindChannelAlreadyExists:
		return "ChannelAlreadyExists"
	case KindInvalidProof:
		return "InvalidProof"
	case KindUninitializedConnection:
		return "UninitializedConnection"
	case KindClientAlreadyExists:
		return "ClientAlreadyExists"
	case KindClientUpdateNotAdvancing:
		return "ClientUpdateNotAdvancing"
	default:
		return "Unknown"
	}
}

// Error is the structured handler error value (spec.md §4.D: "a tagged
// union of kind values; each kind maps to a human-readable message").
// Only the fields relevant to Kind are populated.
type Error struct {
	Kind Kind

	PortId       ids.PortId
	ChannelId    ids.ChannelId
	ConnectionId ids.ConnectionId
	ClientId     ids.ClientId
	Sequence     uint64
	HeightA      height.Height
	HeightB      height.Height
	TimestampA   uint64
	TimestampB   uint64
	Detail       string
}

// Error implements the error interface with a human-readable message
// mirroring the structured fields, per spec.md §4.D.
func (e *Error) Error() string {
	switch e.Kind {
	case KindChannelNotFound:
		return fmt.Sprintf("channel not found: port %s channel %s", e.PortId, e.ChannelId)
	case KindChannelClosed:
		return fmt.Sprintf("channel closed: port %s channel %s", e.PortId, e.ChannelId)
	case KindInvalidPacketCounterparty:
		return fmt.Sprintf("invalid packet counterparty: port %s channel %s", e.PortId, e.ChannelId)
	case KindMissingConnection:
		return fmt.Sprintf("missing connection: %s", e.ConnectionId)
	case KindConnectionNotOpen:
		return fmt.Sprintf("connection not open: %s", e.ConnectionId)
	case KindMissingClientConsensusState:
		return fmt.Sprintf("missing consensus state for client %s at height %s", e.ClientId, e.HeightA)
	case KindFrozenClient:
		return fmt.Sprintf("client is frozen: %s", e.ClientId)
	case KindClientNotFound:
		return fmt.Sprintf("client not found: %s", e.ClientId)
	case KindPacketTimeoutHeightNotReached:
		return fmt.Sprintf("packet timeout height not reached: timeout %s, proof height %s", e.HeightA, e.HeightB)
	case KindPacketTimeoutTimestampNotReached:
		return fmt.Sprintf("packet timeout timestamp not reached: timeout %d, consensus timestamp %d", e.TimestampA, e.TimestampB)
	case KindPacketCommitmentNotFound:
		return fmt.Sprintf("packet commitment not found: port %s channel %s seq %d", e.PortId, e.ChannelId, e.Sequence)
	case KindIncorrectPacketCommitment:
		return fmt.Sprintf("incorrect packet commitment: port %s channel %s seq %d", e.PortId, e.ChannelId, e.Sequence)
	case KindInvalidPacketSequence:
		return fmt.Sprintf("invalid packet sequence %d: %s", e.Sequence, e.Detail)
	case KindErrorInvalidConsensusState:
		return fmt.Sprintf("invalid consensus state: %s", e.Detail)
	case KindPacketReceiptAlreadyExists:
		return fmt.Sprintf("packet receipt already exists: port %s channel %s seq %d", e.PortId, e.ChannelId, e.Sequence)
	case KindPacketAcknowledgementNotFound:
		return fmt.Sprintf("packet acknowledgement not found: port %s channel %s seq %d", e.PortId, e.ChannelId, e.Sequence)
	case KindMissingCapability:
		return fmt.Sprintf("missing capability for port %s", e.PortId)
	case KindInvalidConnectionState:
		return fmt.Sprintf("invalid connection state: %s: %s", e.ConnectionId, e.Detail)
	case KindInvalidChannelState:
		return fmt.Sprintf("invalid channel state: port %s channel %s: %s", e.PortId, e.ChannelId, e.Detail)
	case KindConnectionAlreadyExists:
		return fmt.Sprintf("connection already exists: %s", e.ConnectionId)
	case KindChannelAlreadyExists:
		return fmt.Sprintf("channel already exists: port %s channel %s", e.PortId, e.ChannelId)
	case KindInvalidProof:
		return fmt.Sprintf("invalid proof: %s", e.Detail)
	case KindUninitializedConnection:
		return fmt.Sprintf("uninitialized connection: %s", e.ConnectionId)
	case KindClientAlreadyExists:
		return fmt.Sprintf("client already exists: %s", e.ClientId)
	case KindClientUpdateNotAdvancing:
		return fmt.Sprintf("update header height %s does not exceed latest trusted height %s: client %s", e.HeightA, e.HeightB, e.ClientId)
	default:
		return fmt.Sprintf("handler error: %s", e.Detail)
	}
}

func errChannelNotFound(port ids.PortId, ch ids.ChannelId) error {
	return &Error{Kind: KindChannelNotFound, PortId: port, ChannelId: ch}
}

func errChannelClosed(port ids.PortId, ch ids.ChannelId) error {
	return &Error{Kind: KindChannelClosed, PortId: port, ChannelId: ch}
}

func errMissingCapability(port ids.PortId) error {
	return &Error{Kind: KindMissingCapability, PortId: port}
}

func errInvalidPacketCounterparty(port ids.PortId, ch ids.ChannelId) error {
	return &Error{Kind: KindInvalidPacketCounterparty, PortId: port, ChannelId: ch}
}

func errMissingConnection(id ids.ConnectionId) error {
	return &Error{Kind: KindMissingConnection, ConnectionId: id}
}

func errConnectionNotOpen(id ids.ConnectionId) error {
	return &Error{Kind: KindConnectionNotOpen, ConnectionId: id}
}

func errMissingClientConsensusState(id ids.ClientId, h height.Height) error {
	return &Error{Kind: KindMissingClientConsensusState, ClientId: id, HeightA: h}
}

func errClientNotFound(id ids.ClientId) error {
	return &Error{Kind: KindClientNotFound, ClientId: id}
}

func errFrozenClient(id ids.ClientId) error {
	return &Error{Kind: KindFrozenClient, ClientId: id}
}

func errPacketTimeoutHeightNotReached(timeout, proof height.Height) error {
	return &Error{Kind: KindPacketTimeoutHeightNotReached, HeightA: timeout, HeightB: proof}
}

func errPacketTimeoutTimestampNotReached(timeoutNs, consensusNs uint64) error {
	return &Error{Kind: KindPacketTimeoutTimestampNotReached, TimestampA: timeoutNs, TimestampB: consensusNs}
}

func errPacketCommitmentNotFound(port ids.PortId, ch ids.ChannelId, seq uint64) error {
	return &Error{Kind: KindPacketCommitmentNotFound, PortId: port, ChannelId: ch, Sequence: seq}
}

func errIncorrectPacketCommitment(port ids.PortId, ch ids.ChannelId, seq uint64) error {
	return &Error{Kind: KindIncorrectPacketCommitment, PortId: port, ChannelId: ch, Sequence: seq}
}

func errInvalidPacketSequence(seq uint64, detail string) error {
	return &Error{Kind: KindInvalidPacketSequence, Sequence: seq, Detail: detail}
}

func errPacketReceiptAlreadyExists(port ids.PortId, ch ids.ChannelId, seq uint64) error {
	return &Error{Kind: KindPacketReceiptAlreadyExists, PortId: port, ChannelId: ch, Sequence: seq}
}

func errPacketAcknowledgementNotFound(port ids.PortId, ch ids.ChannelId, seq uint64) error {
	return &Error{Kind: KindPacketAcknowledgementNotFound, PortId: port, ChannelId: ch, Sequence: seq}
}

func errInvalidConnectionState(id ids.ConnectionId, detail string) error {
	return &Error{Kind: KindInvalidConnectionState, ConnectionId: id, Detail: detail}
}

func errInvalidChannelState(port ids.PortId, ch ids.ChannelId, detail string) error {
	return &Error{Kind: KindInvalidChannelState, PortId: port, ChannelId: ch, Detail: detail}
}

func errInvalidProof(detail string) error {
	return &Error{Kind: KindInvalidProof, Detail: detail}
}

func errUninitializedConnection(id ids.ConnectionId) error {
	return &Error{Kind: KindUninitializedConnection, ConnectionId: id}
}

func errClientAlreadyExists(id ids.ClientId) error {
	return &Error{Kind: KindClientAlreadyExists, ClientId: id}
}

func errClientUpdateNotAdvancing(id ids.ClientId, newHeight, existingHeight height.Height) error {
	return &Error{Kind: KindClientUpdateNotAdvancing, ClientId: id, HeightA: newHeight, HeightB: existingHeight}
}
