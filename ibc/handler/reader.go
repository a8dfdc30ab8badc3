// Package handler implements the pure IBC protocol state machine
// (spec.md §4.D): one function per message kind, each of shape
// `process(reader, message) -> (HandlerOutput, error)`. A handler never
// performs I/O and never mutates anything; it returns a typed Result
// describing the mutation its caller must persist.
package handler

import (
	"github.com/tokenize-x/ibc-relayer/ibc/channel"
	"github.com/tokenize-x/ibc-relayer/ibc/client"
	"github.com/tokenize-x/ibc-relayer/ibc/connection"
	"github.com/tokenize-x/ibc-relayer/ibc/height"
	"github.com/tokenize-x/ibc-relayer/ibc/ids"
)

// Proofs bundles the height at which a counterparty state was observed
// with the Merkle proof bytes backing it (spec.md §4.D). The handler
// engine never inspects proof bytes directly; it only ever hands them
// back to the Reader's Verify* capabilities, which encapsulate the light
// client cryptography the core deliberately does not implement (spec.md
// §1 Non-goals).
type Proofs struct {
	Height height.Height
	Object []byte
	Client []byte // optional accompanying client state proof
}

// Reader exposes every read-only ledger lookup a handler may perform
// (spec.md §4.D). It is the entire surface between pure protocol logic
// and ledger state; nothing else may be queried.
type Reader interface {
	ClientState(id ids.ClientId) (client.AnyClientState, bool)
	ClientConsensusState(id ids.ClientId, h height.Height) (client.AnyConsensusState, bool)
	ConnectionEnd(id ids.ConnectionId) (connection.End, bool)
	ChannelEnd(port ids.PortId, ch ids.ChannelId) (channel.End, bool)
	GetPacketCommitment(port ids.PortId, ch ids.ChannelId, sequence uint64) ([]byte, bool)
	GetPacketReceipt(port ids.PortId, ch ids.ChannelId, sequence uint64) bool
	GetNextSequenceRecv(port ids.PortId, ch ids.ChannelId) (uint64, bool)
	GetPacketAcknowledgement(port ids.PortId, ch ids.ChannelId, sequence uint64) ([]byte, bool)
	AuthenticatedCapability(port ids.PortId) bool
	Hash(data []byte) []byte

	// VerifyConnectionState, VerifyChannelState, VerifyClientState verify
	// that the counterparty ledger's state at proofs.Height matches the
	// expected value, per the Merkle proof carried in proofs.Object.
	VerifyConnectionState(conn connection.End, proofs Proofs, counterpartyConnectionId ids.ConnectionId, expected connection.End) error
	VerifyChannelState(conn connection.End, proofs Proofs, port ids.PortId, ch ids.ChannelId, expected channel.End) error
	VerifyClientFullState(conn connection.End, proofs Proofs, counterpartyClientId ids.ClientId, expected client.AnyClientState) error

	// VerifyPacketCommitment, VerifyPacketAcknowledgement,
	// VerifyPacketReceiptAbsence, VerifyNextSequenceRecv verify packet-flow
	// claims about the counterparty channel end's substore at proofs.Height.
	VerifyPacketCommitment(conn connection.End, proofs Proofs, port ids.PortId, ch ids.ChannelId, sequence uint64, commitment []byte) error
	VerifyPacketAcknowledgement(conn connection.End, proofs Proofs, port ids.PortId, ch ids.ChannelId, sequence uint64, ack []byte) error
	VerifyPacketReceiptAbsence(conn connection.End, proofs Proofs, port ids.PortId, ch ids.ChannelId, sequence uint64) error
	VerifyNextSequenceRecv(conn connection.End, proofs Proofs, port ids.PortId, ch ids.ChannelId, nextSequenceRecv uint64) error
}
