// Package chain implements the per-chain runtime actor (spec.md §4.E):
// one long-lived worker per configured chain owning a driver, a
// subscription to block events, a light-client consensus cache, and a
// request mailbox the rest of the process uses instead of touching the
// driver directly.
package chain

import (
	"context"

	"github.com/tokenize-x/ibc-relayer/ibc/channel"
	"github.com/tokenize-x/ibc-relayer/ibc/client"
	"github.com/tokenize-x/ibc-relayer/ibc/connection"
	"github.com/tokenize-x/ibc-relayer/ibc/events"
	"github.com/tokenize-x/ibc-relayer/ibc/height"
	"github.com/tokenize-x/ibc-relayer/ibc/ids"
)

// Status is the minimal chain status a driver must report.
type Status struct {
	ChainId ids.ChainId
	Height  height.Height
}

// TxResult is the outcome of submitting a batch of messages.
type TxResult struct {
	Height  height.Height
	Code    uint32 // 0 = success
	Log     string
	Events  []events.RawEvent
}

// Succeeded reports whether the submission was accepted by the chain.
func (r TxResult) Succeeded() bool { return r.Code == 0 }

// ProvenValue bundles a queried value with the Merkle proof backing it,
// satisfying a handler's Proofs input (spec.md §4.D, §4.E).
type ProvenValue struct {
	Value  []byte
	Height height.Height
	Proof  []byte
}

// BlockEvents is one batch yielded by a driver's block subscription:
// every raw event produced at one height (spec.md §4.E).
type BlockEvents struct {
	Height height.Height
	Raw    []events.RawEvent
}

// Driver is the external capability a chain runtime owns (spec.md §4.E,
// §6: "the capability set listed in §4.E is the entire surface; anything
// else is out of scope"). Concrete drivers (signing, broadcasting,
// Merkle-proof queries against a specific ledger) are deliberately not
// part of this core (spec.md §1 Non-goals).
type Driver interface {
	ChainId() ids.ChainId

	Status(ctx context.Context) (Status, error)
	SubmitMessages(ctx context.Context, msgs []any) (TxResult, error)

	ClientState(ctx context.Context, id ids.ClientId, h height.Height) (client.AnyClientState, ProvenValue, error)
	ConsensusState(ctx context.Context, id ids.ClientId, h height.Height) (client.AnyConsensusState, ProvenValue, error)
	ConnectionEnd(ctx context.Context, id ids.ConnectionId, h height.Height) (connection.End, ProvenValue, error)
	ChannelEnd(ctx context.Context, port ids.PortId, ch ids.ChannelId, h height.Height) (channel.End, ProvenValue, error)
	PacketCommitment(ctx context.Context, port ids.PortId, ch ids.ChannelId, sequence uint64, h height.Height) (ProvenValue, error)
	PacketAcknowledgement(ctx context.Context, port ids.PortId, ch ids.ChannelId, sequence uint64, h height.Height) (ProvenValue, error)
	PacketReceiptAbsence(ctx context.Context, port ids.PortId, ch ids.ChannelId, sequence uint64, h height.Height) (ProvenValue, error)
	NextSequenceRecv(ctx context.Context, port ids.PortId, ch ids.ChannelId, h height.Height) (uint64, ProvenValue, error)

	PacketCommitments(ctx context.Context, port ids.PortId, ch ids.ChannelId) ([]uint64, error)
	UnreceivedPackets(ctx context.Context, port ids.PortId, ch ids.ChannelId, sequences []uint64) ([]uint64, error)
	UnreceivedAcks(ctx context.Context, port ids.PortId, ch ids.ChannelId, sequences []uint64) ([]uint64, error)

	BuildClientUpdateHeader(ctx context.Context, trustedHeight height.Height) (client.AnyConsensusState, client.AnyClientState, error)

	Subscribe(ctx context.Context) (<-chan BlockEvents, error)
}
