package handler

import (
	"github.com/tokenize-x/ibc-relayer/ibc/channel"
	"github.com/tokenize-x/ibc-relayer/ibc/client"
	"github.com/tokenize-x/ibc-relayer/ibc/connection"
	"github.com/tokenize-x/ibc-relayer/ibc/height"
	"github.com/tokenize-x/ibc-relayer/ibc/ids"
)

// ClientResult describes the ledger mutation a client handler requires
// its caller to perform (spec.md §4.D: handlers never write to the
// store, they return a description of what the caller must persist).
type ClientResult struct {
	ClientId      ids.ClientId
	ClientState   client.AnyClientState
	ConsensusState client.AnyConsensusState
	Height        height.Height
}

// ConnectionResult describes the mutation a connection handler requires.
type ConnectionResult struct {
	ConnectionId ids.ConnectionId
	End          connection.End
}

// ChannelResult describes the mutation a channel handshake handler
// requires.
type ChannelResult struct {
	PortId    ids.PortId
	ChannelId ids.ChannelId
	End       channel.End
}

// PacketResultKind discriminates which packet-flow transition occurred.
type PacketResultKind int

const (
	PacketResultSend PacketResultKind = iota
	PacketResultRecv
	PacketResultAck
	PacketResultTimeout
	PacketResultTimeoutOnClose
)

// PacketResult describes the mutation a packet-flow handler requires
// (spec.md §4.D's canonical Timeout walkthrough, step 10). Channel is
// only set when the transition also mutates the channel end (e.g. an
// ordered timeout closing the source channel).
type PacketResult struct {
	Kind      PacketResultKind
	PortId    ids.PortId
	ChannelId ids.ChannelId
	Sequence  uint64

	// WriteCommitment is set on Send: the commitment bytes to store.
	WriteCommitment []byte
	// WriteReceipt is set on Recv for unordered channels.
	WriteReceipt bool
	// WriteAcknowledgement is set on Recv: the ack bytes to store.
	WriteAcknowledgement []byte
	// AdvanceNextSequenceRecv is set on Recv for ordered channels.
	AdvanceNextSequenceRecv uint64

	// Channel carries the updated channel end when the transition closes
	// or otherwise mutates it (e.g. ordered timeout).
	Channel *channel.End
}
