package handler

import (
	"github.com/tokenize-x/ibc-relayer/ibc/channel"
	"github.com/tokenize-x/ibc-relayer/ibc/client"
	"github.com/tokenize-x/ibc-relayer/ibc/connection"
	"github.com/tokenize-x/ibc-relayer/ibc/ids"
)

// ClientIdentifier is the identifier type accepted by handler messages
// that name a client.
type ClientIdentifier = ids.ClientId

// MsgCreateClient creates a new client with an initial client and
// consensus state.
type MsgCreateClient struct {
	ClientId       ids.ClientId
	ClientState    client.AnyClientState
	ConsensusState client.AnyConsensusState
}

// MsgUpdateClient advances a client with a new header, proven by the
// client's own consensus rules (verified upstream of this handler).
type MsgUpdateClient struct {
	ClientId       ids.ClientId
	Header         client.AnyConsensusState
	HeaderClient   client.AnyClientState // the client state the header implies, e.g. updated latest height
}

// MsgConnOpenInit starts a connection handshake from this chain.
type MsgConnOpenInit struct {
	ClientId     ids.ClientId
	Counterparty connection.Counterparty
	Versions     []string
	DelayPeriodSec uint64
}

// MsgConnOpenTry responds to a counterparty's ConnOpenInit.
type MsgConnOpenTry struct {
	ClientId              ids.ClientId
	Counterparty           connection.Counterparty
	Versions               []string
	DelayPeriodSec         uint64
	CounterpartyVersions   []string
	Proofs                 Proofs
}

// MsgConnOpenAck completes the initiator's half of the handshake.
type MsgConnOpenAck struct {
	ConnectionId       ids.ConnectionId
	Version            string
	CounterpartyConnectionId ids.ConnectionId
	Proofs             Proofs
}

// MsgConnOpenConfirm completes the responder's half of the handshake.
type MsgConnOpenConfirm struct {
	ConnectionId ids.ConnectionId
	Proofs       Proofs
}

// MsgChanOpenInit starts a channel handshake from this chain.
type MsgChanOpenInit struct {
	PortId         ids.PortId
	Channel        channel.End
}

// MsgChanOpenTry responds to a counterparty's ChanOpenInit.
type MsgChanOpenTry struct {
	PortId               ids.PortId
	Channel              channel.End
	CounterpartyVersion  string
	Proofs               Proofs
}

// MsgChanOpenAck completes the initiator's half of the channel handshake.
type MsgChanOpenAck struct {
	PortId              ids.PortId
	ChannelId           ids.ChannelId
	CounterpartyChannelId ids.ChannelId
	CounterpartyVersion string
	Proofs              Proofs
}

// MsgChanOpenConfirm completes the responder's half of the channel
// handshake.
type MsgChanOpenConfirm struct {
	PortId    ids.PortId
	ChannelId ids.ChannelId
	Proofs    Proofs
}

// MsgChanCloseInit closes a channel from this chain.
type MsgChanCloseInit struct {
	PortId    ids.PortId
	ChannelId ids.ChannelId
}

// MsgChanCloseConfirm acknowledges a counterparty's ChanCloseInit.
type MsgChanCloseConfirm struct {
	PortId    ids.PortId
	ChannelId ids.ChannelId
	Proofs    Proofs
}

// MsgSendPacket originates a packet on this chain.
type MsgSendPacket struct {
	Packet channel.Packet
}

// MsgRecvPacket delivers a packet proven committed on the source chain.
type MsgRecvPacket struct {
	Packet channel.Packet
	Proofs Proofs
}

// MsgAcknowledgePacket delivers an acknowledgement proven written on the
// destination chain, erasing the source's commitment.
type MsgAcknowledgePacket struct {
	Packet          channel.Packet
	Acknowledgement []byte
	Proofs          Proofs
}

// MsgTimeout proves a packet was never (and can never be) received on the
// destination chain and erases the source's commitment.
type MsgTimeout struct {
	Packet           channel.Packet
	Proofs           Proofs
	NextSequenceRecv uint64
}

// MsgTimeoutOnClose is MsgTimeout's variant used when the destination
// channel has already closed, so there is no next_sequence_recv to prove
// against; instead the channel-closed state itself is the proof.
type MsgTimeoutOnClose struct {
	Packet           channel.Packet
	Proofs           Proofs
	NextSequenceRecv uint64
}
