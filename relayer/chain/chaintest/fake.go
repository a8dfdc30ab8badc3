// Package chaintest provides an in-memory chain.Driver for tests, playing
// the role the teacher's testutil/simapp bootstrap plays for keeper tests:
// a fully wired fake standing in for a real chain.
package chaintest

import (
	"context"
	"sync"

	"github.com/tokenize-x/ibc-relayer/ibc/channel"
	"github.com/tokenize-x/ibc-relayer/ibc/client"
	"github.com/tokenize-x/ibc-relayer/ibc/connection"
	"github.com/tokenize-x/ibc-relayer/ibc/events"
	"github.com/tokenize-x/ibc-relayer/ibc/height"
	"github.com/tokenize-x/ibc-relayer/ibc/ids"
	"github.com/tokenize-x/ibc-relayer/relayer/chain"
)

// Driver is an in-memory chain.Driver. Zero value is not usable; build one
// with New and populate it with the With* methods before handing it to a
// Runtime.
type Driver struct {
	mu sync.Mutex

	chainID ids.ChainId
	height  height.Height

	clients        map[ids.ClientId]client.AnyClientState
	consensus      map[ids.ClientId]map[height.Height]client.AnyConsensusState
	connections    map[ids.ConnectionId]connection.End
	channels       map[channelKey]channel.End
	commitments    map[packetKey][]byte
	receipts       map[packetKey]bool
	nextSeqRecv    map[channelKey]uint64

	submitted []TxCall
	submitErr error

	updateHeader client.AnyConsensusState
	updateClient client.AnyClientState

	blocks chan chain.BlockEvents
}

type channelKey struct {
	port ids.PortId
	ch   ids.ChannelId
}

type packetKey struct {
	port     ids.PortId
	ch       ids.ChannelId
	sequence uint64
}

// TxCall records one SubmitMessages invocation, for assertions.
type TxCall struct {
	Messages []any
}

var _ chain.Driver = (*Driver)(nil)

// New builds an empty fake driver for chainID.
func New(chainID ids.ChainId) *Driver {
	return &Driver{
		chainID:     chainID,
		clients:     make(map[ids.ClientId]client.AnyClientState),
		consensus:   make(map[ids.ClientId]map[height.Height]client.AnyConsensusState),
		connections: make(map[ids.ConnectionId]connection.End),
		channels:    make(map[channelKey]channel.End),
		commitments: make(map[packetKey][]byte),
		receipts:    make(map[packetKey]bool),
		nextSeqRecv: make(map[channelKey]uint64),
		blocks:      make(chan chain.BlockEvents, 16),
	}
}

func (d *Driver) WithHeight(h height.Height) *Driver {
	d.height = h
	return d
}

func (d *Driver) WithClient(id ids.ClientId, cs client.AnyClientState) *Driver {
	d.clients[id] = cs
	return d
}

func (d *Driver) WithConsensusState(id ids.ClientId, h height.Height, cs client.AnyConsensusState) *Driver {
	if d.consensus[id] == nil {
		d.consensus[id] = make(map[height.Height]client.AnyConsensusState)
	}
	d.consensus[id][h] = cs
	return d
}

func (d *Driver) WithConnection(id ids.ConnectionId, end connection.End) *Driver {
	d.connections[id] = end
	return d
}

func (d *Driver) WithChannel(port ids.PortId, ch ids.ChannelId, end channel.End) *Driver {
	d.channels[channelKey{port, ch}] = end
	return d
}

func (d *Driver) WithPacketCommitment(port ids.PortId, ch ids.ChannelId, sequence uint64, commitment []byte) *Driver {
	d.commitments[packetKey{port, ch, sequence}] = commitment
	return d
}

func (d *Driver) WithSubmitError(err error) *Driver {
	d.submitErr = err
	return d
}

// WithUpdateHeader sets the (consensus state, client state) pair
// BuildClientUpdateHeader returns, standing in for the header a real
// light client would compute for the next trusted height.
func (d *Driver) WithUpdateHeader(cs client.AnyConsensusState, cl client.AnyClientState) *Driver {
	d.updateHeader = cs
	d.updateClient = cl
	return d
}

// PushBlock enqueues a batch of raw events as if produced at the given
// height, for Subscribe's consumer to pick up.
func (d *Driver) PushBlock(h height.Height, raw []events.RawEvent) {
	d.blocks <- chain.BlockEvents{Height: h, Raw: raw}
}

// Submitted returns every SubmitMessages call observed so far.
func (d *Driver) Submitted() []TxCall {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]TxCall, len(d.submitted))
	copy(out, d.submitted)
	return out
}

func (d *Driver) ChainId() ids.ChainId { return d.chainID }

func (d *Driver) Status(context.Context) (chain.Status, error) {
	return chain.Status{ChainId: d.chainID, Height: d.height}, nil
}

func (d *Driver) SubmitMessages(_ context.Context, msgs []any) (chain.TxResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.submitted = append(d.submitted, TxCall{Messages: msgs})
	if d.submitErr != nil {
		return chain.TxResult{}, d.submitErr
	}
	return chain.TxResult{Height: d.height, Code: 0}, nil
}

func (d *Driver) ClientState(_ context.Context, id ids.ClientId, h height.Height) (client.AnyClientState, chain.ProvenValue, error) {
	cs, ok := d.clients[id]
	if !ok {
		return client.AnyClientState{}, chain.ProvenValue{}, errNotFound("client", string(id))
	}
	return cs, chain.ProvenValue{Height: h}, nil
}

func (d *Driver) ConsensusState(_ context.Context, id ids.ClientId, h height.Height) (client.AnyConsensusState, chain.ProvenValue, error) {
	byHeight, ok := d.consensus[id]
	if !ok {
		return client.AnyConsensusState{}, chain.ProvenValue{}, errNotFound("consensus state", string(id))
	}
	cs, ok := byHeight[h]
	if !ok {
		return client.AnyConsensusState{}, chain.ProvenValue{}, errNotFound("consensus state", h.String())
	}
	return cs, chain.ProvenValue{Height: h}, nil
}

func (d *Driver) ConnectionEnd(_ context.Context, id ids.ConnectionId, h height.Height) (connection.End, chain.ProvenValue, error) {
	end, ok := d.connections[id]
	if !ok {
		return connection.End{}, chain.ProvenValue{}, errNotFound("connection", string(id))
	}
	return end, chain.ProvenValue{Height: h}, nil
}

func (d *Driver) ChannelEnd(_ context.Context, port ids.PortId, ch ids.ChannelId, h height.Height) (channel.End, chain.ProvenValue, error) {
	end, ok := d.channels[channelKey{port, ch}]
	if !ok {
		return channel.End{}, chain.ProvenValue{}, errNotFound("channel", string(port)+"/"+string(ch))
	}
	return end, chain.ProvenValue{Height: h}, nil
}

func (d *Driver) PacketCommitment(_ context.Context, port ids.PortId, ch ids.ChannelId, sequence uint64, h height.Height) (chain.ProvenValue, error) {
	commitment, ok := d.commitments[packetKey{port, ch, sequence}]
	if !ok {
		return chain.ProvenValue{}, errNotFound("packet commitment", "")
	}
	return chain.ProvenValue{Value: commitment, Height: h}, nil
}

func (d *Driver) PacketAcknowledgement(_ context.Context, port ids.PortId, ch ids.ChannelId, sequence uint64, h height.Height) (chain.ProvenValue, error) {
	return chain.ProvenValue{Height: h}, nil
}

func (d *Driver) PacketReceiptAbsence(_ context.Context, port ids.PortId, ch ids.ChannelId, sequence uint64, h height.Height) (chain.ProvenValue, error) {
	if d.receipts[packetKey{port, ch, sequence}] {
		return chain.ProvenValue{}, errAlreadyReceived
	}
	return chain.ProvenValue{Height: h}, nil
}

func (d *Driver) NextSequenceRecv(_ context.Context, port ids.PortId, ch ids.ChannelId, h height.Height) (uint64, chain.ProvenValue, error) {
	return d.nextSeqRecv[channelKey{port, ch}], chain.ProvenValue{Height: h}, nil
}

func (d *Driver) PacketCommitments(_ context.Context, port ids.PortId, ch ids.ChannelId) ([]uint64, error) {
	var out []uint64
	for k := range d.commitments {
		if k.port == port && k.ch == ch {
			out = append(out, k.sequence)
		}
	}
	return out, nil
}

func (d *Driver) UnreceivedPackets(_ context.Context, port ids.PortId, ch ids.ChannelId, sequences []uint64) ([]uint64, error) {
	var out []uint64
	for _, seq := range sequences {
		if !d.receipts[packetKey{port, ch, seq}] {
			out = append(out, seq)
		}
	}
	return out, nil
}

func (d *Driver) UnreceivedAcks(_ context.Context, port ids.PortId, ch ids.ChannelId, sequences []uint64) ([]uint64, error) {
	var out []uint64
	for _, seq := range sequences {
		if _, ok := d.commitments[packetKey{port, ch, seq}]; ok {
			out = append(out, seq)
		}
	}
	return out, nil
}

func (d *Driver) BuildClientUpdateHeader(_ context.Context, trustedHeight height.Height) (client.AnyConsensusState, client.AnyClientState, error) {
	return d.updateHeader, d.updateClient, nil
}

func (d *Driver) Subscribe(context.Context) (<-chan chain.BlockEvents, error) {
	return d.blocks, nil
}
