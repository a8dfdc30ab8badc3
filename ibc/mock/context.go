// Package mock supplies an in-memory Reader implementation used by
// handler tests, grounded on the original implementation's
// mock::context::MockContext builder.
package mock

import (
	"crypto/sha256"
	"fmt"

	"github.com/tokenize-x/ibc-relayer/ibc/channel"
	"github.com/tokenize-x/ibc-relayer/ibc/client"
	"github.com/tokenize-x/ibc-relayer/ibc/connection"
	"github.com/tokenize-x/ibc-relayer/ibc/handler"
	"github.com/tokenize-x/ibc-relayer/ibc/height"
	"github.com/tokenize-x/ibc-relayer/ibc/ids"
)

type channelKey struct {
	port ids.PortId
	ch   ids.ChannelId
}

type packetKey struct {
	port ids.PortId
	ch   ids.ChannelId
	seq  uint64
}

type consensusKey struct {
	client ids.ClientId
	height height.Height
}

// Context is a builder-style in-memory Reader. Zero value is usable;
// every With* method returns the receiver for chaining.
type Context struct {
	clients         map[ids.ClientId]client.AnyClientState
	consensusStates map[consensusKey]client.AnyConsensusState
	connections     map[ids.ConnectionId]connection.End
	channels        map[channelKey]channel.End
	commitments     map[packetKey][]byte
	receipts        map[packetKey]bool
	acks            map[packetKey][]byte
	nextSeqRecv     map[channelKey]uint64
	capabilities    map[ids.PortId]bool

	// verifyErr, when non-nil, is returned by every Verify* method: tests
	// use this to simulate a failing or succeeding light client proof
	// check without modelling real Merkle proofs.
	verifyErr error
}

// NewContext returns an empty mock context.
func NewContext() *Context {
	return &Context{
		clients:         make(map[ids.ClientId]client.AnyClientState),
		consensusStates: make(map[consensusKey]client.AnyConsensusState),
		connections:     make(map[ids.ConnectionId]connection.End),
		channels:        make(map[channelKey]channel.End),
		commitments:     make(map[packetKey][]byte),
		receipts:        make(map[packetKey]bool),
		acks:            make(map[packetKey][]byte),
		nextSeqRecv:     make(map[channelKey]uint64),
		capabilities:    make(map[ids.PortId]bool),
	}
}

// WithClient registers a client state.
func (c *Context) WithClient(id ids.ClientId, state client.AnyClientState) *Context {
	c.clients[id] = state
	return c
}

// WithConsensusState registers a consensus state at a given height.
func (c *Context) WithConsensusState(id ids.ClientId, h height.Height, state client.AnyConsensusState) *Context {
	c.consensusStates[consensusKey{id, h}] = state
	return c
}

// WithConnection registers a connection end.
func (c *Context) WithConnection(id ids.ConnectionId, end connection.End) *Context {
	c.connections[id] = end
	return c
}

// WithChannel registers a channel end.
func (c *Context) WithChannel(port ids.PortId, ch ids.ChannelId, end channel.End) *Context {
	c.channels[channelKey{port, ch}] = end
	return c
}

// WithPacketCommitment registers a stored packet commitment.
func (c *Context) WithPacketCommitment(port ids.PortId, ch ids.ChannelId, seq uint64, commitment []byte) *Context {
	c.commitments[packetKey{port, ch, seq}] = commitment
	return c
}

// WithPacketReceipt marks a packet sequence as received on an unordered
// channel.
func (c *Context) WithPacketReceipt(port ids.PortId, ch ids.ChannelId, seq uint64) *Context {
	c.receipts[packetKey{port, ch, seq}] = true
	return c
}

// WithPacketAcknowledgement registers a stored acknowledgement.
func (c *Context) WithPacketAcknowledgement(port ids.PortId, ch ids.ChannelId, seq uint64, ack []byte) *Context {
	c.acks[packetKey{port, ch, seq}] = ack
	return c
}

// WithNextSequenceRecv sets next_sequence_recv for an ordered channel.
func (c *Context) WithNextSequenceRecv(port ids.PortId, ch ids.ChannelId, seq uint64) *Context {
	c.nextSeqRecv[channelKey{port, ch}] = seq
	return c
}

// WithPortCapability authorises a port.
func (c *Context) WithPortCapability(port ids.PortId) *Context {
	c.capabilities[port] = true
	return c
}

// WithVerifyError makes every Verify* method return err (nil restores
// success). Used to exercise proof-failure branches without a real
// light client.
func (c *Context) WithVerifyError(err error) *Context {
	c.verifyErr = err
	return c
}

var _ handler.Reader = (*Context)(nil)

func (c *Context) ClientState(id ids.ClientId) (client.AnyClientState, bool) {
	s, ok := c.clients[id]
	return s, ok
}

func (c *Context) ClientConsensusState(id ids.ClientId, h height.Height) (client.AnyConsensusState, bool) {
	s, ok := c.consensusStates[consensusKey{id, h}]
	return s, ok
}

func (c *Context) ConnectionEnd(id ids.ConnectionId) (connection.End, bool) {
	e, ok := c.connections[id]
	return e, ok
}

func (c *Context) ChannelEnd(port ids.PortId, ch ids.ChannelId) (channel.End, bool) {
	e, ok := c.channels[channelKey{port, ch}]
	return e, ok
}

func (c *Context) GetPacketCommitment(port ids.PortId, ch ids.ChannelId, sequence uint64) ([]byte, bool) {
	v, ok := c.commitments[packetKey{port, ch, sequence}]
	return v, ok
}

func (c *Context) GetPacketReceipt(port ids.PortId, ch ids.ChannelId, sequence uint64) bool {
	return c.receipts[packetKey{port, ch, sequence}]
}

func (c *Context) GetNextSequenceRecv(port ids.PortId, ch ids.ChannelId) (uint64, bool) {
	v, ok := c.nextSeqRecv[channelKey{port, ch}]
	return v, ok
}

func (c *Context) GetPacketAcknowledgement(port ids.PortId, ch ids.ChannelId, sequence uint64) ([]byte, bool) {
	v, ok := c.acks[packetKey{port, ch, sequence}]
	return v, ok
}

func (c *Context) AuthenticatedCapability(port ids.PortId) bool {
	return c.capabilities[port]
}

// Hash uses sha256, a stand-in for the host ledger's hash capability
// (spec.md §3: "the core does not fix the hash function").
func (c *Context) Hash(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

func (c *Context) VerifyConnectionState(conn connection.End, proofs handler.Proofs, counterpartyConnectionId ids.ConnectionId, expected connection.End) error {
	return c.verifyErr
}

func (c *Context) VerifyChannelState(conn connection.End, proofs handler.Proofs, port ids.PortId, ch ids.ChannelId, expected channel.End) error {
	return c.verifyErr
}

func (c *Context) VerifyClientFullState(conn connection.End, proofs handler.Proofs, counterpartyClientId ids.ClientId, expected client.AnyClientState) error {
	return c.verifyErr
}

func (c *Context) VerifyPacketCommitment(conn connection.End, proofs handler.Proofs, port ids.PortId, ch ids.ChannelId, sequence uint64, commitment []byte) error {
	return c.verifyErr
}

func (c *Context) VerifyPacketAcknowledgement(conn connection.End, proofs handler.Proofs, port ids.PortId, ch ids.ChannelId, sequence uint64, ack []byte) error {
	return c.verifyErr
}

func (c *Context) VerifyPacketReceiptAbsence(conn connection.End, proofs handler.Proofs, port ids.PortId, ch ids.ChannelId, sequence uint64) error {
	return c.verifyErr
}

func (c *Context) VerifyNextSequenceRecv(conn connection.End, proofs handler.Proofs, port ids.PortId, ch ids.ChannelId, nextSequenceRecv uint64) error {
	return c.verifyErr
}

// String aids debugging/test failures.
func (c *Context) String() string {
	return fmt.Sprintf("mock.Context{clients=%d connections=%d channels=%d}", len(c.clients), len(c.connections), len(c.channels))
}
