package handler_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenize-x/ibc-relayer/ibc/channel"
	"github.com/tokenize-x/ibc-relayer/ibc/client"
	"github.com/tokenize-x/ibc-relayer/ibc/connection"
	"github.com/tokenize-x/ibc-relayer/ibc/handler"
	"github.com/tokenize-x/ibc-relayer/ibc/height"
	"github.com/tokenize-x/ibc-relayer/ibc/ids"
	"github.com/tokenize-x/ibc-relayer/ibc/mock"
)

const (
	srcPort    ids.PortId    = "transfer"
	srcChannel ids.ChannelId = "channel-0"
	dstPort    ids.PortId    = "transfer"
	dstChannel ids.ChannelId = "channel-1"
	clientID   ids.ClientId  = "07-tendermint-0"
	connID     ids.ConnectionId = "connection-0"
)

// fixture builds a mock context with a source channel (Open, ordering as
// given) over an Open connection to clientID, plus a packet committed at
// sequence 1 with the given timeouts, matching scenario 1/2/3/4 in
// spec.md §8.
func fixture(t *testing.T, ordering channel.Order, packet channel.Packet, proofHeight height.Height, consensusTimestamp time.Time) (*mock.Context, channel.Packet) {
	t.Helper()

	ctx := mock.NewContext().
		WithPortCapability(srcPort).
		WithConnection(connID, connection.End{
			State:    connection.Open,
			ClientId: clientID,
			Counterparty: connection.Counterparty{
				ClientId:     "07-tendermint-1",
				ConnectionId: "connection-1",
			},
			Versions: []string{"1"},
		}).
		WithChannel(srcPort, srcChannel, channel.End{
			State:          channel.Open,
			Ordering:       ordering,
			Counterparty:   channel.Counterparty{PortId: dstPort, ChannelId: dstChannel},
			ConnectionHops: []ids.ConnectionId{connID},
		}).
		WithConsensusState(clientID, proofHeight, client.NewMockConsensusState(consensusTimestamp, nil))

	commitment := ctx.Hash(channel.CommitmentInput(packet.TimeoutTimestampNs, packet.TimeoutHeight, packet.Data))
	ctx.WithPacketCommitment(srcPort, srcChannel, packet.Sequence, commitment)

	return ctx, packet
}

func basePacket(timeoutHeight height.Height) channel.Packet {
	return channel.Packet{
		Sequence:           1,
		SourcePort:         srcPort,
		SourceChannel:      srcChannel,
		DestinationPort:    dstPort,
		DestinationChannel: dstChannel,
		Data:               []byte{0x01},
		TimeoutHeight:      timeoutHeight,
	}
}

// TestTimeoutUnorderedHappyPath is scenario 1 of spec.md §8.
func TestTimeoutUnorderedHappyPath(t *testing.T) {
	t.Parallel()

	proofHeight := height.New(0, 12) // H+2
	packet := basePacket(proofHeight)

	ctx, packet := fixture(t, channel.Unordered, packet, proofHeight, time.Unix(0, 0))

	out, err := handler.Timeout(ctx, handler.MsgTimeout{
		Packet:           packet,
		Proofs:           handler.Proofs{Height: proofHeight},
		NextSequenceRecv: 1,
	})
	require.NoError(t, err)

	assert.Equal(t, handler.PacketResultTimeout, out.Result.Kind)
	assert.EqualValues(t, 1, out.Result.Sequence)
	assert.Nil(t, out.Result.Channel)
	require.Len(t, out.Events(), 1)
	assert.Contains(t, out.LogLines(), "success: packet timeout")
}

// TestTimeoutOrderedClosesChannel is scenario 2 of spec.md §8.
func TestTimeoutOrderedClosesChannel(t *testing.T) {
	t.Parallel()

	proofHeight := height.New(0, 12)
	packet := basePacket(proofHeight)

	ctx, packet := fixture(t, channel.Ordered, packet, proofHeight, time.Unix(0, 0))

	out, err := handler.Timeout(ctx, handler.MsgTimeout{
		Packet:           packet,
		Proofs:           handler.Proofs{Height: proofHeight},
		NextSequenceRecv: 1,
	})
	require.NoError(t, err)

	require.NotNil(t, out.Result.Channel)
	assert.Equal(t, channel.Closed, out.Result.Channel.State)
}

// TestTimeoutBeforeDeadlineFails is scenario 3 of spec.md §8.
func TestTimeoutBeforeDeadlineFails(t *testing.T) {
	t.Parallel()

	timeoutHeight := height.New(0, 15) // H+5
	proofHeight := height.New(0, 12)   // H+2
	packet := basePacket(timeoutHeight)

	ctx, packet := fixture(t, channel.Unordered, packet, proofHeight, time.Unix(0, 0))

	_, err := handler.Timeout(ctx, handler.MsgTimeout{
		Packet:           packet,
		Proofs:           handler.Proofs{Height: proofHeight},
		NextSequenceRecv: 1,
	})
	require.Error(t, err)

	herr, ok := err.(*handler.Error)
	require.True(t, ok)
	assert.Equal(t, handler.KindPacketTimeoutHeightNotReached, herr.Kind)
	assert.Equal(t, timeoutHeight, herr.HeightA)
	assert.Equal(t, proofHeight, herr.HeightB)
}

// TestTimeoutWithNoChannel is scenario 4 of spec.md §8.
func TestTimeoutWithNoChannel(t *testing.T) {
	t.Parallel()

	ctx := mock.NewContext()
	packet := basePacket(height.New(0, 10))

	_, err := handler.Timeout(ctx, handler.MsgTimeout{
		Packet: packet,
		Proofs: handler.Proofs{Height: height.New(0, 10)},
	})
	require.Error(t, err)

	herr, ok := err.(*handler.Error)
	require.True(t, ok)
	assert.Equal(t, handler.KindChannelNotFound, herr.Kind)
	assert.Equal(t, srcPort, herr.PortId)
	assert.Equal(t, srcChannel, herr.ChannelId)
}

// TestCommitmentMatch is the property from spec.md §8: a TimeoutPacket
// only succeeds when the stored commitment matches the recomputed hash.
func TestCommitmentMatch(t *testing.T) {
	t.Parallel()

	proofHeight := height.New(0, 12)
	packet := basePacket(proofHeight)
	ctx, packet := fixture(t, channel.Unordered, packet, proofHeight, time.Unix(0, 0))

	// Corrupt the stored commitment directly.
	ctx.WithPacketCommitment(srcPort, srcChannel, packet.Sequence, []byte("not-a-real-commitment"))

	_, err := handler.Timeout(ctx, handler.MsgTimeout{
		Packet:           packet,
		Proofs:           handler.Proofs{Height: proofHeight},
		NextSequenceRecv: 1,
	})
	require.Error(t, err)
	herr, ok := err.(*handler.Error)
	require.True(t, ok)
	assert.Equal(t, handler.KindIncorrectPacketCommitment, herr.Kind)
}

func openChannelContext(ordering channel.Order) *mock.Context {
	return mock.NewContext().
		WithPortCapability(dstPort).
		WithConnection(connID, connection.End{
			State:    connection.Open,
			ClientId: clientID,
			Counterparty: connection.Counterparty{
				ClientId:     "07-tendermint-1",
				ConnectionId: "connection-1",
			},
			Versions: []string{"1"},
		}).
		WithChannel(dstPort, dstChannel, channel.End{
			State:          channel.Open,
			Ordering:       ordering,
			Counterparty:   channel.Counterparty{PortId: srcPort, ChannelId: srcChannel},
			ConnectionHops: []ids.ConnectionId{connID},
		})
}

// TestIdempotentReceiveUnordered is the property from spec.md §8: the
// first RecvPacket succeeds, the second fails with
// PacketReceiptAlreadyExists, and stored state after either outcome is
// identical (there is nothing more to mutate after the first success).
func TestIdempotentReceiveUnordered(t *testing.T) {
	t.Parallel()

	ctx := openChannelContext(channel.Unordered)
	packet := channel.Packet{
		Sequence:           1,
		SourcePort:         srcPort,
		SourceChannel:      srcChannel,
		DestinationPort:    dstPort,
		DestinationChannel: dstChannel,
		Data:               []byte{0x01},
		TimeoutHeight:      height.New(0, 100),
	}

	out, err := handler.RecvPacket(ctx, handler.MsgRecvPacket{Packet: packet, Proofs: handler.Proofs{Height: height.New(0, 1)}})
	require.NoError(t, err)
	assert.True(t, out.Result.WriteReceipt)

	// Caller persists the receipt; simulate that before replaying.
	ctx.WithPacketReceipt(dstPort, dstChannel, packet.Sequence)

	_, err = handler.RecvPacket(ctx, handler.MsgRecvPacket{Packet: packet, Proofs: handler.Proofs{Height: height.New(0, 1)}})
	require.Error(t, err)
	herr, ok := err.(*handler.Error)
	require.True(t, ok)
	assert.Equal(t, handler.KindPacketReceiptAlreadyExists, herr.Kind)
}

// TestOrderedGapClosesChannel is the property from spec.md §8:
// ordered-gap timeout must close the source channel (restated with a gap
// larger than 1, distinct from the closes-it scenario above).
func TestOrderedGapClosesChannel(t *testing.T) {
	t.Parallel()

	proofHeight := height.New(0, 20)
	packet := basePacket(proofHeight)
	packet.Sequence = 5

	ctx := mock.NewContext().
		WithPortCapability(srcPort).
		WithConnection(connID, connection.End{
			State:    connection.Open,
			ClientId: clientID,
			Counterparty: connection.Counterparty{
				ClientId:     "07-tendermint-1",
				ConnectionId: "connection-1",
			},
			Versions: []string{"1"},
		}).
		WithChannel(srcPort, srcChannel, channel.End{
			State:          channel.Open,
			Ordering:       channel.Ordered,
			Counterparty:   channel.Counterparty{PortId: dstPort, ChannelId: dstChannel},
			ConnectionHops: []ids.ConnectionId{connID},
		}).
		WithConsensusState(clientID, proofHeight, client.NewMockConsensusState(time.Unix(0, 0), nil))

	commitment := ctx.Hash(channel.CommitmentInput(packet.TimeoutTimestampNs, packet.TimeoutHeight, packet.Data))
	ctx.WithPacketCommitment(srcPort, srcChannel, packet.Sequence, commitment)

	out, err := handler.Timeout(ctx, handler.MsgTimeout{
		Packet:           packet,
		Proofs:           handler.Proofs{Height: proofHeight},
		NextSequenceRecv: 3, // packet.Sequence (5) >= next_sequence_recv (3): a gap
	})
	require.NoError(t, err)
	require.NotNil(t, out.Result.Channel)
	assert.Equal(t, channel.Closed, out.Result.Channel.State)
}

// TestHandlerPurity is the property from spec.md §8: process(R, M) is a
// function of (R, M) alone — calling the same handler twice against an
// unmodified reader yields identical results.
func TestHandlerPurity(t *testing.T) {
	t.Parallel()

	proofHeight := height.New(0, 12)
	packet := basePacket(proofHeight)
	ctx, packet := fixture(t, channel.Unordered, packet, proofHeight, time.Unix(0, 0))

	msg := handler.MsgTimeout{Packet: packet, Proofs: handler.Proofs{Height: proofHeight}, NextSequenceRecv: 1}

	out1, err1 := handler.Timeout(ctx, msg)
	require.NoError(t, err1)
	out2, err2 := handler.Timeout(ctx, msg)
	require.NoError(t, err2)

	assert.Equal(t, out1.Result, out2.Result)
	assert.Equal(t, out1.Events(), out2.Events())
}
