package events_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenize-x/ibc-relayer/ibc/events"
	"github.com/tokenize-x/ibc-relayer/ibc/height"
)

func rawConnOpenInit() events.RawEvent {
	return events.RawEvent{
		Type: "connection_open_init",
		Attributes: []events.Attribute{
			{Key: "connection_id", Value: "connection-0"},
			{Key: "client_id", Value: "07-tendermint-0"},
			{Key: "counterparty_client_id", Value: "07-tendermint-1"},
		},
	}
}

func rawSendPacket() events.RawEvent {
	return events.RawEvent{
		Type: "send_packet",
		Attributes: []events.Attribute{
			{Key: "packet_sequence", Value: "1"},
			{Key: "packet_data", Value: "payload"},
			{Key: "packet_src_port", Value: "transfer"},
			{Key: "packet_src_channel", Value: "channel-0"},
			{Key: "packet_dst_port", Value: "transfer"},
			{Key: "packet_dst_channel", Value: "channel-1"},
			{Key: "packet_timeout_height", Value: "0-100"},
			{Key: "packet_timeout_timestamp", Value: "0"},
		},
	}
}

func TestDecodeUnknownTypeYieldsNoEvent(t *testing.T) {
	t.Parallel()

	h := height.New(0, 1)
	ev, ok, err := events.Decode(h, events.RawEvent{Type: "some_unrelated_type"})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, events.Event{}, ev)
}

func TestDecodeConnectionOpenInit(t *testing.T) {
	t.Parallel()

	h := height.New(0, 5)
	ev, ok, err := events.Decode(h, rawConnOpenInit())
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, events.KindConnOpenInit, ev.Kind)
	assert.Equal(t, h, ev.Height)
	require.NotNil(t, ev.Connection)
	assert.EqualValues(t, "connection-0", ev.Connection.ConnectionId)
	assert.EqualValues(t, "07-tendermint-0", ev.Connection.ClientId)
	assert.EqualValues(t, "07-tendermint-1", ev.Connection.CounterpartyClientId)
}

func TestDecodeConnectionOpenInitMissingAttributeErrors(t *testing.T) {
	t.Parallel()

	raw := rawConnOpenInit()
	raw.Attributes = raw.Attributes[:1] // drop client_id, counterparty_client_id

	_, ok, err := events.Decode(height.Zero, raw)
	require.Error(t, err)
	assert.False(t, ok)
	assert.ErrorIs(t, err, events.ErrMissingAttribute)
}

func TestDecodeSendPacketAllSevenFields(t *testing.T) {
	t.Parallel()

	h := height.New(1, 42)
	ev, ok, err := events.Decode(h, rawSendPacket())
	require.NoError(t, err)
	require.True(t, ok)

	require.NotNil(t, ev.Packet)
	assert.EqualValues(t, 1, ev.Packet.Sequence)
	assert.EqualValues(t, "transfer", ev.Packet.SourcePort)
	assert.EqualValues(t, "channel-0", ev.Packet.SourceChannel)
	assert.EqualValues(t, "transfer", ev.Packet.DestinationPort)
	assert.EqualValues(t, "channel-1", ev.Packet.DestinationChannel)
	assert.Equal(t, height.New(0, 100), ev.Packet.TimeoutHeight)
	assert.EqualValues(t, 0, ev.Packet.TimeoutTimestampNs)
	assert.Equal(t, []byte("payload"), ev.Packet.Data)
}

func TestDecodeSendPacketMissingTimeoutTimestampErrors(t *testing.T) {
	t.Parallel()

	raw := rawSendPacket()
	// Drop only packet_timeout_timestamp: this is exactly the attribute the
	// source implementation's transaction-indexed decode path used to skip.
	kept := raw.Attributes[:0]
	for _, a := range raw.Attributes {
		if a.Key != "packet_timeout_timestamp" {
			kept = append(kept, a)
		}
	}
	raw.Attributes = kept

	_, ok, err := events.Decode(height.Zero, raw)
	require.Error(t, err)
	assert.False(t, ok)
	assert.ErrorIs(t, err, events.ErrMissingAttribute)
}

func TestDecodeWriteAcknowledgementRequiresAck(t *testing.T) {
	t.Parallel()

	raw := rawSendPacket()
	raw.Type = "write_acknowledgement"

	_, ok, err := events.Decode(height.Zero, raw)
	require.Error(t, err, "write_acknowledgement without packet_ack must fail")
	assert.False(t, ok)

	raw.Attributes = append(raw.Attributes, events.Attribute{Key: "packet_ack", Value: "result"})
	ev, ok, err := events.Decode(height.Zero, raw)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, events.KindWriteAcknowledgement, ev.Kind)
	assert.Equal(t, []byte("result"), ev.Ack)
}

func TestDecodeBlockStopsAtFirstError(t *testing.T) {
	t.Parallel()

	raws := []events.RawEvent{
		rawConnOpenInit(),
		{Type: "send_packet"}, // missing every attribute
		rawSendPacket(),
	}

	_, err := events.DecodeBlock(height.New(0, 1), raws)
	require.Error(t, err)
}

func TestDecodeBlockSkipsUnknownTypes(t *testing.T) {
	t.Parallel()

	raws := []events.RawEvent{
		{Type: "message"},
		rawConnOpenInit(),
		{Type: "transfer"},
	}

	decoded, err := events.DecodeBlock(height.New(0, 3), raws)
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	assert.Equal(t, events.KindConnOpenInit, decoded[0].Kind)
}

// TestDecodeIsDeterministic checks that decoding the same raw event twice
// at the same height yields equal typed events. The package has no encoder,
// so no typed event is encoded back to raw attributes here.
func TestDecodeIsDeterministic(t *testing.T) {
	t.Parallel()

	h := height.New(2, 17)
	cases := []events.RawEvent{
		rawConnOpenInit(),
		rawSendPacket(),
	}

	for _, raw := range cases {
		ev, ok, err := events.Decode(h, raw)
		require.NoError(t, err)
		require.True(t, ok)

		again, ok, err := events.Decode(h, raw)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, ev, again)
	}
}
