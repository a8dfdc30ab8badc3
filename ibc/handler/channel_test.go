package handler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenize-x/ibc-relayer/ibc/channel"
	"github.com/tokenize-x/ibc-relayer/ibc/connection"
	"github.com/tokenize-x/ibc-relayer/ibc/handler"
	"github.com/tokenize-x/ibc-relayer/ibc/ids"
	"github.com/tokenize-x/ibc-relayer/ibc/mock"
)

func withOpenConnection(ctx *mock.Context) *mock.Context {
	return ctx.WithConnection(connID, connection.End{
		State:    connection.Open,
		ClientId: clientID,
		Counterparty: connection.Counterparty{
			ClientId:     "07-tendermint-1",
			ConnectionId: "connection-1",
		},
		Versions: []string{"1"},
	})
}

func TestChanOpenInitRequiresOpenConnection(t *testing.T) {
	t.Parallel()

	ctx := mock.NewContext().WithPortCapability(srcPort)
	_, err := handler.ChanOpenInit(ctx, handler.MsgChanOpenInit{
		PortId: srcPort,
		Channel: channel.End{
			Ordering:       channel.Unordered,
			Counterparty:   channel.Counterparty{PortId: dstPort},
			ConnectionHops: []ids.ConnectionId{connID},
		},
	})
	require.Error(t, err)
}

func TestChanOpenInitSucceeds(t *testing.T) {
	t.Parallel()

	ctx := withOpenConnection(mock.NewContext()).WithPortCapability(srcPort)
	out, err := handler.ChanOpenInit(ctx, handler.MsgChanOpenInit{
		PortId: srcPort,
		Channel: channel.End{
			Ordering:       channel.Unordered,
			Counterparty:   channel.Counterparty{PortId: dstPort},
			ConnectionHops: []ids.ConnectionId{connID},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, channel.Init, out.Result.End.State)
}

func TestChanCloseInitRejectsAlreadyClosed(t *testing.T) {
	t.Parallel()

	ctx := mock.NewContext().
		WithPortCapability(srcPort).
		WithChannel(srcPort, srcChannel, channel.End{State: channel.Closed})

	_, err := handler.ChanCloseInit(ctx, handler.MsgChanCloseInit{PortId: srcPort, ChannelId: srcChannel})
	require.Error(t, err)
	herr, ok := err.(*handler.Error)
	require.True(t, ok)
	assert.Equal(t, handler.KindChannelClosed, herr.Kind)
}

func TestChanCloseInitSucceeds(t *testing.T) {
	t.Parallel()

	ctx := mock.NewContext().
		WithPortCapability(srcPort).
		WithChannel(srcPort, srcChannel, channel.End{State: channel.Open, ConnectionHops: []ids.ConnectionId{connID}})

	out, err := handler.ChanCloseInit(ctx, handler.MsgChanCloseInit{PortId: srcPort, ChannelId: srcChannel})
	require.NoError(t, err)
	assert.Equal(t, channel.Closed, out.Result.End.State)
}
