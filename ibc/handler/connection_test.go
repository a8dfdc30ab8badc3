package handler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenize-x/ibc-relayer/ibc/client"
	"github.com/tokenize-x/ibc-relayer/ibc/connection"
	"github.com/tokenize-x/ibc-relayer/ibc/handler"
	"github.com/tokenize-x/ibc-relayer/ibc/height"
	"github.com/tokenize-x/ibc-relayer/ibc/mock"
)

func TestConnOpenInitRequiresClient(t *testing.T) {
	t.Parallel()

	ctx := mock.NewContext()
	_, err := handler.ConnOpenInit(ctx, handler.MsgConnOpenInit{
		ClientId: clientID,
		Counterparty: connection.Counterparty{
			ClientId: "07-tendermint-1",
		},
		Versions: []string{"1"},
	})
	require.Error(t, err)
}

func TestConnOpenInitSucceeds(t *testing.T) {
	t.Parallel()

	ctx := mock.NewContext().WithClient(clientID, client.NewMockClientState("chain-1", height.New(0, 1)))
	out, err := handler.ConnOpenInit(ctx, handler.MsgConnOpenInit{
		ClientId: clientID,
		Counterparty: connection.Counterparty{
			ClientId: "07-tendermint-1",
		},
		Versions: []string{"1"},
	})
	require.NoError(t, err)
	assert.Equal(t, connection.Init, out.Result.End.State)
	require.Len(t, out.Events(), 1)
}

func TestConnOpenAckRequiresInitOrTryOpen(t *testing.T) {
	t.Parallel()

	ctx := mock.NewContext().
		WithClient(clientID, client.NewMockClientState("chain-1", height.New(0, 1))).
		WithConnection(connID, connection.End{State: connection.Open, ClientId: clientID})

	_, err := handler.ConnOpenAck(ctx, handler.MsgConnOpenAck{ConnectionId: connID})
	require.Error(t, err)
	herr, ok := err.(*handler.Error)
	require.True(t, ok)
	assert.Equal(t, handler.KindInvalidConnectionState, herr.Kind)
}

func TestConnOpenConfirmRequiresCounterpartyConnectionId(t *testing.T) {
	t.Parallel()

	ctx := mock.NewContext().WithConnection(connID, connection.End{
		State:    connection.TryOpen,
		ClientId: clientID,
	})

	_, err := handler.ConnOpenConfirm(ctx, handler.MsgConnOpenConfirm{ConnectionId: connID})
	require.Error(t, err)
	herr, ok := err.(*handler.Error)
	require.True(t, ok)
	assert.Equal(t, handler.KindUninitializedConnection, herr.Kind)
}
