package handler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenize-x/ibc-relayer/ibc/client"
	"github.com/tokenize-x/ibc-relayer/ibc/handler"
	"github.com/tokenize-x/ibc-relayer/ibc/height"
	"github.com/tokenize-x/ibc-relayer/ibc/mock"
)

func TestCreateClient(t *testing.T) {
	t.Parallel()

	ctx := mock.NewContext()
	cs := client.NewMockClientState("testchain-1", height.New(0, 1))

	out, err := handler.CreateClient(ctx, handler.MsgCreateClient{
		ClientId:    clientID,
		ClientState: cs,
	})
	require.NoError(t, err)
	assert.Equal(t, clientID, out.Result.ClientId)
	require.Len(t, out.Events(), 1)
}

func TestCreateClientAlreadyExists(t *testing.T) {
	t.Parallel()

	cs := client.NewMockClientState("testchain-1", height.New(0, 1))
	ctx := mock.NewContext().WithClient(clientID, cs)

	_, err := handler.CreateClient(ctx, handler.MsgCreateClient{ClientId: clientID, ClientState: cs})
	require.Error(t, err)
}

func TestUpdateClientRejectsFrozen(t *testing.T) {
	t.Parallel()

	cs := client.AnyClientState{Type: client.TypeMock, Mock: &client.MockClientState{
		ChainIdValue:    "testchain-1",
		LatestHeightVal: height.New(0, 1),
		Frozen:          true,
	}}
	ctx := mock.NewContext().WithClient(clientID, cs)

	_, err := handler.UpdateClient(ctx, handler.MsgUpdateClient{ClientId: clientID})
	require.Error(t, err)
	herr, ok := err.(*handler.Error)
	require.True(t, ok)
	assert.Equal(t, handler.KindFrozenClient, herr.Kind)
}

func TestUpdateClientRequiresProgress(t *testing.T) {
	t.Parallel()

	cs := client.NewMockClientState("testchain-1", height.New(0, 10))
	ctx := mock.NewContext().WithClient(clientID, cs)

	_, err := handler.UpdateClient(ctx, handler.MsgUpdateClient{
		ClientId:     clientID,
		HeaderClient: client.NewMockClientState("testchain-1", height.New(0, 5)),
	})
	require.Error(t, err)
	herr, ok := err.(*handler.Error)
	require.True(t, ok)
	assert.Equal(t, handler.KindClientUpdateNotAdvancing, herr.Kind)
}

func TestSubmitMisbehaviourFreezesClient(t *testing.T) {
	t.Parallel()

	cs := client.NewMockClientState("testchain-1", height.New(0, 10))
	ctx := mock.NewContext().WithClient(clientID, cs)

	out, err := handler.SubmitMisbehaviour(ctx, handler.MsgSubmitMisbehaviour{ClientId: clientID})
	require.NoError(t, err)
	require.True(t, out.Result.ClientState.IsFrozen())

	ctx = mock.NewContext().WithClient(clientID, out.Result.ClientState)
	_, err = handler.UpdateClient(ctx, handler.MsgUpdateClient{
		ClientId:     clientID,
		HeaderClient: client.NewMockClientState("testchain-1", height.New(0, 20)),
	})
	require.Error(t, err)
	herr, ok := err.(*handler.Error)
	require.True(t, ok)
	assert.Equal(t, handler.KindFrozenClient, herr.Kind)
}

func TestUpdateClientAdvancesHeight(t *testing.T) {
	t.Parallel()

	cs := client.NewMockClientState("testchain-1", height.New(0, 10))
	ctx := mock.NewContext().WithClient(clientID, cs)

	newHeight := height.New(0, 20)
	out, err := handler.UpdateClient(ctx, handler.MsgUpdateClient{
		ClientId:     clientID,
		HeaderClient: client.NewMockClientState("testchain-1", newHeight),
	})
	require.NoError(t, err)
	assert.Equal(t, newHeight, out.Result.Height)
}
