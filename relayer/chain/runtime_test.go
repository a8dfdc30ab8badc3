package chain_test

import (
	"context"
	"testing"
	"time"

	"cosmossdk.io/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenize-x/ibc-relayer/ibc/client"
	"github.com/tokenize-x/ibc-relayer/ibc/events"
	"github.com/tokenize-x/ibc-relayer/ibc/height"
	"github.com/tokenize-x/ibc-relayer/relayer/chain"
	"github.com/tokenize-x/ibc-relayer/relayer/chain/chaintest"
)

func newRuntime(t *testing.T, driver *chaintest.Driver) *chain.Runtime {
	t.Helper()
	return chain.NewRuntime(driver, log.NewNopLogger(), prometheus.NewRegistry())
}

func TestLatestHeight(t *testing.T) {
	t.Parallel()

	driver := chaintest.New("chain-a").WithHeight(height.New(0, 42))
	rt := newRuntime(t, driver)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = rt.Run(ctx) }()

	h, err := rt.LatestHeight(ctx)
	require.NoError(t, err)
	assert.Equal(t, height.New(0, 42), h)
}

func TestProvenConsensusStateIsCached(t *testing.T) {
	t.Parallel()

	cs := client.NewMockConsensusState(time.Unix(0, 0), []byte("root"))
	driver := chaintest.New("chain-a").
		WithHeight(height.New(0, 10)).
		WithConsensusState("07-tendermint-0", height.New(0, 10), cs)
	rt := newRuntime(t, driver)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = rt.Run(ctx) }()

	got, _, err := rt.ProvenConsensusState(ctx, "07-tendermint-0", height.New(0, 10))
	require.NoError(t, err)
	assert.Equal(t, cs, got)

	h, cached, ok, err := rt.LatestCachedConsensusState(ctx, "07-tendermint-0", 0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, height.New(0, 10), h)
	assert.Equal(t, cs, cached)
}

func TestSubmitMessagesRecordsSubmission(t *testing.T) {
	t.Parallel()

	driver := chaintest.New("chain-a").WithHeight(height.New(0, 1))
	rt := newRuntime(t, driver)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = rt.Run(ctx) }()

	result, err := rt.SubmitMessages(ctx, []any{"msg-1"})
	require.NoError(t, err)
	assert.True(t, result.Succeeded())
	assert.Len(t, driver.Submitted(), 1)
}

func TestSubscribeForwardsDecodedEvents(t *testing.T) {
	t.Parallel()

	driver := chaintest.New("chain-a").WithHeight(height.New(0, 1))
	rt := newRuntime(t, driver)
	sub := rt.Subscribe()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = rt.Run(ctx) }()

	driver.PushBlock(height.New(0, 5), []events.RawEvent{
		{Type: "connection_open_init", Attributes: []events.Attribute{
			{Key: "connection_id", Value: "connection-0"},
			{Key: "client_id", Value: "07-tendermint-0"},
			{Key: "counterparty_client_id", Value: "07-tendermint-1"},
		}},
	})

	select {
	case e := <-sub:
		assert.Equal(t, events.KindConnOpenInit, e.Kind)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for decoded event")
	}
}
