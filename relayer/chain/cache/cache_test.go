package cache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenize-x/ibc-relayer/ibc/client"
	"github.com/tokenize-x/ibc-relayer/ibc/height"
	"github.com/tokenize-x/ibc-relayer/relayer/chain/cache"
)

var fixedTimestamp = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestPutGet(t *testing.T) {
	t.Parallel()

	c := cache.New()
	cs := client.NewMockConsensusState(fixedTimestamp, []byte("root-10"))
	c.Put("07-tendermint-0", height.New(0, 10), cs)

	got, ok := c.Get("07-tendermint-0", height.New(0, 10))
	require.True(t, ok)
	assert.Equal(t, cs, got)

	_, ok = c.Get("07-tendermint-0", height.New(0, 11))
	assert.False(t, ok)
}

func TestFloorBeforeWithinRevision(t *testing.T) {
	t.Parallel()

	c := cache.New()
	c.Put("07-tendermint-0", height.New(1, 10), client.NewMockConsensusState(fixedTimestamp, []byte("a")))
	c.Put("07-tendermint-0", height.New(1, 20), client.NewMockConsensusState(fixedTimestamp, []byte("b")))

	h, _, ok := c.FloorBefore("07-tendermint-0", height.New(1, 15))
	require.True(t, ok)
	assert.Equal(t, height.New(1, 10), h)

	_, _, ok = c.FloorBefore("07-tendermint-0", height.New(1, 5))
	assert.False(t, ok)

	// a different revision never matches
	_, _, ok = c.FloorBefore("07-tendermint-0", height.New(2, 15))
	assert.False(t, ok)
}

func TestLatest(t *testing.T) {
	t.Parallel()

	c := cache.New()
	c.Put("07-tendermint-0", height.New(0, 10), client.NewMockConsensusState(fixedTimestamp, []byte("a")))
	c.Put("07-tendermint-0", height.New(0, 30), client.NewMockConsensusState(fixedTimestamp, []byte("b")))
	c.Put("07-tendermint-0", height.New(0, 20), client.NewMockConsensusState(fixedTimestamp, []byte("c")))

	h, _, ok := c.Latest("07-tendermint-0", 0)
	require.True(t, ok)
	assert.Equal(t, height.New(0, 30), h)
}

