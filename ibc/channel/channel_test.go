package channel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenize-x/ibc-relayer/ibc/channel"
	"github.com/tokenize-x/ibc-relayer/ibc/height"
	"github.com/tokenize-x/ibc-relayer/ibc/ids"
)

func TestChannelEndValidate(t *testing.T) {
	t.Parallel()

	end := channel.End{State: channel.Open, ConnectionHops: []ids.ConnectionId{"connection-0"}}
	require.Error(t, end.Validate(), "open channel without counterparty channel id must fail")

	end.Counterparty.ChannelId = "channel-1"
	require.NoError(t, end.Validate())

	noHops := channel.End{State: channel.Init}
	require.Error(t, noHops.Validate())
}

func TestChannelEndConnection(t *testing.T) {
	t.Parallel()

	end := channel.End{ConnectionHops: []ids.ConnectionId{"connection-7", "connection-8"}}
	assert.Equal(t, ids.ConnectionId("connection-7"), end.Connection())

	assert.Equal(t, ids.ConnectionId(""), channel.End{}.Connection())
}

func TestPacketValidate(t *testing.T) {
	t.Parallel()

	p := channel.Packet{Sequence: 1, TimeoutHeight: height.New(0, 100)}
	require.NoError(t, p.Validate())

	noTimeout := channel.Packet{Sequence: 1}
	require.Error(t, noTimeout.Validate())

	zeroSeq := channel.Packet{TimeoutTimestampNs: 1}
	require.Error(t, zeroSeq.Validate())
}

func TestCommitmentInputDeterministic(t *testing.T) {
	t.Parallel()

	h := height.New(0, 10)
	a := channel.CommitmentInput(5, h, []byte("payload"))
	b := channel.CommitmentInput(5, h, []byte("payload"))
	assert.Equal(t, a, b)

	c := channel.CommitmentInput(6, h, []byte("payload"))
	assert.NotEqual(t, a, c, "changing the timestamp must change the commitment input")
}
