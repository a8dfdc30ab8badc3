package link_test

import (
	"context"
	"strconv"
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
	"github.com/tokenize-x/ibc-relayer/relayer/link"
)

const (
	srcPort    = "transfer"
	srcChannel = "channel-0"
	dstPort    = "transfer"
	dstChannel = "channel-1"
	srcClient  = "07-tendermint-0"
	dstClient  = "07-tendermint-1"
)

func newTestLink(t *testing.T) (*link.Link, *chaintest.Driver, *chaintest.Driver, *chain.Runtime, *chain.Runtime) {
	t.Helper()

	srcDriver := chaintest.New("chain-src").WithHeight(height.New(0, 100))
	dstDriver := chaintest.New("chain-dst").WithHeight(height.New(0, 100)).
		WithConsensusState(dstClient, height.New(0, 100), client.NewMockConsensusState(time.Unix(0, 0), []byte("root")))

	srcRT := chain.NewRuntime(srcDriver, log.NewNopLogger(), prometheus.NewRegistry())
	dstRT := chain.NewRuntime(dstDriver, log.NewNopLogger(), prometheus.NewRegistry())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = srcRT.Run(ctx) }()
	go func() { _ = dstRT.Run(ctx) }()

	path := link.Path{
		SourceChainId:      "chain-src",
		DestinationChainId: "chain-dst",
		PortId:             srcPort,
		SourceChannelId:    srcChannel,
	}
	l := link.New(path, srcRT, dstRT, srcClient, dstClient, log.NewNopLogger())
	l.SetDestinationChannel(dstChannel)

	return l, srcDriver, dstDriver, srcRT, dstRT
}

func sendPacketRaw(sequence uint64) []events.RawEvent {
	return []events.RawEvent{
		{Type: "send_packet", Attributes: []events.Attribute{
			{Key: "packet_sequence", Value: strconv.FormatUint(sequence, 10)},
			{Key: "packet_src_port", Value: srcPort},
			{Key: "packet_src_channel", Value: srcChannel},
			{Key: "packet_dst_port", Value: dstPort},
			{Key: "packet_dst_channel", Value: dstChannel},
			{Key: "packet_timeout_height", Value: "0-1000"},
			{Key: "packet_timeout_timestamp", Value: "0"},
			{Key: "packet_data", Value: "payload"},
		}},
	}
}

func TestRelayDeliversSendPacket(t *testing.T) {
	t.Parallel()

	l, srcDriver, dstDriver, _, _ := newTestLink(t)
	_ = dstDriver

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- l.Relay(ctx) }()

	srcDriver.WithPacketCommitment(srcPort, srcChannel, 1, []byte("commitment"))
	srcDriver.PushBlock(height.New(0, 100), sendPacketRaw(1))

	require.Eventually(t, func() bool {
		return len(dstDriver.Submitted()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

func TestConcernsLinkIgnoresOtherChannels(t *testing.T) {
	t.Parallel()

	l, srcDriver, dstDriver, _, _ := newTestLink(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- l.Relay(ctx) }()

	other := sendPacketRaw(1)
	other[0].Attributes[1] = events.Attribute{Key: "packet_src_port", Value: "other-port"}
	srcDriver.PushBlock(height.New(0, 100), other)

	// give the loop a moment to process; nothing should be submitted.
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, dstDriver.Submitted())

	cancel()
	<-done
}

func TestOrderedGapDoesNotHaltTheLink(t *testing.T) {
	t.Parallel()

	l, srcDriver, dstDriver, _, _ := newTestLink(t)
	l.SetOrdered(true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- l.Relay(ctx) }()

	srcDriver.WithPacketCommitment(srcPort, srcChannel, 1, []byte("commitment-1"))
	srcDriver.PushBlock(height.New(0, 100), sendPacketRaw(1))
	require.Eventually(t, func() bool {
		return len(dstDriver.Submitted()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	// sequence 3 skips the expected sequence 2: an ordered-channel gap. The
	// link must time it out and keep running rather than halt.
	srcDriver.PushBlock(height.New(0, 100), sendPacketRaw(3))

	// a subsequent, properly sequenced packet (4, the new expectation once
	// the gap is resolved) still gets relayed, proving the worker is alive.
	srcDriver.WithPacketCommitment(srcPort, srcChannel, 4, []byte("commitment-4"))
	srcDriver.PushBlock(height.New(0, 100), sendPacketRaw(4))

	require.Eventually(t, func() bool {
		return len(dstDriver.Submitted()) == 2
	}, 2*time.Second, 10*time.Millisecond)

	select {
	case err := <-done:
		t.Fatalf("link halted unexpectedly: %v", err)
	default:
	}

	cancel()
	<-done
}
