package chain

import (
	"context"
	"fmt"

	"cosmossdk.io/log"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/tokenize-x/ibc-relayer/ibc/channel"
	"github.com/tokenize-x/ibc-relayer/ibc/client"
	"github.com/tokenize-x/ibc-relayer/ibc/connection"
	"github.com/tokenize-x/ibc-relayer/ibc/events"
	"github.com/tokenize-x/ibc-relayer/ibc/height"
	"github.com/tokenize-x/ibc-relayer/ibc/ids"
	"github.com/tokenize-x/ibc-relayer/relayer/chain/cache"
	"github.com/tokenize-x/ibc-relayer/relayer/chain/metrics"
)

// request is one mailbox entry: a closure the Runtime's goroutine runs with
// exclusive access to the driver and cache, and a reply channel carrying
// its result. This is the single-goroutine-owns-the-resource idiom: no
// other goroutine ever touches the driver directly.
type request struct {
	id    uuid.UUID
	apply func(ctx context.Context, r *Runtime) (any, error)
	reply chan response
}

type response struct {
	value any
	err   error
}

// Runtime is the per-chain actor described in spec.md §4.E: one goroutine
// owning a Driver and a consensus state cache, serving requests from a
// mailbox and forwarding decoded block events to subscribers.
type Runtime struct {
	chainID ids.ChainId
	driver  Driver
	cache   *cache.Cache
	logger  log.Logger
	metrics *metrics.Metrics

	mailbox  chan request
	watchers []chan events.Event
}

// NewRuntime constructs a Runtime for driver, publishing metrics to reg.
func NewRuntime(driver Driver, logger log.Logger, reg prometheus.Registerer) *Runtime {
	chainID := driver.ChainId()

	return &Runtime{
		chainID: chainID,
		driver:  driver,
		cache:   cache.New(),
		logger:  logger.With("chain_id", string(chainID)),
		metrics: metrics.New(reg, string(chainID)),
		mailbox: make(chan request, 64),
	}
}

// ChainId returns the chain this runtime owns.
func (rt *Runtime) ChainId() ids.ChainId { return rt.chainID }

// Run drives the actor's select loop until ctx is cancelled, matching the
// teacher's long-lived-worker shape (one owning goroutine, select over a
// request channel and a done channel).
func (rt *Runtime) Run(ctx context.Context) error {
	sub, err := rt.driver.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("subscribing to %s: %w", rt.chainID, err)
	}

	rt.logger.Info("chain runtime started")

	for {
		select {
		case <-ctx.Done():
			rt.logger.Info("chain runtime stopping")
			return ctx.Err()

		case batch, ok := <-sub:
			if !ok {
				return fmt.Errorf("subscription to %s closed", rt.chainID)
			}
			rt.handleBlock(batch)

		case req := <-rt.mailbox:
			rt.metrics.MailboxDepth.Set(float64(len(rt.mailbox)))
			value, err := req.apply(ctx, rt)
			req.reply <- response{value: value, err: err}
		}
	}
}

func (rt *Runtime) handleBlock(batch BlockEvents) {
	decoded, err := events.DecodeBlock(batch.Height, batch.Raw)
	if err != nil {
		rt.logger.Error("failed to decode block events", "height", batch.Height, "err", err)
		rt.metrics.QueryErrors.Inc()
		return
	}

	rt.metrics.BlocksProcessed.Inc()

	for _, w := range rt.watchers {
		for _, e := range decoded {
			w <- e
		}
	}
}

// Subscribe registers a new watcher for decoded events. Must be called
// before Run starts consuming the driver's subscription, matching the
// teacher's construct-then-start wiring order.
func (rt *Runtime) Subscribe() <-chan events.Event {
	ch := make(chan events.Event, 256)
	rt.watchers = append(rt.watchers, ch)
	return ch
}

// send posts req to the mailbox and blocks for its reply, or returns
// ctx.Err() if ctx is cancelled first.
func (rt *Runtime) send(ctx context.Context, apply func(context.Context, *Runtime) (any, error)) (any, error) {
	req := request{id: uuid.New(), apply: apply, reply: make(chan response, 1)}

	select {
	case rt.mailbox <- req:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case resp := <-req.reply:
		return resp.value, resp.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// LatestHeight implements the query_latest_height request (spec.md §4.E).
func (rt *Runtime) LatestHeight(ctx context.Context) (height.Height, error) {
	v, err := rt.send(ctx, func(ctx context.Context, rt *Runtime) (any, error) {
		status, err := rt.driver.Status(ctx)
		if err != nil {
			rt.metrics.QueryErrors.Inc()
			return nil, err
		}
		return status.Height, nil
	})
	if err != nil {
		return height.Height{}, err
	}
	return v.(height.Height), nil
}

// ProvenClientState implements proven_client_state, caching nothing itself
// since client states (unlike consensus states) are not height-indexed for
// caching purposes here.
func (rt *Runtime) ProvenClientState(ctx context.Context, id ids.ClientId, h height.Height) (client.AnyClientState, ProvenValue, error) {
	v, err := rt.send(ctx, func(ctx context.Context, rt *Runtime) (any, error) {
		cs, proof, err := rt.driver.ClientState(ctx, id, h)
		if err != nil {
			rt.metrics.QueryErrors.Inc()
			return nil, err
		}
		return [2]any{cs, proof}, nil
	})
	if err != nil {
		return client.AnyClientState{}, ProvenValue{}, err
	}
	pair := v.([2]any)
	return pair[0].(client.AnyClientState), pair[1].(ProvenValue), nil
}

// ProvenConsensusState implements proven_consensus_state, consulting and
// populating the light-client cache (spec.md §4.E).
func (rt *Runtime) ProvenConsensusState(ctx context.Context, id ids.ClientId, h height.Height) (client.AnyConsensusState, ProvenValue, error) {
	v, err := rt.send(ctx, func(ctx context.Context, rt *Runtime) (any, error) {
		if cached, ok := rt.cache.Get(string(id), h); ok {
			return [2]any{cached, ProvenValue{Height: h}}, nil
		}

		cs, proof, err := rt.driver.ConsensusState(ctx, id, h)
		if err != nil {
			rt.metrics.QueryErrors.Inc()
			return nil, err
		}
		rt.cache.Put(string(id), h, cs)
		return [2]any{cs, proof}, nil
	})
	if err != nil {
		return client.AnyConsensusState{}, ProvenValue{}, err
	}
	pair := v.([2]any)
	return pair[0].(client.AnyConsensusState), pair[1].(ProvenValue), nil
}

// LatestCachedConsensusState returns the newest consensus state this
// runtime has cached for id in revision, used by the link worker to decide
// whether a client update is needed before assembling a message
// (spec.md §4.F step 3a).
func (rt *Runtime) LatestCachedConsensusState(ctx context.Context, id ids.ClientId, revision uint64) (height.Height, client.AnyConsensusState, bool, error) {
	v, err := rt.send(ctx, func(ctx context.Context, rt *Runtime) (any, error) {
		h, cs, ok := rt.cache.Latest(string(id), revision)
		return [3]any{h, cs, ok}, nil
	})
	if err != nil {
		return height.Height{}, client.AnyConsensusState{}, false, err
	}
	triple := v.([3]any)
	return triple[0].(height.Height), triple[1].(client.AnyConsensusState), triple[2].(bool), nil
}

// ProvenConnection implements proven_connection.
func (rt *Runtime) ProvenConnection(ctx context.Context, id ids.ConnectionId, h height.Height) (connection.End, ProvenValue, error) {
	v, err := rt.send(ctx, func(ctx context.Context, rt *Runtime) (any, error) {
		end, proof, err := rt.driver.ConnectionEnd(ctx, id, h)
		if err != nil {
			rt.metrics.QueryErrors.Inc()
			return nil, err
		}
		return [2]any{end, proof}, nil
	})
	if err != nil {
		return connection.End{}, ProvenValue{}, err
	}
	pair := v.([2]any)
	return pair[0].(connection.End), pair[1].(ProvenValue), nil
}

// ProvenChannel implements proven_channel.
func (rt *Runtime) ProvenChannel(ctx context.Context, port ids.PortId, ch ids.ChannelId, h height.Height) (channel.End, ProvenValue, error) {
	v, err := rt.send(ctx, func(ctx context.Context, rt *Runtime) (any, error) {
		end, proof, err := rt.driver.ChannelEnd(ctx, port, ch, h)
		if err != nil {
			rt.metrics.QueryErrors.Inc()
			return nil, err
		}
		return [2]any{end, proof}, nil
	})
	if err != nil {
		return channel.End{}, ProvenValue{}, err
	}
	pair := v.([2]any)
	return pair[0].(channel.End), pair[1].(ProvenValue), nil
}

// ProvenPacketState holds the two proofs ProvenCommitmentAndReceipt queries
// concurrently via errgroup: the packet commitment proof and the
// receipt-absence proof.
type ProvenPacketState struct {
	Commitment ProvenValue
	Receipt    ProvenValue
}

// ProvenPacketCommitment implements proven_packet_commitment.
func (rt *Runtime) ProvenPacketCommitment(ctx context.Context, port ids.PortId, ch ids.ChannelId, sequence uint64, h height.Height) (ProvenValue, error) {
	v, err := rt.send(ctx, func(ctx context.Context, rt *Runtime) (any, error) {
		proof, err := rt.driver.PacketCommitment(ctx, port, ch, sequence, h)
		if err != nil {
			rt.metrics.QueryErrors.Inc()
			return nil, err
		}
		return proof, nil
	})
	if err != nil {
		return ProvenValue{}, err
	}
	return v.(ProvenValue), nil
}

// ProvenPacketAcknowledgement implements proven_packet_acknowledgement.
func (rt *Runtime) ProvenPacketAcknowledgement(ctx context.Context, port ids.PortId, ch ids.ChannelId, sequence uint64, h height.Height) (ProvenValue, error) {
	v, err := rt.send(ctx, func(ctx context.Context, rt *Runtime) (any, error) {
		proof, err := rt.driver.PacketAcknowledgement(ctx, port, ch, sequence, h)
		if err != nil {
			rt.metrics.QueryErrors.Inc()
			return nil, err
		}
		return proof, nil
	})
	if err != nil {
		return ProvenValue{}, err
	}
	return v.(ProvenValue), nil
}

// ProvenPacketReceiptAbsence implements proven_packet_receipt_absence.
func (rt *Runtime) ProvenPacketReceiptAbsence(ctx context.Context, port ids.PortId, ch ids.ChannelId, sequence uint64, h height.Height) (ProvenValue, error) {
	v, err := rt.send(ctx, func(ctx context.Context, rt *Runtime) (any, error) {
		proof, err := rt.driver.PacketReceiptAbsence(ctx, port, ch, sequence, h)
		if err != nil {
			rt.metrics.QueryErrors.Inc()
			return nil, err
		}
		return proof, nil
	})
	if err != nil {
		return ProvenValue{}, err
	}
	return v.(ProvenValue), nil
}

// ProvenCommitmentAndReceipt queries a packet commitment proof on one chain
// and the corresponding receipt-absence proof on the other concurrently,
// the two independent reads a Timeout message assembly needs together.
func ProvenCommitmentAndReceipt(ctx context.Context, src, dst *Runtime, port ids.PortId, ch ids.ChannelId, sequence uint64, srcHeight, dstHeight height.Height) (ProvenPacketState, error) {
	var out ProvenPacketState

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := src.ProvenPacketCommitment(ctx, port, ch, sequence, srcHeight)
		out.Commitment = p
		return err
	})
	g.Go(func() error {
		p, err := dst.ProvenPacketReceiptAbsence(ctx, port, ch, sequence, dstHeight)
		out.Receipt = p
		return err
	})

	if err := g.Wait(); err != nil {
		return ProvenPacketState{}, err
	}
	return out, nil
}

// NextSequenceRecv implements query_next_sequence_recv, the sequence
// tracker proof a Timeout message on an ordered channel needs.
func (rt *Runtime) NextSequenceRecv(ctx context.Context, port ids.PortId, ch ids.ChannelId, h height.Height) (uint64, ProvenValue, error) {
	v, err := rt.send(ctx, func(ctx context.Context, rt *Runtime) (any, error) {
		seq, proof, err := rt.driver.NextSequenceRecv(ctx, port, ch, h)
		if err != nil {
			rt.metrics.QueryErrors.Inc()
			return nil, err
		}
		return [2]any{seq, proof}, nil
	})
	if err != nil {
		return 0, ProvenValue{}, err
	}
	pair := v.([2]any)
	return pair[0].(uint64), pair[1].(ProvenValue), nil
}

// PacketCommitments implements query_packet_commitments.
func (rt *Runtime) PacketCommitments(ctx context.Context, port ids.PortId, ch ids.ChannelId) ([]uint64, error) {
	v, err := rt.send(ctx, func(ctx context.Context, rt *Runtime) (any, error) {
		seqs, err := rt.driver.PacketCommitments(ctx, port, ch)
		if err != nil {
			rt.metrics.QueryErrors.Inc()
			return nil, err
		}
		return seqs, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]uint64), nil
}

// UnreceivedPackets implements query_unreceived_packets.
func (rt *Runtime) UnreceivedPackets(ctx context.Context, port ids.PortId, ch ids.ChannelId, sequences []uint64) ([]uint64, error) {
	v, err := rt.send(ctx, func(ctx context.Context, rt *Runtime) (any, error) {
		seqs, err := rt.driver.UnreceivedPackets(ctx, port, ch, sequences)
		if err != nil {
			rt.metrics.QueryErrors.Inc()
			return nil, err
		}
		return seqs, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]uint64), nil
}

// UnreceivedAcks implements query_unreceived_acknowledgements.
func (rt *Runtime) UnreceivedAcks(ctx context.Context, port ids.PortId, ch ids.ChannelId, sequences []uint64) ([]uint64, error) {
	v, err := rt.send(ctx, func(ctx context.Context, rt *Runtime) (any, error) {
		seqs, err := rt.driver.UnreceivedAcks(ctx, port, ch, sequences)
		if err != nil {
			rt.metrics.QueryErrors.Inc()
			return nil, err
		}
		return seqs, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]uint64), nil
}

// BuildClientUpdateHeader implements build_client_update_header.
func (rt *Runtime) BuildClientUpdateHeader(ctx context.Context, trustedHeight height.Height) (client.AnyConsensusState, client.AnyClientState, error) {
	v, err := rt.send(ctx, func(ctx context.Context, rt *Runtime) (any, error) {
		cs, cl, err := rt.driver.BuildClientUpdateHeader(ctx, trustedHeight)
		if err != nil {
			rt.metrics.QueryErrors.Inc()
			return nil, err
		}
		return [2]any{cs, cl}, nil
	})
	if err != nil {
		return client.AnyConsensusState{}, client.AnyClientState{}, err
	}
	pair := v.([2]any)
	return pair[0].(client.AnyConsensusState), pair[1].(client.AnyClientState), nil
}

// SubmitMessages implements submit_messages.
func (rt *Runtime) SubmitMessages(ctx context.Context, msgs []any) (TxResult, error) {
	v, err := rt.send(ctx, func(ctx context.Context, rt *Runtime) (any, error) {
		rt.metrics.SubmitTotal.Inc()
		result, err := rt.driver.SubmitMessages(ctx, msgs)
		if err != nil || !result.Succeeded() {
			rt.metrics.SubmitFailures.Inc()
		}
		return result, err
	})
	if err != nil {
		return TxResult{}, err
	}
	return v.(TxResult), nil
}
