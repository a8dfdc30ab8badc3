// Package link implements the link worker (spec.md §4.F): an independent
// actor relaying IBC traffic for one oriented (source, destination, port,
// channel) quadruple between two chain runtimes.
package link

import (
	"context"
	"sync"
	"time"

	"cosmossdk.io/log"
	"github.com/samber/lo"

	"github.com/tokenize-x/ibc-relayer/ibc/events"
	"github.com/tokenize-x/ibc-relayer/ibc/ids"
	"github.com/tokenize-x/ibc-relayer/relayer/chain"
)

// Path names the oriented quadruple a Link relays (spec.md §4.F).
type Path struct {
	SourceChainId      ids.ChainId
	DestinationChainId ids.ChainId
	PortId             ids.PortId
	SourceChannelId    ids.ChannelId
}

// Link owns both chain handles for one Path and runs its relay loop.
type Link struct {
	path Path

	src        *chain.Runtime
	dst        *chain.Runtime
	srcClient  ids.ClientId
	dstClient  ids.ClientId
	dstChannel ids.ChannelId

	retryInterval time.Duration
	logger        log.Logger
	orderedChan   bool

	expectedSeq uint64 // next sequence expected on an ordered channel

	mu      sync.Mutex
	pending map[uint64]packetEvent // sequence -> observed SendPacket, for Reconcile
}

// New builds a Link for path, relaying between src and dst. srcClient and
// dstClient are the client ids each chain uses to track the other. The
// destination's half of the channel is not an argument: it stays empty
// until SetDestinationChannel records it.
func New(path Path, src, dst *chain.Runtime, srcClient, dstClient ids.ClientId, logger log.Logger) *Link {
	return &Link{
		path:          path,
		src:           src,
		dst:           dst,
		srcClient:     srcClient,
		dstClient:     dstClient,
		retryInterval: 200 * time.Millisecond,
		pending:       make(map[uint64]packetEvent),
		logger: logger.With(
			"src_chain", string(path.SourceChainId),
			"dst_chain", string(path.DestinationChainId),
			"port", string(path.PortId),
			"channel", string(path.SourceChannelId),
		),
	}
}

// SetDestinationChannel records the destination's channel id once the
// handshake resolves it, needed before acknowledgement/timeout proofs can
// be queried against the destination side.
func (l *Link) SetDestinationChannel(id ids.ChannelId) {
	l.dstChannel = id
}

// SetOrdered records whether the channel this link relays over enforces
// ascending delivery (spec.md §4.F "Ordered channel sequencing"). The start
// command sets it from the configured path's ordered flag.
func (l *Link) SetOrdered(ordered bool) {
	l.orderedChan = ordered
}

// Relay runs the worker's loop (spec.md §4.F steps 1-4) until ctx is
// cancelled: subscribe to the source, classify each batch, assemble and
// submit counterparty messages.
func (l *Link) Relay(ctx context.Context) error {
	sub := l.src.Subscribe()

	l.logger.Info("link relay loop started")

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("link relay loop stopping")
			return ctx.Err()

		case ev, ok := <-sub:
			if !ok {
				return nil
			}
			// Transient submit failures were already retried through
			// retry.Do inside submit. Errors from assembling a message
			// (client-update header or proof queries) are not retried,
			// transient or not: they reach here like permanent ones,
			// and this link worker stops (the process and sibling
			// links are unaffected).
			if err := l.handleEvent(ctx, ev); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				l.logger.Error("stopping link after unrecoverable error", "event", ev.String(), "err", err)
				return err
			}
		}
	}
}

// handleEvent implements step 2 (classify) and steps 3-4 (assemble and
// submit) for a single decoded event.
func (l *Link) handleEvent(ctx context.Context, ev events.Event) error {
	if !l.concernsLink(ev) {
		return nil
	}

	switch ev.Kind {
	case events.KindSendPacket:
		return l.relaySend(ctx, ev)
	case events.KindWriteAcknowledgement:
		return l.relayAck(ctx, ev)
	case events.KindTimeoutPacket, events.KindTimeoutOnClosePacket:
		// Timeouts observed as events are already resolved on-chain; the
		// worker drives its own timeouts via Reconcile instead of reacting
		// to a counterparty's, so there is nothing to relay here.
		return nil
	default:
		// Channel handshake steps are driven by a separate handshake flow,
		// out of scope for the steady-state packet relay loop.
		return nil
	}
}

// concernsLink reports whether ev belongs to this link's channel (spec.md
// §4.F step 2: "classify IBC events that concern this link").
var packetKinds = []events.Kind{
	events.KindSendPacket, events.KindWriteAcknowledgement,
	events.KindTimeoutPacket, events.KindTimeoutOnClosePacket,
	events.KindAcknowledgePacket,
}

var channelHandshakeKinds = []events.Kind{
	events.KindChanOpenInit, events.KindChanOpenTry, events.KindChanOpenAck, events.KindChanOpenConfirm,
	events.KindChanCloseInit, events.KindChanCloseConfirm,
}

func (l *Link) concernsLink(ev events.Event) bool {
	switch {
	case lo.Contains(packetKinds, ev.Kind):
		if ev.Packet == nil {
			return false
		}
		return ev.Packet.SourcePort == l.path.PortId && ev.Packet.SourceChannel == l.path.SourceChannelId
	case lo.Contains(channelHandshakeKinds, ev.Kind):
		if ev.Channel == nil {
			return false
		}
		return ev.Channel.PortId == l.path.PortId && ev.Channel.ChannelId == l.path.SourceChannelId
	default:
		return false
	}
}

func (l *Link) relaySend(ctx context.Context, ev events.Event) error {
	pe := packetEvent{height: ev.Height, packet: *ev.Packet}

	if l.ordered() {
		if err := l.checkOrdering(pe.packet.Sequence); err != nil {
			l.timeoutOrderedGap(ctx, pe)
			l.expectedSeq = pe.packet.Sequence + 1
			return nil
		}
	}

	l.mu.Lock()
	l.pending[pe.packet.Sequence] = pe
	l.mu.Unlock()

	msg, err := assembleRecv(ctx, l.src, l.dst, l.dstClient, pe)
	if err != nil {
		return err
	}

	if err := l.submit(ctx, l.dst, msg); err != nil {
		return err
	}

	if l.ordered() {
		l.expectedSeq = pe.packet.Sequence + 1
	}
	return nil
}

func (l *Link) relayAck(ctx context.Context, ev events.Event) error {
	pe := packetEvent{height: ev.Height, packet: *ev.Packet}

	msg, err := assembleAck(ctx, l.dst, l.src, l.srcClient, pe, ev.Ack)
	if err != nil {
		return err
	}

	if err := l.submit(ctx, l.src, msg); err != nil {
		return err
	}

	l.mu.Lock()
	delete(l.pending, pe.packet.Sequence)
	l.mu.Unlock()
	return nil
}

// submit batches an optional UpdateClient header ahead of msg and submits
// to target through the retry wrapper (spec.md §4.F step 4).
func (l *Link) submit(ctx context.Context, target *chain.Runtime, msg assembled) error {
	batch := make([]any, 0, 2)
	if msg.updateHeader != nil {
		batch = append(batch, *msg.updateHeader)
	}
	batch = append(batch, msg.message)

	return submitWithRetry(ctx, l.retryInterval, func() error {
		result, err := target.SubmitMessages(ctx, batch)
		if err != nil {
			return classifyRuntimeError(err)
		}
		if !result.Succeeded() {
			l.logger.Warn("chain reported execution error", "log", result.Log)
			return nil // ChainError is surfaced as an event, not retried here
		}
		return nil
	})
}

func (l *Link) ordered() bool {
	return l.orderedChan
}

// checkOrdering enforces spec.md §4.F's "Ordered channel sequencing":
// missing a sequence is terminal and the worker must produce a timeout
// that closes the channel rather than skip ahead.
func (l *Link) checkOrdering(sequence uint64) error {
	if l.expectedSeq != 0 && sequence != l.expectedSeq {
		return errOrderedSequenceGap(l.expectedSeq, sequence)
	}
	return nil
}

// timeoutOrderedGap handles a break in ordered delivery by timing the
// offending packet out and closing the channel, instead of halting the
// whole link the way propagating errOrderedSequenceGap up through Relay
// would (spec.md §4.F: a gap "produces a timeout that closes it"). Failures
// here are logged rather than returned: the link should keep relaying other
// packets even if this particular timeout couldn't be assembled or
// submitted this round.
func (l *Link) timeoutOrderedGap(ctx context.Context, pe packetEvent) {
	dstHeight, err := l.dst.LatestHeight(ctx)
	if err != nil {
		l.logger.Warn("failed to read destination height for ordered gap timeout", "sequence", pe.packet.Sequence, "err", err)
		return
	}

	msg, err := assembleTimeout(ctx, l.src, l.dst, l.srcClient, pe, dstHeight)
	if err != nil {
		l.logger.Warn("failed to assemble ordered gap timeout", "sequence", pe.packet.Sequence, "err", err)
		return
	}

	if err := l.submit(ctx, l.src, msg); err != nil {
		l.logger.Warn("failed to submit ordered gap timeout", "sequence", pe.packet.Sequence, "err", err)
	}
}

