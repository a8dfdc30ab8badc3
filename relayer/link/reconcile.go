package link

import (
	"context"
	"time"

	"github.com/samber/lo"

	"github.com/tokenize-x/ibc-relayer/ibc/channel"
	"github.com/tokenize-x/ibc-relayer/ibc/height"
)

// packetTimedOutByHeight reports whether dstHeight has passed p's
// timeout_height. The reconciliation sweep only acts on the height bound:
// the timestamp bound needs the destination's consensus state timestamp,
// which the steady-state relay path already checks via the handler itself
// when a receive is attempted and rejected.
func packetTimedOutByHeight(p channel.Packet, dstHeight height.Height) bool {
	return !p.TimeoutHeight.IsZero() && p.TimeoutHeight.LTE(dstHeight)
}

// Reconcile implements spec.md §4.F step 5: periodically sweep the packets
// this link holds as pending and drive each one the destination still
// reports unreceived to either delivery or timeout.
//
// It only ever acts on packets this link has itself observed via relaySend
// (cached in l.pending) and intersects them with what the destination
// still reports unreceived: a bare commitment hash on-chain carries no
// packet payload to replay from, so reconciliation closes the gap between
// "observed but not yet confirmed delivered" rather than rediscovering
// history after a restart.
func (l *Link) Reconcile(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := l.reconcileOnce(ctx); err != nil {
				l.logger.Error("reconciliation sweep failed", "err", err)
			}
		}
	}
}

func (l *Link) reconcileOnce(ctx context.Context) error {
	l.mu.Lock()
	sequences := lo.Keys(l.pending)
	l.mu.Unlock()

	if len(sequences) == 0 {
		return nil
	}

	unreceived, err := l.dst.UnreceivedPackets(ctx, l.path.PortId, l.dstChannel, sequences)
	if err != nil {
		return classifyRuntimeError(err)
	}

	dstHeight, err := l.dst.LatestHeight(ctx)
	if err != nil {
		return classifyRuntimeError(err)
	}

	l.mu.Lock()
	stillPending := lo.Filter(lo.Values(l.pending), func(pe packetEvent, _ int) bool {
		return lo.Contains(unreceived, pe.packet.Sequence)
	})
	for seq := range l.pending {
		if !lo.Contains(unreceived, seq) {
			delete(l.pending, seq)
		}
	}
	l.mu.Unlock()

	for _, pe := range stillPending {
		l.reconcilePacket(ctx, pe, dstHeight)
	}

	return nil
}

// reconcilePacket drives one still-pending packet to delivery or timeout,
// based on the destination's height against the packet's own timeout
// (spec.md §4.F step 5).
func (l *Link) reconcilePacket(ctx context.Context, pe packetEvent, dstHeight height.Height) {
	if packetTimedOutByHeight(pe.packet, dstHeight) {
		msg, err := assembleTimeout(ctx, l.src, l.dst, l.srcClient, pe, dstHeight)
		if err != nil {
			l.logger.Warn("failed to assemble reconciliation timeout", "sequence", pe.packet.Sequence, "err", err)
			return
		}
		if err := l.submit(ctx, l.src, msg); err != nil {
			l.logger.Warn("failed to submit reconciliation timeout", "sequence", pe.packet.Sequence, "err", err)
			return
		}
		l.mu.Lock()
		delete(l.pending, pe.packet.Sequence)
		l.mu.Unlock()
		return
	}

	msg, err := assembleRecv(ctx, l.src, l.dst, l.dstClient, pe)
	if err != nil {
		l.logger.Warn("failed to assemble reconciliation receive", "sequence", pe.packet.Sequence, "err", err)
		return
	}
	if err := l.submit(ctx, l.dst, msg); err != nil {
		l.logger.Warn("failed to submit reconciliation receive", "sequence", pe.packet.Sequence, "err", err)
	}
}
