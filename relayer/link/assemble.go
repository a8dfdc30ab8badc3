package link

import (
	"context"

	"github.com/tokenize-x/ibc-relayer/ibc/channel"
	"github.com/tokenize-x/ibc-relayer/ibc/handler"
	"github.com/tokenize-x/ibc-relayer/ibc/height"
	"github.com/tokenize-x/ibc-relayer/ibc/ids"
	"github.com/tokenize-x/ibc-relayer/relayer/chain"
)

// assembled is a message ready to submit, plus an optional UpdateClient
// header that must precede it in the same batch (spec.md §4.F step 3a).
type assembled struct {
	updateHeader *handler.MsgUpdateClient
	message      any
}

// packetEvent bundles a decoded packet-bearing event with the fields
// downstream assembly needs, independent of which Kind produced it.
type packetEvent struct {
	height height.Height
	packet channel.Packet
}

// ensureTrustedHeight implements step 3a: if the destination's cached
// client for the source is not yet trusted up to eventHeight, build the
// header that advances it.
func ensureTrustedHeight(ctx context.Context, src, dst *chain.Runtime, dstClientID ids.ClientId, eventHeight height.Height) (*handler.MsgUpdateClient, error) {
	trusted, _, ok, err := dst.LatestCachedConsensusState(ctx, dstClientID, eventHeight.RevisionNumber)
	if err != nil {
		return nil, classifyRuntimeError(err)
	}
	if ok && trusted.GTE(eventHeight) {
		return nil, nil
	}

	consensusState, clientState, err := src.BuildClientUpdateHeader(ctx, trusted)
	if err != nil {
		return nil, classifyRuntimeError(err)
	}

	return &handler.MsgUpdateClient{
		ClientId:     dstClientID,
		Header:       consensusState,
		HeaderClient: clientState,
	}, nil
}

// assembleRecv builds the MsgRecvPacket for a SendPacket event observed on
// the source chain, with its proof taken at event.height + 1 (spec.md
// §4.F step 3b: proofs are read one height after the event that required
// them, since the commitment is only queryable once the block that wrote
// it has committed).
func assembleRecv(ctx context.Context, src, dst *chain.Runtime, dstClientID ids.ClientId, ev packetEvent) (assembled, error) {
	proofHeight := ev.height.Increment()

	update, err := ensureTrustedHeight(ctx, src, dst, dstClientID, proofHeight)
	if err != nil {
		return assembled{}, err
	}

	proof, err := src.ProvenPacketCommitment(ctx, ev.packet.SourcePort, ev.packet.SourceChannel, ev.packet.Sequence, proofHeight)
	if err != nil {
		return assembled{}, classifyRuntimeError(err)
	}

	msg := handler.MsgRecvPacket{
		Packet: ev.packet,
		Proofs: handler.Proofs{Height: proofHeight, Object: proof.Value, Client: proof.Proof},
	}
	return assembled{updateHeader: update, message: msg}, nil
}

// assembleAck builds the MsgAcknowledgePacket for a WriteAcknowledgement
// event observed on the destination chain, to submit back to the source.
func assembleAck(ctx context.Context, dst, src *chain.Runtime, srcClientID ids.ClientId, ev packetEvent, ack []byte) (assembled, error) {
	proofHeight := ev.height.Increment()

	update, err := ensureTrustedHeight(ctx, dst, src, srcClientID, proofHeight)
	if err != nil {
		return assembled{}, err
	}

	proof, err := dst.ProvenPacketAcknowledgement(ctx, ev.packet.DestinationPort, ev.packet.DestinationChannel, ev.packet.Sequence, proofHeight)
	if err != nil {
		return assembled{}, classifyRuntimeError(err)
	}

	msg := handler.MsgAcknowledgePacket{
		Packet:          ev.packet,
		Acknowledgement: ack,
		Proofs:          handler.Proofs{Height: proofHeight, Object: proof.Value, Client: proof.Proof},
	}
	return assembled{updateHeader: update, message: msg}, nil
}

// assembleTimeout builds the MsgTimeout proving the destination never
// received the packet, querying the commitment proof on the source and the
// receipt-absence proof on the destination concurrently (spec.md §4.F
// step 3b, §8 "concurrent proof queries").
func assembleTimeout(ctx context.Context, src, dst *chain.Runtime, srcClientID ids.ClientId, ev packetEvent, dstHeight height.Height) (assembled, error) {
	update, err := ensureTrustedHeight(ctx, dst, src, srcClientID, dstHeight)
	if err != nil {
		return assembled{}, err
	}

	state, err := chain.ProvenCommitmentAndReceipt(ctx, src, dst, ev.packet.SourcePort, ev.packet.SourceChannel, ev.packet.Sequence, ev.height, dstHeight)
	if err != nil {
		return assembled{}, classifyRuntimeError(err)
	}

	nextSeqRecv, _, err := dst.NextSequenceRecv(ctx, ev.packet.DestinationPort, ev.packet.DestinationChannel, dstHeight)
	if err != nil {
		return assembled{}, classifyRuntimeError(err)
	}

	msg := handler.MsgTimeout{
		Packet:           ev.packet,
		Proofs:           handler.Proofs{Height: dstHeight, Object: state.Receipt.Value, Client: state.Receipt.Proof},
		NextSequenceRecv: nextSeqRecv,
	}
	return assembled{updateHeader: update, message: msg}, nil
}
