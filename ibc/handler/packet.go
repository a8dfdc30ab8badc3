package handler

import (
	"github.com/tokenize-x/ibc-relayer/ibc/channel"
	"github.com/tokenize-x/ibc-relayer/ibc/events"
)

// SendPacket originates a packet: the channel must be Open, the
// commitment is computed and handed back for the caller to store
// alongside a SendPacket event (spec.md §3 "a packet's commitment is
// written at send").
func SendPacket(r Reader, msg MsgSendPacket) (*Output[PacketResult], error) {
	out := NewOutput[PacketResult]()
	p := msg.Packet

	if err := p.Validate(); err != nil {
		return nil, err
	}

	ch, ok := r.ChannelEnd(p.SourcePort, p.SourceChannel)
	if !ok {
		return nil, errChannelNotFound(p.SourcePort, p.SourceChannel)
	}
	if ch.State != channel.Open {
		return nil, errChannelClosed(p.SourcePort, p.SourceChannel)
	}
	if !r.AuthenticatedCapability(p.SourcePort) {
		return nil, errMissingCapability(p.SourcePort)
	}
	if p.DestinationPort != ch.Counterparty.PortId || p.DestinationChannel != ch.Counterparty.ChannelId {
		return nil, errInvalidPacketCounterparty(p.SourcePort, p.SourceChannel)
	}

	commitment := r.Hash(channel.CommitmentInput(p.TimeoutTimestampNs, p.TimeoutHeight, p.Data))

	out.SetResult(PacketResult{
		Kind:            PacketResultSend,
		PortId:          p.SourcePort,
		ChannelId:       p.SourceChannel,
		Sequence:        p.Sequence,
		WriteCommitment: commitment,
	})
	out.EmitEvent(events.Event{Kind: events.KindSendPacket, Packet: &p})
	out.Log("success: packet send")
	return out, nil
}

// RecvPacket delivers a packet proven committed on the source chain. On
// an unordered channel it is idempotent: a second delivery of the same
// sequence fails with PacketReceiptAlreadyExists once the receipt is
// written, rather than re-processing (spec.md §8 "Idempotent receive").
// On an ordered channel, strict ascending delivery is enforced via
// next_sequence_recv.
func RecvPacket(r Reader, msg MsgRecvPacket) (*Output[PacketResult], error) {
	out := NewOutput[PacketResult]()
	p := msg.Packet

	ch, ok := r.ChannelEnd(p.DestinationPort, p.DestinationChannel)
	if !ok {
		return nil, errChannelNotFound(p.DestinationPort, p.DestinationChannel)
	}
	if ch.State != channel.Open {
		return nil, errChannelClosed(p.DestinationPort, p.DestinationChannel)
	}
	if !r.AuthenticatedCapability(p.DestinationPort) {
		return nil, errMissingCapability(p.DestinationPort)
	}
	if p.SourcePort != ch.Counterparty.PortId || p.SourceChannel != ch.Counterparty.ChannelId {
		return nil, errInvalidPacketCounterparty(p.DestinationPort, p.DestinationChannel)
	}

	connID := ch.Connection()
	conn, ok := r.ConnectionEnd(connID)
	if !ok {
		return nil, errMissingConnection(connID)
	}

	expectedCommitment := r.Hash(channel.CommitmentInput(p.TimeoutTimestampNs, p.TimeoutHeight, p.Data))
	if err := r.VerifyPacketCommitment(conn, msg.Proofs, p.SourcePort, p.SourceChannel, p.Sequence, expectedCommitment); err != nil {
		return nil, err
	}

	result := PacketResult{
		Kind:      PacketResultRecv,
		PortId:    p.DestinationPort,
		ChannelId: p.DestinationChannel,
		Sequence:  p.Sequence,
	}

	if ch.Ordering == channel.Ordered {
		next, ok := r.GetNextSequenceRecv(p.DestinationPort, p.DestinationChannel)
		if !ok {
			next = 1
		}
		if p.Sequence != next {
			return nil, errInvalidPacketSequence(p.Sequence, "ordered channel requires strict ascending delivery")
		}
		result.AdvanceNextSequenceRecv = next + 1
	} else {
		if r.GetPacketReceipt(p.DestinationPort, p.DestinationChannel, p.Sequence) {
			return nil, errPacketReceiptAlreadyExists(p.DestinationPort, p.DestinationChannel, p.Sequence)
		}
		result.WriteReceipt = true
	}

	result.WriteAcknowledgement = channel.AcknowledgementSuccess
	out.SetResult(result)
	out.EmitEvent(events.Event{Kind: events.KindReceivePacket, Packet: &p})
	out.EmitEvent(events.Event{Kind: events.KindWriteAcknowledgement, Packet: &p, Ack: result.WriteAcknowledgement})
	out.Log("success: packet receive")
	return out, nil
}

// AcknowledgePacket delivers a proven acknowledgement, erasing the
// source's commitment (spec.md §3 lifecycle).
func AcknowledgePacket(r Reader, msg MsgAcknowledgePacket) (*Output[PacketResult], error) {
	out := NewOutput[PacketResult]()
	p := msg.Packet

	ch, ok := r.ChannelEnd(p.SourcePort, p.SourceChannel)
	if !ok {
		return nil, errChannelNotFound(p.SourcePort, p.SourceChannel)
	}
	if ch.State != channel.Open {
		return nil, errChannelClosed(p.SourcePort, p.SourceChannel)
	}
	if !r.AuthenticatedCapability(p.SourcePort) {
		return nil, errMissingCapability(p.SourcePort)
	}

	connID := ch.Connection()
	conn, ok := r.ConnectionEnd(connID)
	if !ok {
		return nil, errMissingConnection(connID)
	}

	storedCommitment, ok := r.GetPacketCommitment(p.SourcePort, p.SourceChannel, p.Sequence)
	if !ok {
		return nil, errPacketCommitmentNotFound(p.SourcePort, p.SourceChannel, p.Sequence)
	}
	expectedCommitment := r.Hash(channel.CommitmentInput(p.TimeoutTimestampNs, p.TimeoutHeight, p.Data))
	if string(storedCommitment) != string(expectedCommitment) {
		return nil, errIncorrectPacketCommitment(p.SourcePort, p.SourceChannel, p.Sequence)
	}

	if err := r.VerifyPacketAcknowledgement(conn, msg.Proofs, p.DestinationPort, p.DestinationChannel, p.Sequence, msg.Acknowledgement); err != nil {
		return nil, err
	}

	out.SetResult(PacketResult{
		Kind:      PacketResultAck,
		PortId:    p.SourcePort,
		ChannelId: p.SourceChannel,
		Sequence:  p.Sequence,
	})
	out.EmitEvent(events.Event{Kind: events.KindAcknowledgePacket, Packet: &p})
	out.Log("success: packet acknowledgement")
	return out, nil
}

// Timeout is the canonical handler walkthrough: lookup the source channel,
// authorise, check counterparty, resolve the connection and consensus
// state, evaluate the timeout proof condition, recompute and check the
// commitment, then (depending on ordering) verify next_sequence_recv or
// receipt absence. On an ordered channel a timeout also closes the
// source channel end (spec.md §4.D, §8 "Ordered-gap ⇒
// timeout-closes-channel").
func Timeout(r Reader, msg MsgTimeout) (*Output[PacketResult], error) {
	out := NewOutput[PacketResult]()
	p := msg.Packet

	ch, ok := r.ChannelEnd(p.SourcePort, p.SourceChannel)
	if !ok {
		return nil, errChannelNotFound(p.SourcePort, p.SourceChannel)
	}
	if ch.State != channel.Open {
		return nil, errChannelClosed(p.SourcePort, p.SourceChannel)
	}
	if !r.AuthenticatedCapability(p.SourcePort) {
		return nil, errMissingCapability(p.SourcePort)
	}
	if p.DestinationPort != ch.Counterparty.PortId || p.DestinationChannel != ch.Counterparty.ChannelId {
		return nil, errInvalidPacketCounterparty(p.SourcePort, p.SourceChannel)
	}

	connID := ch.Connection()
	conn, ok := r.ConnectionEnd(connID)
	if !ok {
		return nil, errMissingConnection(connID)
	}

	consensusState, ok := r.ClientConsensusState(conn.ClientId, msg.Proofs.Height)
	if !ok {
		return nil, errMissingClientConsensusState(conn.ClientId, msg.Proofs.Height)
	}

	consensusTimestampNs := uint64(consensusState.Timestamp().UnixNano())
	heightTimedOut := !p.TimeoutHeight.IsZero() && p.TimeoutHeight.LTE(msg.Proofs.Height)
	timestampTimedOut := p.TimeoutTimestampNs != 0 && p.TimeoutTimestampNs <= consensusTimestampNs
	if !heightTimedOut && !timestampTimedOut {
		if !p.TimeoutHeight.IsZero() {
			return nil, errPacketTimeoutHeightNotReached(p.TimeoutHeight, msg.Proofs.Height)
		}
		return nil, errPacketTimeoutTimestampNotReached(p.TimeoutTimestampNs, consensusTimestampNs)
	}

	storedCommitment, ok := r.GetPacketCommitment(p.SourcePort, p.SourceChannel, p.Sequence)
	if !ok {
		return nil, errPacketCommitmentNotFound(p.SourcePort, p.SourceChannel, p.Sequence)
	}
	expectedCommitment := r.Hash(channel.CommitmentInput(p.TimeoutTimestampNs, p.TimeoutHeight, p.Data))
	if string(storedCommitment) != string(expectedCommitment) {
		return nil, errIncorrectPacketCommitment(p.SourcePort, p.SourceChannel, p.Sequence)
	}

	result := PacketResult{
		Kind:      PacketResultTimeout,
		PortId:    p.SourcePort,
		ChannelId: p.SourceChannel,
		Sequence:  p.Sequence,
	}

	if ch.Ordering == channel.Ordered {
		if p.Sequence < msg.NextSequenceRecv {
			return nil, errInvalidPacketSequence(p.Sequence, "timeout sequence precedes destination's next_sequence_recv")
		}
		if err := r.VerifyNextSequenceRecv(conn, msg.Proofs, p.DestinationPort, p.DestinationChannel, msg.NextSequenceRecv); err != nil {
			return nil, err
		}
		closed := ch
		closed.State = channel.Closed
		result.Channel = &closed
	} else {
		if err := r.VerifyPacketReceiptAbsence(conn, msg.Proofs, p.DestinationPort, p.DestinationChannel, p.Sequence); err != nil {
			return nil, err
		}
	}

	out.SetResult(result)
	out.EmitEvent(events.Event{Kind: events.KindTimeoutPacket, Packet: &p})
	out.Log("success: packet timeout")
	return out, nil
}

// TimeoutOnClose proves a destination channel has already closed rather
// than proving next_sequence_recv or receipt absence: the closed state
// itself is the proof that the packet can never be received (spec.md §9
// DESIGN NOTES: "whether to also close the counterparty is deferred to
// TimeoutOnClose messaging").
func TimeoutOnClose(r Reader, msg MsgTimeoutOnClose) (*Output[PacketResult], error) {
	out := NewOutput[PacketResult]()
	p := msg.Packet

	ch, ok := r.ChannelEnd(p.SourcePort, p.SourceChannel)
	if !ok {
		return nil, errChannelNotFound(p.SourcePort, p.SourceChannel)
	}
	if !r.AuthenticatedCapability(p.SourcePort) {
		return nil, errMissingCapability(p.SourcePort)
	}

	connID := ch.Connection()
	conn, ok := r.ConnectionEnd(connID)
	if !ok {
		return nil, errMissingConnection(connID)
	}

	storedCommitment, ok := r.GetPacketCommitment(p.SourcePort, p.SourceChannel, p.Sequence)
	if !ok {
		return nil, errPacketCommitmentNotFound(p.SourcePort, p.SourceChannel, p.Sequence)
	}
	expectedCommitment := r.Hash(channel.CommitmentInput(p.TimeoutTimestampNs, p.TimeoutHeight, p.Data))
	if string(storedCommitment) != string(expectedCommitment) {
		return nil, errIncorrectPacketCommitment(p.SourcePort, p.SourceChannel, p.Sequence)
	}

	closedCounterparty := channel.End{
		State:          channel.Closed,
		Ordering:       ch.Ordering,
		Counterparty:   channel.Counterparty{PortId: p.SourcePort, ChannelId: p.SourceChannel},
		ConnectionHops: ch.ConnectionHops,
		Version:        ch.Version,
	}
	if err := r.VerifyChannelState(conn, msg.Proofs, p.DestinationPort, p.DestinationChannel, closedCounterparty); err != nil {
		return nil, err
	}
	if ch.Ordering == channel.Ordered {
		if err := r.VerifyNextSequenceRecv(conn, msg.Proofs, p.DestinationPort, p.DestinationChannel, msg.NextSequenceRecv); err != nil {
			return nil, err
		}
	}

	result := PacketResult{
		Kind:      PacketResultTimeoutOnClose,
		PortId:    p.SourcePort,
		ChannelId: p.SourceChannel,
		Sequence:  p.Sequence,
	}
	if ch.Ordering == channel.Ordered {
		closed := ch
		closed.State = channel.Closed
		result.Channel = &closed
	}

	out.SetResult(result)
	out.EmitEvent(events.Event{Kind: events.KindTimeoutOnClosePacket, Packet: &p})
	out.Log("success: packet timeout on close")
	return out, nil
}
