package handler

import (
	"github.com/tokenize-x/ibc-relayer/ibc/channel"
	"github.com/tokenize-x/ibc-relayer/ibc/connection"
	"github.com/tokenize-x/ibc-relayer/ibc/events"
)

// connectionFor resolves and validates the connection a channel end runs
// over (spec.md §3: "a channel identifies its underlying connection by
// the first hop"). Every channel handshake step except ChanCloseInit
// requires it Open; ChanCloseInit does not resolve the connection.
func connectionFor(r Reader, ch channel.End) (connection.End, error) {
	connID := ch.Connection()
	conn, ok := r.ConnectionEnd(connID)
	if !ok {
		return connection.End{}, errMissingConnection(connID)
	}
	if conn.State != connection.Open {
		return connection.End{}, errConnectionNotOpen(connID)
	}
	return conn, nil
}

// ChanOpenInit starts a channel handshake from this chain.
func ChanOpenInit(r Reader, msg MsgChanOpenInit) (*Output[ChannelResult], error) {
	out := NewOutput[ChannelResult]()

	end := msg.Channel
	end.State = channel.Init
	if err := end.Validate(); err != nil {
		return nil, errInvalidChannelState(msg.PortId, "", err.Error())
	}
	if _, err := connectionFor(r, end); err != nil {
		return nil, err
	}
	if !r.AuthenticatedCapability(msg.PortId) {
		return nil, errMissingCapability(msg.PortId)
	}

	out.SetResult(ChannelResult{PortId: msg.PortId, End: end})
	out.EmitEvent(events.Event{Kind: events.KindChanOpenInit, Channel: &events.ChannelAttributes{
		PortId:             msg.PortId,
		ConnectionId:       end.Connection(),
		CounterpartyPortId: end.Counterparty.PortId,
	}})
	out.Log("success: chan open init")
	return out, nil
}

// ChanOpenTry responds to a counterparty's ChanOpenInit, verifying its
// channel end is as claimed.
func ChanOpenTry(r Reader, msg MsgChanOpenTry) (*Output[ChannelResult], error) {
	out := NewOutput[ChannelResult]()

	end := msg.Channel
	end.State = channel.TryOpen
	if err := end.Validate(); err != nil {
		return nil, errInvalidChannelState(msg.PortId, "", err.Error())
	}
	conn, err := connectionFor(r, end)
	if err != nil {
		return nil, err
	}
	if !r.AuthenticatedCapability(msg.PortId) {
		return nil, errMissingCapability(msg.PortId)
	}

	expectedCounterparty := channel.End{
		State:          channel.Init,
		Ordering:       end.Ordering,
		Counterparty:   channel.Counterparty{PortId: msg.PortId},
		ConnectionHops: end.ConnectionHops,
		Version:        msg.CounterpartyVersion,
	}
	if err := r.VerifyChannelState(conn, msg.Proofs, end.Counterparty.PortId, end.Counterparty.ChannelId, expectedCounterparty); err != nil {
		return nil, err
	}

	out.SetResult(ChannelResult{PortId: msg.PortId, End: end})
	out.EmitEvent(events.Event{Kind: events.KindChanOpenTry, Channel: &events.ChannelAttributes{
		PortId:                msg.PortId,
		ConnectionId:          end.Connection(),
		CounterpartyPortId:    end.Counterparty.PortId,
		CounterpartyChannelId: end.Counterparty.ChannelId,
	}})
	out.Log("success: chan open try")
	return out, nil
}

// ChanOpenAck completes the initiator's half: the local end transitions
// to Open from either Init or TryOpen.
func ChanOpenAck(r Reader, msg MsgChanOpenAck) (*Output[ChannelResult], error) {
	out := NewOutput[ChannelResult]()

	end, ok := r.ChannelEnd(msg.PortId, msg.ChannelId)
	if !ok {
		return nil, errChannelNotFound(msg.PortId, msg.ChannelId)
	}
	if end.State != channel.Init && end.State != channel.TryOpen {
		return nil, errInvalidChannelState(msg.PortId, msg.ChannelId, "expected Init or TryOpen")
	}
	conn, err := connectionFor(r, end)
	if err != nil {
		return nil, err
	}
	if !r.AuthenticatedCapability(msg.PortId) {
		return nil, errMissingCapability(msg.PortId)
	}

	expected := channel.End{
		State:          channel.TryOpen,
		Ordering:       end.Ordering,
		Counterparty:   channel.Counterparty{PortId: msg.PortId, ChannelId: msg.ChannelId},
		ConnectionHops: end.ConnectionHops,
		Version:        msg.CounterpartyVersion,
	}
	if err := r.VerifyChannelState(conn, msg.Proofs, end.Counterparty.PortId, msg.CounterpartyChannelId, expected); err != nil {
		return nil, err
	}

	end.State = channel.Open
	end.Counterparty.ChannelId = msg.CounterpartyChannelId
	end.Version = msg.CounterpartyVersion

	out.SetResult(ChannelResult{PortId: msg.PortId, ChannelId: msg.ChannelId, End: end})
	out.EmitEvent(events.Event{Kind: events.KindChanOpenAck, Channel: &events.ChannelAttributes{
		PortId:                msg.PortId,
		ChannelId:             msg.ChannelId,
		ConnectionId:          end.Connection(),
		CounterpartyPortId:    end.Counterparty.PortId,
		CounterpartyChannelId: msg.CounterpartyChannelId,
	}})
	out.Log("success: chan open ack")
	return out, nil
}

// ChanOpenConfirm completes the responder's half: TryOpen -> Open.
func ChanOpenConfirm(r Reader, msg MsgChanOpenConfirm) (*Output[ChannelResult], error) {
	out := NewOutput[ChannelResult]()

	end, ok := r.ChannelEnd(msg.PortId, msg.ChannelId)
	if !ok {
		return nil, errChannelNotFound(msg.PortId, msg.ChannelId)
	}
	if end.State != channel.TryOpen {
		return nil, errInvalidChannelState(msg.PortId, msg.ChannelId, "expected TryOpen")
	}
	conn, err := connectionFor(r, end)
	if err != nil {
		return nil, err
	}
	if !r.AuthenticatedCapability(msg.PortId) {
		return nil, errMissingCapability(msg.PortId)
	}

	expected := channel.End{
		State:          channel.Open,
		Ordering:       end.Ordering,
		Counterparty:   channel.Counterparty{PortId: msg.PortId, ChannelId: msg.ChannelId},
		ConnectionHops: end.ConnectionHops,
		Version:        end.Version,
	}
	if err := r.VerifyChannelState(conn, msg.Proofs, end.Counterparty.PortId, end.Counterparty.ChannelId, expected); err != nil {
		return nil, err
	}

	end.State = channel.Open

	out.SetResult(ChannelResult{PortId: msg.PortId, ChannelId: msg.ChannelId, End: end})
	out.EmitEvent(events.Event{Kind: events.KindChanOpenConfirm, Channel: &events.ChannelAttributes{
		PortId:                msg.PortId,
		ChannelId:             msg.ChannelId,
		ConnectionId:          end.Connection(),
		CounterpartyPortId:    end.Counterparty.PortId,
		CounterpartyChannelId: end.Counterparty.ChannelId,
	}})
	out.Log("success: chan open confirm")
	return out, nil
}

// ChanCloseInit closes a channel from this chain. Closed is terminal
// (spec.md §3).
func ChanCloseInit(r Reader, msg MsgChanCloseInit) (*Output[ChannelResult], error) {
	out := NewOutput[ChannelResult]()

	end, ok := r.ChannelEnd(msg.PortId, msg.ChannelId)
	if !ok {
		return nil, errChannelNotFound(msg.PortId, msg.ChannelId)
	}
	if end.State == channel.Closed {
		return nil, errChannelClosed(msg.PortId, msg.ChannelId)
	}
	if !r.AuthenticatedCapability(msg.PortId) {
		return nil, errMissingCapability(msg.PortId)
	}

	end.State = channel.Closed

	out.SetResult(ChannelResult{PortId: msg.PortId, ChannelId: msg.ChannelId, End: end})
	out.EmitEvent(events.Event{Kind: events.KindChanCloseInit, Channel: &events.ChannelAttributes{
		PortId:                msg.PortId,
		ChannelId:             msg.ChannelId,
		ConnectionId:          end.Connection(),
		CounterpartyPortId:    end.Counterparty.PortId,
		CounterpartyChannelId: end.Counterparty.ChannelId,
	}})
	out.Log("success: chan close init")
	return out, nil
}

// ChanCloseConfirm acknowledges a counterparty's ChanCloseInit, proven by
// the counterparty channel end's Closed state.
func ChanCloseConfirm(r Reader, msg MsgChanCloseConfirm) (*Output[ChannelResult], error) {
	out := NewOutput[ChannelResult]()

	end, ok := r.ChannelEnd(msg.PortId, msg.ChannelId)
	if !ok {
		return nil, errChannelNotFound(msg.PortId, msg.ChannelId)
	}
	if end.State == channel.Closed {
		return nil, errChannelClosed(msg.PortId, msg.ChannelId)
	}
	conn, err := connectionFor(r, end)
	if err != nil {
		return nil, err
	}
	if !r.AuthenticatedCapability(msg.PortId) {
		return nil, errMissingCapability(msg.PortId)
	}

	expected := channel.End{
		State:          channel.Closed,
		Ordering:       end.Ordering,
		Counterparty:   channel.Counterparty{PortId: msg.PortId, ChannelId: msg.ChannelId},
		ConnectionHops: end.ConnectionHops,
		Version:        end.Version,
	}
	if err := r.VerifyChannelState(conn, msg.Proofs, end.Counterparty.PortId, end.Counterparty.ChannelId, expected); err != nil {
		return nil, err
	}

	end.State = channel.Closed

	out.SetResult(ChannelResult{PortId: msg.PortId, ChannelId: msg.ChannelId, End: end})
	out.EmitEvent(events.Event{Kind: events.KindChanCloseConfirm, Channel: &events.ChannelAttributes{
		PortId:                msg.PortId,
		ChannelId:             msg.ChannelId,
		ConnectionId:          end.Connection(),
		CounterpartyPortId:    end.Counterparty.PortId,
		CounterpartyChannelId: end.Counterparty.ChannelId,
	}})
	out.Log("success: chan close confirm")
	return out, nil
}
