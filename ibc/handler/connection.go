package handler

import (
	"github.com/tokenize-x/ibc-relayer/ibc/connection"
	"github.com/tokenize-x/ibc-relayer/ibc/events"
)

// ConnOpenInit starts a connection handshake from this chain: the client
// must exist; the resulting end is Init with no counterparty connection
// id yet (spec.md §3 "once Open, counterparty.connection_id is set" —
// implicitly not required before then).
func ConnOpenInit(r Reader, msg MsgConnOpenInit) (*Output[ConnectionResult], error) {
	out := NewOutput[ConnectionResult]()

	if _, ok := r.ClientState(msg.ClientId); !ok {
		return nil, errClientNotFound(msg.ClientId)
	}

	end := connection.End{
		State:          connection.Init,
		ClientId:       msg.ClientId,
		Counterparty:   msg.Counterparty,
		Versions:       msg.Versions,
		DelayPeriodSec: msg.DelayPeriodSec,
	}
	if err := end.Validate(); err != nil {
		return nil, errInvalidConnectionState("", err.Error())
	}

	out.SetResult(ConnectionResult{End: end})
	out.EmitEvent(events.Event{Kind: events.KindConnOpenInit, Connection: &events.ConnectionAttributes{
		ClientId:             msg.ClientId,
		CounterpartyClientId: msg.Counterparty.ClientId,
	}})
	out.Log("success: conn open init")
	return out, nil
}

// ConnOpenTry responds to a counterparty's ConnOpenInit, verifying the
// counterparty's connection end and client state are as claimed.
func ConnOpenTry(r Reader, msg MsgConnOpenTry) (*Output[ConnectionResult], error) {
	out := NewOutput[ConnectionResult]()

	clientState, ok := r.ClientState(msg.ClientId)
	if !ok {
		return nil, errClientNotFound(msg.ClientId)
	}
	if clientState.IsFrozen() {
		return nil, errFrozenClient(msg.ClientId)
	}

	expectedCounterparty := connection.End{
		State:    connection.Init,
		ClientId: msg.Counterparty.ClientId,
		Counterparty: connection.Counterparty{
			ClientId: msg.ClientId,
		},
		Versions: msg.CounterpartyVersions,
	}
	tentative := connection.End{
		State:          connection.TryOpen,
		ClientId:       msg.ClientId,
		Counterparty:   msg.Counterparty,
		Versions:       msg.Versions,
		DelayPeriodSec: msg.DelayPeriodSec,
	}
	if err := r.VerifyConnectionState(tentative, msg.Proofs, msg.Counterparty.ConnectionId, expectedCounterparty); err != nil {
		return nil, err
	}
	if err := r.VerifyClientFullState(tentative, msg.Proofs, msg.Counterparty.ClientId, clientState); err != nil {
		return nil, err
	}

	out.SetResult(ConnectionResult{End: tentative})
	out.EmitEvent(events.Event{Kind: events.KindConnOpenTry, Connection: &events.ConnectionAttributes{
		ClientId:                 msg.ClientId,
		CounterpartyClientId:     msg.Counterparty.ClientId,
		CounterpartyConnectionId: msg.Counterparty.ConnectionId,
	}})
	out.Log("success: conn open try")
	return out, nil
}

// ConnOpenAck completes the initiator's half: the local end transitions
// to Open from either Init or TryOpen once the counterparty's TryOpen end
// is proven.
func ConnOpenAck(r Reader, msg MsgConnOpenAck) (*Output[ConnectionResult], error) {
	out := NewOutput[ConnectionResult]()

	end, ok := r.ConnectionEnd(msg.ConnectionId)
	if !ok {
		return nil, errMissingConnection(msg.ConnectionId)
	}
	if end.State != connection.Init && end.State != connection.TryOpen {
		return nil, errInvalidConnectionState(msg.ConnectionId, "expected Init or TryOpen")
	}

	clientState, ok := r.ClientState(end.ClientId)
	if !ok {
		return nil, errClientNotFound(end.ClientId)
	}

	expectedCounterparty := connection.End{
		State:    connection.TryOpen,
		ClientId: end.Counterparty.ClientId,
		Counterparty: connection.Counterparty{
			ClientId:     end.ClientId,
			ConnectionId: msg.ConnectionId,
		},
		Versions: []string{msg.Version},
	}
	if err := r.VerifyConnectionState(end, msg.Proofs, msg.CounterpartyConnectionId, expectedCounterparty); err != nil {
		return nil, err
	}
	if err := r.VerifyClientFullState(end, msg.Proofs, end.Counterparty.ClientId, clientState); err != nil {
		return nil, err
	}

	end.State = connection.Open
	end.Counterparty.ConnectionId = msg.CounterpartyConnectionId
	end.Versions = []string{msg.Version}

	out.SetResult(ConnectionResult{ConnectionId: msg.ConnectionId, End: end})
	out.EmitEvent(events.Event{Kind: events.KindConnOpenAck, Connection: &events.ConnectionAttributes{
		ConnectionId:             msg.ConnectionId,
		ClientId:                 end.ClientId,
		CounterpartyConnectionId: msg.CounterpartyConnectionId,
		CounterpartyClientId:     end.Counterparty.ClientId,
	}})
	out.Log("success: conn open ack")
	return out, nil
}

// ConnOpenConfirm completes the responder's half: TryOpen -> Open.
func ConnOpenConfirm(r Reader, msg MsgConnOpenConfirm) (*Output[ConnectionResult], error) {
	out := NewOutput[ConnectionResult]()

	end, ok := r.ConnectionEnd(msg.ConnectionId)
	if !ok {
		return nil, errMissingConnection(msg.ConnectionId)
	}
	if end.State != connection.TryOpen {
		return nil, errInvalidConnectionState(msg.ConnectionId, "expected TryOpen")
	}
	if end.Counterparty.ConnectionId == "" {
		return nil, errUninitializedConnection(msg.ConnectionId)
	}

	expectedCounterparty := connection.End{
		State:    connection.Open,
		ClientId: end.Counterparty.ClientId,
		Counterparty: connection.Counterparty{
			ClientId:     end.ClientId,
			ConnectionId: msg.ConnectionId,
		},
		Versions: end.Versions,
	}
	if err := r.VerifyConnectionState(end, msg.Proofs, end.Counterparty.ConnectionId, expectedCounterparty); err != nil {
		return nil, err
	}

	end.State = connection.Open

	out.SetResult(ConnectionResult{ConnectionId: msg.ConnectionId, End: end})
	out.EmitEvent(events.Event{Kind: events.KindConnOpenConfirm, Connection: &events.ConnectionAttributes{
		ConnectionId:             msg.ConnectionId,
		ClientId:                 end.ClientId,
		CounterpartyConnectionId: end.Counterparty.ConnectionId,
		CounterpartyClientId:     end.Counterparty.ClientId,
	}})
	out.Log("success: conn open confirm")
	return out, nil
}
