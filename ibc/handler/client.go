package handler

import (
	"github.com/tokenize-x/ibc-relayer/ibc/events"
)

// CreateClient creates a new client from its initial client and
// consensus state. The core treats client and consensus states
// polymorphically via the AnyClientState/AnyConsensusState tagged union
// (spec.md §3, §9 "Polymorphism over clients"); this handler never
// inspects the concrete variant.
func CreateClient(r Reader, msg MsgCreateClient) (*Output[ClientResult], error) {
	out := NewOutput[ClientResult]()

	if _, ok := r.ClientState(msg.ClientId); ok {
		return nil, errClientAlreadyExists(msg.ClientId)
	}

	out.SetResult(ClientResult{
		ClientId:       msg.ClientId,
		ClientState:    msg.ClientState,
		ConsensusState: msg.ConsensusState,
		Height:         msg.ClientState.LatestHeight(),
	})
	out.EmitEvent(events.Event{Kind: events.KindCreateClient, Height: msg.ClientState.LatestHeight()})
	out.Log("success: create client")
	return out, nil
}

// UpdateClient advances a client's latest trusted height with a new
// consensus state, rejecting any update to a frozen client.
func UpdateClient(r Reader, msg MsgUpdateClient) (*Output[ClientResult], error) {
	out := NewOutput[ClientResult]()

	existing, ok := r.ClientState(msg.ClientId)
	if !ok {
		return nil, errClientNotFound(msg.ClientId)
	}
	if existing.IsFrozen() {
		return nil, errFrozenClient(msg.ClientId)
	}

	newHeight := msg.HeaderClient.LatestHeight()
	if newHeight.LTE(existing.LatestHeight()) {
		return nil, errClientUpdateNotAdvancing(msg.ClientId, newHeight, existing.LatestHeight())
	}

	out.SetResult(ClientResult{
		ClientId:       msg.ClientId,
		ClientState:    msg.HeaderClient,
		ConsensusState: msg.Header,
		Height:         newHeight,
	})
	out.EmitEvent(events.Event{Kind: events.KindUpdateClient, Height: newHeight})
	out.Log("success: update client")
	return out, nil
}

// UpgradeClient replaces a client's state entirely following a
// counterparty chain upgrade (e.g. a chain id or unbonding period
// change), unfreezing it in the process.
func UpgradeClient(r Reader, msg MsgCreateClient) (*Output[ClientResult], error) {
	out := NewOutput[ClientResult]()

	if _, ok := r.ClientState(msg.ClientId); !ok {
		return nil, errClientNotFound(msg.ClientId)
	}

	out.SetResult(ClientResult{
		ClientId:       msg.ClientId,
		ClientState:    msg.ClientState,
		ConsensusState: msg.ConsensusState,
		Height:         msg.ClientState.LatestHeight(),
	})
	out.EmitEvent(events.Event{Kind: events.KindUpgradeClient, Height: msg.ClientState.LatestHeight()})
	out.Log("success: upgrade client")
	return out, nil
}

// MsgSubmitMisbehaviour names the client to freeze for misbehaviour. It
// carries only the client id: no conflicting headers or other evidence are
// part of the message.
type MsgSubmitMisbehaviour struct {
	ClientId ClientIdentifier
}

// ClientIdentifier avoids importing ids solely for this message's field;
// it is defined as an alias in message.go.

// SubmitMisbehaviour freezes a client upon proof of conflicting headers
// at the same height (spec.md §3: "may become frozen (terminal to new
// updates until upgraded)"). The core does not verify the conflicting
// headers itself (that is light client cryptography, out of scope per
// spec.md §1); it only performs the resulting state transition once the
// caller has already established the conflict is genuine.
func SubmitMisbehaviour(r Reader, msg MsgSubmitMisbehaviour) (*Output[ClientResult], error) {
	out := NewOutput[ClientResult]()

	existing, ok := r.ClientState(msg.ClientId)
	if !ok {
		return nil, errClientNotFound(msg.ClientId)
	}
	if existing.IsFrozen() {
		return nil, errFrozenClient(msg.ClientId)
	}

	frozen := existing.Freeze(existing.LatestHeight())
	out.SetResult(ClientResult{ClientId: msg.ClientId, ClientState: frozen})
	out.EmitEvent(events.Event{Kind: events.KindClientMisbehaviour})
	out.Log("success: submit misbehaviour")
	return out, nil
}
