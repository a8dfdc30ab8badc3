// Package connection implements the connection end value type
// (spec.md §3 component B, connection half).
package connection

import (
	errorsmod "cosmossdk.io/errors"

	"github.com/tokenize-x/ibc-relayer/ibc/ids"
)

// State is the connection handshake state.
type State int

const (
	// Uninitialized marks a connection end that has not been created.
	Uninitialized State = iota
	// Init is the state after ConnOpenInit.
	Init
	// TryOpen is the state after ConnOpenTry.
	TryOpen
	// Open is the terminal, usable state.
	Open
)

// String renders the state name.
func (s State) String() string {
	switch s {
	case Init:
		return "STATE_INIT"
	case TryOpen:
		return "STATE_TRYOPEN"
	case Open:
		return "STATE_OPEN"
	default:
		return "STATE_UNINITIALIZED_UNSPECIFIED"
	}
}

// MerklePrefix is the counterparty's commitment store prefix, used when
// constructing Merkle proof paths.
type MerklePrefix struct {
	KeyPrefix []byte
}

// Counterparty identifies the connection end's peer on the other chain.
type Counterparty struct {
	ClientId     ids.ClientId
	ConnectionId ids.ConnectionId // empty until the counterparty has opened its end
	Prefix       MerklePrefix
}

// End is a connection end (spec.md §3).
type End struct {
	State          State
	ClientId       ids.ClientId
	Counterparty   Counterparty
	Versions       []string
	DelayPeriodSec uint64
}

// ErrInvalidConnectionEnd is returned by Validate.
var ErrInvalidConnectionEnd = errorsmod.Register("connection", 1, "invalid connection end")

// Validate enforces spec.md §3's invariant: once Open, the counterparty's
// connection id must be set.
func (e End) Validate() error {
	if err := e.ClientId.Validate(); err != nil {
		return errorsmod.Wrap(ErrInvalidConnectionEnd, err.Error())
	}
	if e.State == Open && e.Counterparty.ConnectionId == "" {
		return errorsmod.Wrap(ErrInvalidConnectionEnd, "open connection must have counterparty connection id")
	}
	if len(e.Versions) == 0 {
		return errorsmod.Wrap(ErrInvalidConnectionEnd, "connection end must carry at least one version")
	}
	return nil
}
