// Package client implements the polymorphic client state / consensus state
// capability set (spec.md §3 component B, client half) as a tagged union
// over concrete light client variants, the Go replacement for the trait
// object the source implementation used (DESIGN NOTES §9).
package client

import (
	"time"

	errorsmod "cosmossdk.io/errors"

	"github.com/tokenize-x/ibc-relayer/ibc/height"
	"github.com/tokenize-x/ibc-relayer/ibc/ids"
)

// Type tags which concrete variant an AnyClientState/AnyConsensusState
// envelope carries.
type Type int

const (
	// TypeUnspecified marks an empty/unset envelope.
	TypeUnspecified Type = iota
	// TypeTendermint is the production light client variant.
	TypeTendermint
	// TypeMock is a test-only variant.
	TypeMock
)

// String renders the client type the way ibc-go's ClientType() does.
func (t Type) String() string {
	switch t {
	case TypeTendermint:
		return "07-tendermint"
	case TypeMock:
		return "00-mock"
	default:
		return "unspecified"
	}
}

// Well-known type URLs for the polymorphic envelope (spec.md §6).
const (
	TendermintClientStateTypeURL    = "/ibc.lightclients.tendermint.v1.ClientState"
	MockClientStateTypeURL          = "/ibc.mock.ClientState"
	TendermintConsensusStateTypeURL = "/ibc.lightclients.tendermint.v1.ConsensusState"
	MockConsensusStateTypeURL       = "/ibc.mock.ConsensusState"
)

// Errors returned while decoding the polymorphic envelope (spec.md §6).
var (
	ErrEmptyClientState      = errorsmod.Register("client", 1, "empty client state type url")
	ErrUnknownClientStateType = errorsmod.Register("client", 2, "unknown client state type url")
	ErrInvalidRawClientState = errorsmod.Register("client", 3, "invalid raw client state bytes")
)

// TendermintClientState is the concrete state carried by the production
// light client variant. Only the fields the relayer core needs to reason
// about are modeled; the cryptographic verification itself is out of scope
// (spec.md §1).
type TendermintClientState struct {
	ChainIdValue     ids.ChainId
	TrustingPeriod   time.Duration
	UnbondingPeriod  time.Duration
	MaxClockDrift    time.Duration
	LatestHeightVal  height.Height
	FrozenHeightVal  height.Height // zero means not frozen
}

// MockClientState is the test-only variant (spec.md §3, §6).
type MockClientState struct {
	ChainIdValue    ids.ChainId
	LatestHeightVal height.Height
	Frozen          bool
}

// AnyClientState is the tagged union dispatched on Type. Exactly one of
// Tendermint/Mock is populated, matching the Type field.
type AnyClientState struct {
	Type       Type
	Tendermint *TendermintClientState
	Mock       *MockClientState
}

// ChainId returns the chain this client tracks.
func (a AnyClientState) ChainId() ids.ChainId {
	switch a.Type {
	case TypeTendermint:
		return a.Tendermint.ChainIdValue
	case TypeMock:
		return a.Mock.ChainIdValue
	default:
		return ""
	}
}

// ClientType returns the light client variant.
func (a AnyClientState) ClientType() Type {
	return a.Type
}

// LatestHeight returns the highest height this client has a consensus
// state for.
func (a AnyClientState) LatestHeight() height.Height {
	switch a.Type {
	case TypeTendermint:
		return a.Tendermint.LatestHeightVal
	case TypeMock:
		return a.Mock.LatestHeightVal
	default:
		return height.Zero
	}
}

// IsFrozen reports whether the client is frozen and must be upgraded
// before it accepts further updates.
func (a AnyClientState) IsFrozen() bool {
	switch a.Type {
	case TypeTendermint:
		return !a.Tendermint.FrozenHeightVal.IsZero()
	case TypeMock:
		return a.Mock.Frozen
	default:
		return false
	}
}

// Freeze returns a copy of a, marked frozen at h (spec.md §3: "may become
// frozen, terminal to new updates until upgraded"). It does not mutate a.
func (a AnyClientState) Freeze(h height.Height) AnyClientState {
	switch a.Type {
	case TypeTendermint:
		frozen := *a.Tendermint
		frozen.FrozenHeightVal = h
		a.Tendermint = &frozen
	case TypeMock:
		frozen := *a.Mock
		frozen.Frozen = true
		a.Mock = &frozen
	}
	return a
}

// Envelope is the wire form of AnyClientState: a type URL plus opaque
// bytes, matching cosmos-sdk's codectypes.Any (spec.md §6).
type Envelope struct {
	TypeURL string
	Value   []byte
}

// DecodeClientState turns a wire envelope into an AnyClientState. An empty
// type URL is ErrEmptyClientState; an unrecognised one is
// ErrUnknownClientStateType (spec.md §6).
func DecodeClientState(env Envelope, unmarshal func([]byte, any) error) (AnyClientState, error) {
	switch env.TypeURL {
	case "":
		return AnyClientState{}, ErrEmptyClientState
	case TendermintClientStateTypeURL:
		var s TendermintClientState
		if err := unmarshal(env.Value, &s); err != nil {
			return AnyClientState{}, errorsmod.Wrap(ErrInvalidRawClientState, err.Error())
		}
		return AnyClientState{Type: TypeTendermint, Tendermint: &s}, nil
	case MockClientStateTypeURL:
		var s MockClientState
		if err := unmarshal(env.Value, &s); err != nil {
			return AnyClientState{}, errorsmod.Wrap(ErrInvalidRawClientState, err.Error())
		}
		return AnyClientState{Type: TypeMock, Mock: &s}, nil
	default:
		return AnyClientState{}, errorsmod.Wrapf(ErrUnknownClientStateType, "%q", env.TypeURL)
	}
}

// EncodeClientState re-wraps an AnyClientState into its wire envelope.
func EncodeClientState(a AnyClientState, marshal func(any) ([]byte, error)) (Envelope, error) {
	switch a.Type {
	case TypeTendermint:
		bz, err := marshal(a.Tendermint)
		if err != nil {
			return Envelope{}, err
		}
		return Envelope{TypeURL: TendermintClientStateTypeURL, Value: bz}, nil
	case TypeMock:
		bz, err := marshal(a.Mock)
		if err != nil {
			return Envelope{}, err
		}
		return Envelope{TypeURL: MockClientStateTypeURL, Value: bz}, nil
	default:
		return Envelope{}, ErrEmptyClientState
	}
}

// TendermintConsensusState is a single (root, timestamp) snapshot for the
// production variant.
type TendermintConsensusState struct {
	TimestampVal time.Time
	RootVal      []byte
}

// MockConsensusState is the test-only variant.
type MockConsensusState struct {
	TimestampVal time.Time
	RootVal      []byte
}

// AnyConsensusState is the tagged union over consensus state variants.
type AnyConsensusState struct {
	Type       Type
	Tendermint *TendermintConsensusState
	Mock       *MockConsensusState
}

// Timestamp returns the consensus timestamp, compared against
// packet.timeout_timestamp during timeout processing (spec.md §4.D).
func (a AnyConsensusState) Timestamp() time.Time {
	switch a.Type {
	case TypeTendermint:
		return a.Tendermint.TimestampVal
	case TypeMock:
		return a.Mock.TimestampVal
	default:
		return time.Time{}
	}
}

// Root returns the commitment root used for Merkle proof verification.
func (a AnyConsensusState) Root() []byte {
	switch a.Type {
	case TypeTendermint:
		return a.Tendermint.RootVal
	case TypeMock:
		return a.Mock.RootVal
	default:
		return nil
	}
}

// DecodeConsensusState turns a wire envelope into an AnyConsensusState,
// mirroring DecodeClientState for the consensus-state half of the
// polymorphic envelope (spec.md §6).
func DecodeConsensusState(env Envelope, unmarshal func([]byte, any) error) (AnyConsensusState, error) {
	switch env.TypeURL {
	case "":
		return AnyConsensusState{}, ErrEmptyClientState
	case TendermintConsensusStateTypeURL:
		var s TendermintConsensusState
		if err := unmarshal(env.Value, &s); err != nil {
			return AnyConsensusState{}, errorsmod.Wrap(ErrInvalidRawClientState, err.Error())
		}
		return AnyConsensusState{Type: TypeTendermint, Tendermint: &s}, nil
	case MockConsensusStateTypeURL:
		var s MockConsensusState
		if err := unmarshal(env.Value, &s); err != nil {
			return AnyConsensusState{}, errorsmod.Wrap(ErrInvalidRawClientState, err.Error())
		}
		return AnyConsensusState{Type: TypeMock, Mock: &s}, nil
	default:
		return AnyConsensusState{}, errorsmod.Wrapf(ErrUnknownClientStateType, "%q", env.TypeURL)
	}
}

// EncodeConsensusState re-wraps an AnyConsensusState into its wire envelope.
func EncodeConsensusState(a AnyConsensusState, marshal func(any) ([]byte, error)) (Envelope, error) {
	switch a.Type {
	case TypeTendermint:
		bz, err := marshal(a.Tendermint)
		if err != nil {
			return Envelope{}, err
		}
		return Envelope{TypeURL: TendermintConsensusStateTypeURL, Value: bz}, nil
	case TypeMock:
		bz, err := marshal(a.Mock)
		if err != nil {
			return Envelope{}, err
		}
		return Envelope{TypeURL: MockConsensusStateTypeURL, Value: bz}, nil
	default:
		return Envelope{}, ErrEmptyClientState
	}
}

// NewMockConsensusState builds a Mock consensus state, for tests.
func NewMockConsensusState(ts time.Time, root []byte) AnyConsensusState {
	return AnyConsensusState{Type: TypeMock, Mock: &MockConsensusState{TimestampVal: ts, RootVal: root}}
}

// NewMockClientState builds a Mock client state, for tests.
func NewMockClientState(chainID ids.ChainId, latest height.Height) AnyClientState {
	return AnyClientState{Type: TypeMock, Mock: &MockClientState{ChainIdValue: chainID, LatestHeightVal: latest}}
}
