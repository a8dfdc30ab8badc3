// Package events implements the canonical IBC event taxonomy and the
// decoder from raw ledger (type_str, [key -> value]) attribute maps into
// typed events (spec.md §4.C).
package events

import (
	"fmt"

	"github.com/tokenize-x/ibc-relayer/ibc/channel"
	"github.com/tokenize-x/ibc-relayer/ibc/height"
	"github.com/tokenize-x/ibc-relayer/ibc/ids"
)

// Kind discriminates the typed event payload.
type Kind int

const (
	// KindNewBlock signals a new block was observed; carries only a height.
	KindNewBlock Kind = iota
	KindCreateClient
	KindUpdateClient
	KindUpgradeClient
	KindClientMisbehaviour
	KindConnOpenInit
	KindConnOpenTry
	KindConnOpenAck
	KindConnOpenConfirm
	KindChanOpenInit
	KindChanOpenTry
	KindChanOpenAck
	KindChanOpenConfirm
	KindChanCloseInit
	KindChanCloseConfirm
	KindSendPacket
	KindReceivePacket
	KindWriteAcknowledgement
	KindAcknowledgePacket
	KindTimeoutPacket
	KindTimeoutOnClosePacket
	// KindEmpty represents a chain response with no IBC relevance.
	KindEmpty
	// KindChainError represents a chain-reported execution error.
	KindChainError
)

// String renders a human-readable event kind name, mirroring the original
// implementation's Display impls (spec.md §4.C).
func (k Kind) String() string {
	switch k {
	case KindNewBlock:
		return "NewBlock"
	case KindCreateClient:
		return "CreateClient"
	case KindUpdateClient:
		return "UpdateClient"
	case KindUpgradeClient:
		return "UpgradeClient"
	case KindClientMisbehaviour:
		return "ClientMisbehaviour"
	case KindConnOpenInit:
		return "OpenInitConnection"
	case KindConnOpenTry:
		return "OpenTryConnection"
	case KindConnOpenAck:
		return "OpenAckConnection"
	case KindConnOpenConfirm:
		return "OpenConfirmConnection"
	case KindChanOpenInit:
		return "OpenInitChannel"
	case KindChanOpenTry:
		return "OpenTryChannel"
	case KindChanOpenAck:
		return "OpenAckChannel"
	case KindChanOpenConfirm:
		return "OpenConfirmChannel"
	case KindChanCloseInit:
		return "CloseInitChannel"
	case KindChanCloseConfirm:
		return "CloseConfirmChannel"
	case KindSendPacket:
		return "SendPacket"
	case KindReceivePacket:
		return "ReceivePacket"
	case KindWriteAcknowledgement:
		return "WriteAcknowledgement"
	case KindAcknowledgePacket:
		return "AcknowledgePacket"
	case KindTimeoutPacket:
		return "TimeoutPacket"
	case KindTimeoutOnClosePacket:
		return "TimeoutOnClosePacket"
	case KindEmpty:
		return "Empty"
	case KindChainError:
		return "ChainError"
	default:
		return "Unknown"
	}
}

// ConnectionAttributes is the attribute set shared by all four connection
// handshake event kinds.
type ConnectionAttributes struct {
	ConnectionId            ids.ConnectionId
	ClientId                ids.ClientId
	CounterpartyConnectionId ids.ConnectionId
	CounterpartyClientId    ids.ClientId
}

// ChannelAttributes is the attribute set shared by all six channel
// handshake event kinds.
type ChannelAttributes struct {
	PortId                  ids.PortId
	ChannelId               ids.ChannelId
	ConnectionId            ids.ConnectionId
	CounterpartyPortId      ids.PortId
	CounterpartyChannelId   ids.ChannelId
}

// Event is the typed IBC event (spec.md §4.C). Exactly the fields relevant
// to Kind are populated; Height is always set by the decoder from the
// enclosing block context, never by the raw attributes themselves.
type Event struct {
	Kind   Kind
	Height height.Height

	Connection *ConnectionAttributes
	Channel    *ChannelAttributes
	Packet     *channel.Packet
	Ack        []byte // only set for KindWriteAcknowledgement

	Message string // for KindEmpty / KindChainError
}

// String renders a one-line description, mirroring the original
// implementation's per-variant Display impls.
func (e Event) String() string {
	switch e.Kind {
	case KindNewBlock:
		return fmt.Sprintf("NewBlock(%s)", e.Height)
	case KindEmpty:
		return fmt.Sprintf("EmptyEv(%s)", e.Message)
	case KindChainError:
		return fmt.Sprintf("ChainErrorEv(%s)", e.Message)
	case KindSendPacket, KindReceivePacket, KindWriteAcknowledgement,
		KindAcknowledgePacket, KindTimeoutPacket, KindTimeoutOnClosePacket:
		if e.Packet != nil {
			return fmt.Sprintf("%sEv(h:%s, seq:%d, %s/%s -> %s/%s)", e.Kind, e.Height,
				e.Packet.Sequence, e.Packet.SourcePort, e.Packet.SourceChannel,
				e.Packet.DestinationPort, e.Packet.DestinationChannel)
		}
		return fmt.Sprintf("%sEv(h:%s)", e.Kind, e.Height)
	default:
		return fmt.Sprintf("%sEv(h:%s)", e.Kind, e.Height)
	}
}

// NewBlock builds a control event signalling a new block was observed.
func NewBlock(h height.Height) Event {
	return Event{Kind: KindNewBlock, Height: h}
}

// Empty builds a control event for a chain response with no IBC relevance.
func Empty(h height.Height, msg string) Event {
	return Event{Kind: KindEmpty, Height: h, Message: msg}
}

// ChainError builds a control event for a chain-reported execution error.
func ChainError(h height.Height, msg string) Event {
	return Event{Kind: KindChainError, Height: h, Message: msg}
}
