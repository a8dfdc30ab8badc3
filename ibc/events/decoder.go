package events

import (
	"strconv"

	errorsmod "cosmossdk.io/errors"

	"github.com/tokenize-x/ibc-relayer/ibc/channel"
	"github.com/tokenize-x/ibc-relayer/ibc/height"
	"github.com/tokenize-x/ibc-relayer/ibc/ids"
)

// Raw event type strings recognised by the decoder (spec.md §6).
const (
	typeConnOpenInit     = "connection_open_init"
	typeConnOpenTry      = "connection_open_try"
	typeConnOpenAck      = "connection_open_ack"
	typeConnOpenConfirm  = "connection_open_confirm"
	typeChanOpenInit     = "channel_open_init"
	typeChanOpenTry      = "channel_open_try"
	typeChanOpenAck      = "channel_open_ack"
	typeChanOpenConfirm  = "channel_open_confirm"
	typeChanCloseInit    = "channel_close_init"
	typeChanCloseConfirm = "channel_close_confirm"
	typeSendPacket       = "send_packet"
	typeWriteAck         = "write_acknowledgement"
	typeAckPacket        = "acknowledge_packet"
	typeTimeoutPacket    = "timeout_packet"
)

// Raw attribute keys recognised by the decoder (spec.md §6).
const (
	attrConnectionId            = "connection_id"
	attrClientId                = "client_id"
	attrCounterpartyConnectionId = "counterparty_connection_id"
	attrCounterpartyClientId    = "counterparty_client_id"

	attrChannelId             = "channel_id"
	attrPortId                = "port_id"
	attrCounterpartyChannelId = "counterparty_channel_id"
	attrCounterpartyPortId    = "counterparty_port_id"

	attrPacketSequence        = "packet_sequence"
	attrPacketData            = "packet_data"
	attrPacketAck             = "packet_ack"
	attrPacketSrcPort         = "packet_src_port"
	attrPacketSrcChannel      = "packet_src_channel"
	attrPacketDstPort         = "packet_dst_port"
	attrPacketDstChannel      = "packet_dst_channel"
	attrPacketTimeoutHeight   = "packet_timeout_height"
	attrPacketTimeoutTimestamp = "packet_timeout_timestamp"
)

// RawEvent is the ledger wire shape from spec.md §6: a type string plus an
// ordered list of key/value attribute pairs (ordered, because a ledger may
// repeat a key across several logical sub-events packed into one raw
// event; last-value-wins matches the source's attribute-map semantics).
type RawEvent struct {
	Type       string
	Attributes []Attribute
}

// Attribute is one (key, value) pair of a RawEvent.
type Attribute struct {
	Key   string
	Value string
}

func (e RawEvent) attrMap() map[string]string {
	m := make(map[string]string, len(e.Attributes))
	for _, a := range e.Attributes {
		m[a.Key] = a.Value
	}
	return m
}

// ErrMissingAttribute is returned when a recognised event type is missing
// one of its mandatory attributes. Per spec.md §4.C / §9 DESIGN NOTES, this
// must be a hard error, never a silent default.
var ErrMissingAttribute = errorsmod.Register("events", 1, "missing mandatory event attribute")

// ErrInvalidAttribute is returned when a mandatory attribute is present
// but fails to parse into its typed representation (e.g. a non-numeric
// sequence number).
var ErrInvalidAttribute = errorsmod.Register("events", 2, "invalid event attribute")

func required(m map[string]string, eventType, key string) (string, error) {
	v, ok := m[key]
	if !ok {
		return "", errorsmod.Wrapf(ErrMissingAttribute, "%s: %s", eventType, key)
	}
	return v, nil
}

func optional(m map[string]string, key string) ids.ChannelId {
	if v, ok := m[key]; ok {
		return ids.ChannelId(v)
	}
	return ""
}

// Decode turns a RawEvent into a typed Event. Unrecognised event types
// yield (Event{}, false, nil): decoding is total, not an error, per
// spec.md §4.C. Recognised types with a missing mandatory attribute yield
// a non-nil error. The returned event's Height is always set to the
// supplied blockHeight, never parsed from attributes, matching the
// decoder contract in spec.md §4.C ("the decoder assigns the height
// carried by the enclosing block").
func Decode(blockHeight height.Height, raw RawEvent) (Event, bool, error) {
	m := raw.attrMap()

	switch raw.Type {
	case typeConnOpenInit, typeConnOpenTry, typeConnOpenAck, typeConnOpenConfirm:
		attrs, err := decodeConnectionAttributes(raw.Type, m)
		if err != nil {
			return Event{}, false, err
		}
		return Event{Kind: connKind(raw.Type), Height: blockHeight, Connection: attrs}, true, nil

	case typeChanOpenInit, typeChanOpenTry, typeChanOpenAck, typeChanOpenConfirm,
		typeChanCloseInit, typeChanCloseConfirm:
		attrs, err := decodeChannelAttributes(raw.Type, m)
		if err != nil {
			return Event{}, false, err
		}
		return Event{Kind: chanKind(raw.Type), Height: blockHeight, Channel: attrs}, true, nil

	case typeSendPacket, typeAckPacket, typeTimeoutPacket, typeWriteAck:
		return decodePacketEvent(blockHeight, raw.Type, m)

	default:
		return Event{}, false, nil
	}
}

// KindReceivePacket has no corresponding raw event type: a RecvPacket
// transition is observed as the handler output of the destination chain
// processing a relayed message, not decoded off a ledger attribute map
// (spec.md §4.C, §4.D). The decoder therefore never produces it.

func connKind(t string) Kind {
	switch t {
	case typeConnOpenInit:
		return KindConnOpenInit
	case typeConnOpenTry:
		return KindConnOpenTry
	case typeConnOpenAck:
		return KindConnOpenAck
	default:
		return KindConnOpenConfirm
	}
}

func chanKind(t string) Kind {
	switch t {
	case typeChanOpenInit:
		return KindChanOpenInit
	case typeChanOpenTry:
		return KindChanOpenTry
	case typeChanOpenAck:
		return KindChanOpenAck
	case typeChanOpenConfirm:
		return KindChanOpenConfirm
	case typeChanCloseInit:
		return KindChanCloseInit
	default:
		return KindChanCloseConfirm
	}
}

func decodeConnectionAttributes(eventType string, m map[string]string) (*ConnectionAttributes, error) {
	connID, err := required(m, eventType, attrConnectionId)
	if err != nil {
		return nil, err
	}
	clientID, err := required(m, eventType, attrClientId)
	if err != nil {
		return nil, err
	}
	cpClientID, err := required(m, eventType, attrCounterpartyClientId)
	if err != nil {
		return nil, err
	}

	return &ConnectionAttributes{
		ConnectionId:             ids.ConnectionId(connID),
		ClientId:                 ids.ClientId(clientID),
		CounterpartyClientId:     ids.ClientId(cpClientID),
		CounterpartyConnectionId: ids.ConnectionId(m[attrCounterpartyConnectionId]),
	}, nil
}

func decodeChannelAttributes(eventType string, m map[string]string) (*ChannelAttributes, error) {
	portID, err := required(m, eventType, attrPortId)
	if err != nil {
		return nil, err
	}
	connID, err := required(m, eventType, attrConnectionId)
	if err != nil {
		return nil, err
	}
	cpPortID, err := required(m, eventType, attrCounterpartyPortId)
	if err != nil {
		return nil, err
	}

	return &ChannelAttributes{
		PortId:                portID_(portID),
		ChannelId:             optional(m, attrChannelId),
		ConnectionId:          ids.ConnectionId(connID),
		CounterpartyPortId:    portID_(cpPortID),
		CounterpartyChannelId: optional(m, attrCounterpartyChannelId),
	}, nil
}

func portID_(s string) ids.PortId { return ids.PortId(s) }

// decodePacketEvent implements spec.md §9's resolved Open Question: all
// seven Packet attribute fields are parsed consistently for every
// packet-bearing event type, closing the gap the source implementation's
// two divergent decode paths left open.
func decodePacketEvent(blockHeight height.Height, eventType string, m map[string]string) (Event, bool, error) {
	seqStr, err := required(m, eventType, attrPacketSequence)
	if err != nil {
		return Event{}, false, err
	}
	seq, err := strconv.ParseUint(seqStr, 10, 64)
	if err != nil {
		return Event{}, false, errorsmod.Wrapf(ErrInvalidAttribute, "%s: %s: %s", eventType, attrPacketSequence, err)
	}

	srcPort, err := required(m, eventType, attrPacketSrcPort)
	if err != nil {
		return Event{}, false, err
	}
	srcChannel, err := required(m, eventType, attrPacketSrcChannel)
	if err != nil {
		return Event{}, false, err
	}
	dstPort, err := required(m, eventType, attrPacketDstPort)
	if err != nil {
		return Event{}, false, err
	}
	dstChannel, err := required(m, eventType, attrPacketDstChannel)
	if err != nil {
		return Event{}, false, err
	}
	timeoutHeightStr, err := required(m, eventType, attrPacketTimeoutHeight)
	if err != nil {
		return Event{}, false, err
	}
	timeoutHeight, err := height.Parse(timeoutHeightStr)
	if err != nil {
		return Event{}, false, errorsmod.Wrapf(ErrInvalidAttribute, "%s: %s: %s", eventType, attrPacketTimeoutHeight, err)
	}
	timeoutTimestampStr, err := required(m, eventType, attrPacketTimeoutTimestamp)
	if err != nil {
		return Event{}, false, err
	}
	timeoutTimestamp, err := strconv.ParseUint(timeoutTimestampStr, 10, 64)
	if err != nil {
		return Event{}, false, errorsmod.Wrapf(ErrInvalidAttribute, "%s: %s: %s", eventType, attrPacketTimeoutTimestamp, err)
	}

	packet := &channel.Packet{
		Sequence:           seq,
		SourcePort:         ids.PortId(srcPort),
		SourceChannel:      ids.ChannelId(srcChannel),
		DestinationPort:    ids.PortId(dstPort),
		DestinationChannel: ids.ChannelId(dstChannel),
		TimeoutHeight:      timeoutHeight,
		TimeoutTimestampNs: timeoutTimestamp,
	}

	if data, ok := m[attrPacketData]; ok {
		packet.Data = []byte(data)
	}

	var kind Kind
	var ack []byte
	switch eventType {
	case typeSendPacket:
		kind = KindSendPacket
	case typeAckPacket:
		kind = KindAcknowledgePacket
	case typeTimeoutPacket:
		kind = KindTimeoutPacket
	case typeWriteAck:
		kind = KindWriteAcknowledgement
		ackStr, err := required(m, eventType, attrPacketAck)
		if err != nil {
			return Event{}, false, err
		}
		ack = []byte(ackStr)
	default:
		return Event{}, false, nil
	}

	return Event{Kind: kind, Height: blockHeight, Packet: packet, Ack: ack}, true, nil
}

// DecodeBlock decodes every raw event produced by one block, in emission
// order, skipping unrecognised types and stopping at the first decode
// error (the caller decides whether to drop the block or the batch).
func DecodeBlock(blockHeight height.Height, raws []RawEvent) ([]Event, error) {
	out := make([]Event, 0, len(raws))
	for _, raw := range raws {
		ev, ok, err := Decode(blockHeight, raw)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, ev)
		}
	}
	return out, nil
}
