// Package cosmos is the one concrete chain.Driver this repo ships: a thin
// adapter over a Cosmos SDK chain's gRPC query services and CometBFT's
// event-subscription RPC. It is the "real ledger" half of the capability
// boundary spec.md §6 draws; the core never imports it back.
package cosmos

import (
	"context"
	"fmt"

	rpchttp "github.com/cometbft/cometbft/rpc/client/http"
	coretypes "github.com/cometbft/cometbft/rpc/core/types"
	sdkclient "github.com/cosmos/cosmos-sdk/client"
	cmtservice "github.com/cosmos/cosmos-sdk/client/grpc/cmtservice"
	clienttx "github.com/cosmos/cosmos-sdk/client/tx"
	sdk "github.com/cosmos/cosmos-sdk/types"
	clienttypes "github.com/cosmos/ibc-go/v10/modules/core/02-client/types"
	connectiontypes "github.com/cosmos/ibc-go/v10/modules/core/03-connection/types"
	channeltypes "github.com/cosmos/ibc-go/v10/modules/core/04-channel/types"
	ibctm "github.com/cosmos/ibc-go/v10/modules/light-clients/07-tendermint"
	"github.com/cosmos/gogoproto/proto"

	"github.com/tokenize-x/ibc-relayer/ibc/channel"
	"github.com/tokenize-x/ibc-relayer/ibc/client"
	"github.com/tokenize-x/ibc-relayer/ibc/connection"
	"github.com/tokenize-x/ibc-relayer/ibc/events"
	"github.com/tokenize-x/ibc-relayer/ibc/height"
	"github.com/tokenize-x/ibc-relayer/ibc/ids"
	"github.com/tokenize-x/ibc-relayer/relayer/chain"
)

// Driver adapts a single Cosmos SDK chain to chain.Driver. clientCtx carries
// the gRPC query connection (client.Context satisfies grpc.ClientConn, the
// same NewQueryClient(clientCtx) idiom the teacher's integration tests use
// against tx-chain's own modules); txf carries the signing/broadcast
// configuration for SubmitMessages.
type Driver struct {
	chainID   ids.ChainId
	clientCtx sdkclient.Context
	txf       clienttx.Factory
	rpc       *rpchttp.HTTP

	clientQuery     clienttypes.QueryClient
	connectionQuery connectiontypes.QueryClient
	channelQuery    channeltypes.QueryClient
	cmtQuery        cmtservice.ServiceClient
}

var _ chain.Driver = (*Driver)(nil)

// New builds a Driver for chainID. clientCtx must already carry a live gRPC
// connection (sdkclient.Context.WithGRPCClient) and, for SubmitMessages, a
// keyring and account. rpc is the CometBFT RPC client used for block event
// subscription.
func New(chainID ids.ChainId, clientCtx sdkclient.Context, txf clienttx.Factory, rpc *rpchttp.HTTP) *Driver {
	return &Driver{
		chainID:         chainID,
		clientCtx:       clientCtx,
		txf:             txf,
		rpc:             rpc,
		clientQuery:     clienttypes.NewQueryClient(clientCtx),
		connectionQuery: connectiontypes.NewQueryClient(clientCtx),
		channelQuery:    channeltypes.NewQueryClient(clientCtx),
		cmtQuery:        cmtservice.NewServiceClient(clientCtx),
	}
}

func (d *Driver) ChainId() ids.ChainId { return d.chainID }

func (d *Driver) Status(ctx context.Context) (chain.Status, error) {
	resp, err := d.cmtQuery.GetLatestBlock(ctx, &cmtservice.GetLatestBlockRequest{})
	if err != nil {
		return chain.Status{}, fmt.Errorf("query latest block: %w", err)
	}
	return chain.Status{
		ChainId: d.chainID,
		Height:  height.New(d.chainID.RevisionNumber(), uint64(resp.SdkBlock.Header.Height)),
	}, nil
}

// SubmitMessages signs and broadcasts msgs as a single transaction, using
// the standard cosmos-sdk client/tx helpers (clienttx.BuildUnsignedTx,
// clienttx.Sign) and clientCtx.BroadcastTx, generalized here since the teacher's own pse
// module is query-only and ships no tx.go to imitate directly.
func (d *Driver) SubmitMessages(ctx context.Context, msgs []any) (chain.TxResult, error) {
	sdkMsgs := make([]sdk.Msg, 0, len(msgs))
	for _, m := range msgs {
		msg, ok := m.(sdk.Msg)
		if !ok {
			return chain.TxResult{}, fmt.Errorf("message %T does not implement sdk.Msg", m)
		}
		sdkMsgs = append(sdkMsgs, msg)
	}

	txBytes, err := clienttx.BuildUnsignedTx(d.txf, sdkMsgs...)
	if err != nil {
		return chain.TxResult{}, fmt.Errorf("build tx: %w", err)
	}
	if err := clienttx.Sign(ctx, d.txf, d.clientCtx.GetFromName(), txBytes, true); err != nil {
		return chain.TxResult{}, fmt.Errorf("sign tx: %w", err)
	}
	raw, err := d.clientCtx.TxConfig.TxEncoder()(txBytes.GetTx())
	if err != nil {
		return chain.TxResult{}, fmt.Errorf("encode tx: %w", err)
	}

	res, err := d.clientCtx.BroadcastTx(raw)
	if err != nil {
		return chain.TxResult{}, fmt.Errorf("broadcast tx: %w", err)
	}

	status, statusErr := d.Status(ctx)
	h := height.Height{}
	if statusErr == nil {
		h = status.Height
	}
	return chain.TxResult{
		Height: h,
		Code:   res.Code,
		Log:    res.RawLog,
	}, nil
}

// decodeClientStateEnvelope adapts client.DecodeClientState's generic
// unmarshal hook to the real ibc-go protobuf wire types, then copies the
// fields the relayer core actually reasons about into the simplified
// AnyClientState variants.
func decodeClientStateEnvelope(typeURL string, value []byte) (client.AnyClientState, error) {
	return client.DecodeClientState(client.Envelope{TypeURL: typeURL, Value: value}, unmarshalLightClientState)
}

func decodeConsensusStateEnvelope(typeURL string, value []byte) (client.AnyConsensusState, error) {
	return client.DecodeConsensusState(client.Envelope{TypeURL: typeURL, Value: value}, unmarshalLightConsensusState)
}

func unmarshalLightClientState(bz []byte, v any) error {
	switch target := v.(type) {
	case *client.TendermintClientState:
		var pb ibctm.ClientState
		if err := proto.Unmarshal(bz, &pb); err != nil {
			return err
		}
		target.ChainIdValue = ids.ChainId(pb.ChainId)
		target.TrustingPeriod = pb.TrustingPeriod
		target.UnbondingPeriod = pb.UnbondingPeriod
		target.MaxClockDrift = pb.MaxClockDrift
		target.LatestHeightVal = height.New(pb.LatestHeight.RevisionNumber, pb.LatestHeight.RevisionHeight)
		if !pb.FrozenHeight.IsZero() {
			target.FrozenHeightVal = height.New(pb.FrozenHeight.RevisionNumber, pb.FrozenHeight.RevisionHeight)
		}
		return nil
	default:
		return fmt.Errorf("cosmos: unsupported client state target %T", v)
	}
}

func unmarshalLightConsensusState(bz []byte, v any) error {
	switch target := v.(type) {
	case *client.TendermintConsensusState:
		var pb ibctm.ConsensusState
		if err := proto.Unmarshal(bz, &pb); err != nil {
			return err
		}
		target.TimestampVal = pb.Timestamp
		target.RootVal = pb.Root.Hash
		return nil
	default:
		return fmt.Errorf("cosmos: unsupported consensus state target %T", v)
	}
}

func decodeConnectionEnd(pb *connectiontypes.ConnectionEnd) connection.End {
	versions := make([]string, 0, len(pb.Versions))
	for _, v := range pb.Versions {
		versions = append(versions, v.GetIdentifier())
	}
	return connection.End{
		State:    connection.State(pb.State),
		ClientId: ids.ClientId(pb.ClientId),
		Counterparty: connection.Counterparty{
			ClientId:     ids.ClientId(pb.Counterparty.ClientId),
			ConnectionId: ids.ConnectionId(pb.Counterparty.ConnectionId),
			Prefix:       connection.MerklePrefix{KeyPrefix: pb.Counterparty.Prefix.KeyPrefix},
		},
		Versions:       versions,
		DelayPeriodSec: pb.DelayPeriod,
	}
}

// decodeOrdering maps ibc-go's Order enum (NONE=0, UNORDERED=1, ORDERED=2)
// onto ours (Unordered=0, Ordered=1); the two don't share numbering.
func decodeOrdering(o channeltypes.Order) channel.Order {
	if o == channeltypes.ORDERED {
		return channel.Ordered
	}
	return channel.Unordered
}

func decodeChannelEnd(pb *channeltypes.Channel) channel.End {
	hops := make([]ids.ConnectionId, 0, len(pb.ConnectionHops))
	for _, h := range pb.ConnectionHops {
		hops = append(hops, ids.ConnectionId(h))
	}
	return channel.End{
		State:    channel.State(pb.State),
		Ordering: decodeOrdering(pb.Ordering),
		Counterparty: channel.Counterparty{
			PortId:    ids.PortId(pb.Counterparty.PortId),
			ChannelId: ids.ChannelId(pb.Counterparty.ChannelId),
		},
		ConnectionHops: hops,
		Version:        pb.Version,
	}
}

func (d *Driver) ClientState(ctx context.Context, id ids.ClientId, h height.Height) (client.AnyClientState, chain.ProvenValue, error) {
	resp, err := d.clientQueryAt(h).ClientState(ctx, &clienttypes.QueryClientStateRequest{ClientId: string(id)})
	if err != nil {
		return client.AnyClientState{}, chain.ProvenValue{}, fmt.Errorf("query client state: %w", err)
	}
	cs, err := decodeClientStateEnvelope(resp.ClientState.TypeUrl, resp.ClientState.Value)
	if err != nil {
		return client.AnyClientState{}, chain.ProvenValue{}, err
	}
	return cs, chain.ProvenValue{Value: resp.ClientState.Value, Height: h, Proof: resp.Proof}, nil
}

func (d *Driver) ConsensusState(ctx context.Context, id ids.ClientId, h height.Height) (client.AnyConsensusState, chain.ProvenValue, error) {
	resp, err := d.clientQueryAt(h).ConsensusState(ctx, &clienttypes.QueryConsensusStateRequest{
		ClientId:       string(id),
		RevisionNumber: h.RevisionNumber,
		RevisionHeight: h.RevisionHeight,
	})
	if err != nil {
		return client.AnyConsensusState{}, chain.ProvenValue{}, fmt.Errorf("query consensus state: %w", err)
	}
	cs, err := decodeConsensusStateEnvelope(resp.ConsensusState.TypeUrl, resp.ConsensusState.Value)
	if err != nil {
		return client.AnyConsensusState{}, chain.ProvenValue{}, err
	}
	return cs, chain.ProvenValue{Value: resp.ConsensusState.Value, Height: h, Proof: resp.Proof}, nil
}

func (d *Driver) ConnectionEnd(ctx context.Context, id ids.ConnectionId, h height.Height) (connection.End, chain.ProvenValue, error) {
	resp, err := d.connectionQueryAt(h).Connection(ctx, &connectiontypes.QueryConnectionRequest{ConnectionId: string(id)})
	if err != nil {
		return connection.End{}, chain.ProvenValue{}, fmt.Errorf("query connection: %w", err)
	}
	end := decodeConnectionEnd(resp.Connection)
	return end, chain.ProvenValue{Height: h, Proof: resp.Proof}, nil
}

func (d *Driver) ChannelEnd(ctx context.Context, port ids.PortId, ch ids.ChannelId, h height.Height) (channel.End, chain.ProvenValue, error) {
	resp, err := d.channelQueryAt(h).Channel(ctx, &channeltypes.QueryChannelRequest{PortId: string(port), ChannelId: string(ch)})
	if err != nil {
		return channel.End{}, chain.ProvenValue{}, fmt.Errorf("query channel: %w", err)
	}
	end := decodeChannelEnd(resp.Channel)
	return end, chain.ProvenValue{Height: h, Proof: resp.Proof}, nil
}

func (d *Driver) PacketCommitment(ctx context.Context, port ids.PortId, ch ids.ChannelId, sequence uint64, h height.Height) (chain.ProvenValue, error) {
	resp, err := d.channelQueryAt(h).PacketCommitment(ctx, &channeltypes.QueryPacketCommitmentRequest{
		PortId: string(port), ChannelId: string(ch), Sequence: sequence,
	})
	if err != nil {
		return chain.ProvenValue{}, fmt.Errorf("query packet commitment: %w", err)
	}
	return chain.ProvenValue{Value: resp.Commitment, Height: h, Proof: resp.Proof}, nil
}

func (d *Driver) PacketAcknowledgement(ctx context.Context, port ids.PortId, ch ids.ChannelId, sequence uint64, h height.Height) (chain.ProvenValue, error) {
	resp, err := d.channelQueryAt(h).PacketAcknowledgement(ctx, &channeltypes.QueryPacketAcknowledgementRequest{
		PortId: string(port), ChannelId: string(ch), Sequence: sequence,
	})
	if err != nil {
		return chain.ProvenValue{}, fmt.Errorf("query packet acknowledgement: %w", err)
	}
	return chain.ProvenValue{Value: resp.Acknowledgement, Height: h, Proof: resp.Proof}, nil
}

func (d *Driver) PacketReceiptAbsence(ctx context.Context, port ids.PortId, ch ids.ChannelId, sequence uint64, h height.Height) (chain.ProvenValue, error) {
	resp, err := d.channelQueryAt(h).PacketReceipt(ctx, &channeltypes.QueryPacketReceiptRequest{
		PortId: string(port), ChannelId: string(ch), Sequence: sequence,
	})
	if err != nil {
		return chain.ProvenValue{}, fmt.Errorf("query packet receipt: %w", err)
	}
	if resp.Received {
		return chain.ProvenValue{}, fmt.Errorf("packet %d already received on %s/%s", sequence, port, ch)
	}
	return chain.ProvenValue{Height: h, Proof: resp.Proof}, nil
}

func (d *Driver) NextSequenceRecv(ctx context.Context, port ids.PortId, ch ids.ChannelId, h height.Height) (uint64, chain.ProvenValue, error) {
	resp, err := d.channelQueryAt(h).NextSequenceReceive(ctx, &channeltypes.QueryNextSequenceReceiveRequest{
		PortId: string(port), ChannelId: string(ch),
	})
	if err != nil {
		return 0, chain.ProvenValue{}, fmt.Errorf("query next sequence recv: %w", err)
	}
	return resp.NextSequenceReceive, chain.ProvenValue{Height: h, Proof: resp.Proof}, nil
}

func (d *Driver) PacketCommitments(ctx context.Context, port ids.PortId, ch ids.ChannelId) ([]uint64, error) {
	resp, err := d.channelQuery.PacketCommitments(ctx, &channeltypes.QueryPacketCommitmentsRequest{PortId: string(port), ChannelId: string(ch)})
	if err != nil {
		return nil, fmt.Errorf("query packet commitments: %w", err)
	}
	out := make([]uint64, 0, len(resp.Commitments))
	for _, c := range resp.Commitments {
		out = append(out, c.Sequence)
	}
	return out, nil
}

func (d *Driver) UnreceivedPackets(ctx context.Context, port ids.PortId, ch ids.ChannelId, sequences []uint64) ([]uint64, error) {
	resp, err := d.channelQuery.UnreceivedPackets(ctx, &channeltypes.QueryUnreceivedPacketsRequest{
		PortId: string(port), ChannelId: string(ch), PacketCommitmentSequences: sequences,
	})
	if err != nil {
		return nil, fmt.Errorf("query unreceived packets: %w", err)
	}
	return resp.Sequences, nil
}

func (d *Driver) UnreceivedAcks(ctx context.Context, port ids.PortId, ch ids.ChannelId, sequences []uint64) ([]uint64, error) {
	resp, err := d.channelQuery.UnreceivedAcks(ctx, &channeltypes.QueryUnreceivedAcksRequest{
		PortId: string(port), ChannelId: string(ch), PacketAckCommitmentSequences: sequences,
	})
	if err != nil {
		return nil, fmt.Errorf("query unreceived acks: %w", err)
	}
	return resp.Sequences, nil
}

// BuildClientUpdateHeader is the one capability spec.md §1 explicitly leaves
// unspecified ("the concrete light client verification math... not the
// cryptographic construction"): a real driver would pull the counterparty's
// signed header from its own RPC and hand it back untyped for the caller to
// wrap in a MsgUpdateClient. Left unimplemented here deliberately rather than
// faked, matching the boundary spec.md draws.
func (d *Driver) BuildClientUpdateHeader(ctx context.Context, trustedHeight height.Height) (client.AnyConsensusState, client.AnyClientState, error) {
	return client.AnyConsensusState{}, client.AnyClientState{}, fmt.Errorf("cosmos: BuildClientUpdateHeader requires a counterparty light-client client not wired by this driver")
}

// Subscribe forwards CometBFT's own NewBlock event stream, translated into
// the raw (type, attributes) shape ibc/events.DecodeBlock expects. Grounded
// on cometbft/rpc/client/http's websocket Subscribe, the same module the
// teacher's go.mod already pulls in for ABCI event types.
func (d *Driver) Subscribe(ctx context.Context) (<-chan chain.BlockEvents, error) {
	const query = "tm.event='NewBlock'"
	sub, err := d.rpc.Subscribe(ctx, "ibc-relayer", query)
	if err != nil {
		return nil, fmt.Errorf("subscribe to new blocks: %w", err)
	}

	out := make(chan chain.BlockEvents, 16)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				batch, ok := toBlockEvents(d.chainID, ev)
				if !ok {
					continue
				}
				select {
				case out <- batch:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func toBlockEvents(chainID ids.ChainId, ev coretypes.ResultEvent) (chain.BlockEvents, bool) {
	newBlock, ok := ev.Data.(interface{ GetHeight() int64 })
	if !ok {
		return chain.BlockEvents{}, false
	}
	return chain.BlockEvents{
		Height: height.New(chainID.RevisionNumber(), uint64(newBlock.GetHeight())),
		Raw:    rawEventsFromABCI(ev.Events),
	}, true
}

func rawEventsFromABCI(m map[string][]string) []events.RawEvent {
	// CometBFT's websocket subscription flattens events into
	// "type.attribute" -> []values; ibc/events.Decode wants them grouped
	// back by type with (key, value) pairs, same shape the ABCI
	// EndBlock/DeliverTx events already have before CometBFT flattens them.
	grouped := map[string][]events.Attribute{}
	for compound, values := range m {
		typ, key, ok := splitCompoundKey(compound)
		if !ok {
			continue
		}
		for _, v := range values {
			grouped[typ] = append(grouped[typ], events.Attribute{Key: key, Value: v})
		}
	}
	out := make([]events.RawEvent, 0, len(grouped))
	for typ, attrs := range grouped {
		out = append(out, events.RawEvent{Type: typ, Attributes: attrs})
	}
	return out
}

func splitCompoundKey(compound string) (typ, key string, ok bool) {
	for i := len(compound) - 1; i >= 0; i-- {
		if compound[i] == '.' {
			return compound[:i], compound[i+1:], true
		}
	}
	return "", "", false
}

// clientCtxAt returns d.clientCtx pinned to h, or d.clientCtx unchanged for
// the latest-height query (h zero value). client.Context.Invoke reads Height
// off the context it is built from and attaches the x-cosmos-block-height
// gRPC metadata itself, so a historical query needs a query client built
// from a height-pinned context rather than a header set on the call's own
// context (sdkclient.Context.WithHeight, not a free-standing header setter).
func (d *Driver) clientCtxAt(h height.Height) sdkclient.Context {
	if h.RevisionHeight == 0 {
		return d.clientCtx
	}
	return d.clientCtx.WithHeight(int64(h.RevisionHeight))
}

func (d *Driver) clientQueryAt(h height.Height) clienttypes.QueryClient {
	if h.RevisionHeight == 0 {
		return d.clientQuery
	}
	return clienttypes.NewQueryClient(d.clientCtxAt(h))
}

func (d *Driver) connectionQueryAt(h height.Height) connectiontypes.QueryClient {
	if h.RevisionHeight == 0 {
		return d.connectionQuery
	}
	return connectiontypes.NewQueryClient(d.clientCtxAt(h))
}

func (d *Driver) channelQueryAt(h height.Height) channeltypes.QueryClient {
	if h.RevisionHeight == 0 {
		return d.channelQuery
	}
	return channeltypes.NewQueryClient(d.clientCtxAt(h))
}
