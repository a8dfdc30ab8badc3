package cosmos

import (
	"fmt"

	rpchttp "github.com/cometbft/cometbft/rpc/client/http"
	sdkclient "github.com/cosmos/cosmos-sdk/client"
	clienttx "github.com/cosmos/cosmos-sdk/client/tx"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/tokenize-x/ibc-relayer/pkg/config"
)

// Dial builds a Driver from a ChainConfig: a gRPC connection for query/tx
// services and a CometBFT RPC client for block event subscription. This is
// the one place the relayer dials out to a real chain; everything above it
// (chain.Runtime, relayer/link) only ever sees the chain.Driver interface.
func Dial(cfg config.ChainConfig) (*Driver, error) {
	conn, err := grpc.NewClient(cfg.GrpcAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial grpc %s: %w", cfg.GrpcAddr, err)
	}

	rpc, err := rpchttp.New(cfg.RpcAddr, "/websocket")
	if err != nil {
		return nil, fmt.Errorf("dial rpc %s: %w", cfg.RpcAddr, err)
	}

	clientCtx := sdkclient.Context{}.
		WithGRPCClient(conn).
		WithChainID(string(cfg.ChainId)).
		WithBroadcastMode("sync")

	txf := clienttx.Factory{}.
		WithChainID(string(cfg.ChainId)).
		WithGasPrices(cfg.GasPrice)

	return New(cfg.ChainId, clientCtx, txf, rpc), nil
}
