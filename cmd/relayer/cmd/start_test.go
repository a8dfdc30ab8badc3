package cmd

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tokenize-x/ibc-relayer/ibc/ids"
	"github.com/tokenize-x/ibc-relayer/pkg/config"
)

func testResolveConfig() config.Config {
	return config.Config{
		Chains: []config.ChainConfig{{ChainId: "chain-src-0"}, {ChainId: "chain-dst-0"}},
		Paths: []config.PathConfig{{
			Src: config.PathEnd{ChainId: "chain-src-0", PortId: "transfer", ChannelId: "channel-0"},
			Dst: config.PathEnd{ChainId: "chain-dst-0", PortId: "transfer", ChannelId: "channel-1"},
		}},
	}
}

func TestResolvePathBothGivenRunsThatLink(t *testing.T) {
	path, err := resolvePath(testResolveConfig(), "chain-src-0", "chain-dst-0", "transfer", "channel-5")
	require.NoError(t, err)
	require.EqualValues(t, "channel-5", path.Src.ChannelId)
}

func TestResolvePathNeitherGivenAutoDiscovers(t *testing.T) {
	path, err := resolvePath(testResolveConfig(), "chain-src-0", "chain-dst-0", "", "")
	require.NoError(t, err)
	require.EqualValues(t, "channel-0", path.Src.ChannelId)
	require.EqualValues(t, "channel-1", path.Dst.ChannelId)
}

func TestResolvePathNeitherGivenNoConfiguredPathIsError(t *testing.T) {
	_, err := resolvePath(testResolveConfig(), "chain-src-0", ids.ChainId("chain-unrelated-0"), "", "")
	require.Error(t, err)
}

func TestResolvePathOnlyPortGivenIsError(t *testing.T) {
	_, err := resolvePath(testResolveConfig(), "chain-src-0", "chain-dst-0", "transfer", "")
	require.Error(t, err)
}

func TestResolvePathOnlyChannelGivenIsError(t *testing.T) {
	_, err := resolvePath(testResolveConfig(), "chain-src-0", "chain-dst-0", "", "channel-0")
	require.Error(t, err)
}
