package config_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tokenize-x/ibc-relayer/pkg/config"
)

func testConfig() config.Config {
	return config.Config{
		Chains: []config.ChainConfig{
			{ChainId: "chain-src-0"},
			{ChainId: "chain-dst-0"},
		},
		Paths: []config.PathConfig{
			{
				Src: config.PathEnd{ChainId: "chain-src-0", PortId: "transfer", ChannelId: "channel-0"},
				Dst: config.PathEnd{ChainId: "chain-dst-0", PortId: "transfer", ChannelId: "channel-1"},
			},
		},
	}
}

func TestValidateRejectsUnknownChain(t *testing.T) {
	cfg := testConfig()
	cfg.Paths[0].Dst.ChainId = "chain-unknown-0"

	err := cfg.Validate()
	require.Error(t, err)
}

func TestValidateAcceptsKnownChains(t *testing.T) {
	require.NoError(t, testConfig().Validate())
}

func TestFirstMatchingPathForwardOrientation(t *testing.T) {
	cfg := testConfig()

	p, ok := cfg.FirstMatchingPath("chain-src-0", "chain-dst-0")
	require.True(t, ok)
	require.EqualValues(t, "channel-0", p.Src.ChannelId)
	require.EqualValues(t, "channel-1", p.Dst.ChannelId)
}

func TestFirstMatchingPathReverseOrientation(t *testing.T) {
	cfg := testConfig()

	p, ok := cfg.FirstMatchingPath("chain-dst-0", "chain-src-0")
	require.True(t, ok)
	require.EqualValues(t, "channel-1", p.Src.ChannelId)
	require.EqualValues(t, "channel-0", p.Dst.ChannelId)
}

func TestFirstMatchingPathNoMatch(t *testing.T) {
	cfg := testConfig()

	_, ok := cfg.FirstMatchingPath("chain-src-0", "chain-unrelated-0")
	require.False(t, ok)
}

func TestChainLookup(t *testing.T) {
	cfg := testConfig()

	_, ok := cfg.Chain("chain-src-0")
	require.True(t, ok)

	_, ok = cfg.Chain("chain-missing-0")
	require.False(t, ok)
}
