// Package config loads the relayer's TOML configuration into an immutable
// snapshot built once at startup, the way the teacher's cmd/txd wires
// spf13/viper ahead of cosmos-sdk's server command tree.
package config

import (
	"time"

	errorsmod "cosmossdk.io/errors"
	"github.com/spf13/viper"

	"github.com/tokenize-x/ibc-relayer/ibc/ids"
	"github.com/tokenize-x/ibc-relayer/pkg/config/constant"
)

// ErrInvalidConfig is returned by Load/Validate for any structurally
// invalid configuration file.
var ErrInvalidConfig = errorsmod.Register("config", 1, "invalid configuration")

// ChainConfig is one chain this relayer process can talk to.
type ChainConfig struct {
	ChainId       ids.ChainId   `mapstructure:"chain_id"`
	RpcAddr       string        `mapstructure:"rpc_addr"`
	GrpcAddr      string        `mapstructure:"grpc_addr"`
	AccountPrefix string        `mapstructure:"account_prefix"`
	KeyName       string        `mapstructure:"key_name"`
	GasPrice      string        `mapstructure:"gas_price"`
	RetryInterval time.Duration `mapstructure:"retry_interval"`
}

// PathConfig is one configured relay path between two chains, grounded on
// original_source/relayer-cli/src/commands/start.rs's config.first_matching_path
// lookup (src/dst chain ids, port, and ordering).
type PathConfig struct {
	Src PathEnd `mapstructure:"src"`
	Dst PathEnd `mapstructure:"dst"`
	// Ordered records the channel's ordering guarantee, since the config
	// is the only place that knows it ahead of the first ChannelEnd query.
	Ordered bool `mapstructure:"ordered"`
}

// PathEnd names one side of a configured path.
type PathEnd struct {
	ChainId   ids.ChainId   `mapstructure:"chain_id"`
	ClientId  ids.ClientId  `mapstructure:"client_id"`
	PortId    ids.PortId    `mapstructure:"port_id"`
	ChannelId ids.ChannelId `mapstructure:"channel_id"`
}

// Config is the immutable snapshot the relayer process runs from, built
// once by Load and never mutated afterward.
type Config struct {
	Chains []ChainConfig `mapstructure:"chains"`
	Paths  []PathConfig  `mapstructure:"paths"`
}

// Load reads TOML configuration from path (or constant.DefaultConfigFileName
// under constant.DefaultHome() when path is empty) into a validated Config.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(constant.EnvPrefix)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		home, err := constant.DefaultHome()
		if err != nil {
			return Config{}, errorsmod.Wrap(ErrInvalidConfig, err.Error())
		}
		v.AddConfigPath(home)
		v.SetConfigName(constant.DefaultConfigFileName)
		v.SetConfigType("toml")
	}

	if err := v.ReadInConfig(); err != nil {
		return Config{}, errorsmod.Wrap(ErrInvalidConfig, err.Error())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errorsmod.Wrap(ErrInvalidConfig, err.Error())
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks referential integrity: every path must name chains this
// config actually declares.
func (c Config) Validate() error {
	known := make(map[ids.ChainId]bool, len(c.Chains))
	for _, chain := range c.Chains {
		if err := chain.ChainId.Validate(); err != nil {
			return errorsmod.Wrap(ErrInvalidConfig, err.Error())
		}
		known[chain.ChainId] = true
	}
	for _, p := range c.Paths {
		if !known[p.Src.ChainId] {
			return errorsmod.Wrapf(ErrInvalidConfig, "path references unknown chain %q", p.Src.ChainId)
		}
		if !known[p.Dst.ChainId] {
			return errorsmod.Wrapf(ErrInvalidConfig, "path references unknown chain %q", p.Dst.ChainId)
		}
	}
	return nil
}

// Chain looks up a configured chain by id.
func (c Config) Chain(id ids.ChainId) (ChainConfig, bool) {
	for _, chain := range c.Chains {
		if chain.ChainId == id {
			return chain, true
		}
	}
	return ChainConfig{}, false
}

// FirstMatchingPath returns the first configured path between src and dst
// (in either orientation), the Go analogue of
// relayer-cli/src/commands/start.rs's config.first_matching_path(&src, &dst):
// the CLI's start command calls this when neither a port nor a channel id
// is given, auto-discovering the link to run.
func (c Config) FirstMatchingPath(src, dst ids.ChainId) (PathConfig, bool) {
	for _, p := range c.Paths {
		if p.Src.ChainId == src && p.Dst.ChainId == dst {
			return p, true
		}
		if p.Src.ChainId == dst && p.Dst.ChainId == src {
			return PathConfig{Src: p.Dst, Dst: p.Src, Ordered: p.Ordered}, true
		}
	}
	return PathConfig{}, false
}
