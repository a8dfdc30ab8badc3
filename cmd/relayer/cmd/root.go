// Package cmd is the relayer's cobra command tree: a root command wiring
// viper-backed TOML config the way the teacher's cmd/txd/main.go wires
// svrcmd.Execute with an env prefix and a default home directory, adapted
// to a plain relayer binary rather than a full cosmos-sdk server.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tokenize-x/ibc-relayer/pkg/config/constant"
)

// NewRootCmd builds the relayer's command tree.
func NewRootCmd() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:   constant.AppName,
		Short: "Relay IBC traffic between two Cosmos SDK chains",
	}

	root.PersistentFlags().StringVar(&configFile, "config", "", "path to config.toml (default: $HOME/.ibc-relayer/config.toml)")
	_ = viper.BindPFlag("config", root.PersistentFlags().Lookup("config"))

	root.AddCommand(newStartCmd())

	return root
}
