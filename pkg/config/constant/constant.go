// Package constant carries the relayer's default home directory and
// environment variable prefix, the way the teacher's cmd/txd/main.go pins
// app.DefaultNodeHome and the "TXD" env prefix ahead of cobra/viper wiring.
package constant

import "os"

const (
	// AppName names the binary, used to derive the default home directory.
	AppName = "ibc-relayer"

	// EnvPrefix is prepended to every environment variable viper binds
	// (e.g. IBC_RELAYER_HOME), mirroring the teacher's "TXD" prefix passed
	// to svrcmd.Execute.
	EnvPrefix = "IBC_RELAYER"

	// DefaultConfigFileName is the TOML file viper reads from the home
	// directory when no --config flag is given.
	DefaultConfigFileName = "config.toml"
)

// DefaultHome returns "$HOME/.ibc-relayer", the default home directory, the
// same os.UserHomeDir()-relative pattern the teacher's app.DefaultNodeHome
// follows for "$HOME/.txd".
func DefaultHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return home + "/." + AppName, nil
}
