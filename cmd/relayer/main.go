package main

import (
	"fmt"
	"os"

	"github.com/tokenize-x/ibc-relayer/cmd/relayer/cmd"
)

func main() {
	rootCmd := cmd.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
