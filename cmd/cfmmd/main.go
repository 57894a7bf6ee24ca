package main

import (
	"os"

	"github.com/paw-chain/cfmm/cmd/cfmmd/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
