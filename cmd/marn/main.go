package main

import (
	"os"

	"github.com/marn-lang/marn/cmd/marn/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
