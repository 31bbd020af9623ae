package main

import (
	"os"

	"github.com/rustyeddy/satsagent/cmd/satsagent/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
