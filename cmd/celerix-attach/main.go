package main

import (
	"os"

	"github.com/celerix-dev/celerix-attach/cmd/celerix-attach/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
