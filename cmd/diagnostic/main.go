package main

import (
	"os"

	"github.com/goliatone/go-diagnostic/cmd/diagnostic/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
