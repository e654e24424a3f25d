package main

import (
	"os"

	"github.com/polygate-dev/polygate/internal/command"
)

func main() {
	if err := command.Execute(); err != nil {
		os.Exit(1)
	}
}
