package main

import (
	"os"

	"github.com/yooncheol/bapsang/cmd/bapsang/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
