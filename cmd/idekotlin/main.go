package main

import (
	"os"

	"github.com/majorcontext/idekotlin/cmd/idekotlin/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
