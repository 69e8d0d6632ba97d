package main

import (
	"os"

	"github.com/chrismelba/noirplan/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
