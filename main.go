package main

import (
	"os"

	"github.com/iamgilwell/hemat/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
