package main

import (
	"os"

	"github.com/modernlint/loopconv/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
