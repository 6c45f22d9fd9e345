package main

import (
	"os"

	"github.com/rtzll/azreco/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
