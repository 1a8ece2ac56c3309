package main

import (
	"os"

	"github.com/refguard/refguard/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
