// Package main is the cohortviz entry point.
package main

import (
	"os"

	"github.com/TFMV/cohortviz/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
