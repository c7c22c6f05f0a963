package main

import (
	"os"

	"github.com/lab47/cibuild/pkg/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
