package main

import (
	"fmt"
	"os"

	"github.com/inklift/inklift/internal/cli"
)

func main() {
	if err := cli.NewRoot().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "inklift: %v\n", err)
		os.Exit(1)
	}
}
