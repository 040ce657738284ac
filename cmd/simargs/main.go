// Command simargs prints the positional argument vector the gateway would
// pass to the simulation engine for a request file, without running it.
//
// Usage:
//
//	go run ./cmd/simargs print request.json
//	go run ./cmd/simargs print --raw request.yaml
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
