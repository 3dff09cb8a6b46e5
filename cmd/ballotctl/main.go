package main

import (
	"fmt"
	"os"
)

// ballotctl drives a ballot through the HTTP API: deploy, register voters,
// vote, delegate and read results.
func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
