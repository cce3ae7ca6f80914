// Command escrowctl is a developer tool around the escrow program: it
// derives the addresses an operation needs, encodes and decodes the wire
// forms, and can replay a full swap against an in-memory ledger.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
