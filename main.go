// Package main provides the entry point for armemu.
// armemu is a functional emulator for a subset of 32-bit ARM with an
// optional cycle-estimating timing mode built on Akita.
//
// For the full CLI, use: go run ./cmd/armemu
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("armemu - ARM Subset Emulator")
	fmt.Println("Timing mode built on Akita cache components")
	fmt.Println("")
	fmt.Println("Usage: armemu [options] <image.bin>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -timing    Enable timing estimation mode")
	fmt.Println("  -config    Path to timing configuration JSON file")
	fmt.Println("  -max       Maximum instructions to execute")
	fmt.Println("  -v         Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/armemu' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/armemu' instead.")
	}
}
