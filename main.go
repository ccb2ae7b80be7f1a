// Package main provides the entry point for Tomasim.
// Tomasim is a cycle-accurate Tomasulo scheduling simulator.
//
// For the full CLI, use: go run ./cmd/tomasim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("Tomasim - Tomasulo Out-of-Order Scheduling Simulator")
	fmt.Println("16-bit machine, 8 registers, reorder buffer and reservation stations")
	fmt.Println("")
	fmt.Println("Usage: tomasim [options] <program.asm>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -mem         Initial memory image (addr: value per line)")
	fmt.Println("  -config      Path to timing configuration JSON file")
	fmt.Println("  -rob         Reorder buffer size")
	fmt.Println("  -max-cycles  Cycle cap for the run")
	fmt.Println("  -dcache      Model an L1 data cache")
	fmt.Println("  -trace       Print the engine state after every cycle")
	fmt.Println("  -json        Print the report as JSON")
	fmt.Println("  -v           Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/tomasim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/tomasim' instead.")
	}
}
