// Package main provides a profiling wrapper for Tomasim to identify performance bottlenecks.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"github.com/sarchlab/tomasim/emu"
	"github.com/sarchlab/tomasim/loader"
	"github.com/sarchlab/tomasim/timing/cache"
	"github.com/sarchlab/tomasim/timing/core"
	"github.com/sarchlab/tomasim/timing/pipeline"
)

var (
	emulate    = flag.Bool("emulate", false, "Profile the functional emulator instead of the timing engine")
	dcache     = flag.Bool("dcache", false, "Model an L1 data cache")
	memPath    = flag.String("mem", "", "Path to initial memory image")
	cpuProfile = flag.String("cpuprofile", "", "write cpu profile to file")
	memProfile = flag.String("memprofile", "", "write memory profile to file")
	duration   = flag.Duration("duration", 30*time.Second, "max duration to run (for profiling)")
	iterations = flag.Int("iterations", 1000, "number of times to run the program")
	maxCycles  = flag.Uint64("max-cycles", 100000, "cycle cap for each run")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: profile [options] <program.asm>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Start CPU profiling if requested
	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error starting CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	programPath := flag.Arg(0)

	prog, err := loader.LoadWithMemory(programPath, *memPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Loaded: %s\n", programPath)
	fmt.Printf("Instructions: %d\n", len(prog.Instructions))

	start := time.Now()

	// Set timeout
	go func() {
		time.Sleep(*duration)
		fmt.Printf("\nTimeout reached after %v - stopping execution\n", *duration)
		os.Exit(2)
	}()

	var runs int
	var instrCount, cycleCount uint64

	if *emulate {
		runs, instrCount = runEmulationProfile(prog)
	} else {
		runs, instrCount, cycleCount = runTimingProfile(prog)
	}

	elapsed := time.Since(start)

	// Write memory profile if requested
	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating memory profile: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.WriteHeapProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing memory profile: %v\n", err)
		}
	}

	fmt.Printf("\nProfiling Results:\n")
	fmt.Printf("Runs: %d\n", runs)
	fmt.Printf("Instructions retired: %d\n", instrCount)
	if cycleCount > 0 {
		fmt.Printf("Cycles simulated: %d\n", cycleCount)
		fmt.Printf("Cycles/second: %.0f\n", float64(cycleCount)/elapsed.Seconds())
	}
	fmt.Printf("Elapsed time: %v\n", elapsed)
	if instrCount > 0 {
		fmt.Printf("Instructions/second: %.0f\n", float64(instrCount)/elapsed.Seconds())
	}
}

// runEmulationProfile runs the program repeatedly in functional emulation mode.
func runEmulationProfile(prog *loader.Program) (int, uint64) {
	emulator := emu.NewEmulator(emu.WithMaxInstructions(*maxCycles))
	emulator.LoadProgram(prog.Instructions)

	var total uint64
	for i := 0; i < *iterations; i++ {
		emulator.Reset()
		prog.LoadIntoMemory(emulator.Memory())
		if !emulator.Run() {
			fmt.Fprintf(os.Stderr, "Warning: run %d hit the instruction cap\n", i)
		}
		total += emulator.InstructionCount()
	}
	return *iterations, total
}

// runTimingProfile runs the program repeatedly on the Tomasulo engine,
// restarting the core between runs.
func runTimingProfile(prog *loader.Program) (int, uint64, uint64) {
	opts := []pipeline.PipelineOption{pipeline.WithMaxCycles(*maxCycles)}
	if *dcache {
		opts = append(opts, pipeline.WithDCache(cache.DefaultL1DConfig()))
	}

	c := core.NewCore(&emu.RegFile{}, emu.NewMemory(), opts...)
	c.Load(prog)

	var instrs, cycles uint64
	for i := 0; i < *iterations; i++ {
		if i > 0 {
			c.Restart()
		}
		if !c.Run() {
			fmt.Fprintf(os.Stderr, "Warning: run %d hit the cycle cap\n", i)
		}
		stats := c.Stats()
		instrs += stats.Instructions
		cycles += stats.Cycles
	}
	return *iterations, instrs, cycles
}
