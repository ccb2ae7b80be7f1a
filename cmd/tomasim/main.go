// Package main provides the entry point for Tomasim.
// Tomasim is a cycle-accurate Tomasulo scheduling simulator for a small
// 16-bit machine.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/sarchlab/tomasim/emu"
	"github.com/sarchlab/tomasim/insts"
	"github.com/sarchlab/tomasim/loader"
	"github.com/sarchlab/tomasim/timing/cache"
	"github.com/sarchlab/tomasim/timing/core"
	"github.com/sarchlab/tomasim/timing/latency"
	"github.com/sarchlab/tomasim/timing/pipeline"
)

var (
	configPath = flag.String("config", "", "Path to timing configuration JSON file")
	memPath    = flag.String("mem", "", "Path to initial memory image (addr: value per line)")
	maxCycles  = flag.Uint64("max-cycles", pipeline.DefaultMaxCycles, "Cycle cap for the run")
	robSize    = flag.Int("rob", 0, "Reorder buffer size (overrides the config)")
	dcache     = flag.Bool("dcache", false, "Model an L1 data cache for hit/miss statistics")
	trace      = flag.Bool("trace", false, "Print the ROB and busy stations after every cycle")
	jsonOutput = flag.Bool("json", false, "Print the final report as JSON")
	verbose    = flag.Bool("v", false, "Verbose output (debug logging to stderr)")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: tomasim [options] <program.asm>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	programPath := flag.Arg(0)

	prog, err := loader.LoadWithMemory(programPath, *memPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		os.Exit(1)
	}

	timingConfig := latency.DefaultTimingConfig()
	if *configPath != "" {
		timingConfig, err = latency.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading timing config: %v\n", err)
			os.Exit(1)
		}
	}
	if *robSize > 0 {
		timingConfig.ROBSize = *robSize
	}
	if err := timingConfig.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error in timing config: %v\n", err)
		os.Exit(1)
	}

	opts := []pipeline.PipelineOption{
		pipeline.WithTimingConfig(timingConfig),
		pipeline.WithMaxCycles(*maxCycles),
	}
	if *dcache {
		opts = append(opts, pipeline.WithDCache(cache.DefaultL1DConfig()))
	}
	if *verbose {
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
		opts = append(opts, pipeline.WithLogger(slog.New(handler)))
	}

	c := core.NewCore(&emu.RegFile{}, emu.NewMemory(), opts...)
	c.Load(prog)

	if *verbose {
		fmt.Printf("Loaded: %s\n", programPath)
		fmt.Printf("Instructions: %d\n", len(prog.Instructions))
		fmt.Printf("Memory words: %d\n", len(prog.Memory))
	}

	completed := run(c, *trace, os.Stdout, terminalWidth())

	if *jsonOutput {
		if err := writeJSON(os.Stdout, c.Pipeline.Snapshot(), completed); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing report: %v\n", err)
			os.Exit(1)
		}
	} else {
		printReport(programPath, c.Pipeline, completed)
	}

	if !completed {
		os.Exit(2)
	}
}

// terminalWidth returns the width of stdout, or 0 when it is not a
// terminal.
func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	w, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return w
}

// run drives the core to completion under the pipeline's cycle cap,
// tracing each cycle to w when traced is set.
func run(c *core.Core, traced bool, w io.Writer, width int) bool {
	if !traced {
		return c.Run()
	}

	tr := newTracer(w, width, c.Pipeline.Program())
	limit := c.Pipeline.MaxCycles()

	for !c.Halted() && c.Pipeline.Stats().Cycles < limit {
		cycle := c.Pipeline.Cycle()
		c.Tick()
		tr.cycle(cycle, c.Pipeline.Snapshot())
	}
	return c.Halted()
}

// jsonReport is the JSON form of a finished run.
type jsonReport struct {
	Completed bool                    `json:"completed"`
	Cycles    uint64                  `json:"cycles"`
	Committed uint64                  `json:"committed"`
	CPI       float64                 `json:"cpi"`
	Accuracy  float64                 `json:"branch_accuracy"`
	Stats     pipeline.Statistics     `json:"stats"`
	Registers [insts.NumRegs]uint16   `json:"registers"`
	Memory    map[uint16]uint16       `json:"memory"`
	Timing    []pipeline.TimingRecord `json:"timing"`
}

func writeJSON(w io.Writer, snap pipeline.Snapshot, completed bool) error {
	report := jsonReport{
		Completed: completed,
		Cycles:    snap.Stats.Cycles,
		Committed: snap.Stats.Committed,
		CPI:       snap.Stats.CPI(),
		Accuracy:  snap.Stats.BranchAccuracy(),
		Stats:     snap.Stats,
		Registers: snap.Registers,
		Memory:    snap.Memory,
		Timing:    snap.Timing,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

func printReport(programPath string, pipe *pipeline.Pipeline, completed bool) {
	snap := pipe.Snapshot()
	stats := snap.Stats

	fmt.Printf("\n")
	fmt.Printf("Program: %s\n", programPath)
	if !completed {
		fmt.Printf("Stopped at the cycle cap (PC %d)\n", snap.PC)
	}
	fmt.Printf("Total Instructions: %d\n", stats.Committed)
	fmt.Printf("Total Cycles: %d\n", stats.Cycles)
	fmt.Printf("CPI: %.2f\n", stats.CPI())
	fmt.Printf("IPC: %.2f\n", stats.IPC())
	fmt.Printf("\n")
	fmt.Printf("Control:\n")
	fmt.Printf("  Branches:        %d\n", stats.Branches)
	fmt.Printf("  Mispredictions:  %d\n", stats.Mispredictions)
	fmt.Printf("  Branch accuracy: %.1f%%\n", stats.BranchAccuracy())
	fmt.Printf("  Flushes:         %d (%d instructions)\n", stats.Flushes, stats.FlushedInstructions)
	fmt.Printf("\n")
	fmt.Printf("Issue stalls:\n")
	fmt.Printf("  ROB full:        %d\n", stats.ROBFullStalls)
	fmt.Printf("  No station:      %d\n", stats.StationStalls)
	if pipe.UseDCache() {
		fmt.Printf("\n")
		fmt.Printf("D-Cache: %d hits, %d misses\n", stats.DCacheHits, stats.DCacheMisses)
	}
	fmt.Printf("\n")
	printTimingTable(os.Stdout, pipe.Program(), snap.Timing)
	fmt.Printf("\n")
	fmt.Printf("Registers:\n")
	for i, v := range snap.Registers {
		fmt.Printf("  R%d = %d\n", i, int16(v))
	}
}
