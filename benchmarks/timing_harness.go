// Package benchmarks provides the benchmark programs and the harness that
// runs them on the timing engine and checks them against the functional
// emulator.
package benchmarks

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"time"

	"github.com/sarchlab/tomasim/emu"
	"github.com/sarchlab/tomasim/insts"
	"github.com/sarchlab/tomasim/timing/cache"
	"github.com/sarchlab/tomasim/timing/latency"
	"github.com/sarchlab/tomasim/timing/pipeline"
)

// BenchmarkResult holds the timing results for a single benchmark run.
type BenchmarkResult struct {
	// Name identifies the benchmark
	Name string `json:"name"`

	// Description explains what the benchmark measures
	Description string `json:"description"`

	// SimulatedCycles is the total cycle count from the timing simulator
	SimulatedCycles uint64 `json:"simulated_cycles"`

	// InstructionsRetired is the number of committed instructions
	InstructionsRetired uint64 `json:"instructions_retired"`

	// InstructionsIssued includes instructions that were later flushed
	InstructionsIssued uint64 `json:"instructions_issued"`

	// CPI is cycles per instruction
	CPI float64 `json:"cpi"`

	// ROBFullStalls and StationStalls count refused issue attempts
	ROBFullStalls uint64 `json:"rob_full_stalls"`
	StationStalls uint64 `json:"station_stalls"`

	// Flushes is the number of redirects that discarded in-flight work
	Flushes             uint64 `json:"flushes"`
	FlushedInstructions uint64 `json:"flushed_instructions"`

	// Branch statistics
	Branches              uint64  `json:"branches"`
	Mispredictions        uint64  `json:"mispredictions"`
	BranchAccuracyPercent float64 `json:"branch_accuracy_percent"`

	// DCacheHits/Misses (if cache enabled)
	DCacheHits   uint64 `json:"dcache_hits,omitempty"`
	DCacheMisses uint64 `json:"dcache_misses,omitempty"`

	// Completed is false if the run hit the cycle cap
	Completed bool `json:"completed"`

	// Verified is true if the final registers and memory match the
	// functional emulator and the expected memory values
	Verified bool `json:"verified"`

	// Mismatch describes the first difference found when not Verified
	Mismatch string `json:"mismatch,omitempty"`

	// WallTime is the actual time taken to run the simulation
	WallTime time.Duration `json:"wall_time_ns"`
}

// Benchmark defines a single benchmark program.
type Benchmark struct {
	// Name identifies the benchmark
	Name string

	// Description explains what the benchmark measures
	Description string

	// Source is the assembly text of the program
	Source string

	// Memory is the initial memory image
	Memory map[uint16]uint16

	// Expect lists memory words the program must leave behind
	Expect map[uint16]uint16
}

// Program assembles the benchmark source.
func (b Benchmark) Program() ([]insts.Instruction, error) {
	prog, err := insts.NewParser().Parse(b.Source)
	if err != nil {
		return nil, fmt.Errorf("benchmark %s: %w", b.Name, err)
	}
	return prog, nil
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// EnableDCache enables data cache simulation
	EnableDCache bool

	// Timing overrides the default machine configuration when set
	Timing *latency.TimingConfig

	// MaxCycles bounds each run (0 uses the engine default)
	MaxCycles uint64

	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	// Verbose enables detailed output
	Verbose bool
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		EnableDCache: true,
		MaxCycles:    10000,
		Output:       os.Stdout,
		Verbose:      false,
	}
}

// Harness runs timing benchmarks and reports results.
type Harness struct {
	config     HarnessConfig
	benchmarks []Benchmark
}

// NewHarness creates a new benchmark harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	return &Harness{
		config:     config,
		benchmarks: []Benchmark{},
	}
}

// AddBenchmark adds a benchmark to the harness.
func (h *Harness) AddBenchmark(b Benchmark) {
	h.benchmarks = append(h.benchmarks, b)
}

// AddBenchmarks adds multiple benchmarks to the harness.
func (h *Harness) AddBenchmarks(benchmarks []Benchmark) {
	h.benchmarks = append(h.benchmarks, benchmarks...)
}

// RunAll executes all benchmarks and returns results. A benchmark whose
// source does not assemble stops the run with an error.
func (h *Harness) RunAll() ([]BenchmarkResult, error) {
	results := make([]BenchmarkResult, 0, len(h.benchmarks))

	for _, bench := range h.benchmarks {
		result, err := h.runBenchmark(bench)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}

	return results, nil
}

func (h *Harness) pipelineOptions() []pipeline.PipelineOption {
	opts := []pipeline.PipelineOption{
		pipeline.WithMaxCycles(h.config.MaxCycles),
	}
	if h.config.Timing != nil {
		opts = append(opts, pipeline.WithTimingConfig(h.config.Timing))
	}
	if h.config.EnableDCache {
		opts = append(opts, pipeline.WithDCache(cache.DefaultL1DConfig()))
	}
	return opts
}

// runBenchmark executes a single benchmark.
func (h *Harness) runBenchmark(bench Benchmark) (BenchmarkResult, error) {
	prog, err := bench.Program()
	if err != nil {
		return BenchmarkResult{}, err
	}

	// Create fresh state
	regFile := &emu.RegFile{}
	memory := emu.NewMemory()

	pipe := pipeline.NewPipeline(regFile, memory, h.pipelineOptions()...)
	pipe.LoadProgram(prog)
	pipe.LoadMemory(bench.Memory)

	// Run simulation and measure time
	start := time.Now()
	completed := pipe.Run()
	wallTime := time.Since(start)

	// Collect statistics
	stats := pipe.Stats()
	result := BenchmarkResult{
		Name:                  bench.Name,
		Description:           bench.Description,
		SimulatedCycles:       stats.Cycles,
		InstructionsRetired:   stats.Committed,
		InstructionsIssued:    stats.Issued,
		CPI:                   stats.CPI(),
		ROBFullStalls:         stats.ROBFullStalls,
		StationStalls:         stats.StationStalls,
		Flushes:               stats.Flushes,
		FlushedInstructions:   stats.FlushedInstructions,
		Branches:              stats.Branches,
		Mispredictions:        stats.Mispredictions,
		BranchAccuracyPercent: stats.BranchAccuracy(),
		DCacheHits:            stats.DCacheHits,
		DCacheMisses:          stats.DCacheMisses,
		Completed:             completed,
		WallTime:              wallTime,
	}

	result.Mismatch = h.verify(bench, prog, regFile, memory, stats)
	result.Verified = completed && result.Mismatch == ""

	return result, nil
}

// verify runs the program on the functional emulator and compares the
// architectural state. It returns an empty string when everything matches.
func (h *Harness) verify(
	bench Benchmark,
	prog []insts.Instruction,
	regFile *emu.RegFile,
	memory *emu.Memory,
	stats pipeline.Statistics,
) string {
	ref := emu.NewEmulator(emu.WithMaxInstructions(h.config.MaxCycles))
	ref.LoadProgram(prog)
	ref.Memory().Load(bench.Memory)
	if !ref.Run() {
		return "reference emulator did not halt"
	}

	got, want := regFile.Snapshot(), ref.RegFile().Snapshot()
	for i := range got {
		if got[i] != want[i] {
			return fmt.Sprintf("R%d = %d, emulator has %d", i, got[i], want[i])
		}
	}

	gotMem, wantMem := memory.Snapshot(), ref.Memory().Snapshot()
	for _, addr := range slices.Sorted(maps.Keys(wantMem)) {
		if gotMem[addr] != wantMem[addr] {
			return fmt.Sprintf("mem[%d] = %d, emulator has %d", addr, gotMem[addr], wantMem[addr])
		}
	}
	if len(gotMem) != len(wantMem) {
		return fmt.Sprintf("%d memory words written, emulator wrote %d", len(gotMem), len(wantMem))
	}

	for _, addr := range slices.Sorted(maps.Keys(bench.Expect)) {
		if gotMem[addr] != bench.Expect[addr] {
			return fmt.Sprintf("mem[%d] = %d, expected %d", addr, gotMem[addr], bench.Expect[addr])
		}
	}

	if stats.Committed != ref.InstructionCount() {
		return fmt.Sprintf("%d instructions committed, emulator executed %d",
			stats.Committed, ref.InstructionCount())
	}

	return ""
}

// PrintResults outputs benchmark results in a human-readable format.
func (h *Harness) PrintResults(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output, "=== Tomasim Benchmark Results ===")
	_, _ = fmt.Fprintln(h.config.Output, "")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "Benchmark: %s\n", r.Name)
		_, _ = fmt.Fprintf(h.config.Output, "  Description: %s\n", r.Description)
		_, _ = fmt.Fprintf(h.config.Output, "  Verified: %v\n", r.Verified)
		if r.Mismatch != "" {
			_, _ = fmt.Fprintf(h.config.Output, "  Mismatch: %s\n", r.Mismatch)
		}
		_, _ = fmt.Fprintln(h.config.Output, "  --- Timing ---")
		_, _ = fmt.Fprintf(h.config.Output, "  Simulated Cycles:     %d\n", r.SimulatedCycles)
		_, _ = fmt.Fprintf(h.config.Output, "  Instructions Retired: %d\n", r.InstructionsRetired)
		_, _ = fmt.Fprintf(h.config.Output, "  CPI:                  %.3f\n", r.CPI)
		_, _ = fmt.Fprintf(h.config.Output, "  ROB Full Stalls:      %d\n", r.ROBFullStalls)
		_, _ = fmt.Fprintf(h.config.Output, "  Station Stalls:       %d\n", r.StationStalls)
		_, _ = fmt.Fprintf(h.config.Output, "  Flushes:              %d\n", r.Flushes)

		if h.config.Verbose {
			_, _ = fmt.Fprintf(h.config.Output, "  Issued:               %d\n", r.InstructionsIssued)
			_, _ = fmt.Fprintf(h.config.Output, "  Flushed:              %d\n", r.FlushedInstructions)
		}

		if r.DCacheHits > 0 || r.DCacheMisses > 0 {
			_, _ = fmt.Fprintln(h.config.Output, "  --- D-Cache ---")
			_, _ = fmt.Fprintf(h.config.Output, "  Hits:   %d\n", r.DCacheHits)
			_, _ = fmt.Fprintf(h.config.Output, "  Misses: %d\n", r.DCacheMisses)
		}

		if r.Branches > 0 {
			_, _ = fmt.Fprintln(h.config.Output, "  --- Branches ---")
			_, _ = fmt.Fprintf(h.config.Output, "  Branches:        %d\n", r.Branches)
			_, _ = fmt.Fprintf(h.config.Output, "  Mispredictions:  %d\n", r.Mispredictions)
			_, _ = fmt.Fprintf(h.config.Output, "  Accuracy:        %.1f%%\n", r.BranchAccuracyPercent)
		}

		_, _ = fmt.Fprintf(h.config.Output, "  Wall Time: %v\n", r.WallTime)
		_, _ = fmt.Fprintln(h.config.Output, "")
	}
}

// PrintCSV outputs benchmark results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,cycles,instructions,cpi,rob_full_stalls,station_stalls,flushes,branches,mispredictions,dcache_hits,dcache_misses,verified")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%d,%d,%.3f,%d,%d,%d,%d,%d,%d,%d,%v\n",
			r.Name,
			r.SimulatedCycles,
			r.InstructionsRetired,
			r.CPI,
			r.ROBFullStalls,
			r.StationStalls,
			r.Flushes,
			r.Branches,
			r.Mispredictions,
			r.DCacheHits,
			r.DCacheMisses,
			r.Verified,
		)
	}
}

// BenchmarkReport is the JSON document written by PrintJSON.
type BenchmarkReport struct {
	Metadata ReportMetadata    `json:"metadata"`
	Results  []BenchmarkResult `json:"results"`
	Summary  ReportSummary     `json:"summary"`
}

// ReportMetadata describes the machine the results were produced on.
type ReportMetadata struct {
	// Timestamp is when the report was generated (RFC 3339)
	Timestamp string `json:"timestamp"`

	// DCacheEnabled records whether the data cache was simulated
	DCacheEnabled bool `json:"dcache_enabled"`

	// Timing is the machine configuration used
	Timing *latency.TimingConfig `json:"timing"`
}

// ReportSummary holds aggregate statistics over all results.
type ReportSummary struct {
	// TotalBenchmarks is the number of benchmarks run
	TotalBenchmarks int `json:"total_benchmarks"`

	// Verified is the number of benchmarks that matched the emulator
	Verified int `json:"verified"`

	// TotalCycles is the sum of all simulated cycles
	TotalCycles uint64 `json:"total_cycles"`

	// TotalInstructions is the sum of all retired instructions
	TotalInstructions uint64 `json:"total_instructions"`

	// AverageCPI is the average cycles per instruction
	AverageCPI float64 `json:"average_cpi"`

	// TotalWallTime is the total wall clock time for all benchmarks
	TotalWallTime time.Duration `json:"total_wall_time_ns"`
}

// Summarize computes aggregate statistics over results.
func Summarize(results []BenchmarkResult) ReportSummary {
	summary := ReportSummary{TotalBenchmarks: len(results)}
	for _, r := range results {
		summary.TotalCycles += r.SimulatedCycles
		summary.TotalInstructions += r.InstructionsRetired
		summary.TotalWallTime += r.WallTime
		if r.Verified {
			summary.Verified++
		}
	}

	if summary.TotalInstructions > 0 {
		summary.AverageCPI = float64(summary.TotalCycles) / float64(summary.TotalInstructions)
	}
	return summary
}

// PrintJSON outputs benchmark results in JSON format for automated comparison.
func (h *Harness) PrintJSON(results []BenchmarkResult) error {
	timing := h.config.Timing
	if timing == nil {
		timing = latency.DefaultTimingConfig()
	}

	report := BenchmarkReport{
		Metadata: ReportMetadata{
			Timestamp:     time.Now().UTC().Format(time.RFC3339),
			DCacheEnabled: h.config.EnableDCache,
			Timing:        timing,
		},
		Results: results,
		Summary: Summarize(results),
	}

	encoder := json.NewEncoder(h.config.Output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
