// Package pipeline implements the Tomasulo scheduling engine: reservation
// stations, a reorder buffer, a single common data bus, in-order commit and
// flush on control-flow redirects.
//
// Each cycle runs commit, write-back, execute and issue, in that order.
// Commit goes first so a station freed by a retiring STORE, and a program
// counter redirected by a retiring branch, are visible to the same cycle's
// issue. Fetch always predicts fall-through.
package pipeline

import (
	"log/slog"

	"github.com/sarchlab/tomasim/emu"
	"github.com/sarchlab/tomasim/insts"
	"github.com/sarchlab/tomasim/timing/cache"
	"github.com/sarchlab/tomasim/timing/latency"
)

// DefaultMaxCycles bounds Run for programs that never terminate.
const DefaultMaxCycles = 1000

// PipelineOption is a functional option for configuring the Pipeline.
type PipelineOption func(*Pipeline)

// WithTimingConfig sets latencies, station counts and ROB size from a
// timing configuration.
func WithTimingConfig(config *latency.TimingConfig) PipelineOption {
	return func(p *Pipeline) {
		p.latencyTable = latency.NewTableWithConfig(config)
	}
}

// WithLatencyTable sets a custom latency table.
func WithLatencyTable(table *latency.Table) PipelineOption {
	return func(p *Pipeline) {
		p.latencyTable = table
	}
}

// WithROBSize overrides the reorder buffer capacity of the latency table.
func WithROBSize(size int) PipelineOption {
	return func(p *Pipeline) {
		p.robSize = size
	}
}

// WithMaxCycles sets the cycle cap of Run. Zero means DefaultMaxCycles.
func WithMaxCycles(max uint64) PipelineOption {
	return func(p *Pipeline) {
		p.maxCycles = max
	}
}

// WithDCache routes LOAD and STORE traffic through an L1 data cache.
func WithDCache(config cache.Config) PipelineOption {
	return func(p *Pipeline) {
		p.dcacheConfig = &config
	}
}

// WithLogger sets the logger for per-cycle debug records.
func WithLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// Pipeline is the Tomasulo engine. It owns the register file and memory it
// is given for the duration of a run and is not safe for concurrent use.
type Pipeline struct {
	regFile *emu.RegFile
	memory  *emu.Memory
	program []insts.Instruction

	latencyTable *latency.Table
	robSize      int
	maxCycles    uint64

	dcacheConfig *cache.Config
	dcache       *cachedDataPort
	port         dataPort

	logger *slog.Logger

	state *engineState
}

// NewPipeline creates a new engine over regFile and memory.
func NewPipeline(regFile *emu.RegFile, memory *emu.Memory, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		regFile:      regFile,
		memory:       memory,
		latencyTable: latency.NewTable(),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.robSize <= 0 {
		p.robSize = p.latencyTable.ROBSize()
	}
	if p.robSize <= 0 {
		p.robSize = latency.DefaultTimingConfig().ROBSize
	}
	if p.maxCycles == 0 {
		p.maxCycles = DefaultMaxCycles
	}
	if p.logger == nil {
		p.logger = slog.New(slog.DiscardHandler)
	}

	p.port = memory
	if p.dcacheConfig != nil {
		p.dcache = newCachedDataPort(*p.dcacheConfig, memory)
		p.port = p.dcache
	}

	p.state = newState(p.latencyTable, p.robSize)

	return p
}

// LoadProgram installs a copy of program and restarts the engine at PC 0.
// Registers and memory are left untouched.
func (p *Pipeline) LoadProgram(program []insts.Instruction) {
	p.program = append([]insts.Instruction(nil), program...)
	p.state = newState(p.latencyTable, p.robSize)
}

// LoadMemory replaces the memory contents with image.
func (p *Pipeline) LoadMemory(image map[uint16]uint16) {
	p.memory.Load(image)
	if p.dcache != nil {
		p.dcache.cache.Flush()
	}
}

// Program returns the loaded program.
func (p *Pipeline) Program() []insts.Instruction {
	return p.program
}

// PC returns the index of the next instruction to issue.
func (p *Pipeline) PC() int {
	return p.state.pc
}

// Cycle returns the number of the next cycle to run. It starts at 1.
func (p *Pipeline) Cycle() uint64 {
	return p.state.cycle
}

// LatencyTable returns the latency table in use.
func (p *Pipeline) LatencyTable() *latency.Table {
	return p.latencyTable
}

// ROBSize returns the reorder buffer capacity.
func (p *Pipeline) ROBSize() int {
	return p.robSize
}

// MaxCycles returns the cycle cap applied by Run.
func (p *Pipeline) MaxCycles() uint64 {
	return p.maxCycles
}

// ROBOccupancy returns the number of in-flight instructions.
func (p *Pipeline) ROBOccupancy() int {
	return p.state.rob.len()
}

// Stats returns the statistics collected since the last Reset.
func (p *Pipeline) Stats() Statistics {
	stats := p.state.stats
	if p.dcache != nil {
		cs := p.dcache.cache.Stats()
		stats.DCacheHits = cs.Hits
		stats.DCacheMisses = cs.Misses
	}
	return stats
}

// DCacheStats returns the data cache statistics.
func (p *Pipeline) DCacheStats() cache.Statistics {
	if p.dcache == nil {
		return cache.Statistics{}
	}
	return p.dcache.cache.Stats()
}

// UseDCache returns true if a data cache is configured.
func (p *Pipeline) UseDCache() bool {
	return p.dcache != nil
}

// fetchExhausted returns true if the PC is outside the program.
func (p *Pipeline) fetchExhausted() bool {
	return p.state.pc < 0 || p.state.pc >= len(p.program)
}

// Done returns true once the PC has left the program and the ROB is empty.
func (p *Pipeline) Done() bool {
	return p.fetchExhausted() && p.state.rob.empty()
}

// Tick executes one cycle.
func (p *Pipeline) Tick() {
	p.commit()
	p.writeBack()
	p.execute()

	if p.issue() {
		p.state.pc++
	}

	p.state.cycle++
	p.state.stats.Cycles++
}

// Run executes cycles until the program drains or the cycle cap is
// reached. It returns true if the program drained.
func (p *Pipeline) Run() bool {
	for !p.Done() && p.state.stats.Cycles < p.maxCycles {
		p.Tick()
	}
	return p.Done()
}

// RunCycles executes at most the given number of cycles.
// Returns true if work remains.
func (p *Pipeline) RunCycles(cycles uint64) bool {
	for i := uint64(0); i < cycles && !p.Done(); i++ {
		p.Tick()
	}
	return !p.Done()
}

// Reset discards all in-flight state and statistics and clears registers,
// memory and the data cache. The loaded program is kept.
func (p *Pipeline) Reset() {
	p.state = newState(p.latencyTable, p.robSize)
	p.regFile.Reset()
	p.memory.Reset()
	if p.dcache != nil {
		p.dcache.cache.Reset()
	}
}
