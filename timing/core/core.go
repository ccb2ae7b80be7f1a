// Package core provides the simulated CPU core.
// It wraps the Tomasulo engine to provide a high-level interface.
package core

import (
	"github.com/sarchlab/tomasim/emu"
	"github.com/sarchlab/tomasim/loader"
	"github.com/sarchlab/tomasim/timing/pipeline"
)

// Stats holds performance statistics for the core.
type Stats struct {
	// Cycles is the total number of cycles simulated.
	Cycles uint64
	// Instructions is the number of instructions retired.
	Instructions uint64
	// Stalls is the number of cycles issue was refused for lack of a ROB
	// entry or reservation station.
	Stalls uint64
	// Flushes is the number of redirects that discarded in-flight work.
	Flushes uint64
	// Branches is the number of BEQ instructions retired.
	Branches uint64
	// Mispredictions is the number of retired BEQs that were taken.
	Mispredictions uint64
}

// Core represents a simulated CPU core.
type Core struct {
	// Pipeline is the underlying Tomasulo engine.
	Pipeline *pipeline.Pipeline

	// Shared resources
	regFile *emu.RegFile
	memory  *emu.Memory

	program *loader.Program
}

// NewCore creates a new Core with the given register file and memory.
func NewCore(regFile *emu.RegFile, memory *emu.Memory, opts ...pipeline.PipelineOption) *Core {
	return &Core{
		Pipeline: pipeline.NewPipeline(regFile, memory, opts...),
		regFile:  regFile,
		memory:   memory,
	}
}

// RegFile returns the core's register file.
func (c *Core) RegFile() *emu.RegFile {
	return c.regFile
}

// Memory returns the core's memory.
func (c *Core) Memory() *emu.Memory {
	return c.memory
}

// Load installs a program and its memory image.
func (c *Core) Load(prog *loader.Program) {
	c.program = prog
	c.Pipeline.LoadProgram(prog.Instructions)
	c.Pipeline.LoadMemory(prog.Memory)
}

// Tick executes one cycle.
func (c *Core) Tick() {
	c.Pipeline.Tick()
}

// Halted returns true once the program has drained.
func (c *Core) Halted() bool {
	return c.Pipeline.Done()
}

// Stats returns performance statistics for the core.
func (c *Core) Stats() Stats {
	pipeStats := c.Pipeline.Stats()
	return Stats{
		Cycles:         pipeStats.Cycles,
		Instructions:   pipeStats.Committed,
		Stalls:         pipeStats.ROBFullStalls + pipeStats.StationStalls,
		Flushes:        pipeStats.Flushes,
		Branches:       pipeStats.Branches,
		Mispredictions: pipeStats.Mispredictions,
	}
}

// Run executes the core until it halts or reaches the cycle cap.
// Returns true if the program drained.
func (c *Core) Run() bool {
	return c.Pipeline.Run()
}

// RunCycles executes the core for the specified number of cycles.
// Returns true if still running, false if halted.
func (c *Core) RunCycles(cycles uint64) bool {
	return c.Pipeline.RunCycles(cycles)
}

// Reset clears all core state, including registers and memory.
func (c *Core) Reset() {
	c.Pipeline.Reset()
}

// Restart resets the core and reloads the memory image of the loaded
// program so it can run again from the beginning.
func (c *Core) Restart() {
	c.Pipeline.Reset()
	if c.program != nil {
		c.Pipeline.LoadMemory(c.program.Memory)
	}
}
