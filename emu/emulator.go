package emu

import (
	"github.com/sarchlab/tomasim/insts"
)

// StepResult represents the result of executing a single instruction.
type StepResult struct {
	// Halted is true if the program counter left the program.
	Halted bool

	// Redirected is true if the instruction changed control flow.
	Redirected bool
}

// Emulator executes instructions one at a time, in program order, with no
// timing. It defines the architectural result a timing model must match.
type Emulator struct {
	regFile *RegFile
	memory  *Memory
	program []insts.Instruction
	pc      int

	// Execution state
	instructionCount uint64
	maxInstructions  uint64 // 0 means no limit
}

// EmulatorOption is a functional option for configuring the Emulator.
type EmulatorOption func(*Emulator)

// WithMaxInstructions sets the maximum number of instructions to execute.
// A value of 0 means no limit.
func WithMaxInstructions(max uint64) EmulatorOption {
	return func(e *Emulator) {
		e.maxInstructions = max
	}
}

// WithRegFile makes the emulator operate on an existing register file.
func WithRegFile(regFile *RegFile) EmulatorOption {
	return func(e *Emulator) {
		e.regFile = regFile
	}
}

// WithMemory makes the emulator operate on an existing memory.
func WithMemory(memory *Memory) EmulatorOption {
	return func(e *Emulator) {
		e.memory = memory
	}
}

// NewEmulator creates a new emulator with empty state.
func NewEmulator(opts ...EmulatorOption) *Emulator {
	e := &Emulator{
		regFile: &RegFile{},
		memory:  NewMemory(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// RegFile returns the emulator's register file.
func (e *Emulator) RegFile() *RegFile {
	return e.regFile
}

// Memory returns the emulator's memory.
func (e *Emulator) Memory() *Memory {
	return e.memory
}

// PC returns the index of the next instruction to execute.
func (e *Emulator) PC() int {
	return e.pc
}

// InstructionCount returns the number of instructions executed.
func (e *Emulator) InstructionCount() uint64 {
	return e.instructionCount
}

// LoadProgram installs a program and resets the program counter.
func (e *Emulator) LoadProgram(program []insts.Instruction) {
	e.program = append([]insts.Instruction(nil), program...)
	e.pc = 0
}

// Reset clears registers, memory, and counters. The program is kept.
func (e *Emulator) Reset() {
	e.regFile.Reset()
	e.memory.Reset()
	e.pc = 0
	e.instructionCount = 0
}

// Halted returns true once the program counter is outside the program.
func (e *Emulator) Halted() bool {
	return e.pc < 0 || e.pc >= len(e.program)
}

// Step executes a single instruction.
func (e *Emulator) Step() StepResult {
	if e.Halted() {
		return StepResult{Halted: true}
	}

	inst := e.program[e.pc]
	next := e.pc + 1
	redirected := false

	switch ops := inst.Operands.(type) {
	case insts.LoadOperands:
		addr := EffectiveAddress(e.regFile.ReadReg(ops.Base), ops.Offset)
		e.regFile.WriteReg(ops.Dest, e.memory.Read(addr))

	case insts.StoreOperands:
		addr := EffectiveAddress(e.regFile.ReadReg(ops.Base), ops.Offset)
		e.memory.Write(addr, e.regFile.ReadReg(ops.Src))

	case insts.ALUOperands:
		a := e.regFile.ReadReg(ops.Src1)
		b := e.regFile.ReadReg(ops.Src2)
		e.regFile.WriteReg(ops.Dest, ALU(ops.Opcode(), a, b))

	case insts.BranchOperands:
		if BranchTaken(e.regFile.ReadReg(ops.Src1), e.regFile.ReadReg(ops.Src2)) {
			next = BranchTarget(e.pc, ops.Offset)
			redirected = true
		}

	case insts.CallOperands:
		e.regFile.WriteReg(insts.LinkReg, uint16(e.pc+1))
		next = int(ops.Target)
		redirected = true

	case insts.RetOperands:
		next = int(e.regFile.ReadReg(insts.LinkReg))
		redirected = true
	}

	e.pc = next
	e.instructionCount++

	return StepResult{Halted: e.Halted(), Redirected: redirected}
}

// Run executes instructions until the program counter leaves the program
// or the instruction limit is reached. It returns true if the program
// halted normally.
func (e *Emulator) Run() bool {
	for !e.Halted() {
		if e.maxInstructions > 0 && e.instructionCount >= e.maxInstructions {
			return false
		}
		e.Step()
	}
	return true
}
