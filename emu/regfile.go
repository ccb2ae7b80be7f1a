// Package emu provides the architectural state of the 16-bit machine and a
// sequential functional emulator used as a reference model.
package emu

import "github.com/sarchlab/tomasim/insts"

// RegFile represents the architectural register file.
// It contains eight 16-bit general-purpose registers. R0 behaves as a
// constant zero: writes to it are discarded.
type RegFile struct {
	// R holds registers R0-R7.
	R [insts.NumRegs]uint16
}

// ReadReg reads a register value.
func (r *RegFile) ReadReg(reg insts.Reg) uint16 {
	return r.R[reg]
}

// WriteReg writes a value to a register. Writes to R0 are ignored.
func (r *RegFile) WriteReg(reg insts.Reg, value uint16) {
	if reg == 0 {
		return
	}
	r.R[reg] = value
}

// Reset clears every register.
func (r *RegFile) Reset() {
	r.R = [insts.NumRegs]uint16{}
}

// Snapshot returns a copy of the register values.
func (r *RegFile) Snapshot() [insts.NumRegs]uint16 {
	return r.R
}
