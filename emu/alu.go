package emu

import "github.com/sarchlab/tomasim/insts"

// ALU computes 16-bit results of the arithmetic and logic opcodes.
// Results wrap modulo 2^16.
func ALU(op insts.Opcode, a, b uint16) uint16 {
	switch op {
	case insts.OpADD:
		return a + b
	case insts.OpSUB:
		return a - b
	case insts.OpMUL:
		return a * b
	case insts.OpNAND:
		return ^(a & b)
	default:
		return 0
	}
}
