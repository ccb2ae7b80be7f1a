// Package insts provides instruction definitions and assembly parsing for
// the 16-bit Tomasulo machine.
//
// The machine has eight 16-bit registers (R0 reads as zero once committed)
// and nine opcodes:
//   - Memory: LOAD, STORE
//   - ALU: ADD, SUB, MUL, NAND
//   - Control: BEQ, CALL, RET
//
// Usage:
//
//	prog, err := insts.NewParser().Parse("ADD R1, R0, R0\nADD R2, R1, R1")
//	fmt.Printf("Op: %v, Operands: %+v\n", prog[1].Op(), prog[1].Operands)
package insts

import "fmt"

// NumRegs is the number of general-purpose registers.
const NumRegs = 8

// LinkReg is the register CALL writes its return address to and RET reads.
const LinkReg Reg = 1

// Reg is a register index in the range 0-7.
type Reg uint8

// String returns the assembly name of the register.
func (r Reg) String() string {
	return fmt.Sprintf("R%d", uint8(r))
}

// Opcode identifies one of the nine supported operations.
type Opcode uint8

// Supported opcodes.
const (
	OpUnknown Opcode = iota
	OpLOAD
	OpSTORE
	OpADD
	OpSUB
	OpMUL
	OpNAND
	OpBEQ
	OpCALL
	OpRET
)

var opcodeNames = [...]string{
	OpUnknown: "UNKNOWN",
	OpLOAD:    "LOAD",
	OpSTORE:   "STORE",
	OpADD:     "ADD",
	OpSUB:     "SUB",
	OpMUL:     "MUL",
	OpNAND:    "NAND",
	OpBEQ:     "BEQ",
	OpCALL:    "CALL",
	OpRET:     "RET",
}

// String returns the mnemonic of the opcode.
func (o Opcode) String() string {
	if int(o) < len(opcodeNames) {
		return opcodeNames[o]
	}
	return fmt.Sprintf("Opcode(%d)", uint8(o))
}

// ParseOpcode looks up an opcode by its upper-case mnemonic.
func ParseOpcode(mnemonic string) (Opcode, bool) {
	for op := OpLOAD; op <= OpRET; op++ {
		if opcodeNames[op] == mnemonic {
			return op, true
		}
	}
	return OpUnknown, false
}

// Operands holds the opcode-specific fields of an instruction. Exactly one
// concrete type exists per opcode (ALU opcodes share one type keyed by
// ALUFunc), and the opcode is derived from the variant, so an instruction
// can never pair an opcode with fields that do not belong to it.
type Operands interface {
	Opcode() Opcode
}

// LoadOperands are the operands of LOAD dest, offset(base).
type LoadOperands struct {
	Dest   Reg
	Base   Reg
	Offset int16
}

// StoreOperands are the operands of STORE src, offset(base).
type StoreOperands struct {
	Src    Reg
	Base   Reg
	Offset int16
}

// ALUFunc selects the operation of an ALU instruction.
type ALUFunc uint8

// Supported ALU functions.
const (
	ALUAdd ALUFunc = iota
	ALUSub
	ALUMul
	ALUNand
)

var aluOpcodes = [...]Opcode{
	ALUAdd:  OpADD,
	ALUSub:  OpSUB,
	ALUMul:  OpMUL,
	ALUNand: OpNAND,
}

// ALUOperands are the operands of ADD, SUB, MUL and NAND.
type ALUOperands struct {
	Func ALUFunc
	Dest Reg
	Src1 Reg
	Src2 Reg
}

// BranchOperands are the operands of BEQ. Offset is relative to the index
// of the branch itself.
type BranchOperands struct {
	Src1   Reg
	Src2   Reg
	Offset int16
}

// CallOperands are the operands of CALL. Target is an absolute
// instruction index.
type CallOperands struct {
	Target uint16
}

// RetOperands are the (empty) operands of RET. RET implicitly reads LinkReg.
type RetOperands struct{}

// Opcode returns OpLOAD.
func (LoadOperands) Opcode() Opcode { return OpLOAD }

// Opcode returns OpSTORE.
func (StoreOperands) Opcode() Opcode { return OpSTORE }

// Opcode returns the opcode selected by Func.
func (o ALUOperands) Opcode() Opcode {
	if int(o.Func) < len(aluOpcodes) {
		return aluOpcodes[o.Func]
	}
	return OpUnknown
}

// Opcode returns OpBEQ.
func (BranchOperands) Opcode() Opcode { return OpBEQ }

// Opcode returns OpCALL.
func (CallOperands) Opcode() Opcode { return OpCALL }

// Opcode returns OpRET.
func (RetOperands) Opcode() Opcode { return OpRET }

// Instruction is a fully resolved instruction. It is immutable once built.
type Instruction struct {
	// ID is the sequential identity of the instruction in its program.
	ID int
	// Text is the original source text, kept for diagnostics.
	Text string
	// Operands holds the opcode-specific fields.
	Operands Operands
}

// Op returns the opcode, derived from the operand variant. An instruction
// without operands is OpUnknown.
func (i Instruction) Op() Opcode {
	if i.Operands == nil {
		return OpUnknown
	}
	return i.Operands.Opcode()
}

// Load builds LOAD dest, offset(base).
func Load(dest, base Reg, offset int16) Instruction {
	return Instruction{Operands: LoadOperands{Dest: dest, Base: base, Offset: offset}}
}

// Store builds STORE src, offset(base).
func Store(src, base Reg, offset int16) Instruction {
	return Instruction{Operands: StoreOperands{Src: src, Base: base, Offset: offset}}
}

// ALU builds a three-register ALU instruction. It panics if op is not one
// of ADD, SUB, MUL or NAND.
func ALU(op Opcode, dest, src1, src2 Reg) Instruction {
	for fn, aluOp := range aluOpcodes {
		if aluOp == op {
			return Instruction{Operands: ALUOperands{Func: ALUFunc(fn), Dest: dest, Src1: src1, Src2: src2}}
		}
	}
	panic(fmt.Sprintf("insts: %v is not an ALU opcode", op))
}

// Beq builds BEQ src1, src2, offset.
func Beq(src1, src2 Reg, offset int16) Instruction {
	return Instruction{Operands: BranchOperands{Src1: src1, Src2: src2, Offset: offset}}
}

// Call builds CALL target.
func Call(target uint16) Instruction {
	return Instruction{Operands: CallOperands{Target: target}}
}

// Ret builds RET.
func Ret() Instruction {
	return Instruction{Operands: RetOperands{}}
}

// WithText returns a copy of the instruction carrying the given source text.
func (i Instruction) WithText(text string) Instruction {
	i.Text = text
	return i
}

// Dest returns the register the instruction writes at commit, if any.
// CALL always writes LinkReg.
func (i Instruction) Dest() (Reg, bool) {
	switch ops := i.Operands.(type) {
	case LoadOperands:
		return ops.Dest, true
	case ALUOperands:
		return ops.Dest, true
	case CallOperands:
		return LinkReg, true
	}
	return 0, false
}

// Sources returns the registers the instruction reads, in operand order.
// For memory instructions the base register comes first.
func (i Instruction) Sources() []Reg {
	switch ops := i.Operands.(type) {
	case LoadOperands:
		return []Reg{ops.Base}
	case StoreOperands:
		return []Reg{ops.Base, ops.Src}
	case ALUOperands:
		return []Reg{ops.Src1, ops.Src2}
	case BranchOperands:
		return []Reg{ops.Src1, ops.Src2}
	case RetOperands:
		return []Reg{LinkReg}
	}
	return nil
}

// IsMemory returns true for LOAD and STORE.
func (i Instruction) IsMemory() bool {
	switch i.Operands.(type) {
	case LoadOperands, StoreOperands:
		return true
	}
	return false
}

// IsControl returns true for instructions that may redirect the program
// counter at commit.
func (i Instruction) IsControl() bool {
	switch i.Operands.(type) {
	case BranchOperands, CallOperands, RetOperands:
		return true
	}
	return false
}

// String renders the instruction in assembly syntax. The original source
// text is preferred when present.
func (i Instruction) String() string {
	if i.Text != "" {
		return i.Text
	}
	op := i.Op()
	switch ops := i.Operands.(type) {
	case LoadOperands:
		return fmt.Sprintf("%v %v, %d(%v)", op, ops.Dest, ops.Offset, ops.Base)
	case StoreOperands:
		return fmt.Sprintf("%v %v, %d(%v)", op, ops.Src, ops.Offset, ops.Base)
	case ALUOperands:
		return fmt.Sprintf("%v %v, %v, %v", op, ops.Dest, ops.Src1, ops.Src2)
	case BranchOperands:
		return fmt.Sprintf("%v %v, %v, %d", op, ops.Src1, ops.Src2, ops.Offset)
	case CallOperands:
		return fmt.Sprintf("%v %d", op, ops.Target)
	}
	return op.String()
}

// Renumber assigns sequential IDs starting at zero, in place, and returns
// the slice for chaining.
func Renumber(prog []Instruction) []Instruction {
	for idx := range prog {
		prog[idx].ID = idx
	}
	return prog
}
