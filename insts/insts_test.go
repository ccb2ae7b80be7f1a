package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tomasim/insts"
)

var _ = Describe("Insts Package", func() {
	It("should have an Instruction type", func() {
		var i insts.Instruction
		Expect(i).To(BeZero())
	})

	Describe("Opcode", func() {
		It("should render mnemonics", func() {
			Expect(insts.OpLOAD.String()).To(Equal("LOAD"))
			Expect(insts.OpNAND.String()).To(Equal("NAND"))
			Expect(insts.OpRET.String()).To(Equal("RET"))
		})

		It("should look up mnemonics", func() {
			op, ok := insts.ParseOpcode("BEQ")
			Expect(ok).To(BeTrue())
			Expect(op).To(Equal(insts.OpBEQ))

			_, ok = insts.ParseOpcode("JMP")
			Expect(ok).To(BeFalse())
		})
	})

	Describe("Operand variants", func() {
		It("should report the destination of a LOAD", func() {
			dest, ok := insts.Load(3, 0, 4).Dest()
			Expect(ok).To(BeTrue())
			Expect(dest).To(Equal(insts.Reg(3)))
		})

		It("should report no destination for STORE, BEQ and RET", func() {
			_, ok := insts.Store(3, 0, 4).Dest()
			Expect(ok).To(BeFalse())
			_, ok = insts.Beq(1, 2, 3).Dest()
			Expect(ok).To(BeFalse())
			_, ok = insts.Ret().Dest()
			Expect(ok).To(BeFalse())
		})

		It("should force the link register as CALL destination", func() {
			dest, ok := insts.Call(7).Dest()
			Expect(ok).To(BeTrue())
			Expect(dest).To(Equal(insts.LinkReg))
		})

		It("should list sources with the base register first", func() {
			Expect(insts.Store(5, 2, 0).Sources()).To(Equal([]insts.Reg{2, 5}))
			Expect(insts.Load(5, 2, 0).Sources()).To(Equal([]insts.Reg{2}))
			Expect(insts.ALU(insts.OpSUB, 1, 2, 3).Sources()).To(Equal([]insts.Reg{2, 3}))
			Expect(insts.Ret().Sources()).To(Equal([]insts.Reg{insts.LinkReg}))
			Expect(insts.Call(0).Sources()).To(BeEmpty())
		})

		It("should derive the opcode from the operand variant", func() {
			Expect(insts.Instruction{Operands: insts.LoadOperands{Dest: 1}}.Op()).To(Equal(insts.OpLOAD))
			Expect(insts.Instruction{Operands: insts.StoreOperands{Src: 1}}.Op()).To(Equal(insts.OpSTORE))
			Expect(insts.Instruction{Operands: insts.ALUOperands{Func: insts.ALUNand}}.Op()).To(Equal(insts.OpNAND))
			Expect(insts.Instruction{Operands: insts.BranchOperands{}}.Op()).To(Equal(insts.OpBEQ))
			Expect(insts.Instruction{Operands: insts.CallOperands{}}.Op()).To(Equal(insts.OpCALL))
			Expect(insts.Instruction{Operands: insts.RetOperands{}}.Op()).To(Equal(insts.OpRET))
		})

		It("should map each ALU opcode to its own function", func() {
			for _, op := range []insts.Opcode{insts.OpADD, insts.OpSUB, insts.OpMUL, insts.OpNAND} {
				Expect(insts.ALU(op, 1, 2, 3).Op()).To(Equal(op))
			}
		})

		It("should report OpUnknown without operands or with an unknown ALU function", func() {
			Expect(insts.Instruction{}.Op()).To(Equal(insts.OpUnknown))
			Expect(insts.Instruction{Operands: insts.ALUOperands{Func: 9}}.Op()).To(Equal(insts.OpUnknown))
		})

		It("should keep LOAD and STORE fields apart", func() {
			Expect(insts.Load(4, 2, 1).Operands).To(Equal(insts.LoadOperands{Dest: 4, Base: 2, Offset: 1}))
			Expect(insts.Store(4, 2, 1).Operands).To(Equal(insts.StoreOperands{Src: 4, Base: 2, Offset: 1}))
			Expect(insts.Store(4, 2, 1).IsMemory()).To(BeTrue())
		})

		It("should reject non-ALU opcodes in ALU", func() {
			Expect(func() { insts.ALU(insts.OpBEQ, 1, 2, 3) }).To(Panic())
		})

		It("should classify memory and control instructions", func() {
			Expect(insts.Load(1, 0, 0).IsMemory()).To(BeTrue())
			Expect(insts.Beq(0, 0, 1).IsControl()).To(BeTrue())
			Expect(insts.Ret().IsControl()).To(BeTrue())
			Expect(insts.ALU(insts.OpADD, 1, 0, 0).IsControl()).To(BeFalse())
		})
	})

	Describe("String", func() {
		It("should prefer source text", func() {
			inst := insts.ALU(insts.OpADD, 1, 2, 3).WithText("add r1, r2, r3")
			Expect(inst.String()).To(Equal("add r1, r2, r3"))
		})

		It("should render assembly when no text is present", func() {
			Expect(insts.Load(1, 0, -4).String()).To(Equal("LOAD R1, -4(R0)"))
			Expect(insts.ALU(insts.OpMUL, 5, 3, 2).String()).To(Equal("MUL R5, R3, R2"))
			Expect(insts.Call(9).String()).To(Equal("CALL 9"))
			Expect(insts.Ret().String()).To(Equal("RET"))
		})
	})

	It("should renumber programs sequentially", func() {
		prog := insts.Renumber([]insts.Instruction{insts.Ret(), insts.Ret(), insts.Ret()})
		Expect(prog[0].ID).To(Equal(0))
		Expect(prog[2].ID).To(Equal(2))
	})
})
