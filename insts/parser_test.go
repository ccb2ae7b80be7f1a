package insts_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tomasim/insts"
)

var _ = Describe("Parser", func() {
	var parser *insts.Parser

	BeforeEach(func() {
		parser = insts.NewParser()
	})

	Describe("Instruction formats", func() {
		It("should parse LOAD with offset and base", func() {
			prog, err := parser.Parse("LOAD R1, 4(R0)")
			Expect(err).NotTo(HaveOccurred())
			Expect(prog).To(HaveLen(1))
			Expect(prog[0].Op()).To(Equal(insts.OpLOAD))
			Expect(prog[0].Operands).To(Equal(insts.LoadOperands{Dest: 1, Base: 0, Offset: 4}))
			Expect(prog[0].Text).To(Equal("LOAD R1, 4(R0)"))
		})

		It("should parse STORE with a negative offset", func() {
			prog, err := parser.Parse("store r5, -2(r3)")
			Expect(err).NotTo(HaveOccurred())
			Expect(prog[0].Op()).To(Equal(insts.OpSTORE))
			Expect(prog[0].Operands).To(Equal(insts.StoreOperands{Src: 5, Base: 3, Offset: -2}))
		})

		It("should parse the three-register ALU forms", func() {
			prog, err := parser.Parse("ADD R1, R2, R3\nSUB R4, R5, R6\nMUL R7, R1, R2\nNAND R0, R1, R1")
			Expect(err).NotTo(HaveOccurred())
			Expect(prog).To(HaveLen(4))
			Expect(prog[0].Operands).To(Equal(insts.ALUOperands{Func: insts.ALUAdd, Dest: 1, Src1: 2, Src2: 3}))
			Expect(prog[1].Op()).To(Equal(insts.OpSUB))
			Expect(prog[2].Op()).To(Equal(insts.OpMUL))
			Expect(prog[3].Op()).To(Equal(insts.OpNAND))
		})

		It("should parse BEQ with a numeric offset", func() {
			prog, err := parser.Parse("BEQ R1, R2, -3")
			Expect(err).NotTo(HaveOccurred())
			Expect(prog[0].Operands).To(Equal(insts.BranchOperands{Src1: 1, Src2: 2, Offset: -3}))
		})

		It("should parse RET", func() {
			prog, err := parser.Parse("RET")
			Expect(err).NotTo(HaveOccurred())
			Expect(prog[0].Operands).To(Equal(insts.RetOperands{}))
		})

		It("should assign sequential IDs", func() {
			prog, err := parser.Parse("ADD R1, R0, R0\n\nADD R2, R1, R1\nRET")
			Expect(err).NotTo(HaveOccurred())
			Expect(prog[0].ID).To(Equal(0))
			Expect(prog[1].ID).To(Equal(1))
			Expect(prog[2].ID).To(Equal(2))
		})
	})

	Describe("Labels and comments", func() {
		It("should resolve BEQ labels to relative offsets", func() {
			src := `
				BEQ R0, R0, done
				ADD R1, R0, R0
				ADD R2, R0, R0
			done:
				ADD R3, R0, R0`
			prog, err := parser.Parse(src)
			Expect(err).NotTo(HaveOccurred())
			Expect(prog).To(HaveLen(4))
			Expect(prog[0].Operands).To(Equal(insts.BranchOperands{Src1: 0, Src2: 0, Offset: 3}))
		})

		It("should resolve backward BEQ labels", func() {
			src := "loop: ADD R1, R1, R2\nBEQ R1, R3, loop"
			prog, err := parser.Parse(src)
			Expect(err).NotTo(HaveOccurred())
			Expect(prog[1].Operands).To(Equal(insts.BranchOperands{Src1: 1, Src2: 3, Offset: -1}))
		})

		It("should resolve CALL labels to absolute indices", func() {
			src := "CALL fn\nADD R2, R0, R0\nfn: RET"
			prog, err := parser.Parse(src)
			Expect(err).NotTo(HaveOccurred())
			Expect(prog[0].Operands).To(Equal(insts.CallOperands{Target: 2}))
			Expect(prog[2].Text).To(Equal("RET"))
		})

		It("should accept numeric CALL targets", func() {
			prog, err := parser.Parse("CALL 5")
			Expect(err).NotTo(HaveOccurred())
			Expect(prog[0].Operands).To(Equal(insts.CallOperands{Target: 5}))
		})

		It("should skip comments and strip inline comments", func() {
			src := "; header\n// another\nADD R1, R0, R0 ; trailing\nNAND R2, R1, R1 // trailing"
			prog, err := parser.Parse(src)
			Expect(err).NotTo(HaveOccurred())
			Expect(prog).To(HaveLen(2))
			Expect(prog[0].Text).To(Equal("ADD R1, R0, R0"))
			Expect(prog[1].Text).To(Equal("NAND R2, R1, R1"))
		})

		It("should count a label on its own line against the next instruction", func() {
			src := "CALL target\ntarget:\n; comment\nRET"
			prog, err := parser.Parse(src)
			Expect(err).NotTo(HaveOccurred())
			Expect(prog[0].Operands).To(Equal(insts.CallOperands{Target: 1}))
		})
	})

	Describe("Errors", func() {
		It("should report unknown instructions with line numbers", func() {
			_, err := parser.Parse("ADD R1, R0, R0\nJMP 4")
			Expect(err).To(HaveOccurred())

			var perr *insts.ParseError
			Expect(errors.As(err, &perr)).To(BeTrue())
			Expect(perr.Line).To(Equal(2))
			Expect(perr.Error()).To(ContainSubstring("unknown instruction"))
		})

		It("should reject registers out of range", func() {
			_, err := parser.Parse("ADD R8, R0, R0")
			Expect(err).To(MatchError(ContainSubstring("out of range")))
		})

		It("should reject malformed memory operands", func() {
			_, err := parser.Parse("LOAD R1, R2")
			Expect(err).To(MatchError(ContainSubstring("offset(rB)")))
		})

		It("should reject wrong ALU arity", func() {
			_, err := parser.Parse("SUB R1, R2")
			Expect(err).To(MatchError(ContainSubstring("SUB requires format")))
		})

		It("should report undefined labels", func() {
			_, err := parser.Parse("BEQ R0, R0, nowhere")
			Expect(err).To(MatchError(ContainSubstring("undefined label: nowhere")))
		})

		It("should report duplicate labels", func() {
			_, err := parser.Parse("a: RET\na: RET")
			Expect(err).To(MatchError(ContainSubstring("duplicate label")))
		})

		It("should collect every error", func() {
			_, err := parser.Parse("FOO\nBAR\nRET R1")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("line 1"))
			Expect(err.Error()).To(ContainSubstring("line 2"))
			Expect(err.Error()).To(ContainSubstring("line 3"))
		})

		It("should start from a clean state on reuse", func() {
			_, err := parser.Parse("BOGUS")
			Expect(err).To(HaveOccurred())
			prog, err := parser.Parse("RET")
			Expect(err).NotTo(HaveOccurred())
			Expect(prog).To(HaveLen(1))
		})
	})
})
