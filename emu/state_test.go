package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tomasim/emu"
	"github.com/sarchlab/tomasim/insts"
)

var _ = Describe("RegFile", func() {
	var regFile *emu.RegFile

	BeforeEach(func() {
		regFile = &emu.RegFile{}
	})

	It("should read back written values", func() {
		regFile.WriteReg(3, 0xBEEF)
		Expect(regFile.ReadReg(3)).To(Equal(uint16(0xBEEF)))
	})

	It("should discard writes to R0", func() {
		regFile.WriteReg(0, 42)
		Expect(regFile.ReadReg(0)).To(BeZero())
	})

	It("should clear on reset", func() {
		regFile.WriteReg(7, 1)
		regFile.Reset()
		Expect(regFile.Snapshot()).To(Equal([insts.NumRegs]uint16{}))
	})
})

var _ = Describe("Memory", func() {
	var memory *emu.Memory

	BeforeEach(func() {
		memory = emu.NewMemory()
	})

	It("should read unset addresses as zero", func() {
		Expect(memory.Read(0x1234)).To(BeZero())
		Expect(memory.Len()).To(BeZero())
	})

	It("should read back written values", func() {
		memory.Write(0xFFFF, 7)
		Expect(memory.Read(0xFFFF)).To(Equal(uint16(7)))
	})

	It("should replace contents on load without aliasing the image", func() {
		memory.Write(1, 1)
		image := map[uint16]uint16{4: 10, 8: 20}
		memory.Load(image)
		image[4] = 99

		Expect(memory.Read(1)).To(BeZero())
		Expect(memory.Read(4)).To(Equal(uint16(10)))
		Expect(memory.Len()).To(Equal(2))
	})

	It("should accept a nil image", func() {
		memory.Load(nil)
		memory.Write(2, 2)
		Expect(memory.Read(2)).To(Equal(uint16(2)))
	})

	It("should return an independent snapshot", func() {
		memory.Write(5, 5)
		snap := memory.Snapshot()
		snap[5] = 6
		Expect(memory.Read(5)).To(Equal(uint16(5)))
	})

	It("should clear on reset", func() {
		memory.Write(5, 5)
		memory.Reset()
		Expect(memory.Len()).To(BeZero())
	})
})

var _ = Describe("ALU", func() {
	DescribeTable("16-bit results",
		func(op insts.Opcode, a, b, want uint16) {
			Expect(emu.ALU(op, a, b)).To(Equal(want))
		},
		Entry("ADD", insts.OpADD, uint16(10), uint16(20), uint16(30)),
		Entry("ADD wraps", insts.OpADD, uint16(0xFFFF), uint16(2), uint16(1)),
		Entry("SUB", insts.OpSUB, uint16(20), uint16(5), uint16(15)),
		Entry("SUB wraps", insts.OpSUB, uint16(0), uint16(1), uint16(0xFFFF)),
		Entry("MUL", insts.OpMUL, uint16(300), uint16(300), uint16(90000&0xFFFF)),
		Entry("NAND", insts.OpNAND, uint16(0xF0F0), uint16(0xFF00), uint16(0x0FFF)),
		Entry("NAND of zero", insts.OpNAND, uint16(0), uint16(0), uint16(0xFFFF)),
		Entry("non-ALU opcode", insts.OpBEQ, uint16(1), uint16(1), uint16(0)),
	)

	It("should wrap effective addresses", func() {
		Expect(emu.EffectiveAddress(0xFFFE, 4)).To(Equal(uint16(2)))
		Expect(emu.EffectiveAddress(10, -4)).To(Equal(uint16(6)))
	})

	It("should compute relative branch targets", func() {
		Expect(emu.BranchTarget(3, 2)).To(Equal(5))
		Expect(emu.BranchTarget(3, -3)).To(Equal(0))
		Expect(emu.BranchTaken(4, 4)).To(BeTrue())
		Expect(emu.BranchTaken(4, 5)).To(BeFalse())
	})
})
