package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tomasim/emu"
	"github.com/sarchlab/tomasim/insts"
)

var _ = Describe("Emulator", func() {
	var e *emu.Emulator

	BeforeEach(func() {
		e = emu.NewEmulator()
	})

	run := func(src string) {
		prog, err := insts.NewParser().Parse(src)
		Expect(err).NotTo(HaveOccurred())
		e.LoadProgram(prog)
		Expect(e.Run()).To(BeTrue())
	}

	It("should start halted with no program", func() {
		Expect(e.Halted()).To(BeTrue())
		Expect(e.Step().Halted).To(BeTrue())
		Expect(e.InstructionCount()).To(BeZero())
	})

	It("should load and add", func() {
		e.Memory().Load(map[uint16]uint16{4: 10, 8: 20})
		run("LOAD R1, 4(R0)\nLOAD R2, 8(R0)\nADD R3, R1, R2")

		Expect(e.RegFile().ReadReg(3)).To(Equal(uint16(30)))
		Expect(e.InstructionCount()).To(Equal(uint64(3)))
	})

	It("should store to memory", func() {
		e.Memory().Load(map[uint16]uint16{0: 7})
		run("LOAD R1, 0(R0)\nSTORE R1, 3(R1)")

		Expect(e.Memory().Read(10)).To(Equal(uint16(7)))
	})

	It("should skip the fall-through path on a taken branch", func() {
		run("BEQ R0, R0, 2\nADD R1, R0, R0\nNAND R2, R0, R0")

		Expect(e.RegFile().ReadReg(2)).To(Equal(uint16(0xFFFF)))
		Expect(e.InstructionCount()).To(Equal(uint64(2)))
	})

	It("should fall through a not-taken branch", func() {
		run("NAND R1, R0, R0\nBEQ R0, R1, 5\nNAND R2, R0, R0")

		Expect(e.RegFile().ReadReg(2)).To(Equal(uint16(0xFFFF)))
		Expect(e.InstructionCount()).To(Equal(uint64(3)))
	})

	It("should call and return", func() {
		run(`
			CALL fn
			ADD R2, R1, R1
			BEQ R0, R0, end
		fn: RET
		end:`)

		Expect(e.RegFile().ReadReg(1)).To(Equal(uint16(1)))
		Expect(e.RegFile().ReadReg(2)).To(Equal(uint16(2)))
		Expect(e.InstructionCount()).To(Equal(uint64(4)))
	})

	It("should report redirects", func() {
		prog := insts.Renumber([]insts.Instruction{insts.Call(1), insts.Ret()})
		e.LoadProgram(prog)

		Expect(e.Step().Redirected).To(BeTrue())
		Expect(e.PC()).To(Equal(1))
	})

	It("should stop at the instruction limit", func() {
		e = emu.NewEmulator(emu.WithMaxInstructions(10))
		e.LoadProgram([]insts.Instruction{insts.Beq(0, 0, 0)})

		Expect(e.Run()).To(BeFalse())
		Expect(e.InstructionCount()).To(Equal(uint64(10)))
	})

	It("should share state passed in through options", func() {
		regFile := &emu.RegFile{}
		memory := emu.NewMemory()
		e = emu.NewEmulator(emu.WithRegFile(regFile), emu.WithMemory(memory))
		e.LoadProgram([]insts.Instruction{insts.ALU(insts.OpNAND, 4, 0, 0)})
		e.Run()

		Expect(regFile.ReadReg(4)).To(Equal(uint16(0xFFFF)))
		Expect(e.Memory()).To(BeIdenticalTo(memory))
	})

	It("should reset state but keep the program", func() {
		run("NAND R1, R0, R0")
		e.Reset()

		Expect(e.RegFile().ReadReg(1)).To(BeZero())
		Expect(e.PC()).To(BeZero())
		Expect(e.Run()).To(BeTrue())
		Expect(e.RegFile().ReadReg(1)).To(Equal(uint16(0xFFFF)))
	})
})
