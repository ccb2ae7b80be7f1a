package loader_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tomasim/emu"
	"github.com/sarchlab/tomasim/insts"
	"github.com/sarchlab/tomasim/loader"
)

var _ = Describe("Loader", func() {
	var tempDir string

	writeFile := func(name, content string) string {
		path := filepath.Join(tempDir, name)
		Expect(os.WriteFile(path, []byte(content), 0o644)).To(Succeed())
		return path
	}

	BeforeEach(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "loader-test")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		_ = os.RemoveAll(tempDir)
	})

	Describe("Load", func() {
		It("should assemble a program file", func() {
			path := writeFile("prog.s", "LOAD R1, 4(R0)\nADD R2, R1, R1\n")

			prog, err := loader.Load(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(prog.Path).To(Equal(path))
			Expect(prog.Instructions).To(HaveLen(2))
			Expect(prog.Instructions[1].Op()).To(Equal(insts.OpADD))
			Expect(prog.Memory).To(BeEmpty())
		})

		It("should return error for non-existent file", func() {
			_, err := loader.Load(filepath.Join(tempDir, "missing.s"))
			Expect(err).To(MatchError(ContainSubstring("failed to read program")))
		})

		It("should wrap assembly errors", func() {
			path := writeFile("bad.s", "ADD R1, R0, R0\nJUMP 3\n")

			_, err := loader.Load(path)
			Expect(err).To(MatchError(ContainSubstring("failed to assemble")))

			var perr *insts.ParseError
			Expect(errors.As(err, &perr)).To(BeTrue())
			Expect(perr.Line).To(Equal(2))
		})
	})

	Describe("LoadWithMemory", func() {
		It("should attach the memory image", func() {
			progPath := writeFile("prog.s", "LOAD R1, 4(R0)\n")
			memPath := writeFile("prog.mem", "4: 10\n8 = -1\n")

			prog, err := loader.LoadWithMemory(progPath, memPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(prog.Memory).To(Equal(map[uint16]uint16{4: 10, 8: 0xFFFF}))
		})

		It("should allow an empty memory path", func() {
			progPath := writeFile("prog.s", "RET\n")

			prog, err := loader.LoadWithMemory(progPath, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(prog.Memory).To(BeEmpty())
		})

		It("should report a missing memory image", func() {
			progPath := writeFile("prog.s", "RET\n")

			_, err := loader.LoadWithMemory(progPath, filepath.Join(tempDir, "none.mem"))
			Expect(err).To(MatchError(ContainSubstring("failed to open memory image")))
		})
	})

	Describe("Program", func() {
		It("should provide LoadIntoMemory helper", func() {
			prog := &loader.Program{Memory: map[uint16]uint16{1: 2}}
			memory := emu.NewMemory()
			memory.Write(9, 9)

			prog.LoadIntoMemory(memory)

			Expect(memory.Read(1)).To(Equal(uint16(2)))
			Expect(memory.Read(9)).To(BeZero())
		})
	})
})

var _ = Describe("ParseMemoryImage", func() {
	It("should accept both separators and comments", func() {
		src := `
; initial values
0: 5
1=7 // trailing
65535: 65535
`
		image, err := loader.ParseMemoryImage(strings.NewReader(src))
		Expect(err).NotTo(HaveOccurred())
		Expect(image).To(Equal(map[uint16]uint16{0: 5, 1: 7, 65535: 65535}))
	})

	It("should normalize negative values", func() {
		image, err := loader.ParseMemoryImage(strings.NewReader("3: -32768\n4: -2"))
		Expect(err).NotTo(HaveOccurred())
		Expect(image[3]).To(Equal(uint16(0x8000)))
		Expect(image[4]).To(Equal(uint16(0xFFFE)))
	})

	It("should let later lines overwrite earlier ones", func() {
		image, err := loader.ParseMemoryImage(strings.NewReader("3: 1\n3: 2"))
		Expect(err).NotTo(HaveOccurred())
		Expect(image[3]).To(Equal(uint16(2)))
	})

	It("should reject out-of-range addresses and values", func() {
		_, err := loader.ParseMemoryImage(strings.NewReader("65536: 1\n2: 70000\n3: -32769"))
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("line 1: invalid address"))
		Expect(err.Error()).To(ContainSubstring("line 2: invalid value"))
		Expect(err.Error()).To(ContainSubstring("line 3: invalid value"))
	})

	It("should reject lines without a separator", func() {
		_, err := loader.ParseMemoryImage(strings.NewReader("12 34"))
		Expect(err).To(MatchError(ContainSubstring("expected addr: value")))
	})
})
