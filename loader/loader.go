// Package loader reads assembly programs and memory images from disk.
package loader

import (
	"fmt"
	"os"

	"github.com/sarchlab/tomasim/emu"
	"github.com/sarchlab/tomasim/insts"
)

// Program is an assembled program together with its initial memory image.
type Program struct {
	// Path is the source file the program was read from.
	Path string
	// Instructions is the resolved instruction stream.
	Instructions []insts.Instruction
	// Memory is the initial memory image. It may be empty.
	Memory map[uint16]uint16
}

// Load reads and assembles the program at path. The returned program has an
// empty memory image.
func Load(path string) (*Program, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read program: %w", err)
	}

	prog, err := insts.NewParser().Parse(string(src))
	if err != nil {
		return nil, fmt.Errorf("failed to assemble %s: %w", path, err)
	}

	return &Program{
		Path:         path,
		Instructions: prog,
		Memory:       make(map[uint16]uint16),
	}, nil
}

// LoadWithMemory reads the program at progPath and the memory image at
// memPath. An empty memPath leaves memory empty.
func LoadWithMemory(progPath, memPath string) (*Program, error) {
	prog, err := Load(progPath)
	if err != nil {
		return nil, err
	}
	if memPath == "" {
		return prog, nil
	}

	image, err := LoadMemoryImage(memPath)
	if err != nil {
		return nil, err
	}
	prog.Memory = image

	return prog, nil
}

// LoadMemoryImage reads a memory image file.
func LoadMemoryImage(path string) (map[uint16]uint16, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open memory image: %w", err)
	}
	defer func() { _ = f.Close() }()

	image, err := ParseMemoryImage(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return image, nil
}

// LoadIntoMemory replaces the contents of memory with the program's image.
func (p *Program) LoadIntoMemory(memory *emu.Memory) {
	memory.Load(p.Memory)
}
