package cache

import (
	"github.com/sarchlab/tomasim/emu"
)

// MemoryBacking wraps emu.Memory as a BackingStore.
type MemoryBacking struct {
	memory *emu.Memory
}

// NewMemoryBacking creates a new MemoryBacking adapter.
func NewMemoryBacking(memory *emu.Memory) *MemoryBacking {
	return &MemoryBacking{memory: memory}
}

// Read fetches one word from the backing memory.
func (m *MemoryBacking) Read(addr uint16) uint16 {
	return m.memory.Read(addr)
}

// Write stores one word to the backing memory.
func (m *MemoryBacking) Write(addr, value uint16) {
	m.memory.Write(addr, value)
}
