package emu

import "maps"

// Memory is a sparse, word-addressed store of 16-bit values.
// Unset addresses read as zero.
type Memory struct {
	words map[uint16]uint16
}

// NewMemory creates an empty memory.
func NewMemory() *Memory {
	return &Memory{words: make(map[uint16]uint16)}
}

// Read returns the value at addr, or 0 if it was never written.
func (m *Memory) Read(addr uint16) uint16 {
	return m.words[addr]
}

// Write stores value at addr.
func (m *Memory) Write(addr, value uint16) {
	m.words[addr] = value
}

// Load replaces the memory contents with a copy of image.
func (m *Memory) Load(image map[uint16]uint16) {
	m.words = maps.Clone(image)
	if m.words == nil {
		m.words = make(map[uint16]uint16)
	}
}

// Reset clears all contents.
func (m *Memory) Reset() {
	clear(m.words)
}

// Len returns the number of addresses that hold a value.
func (m *Memory) Len() int {
	return len(m.words)
}

// Snapshot returns a copy of the memory contents.
func (m *Memory) Snapshot() map[uint16]uint16 {
	return maps.Clone(m.words)
}
