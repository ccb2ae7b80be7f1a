// Package cache provides a word-addressed data cache model using Akita
// cache components.
//
// The cache sits between the load/store path and emu.Memory and records
// hit/miss statistics. It is write-through, so the backing memory is always
// authoritative; the fixed memory-access phase of the timing model is not
// affected by hits or misses.
package cache

import (
	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// Config holds cache configuration parameters. Sizes are in 16-bit words.
type Config struct {
	// Size in words
	Size int
	// Associativity (number of ways)
	Associativity int
	// BlockSize in words (cache line size)
	BlockSize int
}

// DefaultL1DConfig returns the default data cache: 256 words, 4-way,
// 8-word lines.
func DefaultL1DConfig() Config {
	return Config{
		Size:          256,
		Associativity: 4,
		BlockSize:     8,
	}
}

// AccessResult contains the result of a cache access.
type AccessResult struct {
	// Hit indicates whether the access was a cache hit.
	Hit bool
	// Data is the word read (for load operations).
	Data uint16
	// Evicted is true if a valid block was replaced.
	Evicted bool
	// EvictedAddr is the address of the evicted block (if Evicted is true).
	EvictedAddr uint16
}

// Statistics holds cache performance statistics.
type Statistics struct {
	Reads     uint64
	Writes    uint64
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// HitRate returns the hit rate as a percentage.
func (s Statistics) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// BackingStore interface for the next level in the memory hierarchy.
type BackingStore interface {
	// Read fetches one word from the backing store.
	Read(addr uint16) uint16
	// Write stores one word to the backing store.
	Write(addr, value uint16)
}

// Cache represents a data cache using Akita cache components.
type Cache struct {
	// Configuration
	config Config

	// Akita cache directory for tag/state management
	directory *akitacache.DirectoryImpl

	// Data storage - indexed by (setID * associativity + wayID)
	dataStore [][]uint16

	// Statistics
	stats Statistics

	// Backing store (written through on every write)
	backing BackingStore
}

// New creates a new cache with the given configuration.
func New(config Config, backing BackingStore) *Cache {
	numSets := config.Size / (config.Associativity * config.BlockSize)
	if numSets < 1 {
		numSets = 1
	}
	totalBlocks := numSets * config.Associativity

	dataStore := make([][]uint16, totalBlocks)
	for i := range dataStore {
		dataStore[i] = make([]uint16, config.BlockSize)
	}

	return &Cache{
		config: config,
		directory: akitacache.NewDirectory(
			numSets,
			config.Associativity,
			config.BlockSize,
			akitacache.NewLRUVictimFinder(),
		),
		dataStore: dataStore,
		backing:   backing,
	}
}

// Config returns the cache configuration.
func (c *Cache) Config() Config {
	return c.config
}

// Stats returns cache statistics.
func (c *Cache) Stats() Statistics {
	return c.stats
}

// ResetStats clears cache statistics.
func (c *Cache) ResetStats() {
	c.stats = Statistics{}
}

// blockIndex computes the index into dataStore for a block.
func (c *Cache) blockIndex(block *akitacache.Block) int {
	return block.SetID*c.config.Associativity + block.WayID
}

func (c *Cache) blockAddr(addr uint16) uint64 {
	return (uint64(addr) / uint64(c.config.BlockSize)) * uint64(c.config.BlockSize)
}

// Read performs a cache read of one word.
func (c *Cache) Read(addr uint16) AccessResult {
	c.stats.Reads++

	block := c.directory.Lookup(0, c.blockAddr(addr))
	if block != nil && block.IsValid {
		c.stats.Hits++
		c.directory.Visit(block)

		offset := uint64(addr) % uint64(c.config.BlockSize)
		return AccessResult{
			Hit:  true,
			Data: c.dataStore[c.blockIndex(block)][offset],
		}
	}

	c.stats.Misses++
	return c.handleMiss(addr, false, 0)
}

// Write performs a write-allocate, write-through store of one word.
func (c *Cache) Write(addr, value uint16) AccessResult {
	c.stats.Writes++

	if c.backing != nil {
		c.backing.Write(addr, value)
	}

	block := c.directory.Lookup(0, c.blockAddr(addr))
	if block != nil && block.IsValid {
		c.stats.Hits++
		c.directory.Visit(block)

		offset := uint64(addr) % uint64(c.config.BlockSize)
		c.dataStore[c.blockIndex(block)][offset] = value

		return AccessResult{Hit: true}
	}

	c.stats.Misses++
	return c.handleMiss(addr, true, value)
}

// handleMiss fills a block from the backing store.
func (c *Cache) handleMiss(addr uint16, isWrite bool, writeData uint16) AccessResult {
	result := AccessResult{}
	blockAddr := c.blockAddr(addr)

	victim := c.directory.FindVictim(blockAddr)
	if victim == nil {
		if !isWrite && c.backing != nil {
			result.Data = c.backing.Read(addr)
		}
		return result
	}

	if victim.IsValid {
		c.stats.Evictions++
		result.Evicted = true
		result.EvictedAddr = uint16(victim.Tag)
	}

	victimData := c.dataStore[c.blockIndex(victim)]
	for i := range victimData {
		if c.backing != nil {
			victimData[i] = c.backing.Read(uint16(blockAddr + uint64(i)))
		} else {
			victimData[i] = 0
		}
	}

	victim.Tag = blockAddr
	victim.IsValid = true
	victim.IsDirty = false

	offset := uint64(addr) % uint64(c.config.BlockSize)
	if isWrite {
		victimData[offset] = writeData
	} else {
		result.Data = victimData[offset]
	}

	c.directory.Visit(victim)

	return result
}

// Invalidate marks a cache line as invalid.
func (c *Cache) Invalidate(addr uint16) {
	block := c.directory.Lookup(0, c.blockAddr(addr))
	if block != nil && block.IsValid {
		block.IsValid = false
		block.IsDirty = false
	}
}

// Flush invalidates every line. No writeback is needed since the cache is
// write-through.
func (c *Cache) Flush() {
	for _, set := range c.directory.GetSets() {
		for _, block := range set.Blocks {
			block.IsValid = false
			block.IsDirty = false
		}
	}
}

// Reset invalidates all cache lines and clears statistics.
func (c *Cache) Reset() {
	c.directory.Reset()
	c.stats = Statistics{}
}
