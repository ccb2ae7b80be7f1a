package pipeline

import (
	"github.com/sarchlab/tomasim/emu"
	"github.com/sarchlab/tomasim/timing/cache"
)

// dataPort is where LOAD reads and STORE commits go.
type dataPort interface {
	Read(addr uint16) uint16
	Write(addr, value uint16)
}

// cachedDataPort routes data accesses through an L1 data cache. The cache
// is write-through, so memory always holds the architectural value and
// only the hit/miss statistics differ from an uncached run.
type cachedDataPort struct {
	cache *cache.Cache
}

func newCachedDataPort(config cache.Config, memory *emu.Memory) *cachedDataPort {
	return &cachedDataPort{
		cache: cache.New(config, cache.NewMemoryBacking(memory)),
	}
}

func (p *cachedDataPort) Read(addr uint16) uint16 {
	return p.cache.Read(addr).Data
}

func (p *cachedDataPort) Write(addr, value uint16) {
	p.cache.Write(addr, value)
}
