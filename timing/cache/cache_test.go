package cache_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tomasim/emu"
	"github.com/sarchlab/tomasim/timing/cache"
)

var _ = Describe("Cache", func() {
	var (
		c       *cache.Cache
		memory  *emu.Memory
		backing *cache.MemoryBacking
	)

	BeforeEach(func() {
		memory = emu.NewMemory()
		backing = cache.NewMemoryBacking(memory)
		// Small cache for testing: 64 words, 4-way, 4-word lines = 4 sets
		config := cache.Config{
			Size:          64,
			Associativity: 4,
			BlockSize:     4,
		}
		c = cache.New(config, backing)
	})

	Describe("Read operations", func() {
		It("should miss on cold cache", func() {
			memory.Write(100, 0xBEEF)

			result := c.Read(100)
			Expect(result.Hit).To(BeFalse())
			Expect(result.Data).To(Equal(uint16(0xBEEF)))

			stats := c.Stats()
			Expect(stats.Reads).To(Equal(uint64(1)))
			Expect(stats.Misses).To(Equal(uint64(1)))
			Expect(stats.Hits).To(Equal(uint64(0)))
		})

		It("should hit on cached data", func() {
			memory.Write(100, 0xCAFE)

			c.Read(100)

			result := c.Read(100)
			Expect(result.Hit).To(BeTrue())
			Expect(result.Data).To(Equal(uint16(0xCAFE)))

			stats := c.Stats()
			Expect(stats.Reads).To(Equal(uint64(2)))
			Expect(stats.Misses).To(Equal(uint64(1)))
			Expect(stats.Hits).To(Equal(uint64(1)))
			Expect(stats.HitRate()).To(BeNumerically("~", 50.0))
		})

		It("should hit on different addresses in same cache line", func() {
			memory.Write(8, 0x1111)
			memory.Write(9, 0x2222)

			c.Read(8)

			result := c.Read(9)
			Expect(result.Hit).To(BeTrue())
			Expect(result.Data).To(Equal(uint16(0x2222)))
		})
	})

	Describe("Write operations", func() {
		It("should write-allocate on miss and write through", func() {
			result := c.Write(40, 0x1234)
			Expect(result.Hit).To(BeFalse())
			Expect(memory.Read(40)).To(Equal(uint16(0x1234)))

			readResult := c.Read(40)
			Expect(readResult.Hit).To(BeTrue())
			Expect(readResult.Data).To(Equal(uint16(0x1234)))
		})

		It("should hit on cached data", func() {
			c.Write(40, 0x1111)

			result := c.Write(40, 0x2222)
			Expect(result.Hit).To(BeTrue())
			Expect(memory.Read(40)).To(Equal(uint16(0x2222)))
			Expect(c.Read(40).Data).To(Equal(uint16(0x2222)))
		})
	})

	Describe("Eviction", func() {
		It("should evict the least recently used block when a set is full", func() {
			// Set 0 block addresses: 0, 16, 32, 48, 64
			c.Write(0, 0x1111)
			c.Write(16, 0x2222)
			c.Write(32, 0x3333)
			c.Write(48, 0x4444)

			Expect(c.Read(16).Hit).To(BeTrue())
			Expect(c.Read(32).Hit).To(BeTrue())
			Expect(c.Read(48).Hit).To(BeTrue())

			result := c.Write(64, 0x5555)
			Expect(result.Hit).To(BeFalse())
			Expect(result.Evicted).To(BeTrue())
			Expect(result.EvictedAddr).To(Equal(uint16(0)))
			Expect(c.Stats().Evictions).To(Equal(uint64(1)))

			// Memory is never stale with write-through.
			Expect(memory.Read(0)).To(Equal(uint16(0x1111)))
			Expect(c.Read(0).Hit).To(BeFalse())
		})
	})

	Describe("Invalidation", func() {
		It("should miss after invalidate", func() {
			c.Read(4)
			c.Invalidate(4)
			Expect(c.Read(4).Hit).To(BeFalse())
		})

		It("should miss after flush", func() {
			c.Read(4)
			c.Read(20)
			c.Flush()
			Expect(c.Read(4).Hit).To(BeFalse())
			Expect(c.Read(20).Hit).To(BeFalse())
		})

		It("should clear stats on reset", func() {
			c.Read(4)
			c.Reset()
			Expect(c.Stats()).To(Equal(cache.Statistics{}))
			Expect(c.Read(4).Hit).To(BeFalse())
		})

		It("should clear stats only on ResetStats", func() {
			c.Read(4)
			c.ResetStats()
			Expect(c.Stats().Reads).To(BeZero())
			Expect(c.Read(4).Hit).To(BeTrue())
		})
	})

	Describe("Default configurations", func() {
		It("should create L1D config", func() {
			config := cache.DefaultL1DConfig()
			Expect(config.Size).To(Equal(256))
			Expect(config.Associativity).To(Equal(4))
			Expect(config.BlockSize).To(Equal(8))
		})

		It("should report its configuration", func() {
			Expect(c.Config().BlockSize).To(Equal(4))
		})
	})
})
