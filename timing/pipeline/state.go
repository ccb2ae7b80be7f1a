package pipeline

import (
	"github.com/sarchlab/tomasim/timing/latency"
)

// TimingRecord tracks one dynamic instruction through the engine. Cycle
// stamps are zero until the stage is reached.
type TimingRecord struct {
	ROBID  uint64
	InstID int
	PC     int

	Issued       uint64
	ExecStart    uint64
	ExecComplete uint64
	Write        uint64
	Commit       uint64

	Flushed bool
}

// engineState is everything a Reset discards. It is rebuilt from
// configuration rather than cleared field by field.
type engineState struct {
	cycle     uint64
	pc        int
	nextROBID uint64

	rob    reorderBuffer
	pools  map[latency.Unit][]*station
	timing []TimingRecord
	stats  Statistics
}

func newState(table *latency.Table, robSize int) *engineState {
	s := &engineState{
		cycle:     1,
		nextROBID: 1,
		rob:       newReorderBuffer(robSize),
		pools:     make(map[latency.Unit][]*station),
	}

	for _, u := range latency.Units() {
		n := table.StationCount(u)
		pool := make([]*station, n)
		for i := range pool {
			pool[i] = &station{unit: u, slot: i}
		}
		s.pools[u] = pool
	}

	return s
}

// freeStation returns the lowest-numbered free station of u, or nil.
func (s *engineState) freeStation(u latency.Unit) *station {
	for _, st := range s.pools[u] {
		if !st.busy {
			return st
		}
	}
	return nil
}

// forEachStation visits stations in catalog order, then slot order.
func (s *engineState) forEachStation(fn func(*station)) {
	for _, u := range latency.Units() {
		for _, st := range s.pools[u] {
			fn(st)
		}
	}
}

// stationFor returns the busy station owned by ROB entry id, or nil.
func (s *engineState) stationFor(id uint64) *station {
	var found *station
	s.forEachStation(func(st *station) {
		if found == nil && st.busy && st.robID == id {
			found = st
		}
	})
	return found
}

func (s *engineState) record(e *ROBEntry) *TimingRecord {
	return &s.timing[e.TimingIndex]
}
