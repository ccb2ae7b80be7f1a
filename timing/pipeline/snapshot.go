package pipeline

import (
	"github.com/sarchlab/tomasim/insts"
	"github.com/sarchlab/tomasim/timing/latency"
)

// Snapshot is a deep copy of the observable engine state at a cycle
// boundary.
type Snapshot struct {
	// Cycle is the number of the next cycle to run.
	Cycle     uint64
	PC        int
	Registers [insts.NumRegs]uint16
	Memory    map[uint16]uint16
	ROB       []ROBEntry
	Stations  map[latency.Unit][]StationState
	Timing    []TimingRecord
	Stats     Statistics
}

// Snapshot captures the current engine state.
func (p *Pipeline) Snapshot() Snapshot {
	s := p.state

	stations := make(map[latency.Unit][]StationState, len(s.pools))
	for u, pool := range s.pools {
		states := make([]StationState, len(pool))
		for i, st := range pool {
			states[i] = st.state()
		}
		stations[u] = states
	}

	return Snapshot{
		Cycle:     s.cycle,
		PC:        s.pc,
		Registers: p.regFile.Snapshot(),
		Memory:    p.memory.Snapshot(),
		ROB:       s.rob.snapshot(),
		Stations:  stations,
		Timing:    p.Timing(),
		Stats:     p.Stats(),
	}
}

// Timing returns a copy of the timing records of every instruction issued
// since the last Reset, in issue order.
func (p *Pipeline) Timing() []TimingRecord {
	return append([]TimingRecord(nil), p.state.timing...)
}
