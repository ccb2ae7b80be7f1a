package pipeline

import (
	"github.com/sarchlab/tomasim/insts"
	"github.com/sarchlab/tomasim/timing/latency"
)

// Phase is the execution progress of a reservation station.
type Phase uint8

// Station phases. Only LOAD and STORE pass through the address and memory
// phases; every other operation goes straight to PhaseExecute.
const (
	// PhaseIdle means the station holds an operation that has not started.
	PhaseIdle Phase = iota
	// PhaseAddress computes the effective address of a memory operation.
	PhaseAddress
	// PhaseAwaitValue parks a STORE whose address is known but whose value
	// operand is still pending. No cycles are consumed while parked.
	PhaseAwaitValue
	// PhaseMemory is the memory-access phase of LOAD and STORE.
	PhaseMemory
	// PhaseExecute is the single execution phase of non-memory operations.
	PhaseExecute
	// PhaseDone means the result is computed and waiting for write-back
	// (or, for STORE, commit).
	PhaseDone
)

var phaseNames = [...]string{
	PhaseIdle:       "idle",
	PhaseAddress:    "address",
	PhaseAwaitValue: "await-value",
	PhaseMemory:     "memory",
	PhaseExecute:    "execute",
	PhaseDone:       "done",
}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "unknown"
}

// Operand is one source operand of a reservation station. While Pending,
// Tag names the ROB entry that will produce the value.
type Operand struct {
	Pending bool
	Tag     uint64
	Value   uint16
}

// stationPayload carries the opcode-family scratch state a station fills in
// while executing. ALU operations and RET carry none.
type stationPayload interface {
	isStationPayload()
}

// memPayload belongs to LOAD and STORE.
type memPayload struct {
	offset  int16
	address uint16
	value   uint16
}

// branchPayload belongs to BEQ.
type branchPayload struct {
	target       int
	taken        bool
	mispredicted bool
}

// callPayload belongs to CALL.
type callPayload struct {
	target        int
	returnAddress uint16
}

func (*memPayload) isStationPayload()    {}
func (*branchPayload) isStationPayload() {}
func (*callPayload) isStationPayload()   {}

// station is a reservation station slot owned by one functional unit kind.
type station struct {
	unit latency.Unit
	slot int

	busy   bool
	op     insts.Opcode
	robID  uint64
	instID int

	operands    [2]Operand
	numOperands int

	phase     Phase
	remaining uint64
	result    uint16
	payload   stationPayload
}

// clear returns the station to the free state.
func (s *station) clear() {
	s.busy = false
	s.op = insts.OpUnknown
	s.robID = 0
	s.instID = 0
	s.operands = [2]Operand{}
	s.numOperands = 0
	s.phase = PhaseIdle
	s.remaining = 0
	s.result = 0
	s.payload = nil
}

// canStart reports whether the operands needed to begin execution are
// available. Memory operations only need their base register to start.
func (s *station) canStart() bool {
	switch s.op {
	case insts.OpCALL:
		return true
	case insts.OpLOAD, insts.OpSTORE, insts.OpRET:
		return !s.operands[0].Pending
	default:
		return !s.operands[0].Pending && !s.operands[1].Pending
	}
}

// capture installs a broadcast value into every operand waiting on tag.
func (s *station) capture(tag uint64, value uint16) {
	for i := 0; i < s.numOperands; i++ {
		op := &s.operands[i]
		if op.Pending && op.Tag == tag {
			op.Pending = false
			op.Tag = 0
			op.Value = value
		}
	}
}

// StationState is a read-only view of a reservation station.
type StationState struct {
	Unit      latency.Unit
	Slot      int
	Busy      bool
	Op        insts.Opcode
	ROBID     uint64
	InstID    int
	Operands  []Operand
	Phase     Phase
	Remaining uint64
}

func (s *station) state() StationState {
	st := StationState{
		Unit: s.unit,
		Slot: s.slot,
		Busy: s.busy,
	}
	if !s.busy {
		return st
	}

	st.Op = s.op
	st.ROBID = s.robID
	st.InstID = s.instID
	st.Operands = append([]Operand(nil), s.operands[:s.numOperands]...)
	st.Phase = s.phase
	st.Remaining = s.remaining
	return st
}
