package pipeline

import (
	"github.com/sarchlab/tomasim/emu"
	"github.com/sarchlab/tomasim/insts"
)

// issue admits the instruction at the PC into the ROB and a reservation
// station. It returns false, changing nothing but stall counters, if the
// PC is outside the program, the ROB is full, or no station is free.
func (p *Pipeline) issue() bool {
	s := p.state
	if p.fetchExhausted() {
		return false
	}

	inst := p.program[s.pc]
	if s.rob.full() {
		s.stats.ROBFullStalls++
		p.logger.Debug("issue stalled: rob full",
			"cycle", s.cycle, "inst", inst.ID, "op", inst.Op())
		return false
	}

	unit := p.latencyTable.UnitFor(inst.Op())
	st := s.freeStation(unit)
	if st == nil {
		s.stats.StationStalls++
		p.logger.Debug("issue stalled: no free station",
			"cycle", s.cycle, "inst", inst.ID, "op", inst.Op(), "unit", unit)
		return false
	}

	id := s.nextROBID
	s.nextROBID++

	dest, hasDest := inst.Dest()
	entry := &ROBEntry{
		ID:          id,
		InstID:      inst.ID,
		PC:          s.pc,
		Op:          inst.Op(),
		Dest:        dest,
		HasDest:     hasDest,
		TimingIndex: len(s.timing),
	}
	s.timing = append(s.timing, TimingRecord{
		ROBID:  id,
		InstID: inst.ID,
		PC:     s.pc,
		Issued: s.cycle,
	})

	st.busy = true
	st.op = inst.Op()
	st.robID = id
	st.instID = inst.ID
	st.phase = PhaseIdle

	// Sources are resolved before the new entry joins the ROB so an
	// instruction never waits on itself.
	sources := inst.Sources()
	st.numOperands = len(sources)
	for i, reg := range sources {
		st.operands[i] = p.resolveOperand(reg)
	}

	switch ops := inst.Operands.(type) {
	case insts.LoadOperands:
		st.payload = &memPayload{offset: ops.Offset}
	case insts.StoreOperands:
		st.payload = &memPayload{offset: ops.Offset}
	case insts.BranchOperands:
		st.payload = &branchPayload{target: emu.BranchTarget(s.pc, ops.Offset)}
	case insts.CallOperands:
		st.payload = &callPayload{
			target:        int(ops.Target),
			returnAddress: uint16(s.pc + 1),
		}
	}

	s.rob.push(entry)
	s.stats.Issued++

	p.logger.Debug("issue",
		"cycle", s.cycle, "rob", id, "inst", inst.ID, "op", inst.Op(),
		"unit", unit, "slot", st.slot)

	return true
}

// resolveOperand reads reg through the ROB. The most recently issued
// producer of reg supplies a tag while it is executing and its value once
// ready; with no producer in flight the committed register is read.
func (p *Pipeline) resolveOperand(reg insts.Reg) Operand {
	// R0 is hardwired; a producer targeting it never becomes visible.
	if reg == 0 {
		return Operand{}
	}

	e := p.state.rob.producer(reg)
	switch {
	case e == nil:
		return Operand{Value: p.regFile.ReadReg(reg)}
	case e.Ready:
		// Forward the uncommitted value; the register file is still stale.
		return Operand{Value: e.Value}
	default:
		return Operand{Pending: true, Tag: e.ID}
	}
}

// execute advances every busy station by one cycle, in catalog order.
func (p *Pipeline) execute() {
	p.state.forEachStation(func(st *station) {
		if st.busy {
			p.advance(st)
		}
	})
}

// advance moves one station forward. The first execution cycle counts
// toward latency, so a latency of L completes in the L-th cycle. A cycle
// that enters the memory phase from another phase only loads the counter.
func (p *Pipeline) advance(st *station) {
	s := p.state

	switch st.phase {
	case PhaseIdle:
		if !st.canStart() {
			return
		}
		if e := s.rob.find(st.robID); e != nil {
			s.record(e).ExecStart = s.cycle
		}

		if st.op == insts.OpLOAD || st.op == insts.OpSTORE {
			st.phase = PhaseAddress
			st.remaining = p.latencyTable.AddressLatency()
		} else {
			st.phase = PhaseExecute
			st.remaining = p.latencyTable.GetLatency(st.op)
		}
		p.countDown(st)

	case PhaseAddress, PhaseMemory, PhaseExecute:
		p.countDown(st)

	case PhaseAwaitValue:
		if st.operands[1].Pending {
			return
		}
		p.enterMemory(st)

	case PhaseDone:
	}
}

func (p *Pipeline) countDown(st *station) {
	if st.remaining > 0 {
		st.remaining--
	}
	if st.remaining > 0 {
		return
	}

	switch st.phase {
	case PhaseAddress:
		mem := st.payload.(*memPayload)
		mem.address = emu.EffectiveAddress(st.operands[0].Value, mem.offset)
		if st.op == insts.OpSTORE && st.operands[1].Pending {
			st.phase = PhaseAwaitValue
			return
		}
		p.enterMemory(st)
	case PhaseMemory, PhaseExecute:
		p.complete(st)
	}
}

func (p *Pipeline) enterMemory(st *station) {
	st.phase = PhaseMemory
	st.remaining = p.latencyTable.MemoryLatency()
	if st.remaining == 0 {
		p.complete(st)
	}
}

// complete computes the station's result and marks its ROB entry ready.
func (p *Pipeline) complete(st *station) {
	s := p.state
	a, b := st.operands[0].Value, st.operands[1].Value

	switch st.op {
	case insts.OpADD, insts.OpSUB, insts.OpMUL, insts.OpNAND:
		st.result = emu.ALU(st.op, a, b)
	case insts.OpLOAD:
		mem := st.payload.(*memPayload)
		st.result = p.port.Read(mem.address)
	case insts.OpSTORE:
		mem := st.payload.(*memPayload)
		mem.value = b
		st.result = mem.address
	case insts.OpBEQ:
		br := st.payload.(*branchPayload)
		br.taken = emu.BranchTaken(a, b)
		br.mispredicted = br.taken
		st.result = 0
		if br.taken {
			st.result = 1
		}
	case insts.OpCALL:
		st.result = st.payload.(*callPayload).returnAddress
	case insts.OpRET:
		st.result = a
	}

	st.phase = PhaseDone
	st.remaining = 0

	e := s.rob.find(st.robID)
	if e == nil {
		return
	}
	e.Ready = true
	e.Value = st.result
	if st.op == insts.OpSTORE {
		mem := st.payload.(*memPayload)
		e.Commit = StoreCommit{Address: mem.address, Value: mem.value}
	}
	s.record(e).ExecComplete = s.cycle
}

// writeBack publishes the program-order-earliest ready, unwritten result
// on the common data bus and frees its station. STORE never writes back.
// RET and a mispredicted BEQ are marked written without broadcasting.
func (p *Pipeline) writeBack() {
	s := p.state

	var e *ROBEntry
	for _, cand := range s.rob.entries {
		if cand.Ready && !cand.Written && cand.Op != insts.OpSTORE {
			e = cand
			break
		}
	}
	if e == nil {
		return
	}

	st := s.stationFor(e.ID)
	broadcast := true
	if st != nil {
		switch pl := st.payload.(type) {
		case *branchPayload:
			e.Commit = BranchCommit{
				Target:       pl.target,
				Taken:        pl.taken,
				Mispredicted: pl.mispredicted,
			}
			broadcast = !pl.mispredicted
		case *callPayload:
			e.Commit = CallCommit{Target: pl.target, ReturnAddress: pl.returnAddress}
		}
	}
	if e.Op == insts.OpRET {
		e.Commit = RetCommit{ReturnAddress: e.Value}
		broadcast = false
	}

	e.Written = true
	s.record(e).Write = s.cycle

	if broadcast {
		s.forEachStation(func(other *station) {
			if other.busy {
				other.capture(e.ID, e.Value)
			}
		})
		s.stats.Broadcasts++
	}

	if st != nil {
		st.clear()
	}

	p.logger.Debug("write-back",
		"cycle", s.cycle, "rob", e.ID, "inst", e.InstID, "op", e.Op,
		"value", e.Value, "broadcast", broadcast)
}

// commit retires the ROB head if it is finished. STORE retires as soon as
// it is ready; everything else must have passed write-back.
func (p *Pipeline) commit() {
	s := p.state
	e := s.rob.head()
	if e == nil {
		return
	}
	if e.Op == insts.OpSTORE {
		if !e.Ready {
			return
		}
	} else if !e.Written {
		return
	}

	switch info := e.Commit.(type) {
	case StoreCommit:
		p.port.Write(info.Address, info.Value)
		if st := s.stationFor(e.ID); st != nil {
			st.clear()
		}

	case CallCommit:
		p.regFile.WriteReg(insts.LinkReg, info.ReturnAddress)
		p.flush()
		p.redirect(e, info.Target)

	case RetCommit:
		p.flush()
		p.redirect(e, int(info.ReturnAddress))

	case BranchCommit:
		s.stats.Branches++
		if info.Mispredicted {
			s.stats.Mispredictions++
			p.flush()
			p.redirect(e, info.Target)
		}

	default:
		if e.HasDest {
			p.regFile.WriteReg(e.Dest, e.Value)
		}
	}

	s.record(e).Commit = s.cycle
	s.stats.Committed++
	s.rob.pop()

	p.logger.Debug("commit",
		"cycle", s.cycle, "rob", e.ID, "inst", e.InstID, "op", e.Op)
}

// flush discards every ROB entry younger than the head and frees the
// stations they hold.
func (p *Pipeline) flush() {
	s := p.state
	dropped := s.rob.truncate(1)
	if len(dropped) == 0 {
		return
	}

	robIDs := make(map[uint64]bool, len(dropped))
	instIDs := make(map[int]bool, len(dropped))
	for _, e := range dropped {
		robIDs[e.ID] = true
		instIDs[e.InstID] = true
		s.record(e).Flushed = true
	}

	head := s.rob.head()
	s.forEachStation(func(st *station) {
		if !st.busy || st.robID == head.ID {
			return
		}
		if robIDs[st.robID] || instIDs[st.instID] {
			st.clear()
		}
	})

	s.stats.Flushes++
	s.stats.FlushedInstructions += uint64(len(dropped))

	p.logger.Debug("flush",
		"cycle", s.cycle, "rob", head.ID, "flushed", len(dropped))
}

func (p *Pipeline) redirect(e *ROBEntry, target int) {
	p.state.pc = target
	p.logger.Debug("redirect",
		"cycle", p.state.cycle, "rob", e.ID, "inst", e.InstID, "target", target)
}
