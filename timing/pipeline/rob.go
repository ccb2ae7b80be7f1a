package pipeline

import "github.com/sarchlab/tomasim/insts"

// CommitInfo is the opcode-specific data commit needs to retire an entry.
// It is filled in at write-back (or at execution completion for STORE).
type CommitInfo interface {
	isCommitInfo()
}

// BranchCommit is the commit data of a BEQ.
type BranchCommit struct {
	Target       int
	Taken        bool
	Mispredicted bool
}

// CallCommit is the commit data of a CALL.
type CallCommit struct {
	Target        int
	ReturnAddress uint16
}

// RetCommit is the commit data of a RET.
type RetCommit struct {
	ReturnAddress uint16
}

// StoreCommit is the commit data of a STORE.
type StoreCommit struct {
	Address uint16
	Value   uint16
}

func (BranchCommit) isCommitInfo() {}
func (CallCommit) isCommitInfo()   {}
func (RetCommit) isCommitInfo()    {}
func (StoreCommit) isCommitInfo()  {}

// ROBEntry is one in-flight instruction in the reorder buffer.
type ROBEntry struct {
	// ID is assigned at issue and increases monotonically until Reset.
	ID uint64
	// InstID is the ID of the static instruction.
	InstID int
	// PC is the program counter the instruction was issued from.
	PC int
	Op insts.Opcode

	Dest    insts.Reg
	HasDest bool

	// Ready is set when execution completes.
	Ready bool
	// Written is set when the entry has passed write-back.
	Written bool
	Value   uint16

	Commit CommitInfo

	// TimingIndex locates the entry's record in Pipeline.Timing.
	TimingIndex int
}

// reorderBuffer is a bounded FIFO of in-flight instructions in program
// order.
type reorderBuffer struct {
	entries  []*ROBEntry
	capacity int
}

func newReorderBuffer(capacity int) reorderBuffer {
	return reorderBuffer{
		entries:  make([]*ROBEntry, 0, capacity),
		capacity: capacity,
	}
}

func (r *reorderBuffer) len() int {
	return len(r.entries)
}

func (r *reorderBuffer) full() bool {
	return len(r.entries) >= r.capacity
}

func (r *reorderBuffer) empty() bool {
	return len(r.entries) == 0
}

func (r *reorderBuffer) push(e *ROBEntry) {
	r.entries = append(r.entries, e)
}

func (r *reorderBuffer) head() *ROBEntry {
	if len(r.entries) == 0 {
		return nil
	}
	return r.entries[0]
}

func (r *reorderBuffer) pop() {
	r.entries[0] = nil
	r.entries = r.entries[1:]
}

// truncate keeps the first n entries and returns the discarded ones.
func (r *reorderBuffer) truncate(n int) []*ROBEntry {
	dropped := append([]*ROBEntry(nil), r.entries[n:]...)
	for i := n; i < len(r.entries); i++ {
		r.entries[i] = nil
	}
	r.entries = r.entries[:n]
	return dropped
}

// find returns the entry with the given ID, or nil.
func (r *reorderBuffer) find(id uint64) *ROBEntry {
	for _, e := range r.entries {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// producer returns the most recently issued entry that writes reg.
func (r *reorderBuffer) producer(reg insts.Reg) *ROBEntry {
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if e.HasDest && e.Dest == reg {
			return e
		}
	}
	return nil
}

func (r *reorderBuffer) snapshot() []ROBEntry {
	out := make([]ROBEntry, len(r.entries))
	for i, e := range r.entries {
		out[i] = *e
	}
	return out
}
