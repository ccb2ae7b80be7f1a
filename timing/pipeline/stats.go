package pipeline

// Statistics holds engine performance statistics.
type Statistics struct {
	// Cycles is the number of cycles simulated.
	Cycles uint64
	// Committed is the number of instructions retired.
	Committed uint64
	// Issued is the number of instructions admitted into the ROB,
	// including those later flushed.
	Issued uint64

	// Branches is the number of BEQ instructions retired.
	Branches uint64
	// Mispredictions is the number of retired BEQs that were taken.
	Mispredictions uint64

	// Flushes is the number of redirects that discarded younger entries.
	Flushes uint64
	// FlushedInstructions is the number of ROB entries discarded.
	FlushedInstructions uint64

	// ROBFullStalls counts issue attempts refused for a full ROB.
	ROBFullStalls uint64
	// StationStalls counts issue attempts refused for lack of a station.
	StationStalls uint64

	// Broadcasts counts results published on the common data bus.
	Broadcasts uint64

	// DCacheHits and DCacheMisses are filled in when a data cache is
	// configured.
	DCacheHits   uint64
	DCacheMisses uint64
}

// CPI returns the cycles per committed instruction.
func (s Statistics) CPI() float64 {
	if s.Committed == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Committed)
}

// IPC returns the committed instructions per cycle.
func (s Statistics) IPC() float64 {
	if s.Cycles == 0 {
		return 0
	}
	return float64(s.Committed) / float64(s.Cycles)
}

// BranchAccuracy returns the percentage of branches predicted correctly
// by the static not-taken prediction.
func (s Statistics) BranchAccuracy() float64 {
	if s.Branches == 0 {
		return 0
	}
	return float64(s.Branches-s.Mispredictions) / float64(s.Branches) * 100
}
