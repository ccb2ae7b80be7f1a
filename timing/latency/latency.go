// Package latency provides the functional-unit catalog and instruction
// timing model of the simulated machine.
//
// The latency values and station counts can be configured via TimingConfig.
package latency

import (
	"strings"

	"github.com/sarchlab/tomasim/insts"
)

// Unit identifies a functional-unit kind. Each kind owns a pool of
// reservation stations.
type Unit uint8

// Functional-unit kinds, in catalog order.
const (
	UnitLoad Unit = iota
	UnitStore
	UnitBeq
	UnitCall
	UnitAdd
	UnitNand
	UnitMul
	numUnits
)

var unitNames = [...]string{
	UnitLoad:  "LOAD",
	UnitStore: "STORE",
	UnitBeq:   "BEQ",
	UnitCall:  "CALL",
	UnitAdd:   "ADD",
	UnitNand:  "NAND",
	UnitMul:   "MUL",
}

// String returns the catalog name of the unit.
func (u Unit) String() string {
	if u < numUnits {
		return unitNames[u]
	}
	return "UNKNOWN"
}

func (u Unit) configKey() string {
	return strings.ToLower(u.String())
}

// Units returns every unit kind in catalog order.
func Units() []Unit {
	units := make([]Unit, 0, numUnits)
	for u := UnitLoad; u < numUnits; u++ {
		units = append(units, u)
	}
	return units
}

// Table provides unit and latency lookups for opcodes.
type Table struct {
	config *TimingConfig
}

// NewTable creates a new latency table with default timing values.
func NewTable() *Table {
	return &Table{
		config: DefaultTimingConfig(),
	}
}

// NewTableWithConfig creates a new latency table with custom timing configuration.
func NewTableWithConfig(config *TimingConfig) *Table {
	return &Table{
		config: config,
	}
}

// UnitFor returns the functional unit that executes op.
// CALL and RET share the CALL unit; ADD and SUB share the ADD unit.
func (t *Table) UnitFor(op insts.Opcode) Unit {
	switch op {
	case insts.OpLOAD:
		return UnitLoad
	case insts.OpSTORE:
		return UnitStore
	case insts.OpBEQ:
		return UnitBeq
	case insts.OpCALL, insts.OpRET:
		return UnitCall
	case insts.OpNAND:
		return UnitNand
	case insts.OpMUL:
		return UnitMul
	default:
		return UnitAdd
	}
}

// GetLatency returns the execution latency in cycles for op. For LOAD and
// STORE this is the sum of the address and memory phases.
func (t *Table) GetLatency(op insts.Opcode) uint64 {
	switch op {
	case insts.OpADD, insts.OpSUB:
		return t.config.AddLatency
	case insts.OpNAND:
		return t.config.NandLatency
	case insts.OpMUL:
		return t.config.MulLatency
	case insts.OpBEQ:
		return t.config.BranchLatency
	case insts.OpCALL, insts.OpRET:
		return t.config.CallLatency
	case insts.OpLOAD, insts.OpSTORE:
		return t.config.AddressLatency + t.config.MemoryLatency
	default:
		return 1
	}
}

// AddressLatency returns the address-computation phase of memory operations.
func (t *Table) AddressLatency() uint64 {
	return t.config.AddressLatency
}

// MemoryLatency returns the memory-access phase of memory operations.
func (t *Table) MemoryLatency() uint64 {
	return t.config.MemoryLatency
}

// StationCount returns the number of reservation stations of u.
func (t *Table) StationCount(u Unit) int {
	return t.config.StationCount(u)
}

// ROBSize returns the configured reorder buffer capacity.
func (t *Table) ROBSize() int {
	return t.config.ROBSize
}

// IsMemoryOp returns true if op accesses memory.
func (t *Table) IsMemoryOp(op insts.Opcode) bool {
	return op == insts.OpLOAD || op == insts.OpSTORE
}

// Config returns the current timing configuration.
func (t *Table) Config() *TimingConfig {
	return t.config
}
