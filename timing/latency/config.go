package latency

import (
	"encoding/json"
	"fmt"
	"os"
)

// StationConfig holds the number of reservation stations per unit kind.
type StationConfig struct {
	Load  int `json:"load"`
	Store int `json:"store"`
	Beq   int `json:"beq"`
	Call  int `json:"call"`
	Add   int `json:"add"`
	Nand  int `json:"nand"`
	Mul   int `json:"mul"`
}

// TimingConfig holds latency values, station counts and the reorder buffer
// size of the simulated machine.
type TimingConfig struct {
	// AddLatency is the execution latency of ADD and SUB.
	// Default: 2 cycles.
	AddLatency uint64 `json:"add_latency"`

	// NandLatency is the execution latency of NAND.
	// Default: 1 cycle.
	NandLatency uint64 `json:"nand_latency"`

	// MulLatency is the execution latency of MUL.
	// Default: 12 cycles.
	MulLatency uint64 `json:"mul_latency"`

	// BranchLatency is the execution latency of BEQ.
	// Default: 1 cycle.
	BranchLatency uint64 `json:"branch_latency"`

	// CallLatency is the execution latency of CALL and RET.
	// Default: 1 cycle.
	CallLatency uint64 `json:"call_latency"`

	// AddressLatency is the address-computation phase of LOAD and STORE.
	// Default: 2 cycles.
	AddressLatency uint64 `json:"address_latency"`

	// MemoryLatency is the memory-access phase of LOAD and STORE.
	// Default: 4 cycles.
	MemoryLatency uint64 `json:"memory_latency"`

	// ROBSize is the reorder buffer capacity.
	// Default: 8 entries.
	ROBSize int `json:"rob_size"`

	// Stations holds the reservation station count of each unit.
	Stations StationConfig `json:"stations"`
}

// DefaultTimingConfig returns a TimingConfig with the default machine.
func DefaultTimingConfig() *TimingConfig {
	return &TimingConfig{
		AddLatency:     2,
		NandLatency:    1,
		MulLatency:     12,
		BranchLatency:  1,
		CallLatency:    1,
		AddressLatency: 2,
		MemoryLatency:  4,
		ROBSize:        8,
		Stations: StationConfig{
			Load:  2,
			Store: 1,
			Beq:   2,
			Call:  1,
			Add:   4,
			Nand:  2,
			Mul:   1,
		},
	}
}

// LoadConfig loads a TimingConfig from a JSON file. Fields missing from the
// file keep their default values.
func LoadConfig(path string) (*TimingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read timing config file: %w", err)
	}

	config := DefaultTimingConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse timing config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a TimingConfig to a JSON file.
func (c *TimingConfig) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize timing config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write timing config file: %w", err)
	}

	return nil
}

// Validate checks that all latencies are > 0, the ROB holds at least one
// entry and every unit has at least one station.
func (c *TimingConfig) Validate() error {
	latencies := []struct {
		name  string
		value uint64
	}{
		{"add_latency", c.AddLatency},
		{"nand_latency", c.NandLatency},
		{"mul_latency", c.MulLatency},
		{"branch_latency", c.BranchLatency},
		{"call_latency", c.CallLatency},
		{"address_latency", c.AddressLatency},
		{"memory_latency", c.MemoryLatency},
	}
	for _, l := range latencies {
		if l.value == 0 {
			return fmt.Errorf("%s must be > 0", l.name)
		}
	}

	if c.ROBSize <= 0 {
		return fmt.Errorf("rob_size must be > 0")
	}

	for _, u := range Units() {
		if c.StationCount(u) <= 0 {
			return fmt.Errorf("stations.%s must be > 0", u.configKey())
		}
	}

	return nil
}

// StationCount returns the number of reservation stations configured for u.
func (c *TimingConfig) StationCount(u Unit) int {
	switch u {
	case UnitLoad:
		return c.Stations.Load
	case UnitStore:
		return c.Stations.Store
	case UnitBeq:
		return c.Stations.Beq
	case UnitCall:
		return c.Stations.Call
	case UnitAdd:
		return c.Stations.Add
	case UnitNand:
		return c.Stations.Nand
	case UnitMul:
		return c.Stations.Mul
	default:
		return 0
	}
}

// Clone returns a deep copy of the TimingConfig.
func (c *TimingConfig) Clone() *TimingConfig {
	clone := *c
	return &clone
}
