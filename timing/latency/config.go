package latency

import (
	"encoding/json"
	"fmt"
	"os"
)

// TimingConfig holds latency values for the instruction classes of the ARM
// subset. Values approximate a short in-order three-stage core.
type TimingConfig struct {
	// ALULatency is the execution latency for data processing instructions.
	// Default: 1 cycle.
	ALULatency uint64 `json:"alu_latency"`

	// MultiplyLatency is the latency for MUL and MLA. Default: 3 cycles.
	MultiplyLatency uint64 `json:"multiply_latency"`

	// LoadLatency is the pipeline cost of a load on top of the cache access.
	// Default: 2 cycles.
	LoadLatency uint64 `json:"load_latency"`

	// StoreLatency is the pipeline cost of a store on top of the cache
	// access. Default: 1 cycle.
	StoreLatency uint64 `json:"store_latency"`

	// BranchLatency is the base execution latency for B. Default: 1 cycle.
	BranchLatency uint64 `json:"branch_latency"`

	// BranchTakenPenalty is the additional cycles spent refilling the
	// pipeline after a correctly predicted taken branch whose target missed
	// in the BTB. Default: 2 cycles.
	BranchTakenPenalty uint64 `json:"branch_taken_penalty"`

	// BranchMispredictPenalty is the additional cycles lost when the
	// predicted direction of a branch was wrong. Default: 3 cycles.
	BranchMispredictPenalty uint64 `json:"branch_mispredict_penalty"`

	// GPIOLatency is the cost of a transfer to the GPIO region. It replaces
	// the cache and load/store latencies. Default: 10 cycles.
	GPIOLatency uint64 `json:"gpio_latency"`

	// SkippedLatency is the cost of an instruction whose condition failed.
	// Default: 1 cycle.
	SkippedLatency uint64 `json:"skipped_latency"`

	// L1HitLatency is the L1 data cache hit latency. Default: 1 cycle.
	L1HitLatency uint64 `json:"l1_hit_latency"`

	// MemoryLatency is the main memory access latency paid on an L1 miss
	// and on every dirty line written back. Default: 20 cycles.
	MemoryLatency uint64 `json:"memory_latency"`
}

// DefaultTimingConfig returns a TimingConfig with the default values.
func DefaultTimingConfig() *TimingConfig {
	return &TimingConfig{
		ALULatency:              1,
		MultiplyLatency:         3,
		LoadLatency:             2,
		StoreLatency:            1,
		BranchLatency:           1,
		BranchTakenPenalty:      2,
		BranchMispredictPenalty: 3,
		GPIOLatency:             10,
		SkippedLatency:          1,
		L1HitLatency:            1,
		MemoryLatency:           20,
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

// Validate checks that all latency values an instruction always pays are
// valid (> 0).
func (c *TimingConfig) Validate() error {
	if c.ALULatency == 0 {
		return fmt.Errorf("alu_latency must be > 0")
	}
	if c.MultiplyLatency == 0 {
		return fmt.Errorf("multiply_latency must be > 0")
	}
	if c.LoadLatency == 0 {
		return fmt.Errorf("load_latency must be > 0")
	}
	if c.StoreLatency == 0 {
		return fmt.Errorf("store_latency must be > 0")
	}
	if c.BranchLatency == 0 {
		return fmt.Errorf("branch_latency must be > 0")
	}
	if c.GPIOLatency == 0 {
		return fmt.Errorf("gpio_latency must be > 0")
	}
	if c.SkippedLatency == 0 {
		return fmt.Errorf("skipped_latency must be > 0")
	}
	if c.L1HitLatency > c.MemoryLatency {
		return fmt.Errorf("l1_hit_latency must be <= memory_latency")
	}
	return nil
}

// Clone returns a deep copy of the TimingConfig.
func (c *TimingConfig) Clone() *TimingConfig {
	clone := *c
	return &clone
}
