// Package latency provides instruction timing models for cycle estimation.
//
// Latencies are looked up per instruction class and can be configured via
// TimingConfig.
package latency

import (
	"github.com/sarchlab/armemu/insts"
)

// Table provides instruction latency lookups.
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

// GetLatency returns the execution latency in cycles for the given
// instruction. Memory operations return only their pipeline cost; the cache
// or GPIO cost is added by the caller once the address is known.
func (t *Table) GetLatency(inst *insts.Instruction) uint64 {
	if inst == nil {
		return 1
	}

	switch inst.Format {
	case insts.FormatDataProcessing:
		return t.config.ALULatency

	case insts.FormatMultiply:
		return t.config.MultiplyLatency

	case insts.FormatSingleTransfer:
		if inst.Load {
			return t.config.LoadLatency
		}
		return t.config.StoreLatency

	case insts.FormatBranch:
		return t.config.BranchLatency

	default:
		return 1
	}
}

// SkippedLatency returns the cost of an instruction whose condition failed.
func (t *Table) SkippedLatency() uint64 {
	return t.config.SkippedLatency
}

// BranchTakenPenalty returns the pipeline refill cost of a taken branch
// whose target was not in the BTB.
func (t *Table) BranchTakenPenalty() uint64 {
	return t.config.BranchTakenPenalty
}

// BranchMispredictPenalty returns the cost of a wrongly predicted branch
// direction.
func (t *Table) BranchMispredictPenalty() uint64 {
	return t.config.BranchMispredictPenalty
}

// WritebackLatency returns the cost of writing one dirty cache line back to
// memory.
func (t *Table) WritebackLatency() uint64 {
	return t.config.MemoryLatency
}

// GPIOLatency returns the cost of a GPIO transfer.
func (t *Table) GPIOLatency() uint64 {
	return t.config.GPIOLatency
}

// IsMemoryOp returns true if the instruction accesses memory.
func (t *Table) IsMemoryOp(inst *insts.Instruction) bool {
	if inst == nil {
		return false
	}
	return inst.Format == insts.FormatSingleTransfer
}

// IsLoadOp returns true if the instruction is a load operation.
func (t *Table) IsLoadOp(inst *insts.Instruction) bool {
	if inst == nil {
		return false
	}
	return inst.Format == insts.FormatSingleTransfer && inst.Load
}

// IsStoreOp returns true if the instruction is a store operation.
func (t *Table) IsStoreOp(inst *insts.Instruction) bool {
	if inst == nil {
		return false
	}
	return inst.Format == insts.FormatSingleTransfer && !inst.Load
}

// IsBranchOp returns true if the instruction is a branch operation.
func (t *Table) IsBranchOp(inst *insts.Instruction) bool {
	if inst == nil {
		return false
	}
	return inst.Format == insts.FormatBranch
}

// Config returns the current timing configuration.
func (t *Table) Config() *TimingConfig {
	return t.config
}
