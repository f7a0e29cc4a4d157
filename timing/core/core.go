// Package core provides the cycle-estimating CPU core model.
// It drives the functional emulator one instruction at a time and charges
// each instruction a latency from the latency table and the L1 data cache.
package core

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/armemu/emu"
	"github.com/sarchlab/armemu/insts"
	"github.com/sarchlab/armemu/timing/cache"
	"github.com/sarchlab/armemu/timing/latency"
)

// Stats holds performance statistics for the core.
type Stats struct {
	// Cycles is the total number of cycles estimated.
	Cycles uint64
	// Instructions is the number of instructions retired, skipped ones
	// included.
	Instructions uint64
	// Skipped is the number of instructions whose condition failed.
	Skipped uint64
	// Loads is the number of LDR instructions that reached memory or GPIO.
	Loads uint64
	// Stores is the number of STR instructions that reached memory or GPIO.
	Stores uint64
	// GPIOAccesses is the number of transfers to the GPIO region.
	GPIOAccesses uint64
	// BranchesTaken is the number of branches whose condition passed.
	BranchesTaken uint64
	// BranchPredictions is the number of branches seen by the predictor,
	// skipped ones included.
	BranchPredictions uint64
	// BranchMispredictions is the number of wrongly predicted directions.
	BranchMispredictions uint64
	// BTBMisses is the number of taken branches whose target was unknown.
	BTBMisses uint64
	// CacheHits is the number of L1 data cache hits.
	CacheHits uint64
	// CacheMisses is the number of L1 data cache misses.
	CacheMisses uint64
	// Writebacks is the number of dirty lines written back, on eviction or
	// by the flush at halt.
	Writebacks uint64
}

// CPI returns cycles per instruction, or 0 before the first instruction.
func (s Stats) CPI() float64 {
	if s.Instructions == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Instructions)
}

// WriteReport prints the statistics in a human-readable form.
func (s Stats) WriteReport(w io.Writer) {
	_, _ = fmt.Fprintln(w, "Timing:")
	_, _ = fmt.Fprintf(w, "  Cycles:         %d\n", s.Cycles)
	_, _ = fmt.Fprintf(w, "  Instructions:   %d\n", s.Instructions)
	_, _ = fmt.Fprintf(w, "  CPI:            %.3f\n", s.CPI())
	_, _ = fmt.Fprintf(w, "  Skipped:        %d\n", s.Skipped)
	_, _ = fmt.Fprintf(w, "  Loads:          %d\n", s.Loads)
	_, _ = fmt.Fprintf(w, "  Stores:         %d\n", s.Stores)
	_, _ = fmt.Fprintf(w, "  GPIO accesses:  %d\n", s.GPIOAccesses)
	_, _ = fmt.Fprintf(w, "  Branches taken: %d\n", s.BranchesTaken)
	_, _ = fmt.Fprintf(w, "  Predictions:    %d\n", s.BranchPredictions)
	_, _ = fmt.Fprintf(w, "  Mispredictions: %d\n", s.BranchMispredictions)
	_, _ = fmt.Fprintf(w, "  BTB misses:     %d\n", s.BTBMisses)
	_, _ = fmt.Fprintf(w, "  L1D hits:       %d\n", s.CacheHits)
	_, _ = fmt.Fprintf(w, "  L1D misses:     %d\n", s.CacheMisses)
	_, _ = fmt.Fprintf(w, "  Writebacks:     %d\n", s.Writebacks)
}

// Core represents a cycle-estimating CPU core model.
type Core struct {
	emulator *emu.Emulator
	table    *latency.Table
	l1d      *cache.Cache
	bp       *BranchPredictor
	logger   logrus.FieldLogger

	timingConfig    *latency.TimingConfig
	cacheConfig     cache.Config
	predictorConfig BranchPredictorConfig

	stats  Stats
	halted bool
	err    error
}

// Option is a functional option for configuring the Core.
type Option func(*Core)

// WithTimingConfig sets the latency values. The L1 hit and memory latencies
// also set the data cache hit and miss latencies.
func WithTimingConfig(config *latency.TimingConfig) Option {
	return func(c *Core) {
		c.timingConfig = config
	}
}

// WithCacheConfig sets the L1 data cache geometry.
func WithCacheConfig(config cache.Config) Option {
	return func(c *Core) {
		c.cacheConfig = config
	}
}

// WithBranchPredictorConfig sets the branch predictor table sizes.
func WithBranchPredictorConfig(config BranchPredictorConfig) Option {
	return func(c *Core) {
		c.predictorConfig = config
	}
}

// WithLogger sets the logger used for per-instruction timing traces.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Core) {
		c.logger = logger
	}
}

// NewCore creates a new Core driving the given emulator. The emulator should
// already hold the program.
func NewCore(emulator *emu.Emulator, opts ...Option) (*Core, error) {
	c := &Core{
		emulator:        emulator,
		timingConfig:    latency.DefaultTimingConfig(),
		cacheConfig:     cache.DefaultL1DConfig(),
		predictorConfig: DefaultBranchPredictorConfig(),
		logger:          logrus.StandardLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if err := c.timingConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid timing config: %w", err)
	}

	c.cacheConfig.HitLatency = c.timingConfig.L1HitLatency
	c.cacheConfig.MissLatency = c.timingConfig.MemoryLatency
	if err := c.cacheConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid cache config: %w", err)
	}

	for _, size := range []uint32{c.predictorConfig.BHTSize, c.predictorConfig.BTBSize} {
		if size&(size-1) != 0 {
			return nil, fmt.Errorf("invalid branch predictor config: size %d is not a power of two", size)
		}
	}

	c.table = latency.NewTableWithConfig(c.timingConfig)
	c.l1d = cache.New(c.cacheConfig)
	c.bp = NewBranchPredictor(c.predictorConfig)

	return c, nil
}

// Emulator returns the functional emulator driven by the core.
func (c *Core) Emulator() *emu.Emulator {
	return c.emulator
}

// Cache returns the L1 data cache model.
func (c *Core) Cache() *cache.Cache {
	return c.l1d
}

// BranchPredictor returns the branch predictor.
func (c *Core) BranchPredictor() *BranchPredictor {
	return c.bp
}

// Halted returns true if the core fetched the terminating zero word or
// stopped on an error.
func (c *Core) Halted() bool {
	return c.halted
}

// Err returns the error that stopped the core, if any.
func (c *Core) Err() error {
	return c.err
}

// Step executes one instruction and charges its latency.
func (c *Core) Step() emu.StepResult {
	if c.halted {
		return emu.StepResult{Halted: c.err == nil, Err: c.err}
	}

	result := c.emulator.Step()
	if result.Err != nil {
		c.halted = true
		c.err = result.Err
		return result
	}
	if result.Halted {
		c.halted = true
		c.flush()
		return result
	}

	cycles := c.account(&result)
	c.stats.Cycles += cycles
	c.stats.Instructions++

	c.logger.WithFields(logrus.Fields{
		"word":   result.Inst.Raw,
		"cycles": cycles,
		"total":  c.stats.Cycles,
	}).Debug("timing")

	return result
}

// account returns the cycles charged for a completed step and updates the
// event counters.
func (c *Core) account(result *emu.StepResult) uint64 {
	inst := result.Inst

	if inst.Format == insts.FormatBranch {
		return c.accountBranch(result)
	}

	if !result.Executed {
		c.stats.Skipped++
		return c.table.SkippedLatency()
	}

	cycles := c.table.GetLatency(inst)
	if inst.Format == insts.FormatSingleTransfer {
		cycles = c.accountTransfer(inst, result.Access, cycles)
	}

	return cycles
}

// accountBranch consults the predictor for every branch, taken or skipped.
// A wrong direction costs the mispredict penalty. A correctly predicted
// taken branch whose target missed in the BTB costs the taken penalty.
func (c *Core) accountBranch(result *emu.StepResult) uint64 {
	taken := result.Executed
	target := uint32(int32(result.PC) + 8 + result.Inst.BranchOffset)

	pred := c.bp.Predict(result.PC)
	c.bp.Update(result.PC, taken, target)
	c.stats.BranchPredictions++

	var cycles uint64
	if taken {
		c.stats.BranchesTaken++
		cycles = c.table.GetLatency(result.Inst)
	} else {
		c.stats.Skipped++
		cycles = c.table.SkippedLatency()
	}

	switch {
	case pred.Taken != taken:
		c.stats.BranchMispredictions++
		cycles += c.table.BranchMispredictPenalty()
	case taken && (!pred.TargetKnown || pred.Target != target):
		c.stats.BTBMisses++
		cycles += c.table.BranchTakenPenalty()
	}

	return cycles
}

// accountTransfer charges a load or store. Out-of-bounds transfers do
// nothing and pay only the pipeline cost.
func (c *Core) accountTransfer(
	inst *insts.Instruction,
	access *emu.Access,
	cycles uint64,
) uint64 {
	if access == nil {
		return cycles
	}

	if c.table.IsLoadOp(inst) {
		c.stats.Loads++
	} else {
		c.stats.Stores++
	}

	if access.Region == emu.RegionGPIO {
		c.stats.GPIOAccesses++
		return c.table.GPIOLatency()
	}

	var res cache.AccessResult
	if access.Load {
		res = c.l1d.Read(access.Addr)
	} else {
		res = c.l1d.Write(access.Addr)
	}

	if res.Hit {
		c.stats.CacheHits++
	} else {
		c.stats.CacheMisses++
	}

	cycles += res.Latency
	if res.EvictedDirty {
		c.stats.Writebacks++
		cycles += c.table.WritebackLatency()
	}

	return cycles
}

// flush writes back every dirty line once the program has halted.
func (c *Core) flush() {
	written := c.l1d.Flush()
	c.stats.Writebacks += written
	c.stats.Cycles += written * c.table.WritebackLatency()
}

// Run executes the core until it halts. A clean halt returns nil.
func (c *Core) Run() error {
	for !c.halted {
		c.Step()
	}
	return c.err
}

// RunCycles executes instructions until at least the given number of
// cycles has elapsed. Returns true if still running, false if halted.
func (c *Core) RunCycles(cycles uint64) bool {
	target := c.stats.Cycles + cycles
	for !c.halted && c.stats.Cycles < target {
		c.Step()
	}
	return !c.halted
}

// Stats returns performance statistics for the core.
func (c *Core) Stats() Stats {
	return c.stats
}

// Reset clears timing state: statistics, cache contents, predictor tables
// and the halt flag. The emulator's architectural state is left alone.
func (c *Core) Reset() {
	c.stats = Stats{}
	c.l1d.Reset()
	c.bp.Reset()
	c.halted = false
	c.err = nil
}
