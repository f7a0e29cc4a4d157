package benchmarks

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/armemu/emu"
	"github.com/sarchlab/armemu/timing/cache"
	"github.com/sarchlab/armemu/timing/core"
	"github.com/sarchlab/armemu/timing/latency"
)

// BenchmarkResult holds the timing results for a single benchmark run.
type BenchmarkResult struct {
	// Name identifies the benchmark
	Name string `json:"name"`

	// Description explains what the benchmark measures
	Description string `json:"description"`

	// SimulatedCycles is the total cycle count from the timing core
	SimulatedCycles uint64 `json:"simulated_cycles"`

	// InstructionsRetired is the number of completed instructions
	InstructionsRetired uint64 `json:"instructions_retired"`

	// CPI is cycles per instruction
	CPI float64 `json:"cpi"`

	// SkippedInstructions failed their condition check
	SkippedInstructions uint64 `json:"skipped_instructions"`

	// BranchesTaken is the number of taken branches
	BranchesTaken uint64 `json:"branches_taken"`

	// BranchMispredictions is the number of wrongly predicted branches
	BranchMispredictions uint64 `json:"branch_mispredictions"`

	// Loads and Stores count transfers that reached memory or GPIO
	Loads  uint64 `json:"loads"`
	Stores uint64 `json:"stores"`

	// GPIOAccesses is the number of transfers to the GPIO region
	GPIOAccesses uint64 `json:"gpio_accesses,omitempty"`

	// DCacheHits/Misses
	DCacheHits   uint64 `json:"dcache_hits,omitempty"`
	DCacheMisses uint64 `json:"dcache_misses,omitempty"`

	// DCacheWritebacks counts dirty lines written back, including at halt
	DCacheWritebacks uint64 `json:"dcache_writebacks,omitempty"`

	// Result is R0 at halt
	Result uint32 `json:"result"`

	// Error is the fault that stopped the run, empty on a clean halt
	Error string `json:"error,omitempty"`

	// WallTime is the actual time taken to run the benchmark
	WallTime time.Duration `json:"wall_time_ns"`
}

// Passed reports whether the run halted cleanly with the expected result.
func (r BenchmarkResult) Passed(expected uint32) bool {
	return r.Error == "" && r.Result == expected
}

// Benchmark defines a single benchmark program.
type Benchmark struct {
	// Name identifies the benchmark
	Name string

	// Description explains what the benchmark measures
	Description string

	// Setup prepares the emulator state after the program is loaded
	Setup func(regFile *emu.RegFile, memory *emu.Memory)

	// Program is the ARM machine code to execute, loaded at address 0
	Program []byte

	// ExpectedResult is the expected value of R0 at halt (for validation)
	ExpectedResult uint32
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// TimingConfig sets instruction latencies (default: latency.DefaultTimingConfig)
	TimingConfig *latency.TimingConfig

	// CacheConfig sets the L1 data cache geometry
	CacheConfig cache.Config

	// MaxInstructions bounds each run (0 = no limit)
	MaxInstructions uint64

	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	// Verbose forwards GPIO output and per-instruction traces to Output
	Verbose bool
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		TimingConfig:    latency.DefaultTimingConfig(),
		CacheConfig:     cache.DefaultL1DConfig(),
		MaxInstructions: 1_000_000,
		Output:          os.Stdout,
		Verbose:         false,
	}
}

// Harness runs benchmarks and collects timing results.
type Harness struct {
	config     HarnessConfig
	benchmarks []Benchmark
}

// NewHarness creates a new benchmark harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.TimingConfig == nil {
		config.TimingConfig = latency.DefaultTimingConfig()
	}
	return &Harness{
		config:     config,
		benchmarks: []Benchmark{},
	}
}

// AddBenchmark adds a benchmark to the harness.
func (h *Harness) AddBenchmark(b Benchmark) {
	h.benchmarks = append(h.benchmarks, b)
}

// AddBenchmarks adds multiple benchmarks to the harness.
func (h *Harness) AddBenchmarks(benchmarks []Benchmark) {
	h.benchmarks = append(h.benchmarks, benchmarks...)
}

// RunAll runs all benchmarks and returns results in order.
func (h *Harness) RunAll() []BenchmarkResult {
	results := make([]BenchmarkResult, 0, len(h.benchmarks))

	for _, bench := range h.benchmarks {
		result := h.runBenchmark(bench)
		results = append(results, result)
	}

	return results
}

func (h *Harness) newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if h.config.Verbose {
		logger.SetOutput(h.config.Output)
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetOutput(io.Discard)
	}
	return logger
}

// runBenchmark executes a single benchmark on a fresh emulator and core.
func (h *Harness) runBenchmark(bench Benchmark) BenchmarkResult {
	result := BenchmarkResult{
		Name:        bench.Name,
		Description: bench.Description,
	}

	stdout := io.Discard
	if h.config.Verbose {
		stdout = h.config.Output
	}
	logger := h.newLogger()

	emulator := emu.NewEmulator(
		emu.WithStdout(stdout),
		emu.WithLogger(logger),
		emu.WithMaxInstructions(h.config.MaxInstructions),
	)
	if err := emulator.LoadProgram(bench.Program); err != nil {
		result.Error = err.Error()
		return result
	}

	if bench.Setup != nil {
		bench.Setup(emulator.RegFile(), emulator.Memory())
	}

	timingCore, err := core.NewCore(emulator,
		core.WithTimingConfig(h.config.TimingConfig),
		core.WithCacheConfig(h.config.CacheConfig),
		core.WithLogger(logger),
	)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	start := time.Now()
	runErr := timingCore.Run()
	result.WallTime = time.Since(start)

	if runErr != nil {
		result.Error = runErr.Error()
	}

	stats := timingCore.Stats()
	result.SimulatedCycles = stats.Cycles
	result.InstructionsRetired = stats.Instructions
	result.CPI = stats.CPI()
	result.SkippedInstructions = stats.Skipped
	result.BranchesTaken = stats.BranchesTaken
	result.BranchMispredictions = stats.BranchMispredictions
	result.Loads = stats.Loads
	result.Stores = stats.Stores
	result.GPIOAccesses = stats.GPIOAccesses
	result.DCacheHits = stats.CacheHits
	result.DCacheMisses = stats.CacheMisses
	result.DCacheWritebacks = stats.Writebacks
	result.Result = emulator.RegFile().ReadReg(0)

	return result
}

// PrintResults outputs results in human-readable format.
func (h *Harness) PrintResults(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output, "=== armemu Timing Benchmark Results ===")
	_, _ = fmt.Fprintln(h.config.Output, "")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "Benchmark: %s\n", r.Name)
		_, _ = fmt.Fprintf(h.config.Output, "  Description: %s\n", r.Description)
		_, _ = fmt.Fprintf(h.config.Output, "  Result (R0): %d\n", r.Result)
		if r.Error != "" {
			_, _ = fmt.Fprintf(h.config.Output, "  Error: %s\n", r.Error)
		}
		_, _ = fmt.Fprintln(h.config.Output, "  --- Timing ---")
		_, _ = fmt.Fprintf(h.config.Output, "  Simulated Cycles:     %d\n", r.SimulatedCycles)
		_, _ = fmt.Fprintf(h.config.Output, "  Instructions Retired: %d\n", r.InstructionsRetired)
		_, _ = fmt.Fprintf(h.config.Output, "  CPI:                  %.3f\n", r.CPI)
		_, _ = fmt.Fprintf(h.config.Output, "  Skipped:              %d\n", r.SkippedInstructions)
		_, _ = fmt.Fprintf(h.config.Output, "  Branches Taken:       %d\n", r.BranchesTaken)
		_, _ = fmt.Fprintf(h.config.Output, "  Mispredictions:       %d\n", r.BranchMispredictions)
		_, _ = fmt.Fprintf(h.config.Output, "  Loads:                %d\n", r.Loads)
		_, _ = fmt.Fprintf(h.config.Output, "  Stores:               %d\n", r.Stores)
		if r.GPIOAccesses > 0 {
			_, _ = fmt.Fprintf(h.config.Output, "  GPIO Accesses:        %d\n", r.GPIOAccesses)
		}

		if r.DCacheHits > 0 || r.DCacheMisses > 0 {
			_, _ = fmt.Fprintln(h.config.Output, "  --- D-Cache ---")
			_, _ = fmt.Fprintf(h.config.Output, "  Hits:   %d\n", r.DCacheHits)
			_, _ = fmt.Fprintf(h.config.Output, "  Misses: %d\n", r.DCacheMisses)
			_, _ = fmt.Fprintf(h.config.Output, "  Writebacks: %d\n", r.DCacheWritebacks)
		}

		_, _ = fmt.Fprintf(h.config.Output, "  Wall Time: %v\n", r.WallTime)
		_, _ = fmt.Fprintln(h.config.Output, "")
	}
}

// PrintCSV outputs results in CSV format for spreadsheet comparison.
func (h *Harness) PrintCSV(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,cycles,instructions,cpi,skipped,branches_taken,mispredictions,"+
			"loads,stores,gpio,dcache_hits,dcache_misses,dcache_writebacks,result")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%d,%d,%.3f,%d,%d,%d,%d,%d,%d,%d,%d,%d,%d\n",
			r.Name,
			r.SimulatedCycles,
			r.InstructionsRetired,
			r.CPI,
			r.SkippedInstructions,
			r.BranchesTaken,
			r.BranchMispredictions,
			r.Loads,
			r.Stores,
			r.GPIOAccesses,
			r.DCacheHits,
			r.DCacheMisses,
			r.DCacheWritebacks,
			r.Result,
		)
	}
}

// PrintJSON outputs results as an indented JSON array.
func (h *Harness) PrintJSON(results []BenchmarkResult) error {
	enc := json.NewEncoder(h.config.Output)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("failed to encode benchmark results: %w", err)
	}
	return nil
}
