// Package emu provides functional ARM emulation.
package emu

import (
	"errors"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/armemu/insts"
)

// InitialPC is the PC value at reset. The first step advances it to 8 and
// fetches from address 0.
const InitialPC = 4

// StepResult represents the result of a single fetch-execute cycle.
type StepResult struct {
	// PC is the address the instruction word was fetched from.
	PC uint32

	// Halted is true if the fetched word was zero.
	Halted bool

	// Executed is true if the instruction passed its condition check.
	Executed bool

	// Inst is the decoded instruction. Nil when halted or on a fetch fault.
	Inst *insts.Instruction

	// Access describes the memory or GPIO transfer made by a single data
	// transfer. Nil if none happened.
	Access *Access

	// Err is set if a fatal error occurred. Fatal errors are *Fault, except
	// ErrInstructionLimit.
	Err error
}

// Emulator executes ARM instructions functionally.
type Emulator struct {
	regFile *RegFile
	memory  *Memory
	decoder *insts.Decoder
	gpio    *GPIO

	// Execution units
	alu        *ALU
	multiplier *Multiplier
	lsu        *LoadStoreUnit
	branchUnit *BranchUnit

	// I/O
	stdout io.Writer
	stderr io.Writer
	logger logrus.FieldLogger

	// Execution state
	instructionCount uint64
	maxInstructions  uint64 // 0 means no limit
}

// EmulatorOption is a functional option for configuring the Emulator.
type EmulatorOption func(*Emulator)

// WithStdout sets the writer receiving GPIO output.
func WithStdout(w io.Writer) EmulatorOption {
	return func(e *Emulator) {
		e.stdout = w
	}
}

// WithStderr sets the writer used by the default logger.
func WithStderr(w io.Writer) EmulatorOption {
	return func(e *Emulator) {
		e.stderr = w
	}
}

// WithLogger sets the logger used for warnings and step traces.
func WithLogger(logger logrus.FieldLogger) EmulatorOption {
	return func(e *Emulator) {
		e.logger = logger
	}
}

// WithMaxInstructions sets the maximum number of instructions to execute.
// A value of 0 means no limit.
func WithMaxInstructions(max uint64) EmulatorOption {
	return func(e *Emulator) {
		e.maxInstructions = max
	}
}

// NewEmulator creates a new emulator with zeroed registers and memory.
func NewEmulator(opts ...EmulatorOption) *Emulator {
	e := &Emulator{
		decoder: insts.NewDecoder(),
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		logger := logrus.New()
		logger.SetOutput(e.stderr)
		logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
		e.logger = logger
	}

	e.Reset()

	return e
}

// RegFile returns the emulator's register file.
func (e *Emulator) RegFile() *RegFile {
	return e.regFile
}

// Memory returns the emulator's memory.
func (e *Emulator) Memory() *Memory {
	return e.memory
}

// GPIO returns the emulator's GPIO controller.
func (e *Emulator) GPIO() *GPIO {
	return e.gpio
}

// InstructionCount returns the number of instructions fetched and decoded,
// including those skipped by their condition.
func (e *Emulator) InstructionCount() uint64 {
	return e.instructionCount
}

// LoadProgram copies a flat image to address 0.
func (e *Emulator) LoadProgram(image []byte) error {
	return e.memory.LoadImage(image)
}

// Reset restores registers, flags and memory to their power-on state.
func (e *Emulator) Reset() {
	e.regFile = &RegFile{}
	e.regFile.SetPC(InitialPC)
	e.memory = NewMemory()
	e.gpio = NewGPIO(e.stdout)
	e.instructionCount = 0

	e.alu = NewALU(e.regFile)
	e.multiplier = NewMultiplier(e.regFile)
	e.lsu = NewLoadStoreUnit(e.regFile, e.memory, e.gpio, e.logger)
	e.branchUnit = NewBranchUnit(e.regFile)
}

// Step runs one fetch-execute cycle.
func (e *Emulator) Step() StepResult {
	if e.maxInstructions > 0 && e.instructionCount >= e.maxInstructions {
		return StepResult{Err: ErrInstructionLimit}
	}

	// 1. Fetch: PC runs two words ahead of the instruction.
	pc := e.regFile.PC() + 4
	e.regFile.SetPC(pc)
	addr := pc - 8

	if addr > e.memory.Size()-4 {
		return StepResult{PC: addr, Err: &Fault{
			Kind:   FaultFetch,
			Addr:   addr,
			Reason: "instruction fetch outside memory",
		}}
	}

	word := e.memory.Read32(addr)
	if word == 0 {
		return StepResult{PC: addr, Halted: true}
	}

	// 2. Decode
	inst := e.decoder.Decode(word)
	e.instructionCount++

	e.logger.WithFields(logrus.Fields{
		"pc":     addr,
		"word":   word,
		"format": inst.Format,
	}).Debug("step")

	result := StepResult{PC: addr, Inst: inst}

	// 3. Execute
	if !CheckCondition(inst.Cond, e.regFile.CPSR) {
		return result
	}
	result.Executed = true

	if err := e.execute(inst, &result); err != nil {
		var fault *Fault
		if errors.As(err, &fault) {
			fault.Addr = addr
		}
		result.Err = err
	}

	return result
}

// Run executes instructions until the zero word is fetched or a fatal error
// occurs. A clean halt returns nil.
func (e *Emulator) Run() error {
	for {
		result := e.Step()
		if result.Err != nil {
			return result.Err
		}
		if result.Halted {
			return nil
		}
	}
}

// execute dispatches a decoded instruction to its execution unit.
func (e *Emulator) execute(inst *insts.Instruction, result *StepResult) error {
	switch inst.Format {
	case insts.FormatDataProcessing:
		return e.alu.Execute(inst)
	case insts.FormatMultiply:
		return e.multiplier.Execute(inst)
	case insts.FormatSingleTransfer:
		access, err := e.lsu.Execute(inst)
		result.Access = access
		return err
	case insts.FormatBranch:
		e.branchUnit.B(inst.BranchOffset)
		return nil
	default:
		return &Fault{
			Kind:   FaultDecode,
			Word:   inst.Raw,
			Reason: "unrecognised instruction",
		}
	}
}
