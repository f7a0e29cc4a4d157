// Package emu provides functional ARM emulation.
package emu

import "github.com/sarchlab/armemu/insts"

// RegFile represents the ARM register file.
// It contains 16 general-purpose registers (R0-R15), where R15 is the
// program counter, and the CPSR condition flags.
type RegFile struct {
	// R holds registers R0-R15. R[15] is the PC.
	R [16]uint32

	// CPSR holds the condition flags.
	CPSR CPSR
}

// CPSR represents the condition flags of the current program status register.
type CPSR struct {
	// N is the negative flag.
	N bool
	// Z is the zero flag.
	Z bool
	// C is the carry flag.
	C bool
	// V is the overflow flag.
	V bool
}

// Packed returns the flags with N, Z, C and V in bits 15, 14, 13 and 12.
func (c CPSR) Packed() uint32 {
	var packed uint32
	if c.N {
		packed |= 1 << 15
	}
	if c.Z {
		packed |= 1 << 14
	}
	if c.C {
		packed |= 1 << 13
	}
	if c.V {
		packed |= 1 << 12
	}
	return packed
}

// setNZ sets N and Z from a result.
func (c *CPSR) setNZ(result uint32) {
	c.N = result>>31 == 1
	c.Z = result == 0
}

// ReadReg reads a register value.
func (r *RegFile) ReadReg(reg uint8) uint32 {
	return r.R[reg&0xF]
}

// WriteReg writes a value to a register.
func (r *RegFile) WriteReg(reg uint8, value uint32) {
	r.R[reg&0xF] = value
}

// PC returns the program counter.
func (r *RegFile) PC() uint32 {
	return r.R[insts.PC]
}

// SetPC sets the program counter.
func (r *RegFile) SetPC(pc uint32) {
	r.R[insts.PC] = pc
}
