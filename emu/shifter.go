package emu

import (
	"math/bits"

	"github.com/sarchlab/armemu/insts"
)

// Operand2 is the resolved second operand and the shifter carry-out.
// When CarryValid is false the carry flag must be left as it is.
type Operand2 struct {
	Value      uint32
	Carry      bool
	CarryValid bool
}

// Shifter resolves operand 2 from either a rotated immediate or a shifted
// register.
type Shifter struct {
	regFile *RegFile
}

// NewShifter creates a Shifter reading from the given register file.
func NewShifter(regFile *RegFile) *Shifter {
	return &Shifter{regFile: regFile}
}

// Immediate rotates an 8-bit immediate right by twice the rotate field.
func (s *Shifter) Immediate(imm uint32, rotate uint8) Operand2 {
	if rotate == 0 {
		return Operand2{Value: imm}
	}

	value := bits.RotateLeft32(imm, -2*int(rotate))
	return Operand2{
		Value:      value,
		Carry:      value>>31 == 1,
		CarryValid: true,
	}
}

// Register shifts Rm by an immediate amount or by the bottom byte of Rs.
func (s *Shifter) Register(inst *insts.Instruction) (Operand2, error) {
	if inst.ShiftMalformed {
		return Operand2{}, operandFault(inst.Raw, "malformed shift")
	}
	if inst.Rm == insts.PC {
		return Operand2{}, operandFault(inst.Raw, "PC used as shifted register")
	}

	amount := uint32(inst.ShiftAmount)
	if inst.ShiftByRegister {
		amount = s.regFile.ReadReg(inst.Rs) & 0xFF
	}

	return Shift(s.regFile.ReadReg(inst.Rm), inst.ShiftType, amount), nil
}

// Shift applies a shift to a 32-bit value and reports the carry-out.
// A zero amount passes the value through without a carry-out.
func Shift(value uint32, shiftType insts.ShiftType, amount uint32) Operand2 {
	if amount == 0 {
		return Operand2{Value: value}
	}

	switch shiftType {
	case insts.ShiftLSL:
		return shiftLSL(value, amount)
	case insts.ShiftLSR:
		return shiftLSR(value, amount)
	case insts.ShiftASR:
		return shiftASR(value, amount)
	default:
		return shiftROR(value, amount)
	}
}

func shiftLSL(value, amount uint32) Operand2 {
	switch {
	case amount < 32:
		return Operand2{
			Value:      value << amount,
			Carry:      bit(value, 32-amount),
			CarryValid: true,
		}
	case amount == 32:
		return Operand2{Carry: bit(value, 0), CarryValid: true}
	default:
		return Operand2{CarryValid: true}
	}
}

func shiftLSR(value, amount uint32) Operand2 {
	switch {
	case amount < 32:
		return Operand2{
			Value:      value >> amount,
			Carry:      bit(value, amount-1),
			CarryValid: true,
		}
	case amount == 32:
		return Operand2{Carry: bit(value, 31), CarryValid: true}
	default:
		return Operand2{CarryValid: true}
	}
}

func shiftASR(value, amount uint32) Operand2 {
	if amount >= 32 {
		return Operand2{
			Value:      uint32(int32(value) >> 31),
			Carry:      bit(value, 31),
			CarryValid: true,
		}
	}
	return Operand2{
		Value:      uint32(int32(value) >> amount),
		Carry:      bit(value, amount-1),
		CarryValid: true,
	}
}

func shiftROR(value, amount uint32) Operand2 {
	amount %= 32
	if amount == 0 {
		// Rotating by a multiple of 32 leaves the value; carry is bit 31.
		return Operand2{Value: value, Carry: bit(value, 31), CarryValid: true}
	}
	return Operand2{
		Value:      bits.RotateLeft32(value, -int(amount)),
		Carry:      bit(value, amount-1),
		CarryValid: true,
	}
}

func bit(value, n uint32) bool {
	return (value>>n)&1 == 1
}
