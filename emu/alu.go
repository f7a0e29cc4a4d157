package emu

import (
	"fmt"

	"github.com/sarchlab/armemu/insts"
)

// ALU implements the data processing instructions.
type ALU struct {
	regFile *RegFile
	shifter *Shifter
}

// NewALU creates a new ALU connected to the given register file.
func NewALU(regFile *RegFile) *ALU {
	return &ALU{
		regFile: regFile,
		shifter: NewShifter(regFile),
	}
}

// Execute runs a data processing instruction. Compare opcodes (TST, TEQ,
// CMP) only affect flags.
func (a *ALU) Execute(inst *insts.Instruction) error {
	if inst.Op == insts.OpUnknown {
		return &Fault{
			Kind:   FaultOpcode,
			Word:   inst.Raw,
			Reason: fmt.Sprintf("unsupported data processing opcode 0x%X", inst.Opcode),
		}
	}

	op2, err := a.operand2(inst)
	if err != nil {
		return err
	}

	op1 := a.regFile.ReadReg(inst.Rn)
	result := a.evaluate(inst.Op, op1, op2.Value)

	if !inst.Op.IsCompare() {
		a.regFile.WriteReg(inst.Rd, result)
	}

	if inst.SetFlags {
		a.setFlags(inst.Op, op1, op2, result)
	}

	return nil
}

func (a *ALU) operand2(inst *insts.Instruction) (Operand2, error) {
	if inst.Immediate {
		return a.shifter.Immediate(inst.Imm, inst.Rotate), nil
	}
	return a.shifter.Register(inst)
}

func (a *ALU) evaluate(op insts.Op, op1, op2 uint32) uint32 {
	switch op {
	case insts.OpAND, insts.OpTST:
		return op1 & op2
	case insts.OpEOR, insts.OpTEQ:
		return op1 ^ op2
	case insts.OpSUB, insts.OpCMP:
		return op1 - op2
	case insts.OpRSB:
		return op2 - op1
	case insts.OpADD:
		return op1 + op2
	case insts.OpORR:
		return op1 | op2
	default: // OpMOV
		return op2
	}
}

// setFlags updates N, Z and C. V is never changed by data processing.
func (a *ALU) setFlags(op insts.Op, op1 uint32, op2 Operand2, result uint32) {
	cpsr := &a.regFile.CPSR
	cpsr.setNZ(result)

	switch {
	case op.IsLogical():
		if op2.CarryValid {
			cpsr.C = op2.Carry
		}
	case op == insts.OpADD || op == insts.OpRSB:
		cpsr.C = addCarry(op1, op2.Value, result)
	default:
		// SUB, CMP: carry means no borrow.
		cpsr.C = op2.Value <= op1
	}
}

// addCarry reports a carry out of bit 31 from the operand and result signs.
func addCarry(op1, op2, result uint32) bool {
	op1Sign := op1>>31 == 1
	op2Sign := op2>>31 == 1
	resultSign := result>>31 == 1
	return (op1Sign || op2Sign) && !resultSign
}
