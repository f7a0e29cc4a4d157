package emu

import "github.com/sarchlab/armemu/insts"

// Multiplier implements MUL and MLA.
type Multiplier struct {
	regFile *RegFile
}

// NewMultiplier creates a new Multiplier connected to the given register file.
func NewMultiplier(regFile *RegFile) *Multiplier {
	return &Multiplier{regFile: regFile}
}

// Execute computes Rd = Rm * Rs (+ Rn when accumulating). With the S bit set
// only N and Z are updated.
func (m *Multiplier) Execute(inst *insts.Instruction) error {
	if inst.Rd == inst.Rm {
		return operandFault(inst.Raw, "multiply destination R%d is also Rm", inst.Rd)
	}
	for _, reg := range []uint8{inst.Rd, inst.Rm, inst.Rs, inst.Rn} {
		if reg == insts.PC {
			return operandFault(inst.Raw, "multiply uses PC")
		}
	}

	result := m.regFile.ReadReg(inst.Rm) * m.regFile.ReadReg(inst.Rs)
	if inst.Accumulate {
		result += m.regFile.ReadReg(inst.Rn)
	}

	m.regFile.WriteReg(inst.Rd, result)

	if inst.SetFlags {
		m.regFile.CPSR.setNZ(result)
	}

	return nil
}
