package emu

import (
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/armemu/insts"
)

// AccessRegion tells where a single data transfer landed.
type AccessRegion uint8

// Access regions.
const (
	RegionMemory AccessRegion = iota
	RegionGPIO
)

// Access describes a completed single data transfer.
type Access struct {
	Addr   uint32
	Load   bool
	Region AccessRegion
}

// LoadStoreUnit implements LDR and STR.
type LoadStoreUnit struct {
	regFile *RegFile
	memory  *Memory
	shifter *Shifter
	gpio    *GPIO
	logger  logrus.FieldLogger
}

// NewLoadStoreUnit creates a new LoadStoreUnit connected to the given
// register file, memory and GPIO controller.
func NewLoadStoreUnit(
	regFile *RegFile,
	memory *Memory,
	gpio *GPIO,
	logger logrus.FieldLogger,
) *LoadStoreUnit {
	return &LoadStoreUnit{
		regFile: regFile,
		memory:  memory,
		shifter: NewShifter(regFile),
		gpio:    gpio,
		logger:  logger,
	}
}

// Execute runs a single data transfer. An access outside memory that is not a
// GPIO register is logged and has no effect; it returns a nil Access and a
// nil error.
func (lsu *LoadStoreUnit) Execute(inst *insts.Instruction) (*Access, error) {
	if inst.Rd == insts.PC {
		return nil, operandFault(inst.Raw, "transfer register is PC")
	}

	offset, err := lsu.offset(inst)
	if err != nil {
		return nil, err
	}

	base := lsu.regFile.ReadReg(inst.Rn)
	indexed := base + offset
	if !inst.Up {
		indexed = base - offset
	}

	addr := base
	if inst.PreIndex {
		addr = indexed
	}

	access, ok := lsu.transfer(inst, addr)
	if !ok {
		return nil, nil
	}

	if !inst.PreIndex {
		lsu.regFile.WriteReg(inst.Rn, indexed)
	}

	return access, nil
}

// offset returns the unsigned offset magnitude.
func (lsu *LoadStoreUnit) offset(inst *insts.Instruction) (uint32, error) {
	if !inst.Immediate {
		return inst.Imm, nil
	}

	if inst.ShiftByRegister {
		return 0, operandFault(inst.Raw, "transfer offset shifted by register")
	}
	if inst.PreIndex && inst.Rm == inst.Rd {
		return 0, operandFault(inst.Raw, "offset register R%d is also Rd", inst.Rm)
	}

	op2, err := lsu.shifter.Register(inst)
	if err != nil {
		return 0, err
	}
	return op2.Value, nil
}

// transfer performs the access. It returns false if the access was dropped.
func (lsu *LoadStoreUnit) transfer(inst *insts.Instruction, addr uint32) (*Access, bool) {
	if value, ok := lsu.gpio.Access(addr, inst.Load); ok {
		if inst.Load {
			lsu.regFile.WriteReg(inst.Rd, value)
		}
		return &Access{Addr: addr, Load: inst.Load, Region: RegionGPIO}, true
	}

	if addr >= lsu.memory.Size()-4 {
		lsu.logger.WithFields(logrus.Fields{
			"addr": addr,
			"word": inst.Raw,
		}).Warnf("Out of bounds memory access at address 0x%08x", addr)
		return nil, false
	}

	if inst.Load {
		lsu.regFile.WriteReg(inst.Rd, lsu.memory.Read32(addr))
	} else {
		lsu.memory.Write32(addr, lsu.regFile.ReadReg(inst.Rd))
	}

	return &Access{Addr: addr, Load: inst.Load, Region: RegionMemory}, true
}
