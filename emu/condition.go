package emu

import "github.com/sarchlab/armemu/insts"

// CheckCondition evaluates a condition code against the CPSR flags.
// Only EQ, NE, GE, LT, GT, LE and AL are supported; every other code
// evaluates false so the instruction is skipped.
func CheckCondition(cond insts.Cond, flags CPSR) bool {
	switch cond {
	case insts.CondEQ:
		return flags.Z
	case insts.CondNE:
		return !flags.Z
	case insts.CondGE:
		return flags.N == flags.V
	case insts.CondLT:
		return flags.N != flags.V
	case insts.CondGT:
		return !flags.Z && (flags.N == flags.V)
	case insts.CondLE:
		return flags.Z || (flags.N != flags.V)
	case insts.CondAL:
		return true
	default:
		return false
	}
}
