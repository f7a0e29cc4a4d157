package benchmarks

import (
	"encoding/binary"

	"github.com/sarchlab/armemu/insts"
)

// BuildProgram converts instruction words into a little-endian image.
func BuildProgram(instrs ...uint32) []byte {
	program := make([]byte, 0, len(instrs)*4)
	for _, inst := range instrs {
		program = binary.LittleEndian.AppendUint32(program, inst)
	}
	return program
}

// WithCond replaces the condition field of an encoded instruction.
func WithCond(cond insts.Cond, inst uint32) uint32 {
	return insts.WithCond(cond, inst)
}

// EncodeDPImm encodes a data processing instruction with an immediate
// operand 2 of imm8 rotated right by 2*rotate. Compares always set flags.
func EncodeDPImm(op insts.Op, rd, rn uint8, imm8, rotate uint32, setFlags bool) uint32 {
	return insts.EncodeDPImm(op.Opcode(), rd, rn, imm8, rotate, setFlags || op.IsCompare())
}

// EncodeDPReg encodes a data processing instruction whose operand 2 is Rm
// shifted by an immediate amount.
func EncodeDPReg(
	op insts.Op,
	rd, rn, rm uint8,
	shift insts.ShiftType,
	amount uint32,
	setFlags bool,
) uint32 {
	return insts.EncodeDPReg(op.Opcode(), rd, rn, rm, shift, amount, setFlags || op.IsCompare())
}

// EncodeMUL encodes MUL, or MLA when accumulate is set.
// Rd = Rm * Rs (+ Rn)
func EncodeMUL(rd, rm, rs, rn uint8, accumulate, setFlags bool) uint32 {
	return insts.EncodeMUL(rd, rm, rs, rn, accumulate, setFlags)
}

// EncodeTransfer encodes a word LDR/STR with a 12-bit immediate offset.
// A negative offset clears the U bit.
func EncodeTransfer(load bool, rd, rn uint8, offset int32, preIndex bool) uint32 {
	up := offset >= 0
	if !up {
		offset = -offset
	}
	return insts.EncodeTransfer(load, rd, rn, uint32(offset), preIndex, up)
}

// EncodeLDR encodes LDR Rd, [Rn, #offset].
func EncodeLDR(rd, rn uint8, offset int32) uint32 {
	return EncodeTransfer(true, rd, rn, offset, true)
}

// EncodeSTR encodes STR Rd, [Rn, #offset].
func EncodeSTR(rd, rn uint8, offset int32) uint32 {
	return EncodeTransfer(false, rd, rn, offset, true)
}

// EncodeLDRPost encodes LDR Rd, [Rn], #offset.
func EncodeLDRPost(rd, rn uint8, offset int32) uint32 {
	return EncodeTransfer(true, rd, rn, offset, false)
}

// EncodeSTRPost encodes STR Rd, [Rn], #offset.
func EncodeSTRPost(rd, rn uint8, offset int32) uint32 {
	return EncodeTransfer(false, rd, rn, offset, false)
}

// EncodeB encodes a branch to the address offset bytes away from the branch
// itself.
func EncodeB(cond insts.Cond, offset int32) uint32 {
	return insts.EncodeB(cond, (offset-8)/4)
}
