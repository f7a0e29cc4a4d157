package emu_test

import (
	"encoding/binary"

	"github.com/sarchlab/armemu/insts"
)

// Data processing opcode fields.
const (
	opAND uint32 = 0b0000
	opEOR uint32 = 0b0001
	opSUB uint32 = 0b0010
	opRSB uint32 = 0b0011
	opADD uint32 = 0b0100
	opADC uint32 = 0b0101
	opTST uint32 = 0b1000
	opTEQ uint32 = 0b1001
	opCMP uint32 = 0b1010
	opORR uint32 = 0b1100
	opMOV uint32 = 0b1101
)

func program(words ...uint32) []byte {
	buf := make([]byte, 4*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint32(buf[4*i:], w)
	}
	return buf
}

// The helpers below keep the uint32 opcode constants used across the
// emulator tests and delegate the bit layout to the insts encoders.

func encodeDPImm(op uint32, rd, rn uint8, imm8, rotate uint32, setFlags bool) uint32 {
	return insts.EncodeDPImm(uint8(op), rd, rn, imm8, rotate, setFlags)
}

func encodeDPReg(op uint32, rd, rn, rm uint8, shift insts.ShiftType, amount uint32, setFlags bool) uint32 {
	return insts.EncodeDPReg(uint8(op), rd, rn, rm, shift, amount, setFlags)
}

func encodeDPRegShiftReg(op uint32, rd, rn, rm, rs uint8, shift insts.ShiftType, setFlags bool) uint32 {
	return insts.EncodeDPRegShiftReg(uint8(op), rd, rn, rm, rs, shift, setFlags)
}

func encodeMUL(rd, rm, rs, rn uint8, accumulate, setFlags bool) uint32 {
	return insts.EncodeMUL(rd, rm, rs, rn, accumulate, setFlags)
}

func encodeLDR(rd, rn uint8, offset uint32, preIndex, up bool) uint32 {
	return insts.EncodeTransfer(true, rd, rn, offset, preIndex, up)
}

func encodeSTR(rd, rn uint8, offset uint32, preIndex, up bool) uint32 {
	return insts.EncodeTransfer(false, rd, rn, offset, preIndex, up)
}

func encodeTransferReg(load bool, rd, rn, rm uint8, shift insts.ShiftType, amount uint32, preIndex, up bool) uint32 {
	return insts.EncodeTransferReg(load, rd, rn, rm, shift, amount, preIndex, up)
}

func encodeB(cond insts.Cond, words int32) uint32 {
	return insts.EncodeB(cond, words)
}

func withCond(cond insts.Cond, inst uint32) uint32 {
	return insts.WithCond(cond, inst)
}
