package insts

// Encoders build raw instruction words with the AL condition. They take raw
// field values, so encodings the decoder rejects can still be produced.

// Opcode returns the 4-bit data processing opcode field for o, or 0xFF for
// OpUnknown.
func (o Op) Opcode() uint8 {
	for field, op := range opcodeTable {
		if op == o && o != OpUnknown {
			return uint8(field)
		}
	}
	return 0xFF
}

// WithCond replaces the condition field of an encoded instruction.
func WithCond(cond Cond, word uint32) uint32 {
	return word&0x0FFFFFFF | uint32(cond)<<28
}

func encodeDataProcessing(opcode uint8, rd, rn uint8, setFlags bool) uint32 {
	word := uint32(CondAL) << 28
	word |= uint32(opcode&0xF) << 21
	if setFlags {
		word |= 1 << 20
	}
	word |= uint32(rn&0xF) << 16
	word |= uint32(rd&0xF) << 12
	return word
}

// EncodeDPImm encodes a data processing instruction whose operand 2 is imm8
// rotated right by 2*rotate.
func EncodeDPImm(opcode uint8, rd, rn uint8, imm8, rotate uint32, setFlags bool) uint32 {
	word := encodeDataProcessing(opcode, rd, rn, setFlags)
	word |= 1 << 25
	word |= (rotate & 0xF) << 8
	word |= imm8 & 0xFF
	return word
}

// EncodeDPReg encodes a data processing instruction whose operand 2 is Rm
// shifted by an immediate amount.
func EncodeDPReg(
	opcode uint8,
	rd, rn, rm uint8,
	shift ShiftType,
	amount uint32,
	setFlags bool,
) uint32 {
	word := encodeDataProcessing(opcode, rd, rn, setFlags)
	word |= (amount & 0x1F) << 7
	word |= uint32(shift&0x3) << 5
	word |= uint32(rm & 0xF)
	return word
}

// EncodeDPRegShiftReg encodes a data processing instruction whose operand 2
// is Rm shifted by the bottom byte of Rs.
func EncodeDPRegShiftReg(
	opcode uint8,
	rd, rn, rm, rs uint8,
	shift ShiftType,
	setFlags bool,
) uint32 {
	word := encodeDataProcessing(opcode, rd, rn, setFlags)
	word |= uint32(rs&0xF) << 8
	word |= uint32(shift&0x3) << 5
	word |= 1 << 4
	word |= uint32(rm & 0xF)
	return word
}

// EncodeMUL encodes MUL, or MLA when accumulate is set.
// Rd = Rm * Rs (+ Rn)
func EncodeMUL(rd, rm, rs, rn uint8, accumulate, setFlags bool) uint32 {
	word := uint32(CondAL) << 28
	if accumulate {
		word |= 1 << 21
	}
	if setFlags {
		word |= 1 << 20
	}
	word |= uint32(rd&0xF) << 16
	word |= uint32(rn&0xF) << 12
	word |= uint32(rs&0xF) << 8
	word |= 0b1001 << 4
	word |= uint32(rm & 0xF)
	return word
}

// EncodeTransfer encodes a word LDR/STR with a 12-bit immediate offset.
func EncodeTransfer(load bool, rd, rn uint8, offset uint32, preIndex, up bool) uint32 {
	word := uint32(CondAL) << 28
	word |= 0b01 << 26
	if preIndex {
		word |= 1 << 24
	}
	if up {
		word |= 1 << 23
	}
	if load {
		word |= 1 << 20
	}
	word |= uint32(rn&0xF) << 16
	word |= uint32(rd&0xF) << 12
	word |= offset & 0xFFF
	return word
}

// EncodeTransferReg encodes a word LDR/STR whose offset is Rm shifted by an
// immediate amount.
func EncodeTransferReg(
	load bool,
	rd, rn, rm uint8,
	shift ShiftType,
	amount uint32,
	preIndex, up bool,
) uint32 {
	word := EncodeTransfer(load, rd, rn, 0, preIndex, up)
	word |= 1 << 25
	word |= (amount & 0x1F) << 7
	word |= uint32(shift&0x3) << 5
	word |= uint32(rm & 0xF)
	return word
}

// EncodeB encodes a branch with a raw signed 24-bit word offset. The target
// is the branch address + 8 + 4*imm24.
func EncodeB(cond Cond, imm24 int32) uint32 {
	word := uint32(cond) << 28
	word |= 0b1010 << 24
	word |= uint32(imm24) & 0xFFFFFF
	return word
}
