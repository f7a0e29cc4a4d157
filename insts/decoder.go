// Package insts provides ARM instruction definitions and decoding.
package insts

// Op represents a data processing opcode.
type Op uint8

// Data processing opcodes supported by the emulator. OpUnknown covers every
// 4-bit opcode field outside the supported set.
const (
	OpUnknown Op = iota
	OpAND
	OpEOR
	OpSUB
	OpRSB
	OpADD
	OpTST
	OpTEQ
	OpCMP
	OpORR
	OpMOV
)

// opcodeTable maps the 4-bit opcode field (bits [24:21]) to an Op.
var opcodeTable = [16]Op{
	0b0000: OpAND,
	0b0001: OpEOR,
	0b0010: OpSUB,
	0b0011: OpRSB,
	0b0100: OpADD,
	0b1000: OpTST,
	0b1001: OpTEQ,
	0b1010: OpCMP,
	0b1100: OpORR,
	0b1101: OpMOV,
}

var opNames = map[Op]string{
	OpAND: "AND",
	OpEOR: "EOR",
	OpSUB: "SUB",
	OpRSB: "RSB",
	OpADD: "ADD",
	OpTST: "TST",
	OpTEQ: "TEQ",
	OpCMP: "CMP",
	OpORR: "ORR",
	OpMOV: "MOV",
}

func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return "UNKNOWN"
}

// IsCompare reports whether the opcode only sets flags and never writes Rd.
func (o Op) IsCompare() bool {
	return o == OpTST || o == OpTEQ || o == OpCMP
}

// IsLogical reports whether the opcode takes its carry from the shifter.
func (o Op) IsLogical() bool {
	switch o {
	case OpAND, OpEOR, OpORR, OpTEQ, OpTST, OpMOV:
		return true
	default:
		return false
	}
}

// Format represents an instruction encoding format.
type Format uint8

// Instruction formats.
const (
	FormatUnknown        Format = iota
	FormatDataProcessing        // Data Processing
	FormatMultiply              // Multiply / Multiply-Accumulate
	FormatSingleTransfer        // Single Data Transfer (LDR/STR)
	FormatBranch                // Branch
)

func (f Format) String() string {
	switch f {
	case FormatDataProcessing:
		return "data-processing"
	case FormatMultiply:
		return "multiply"
	case FormatSingleTransfer:
		return "single-transfer"
	case FormatBranch:
		return "branch"
	default:
		return "unknown"
	}
}

// Cond represents an ARM condition code (bits [31:28]).
type Cond uint8

// ARM condition codes.
const (
	CondEQ Cond = 0b0000 // Equal (Z == 1)
	CondNE Cond = 0b0001 // Not Equal (Z == 0)
	CondCS Cond = 0b0010 // Carry Set (C == 1)
	CondCC Cond = 0b0011 // Carry Clear (C == 0)
	CondMI Cond = 0b0100 // Minus / Negative (N == 1)
	CondPL Cond = 0b0101 // Plus / Positive or zero (N == 0)
	CondVS Cond = 0b0110 // Overflow (V == 1)
	CondVC Cond = 0b0111 // No overflow (V == 0)
	CondHI Cond = 0b1000 // Unsigned higher (C == 1 && Z == 0)
	CondLS Cond = 0b1001 // Unsigned lower or same (C == 0 || Z == 1)
	CondGE Cond = 0b1010 // Signed greater than or equal (N == V)
	CondLT Cond = 0b1011 // Signed less than (N != V)
	CondGT Cond = 0b1100 // Signed greater than (Z == 0 && N == V)
	CondLE Cond = 0b1101 // Signed less than or equal (Z == 1 || N != V)
	CondAL Cond = 0b1110 // Always
	CondNV Cond = 0b1111 // Reserved
)

// ShiftType represents a shift type for register operands.
type ShiftType uint8

// Shift types.
const (
	ShiftLSL ShiftType = 0b00 // Logical shift left
	ShiftLSR ShiftType = 0b01 // Logical shift right
	ShiftASR ShiftType = 0b10 // Arithmetic shift right
	ShiftROR ShiftType = 0b11 // Rotate right
)

// PC is the register number of the program counter.
const PC uint8 = 15

// Instruction represents a decoded ARM instruction.
type Instruction struct {
	Raw    uint32 // Undecoded instruction word
	Format Format // Encoding format
	Cond   Cond   // Condition field

	// Data processing
	Op       Op    // Operation code (OpUnknown if unsupported)
	Opcode   uint8 // Raw 4-bit opcode field
	SetFlags bool  // S bit

	// Immediate is the I bit (bit 25). For data processing it selects a
	// rotated immediate operand 2. For single data transfer it selects a
	// shifted register offset.
	Immediate bool

	// Registers
	Rd uint8
	Rn uint8
	Rm uint8
	Rs uint8

	// Immediate operand
	Imm    uint32 // imm8 for data processing, 12-bit offset for transfers
	Rotate uint8  // Rotate field for data processing immediates

	// Shifted register operand
	ShiftType       ShiftType
	ShiftByRegister bool  // Shift amount comes from the bottom byte of Rs
	ShiftAmount     uint8 // 5-bit immediate shift amount
	ShiftMalformed  bool  // Bit 4 and bit 7 both set

	// Multiply
	Accumulate bool

	// Single data transfer
	PreIndex bool
	Up       bool
	Load     bool

	// Branch
	BranchOffset int32 // Signed branch offset in bytes
}

// Decoder decodes ARM machine code into instructions.
type Decoder struct{}

// NewDecoder creates a new ARM instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes a 32-bit ARM instruction word. Words that match none of the
// supported encodings come back with FormatUnknown.
func (d *Decoder) Decode(word uint32) *Instruction {
	inst := &Instruction{
		Raw:    word,
		Format: FormatUnknown,
		Cond:   Cond(word >> 28),
	}

	switch {
	case d.isBranch(word):
		d.decodeBranch(word, inst)
	case d.isSingleTransfer(word):
		d.decodeSingleTransfer(word, inst)
	case d.isMultiply(word):
		d.decodeMultiply(word, inst)
	case d.isDataProcessing(word):
		d.decodeDataProcessing(word, inst)
	}

	return inst
}

// isBranch checks for a branch without link.
// B: bits [27:24] == 0b1010
func (d *Decoder) isBranch(word uint32) bool {
	return (word>>24)&0xF == 0b1010
}

// decodeBranch decodes B.
// Format: cond | 1010 | offset24
func (d *Decoder) decodeBranch(word uint32, inst *Instruction) {
	inst.Format = FormatBranch

	// Shift the 24-bit field to the top so the arithmetic shift sign-extends
	// it, then back down to a byte offset.
	inst.BranchOffset = int32(word<<8) >> 6
}

// isSingleTransfer checks for a word LDR/STR without write-back.
// bits [27:26] == 0b01, bits [22:21] == 0b00
func (d *Decoder) isSingleTransfer(word uint32) bool {
	return (word>>26)&0x3 == 0b01 && (word>>21)&0x3 == 0b00
}

// decodeSingleTransfer decodes LDR/STR.
// Format: cond | 01 | I | P | U | 0 | 0 | L | Rn | Rd | offset12
func (d *Decoder) decodeSingleTransfer(word uint32, inst *Instruction) {
	inst.Format = FormatSingleTransfer

	inst.Immediate = (word>>25)&0x1 == 1
	inst.PreIndex = (word>>24)&0x1 == 1
	inst.Up = (word>>23)&0x1 == 1
	inst.Load = (word>>20)&0x1 == 1
	inst.Rn = uint8((word >> 16) & 0xF)
	inst.Rd = uint8((word >> 12) & 0xF)

	if inst.Immediate {
		d.decodeShiftedRegister(word, inst)
	} else {
		inst.Imm = word & 0xFFF
	}
}

// isMultiply checks for MUL/MLA.
// bits [27:22] == 0b000000, bits [7:4] == 0b1001
func (d *Decoder) isMultiply(word uint32) bool {
	return (word>>22)&0x3F == 0 && (word>>4)&0xF == 0b1001
}

// decodeMultiply decodes MUL and MLA.
// Format: cond | 000000 | A | S | Rd | Rn | Rs | 1001 | Rm
func (d *Decoder) decodeMultiply(word uint32, inst *Instruction) {
	inst.Format = FormatMultiply

	inst.Accumulate = (word>>21)&0x1 == 1
	inst.SetFlags = (word>>20)&0x1 == 1
	inst.Rd = uint8((word >> 16) & 0xF)
	inst.Rn = uint8((word >> 12) & 0xF)
	inst.Rs = uint8((word >> 8) & 0xF)
	inst.Rm = uint8(word & 0xF)
}

// isDataProcessing checks for the data processing class.
// bits [27:26] == 0b00
func (d *Decoder) isDataProcessing(word uint32) bool {
	return (word>>26)&0x3 == 0b00
}

// decodeDataProcessing decodes ALU instructions.
// Format: cond | 00 | I | opcode | S | Rn | Rd | operand2
func (d *Decoder) decodeDataProcessing(word uint32, inst *Instruction) {
	inst.Format = FormatDataProcessing

	opcode := uint8((word >> 21) & 0xF)

	inst.Opcode = opcode
	inst.Op = opcodeTable[opcode]
	inst.Immediate = (word>>25)&0x1 == 1
	inst.SetFlags = (word>>20)&0x1 == 1
	inst.Rn = uint8((word >> 16) & 0xF)
	inst.Rd = uint8((word >> 12) & 0xF)

	if inst.Immediate {
		inst.Imm = word & 0xFF
		inst.Rotate = uint8((word >> 8) & 0xF)
	} else {
		d.decodeShiftedRegister(word, inst)
	}
}

// decodeShiftedRegister decodes the shifted register form of operand 2.
// Format: shift[11:4] | Rm
//
//	amount5 | type | 0         immediate shift amount
//	Rs | 0 | type | 1          register shift amount
func (d *Decoder) decodeShiftedRegister(word uint32, inst *Instruction) {
	inst.Rm = uint8(word & 0xF)
	inst.ShiftType = ShiftType((word >> 5) & 0x3)

	if (word>>4)&0x1 == 0 {
		inst.ShiftAmount = uint8((word >> 7) & 0x1F)
		return
	}

	if (word>>7)&0x1 == 1 {
		inst.ShiftMalformed = true
		return
	}

	inst.ShiftByRegister = true
	inst.Rs = uint8((word >> 8) & 0xF)
}
