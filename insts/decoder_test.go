package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/armemu/insts"
)

var _ = Describe("Decoder", func() {
	var decoder *insts.Decoder

	BeforeEach(func() {
		decoder = insts.NewDecoder()
	})

	Describe("Data Processing", func() {
		// MOV R0, #5         -> 0xE3A00005
		// Encoding: cond=AL, 00, I=1, opcode=1101, S=0, Rn=0, Rd=0, rot=0, imm8=5
		It("should decode MOV R0, #5", func() {
			inst := decoder.Decode(0xE3A00005)

			Expect(inst.Format).To(Equal(insts.FormatDataProcessing))
			Expect(inst.Op).To(Equal(insts.OpMOV))
			Expect(inst.Cond).To(Equal(insts.CondAL))
			Expect(inst.Immediate).To(BeTrue())
			Expect(inst.SetFlags).To(BeFalse())
			Expect(inst.Rd).To(Equal(uint8(0)))
			Expect(inst.Imm).To(Equal(uint32(5)))
			Expect(inst.Rotate).To(Equal(uint8(0)))
			Expect(inst.Raw).To(Equal(uint32(0xE3A00005)))
		})

		// MOV R1, #0xFF000000 -> 0xE3A014FF (imm8=0xFF, rot=4)
		It("should decode the rotate field", func() {
			inst := decoder.Decode(0xE3A014FF)

			Expect(inst.Op).To(Equal(insts.OpMOV))
			Expect(inst.Rd).To(Equal(uint8(1)))
			Expect(inst.Imm).To(Equal(uint32(0xFF)))
			Expect(inst.Rotate).To(Equal(uint8(4)))
		})

		// ADD R1, R2, R3     -> 0xE0821003
		It("should decode ADD R1, R2, R3", func() {
			inst := decoder.Decode(0xE0821003)

			Expect(inst.Op).To(Equal(insts.OpADD))
			Expect(inst.Immediate).To(BeFalse())
			Expect(inst.Rd).To(Equal(uint8(1)))
			Expect(inst.Rn).To(Equal(uint8(2)))
			Expect(inst.Rm).To(Equal(uint8(3)))
			Expect(inst.ShiftType).To(Equal(insts.ShiftLSL))
			Expect(inst.ShiftAmount).To(Equal(uint8(0)))
			Expect(inst.ShiftByRegister).To(BeFalse())
		})

		// SUBS R0, R1, #1    -> 0xE2510001
		It("should decode SUBS R0, R1, #1", func() {
			inst := decoder.Decode(0xE2510001)

			Expect(inst.Op).To(Equal(insts.OpSUB))
			Expect(inst.SetFlags).To(BeTrue())
			Expect(inst.Rn).To(Equal(uint8(1)))
			Expect(inst.Rd).To(Equal(uint8(0)))
			Expect(inst.Imm).To(Equal(uint32(1)))
		})

		// CMP R1, #5         -> 0xE3510005
		It("should decode CMP R1, #5", func() {
			inst := decoder.Decode(0xE3510005)

			Expect(inst.Op).To(Equal(insts.OpCMP))
			Expect(inst.SetFlags).To(BeTrue())
			Expect(inst.Rn).To(Equal(uint8(1)))
		})

		// MOV R2, R3, LSL #4 -> 0xE1A02203
		It("should decode an immediate shift amount", func() {
			inst := decoder.Decode(0xE1A02203)

			Expect(inst.Rm).To(Equal(uint8(3)))
			Expect(inst.ShiftType).To(Equal(insts.ShiftLSL))
			Expect(inst.ShiftAmount).To(Equal(uint8(4)))
			Expect(inst.ShiftByRegister).To(BeFalse())
			Expect(inst.ShiftMalformed).To(BeFalse())
		})

		// MOV R2, R3, LSR R4 -> 0xE1A02433
		It("should decode a register shift amount", func() {
			inst := decoder.Decode(0xE1A02433)

			Expect(inst.Rm).To(Equal(uint8(3)))
			Expect(inst.Rs).To(Equal(uint8(4)))
			Expect(inst.ShiftType).To(Equal(insts.ShiftLSR))
			Expect(inst.ShiftByRegister).To(BeTrue())
		})

		It("should flag a shift with bits 4 and 7 set", func() {
			// ORR R0, R0, R1 with shift field 1011 -> 0xE18000B1
			inst := decoder.Decode(0xE18000B1)

			Expect(inst.Format).To(Equal(insts.FormatDataProcessing))
			Expect(inst.ShiftMalformed).To(BeTrue())
		})

		It("should mark unsupported opcodes as unknown", func() {
			// ADC R0, R0, #1 -> 0xE2A00001
			inst := decoder.Decode(0xE2A00001)

			Expect(inst.Format).To(Equal(insts.FormatDataProcessing))
			Expect(inst.Op).To(Equal(insts.OpUnknown))
			Expect(inst.Opcode).To(Equal(uint8(0b0101)))
		})
	})

	Describe("Multiply", func() {
		// MUL R0, R1, R2     -> 0xE0000291
		It("should decode MUL R0, R1, R2", func() {
			inst := decoder.Decode(0xE0000291)

			Expect(inst.Format).To(Equal(insts.FormatMultiply))
			Expect(inst.Accumulate).To(BeFalse())
			Expect(inst.SetFlags).To(BeFalse())
			Expect(inst.Rd).To(Equal(uint8(0)))
			Expect(inst.Rm).To(Equal(uint8(1)))
			Expect(inst.Rs).To(Equal(uint8(2)))
		})

		// MLAS R3, R1, R2, R4 -> 0xE0334291
		It("should decode MLAS R3, R1, R2, R4", func() {
			inst := decoder.Decode(0xE0334291)

			Expect(inst.Format).To(Equal(insts.FormatMultiply))
			Expect(inst.Accumulate).To(BeTrue())
			Expect(inst.SetFlags).To(BeTrue())
			Expect(inst.Rd).To(Equal(uint8(3)))
			Expect(inst.Rn).To(Equal(uint8(4)))
			Expect(inst.Rs).To(Equal(uint8(2)))
			Expect(inst.Rm).To(Equal(uint8(1)))
		})
	})

	Describe("Single Data Transfer", func() {
		// LDR R0, [R1, #4]   -> 0xE5910004
		It("should decode a pre-indexed immediate load", func() {
			inst := decoder.Decode(0xE5910004)

			Expect(inst.Format).To(Equal(insts.FormatSingleTransfer))
			Expect(inst.Load).To(BeTrue())
			Expect(inst.PreIndex).To(BeTrue())
			Expect(inst.Up).To(BeTrue())
			Expect(inst.Immediate).To(BeFalse())
			Expect(inst.Rn).To(Equal(uint8(1)))
			Expect(inst.Rd).To(Equal(uint8(0)))
			Expect(inst.Imm).To(Equal(uint32(4)))
		})

		// STR R0, [R1], #-8  -> 0xE4010008
		It("should decode a post-indexed store with a negative offset", func() {
			inst := decoder.Decode(0xE4010008)

			Expect(inst.Format).To(Equal(insts.FormatSingleTransfer))
			Expect(inst.Load).To(BeFalse())
			Expect(inst.PreIndex).To(BeFalse())
			Expect(inst.Up).To(BeFalse())
			Expect(inst.Imm).To(Equal(uint32(8)))
		})

		// LDR R0, [R1, R2, LSL #2] -> 0xE7910102
		It("should decode a shifted register offset", func() {
			inst := decoder.Decode(0xE7910102)

			Expect(inst.Format).To(Equal(insts.FormatSingleTransfer))
			Expect(inst.Immediate).To(BeTrue())
			Expect(inst.Rm).To(Equal(uint8(2)))
			Expect(inst.ShiftType).To(Equal(insts.ShiftLSL))
			Expect(inst.ShiftAmount).To(Equal(uint8(2)))
		})

		It("should reject byte transfers", func() {
			// LDRB R0, [R1] -> 0xE5D10000
			inst := decoder.Decode(0xE5D10000)

			Expect(inst.Format).To(Equal(insts.FormatUnknown))
		})
	})

	Describe("Branch", func() {
		It("should decode a zero offset", func() {
			inst := decoder.Decode(0xEA000000)

			Expect(inst.Format).To(Equal(insts.FormatBranch))
			Expect(inst.BranchOffset).To(Equal(int32(0)))
		})

		It("should sign-extend negative offsets", func() {
			// B . -> offset -2 words
			inst := decoder.Decode(0xEAFFFFFE)

			Expect(inst.BranchOffset).To(Equal(int32(-8)))
		})

		It("should decode the most negative offset", func() {
			inst := decoder.Decode(0xEA800000)

			Expect(inst.BranchOffset).To(Equal(int32(-0x800000 * 4)))
		})

		It("should decode a conditional forward branch", func() {
			// BNE +2 words -> 0x1A000002
			inst := decoder.Decode(0x1A000002)

			Expect(inst.Cond).To(Equal(insts.CondNE))
			Expect(inst.BranchOffset).To(Equal(int32(8)))
		})

		It("should not decode branch with link", func() {
			inst := decoder.Decode(0xEB000000)

			Expect(inst.Format).To(Equal(insts.FormatUnknown))
		})
	})

	Describe("Unknown", func() {
		It("should leave coprocessor encodings unknown", func() {
			inst := decoder.Decode(0xEC000000)

			Expect(inst.Format).To(Equal(insts.FormatUnknown))
			Expect(inst.Cond).To(Equal(insts.CondAL))
		})
	})
})
