package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/armemu/insts"
)

var _ = Describe("Insts Package", func() {
	It("should have an Instruction type", func() {
		var i insts.Instruction
		Expect(i).To(BeZero())
	})

	It("should have a Decoder type", func() {
		decoder := insts.NewDecoder()
		Expect(decoder).ToNot(BeNil())
	})

	It("should name opcodes and formats", func() {
		Expect(insts.OpMOV.String()).To(Equal("MOV"))
		Expect(insts.OpUnknown.String()).To(Equal("UNKNOWN"))
		Expect(insts.FormatBranch.String()).To(Equal("branch"))
		Expect(insts.FormatUnknown.String()).To(Equal("unknown"))
	})

	It("should classify opcodes", func() {
		Expect(insts.OpCMP.IsCompare()).To(BeTrue())
		Expect(insts.OpADD.IsCompare()).To(BeFalse())
		Expect(insts.OpMOV.IsLogical()).To(BeTrue())
		Expect(insts.OpTST.IsLogical()).To(BeTrue())
		Expect(insts.OpRSB.IsLogical()).To(BeFalse())
	})
})
