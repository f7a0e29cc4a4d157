package emu_test

import (
	"bytes"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/sarchlab/armemu/emu"
	"github.com/sarchlab/armemu/insts"
)

var _ = Describe("Emulator", func() {
	var (
		e         *emu.Emulator
		stdoutBuf *bytes.Buffer
		hook      *logtest.Hook
	)

	load := func(words ...uint32) {
		Expect(e.LoadProgram(program(words...))).To(Succeed())
	}

	BeforeEach(func() {
		var logger *logrus.Logger
		logger, hook = logtest.NewNullLogger()

		stdoutBuf = &bytes.Buffer{}
		e = emu.NewEmulator(
			emu.WithStdout(stdoutBuf),
			emu.WithLogger(logger),
		)
	})

	Describe("NewEmulator", func() {
		It("should create an emulator with initialized components", func() {
			Expect(e).NotTo(BeNil())
			Expect(e.RegFile()).NotTo(BeNil())
			Expect(e.Memory()).NotTo(BeNil())
			Expect(e.GPIO()).NotTo(BeNil())
		})

		It("should start with PC at 4", func() {
			Expect(e.RegFile().PC()).To(Equal(uint32(emu.InitialPC)))
		})

		It("should create a default logger when none is given", func() {
			stderr := &bytes.Buffer{}
			e = emu.NewEmulator(emu.WithStderr(stderr))
			Expect(e.LoadProgram(program(encodeSTR(0, 1, 0, true, true)))).To(Succeed())
			e.RegFile().WriteReg(1, emu.MemorySize)

			Expect(e.Step().Err).NotTo(HaveOccurred())

			Expect(stderr.String()).To(ContainSubstring("level=warning"))
			Expect(stderr.String()).To(ContainSubstring("Out of bounds memory access"))
		})
	})

	Describe("LoadProgram", func() {
		It("should load program bytes at address 0", func() {
			Expect(e.LoadProgram([]byte{0xDE, 0xAD, 0xBE, 0xEF})).To(Succeed())

			Expect(e.Memory().Read8(0)).To(Equal(byte(0xDE)))
			Expect(e.Memory().Read8(3)).To(Equal(byte(0xEF)))
		})

		It("should reject images that fill memory", func() {
			err := e.LoadProgram(make([]byte, emu.MemorySize))

			Expect(errors.Is(err, emu.ErrImageTooLarge)).To(BeTrue())
		})
	})

	Describe("Step", func() {
		It("should fetch from PC - 8 after advancing PC", func() {
			load(encodeDPImm(opMOV, 0, 0, 5, 0, false))

			result := e.Step()

			Expect(result.Err).NotTo(HaveOccurred())
			Expect(result.Halted).To(BeFalse())
			Expect(result.Executed).To(BeTrue())
			Expect(result.Inst.Op).To(Equal(insts.OpMOV))
			Expect(e.RegFile().PC()).To(Equal(uint32(8)))
			Expect(e.RegFile().ReadReg(0)).To(Equal(uint32(5)))
		})

		It("should report the address of each fetched instruction", func() {
			load(
				encodeDPImm(opMOV, 0, 0, 5, 0, false),
				encodeB(insts.CondAL, 0),
				encodeDPImm(opMOV, 1, 0, 1, 0, false),
			)

			Expect(e.Step().PC).To(Equal(uint32(0)))
			Expect(e.Step().PC).To(Equal(uint32(4)))
			result := e.Step()
			Expect(result.Halted).To(BeTrue())
			Expect(result.PC).To(Equal(uint32(12)))
		})

		It("should halt on a zero word", func() {
			result := e.Step()

			Expect(result.Halted).To(BeTrue())
			Expect(result.Err).NotTo(HaveOccurred())
			Expect(e.InstructionCount()).To(BeZero())
		})

		It("should skip instructions whose condition fails", func() {
			load(withCond(insts.CondEQ, encodeDPImm(opMOV, 0, 0, 1, 0, false)))

			result := e.Step()

			Expect(result.Executed).To(BeFalse())
			Expect(result.Err).NotTo(HaveOccurred())
			Expect(e.RegFile().ReadReg(0)).To(BeZero())
			Expect(e.InstructionCount()).To(Equal(uint64(1)))
		})

		It("should skip unknown encodings under an unsupported condition", func() {
			load(0x2C000000)

			result := e.Step()

			Expect(result.Err).NotTo(HaveOccurred())
			Expect(result.Executed).To(BeFalse())
		})

		It("should report the transfer access", func() {
			e.RegFile().WriteReg(1, 0x100)
			load(encodeSTR(0, 1, 0, true, true))

			result := e.Step()

			Expect(result.Access).To(Equal(&emu.Access{Addr: 0x100, Region: emu.RegionMemory}))
		})

		It("should trace steps at debug level", func() {
			logger, debugHook := logtest.NewNullLogger()
			logger.SetLevel(logrus.DebugLevel)
			e = emu.NewEmulator(emu.WithStdout(stdoutBuf), emu.WithLogger(logger))
			load(encodeDPImm(opMOV, 0, 0, 5, 0, false))

			e.Step()

			Expect(debugHook.LastEntry()).NotTo(BeNil())
			Expect(debugHook.LastEntry().Data).To(HaveKeyWithValue("pc", uint32(0)))
			Expect(debugHook.LastEntry().Data).To(HaveKeyWithValue("word", uint32(0xE3A00005)))
		})
	})

	Describe("Run", func() {
		It("should run MOV r0, #5 to the terminator", func() {
			load(0xE3A00005, 0)

			Expect(e.Run()).To(Succeed())

			Expect(e.RegFile().ReadReg(0)).To(Equal(uint32(5)))
			Expect(e.RegFile().PC()).To(Equal(uint32(12)))
			Expect(e.InstructionCount()).To(Equal(uint64(1)))
		})

		It("should print GPIO accesses in order", func() {
			load(
				encodeLDR(1, 15, 8, true, true), // R1 = word at 16
				encodeSTR(0, 1, 0, true, true),  // function select
				encodeSTR(0, 1, 0x1C, true, true),
				0,
				emu.GPIOSelect0,
			)

			Expect(e.Run()).To(Succeed())

			Expect(stdoutBuf.String()).To(Equal(
				"One GPIO pin from 0 to 9 has been accessed\nPIN ON\n"))
			Expect(e.GPIO().On()).To(BeTrue())
		})

		It("should build a GPIO address from rotated immediates", func() {
			load(
				encodeDPImm(opMOV, 1, 0, 0x2, 2, false), // 0x20000000
				encodeDPImm(opORR, 1, 1, 0x2, 6, false), // | 0x00200000
				encodeSTR(0, 1, 0x28, true, true),
			)

			Expect(e.Run()).To(Succeed())

			Expect(e.RegFile().ReadReg(1)).To(Equal(emu.GPIOSelect0))
			Expect(stdoutBuf.String()).To(Equal("PIN OFF\n"))
		})

		It("should count down with SUBS and BNE", func() {
			load(
				encodeDPImm(opMOV, 0, 0, 3, 0, false),
				encodeDPImm(opSUB, 0, 0, 1, 0, true),
				encodeB(insts.CondNE, -3), // back to the SUBS
				encodeDPImm(opADD, 2, 2, 1, 0, false),
			)

			Expect(e.Run()).To(Succeed())

			Expect(e.RegFile().ReadReg(0)).To(BeZero())
			Expect(e.RegFile().ReadReg(2)).To(Equal(uint32(1)))
			Expect(e.RegFile().CPSR.Z).To(BeTrue())
			Expect(e.RegFile().CPSR.C).To(BeTrue())
		})

		It("should multiply and accumulate", func() {
			load(
				encodeDPImm(opMOV, 1, 0, 6, 0, false),
				encodeDPImm(opMOV, 2, 0, 7, 0, false),
				encodeDPImm(opMOV, 3, 0, 8, 0, false),
				encodeMUL(0, 1, 2, 3, true, false),
			)

			Expect(e.Run()).To(Succeed())

			Expect(e.RegFile().ReadReg(0)).To(Equal(uint32(50)))
		})

		It("should keep running after an out-of-bounds access", func() {
			load(
				encodeDPImm(opMOV, 1, 0, 0x1, 8, false), // 0x10000
				encodeSTR(1, 1, 0, true, true),
				encodeDPImm(opMOV, 2, 0, 1, 0, false),
			)

			Expect(e.Run()).To(Succeed())

			Expect(e.RegFile().ReadReg(2)).To(Equal(uint32(1)))
			Expect(hook.Entries).To(HaveLen(1))
			Expect(hook.Entries[0].Level).To(Equal(logrus.WarnLevel))
		})

		It("should stop on an unrecognised instruction", func() {
			load(encodeDPImm(opMOV, 0, 0, 1, 0, false), 0xEC000000)

			err := e.Run()

			var fault *emu.Fault
			Expect(errors.As(err, &fault)).To(BeTrue())
			Expect(fault.Kind).To(Equal(emu.FaultDecode))
			Expect(fault.Word).To(Equal(uint32(0xEC000000)))
			Expect(fault.Addr).To(Equal(uint32(4)))
			Expect(fault.Error()).To(ContainSubstring("0xec000000"))
		})

		It("should record the address of a faulting multiply", func() {
			load(encodeDPImm(opMOV, 1, 0, 1, 0, false), encodeMUL(1, 1, 2, 0, false, false))

			err := e.Run()

			var fault *emu.Fault
			Expect(errors.As(err, &fault)).To(BeTrue())
			Expect(fault.Kind).To(Equal(emu.FaultOperand))
			Expect(fault.Addr).To(Equal(uint32(4)))
		})

		It("should fault when PC leaves memory", func() {
			load(encodeB(insts.CondAL, 0x2000))

			err := e.Run()

			var fault *emu.Fault
			Expect(errors.As(err, &fault)).To(BeTrue())
			Expect(fault.Kind).To(Equal(emu.FaultFetch))
			Expect(fault.Addr).To(Equal(uint32(0x8008)))
		})

		It("should stop at the instruction limit", func() {
			e = emu.NewEmulator(emu.WithStdout(stdoutBuf), emu.WithMaxInstructions(10))
			load(encodeB(insts.CondAL, -2))

			err := e.Run()

			Expect(err).To(MatchError(emu.ErrInstructionLimit))
			Expect(e.InstructionCount()).To(Equal(uint64(10)))
			Expect(e.RegFile().PC()).To(Equal(uint32(4)))
		})
	})

	Describe("Branch", func() {
		It("should resume two words after a zero-offset branch", func() {
			load(
				encodeB(insts.CondAL, 0),
				encodeDPImm(opMOV, 0, 0, 1, 0, false),
				encodeDPImm(opMOV, 1, 0, 2, 0, false),
			)

			start := e.RegFile().PC()
			e.Step()
			afterBranch := e.RegFile().PC()
			e.Step()
			afterNext := e.RegFile().PC()

			Expect(afterBranch - start).To(Equal(uint32(8)))
			Expect(afterNext - afterBranch).To(Equal(uint32(4)))
			Expect(e.RegFile().ReadReg(0)).To(BeZero())
			Expect(e.RegFile().ReadReg(1)).To(Equal(uint32(2)))
		})

		It("should not branch when the condition fails", func() {
			load(
				withCond(insts.CondEQ, encodeB(insts.CondAL, 4)),
				encodeDPImm(opMOV, 0, 0, 1, 0, false),
			)

			Expect(e.Run()).To(Succeed())

			Expect(e.RegFile().ReadReg(0)).To(Equal(uint32(1)))
		})
	})

	Describe("Reset", func() {
		It("should clear registers and memory", func() {
			load(0xE3A00005)
			Expect(e.Run()).To(Succeed())

			e.Reset()

			Expect(e.RegFile().ReadReg(0)).To(BeZero())
			Expect(e.RegFile().PC()).To(Equal(uint32(emu.InitialPC)))
			Expect(e.Memory().Read32(0)).To(BeZero())
			Expect(e.InstructionCount()).To(BeZero())
		})
	})

	Describe("DumpState", func() {
		It("should print registers, flags and non-zero memory", func() {
			load(0xE3A00005, 0)
			Expect(e.Run()).To(Succeed())

			out := &bytes.Buffer{}
			e.DumpState(out)
			lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")

			Expect(lines[0]).To(Equal("Registers:"))
			Expect(lines[1]).To(Equal("$0  : 0000000005 (0x00000005)"))
			Expect(lines[13]).To(Equal("$12 : 0000000000 (0x00000000)"))
			Expect(lines[14]).To(Equal("PC  : 0000000012 (0x0000000c)"))
			Expect(lines[15]).To(Equal("CPSR: 0000000000 (0x00000000)"))
			Expect(lines[16]).To(Equal("Non-zero memory:"))
			Expect(lines[17]).To(Equal("0x00000000: 0xe3a00005"))
			Expect(lines).To(HaveLen(18))
		})

		It("should print the packed flags and unsigned register values", func() {
			e.RegFile().WriteReg(1, 0xFFFFFFFF)
			e.RegFile().CPSR = emu.CPSR{N: true, C: true}

			out := &bytes.Buffer{}
			e.DumpState(out)

			Expect(out.String()).To(ContainSubstring("$1  : 4294967295 (0xffffffff)"))
			Expect(out.String()).To(ContainSubstring("CPSR: 0000040960 (0x0000a000)"))
		})
	})
})
