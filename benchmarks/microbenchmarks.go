// Package benchmarks provides timing benchmark infrastructure for armemu.
package benchmarks

import (
	"github.com/sarchlab/armemu/emu"
	"github.com/sarchlab/armemu/insts"
)

// GetMicrobenchmarks returns the standard set of microbenchmarks.
// Each benchmark targets a specific cost in the timing model.
func GetMicrobenchmarks() []Benchmark {
	return []Benchmark{
		arithmeticSequential(),
		countdownLoop(),
		multiplyAccumulate(),
		memorySequential(),
		branchTaken(),
		conditionalSkip(),
		gpioBlink(),
		mixedOperations(),
	}
}

// GetCoreBenchmarks returns a minimal set of 3 core benchmarks for quick
// validation: a loop, memory traffic and branch-heavy code.
func GetCoreBenchmarks() []Benchmark {
	return []Benchmark{
		countdownLoop(),
		memorySequential(),
		branchTaken(),
	}
}

// 1. Arithmetic Sequential - Tests ALU cost with independent operations
func arithmeticSequential() Benchmark {
	instrs := make([]uint32, 0, 20)
	for i := 0; i < 4; i++ {
		for rd := uint8(0); rd < 5; rd++ {
			instrs = append(instrs, EncodeDPImm(insts.OpADD, rd, rd, 1, 0, false))
		}
	}

	return Benchmark{
		Name:           "arithmetic_sequential",
		Description:    "20 independent ADD operations - measures ALU cost",
		Program:        BuildProgram(instrs...),
		ExpectedResult: 4, // R0 = 0 + 4*1
	}
}

// 2. Countdown Loop - Tests taken-branch cost in a SUBS/BNE loop
func countdownLoop() Benchmark {
	return Benchmark{
		Name:        "countdown_loop",
		Description: "10-iteration SUBS/BNE loop - measures loop overhead",
		Program: BuildProgram(
			EncodeDPImm(insts.OpMOV, 0, 0, 0, 0, false),  // 0x00: MOV R0, #0
			EncodeDPImm(insts.OpMOV, 1, 0, 10, 0, false), // 0x04: MOV R1, #10
			EncodeDPImm(insts.OpADD, 0, 0, 2, 0, false),  // 0x08: ADD R0, R0, #2
			EncodeDPImm(insts.OpSUB, 1, 1, 1, 0, true),   // 0x0C: SUBS R1, R1, #1
			EncodeB(insts.CondNE, -8),                    // 0x10: BNE 0x08
		),
		ExpectedResult: 20,
	}
}

// 3. Multiply Accumulate - Tests multiplier cost
func multiplyAccumulate() Benchmark {
	return Benchmark{
		Name:        "multiply_accumulate",
		Description: "4 dependent MLAs - measures multiply latency",
		Setup: func(regFile *emu.RegFile, memory *emu.Memory) {
			regFile.WriteReg(1, 3)
			regFile.WriteReg(2, 5)
		},
		Program: BuildProgram(
			EncodeMUL(0, 1, 2, 0, true, false), // MLA R0, R1, R2, R0
			EncodeMUL(0, 1, 2, 0, true, false),
			EncodeMUL(0, 1, 2, 0, true, false),
			EncodeMUL(0, 1, 2, 0, true, false),
		),
		ExpectedResult: 60,
	}
}

// 4. Memory Sequential - Tests cache behavior with sequential stores and loads
func memorySequential() Benchmark {
	instrs := []uint32{
		EncodeDPImm(insts.OpMOV, 2, 0, 7, 0, false),  // MOV R2, #7
		EncodeDPImm(insts.OpMOV, 1, 0, 1, 10, false), // MOV R1, #0x1000
	}
	for i := 0; i < 8; i++ {
		instrs = append(instrs, EncodeSTRPost(2, 1, 4)) // STR R2, [R1], #4
	}
	instrs = append(instrs, EncodeDPImm(insts.OpSUB, 1, 1, 32, 0, false)) // SUB R1, R1, #32
	for i := 0; i < 8; i++ {
		// LDR R3, [R1], #4; ADD R0, R0, R3
		instrs = append(instrs,
			EncodeLDRPost(3, 1, 4),
			EncodeDPReg(insts.OpADD, 0, 0, 3, insts.ShiftLSL, 0, false),
		)
	}

	return Benchmark{
		Name:           "memory_sequential",
		Description:    "8 stores then 8 loads over one 32B line - measures cache hits",
		Program:        BuildProgram(instrs...),
		ExpectedResult: 56,
	}
}

// 5. Branch Taken - Tests unconditional branch cost
func branchTaken() Benchmark {
	instrs := make([]uint32, 0, 15)
	for i := 0; i < 5; i++ {
		instrs = append(instrs,
			EncodeB(insts.CondAL, 8),                     // B over the next word
			EncodeDPImm(insts.OpMOV, 0, 0, 99, 0, false), // never executed
			EncodeDPImm(insts.OpADD, 0, 0, 1, 0, false),  // ADD R0, R0, #1
		)
	}

	return Benchmark{
		Name:           "branch_taken",
		Description:    "5 taken branches each skipping one word - measures branch penalty",
		Program:        BuildProgram(instrs...),
		ExpectedResult: 5,
	}
}

// 6. Conditional Skip - Tests the cost of instructions whose condition fails
func conditionalSkip() Benchmark {
	instrs := []uint32{
		EncodeDPImm(insts.OpCMP, 0, 0, 0, 0, true), // CMP R0, #0 (Z = 1)
	}
	for i := 0; i < 10; i++ {
		instrs = append(instrs, WithCond(insts.CondNE, EncodeDPImm(insts.OpMOV, 1, 0, 1, 0, false)))
	}
	instrs = append(instrs, WithCond(insts.CondEQ, EncodeDPImm(insts.OpMOV, 0, 0, 3, 0, false)))

	return Benchmark{
		Name:           "conditional_skip",
		Description:    "10 MOVNE after a setting CMP - measures skipped instruction cost",
		Program:        BuildProgram(instrs...),
		ExpectedResult: 3,
	}
}

// 7. GPIO Blink - Tests GPIO transfer cost
func gpioBlink() Benchmark {
	instrs := []uint32{
		EncodeDPImm(insts.OpMOV, 1, 0, 0x2, 2, false), // MOV R1, #0x20000000
		EncodeDPImm(insts.OpORR, 1, 1, 0x2, 6, false), // ORR R1, R1, #0x00200000
		EncodeSTR(0, 1, 4),                            // select pins 10-19
	}
	for i := 0; i < 3; i++ {
		instrs = append(instrs,
			EncodeSTR(0, 1, 0x1C), // PIN ON
			EncodeSTR(0, 1, 0x28), // PIN OFF
		)
	}
	instrs = append(instrs, EncodeDPImm(insts.OpMOV, 0, 0, 3, 0, false))

	return Benchmark{
		Name:           "gpio_blink",
		Description:    "Function select and 3 on/off cycles - measures GPIO latency",
		Program:        BuildProgram(instrs...),
		ExpectedResult: 3,
	}
}

// 8. Mixed Operations - Combination of ALU, multiply, memory and conditions
func mixedOperations() Benchmark {
	return Benchmark{
		Name:        "mixed_operations",
		Description: "Multiply, store, reload and compare - balanced workload",
		Program: BuildProgram(
			EncodeDPImm(insts.OpMOV, 1, 0, 2, 10, false), // MOV R1, #0x2000
			EncodeDPImm(insts.OpMOV, 2, 0, 6, 0, false),  // MOV R2, #6
			EncodeDPImm(insts.OpMOV, 3, 0, 7, 0, false),  // MOV R3, #7
			EncodeMUL(4, 2, 3, 0, false, false),          // MUL R4, R2, R3
			EncodeSTR(4, 1, 0),                           // STR R4, [R1]
			EncodeLDR(5, 1, 0),                           // LDR R5, [R1]
			EncodeDPImm(insts.OpCMP, 0, 5, 42, 0, true),  // CMP R5, #42

			// MOVEQ R0, R5; MOVNE R0, #0
			WithCond(insts.CondEQ, EncodeDPReg(insts.OpMOV, 0, 0, 5, insts.ShiftLSL, 0, false)),
			WithCond(insts.CondNE, EncodeDPImm(insts.OpMOV, 0, 0, 0, 0, false)),
		),
		ExpectedResult: 42,
	}
}
