// Package insts provides ARM instruction definitions and decoding.
//
// This package decodes 32-bit ARM machine words into structured instruction
// representations. It supports the emulator's subset:
//   - Data Processing: AND, EOR, SUB, RSB, ADD, TST, TEQ, CMP, ORR, MOV
//   - Multiply: MUL, MLA
//   - Single Data Transfer: LDR, STR (word, pre/post-indexed)
//   - Branch: B
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst := decoder.Decode(0xE3A00005) // MOV R0, #5
//	fmt.Printf("Op: %v, Rd: %d, Imm: %d\n", inst.Op, inst.Rd, inst.Imm)
package insts
