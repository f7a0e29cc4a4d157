package emu

import (
	"fmt"
	"io"
)

// DumpState writes registers R0-R12, the PC, the packed CPSR and every
// non-zero memory word to w.
func (e *Emulator) DumpState(w io.Writer) {
	_, _ = fmt.Fprintln(w, "Registers:")
	for i := 0; i <= 12; i++ {
		writeRegLine(w, fmt.Sprintf("$%d", i), e.regFile.R[i])
	}
	writeRegLine(w, "PC", e.regFile.PC())
	writeRegLine(w, "CPSR", e.regFile.CPSR.Packed())

	_, _ = fmt.Fprintln(w, "Non-zero memory:")
	e.memory.NonZeroWords(func(addr, word uint32) {
		_, _ = fmt.Fprintf(w, "0x%08x: 0x%08x\n", addr, word)
	})
}

func writeRegLine(w io.Writer, name string, value uint32) {
	_, _ = fmt.Fprintf(w, "%-4s: %010d (0x%08x)\n", name, value, value)
}
