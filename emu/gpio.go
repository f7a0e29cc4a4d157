package emu

import (
	"fmt"
	"io"
)

// GPIO register addresses.
const (
	GPIOSelect0 uint32 = 0x20200000 // Function select, pins 0-9
	GPIOSelect1 uint32 = 0x20200004 // Function select, pins 10-19
	GPIOSelect2 uint32 = 0x20200008 // Function select, pins 20-29
	GPIOSet     uint32 = 0x2020001C // Pin output set
	GPIOClear   uint32 = 0x20200028 // Pin output clear
)

// GPIO models the pin controller registers. Accesses are reported on out
// instead of touching memory.
type GPIO struct {
	out io.Writer
	on  bool
}

// NewGPIO creates a GPIO controller reporting to out.
func NewGPIO(out io.Writer) *GPIO {
	return &GPIO{out: out}
}

// On reports whether the last pin write was a set.
func (g *GPIO) On() bool {
	return g.on
}

// Access handles a transfer to addr. It returns false if addr is not a GPIO
// register for this kind of access. A load from a function select register
// yields the register address itself.
func (g *GPIO) Access(addr uint32, load bool) (value uint32, handled bool) {
	switch addr {
	case GPIOSelect0, GPIOSelect1, GPIOSelect2:
		first := ((addr & 0xF) >> 2) * 10
		_, _ = fmt.Fprintf(g.out, "One GPIO pin from %d to %d has been accessed\n", first, first+9)
		if load {
			return addr, true
		}
		return 0, true
	case GPIOSet:
		if load {
			return 0, false
		}
		g.on = true
		_, _ = fmt.Fprintln(g.out, "PIN ON")
		return 0, true
	case GPIOClear:
		if load {
			return 0, false
		}
		g.on = false
		_, _ = fmt.Fprintln(g.out, "PIN OFF")
		return 0, true
	default:
		return 0, false
	}
}
