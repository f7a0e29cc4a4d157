package emu

import (
	"errors"
	"fmt"
)

// FaultKind classifies a fatal execution error.
type FaultKind uint8

// Fault kinds.
const (
	FaultDecode  FaultKind = iota + 1 // Word matches no supported encoding
	FaultOperand                      // Illegal register use or malformed shift
	FaultOpcode                       // Unsupported data processing opcode
	FaultFetch                        // PC outside memory
)

func (k FaultKind) String() string {
	switch k {
	case FaultDecode:
		return "decode error"
	case FaultOperand:
		return "operand error"
	case FaultOpcode:
		return "unknown opcode"
	case FaultFetch:
		return "fetch error"
	default:
		return "fault"
	}
}

// Fault is a fatal execution error. It carries the offending instruction word
// and the address it was fetched from.
type Fault struct {
	Kind   FaultKind
	Word   uint32
	Addr   uint32
	Reason string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%s: %s: 0x%08x at 0x%08x", f.Kind, f.Reason, f.Word, f.Addr)
}

// ErrInstructionLimit is returned by Run when the instruction limit is hit.
var ErrInstructionLimit = errors.New("max instructions reached")

// operandFault builds an operand fault. Addr is filled in by the dispatch loop.
func operandFault(word uint32, format string, args ...interface{}) *Fault {
	return &Fault{
		Kind:   FaultOperand,
		Word:   word,
		Reason: fmt.Sprintf(format, args...),
	}
}
