package emu

// BranchUnit implements B.
type BranchUnit struct {
	regFile *RegFile
}

// NewBranchUnit creates a new BranchUnit connected to the given register file.
func NewBranchUnit(regFile *RegFile) *BranchUnit {
	return &BranchUnit{regFile: regFile}
}

// B branches by a signed byte offset relative to the branch address + 8.
//
// PC already reads branch address + 8 here, and the next step adds 4 before
// fetching from PC - 8, so PC is left 4 past the target.
func (b *BranchUnit) B(offset int32) {
	b.regFile.SetPC(uint32(int32(b.regFile.PC()) + offset + 4))
}
