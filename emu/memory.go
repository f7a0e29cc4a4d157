package emu

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// MemorySize is the size of the emulated memory in bytes.
const MemorySize = 0x8000

// ErrImageTooLarge is returned when a program image does not fit in memory.
var ErrImageTooLarge = errors.New("image too large for memory")

// Memory is the fixed-size, zero-initialised main memory.
// Word accessors are little-endian and do not check alignment or bounds.
type Memory struct {
	data []byte
}

// NewMemory creates a zeroed memory of MemorySize bytes.
func NewMemory() *Memory {
	return &Memory{data: make([]byte, MemorySize)}
}

// Size returns the memory size in bytes.
func (m *Memory) Size() uint32 {
	return uint32(len(m.data))
}

// Read8 reads a byte.
func (m *Memory) Read8(addr uint32) uint8 {
	return m.data[addr]
}

// Write8 writes a byte.
func (m *Memory) Write8(addr uint32, value uint8) {
	m.data[addr] = value
}

// Read32 reads a word. The caller must ensure addr+4 <= Size().
func (m *Memory) Read32(addr uint32) uint32 {
	return binary.LittleEndian.Uint32(m.data[addr : addr+4])
}

// Write32 writes a word. The caller must ensure addr+4 <= Size().
func (m *Memory) Write32(addr uint32, value uint32) {
	binary.LittleEndian.PutUint32(m.data[addr:addr+4], value)
}

// LoadImage copies a program image to address 0. Images must be strictly
// smaller than the memory.
func (m *Memory) LoadImage(image []byte) error {
	if len(image) >= len(m.data) {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrImageTooLarge, len(image), len(m.data)-1)
	}
	copy(m.data, image)
	return nil
}

// NonZeroWords calls fn for every word-aligned address holding a non-zero word,
// in ascending order.
func (m *Memory) NonZeroWords(fn func(addr, word uint32)) {
	for addr := uint32(0); addr+4 <= m.Size(); addr += 4 {
		if word := m.Read32(addr); word != 0 {
			fn(addr, word)
		}
	}
}
