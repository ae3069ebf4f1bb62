// Copyright 2026 The blockvm Authors
// This file is part of the blockvm library.
//
// The blockvm library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The blockvm library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the blockvm library. If not, see <http://www.gnu.org/licenses/>.

package vm

import "github.com/holiman/uint256"

const initialMemoryCapacity = 4 * 1024

// Memory is the byte-addressable, word-aligned scratch space backing
// MLOAD/MSTORE/CALLDATACOPY and friends. It only ever grows, in 32-byte
// words, and never shrinks within a frame's lifetime; Reset is for reuse
// across frames, not for giving memory back mid-call.
type Memory struct {
	store       []byte
	lastGasCost uint64
}

// NewMemory returns an empty Memory with a small pre-allocated backing
// array, so the common case of a contract that touches only a few hundred
// bytes does no further allocation.
func NewMemory() *Memory {
	return &Memory{store: make([]byte, 0, initialMemoryCapacity)}
}

func (m *Memory) Len() int { return len(m.store) }

// Resize grows the backing store to size bytes if it is currently smaller.
// Callers are expected to have already rounded size up to a 32-byte
// boundary via the gas-cost helpers; Resize itself does not round.
func (m *Memory) Resize(size uint64) {
	if uint64(len(m.store)) >= size {
		return
	}
	if uint64(cap(m.store)) >= size {
		m.store = m.store[:size]
		return
	}
	grown := make([]byte, size)
	copy(grown, m.store)
	m.store = grown
}

// Set writes value into the memory region [offset, offset+size). size may
// be less than len(value), in which case only the first size bytes of
// value are used.
func (m *Memory) Set(offset, size uint64, value []byte) {
	if size == 0 {
		return
	}
	copy(m.store[offset:offset+size], value)
}

// Set32 writes val as a right-aligned 32-byte big-endian word starting at
// offset, the layout every PUSH/arithmetic result lands in memory as.
func (m *Memory) Set32(offset uint64, val *uint256.Int) {
	dst := m.store[offset : offset+32]
	for i := range dst {
		dst[i] = 0
	}
	val.WriteToSlice(dst)
}

// GetCopy returns an independent copy of size bytes starting at offset, or
// nil if size is zero or the region lies entirely beyond the current
// length.
func (m *Memory) GetCopy(offset, size int64) []byte {
	if size == 0 {
		return nil
	}
	if int64(len(m.store)) <= offset {
		return nil
	}
	end := offset + size
	if end > int64(len(m.store)) {
		end = int64(len(m.store))
	}
	cp := make([]byte, size)
	copy(cp, m.store[offset:end])
	return cp
}

// GetPtr returns a slice aliasing the live backing store, for callers that
// only read (or intentionally want to mutate memory in place, e.g. MCOPY's
// destination). Returns nil for a zero-length request.
func (m *Memory) GetPtr(offset, size int64) []byte {
	if size == 0 {
		return nil
	}
	return m.store[offset : offset+size]
}

// Data returns the full backing store.
func (m *Memory) Data() []byte { return m.store }

// Copy moves size bytes from src to dst within the same backing store,
// handling overlap correctly (Go's builtin copy already does, for either
// direction of overlap).
func (m *Memory) Copy(dst, src, size uint64) {
	if size == 0 {
		return
	}
	copy(m.store[dst:dst+size], m.store[src:src+size])
}

// Reset clears the memory for reuse by a new frame.
func (m *Memory) Reset() {
	m.store = m.store[:0]
	m.lastGasCost = 0
}

// words returns the number of 32-byte words needed to hold size bytes.
func words(size uint64) uint64 {
	return (size + 31) / 32
}
