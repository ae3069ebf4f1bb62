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

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestMemoryStartsEmpty(t *testing.T) {
	m := NewMemory()
	require.Zero(t, m.Len())
	require.GreaterOrEqual(t, cap(m.store), initialMemoryCapacity)
}

func TestMemoryResizeGrowsOnly(t *testing.T) {
	m := NewMemory()

	m.Resize(32)
	require.Equal(t, 32, m.Len())

	m.Resize(64)
	require.Equal(t, 64, m.Len())

	m.Resize(32)
	require.Equal(t, 64, m.Len(), "resize to a smaller size must not shrink")
}

func TestMemorySetAndGetCopy(t *testing.T) {
	m := NewMemory()
	m.Resize(64)

	data := []byte{0x01, 0x02, 0x03, 0x04}
	m.Set(0, uint64(len(data)), data)
	require.Equal(t, data, m.GetCopy(0, int64(len(data))))

	m.Set(32, uint64(len(data)), data)
	require.Equal(t, data, m.GetCopy(32, int64(len(data))))
}

func TestMemorySetZeroSizeIsNoop(t *testing.T) {
	m := NewMemory()
	m.Resize(32)
	m.Set(100, 0, []byte{0x01, 0x02})
	require.Equal(t, 32, m.Len())
}

func TestMemorySet32RightAligns(t *testing.T) {
	m := NewMemory()
	m.Resize(64)

	val := uint256.NewInt(0x12345678)
	m.Set32(0, val)

	want := make([]byte, 32)
	val.WriteToSlice(want)
	require.Equal(t, want, m.GetPtr(0, 32))
}

func TestMemoryGetCopyIsIndependent(t *testing.T) {
	m := NewMemory()
	m.Resize(64)
	m.Set(10, 4, []byte{0xAA, 0xBB, 0xCC, 0xDD})

	a := m.GetCopy(10, 4)
	b := m.GetCopy(10, 4)
	a[0] = 0xFF
	require.Equal(t, byte(0xAA), b[0])
}

func TestMemoryGetCopyEdgeCases(t *testing.T) {
	m := NewMemory()
	m.Resize(32)

	require.Nil(t, m.GetCopy(0, 0))
	require.Empty(t, m.GetCopy(32, 10))
}

func TestMemoryGetPtrAliasesStore(t *testing.T) {
	m := NewMemory()
	m.Resize(64)
	m.Set(0, 4, []byte{0x11, 0x22, 0x33, 0x44})

	ptr := m.GetPtr(0, 4)
	require.Equal(t, []byte{0x11, 0x22, 0x33, 0x44}, ptr)

	ptr[0] = 0xFF
	require.Equal(t, byte(0xFF), m.GetPtr(0, 4)[0])
	require.Nil(t, m.GetPtr(0, 0))
}

func TestMemoryDataAliasesStore(t *testing.T) {
	m := NewMemory()
	m.Resize(32)

	data := m.Data()
	require.Len(t, data, 32)
	data[0] = 0xAB
	require.Equal(t, byte(0xAB), m.Data()[0])
}

func TestMemoryCopyNonOverlapping(t *testing.T) {
	m := NewMemory()
	m.Resize(64)
	src := []byte{0x01, 0x02, 0x03, 0x04}
	m.Set(0, 4, src)

	m.Copy(32, 0, 4)
	require.Equal(t, src, m.GetCopy(32, 4))
}

func TestMemoryCopyOverlapping(t *testing.T) {
	m := NewMemory()
	m.Resize(32)
	m.Set(0, 8, []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08})

	m.Copy(2, 0, 4)

	want := []byte{0x01, 0x02, 0x01, 0x02, 0x03, 0x04, 0x07, 0x08}
	require.Equal(t, want, m.GetCopy(0, 8))
}

func TestMemoryCopyZeroLengthIsNoop(t *testing.T) {
	m := NewMemory()
	m.Resize(32)
	data := []byte{0x01, 0x02, 0x03, 0x04}
	m.Set(0, 4, data)

	m.Copy(16, 0, 0)

	require.Equal(t, data, m.GetCopy(0, 4))
	require.Equal(t, make([]byte, 4), m.GetCopy(16, 4))
}

func TestMemoryResetClearsLengthAndGasCost(t *testing.T) {
	m := NewMemory()
	m.Resize(64)
	m.Set(0, 32, make([]byte, 32))
	m.lastGasCost = 123

	m.Reset()

	require.Zero(t, m.Len())
	require.Zero(t, m.lastGasCost)
}

func TestWordsRoundsUp(t *testing.T) {
	require.Equal(t, uint64(0), words(0))
	require.Equal(t, uint64(1), words(1))
	require.Equal(t, uint64(1), words(32))
	require.Equal(t, uint64(2), words(33))
}

func BenchmarkMemorySet(b *testing.B) {
	m := NewMemory()
	m.Resize(1024)
	data := make([]byte, 32)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.Set(0, 32, data)
	}
}

func BenchmarkMemoryCopy(b *testing.B) {
	m := NewMemory()
	m.Resize(1024)
	m.Set(0, 32, make([]byte, 32))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.Copy(512, 0, 32)
	}
}
