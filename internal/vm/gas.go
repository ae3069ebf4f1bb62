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
	"github.com/holiman/uint256"

	"github.com/evmcore/blockvm/internal/vm/evmtypes"
	"github.com/evmcore/blockvm/internal/vm/stack"
	"github.com/evmcore/blockvm/params"
)

// toWordSize rounds a byte count up to the nearest 32-byte word, the unit
// memory expansion and hashing costs are charged in.
func toWordSize(size uint64) uint64 {
	if size > (^uint64(0)-31)/1 {
		return (^uint64(0) - 31) / 32
	}
	return (size + 31) / 32
}

// memoryGasCost implements the quadratic memory-expansion formula spec.md
// §4.2 names: 3*words + words^2/512, charged incrementally against the
// highest word count the frame's memory has ever reached.
func memoryGasCost(mem *Memory, newSize uint64) (uint64, error) {
	if newSize == 0 {
		return 0, nil
	}
	if newSize > math_MaxMemory {
		return 0, ErrGasUintOverflowVal
	}
	newSize = (newSize + 31) / 32 * 32

	if newSize <= uint64(mem.Len()) {
		return 0, nil
	}

	w := toWordSize(newSize)
	square := w * w
	linCoef := w * params.MemoryGas
	quadCoef := square / params.QuadCoeffDiv
	newCost := linCoef + quadCoef

	fee := newCost - mem.lastGasCost
	mem.lastGasCost = newCost
	return fee, nil
}

// math_MaxMemory bounds memory expansion requests to keep the word-count
// squaring in memoryGasCost from overflowing uint64; any real execution
// runs out of gas long before reaching it.
const math_MaxMemory = 0x1FFFFFFFE0

// calcMemSize64 returns the byte size memory must grow to in order to hold
// a region starting at off with length l, and whether that size overflows.
func calcMemSize64(off, l *uint256.Int) (uint64, bool) {
	if l.IsZero() {
		return 0, false
	}
	if !off.IsUint64() || !l.IsUint64() {
		return 0, true
	}
	end := new(uint256.Int).Add(off, l)
	if !end.IsUint64() {
		return 0, true
	}
	return end.Uint64(), false
}

// memorySizeFor is the common shape of a jump-table operation's memorySize
// hook: read one or two (offset, length) pairs off the stack and return the
// byte size memory must grow to.
func memorySizeFor(offIdx, lenIdx int) func(*stack.Stack) (uint64, bool) {
	return func(s *stack.Stack) (uint64, bool) {
		return calcMemSize64(s.Back(offIdx), s.Back(lenIdx))
	}
}

func memorySizeMax(a, b func(*stack.Stack) (uint64, bool)) func(*stack.Stack) (uint64, bool) {
	return func(s *stack.Stack) (uint64, bool) {
		sa, oa := a(s)
		sb, ob := b(s)
		if oa || ob {
			return 0, true
		}
		if sa > sb {
			return sa, false
		}
		return sb, false
	}
}

// gasSStore implements EIP-2929/3529-aware SSTORE pricing: a cold-slot
// surcharge on top of the classic set/reset/noop schedule, with the
// reduced "clears" refund London introduced.
func gasSStore(host evmtypes.IntraBlockState, addr Address, rules *params.Rules, key, value uint256.Int) (uint64, error) {
	slot := Hash(key.Bytes32())

	current := new(uint256.Int)
	host.GetState(addr, &slot, current)

	var cost uint64
	_, slotWarm := host.SlotInAccessList(addr, slot)
	if rules.IsBerlin && !slotWarm {
		cost = params.ColdSloadCostEIP2929
		host.AddSlotToAccessList(addr, slot)
	}

	if current.Eq(&value) {
		return cost + params.WarmStorageReadCostEIP2929, nil
	}

	original := new(uint256.Int)
	host.GetCommittedState(addr, &slot, original)

	if original.Eq(current) {
		if original.IsZero() {
			return cost + params.GasSstoreSet, nil
		}
		if value.IsZero() {
			host.AddRefund(sstoreClearRefund(rules))
		}
		return cost + params.GasSstoreReset, nil
	}

	return cost + params.WarmStorageReadCostEIP2929, nil
}

func sstoreClearRefund(rules *params.Rules) uint64 {
	if rules.IsLondon {
		return params.SstoreClearsScheduleRefundEIP3529
	}
	return 15000
}
