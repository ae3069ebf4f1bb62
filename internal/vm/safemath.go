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

import "math"

// safeAdd and safeMul are the uint64 overflow-checked primitives every gas
// helper builds on: a gas cost that would overflow uint64 is always reported
// as ErrGasUintOverflowVal, never wrapped.
func safeAdd(a, b uint64) (uint64, bool) {
	sum := a + b
	return sum, sum < a
}

func safeMul(a, b uint64) (uint64, bool) {
	if a == 0 || b == 0 {
		return 0, false
	}
	product := a * b
	return product, product/a != b
}

// SafeUint64ToInt64 reports whether v fits in an int64.
func SafeUint64ToInt64(v uint64) (int64, bool) {
	if v > math.MaxInt64 {
		return 0, false
	}
	return int64(v), true
}
