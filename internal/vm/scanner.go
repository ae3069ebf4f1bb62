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

import "github.com/bits-and-blooms/bitset"

// codeBitmap is the output of the scanner (C1): a single linear pass over
// the bytecode that tells the rest of the analyzer which byte offsets are
// opcodes versus PUSH immediate data, and which opcode offsets are valid
// JUMPDESTs. A PUSH's immediate bytes are never themselves executable or
// jumpable, even if their value happens to equal 0x5b.
type codeBitmap struct {
	isCode   *bitset.BitSet // true at offsets that begin an instruction
	jumpdest *bitset.BitSet // true at offsets holding a JUMPDEST opcode
}

// scanCode performs the C1 pass.
func scanCode(code []byte) *codeBitmap {
	n := uint(len(code))
	cb := &codeBitmap{
		isCode:   bitset.New(n + 1),
		jumpdest: bitset.New(n + 1),
	}

	for pc := uint(0); pc < n; {
		op := OpCode(code[pc])
		cb.isCode.Set(pc)

		if op == JUMPDEST {
			cb.jumpdest.Set(pc)
		}

		if op.IsPush() {
			pc += uint(op.PushSize()) + 1
			continue
		}
		pc++
	}
	return cb
}

// isCodeAt reports whether pc begins an instruction rather than falling
// inside a PUSH's immediate data.
func (cb *codeBitmap) isCodeAt(pc uint64) bool {
	return cb.isCode.Test(uint(pc))
}

// isValidJumpdest reports whether pc is a JUMPDEST and not inside PUSH data.
func (cb *codeBitmap) isValidJumpdest(pc uint64) bool {
	return cb.jumpdest.Test(uint(pc))
}
