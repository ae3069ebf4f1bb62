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

	"github.com/evmcore/blockvm/params"
)

func testJumpTable() *JumpTable {
	jt := newJumpTable(params.AllRulesEnabled())
	return &jt
}

// A PUSH whose immediate data runs off the end of the code is padded with
// implicit zero bytes rather than panicking or truncating the instruction
// stream short.
func TestAnalyzeTruncatedPushAtEndOfCode(t *testing.T) {
	code := []byte{0x7f, 0x01, 0x02} // PUSH32 with only 2 of 32 bytes present
	a := Analyze(code, testJumpTable())

	if len(a.Instructions) != 1 {
		t.Fatalf("expected exactly one instruction, got %d", len(a.Instructions))
	}
	inst := a.Instructions[0]
	if inst.Op != PUSH32 {
		t.Fatalf("expected PUSH32, got %s", inst.Op)
	}
	if inst.PushIdx < 0 {
		t.Fatal("expected PUSH32's value to be recorded in PushValues")
	}
	v := a.PushValues[inst.PushIdx]
	if v.Uint64() != 0x0102 {
		t.Fatalf("expected padded value 0x0102, got %d", v.Uint64())
	}
}

// A PUSH of 8 bytes or fewer is inlined into PushSmall rather than
// allocated into PushValues.
func TestAnalyzePushSmallInlinesValue(t *testing.T) {
	code := []byte{0x60, 0x2a} // PUSH1 0x2a
	a := Analyze(code, testJumpTable())

	inst := a.Instructions[0]
	if inst.PushIdx != -1 {
		t.Fatal("PUSH1 should not allocate a PushValues entry")
	}
	if inst.PushSmall != 0x2a {
		t.Fatalf("PushSmall = %d, want 42", inst.PushSmall)
	}
}

// A PUSH32's value always goes to PushValues even though many such values
// would fit in a uint64, since the 8-byte/9+-byte split is keyed on the
// declared PUSH width, not the value's magnitude.
func TestAnalyzePushLargeWidthAlwaysGoesToPushValues(t *testing.T) {
	code := []byte{0x7f} // PUSH32
	code = append(code, make([]byte, 32)...)
	code[32] = 0x05 // low byte of the pushed word

	a := Analyze(code, testJumpTable())
	inst := a.Instructions[0]
	if inst.PushIdx < 0 {
		t.Fatal("PUSH32 should always record its value in PushValues")
	}
}

// JUMP immediately preceded by a PUSHn whose value is a JUMPDEST resolves
// statically.
func TestAnalyzeClassifyJumpsStaticJump(t *testing.T) {
	// PUSH1 4, JUMP, INVALID, JUMPDEST
	code := []byte{0x60, 0x04, 0x56, 0xfe, 0x5b}
	a := Analyze(code, testJumpTable())

	jumpInst := a.Instructions[1]
	if jumpInst.Op != JUMP {
		t.Fatalf("expected JUMP at index 1, got %s", jumpInst.Op)
	}
	if jumpInst.JumpKind != jumpStatic {
		t.Fatalf("JumpKind = %v, want jumpStatic", jumpInst.JumpKind)
	}
	if jumpInst.StaticTarget < 0 || a.Instructions[jumpInst.StaticTarget].Op != JUMPDEST {
		t.Fatal("StaticTarget should resolve to the JUMPDEST instruction")
	}
}

// JUMPI behaves the same way as JUMP for static resolution, tagged
// jumpConditionalStatic instead of jumpStatic.
func TestAnalyzeClassifyJumpsStaticJumpi(t *testing.T) {
	// PUSH1 1, PUSH1 6, JUMPI, INVALID, JUMPDEST
	code := []byte{0x60, 0x01, 0x60, 0x06, 0x57, 0xfe, 0x5b}
	a := Analyze(code, testJumpTable())

	jumpiInst := a.Instructions[2]
	if jumpiInst.JumpKind != jumpConditionalStatic {
		t.Fatalf("JumpKind = %v, want jumpConditionalStatic", jumpiInst.JumpKind)
	}
}

// A JUMP target that resolves to a non-JUMPDEST offset is left dynamic so
// the interpreter rejects it at runtime instead of the analyzer silently
// accepting a bad target.
func TestAnalyzeClassifyJumpsTargetNotJumpdestIsDynamic(t *testing.T) {
	// PUSH1 3, JUMP, STOP (not a JUMPDEST)
	code := []byte{0x60, 0x03, 0x56, 0x00}
	a := Analyze(code, testJumpTable())

	jumpInst := a.Instructions[1]
	if jumpInst.JumpKind != jumpDynamic {
		t.Fatalf("JumpKind = %v, want jumpDynamic", jumpInst.JumpKind)
	}
}

// A JUMP not immediately preceded by a PUSH (e.g. a DUP'd target) is
// always dynamic, even if the value it resolves to at runtime would
// happen to be a valid JUMPDEST.
func TestAnalyzeClassifyJumpsNonPushPredecessorIsDynamic(t *testing.T) {
	// PUSH1 4, DUP1, JUMP, JUMPDEST
	code := []byte{0x60, 0x04, 0x80, 0x56, 0x5b}
	a := Analyze(code, testJumpTable())

	jumpInst := a.Instructions[2]
	if jumpInst.JumpKind != jumpDynamic {
		t.Fatalf("JumpKind = %v, want jumpDynamic (preceded by DUP1, not PUSH)", jumpInst.JumpKind)
	}
}

// buildBlocks splits at index 0, at every JUMPDEST, and right after every
// JUMP/JUMPI/halting instruction.
func TestAnalyzeBuildBlocksSplitsAtExpectedPoints(t *testing.T) {
	// PUSH1 1, PUSH1 2, ADD, JUMPDEST, STOP
	code := []byte{0x60, 0x01, 0x60, 0x02, 0x01, 0x5b, 0x00}
	a := Analyze(code, testJumpTable())

	var heads []int
	for i, inst := range a.Instructions {
		if inst.IsBlockHead {
			heads = append(heads, i)
		}
	}
	if len(heads) != 2 || heads[0] != 0 {
		t.Fatalf("expected block heads at [0, JUMPDEST index], got %v", heads)
	}
	jumpdestIdx, _ := a.IndexForPC(5)
	if heads[1] != int(jumpdestIdx) {
		t.Fatalf("expected second block head at the JUMPDEST instruction, got %d want %d", heads[1], jumpdestIdx)
	}
}

// The first block's precomputed gas is the sum of every instruction's
// constant gas within it.
func TestAnalyzeBuildBlocksSumsConstantGas(t *testing.T) {
	// PUSH1 1 (3), PUSH1 2 (3), ADD (3) = 9, then JUMPDEST starts a new block.
	code := []byte{0x60, 0x01, 0x60, 0x02, 0x01, 0x5b}
	a := Analyze(code, testJumpTable())

	if a.Instructions[0].BlockGas != 9 {
		t.Fatalf("BlockGas = %d, want 9", a.Instructions[0].BlockGas)
	}
}

// A block's stack requirement is the deepest pop any instruction in it
// needs below the block's starting stack height, and MaxGrow is the
// highest net height the block reaches.
func TestAnalyzeBuildBlocksStackRequirement(t *testing.T) {
	// DUP1 needs 1 item already on the stack; POP, the two PUSHes and ADD
	// only consume what the block itself pushed, so the requirement stays 1.
	code := []byte{0x80, 0x50, 0x60, 0x01, 0x60, 0x02, 0x01} // DUP1, POP, PUSH1 1, PUSH1 2, ADD
	a := Analyze(code, testJumpTable())

	if a.Instructions[0].BlockStackReq != 1 {
		t.Fatalf("BlockStackReq = %d, want 1 (DUP1 needs one item present)", a.Instructions[0].BlockStackReq)
	}
}

// IndexForPC/ValidJumpdest round-trip scanCode's bitmap through the
// analysis's pc-to-index map.
func TestAnalyzeIndexForPCAndValidJumpdest(t *testing.T) {
	// PUSH1 0x5b, JUMPDEST - the pushed byte must NOT be mistaken for a
	// real JUMPDEST at its own offset.
	code := []byte{0x60, 0x5b, 0x5b}
	a := Analyze(code, testJumpTable())

	if a.ValidJumpdest(1) {
		t.Fatal("PUSH1's immediate data byte must not count as a JUMPDEST")
	}
	if !a.ValidJumpdest(2) {
		t.Fatal("the real JUMPDEST at offset 2 should be valid")
	}
	idx, ok := a.IndexForPC(2)
	if !ok || a.Instructions[idx].Op != JUMPDEST {
		t.Fatal("IndexForPC(2) should resolve to the JUMPDEST instruction")
	}
	if _, ok := a.IndexForPC(1); ok {
		t.Fatal("IndexForPC should report not-ok for an offset inside PUSH data")
	}
}

func TestAnalyzeEmptyCode(t *testing.T) {
	a := Analyze(nil, testJumpTable())
	if len(a.Instructions) != 0 {
		t.Fatalf("expected no instructions for empty code, got %d", len(a.Instructions))
	}
}
