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
	"github.com/RoaringBitmap/roaring"
	"github.com/holiman/uint256"
)

// jumpKind classifies how a JUMP/JUMPI's target was resolved by C2. Per
// the restricted static-jump recognizer, only a PUSHn immediately followed
// by JUMP/JUMPI is ever resolved statically — a PUSH separated from its
// jump by any other instruction, or a target computed at runtime, is
// always dynamic.
type jumpKind uint8

const (
	jumpNone jumpKind = iota
	jumpStatic
	jumpConditionalStatic
	jumpDynamic
)

// Instruction is the fixed-width record C3 emits for one bytecode opcode.
// Op/Opr and the PUSH/jump fields are the tagged-union payload the
// spec describes as handler + arg; every Instruction carries all of them,
// at the cost of a few unused fields per record, rather than a variant
// type, so the instruction stream stays a flat, cache-friendly slice.
type Instruction struct {
	Op  OpCode
	Opr *operation

	PC uint64 // original bytecode offset; needed by PC and by jump validation

	PushSmall uint64 // PUSH value when it fits in 8 bytes
	PushIdx   int32  // index into Analysis.PushValues for larger PUSHn; -1 otherwise

	IsBlockHead   bool
	BlockGas      uint64
	BlockStackReq int
	BlockMaxGrow  int

	JumpKind     jumpKind
	StaticTarget int32 // instruction index, resolved at analysis time; -1 if not statically known
}

// Analysis is the immutable artifact C2/C3 produce from one (code, Rules)
// pair. It never changes after construction, so it may be shared by every
// concurrently executing call into the same code, and cached keyed by code
// hash (the cache itself, internal/vm/analysiscache, is an external
// collaborator the interpreter does not require).
type Analysis struct {
	Instructions []Instruction
	PushValues   []uint256.Int

	bitmap *codeBitmap

	pcToIndex map[uint64]int32
	blockHead *roaring.Bitmap
}

// Analyze runs the scanner (C1), the block/flow analyzer (C2), and the
// instruction-stream builder (C3) over code under the given jump table.
func Analyze(code []byte, jt *JumpTable) *Analysis {
	cb := scanCode(code)

	a := &Analysis{
		bitmap:    cb,
		pcToIndex: make(map[uint64]int32, len(code)),
		blockHead: roaring.New(),
	}

	for pc := uint64(0); pc < uint64(len(code)); {
		op := OpCode(code[pc])
		idx := int32(len(a.Instructions))
		a.pcToIndex[pc] = idx

		inst := Instruction{Op: op, Opr: jt[op], PC: pc, PushIdx: -1, StaticTarget: -1}

		if op.IsPush() {
			n := op.PushSize()
			end := pc + 1 + uint64(n)
			if end > uint64(len(code)) {
				end = uint64(len(code))
			}
			raw := code[pc+1 : end]
			if n <= 8 {
				var v uint64
				for _, b := range raw {
					v = v<<8 | uint64(b)
				}
				inst.PushSmall = v
			} else {
				var v uint256.Int
				v.SetBytes(raw)
				inst.PushIdx = int32(len(a.PushValues))
				a.PushValues = append(a.PushValues, v)
			}
			pc = end
		} else {
			pc++
		}

		a.Instructions = append(a.Instructions, inst)
	}

	a.classifyJumps()
	a.buildBlocks()
	return a
}

// classifyJumps resolves the restricted static-jump pattern: a PUSHn whose
// value is immediately consumed by the very next instruction, JUMP or
// JUMPI. Any other jump — a DUP'd target, an arithmetic expression, a
// target loaded from storage — is left jumpDynamic and is validated
// against the jumpdest set at runtime instead.
func (a *Analysis) classifyJumps() {
	for i := 1; i < len(a.Instructions); i++ {
		cur := &a.Instructions[i]
		if cur.Op != JUMP && cur.Op != JUMPI {
			continue
		}
		prev := &a.Instructions[i-1]
		if !prev.Op.IsPush() {
			cur.JumpKind = jumpDynamic
			continue
		}
		target := prev.PushSmall
		if prev.PushIdx >= 0 {
			if !a.PushValues[prev.PushIdx].IsUint64() {
				cur.JumpKind = jumpDynamic
				continue
			}
			target = a.PushValues[prev.PushIdx].Uint64()
		}
		if !a.bitmap.isValidJumpdest(target) {
			cur.JumpKind = jumpDynamic
			continue
		}
		targetIdx, ok := a.pcToIndex[target]
		if !ok {
			cur.JumpKind = jumpDynamic
			continue
		}
		if cur.Op == JUMP {
			cur.JumpKind = jumpStatic
		} else {
			cur.JumpKind = jumpConditionalStatic
		}
		cur.StaticTarget = targetIdx
	}
}

// buildBlocks splits the instruction stream into basic blocks and, for
// each, precomputes the single gas charge and the single stack
// underflow/overflow check the interpreter performs on block entry
// (spec's BEGINBLOCK). A new block starts at instruction 0, at every
// JUMPDEST (a possible dynamic-jump landing site), and immediately after
// any instruction that can transfer control away (JUMP, JUMPI, and the
// halting opcodes, whose successor is only reachable via a jump back in).
func (a *Analysis) buildBlocks() {
	n := len(a.Instructions)
	if n == 0 {
		return
	}

	starts := []int{0}
	for i, inst := range a.Instructions {
		if inst.Op == JUMPDEST {
			starts = append(starts, i)
		}
		if inst.Op == JUMP || inst.Op == JUMPI || isBlockTerminator(inst.Op) {
			if i+1 < n {
				starts = append(starts, i+1)
			}
		}
	}

	seen := make(map[int]bool, len(starts))
	var blockStarts []int
	for _, s := range starts {
		if !seen[s] {
			seen[s] = true
			blockStarts = append(blockStarts, s)
			a.blockHead.Add(uint32(s))
		}
	}

	for _, start := range blockStarts {
		a.Instructions[start].IsBlockHead = true
		end := n
		for _, s := range blockStarts {
			if s > start && s < end {
				end = s
			}
		}

		var gas uint64
		var height, stackReq, maxGrow int
		for i := start; i < end; i++ {
			opr := a.Instructions[i].Opr
			if opr == nil {
				continue
			}
			need := opr.numPop - height
			if need > stackReq {
				stackReq = need
			}
			height += opr.numPush - opr.numPop
			if height > maxGrow {
				maxGrow = height
			}
			sum, overflow := safeAdd(gas, opr.constantGas)
			if overflow {
				// O-1: rather than splitting the block, an unrepresentable
				// block gas total pins the charge at max-uint64 so entry
				// always fails as OutOfGas. No real contract's constant-gas
				// sum within a single basic block approaches this.
				gas = ^uint64(0)
				continue
			}
			gas = sum
		}

		a.Instructions[start].BlockGas = gas
		a.Instructions[start].BlockStackReq = stackReq
		a.Instructions[start].BlockMaxGrow = maxGrow
	}
}

func isBlockTerminator(op OpCode) bool {
	switch op {
	case STOP, RETURN, REVERT, SELFDESTRUCT, INVALID:
		return true
	default:
		return false
	}
}

// IndexForPC returns the instruction index for a raw bytecode offset, used
// to resolve a dynamic jump target at runtime. ok is false if pc does not
// begin an instruction.
func (a *Analysis) IndexForPC(pc uint64) (int32, bool) {
	idx, ok := a.pcToIndex[pc]
	return idx, ok
}

// ValidJumpdest reports whether pc is a JUMPDEST outside of PUSH data.
func (a *Analysis) ValidJumpdest(pc uint64) bool {
	return a.bitmap.isValidJumpdest(pc)
}
