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

// Package stack implements the 1024-deep word stack the interpreter
// operates on. It is sync.Pool-backed: a frame acquires one on entry and
// returns it on exit, so steady-state execution does no stack-related
// allocation.
package stack

import (
	"sync"

	"github.com/holiman/uint256"
)

const initialCapacity = 16

// Stack is the 256-bit word stack. The block-validated interpreter (C4)
// checks underflow/overflow once per basic block via the analyzer's
// precomputed stack_req/stack_max_growth, so Stack's own Push/Pop do not
// re-check bounds — callers are trusted once past that gate.
type Stack struct {
	data []uint256.Int
}

var stackPool = sync.Pool{
	New: func() interface{} {
		return &Stack{data: make([]uint256.Int, 0, initialCapacity)}
	},
}

// New returns a Stack from the pool, empty and ready for use.
func New() *Stack {
	return stackPool.Get().(*Stack)
}

// ReturnNormalStack resets s and returns it to the pool.
func ReturnNormalStack(s *Stack) {
	s.Reset()
	stackPool.Put(s)
}

func (s *Stack) Len() int { return len(s.data) }

func (s *Stack) Cap() int { return cap(s.data) }

func (s *Stack) Reset() { s.data = s.data[:0] }

// Push appends a copy of val to the top of the stack.
func (s *Stack) Push(val *uint256.Int) {
	s.data = append(s.data, *val)
}

// PushN pushes vals in order, so the last element of vals ends up on top.
func (s *Stack) PushN(vals ...uint256.Int) {
	s.data = append(s.data, vals...)
}

// Pop removes and returns the top element.
func (s *Stack) Pop() uint256.Int {
	n := len(s.data) - 1
	v := s.data[n]
	s.data = s.data[:n]
	return v
}

// Peek returns a pointer to the top element without removing it.
func (s *Stack) Peek() *uint256.Int {
	return &s.data[len(s.data)-1]
}

// Back returns a pointer to the n-th element from the top; Back(0) ==
// Peek().
func (s *Stack) Back(n int) *uint256.Int {
	return &s.data[len(s.data)-1-n]
}

// Swap exchanges the top element with the n-th element from the top
// (n counted the same way the SWAPn opcodes number their operand).
func (s *Stack) Swap(n int) {
	top := len(s.data) - 1
	s.data[top], s.data[top-n] = s.data[top-n], s.data[top]
}

// Dup pushes a copy of the n-th element from the top (Dup(1) duplicates the
// current top, matching DUP1's operand numbering).
func (s *Stack) Dup(n int) {
	s.data = append(s.data, s.data[len(s.data)-n])
}

// Data exposes the backing slice, bottom first, for callers (e.g. tracers)
// that need a read-only snapshot.
func (s *Stack) Data() []uint256.Int { return s.data }
