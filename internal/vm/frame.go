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

import "github.com/evmcore/blockvm/internal/vm/stack"

// Frame is the mutable state of one call: its own Stack and Memory, the
// Contract identity/gas meter, and the bookkeeping the interpreter needs
// to resume across calls (return data, static flag, depth). Analysis is
// deliberately not part of Frame — it is immutable and shared across every
// Frame that executes the same code.
type Frame struct {
	Stack  *stack.Stack
	Memory *Memory

	Contract *Contract
	Depth    int
	ReadOnly bool

	ReturnData []byte // data returned by the most recent subcall
	Output     []byte // data this frame itself returns via RETURN/REVERT

	// BlockPrecharge is the gas precharged for the basic block currently
	// executing (the head instruction's BlockGas); BlockSpent is the
	// running sum of constantGas for every instruction in that block
	// dispatched so far, this one included. Contract.Gas has already been
	// debited the whole of BlockPrecharge at block entry, so mid-block it
	// understates the truth by whatever hasn't been logically spent yet -
	// GasCorrection is that difference, and GAS plus every dynamic-gas
	// handler must add it back before reading or charging against gas.
	BlockPrecharge uint64
	BlockSpent     uint64

	analysis *Analysis
}

// GasCorrection returns the portion of the current block's precharge not
// yet attributable to an executed instruction.
func (f *Frame) GasCorrection() uint64 {
	return f.BlockPrecharge - f.BlockSpent
}

// ChargeDynamicGas deducts cost against the true, corrected gas remaining
// rather than Contract.Gas's precharge-reduced balance: it adds the block's
// unconsumed precharge back, takes cost out of that, and subtracts the
// precharge back out, reporting failure (without mutating Contract.Gas) if
// cost can't be paid from the true remainder, or if paying it would leave
// less than the block still owes its own unexecuted instructions.
func (f *Frame) ChargeDynamicGas(cost uint64) bool {
	correction := f.GasCorrection()
	trueRemaining := f.Contract.Gas + correction
	if cost > trueRemaining {
		return false
	}
	after := trueRemaining - cost
	if after < correction {
		return false
	}
	f.Contract.Gas = after - correction
	return true
}

// NewFrame acquires a pooled Frame and Stack for contract and wraps them with
// a freshly allocated Memory. Every CALL/CREATE/STATICCALL/DELEGATECALL nests
// one of these, so past the pools' warm-up a deeply recursive call tree
// allocates only each frame's Memory.
func NewFrame(contract *Contract, depth int, readOnly bool) *Frame {
	f := getFrame()
	f.Stack = stack.New()
	f.Memory = NewMemory()
	f.Contract = contract
	f.Depth = depth
	f.ReadOnly = readOnly
	f.ReturnData = nil
	f.Output = nil
	f.BlockPrecharge = 0
	f.BlockSpent = 0
	f.analysis = nil
	return f
}

// Release returns the Frame's pooled Stack and the Frame itself to their
// pools. Memory is not pooled — its size varies too widely across calls for
// size-class reuse to pay off, matching the teacher's MemoryPool being
// opt-in rather than automatic.
func (f *Frame) Release() {
	stack.ReturnNormalStack(f.Stack)
	putFrame(f)
}
