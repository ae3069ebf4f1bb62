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

	"github.com/evmcore/blockvm/internal/vm/stack"
	"github.com/evmcore/blockvm/params"
)

// memoryWord builds a memorySize hook for opcodes with a fixed-width
// (non-stack-supplied) access length at a given stack offset, e.g. MLOAD's
// 32-byte word starting at the offset on top of the stack.
func memoryWord(offIdx int, size uint64) memorySizeFunc {
	return func(s *stack.Stack) (uint64, bool) {
		off := s.Back(offIdx)
		if !off.IsUint64() {
			return 0, true
		}
		l := uint256.NewInt(size)
		return calcMemSize64(off, l)
	}
}

// gasMemoryExpansion charges only the incremental memory-expansion cost;
// used by opcodes whose own access has no other dynamic component.
func gasMemoryExpansion(interp *Interpreter, frame *Frame, stk *stack.Stack, mem *Memory, memorySize uint64) (uint64, error) {
	return memoryGasCost(mem, memorySize)
}

// gasMemoryExpansionAtTop is gasMemoryExpansion plus nothing extra; RETURN
// and REVERT have no other gas component (their CALL-site refund is
// handled by the caller), kept distinct for readability at call sites.
func gasMemoryExpansionAtTop(offIdx, lenIdx int) gasFunc {
	return gasMemoryExpansion
}

func gasCopy(interp *Interpreter, frame *Frame, stk *stack.Stack, mem *Memory, memorySize uint64) (uint64, error) {
	gas, err := memoryGasCost(mem, memorySize)
	if err != nil {
		return 0, err
	}
	sizeWord, overflow := stk.Back(2).Uint64WithOverflow()
	if overflow {
		return 0, ErrGasUintOverflowVal
	}
	words, overflow := safeMul(toWordSize(sizeWord), params.CopyGas)
	if overflow {
		return 0, ErrGasUintOverflowVal
	}
	sum, overflow := safeAdd(gas, words)
	if overflow {
		return 0, ErrGasUintOverflowVal
	}
	return sum, nil
}

func gasSha3(interp *Interpreter, frame *Frame, stk *stack.Stack, mem *Memory, memorySize uint64) (uint64, error) {
	gas, err := memoryGasCost(mem, memorySize)
	if err != nil {
		return 0, err
	}
	sizeWord, overflow := stk.Back(1).Uint64WithOverflow()
	if overflow {
		return 0, ErrGasUintOverflowVal
	}
	words, overflow := safeMul(toWordSize(sizeWord), params.Sha3WordGas)
	if overflow {
		return 0, ErrGasUintOverflowVal
	}
	sum, overflow := safeAdd(gas, words)
	if overflow {
		return 0, ErrGasUintOverflowVal
	}
	return sum, nil
}

func gasExp(rules *params.Rules) gasFunc {
	return func(interp *Interpreter, frame *Frame, stk *stack.Stack, mem *Memory, memorySize uint64) (uint64, error) {
		exponent := stk.Back(1)
		byteGas := params.ExpByteGas
		if !rules.IsSpuriousDragon {
			byteGas = params.ExpByteGasFrontier
		}
		byteLen := uint64((exponent.BitLen() + 7) / 8)
		cost, overflow := safeMul(byteLen, byteGas)
		if overflow {
			return 0, ErrGasUintOverflowVal
		}
		return cost, nil
	}
}

func accessCost(rules *params.Rules, warm bool) uint64 {
	if !rules.IsBerlin {
		return 0
	}
	if warm {
		return 0
	}
	return params.ColdAccountAccessCostEIP2929 - params.WarmStorageReadCostEIP2929
}

func gasBalance(rules *params.Rules) gasFunc {
	return func(interp *Interpreter, frame *Frame, stk *stack.Stack, mem *Memory, memorySize uint64) (uint64, error) {
		addr := Address(stk.Peek().Bytes20())
		return accessAddrSurcharge(interp, rules, addr)
	}
}

func gasExtCodeSize(rules *params.Rules) gasFunc {
	return func(interp *Interpreter, frame *Frame, stk *stack.Stack, mem *Memory, memorySize uint64) (uint64, error) {
		addr := Address(stk.Peek().Bytes20())
		return accessAddrSurcharge(interp, rules, addr)
	}
}

func gasExtCodeCopy(rules *params.Rules) gasFunc {
	return func(interp *Interpreter, frame *Frame, stk *stack.Stack, mem *Memory, memorySize uint64) (uint64, error) {
		gas, err := memoryGasCost(mem, memorySize)
		if err != nil {
			return 0, err
		}
		// EXTCODECOPY's length is its fourth operand, not the third gasCopy reads.
		sizeWord, overflow := stk.Back(3).Uint64WithOverflow()
		if overflow {
			return 0, ErrGasUintOverflowVal
		}
		words, overflow := safeMul(toWordSize(sizeWord), params.CopyGas)
		if overflow {
			return 0, ErrGasUintOverflowVal
		}
		if gas, overflow = safeAdd(gas, words); overflow {
			return 0, ErrGasUintOverflowVal
		}
		addr := Address(stk.Back(0).Bytes20())
		extra, err := accessAddrSurcharge(interp, rules, addr)
		if err != nil {
			return 0, err
		}
		sum, overflow := safeAdd(gas, extra)
		if overflow {
			return 0, ErrGasUintOverflowVal
		}
		return sum, nil
	}
}

// accessAddrSurcharge implements the EIP-2929 cold/warm address pricing
// split: a cheap constantGas baseline plus a cold-access surcharge the
// first time an address is touched in a transaction.
func accessAddrSurcharge(interp *Interpreter, rules *params.Rules, addr Address) (uint64, error) {
	if !rules.IsBerlin {
		return 0, nil
	}
	warm := interp.host.AddressInAccessList(addr)
	if !warm {
		interp.host.AddAddressToAccessList(addr)
		return params.ColdAccountAccessCostEIP2929 - params.WarmStorageReadCostEIP2929, nil
	}
	return 0, nil
}

func gasReturnDataCopy(interp *Interpreter, frame *Frame, stk *stack.Stack, mem *Memory, memorySize uint64) (uint64, error) {
	return gasCopy(interp, frame, stk, mem, memorySize)
}

func gasSload(rules *params.Rules) gasFunc {
	return func(interp *Interpreter, frame *Frame, stk *stack.Stack, mem *Memory, memorySize uint64) (uint64, error) {
		if !rules.IsBerlin {
			return 0, nil
		}
		c := frame.Contract
		slot := Hash(stk.Peek().Bytes32())
		_, slotWarm := interp.host.SlotInAccessList(c.Address(), slot)
		if slotWarm {
			return 0, nil
		}
		interp.host.AddSlotToAccessList(c.Address(), slot)
		return params.ColdSloadCostEIP2929 - params.WarmStorageReadCostEIP2929, nil
	}
}

// gasSstoreDynamic prices SSTORE per EIP-2929/3529 and, from Istanbul on,
// enforces EIP-2200's reentrancy sentry: a call forwarded only the 2300-gas
// stipend must not be able to SSTORE at all, so it is rejected before the
// slot is even inspected. The sentry reads the block-corrected gas, not
// frame.Contract.Gas directly, since a mid-block SSTORE may be sitting on a
// balance already pre-debited for instructions later in the same block.
func gasSstoreDynamic(rules *params.Rules) gasFunc {
	return func(interp *Interpreter, frame *Frame, stk *stack.Stack, mem *Memory, memorySize uint64) (uint64, error) {
		if rules.IsIstanbul {
			remaining := frame.Contract.Gas + frame.GasCorrection()
			if remaining <= params.SstoreSentryGasEIP2200 {
				return 0, ErrOutOfGasVal
			}
		}
		c := frame.Contract
		loc := stk.Back(0)
		val := stk.Back(1)
		return gasSStore(interp.host, c.Address(), rules, *loc, *val)
	}
}

func gasMcopy(interp *Interpreter, frame *Frame, stk *stack.Stack, mem *Memory, memorySize uint64) (uint64, error) {
	gas, err := memoryGasCost(mem, memorySize)
	if err != nil {
		return 0, err
	}
	lengthWord, overflow := stk.Back(2).Uint64WithOverflow()
	if overflow {
		return 0, ErrGasUintOverflowVal
	}
	words, overflow := safeMul(toWordSize(lengthWord), params.CopyGas)
	if overflow {
		return 0, ErrGasUintOverflowVal
	}
	sum, overflow := safeAdd(gas, words)
	if overflow {
		return 0, ErrGasUintOverflowVal
	}
	return sum, nil
}

func gasLog(interp *Interpreter, frame *Frame, stk *stack.Stack, mem *Memory, memorySize uint64) (uint64, error) {
	gas, err := memoryGasCost(mem, memorySize)
	if err != nil {
		return 0, err
	}
	sizeWord, overflow := stk.Back(1).Uint64WithOverflow()
	if overflow {
		return 0, ErrGasUintOverflowVal
	}
	dataGas, overflow := safeMul(sizeWord, params.LogDataGas)
	if overflow {
		return 0, ErrGasUintOverflowVal
	}
	sum, overflow := safeAdd(gas, dataGas)
	if overflow {
		return 0, ErrGasUintOverflowVal
	}
	return sum, nil
}

func gasCreate(interp *Interpreter, frame *Frame, stk *stack.Stack, mem *Memory, memorySize uint64) (uint64, error) {
	return memoryGasCost(mem, memorySize)
}

func gasCreate2(interp *Interpreter, frame *Frame, stk *stack.Stack, mem *Memory, memorySize uint64) (uint64, error) {
	gas, err := memoryGasCost(mem, memorySize)
	if err != nil {
		return 0, err
	}
	sizeWord, overflow := stk.Back(2).Uint64WithOverflow()
	if overflow {
		return 0, ErrGasUintOverflowVal
	}
	words, overflow := safeMul(toWordSize(sizeWord), params.Sha3WordGas)
	if overflow {
		return 0, ErrGasUintOverflowVal
	}
	sum, overflow := safeAdd(gas, words)
	if overflow {
		return 0, ErrGasUintOverflowVal
	}
	return sum, nil
}

// callGasRetained implements EIP-150: a CALL may only forward 63/64 of the
// gas remaining after its own charge, the rest stays with the caller.
func callGasRetained(available uint64) uint64 {
	return available - available/params.CallGasRetentionDivisor
}

func gasCall(rules *params.Rules) gasFunc {
	return func(interp *Interpreter, frame *Frame, stk *stack.Stack, mem *Memory, memorySize uint64) (uint64, error) {
		gas, err := memoryGasCost(mem, memorySize)
		if err != nil {
			return 0, err
		}
		addr := Address(stk.Back(1).Bytes20())
		extra, err := accessAddrSurcharge(interp, rules, addr)
		if err != nil {
			return 0, err
		}
		value := stk.Back(2)
		if !value.IsZero() {
			extra += params.CallValueTransferGas
			if !interp.host.Exist(addr) {
				extra += params.CallNewAccountGas
			}
		}
		sum, overflow := safeAdd(gas, extra)
		if overflow {
			return 0, ErrGasUintOverflowVal
		}
		return sum, nil
	}
}

func gasCallCode(rules *params.Rules) gasFunc {
	return func(interp *Interpreter, frame *Frame, stk *stack.Stack, mem *Memory, memorySize uint64) (uint64, error) {
		gas, err := memoryGasCost(mem, memorySize)
		if err != nil {
			return 0, err
		}
		addr := Address(stk.Back(1).Bytes20())
		extra, err := accessAddrSurcharge(interp, rules, addr)
		if err != nil {
			return 0, err
		}
		if !stk.Back(2).IsZero() {
			extra += params.CallValueTransferGas
		}
		sum, overflow := safeAdd(gas, extra)
		if overflow {
			return 0, ErrGasUintOverflowVal
		}
		return sum, nil
	}
}

func gasDelegateCall(rules *params.Rules) gasFunc {
	return func(interp *Interpreter, frame *Frame, stk *stack.Stack, mem *Memory, memorySize uint64) (uint64, error) {
		gas, err := memoryGasCost(mem, memorySize)
		if err != nil {
			return 0, err
		}
		addr := Address(stk.Back(1).Bytes20())
		extra, err := accessAddrSurcharge(interp, rules, addr)
		if err != nil {
			return 0, err
		}
		sum, overflow := safeAdd(gas, extra)
		if overflow {
			return 0, ErrGasUintOverflowVal
		}
		return sum, nil
	}
}

func gasStaticCall(rules *params.Rules) gasFunc {
	return func(interp *Interpreter, frame *Frame, stk *stack.Stack, mem *Memory, memorySize uint64) (uint64, error) {
		gas, err := memoryGasCost(mem, memorySize)
		if err != nil {
			return 0, err
		}
		addr := Address(stk.Back(1).Bytes20())
		extra, err := accessAddrSurcharge(interp, rules, addr)
		if err != nil {
			return 0, err
		}
		sum, overflow := safeAdd(gas, extra)
		if overflow {
			return 0, ErrGasUintOverflowVal
		}
		return sum, nil
	}
}

func gasSelfdestruct(rules *params.Rules) gasFunc {
	return func(interp *Interpreter, frame *Frame, stk *stack.Stack, mem *Memory, memorySize uint64) (uint64, error) {
		c := frame.Contract
		var gas uint64
		addr := Address(stk.Peek().Bytes20())
		if rules.IsBerlin && !interp.host.AddressInAccessList(addr) {
			interp.host.AddAddressToAccessList(addr)
			gas += params.ColdAccountAccessCostEIP2929
		}
		if rules.IsSpuriousDragon {
			if !interp.host.Exist(addr) && !interp.host.GetBalance(c.Address()).IsZero() {
				gas += params.CallNewAccountGas
			}
		}
		return gas, nil
	}
}
