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
)

func opStop(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	return nil, errStopToken
}

// memoryPtr and memoryCopy resolve a stack-supplied (offset, size) pair
// into a Memory access, rejecting a 256-bit value that doesn't fit in the
// int64 Memory's accessors take rather than letting it silently wrap
// negative. By the time an opcode reads memory here, the dynamic-gas pass
// has already bounded offset+size to a payable uint64 word count; a value
// still too large for int64 means the cost would have been uint64-overflow
// money no block could ever afford, so it is reported as
// ErrGasUintOverflowVal.
func memoryPtr(mem *Memory, offset, size *uint256.Int) ([]byte, error) {
	off, ok := SafeUint64ToInt64(offset.Uint64())
	if !ok {
		return nil, ErrGasUintOverflowVal
	}
	sz, ok := SafeUint64ToInt64(size.Uint64())
	if !ok {
		return nil, ErrGasUintOverflowVal
	}
	return mem.GetPtr(off, sz), nil
}

func memoryCopy(mem *Memory, offset, size *uint256.Int) ([]byte, error) {
	off, ok := SafeUint64ToInt64(offset.Uint64())
	if !ok {
		return nil, ErrGasUintOverflowVal
	}
	sz, ok := SafeUint64ToInt64(size.Uint64())
	if !ok {
		return nil, ErrGasUintOverflowVal
	}
	return mem.GetCopy(off, sz), nil
}

func opAdd(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	x, y := frame.Stack.Pop(), frame.Stack.Peek()
	y.Add(&x, y)
	return nil, nil
}

func opMul(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	x, y := frame.Stack.Pop(), frame.Stack.Peek()
	y.Mul(&x, y)
	return nil, nil
}

func opSub(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	x, y := frame.Stack.Pop(), frame.Stack.Peek()
	y.Sub(&x, y)
	return nil, nil
}

func opDiv(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	x, y := frame.Stack.Pop(), frame.Stack.Peek()
	y.Div(&x, y)
	return nil, nil
}

func opSdiv(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	x, y := frame.Stack.Pop(), frame.Stack.Peek()
	y.SDiv(&x, y)
	return nil, nil
}

func opMod(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	x, y := frame.Stack.Pop(), frame.Stack.Peek()
	y.Mod(&x, y)
	return nil, nil
}

func opSmod(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	x, y := frame.Stack.Pop(), frame.Stack.Peek()
	y.SMod(&x, y)
	return nil, nil
}

func opAddmod(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	x, y, z := frame.Stack.Pop(), frame.Stack.Pop(), frame.Stack.Peek()
	z.AddMod(&x, &y, z)
	return nil, nil
}

func opMulmod(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	x, y, z := frame.Stack.Pop(), frame.Stack.Pop(), frame.Stack.Peek()
	z.MulMod(&x, &y, z)
	return nil, nil
}

func opExp(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	base, exponent := frame.Stack.Pop(), frame.Stack.Peek()
	exponent.Exp(&base, exponent)
	return nil, nil
}

func opSignExtend(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	back, num := frame.Stack.Pop(), frame.Stack.Peek()
	num.ExtendSign(num, &back)
	return nil, nil
}

func opLt(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	x, y := frame.Stack.Pop(), frame.Stack.Peek()
	if x.Lt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, nil
}

func opGt(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	x, y := frame.Stack.Pop(), frame.Stack.Peek()
	if x.Gt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, nil
}

func opSlt(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	x, y := frame.Stack.Pop(), frame.Stack.Peek()
	if x.Slt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, nil
}

func opSgt(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	x, y := frame.Stack.Pop(), frame.Stack.Peek()
	if x.Sgt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, nil
}

func opEq(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	x, y := frame.Stack.Pop(), frame.Stack.Peek()
	if x.Eq(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, nil
}

func opIszero(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	x := frame.Stack.Peek()
	if x.IsZero() {
		x.SetOne()
	} else {
		x.Clear()
	}
	return nil, nil
}

func opAnd(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	x, y := frame.Stack.Pop(), frame.Stack.Peek()
	y.And(&x, y)
	return nil, nil
}

func opOr(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	x, y := frame.Stack.Pop(), frame.Stack.Peek()
	y.Or(&x, y)
	return nil, nil
}

func opXor(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	x, y := frame.Stack.Pop(), frame.Stack.Peek()
	y.Xor(&x, y)
	return nil, nil
}

func opNot(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	x := frame.Stack.Peek()
	x.Not(x)
	return nil, nil
}

func opByte(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	th, val := frame.Stack.Pop(), frame.Stack.Peek()
	val.Byte(&th)
	return nil, nil
}

func opShl(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	shift, value := frame.Stack.Pop(), frame.Stack.Peek()
	if shift.LtUint64(256) {
		value.Lsh(value, uint(shift.Uint64()))
	} else {
		value.Clear()
	}
	return nil, nil
}

func opShr(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	shift, value := frame.Stack.Pop(), frame.Stack.Peek()
	if shift.LtUint64(256) {
		value.Rsh(value, uint(shift.Uint64()))
	} else {
		value.Clear()
	}
	return nil, nil
}

func opSar(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	shift, value := frame.Stack.Pop(), frame.Stack.Peek()
	if shift.GtUint64(256) {
		if value.Sign() >= 0 {
			value.Clear()
		} else {
			value.SetAllOne()
		}
		return nil, nil
	}
	value.SRsh(value, uint(shift.Uint64()))
	return nil, nil
}

func opSha3(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	offset, size := frame.Stack.Pop(), frame.Stack.Peek()
	data, err := memoryPtr(frame.Memory, &offset, size)
	if err != nil {
		return nil, err
	}
	hash := keccak256(data)
	size.SetBytes(hash[:])
	return nil, nil
}

func opAddress(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	pushAddress(frame, frame.Contract.Address())
	return nil, nil
}

func opBalance(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	slot := frame.Stack.Peek()
	addr := Address(slot.Bytes20())
	*slot = *interp.host.GetBalance(addr)
	return nil, nil
}

func opOrigin(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	pushAddress(frame, interp.evm.txCtx.Origin)
	return nil, nil
}

func opCaller(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	pushAddress(frame, frame.Contract.Caller())
	return nil, nil
}

func opCallValue(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	frame.Stack.Push(frame.Contract.Value())
	return nil, nil
}

func opCallDataLoad(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	x := frame.Stack.Peek()
	if offset, overflow := x.Uint64WithOverflow(); !overflow {
		x.SetBytes(getData(frame.Contract.Input, offset, 32))
	} else {
		x.Clear()
	}
	return nil, nil
}

func opCallDataSize(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	pushUint64(frame, uint64(len(frame.Contract.Input)))
	return nil, nil
}

func opCallDataCopy(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	memOffset, dataOffset, length := frame.Stack.Pop(), frame.Stack.Pop(), frame.Stack.Pop()
	offset64, overflow := dataOffset.Uint64WithOverflow()
	if overflow {
		offset64 = ^uint64(0)
	}
	frame.Memory.Set(memOffset.Uint64(), length.Uint64(), getData(frame.Contract.Input, offset64, length.Uint64()))
	return nil, nil
}

func opCodeSize(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	pushUint64(frame, uint64(len(frame.Contract.Code)))
	return nil, nil
}

func opCodeCopy(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	memOffset, codeOffset, length := frame.Stack.Pop(), frame.Stack.Pop(), frame.Stack.Pop()
	offset64, overflow := codeOffset.Uint64WithOverflow()
	if overflow {
		offset64 = ^uint64(0)
	}
	frame.Memory.Set(memOffset.Uint64(), length.Uint64(), getData(frame.Contract.Code, offset64, length.Uint64()))
	return nil, nil
}

func opGasPrice(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	frame.Stack.Push(interp.evm.txCtx.GasPrice)
	return nil, nil
}

func opExtCodeSize(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	slot := frame.Stack.Peek()
	addr := Address(slot.Bytes20())
	slot.SetUint64(uint64(interp.host.GetCodeSize(addr)))
	return nil, nil
}

func opExtCodeCopy(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	addrWord, memOffset, codeOffset, length := frame.Stack.Pop(), frame.Stack.Pop(), frame.Stack.Pop(), frame.Stack.Pop()
	addr := Address(addrWord.Bytes20())
	offset64, overflow := codeOffset.Uint64WithOverflow()
	if overflow {
		offset64 = ^uint64(0)
	}
	code := interp.host.GetCode(addr)
	frame.Memory.Set(memOffset.Uint64(), length.Uint64(), getData(code, offset64, length.Uint64()))
	return nil, nil
}

func opReturnDataSize(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	pushUint64(frame, uint64(len(frame.ReturnData)))
	return nil, nil
}

func opReturnDataCopy(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	memOffset, dataOffset, length := frame.Stack.Pop(), frame.Stack.Pop(), frame.Stack.Pop()
	offset64, overflow := dataOffset.Uint64WithOverflow()
	if overflow {
		return nil, ErrReturnDataOutOfBoundsVal
	}
	end, overflow := safeAdd(offset64, length.Uint64())
	if overflow || end > uint64(len(frame.ReturnData)) {
		return nil, ErrReturnDataOutOfBoundsVal
	}
	frame.Memory.Set(memOffset.Uint64(), length.Uint64(), frame.ReturnData[offset64:end])
	return nil, nil
}

func opExtCodeHash(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	slot := frame.Stack.Peek()
	addr := Address(slot.Bytes20())
	if interp.host.Empty(addr) {
		slot.Clear()
		return nil, nil
	}
	hash := interp.host.GetCodeHash(addr)
	slot.SetBytes32(hash[:])
	return nil, nil
}

func opBlockhash(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	num := frame.Stack.Peek()
	num64, overflow := num.Uint64WithOverflow()
	if overflow {
		num.Clear()
		return nil, nil
	}
	upper := interp.evm.blockCtx.BlockNumber
	var lower uint64
	if upper > 256 {
		lower = upper - 256
	}
	if num64 >= lower && num64 < upper {
		hash := interp.evm.blockCtx.GetHash(num64)
		num.SetBytes32(hash[:])
	} else {
		num.Clear()
	}
	return nil, nil
}

func opCoinbase(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	pushAddress(frame, interp.evm.blockCtx.Coinbase)
	return nil, nil
}

func opTimestamp(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	pushUint64(frame, interp.evm.blockCtx.Time)
	return nil, nil
}

func opNumber(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	pushUint64(frame, interp.evm.blockCtx.BlockNumber)
	return nil, nil
}

func opDifficulty(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	var v uint256.Int
	switch {
	case interp.evm.blockCtx.PrevRanDao != nil:
		v.SetBytes32(interp.evm.blockCtx.PrevRanDao[:])
	case interp.evm.blockCtx.Difficulty != nil:
		v.SetFromBig(interp.evm.blockCtx.Difficulty)
	}
	frame.Stack.Push(&v)
	return nil, nil
}

func opGasLimit(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	pushUint64(frame, interp.evm.blockCtx.GasLimit)
	return nil, nil
}

func opChainID(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	var id uint64
	if interp.evm.chainCfg != nil && interp.evm.chainCfg.ChainID != nil {
		id = *interp.evm.chainCfg.ChainID
	}
	pushUint64(frame, id)
	return nil, nil
}

func opSelfBalance(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	frame.Stack.Push(interp.host.GetBalance(frame.Contract.Address()))
	return nil, nil
}

func opBaseFee(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	bf := interp.evm.blockCtx.BaseFee
	if bf == nil {
		bf = new(uint256.Int)
	}
	frame.Stack.Push(bf)
	return nil, nil
}

func opBlobHash(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	idx := frame.Stack.Peek()
	i, overflow := idx.Uint64WithOverflow()
	hashes := interp.evm.txCtx.BlobHashes
	if overflow || i >= uint64(len(hashes)) {
		idx.Clear()
		return nil, nil
	}
	idx.SetBytes32(hashes[i][:])
	return nil, nil
}

func opBlobBaseFee(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	bf := interp.evm.blockCtx.BlobBaseFee
	if bf == nil {
		bf = new(uint256.Int)
	}
	frame.Stack.Push(bf)
	return nil, nil
}

func opPop(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	frame.Stack.Pop()
	return nil, nil
}

func opMload(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	v := frame.Stack.Peek()
	off, ok := SafeUint64ToInt64(v.Uint64())
	if !ok {
		return nil, ErrGasUintOverflowVal
	}
	v.SetBytes(frame.Memory.GetPtr(off, 32))
	return nil, nil
}

func opMstore(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	offset, val := frame.Stack.Pop(), frame.Stack.Pop()
	frame.Memory.Set32(offset.Uint64(), &val)
	return nil, nil
}

func opMstore8(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	offset, val := frame.Stack.Pop(), frame.Stack.Pop()
	frame.Memory.Data()[offset.Uint64()] = byte(val.Uint64())
	return nil, nil
}

func opSload(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	loc := frame.Stack.Peek()
	slot := Hash(loc.Bytes32())
	interp.host.GetState(frame.Contract.Address(), &slot, loc)
	return nil, nil
}

func opSstore(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	if frame.ReadOnly {
		return nil, ErrWriteProtectionVal
	}
	loc, val := frame.Stack.Pop(), frame.Stack.Pop()
	slot := Hash(loc.Bytes32())
	interp.host.SetState(frame.Contract.Address(), &slot, val)
	return nil, nil
}

// opJump and opJumpi set *pc to one less than the resolved target
// instruction index: Run unconditionally increments pc after a successful
// execute, so this lands execution exactly on the target.
func opJump(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	target := frame.Stack.Pop()
	targetIdx, err := resolveJumpTarget(frame, frame.analysis.Instructions[*pc].JumpKind == jumpStatic, &target, *pc)
	if err != nil {
		return nil, err
	}
	*pc = uint64(targetIdx) - 1
	return nil, nil
}

func opJumpi(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	target, cond := frame.Stack.Pop(), frame.Stack.Pop()
	if cond.IsZero() {
		return nil, nil
	}
	targetIdx, err := resolveJumpTarget(frame, frame.analysis.Instructions[*pc].JumpKind == jumpConditionalStatic, &target, *pc)
	if err != nil {
		return nil, err
	}
	*pc = uint64(targetIdx) - 1
	return nil, nil
}

// resolveJumpTarget returns the instruction index a JUMP/JUMPI should
// resolve to: the analyzer's precomputed StaticTarget when the restricted
// pattern (O-2) matched, otherwise a runtime jumpdest lookup against target.
func resolveJumpTarget(frame *Frame, isStatic bool, target *uint256.Int, instIdx uint64) (int32, error) {
	if isStatic {
		return frame.analysis.Instructions[instIdx].StaticTarget, nil
	}
	if !target.IsUint64() {
		return 0, ErrInvalidJumpAt(target.Uint64())
	}
	dest := target.Uint64()
	if !frame.analysis.ValidJumpdest(dest) {
		return 0, ErrInvalidJumpAt(dest)
	}
	idx, ok := frame.analysis.IndexForPC(dest)
	if !ok {
		return 0, ErrInvalidJumpAt(dest)
	}
	return idx, nil
}

func opPc(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	pushUint64(frame, frame.analysis.Instructions[*pc].PC)
	return nil, nil
}

func opMsize(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	pushUint64(frame, uint64(frame.Memory.Len()))
	return nil, nil
}

func opGas(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	pushUint64(frame, frame.Contract.Gas+frame.GasCorrection())
	return nil, nil
}

func opJumpdest(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	return nil, nil
}

func opTload(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	loc := frame.Stack.Peek()
	slot := Hash(loc.Bytes32())
	*loc = interp.host.GetTransientState(frame.Contract.Address(), slot)
	return nil, nil
}

func opTstore(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	if frame.ReadOnly {
		return nil, ErrWriteProtectionVal
	}
	loc, val := frame.Stack.Pop(), frame.Stack.Pop()
	slot := Hash(loc.Bytes32())
	interp.host.SetTransientState(frame.Contract.Address(), slot, val)
	return nil, nil
}

func opMcopy(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	dst, src, length := frame.Stack.Pop(), frame.Stack.Pop(), frame.Stack.Pop()
	frame.Memory.Copy(dst.Uint64(), src.Uint64(), length.Uint64())
	return nil, nil
}

func opPush0(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	var v uint256.Int
	frame.Stack.Push(&v)
	return nil, nil
}

// opDup, opSwap, and opPush are handler factories: the jump table's dup/
// swap/push helpers close over the operand count baked into each
// DUPn/SWAPn/PUSHn opcode so the same closure is reused for every call.

func opDup(n int) instructionHandler {
	return func(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
		frame.Stack.Dup(n)
		return nil, nil
	}
}

func opSwap(n int) instructionHandler {
	return func(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
		frame.Stack.Swap(n)
		return nil, nil
	}
}

func opPush(n int) instructionHandler {
	return func(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
		inst := &frame.analysis.Instructions[*pc]
		var v uint256.Int
		if inst.PushIdx >= 0 {
			v = frame.analysis.PushValues[inst.PushIdx]
		} else {
			v.SetUint64(inst.PushSmall)
		}
		frame.Stack.Push(&v)
		return nil, nil
	}
}

func opLog(n int) instructionHandler {
	return func(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
		if frame.ReadOnly {
			return nil, ErrWriteProtectionVal
		}
		mStart, mSize := frame.Stack.Pop(), frame.Stack.Pop()
		topics := make([]Hash, n)
		for i := 0; i < n; i++ {
			v := frame.Stack.Pop()
			topics[i] = Hash(v.Bytes32())
		}
		data, err := memoryCopy(frame.Memory, &mStart, &mSize)
		if err != nil {
			return nil, err
		}
		interp.host.AddLog(&evmtypes.Log{
			Address: frame.Contract.Address(),
			Topics:  topics,
			Data:    data,
		})
		return nil, nil
	}
}

func opCreate(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	if frame.ReadOnly {
		return nil, ErrWriteProtectionVal
	}
	value, offset, size := frame.Stack.Pop(), frame.Stack.Pop(), frame.Stack.Pop()
	input, err := memoryCopy(frame.Memory, &offset, &size)
	if err != nil {
		return nil, err
	}

	gas, gerr := callGasFor(frame, nil)
	if gerr != nil {
		return nil, gerr
	}
	ret, addr, returnGas, err := interp.evm.Create(frame.Contract, input, gas, &value)
	frame.Stack.Push(pushCreateResult(addr, err))
	frame.Contract.RefundGas(returnGas)

	if err != nil && !IsRevert(err) {
		frame.ReturnData = nil
	} else {
		frame.ReturnData = ret
	}
	return nil, nil
}

func opCreate2(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	if frame.ReadOnly {
		return nil, ErrWriteProtectionVal
	}
	value, offset, size, salt := frame.Stack.Pop(), frame.Stack.Pop(), frame.Stack.Pop(), frame.Stack.Pop()
	input, err := memoryCopy(frame.Memory, &offset, &size)
	if err != nil {
		return nil, err
	}

	gas, gerr := callGasFor(frame, nil)
	if gerr != nil {
		return nil, gerr
	}
	ret, addr, returnGas, err := interp.evm.Create2(frame.Contract, input, gas, &value, &salt)
	frame.Stack.Push(pushCreateResult(addr, err))
	frame.Contract.RefundGas(returnGas)

	if err != nil && !IsRevert(err) {
		frame.ReturnData = nil
	} else {
		frame.ReturnData = ret
	}
	return nil, nil
}

func opCall(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	stk := frame.Stack
	gas, addrWord, value, inOffset, inSize, retOffset, retSize := stk.Pop(), stk.Pop(), stk.Pop(), stk.Pop(), stk.Pop(), stk.Pop(), stk.Pop()
	addr := Address(addrWord.Bytes20())

	if frame.ReadOnly && !value.IsZero() {
		return nil, ErrWriteProtectionVal
	}

	args, aerr := memoryCopy(frame.Memory, &inOffset, &inSize)
	if aerr != nil {
		return nil, aerr
	}
	callGas, gerr := callGasFor(frame, &gas)
	if gerr != nil {
		return nil, gerr
	}

	ret, returnGas, err := interp.evm.Call(frame.Contract, addr, args, callGas, &value, false)
	stk.Push(callResult(err))
	if err == nil || IsRevert(err) {
		frame.Memory.Set(retOffset.Uint64(), retSize.Uint64(), ret)
	}
	frame.Contract.RefundGas(returnGas)
	frame.ReturnData = ret
	return nil, nil
}

func opCallCode(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	stk := frame.Stack
	gas, addrWord, value, inOffset, inSize, retOffset, retSize := stk.Pop(), stk.Pop(), stk.Pop(), stk.Pop(), stk.Pop(), stk.Pop(), stk.Pop()
	addr := Address(addrWord.Bytes20())

	args, aerr := memoryCopy(frame.Memory, &inOffset, &inSize)
	if aerr != nil {
		return nil, aerr
	}
	callGas, gerr := callGasFor(frame, &gas)
	if gerr != nil {
		return nil, gerr
	}

	ret, returnGas, err := interp.evm.CallCode(frame.Contract, addr, args, callGas, &value)
	stk.Push(callResult(err))
	if err == nil || IsRevert(err) {
		frame.Memory.Set(retOffset.Uint64(), retSize.Uint64(), ret)
	}
	frame.Contract.RefundGas(returnGas)
	frame.ReturnData = ret
	return nil, nil
}

func opDelegateCall(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	stk := frame.Stack
	gas, addrWord, inOffset, inSize, retOffset, retSize := stk.Pop(), stk.Pop(), stk.Pop(), stk.Pop(), stk.Pop(), stk.Pop()
	addr := Address(addrWord.Bytes20())

	args, aerr := memoryCopy(frame.Memory, &inOffset, &inSize)
	if aerr != nil {
		return nil, aerr
	}
	callGas, gerr := callGasFor(frame, &gas)
	if gerr != nil {
		return nil, gerr
	}

	ret, returnGas, err := interp.evm.DelegateCall(frame.Contract, addr, args, callGas)
	stk.Push(callResult(err))
	if err == nil || IsRevert(err) {
		frame.Memory.Set(retOffset.Uint64(), retSize.Uint64(), ret)
	}
	frame.Contract.RefundGas(returnGas)
	frame.ReturnData = ret
	return nil, nil
}

func opStaticCall(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	stk := frame.Stack
	gas, addrWord, inOffset, inSize, retOffset, retSize := stk.Pop(), stk.Pop(), stk.Pop(), stk.Pop(), stk.Pop(), stk.Pop()
	addr := Address(addrWord.Bytes20())

	args, aerr := memoryCopy(frame.Memory, &inOffset, &inSize)
	if aerr != nil {
		return nil, aerr
	}
	callGas, gerr := callGasFor(frame, &gas)
	if gerr != nil {
		return nil, gerr
	}

	ret, returnGas, err := interp.evm.StaticCall(frame.Contract, addr, args, callGas)
	stk.Push(callResult(err))
	if err == nil || IsRevert(err) {
		frame.Memory.Set(retOffset.Uint64(), retSize.Uint64(), ret)
	}
	frame.Contract.RefundGas(returnGas)
	frame.ReturnData = ret
	return nil, nil
}

func opReturn(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	offset, size := frame.Stack.Pop(), frame.Stack.Pop()
	ret, err := memoryCopy(frame.Memory, &offset, &size)
	if err != nil {
		return nil, err
	}
	frame.Output = ret
	return ret, errStopToken
}

func opRevert(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	offset, size := frame.Stack.Pop(), frame.Stack.Pop()
	ret, err := memoryCopy(frame.Memory, &offset, &size)
	if err != nil {
		return nil, err
	}
	frame.Output = ret
	return ret, ErrExecutionRevertedVal
}

func opInvalid(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	return nil, ErrInvalidOpcodeVal
}

func opSelfdestruct(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error) {
	if frame.ReadOnly {
		return nil, ErrWriteProtectionVal
	}
	beneficiary := Address(frame.Stack.Pop().Bytes20())
	balance := interp.host.GetBalance(frame.Contract.Address())
	interp.host.AddBalance(beneficiary, balance)
	interp.host.Selfdestruct(frame.Contract.Address())
	return nil, errStopToken
}

func pushAddress(frame *Frame, addr Address) {
	var v uint256.Int
	v.SetBytes20(addr[:])
	frame.Stack.Push(&v)
}

func pushUint64(frame *Frame, n uint64) {
	var v uint256.Int
	v.SetUint64(n)
	frame.Stack.Push(&v)
}

func pushCreateResult(addr Address, err error) *uint256.Int {
	var v uint256.Int
	if err == nil {
		v.SetBytes20(addr[:])
	}
	return &v
}

func callResult(err error) *uint256.Int {
	var v uint256.Int
	if err == nil {
		v.SetOne()
	}
	return &v
}

// callGasFor applies EIP-150's 63/64 retention rule and, when requested is
// non-nil, caps the forwarded amount to whatever the stack asked for. The
// 63/64 split is computed against the block-corrected gas remaining, not
// frame.Contract.Gas's raw, precharge-reduced balance — a CALL that isn't
// the last instruction in its block would otherwise see less gas than it
// truly has and forward too little. The chosen amount is then deducted via
// the same correction-aware charge, since leaving it on Contract.Gas would
// re-introduce the same understatement for whatever runs after the call in
// this block. CREATE/CREATE2 pass requested=nil because they always forward
// everything they're allowed to.
func callGasFor(frame *Frame, requested *uint256.Int) (uint64, error) {
	available := callGasRetained(frame.Contract.Gas + frame.GasCorrection())
	gas := available
	if requested != nil {
		if v, overflow := requested.Uint64WithOverflow(); !overflow && v < available {
			gas = v
		}
	}
	if !frame.ChargeDynamicGas(gas) {
		return 0, ErrOutOfGasVal
	}
	return gas, nil
}

// getData returns size bytes of data starting at start, zero-padded past
// the end of data — the shape every CALLDATA*/CODE*/EXTCODE* copy opcode
// needs since reads past the end of calldata or code are defined as zero,
// not an error.
func getData(data []byte, start, size uint64) []byte {
	length := uint64(len(data))
	if start > length {
		start = length
	}
	end := start + size
	if end > length {
		end = length
	}
	out := make([]byte, size)
	copy(out, data[start:end])
	return out
}
