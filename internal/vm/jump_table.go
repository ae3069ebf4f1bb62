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
	"github.com/evmcore/blockvm/internal/vm/stack"
	"github.com/evmcore/blockvm/params"
)

// instructionHandler is the signature every opcode's execute function
// shares. pc is an index into Analysis.Instructions, not a raw bytecode
// offset; Run increments it after every non-erroring execute, so JUMP and
// JUMPI set *pc to one less than their resolved target index. The return
// value is RETURN/REVERT output data.
type instructionHandler func(pc *uint64, interp *Interpreter, frame *Frame) ([]byte, error)

// gasFunc takes frame (not a bare *Contract) because a dynamic-gas
// computation that needs to read remaining gas - SSTORE's EIP-2200 sentry,
// the 63/64 call-forwarding rule - must read it block-corrected, via
// frame.GasCorrection, rather than frame.Contract.Gas's precharge-reduced
// balance.
type gasFunc func(interp *Interpreter, frame *Frame, stk *stack.Stack, mem *Memory, memorySize uint64) (uint64, error)
type memorySizeFunc func(*stack.Stack) (uint64, bool)

// operation is the single source of truth this engine reads twice: the
// block analyzer (C2) sums constantGas and numPop/numPush per basic block
// to build each block's precomputed gas/stack checks, and the interpreter
// (C4) calls execute/dynamicGas per instruction. The teacher keeps these
// two readers implicit across its classic per-opcode dispatch loop; here
// they are explicit consumers of the same table.
type operation struct {
	execute     instructionHandler
	constantGas uint64
	dynamicGas  gasFunc
	numPop      int
	numPush     int
	memorySize  memorySizeFunc
}

// JumpTable is a 256-entry array indexed by opcode byte. A nil entry means
// the opcode is undefined for the ruleset the table was built for.
type JumpTable [256]*operation

func dup(n int) *operation {
	return &operation{execute: opDup(n), constantGas: params.GasFastestStep, numPop: n, numPush: n + 1}
}

func swap(n int) *operation {
	return &operation{execute: opSwap(n), constantGas: params.GasFastestStep, numPop: n + 1, numPush: n + 1}
}

func push(n int) *operation {
	return &operation{execute: opPush(n), constantGas: params.GasFastestStep, numPop: 0, numPush: 1}
}

// newJumpTable builds the operation table for rules. Unlike the teacher's
// chain of newXInstructionSet() constructors layered via enableNNNN(jt)
// mutators, every opcode this engine supports lives in one base table and
// only the genuinely version-gated opcodes are conditionally populated —
// the narrower Frontier..Cancun scope this engine covers doesn't carry
// enough inter-fork gas-schedule churn to justify a dozen separate
// constructors.
func newJumpTable(rules *params.Rules) JumpTable {
	var jt JumpTable

	jt[STOP] = &operation{execute: opStop, constantGas: 0}
	jt[ADD] = &operation{execute: opAdd, constantGas: params.GasFastestStep, numPop: 2, numPush: 1}
	jt[MUL] = &operation{execute: opMul, constantGas: params.GasFastStep, numPop: 2, numPush: 1}
	jt[SUB] = &operation{execute: opSub, constantGas: params.GasFastestStep, numPop: 2, numPush: 1}
	jt[DIV] = &operation{execute: opDiv, constantGas: params.GasFastStep, numPop: 2, numPush: 1}
	jt[SDIV] = &operation{execute: opSdiv, constantGas: params.GasFastStep, numPop: 2, numPush: 1}
	jt[MOD] = &operation{execute: opMod, constantGas: params.GasFastStep, numPop: 2, numPush: 1}
	jt[SMOD] = &operation{execute: opSmod, constantGas: params.GasFastStep, numPop: 2, numPush: 1}
	jt[ADDMOD] = &operation{execute: opAddmod, constantGas: params.GasMidStep, numPop: 3, numPush: 1}
	jt[MULMOD] = &operation{execute: opMulmod, constantGas: params.GasMidStep, numPop: 3, numPush: 1}
	jt[EXP] = &operation{execute: opExp, constantGas: params.GasSlowStep, dynamicGas: gasExp(rules), numPop: 2, numPush: 1}
	jt[SIGNEXTEND] = &operation{execute: opSignExtend, constantGas: params.GasFastStep, numPop: 2, numPush: 1}

	jt[LT] = &operation{execute: opLt, constantGas: params.GasFastestStep, numPop: 2, numPush: 1}
	jt[GT] = &operation{execute: opGt, constantGas: params.GasFastestStep, numPop: 2, numPush: 1}
	jt[SLT] = &operation{execute: opSlt, constantGas: params.GasFastestStep, numPop: 2, numPush: 1}
	jt[SGT] = &operation{execute: opSgt, constantGas: params.GasFastestStep, numPop: 2, numPush: 1}
	jt[EQ] = &operation{execute: opEq, constantGas: params.GasFastestStep, numPop: 2, numPush: 1}
	jt[ISZERO] = &operation{execute: opIszero, constantGas: params.GasFastestStep, numPop: 1, numPush: 1}
	jt[AND] = &operation{execute: opAnd, constantGas: params.GasFastestStep, numPop: 2, numPush: 1}
	jt[OR] = &operation{execute: opOr, constantGas: params.GasFastestStep, numPop: 2, numPush: 1}
	jt[XOR] = &operation{execute: opXor, constantGas: params.GasFastestStep, numPop: 2, numPush: 1}
	jt[NOT] = &operation{execute: opNot, constantGas: params.GasFastestStep, numPop: 1, numPush: 1}
	jt[BYTE] = &operation{execute: opByte, constantGas: params.GasFastestStep, numPop: 2, numPush: 1}
	jt[SHL] = &operation{execute: opShl, constantGas: params.GasFastestStep, numPop: 2, numPush: 1}
	jt[SHR] = &operation{execute: opShr, constantGas: params.GasFastestStep, numPop: 2, numPush: 1}
	jt[SAR] = &operation{execute: opSar, constantGas: params.GasFastestStep, numPop: 2, numPush: 1}

	jt[SHA3] = &operation{execute: opSha3, constantGas: params.Sha3Gas, dynamicGas: gasSha3, numPop: 2, numPush: 1, memorySize: memorySizeFor(0, 1)}

	jt[ADDRESS] = &operation{execute: opAddress, constantGas: params.GasQuickStep, numPush: 1}
	jt[BALANCE] = &operation{execute: opBalance, constantGas: params.WarmStorageReadCostEIP2929, dynamicGas: gasBalance(rules), numPop: 1, numPush: 1}
	jt[ORIGIN] = &operation{execute: opOrigin, constantGas: params.GasQuickStep, numPush: 1}
	jt[CALLER] = &operation{execute: opCaller, constantGas: params.GasQuickStep, numPush: 1}
	jt[CALLVALUE] = &operation{execute: opCallValue, constantGas: params.GasQuickStep, numPush: 1}
	jt[CALLDATALOAD] = &operation{execute: opCallDataLoad, constantGas: params.GasFastestStep, numPop: 1, numPush: 1}
	jt[CALLDATASIZE] = &operation{execute: opCallDataSize, constantGas: params.GasQuickStep, numPush: 1}
	jt[CALLDATACOPY] = &operation{execute: opCallDataCopy, constantGas: params.GasFastestStep, dynamicGas: gasCopy, numPop: 3, memorySize: memorySizeFor(0, 2)}
	jt[CODESIZE] = &operation{execute: opCodeSize, constantGas: params.GasQuickStep, numPush: 1}
	jt[CODECOPY] = &operation{execute: opCodeCopy, constantGas: params.GasFastestStep, dynamicGas: gasCopy, numPop: 3, memorySize: memorySizeFor(0, 2)}
	jt[GASPRICE] = &operation{execute: opGasPrice, constantGas: params.GasQuickStep, numPush: 1}
	jt[EXTCODESIZE] = &operation{execute: opExtCodeSize, constantGas: params.WarmStorageReadCostEIP2929, dynamicGas: gasExtCodeSize(rules), numPop: 1, numPush: 1}
	jt[EXTCODECOPY] = &operation{execute: opExtCodeCopy, constantGas: params.WarmStorageReadCostEIP2929, dynamicGas: gasExtCodeCopy(rules), numPop: 4, memorySize: memorySizeFor(1, 3)}
	jt[RETURNDATASIZE] = &operation{execute: opReturnDataSize, constantGas: params.GasQuickStep, numPush: 1}
	jt[RETURNDATACOPY] = &operation{execute: opReturnDataCopy, constantGas: params.GasFastestStep, dynamicGas: gasReturnDataCopy, numPop: 3, memorySize: memorySizeFor(0, 2)}
	jt[EXTCODEHASH] = &operation{execute: opExtCodeHash, constantGas: params.WarmStorageReadCostEIP2929, dynamicGas: gasExtCodeSize(rules), numPop: 1, numPush: 1}

	jt[BLOCKHASH] = &operation{execute: opBlockhash, constantGas: params.GasExtStep, numPop: 1, numPush: 1}
	jt[COINBASE] = &operation{execute: opCoinbase, constantGas: params.GasQuickStep, numPush: 1}
	jt[TIMESTAMP] = &operation{execute: opTimestamp, constantGas: params.GasQuickStep, numPush: 1}
	jt[NUMBER] = &operation{execute: opNumber, constantGas: params.GasQuickStep, numPush: 1}
	jt[DIFFICULTY] = &operation{execute: opDifficulty, constantGas: params.GasQuickStep, numPush: 1}
	jt[GASLIMIT] = &operation{execute: opGasLimit, constantGas: params.GasQuickStep, numPush: 1}
	if rules.IsIstanbul {
		jt[CHAINID] = &operation{execute: opChainID, constantGas: params.GasQuickStep, numPush: 1}
		jt[SELFBALANCE] = &operation{execute: opSelfBalance, constantGas: params.GasFastStep, numPush: 1}
	}
	if rules.IsLondon {
		jt[BASEFEE] = &operation{execute: opBaseFee, constantGas: params.GasQuickStep, numPush: 1}
	}
	if rules.IsCancun {
		jt[BLOBHASH] = &operation{execute: opBlobHash, constantGas: params.GasFastestStep, numPop: 1, numPush: 1}
		jt[BLOBBASEFEE] = &operation{execute: opBlobBaseFee, constantGas: params.GasQuickStep, numPush: 1}
	}

	jt[POP] = &operation{execute: opPop, constantGas: params.GasQuickStep, numPop: 1}
	jt[MLOAD] = &operation{execute: opMload, constantGas: params.GasFastestStep, dynamicGas: gasMemoryExpansion, numPop: 1, numPush: 1, memorySize: memoryWord(0, 32)}
	jt[MSTORE] = &operation{execute: opMstore, constantGas: params.GasFastestStep, dynamicGas: gasMemoryExpansion, numPop: 2, memorySize: memoryWord(0, 32)}
	jt[MSTORE8] = &operation{execute: opMstore8, constantGas: params.GasFastestStep, dynamicGas: gasMemoryExpansion, numPop: 2, memorySize: memoryWord(0, 1)}
	jt[SLOAD] = &operation{execute: opSload, constantGas: params.WarmStorageReadCostEIP2929, dynamicGas: gasSload(rules), numPop: 1, numPush: 1}
	jt[SSTORE] = &operation{execute: opSstore, dynamicGas: gasSstoreDynamic(rules), numPop: 2}
	jt[JUMP] = &operation{execute: opJump, constantGas: params.GasMidStep, numPop: 1}
	jt[JUMPI] = &operation{execute: opJumpi, constantGas: params.GasSlowStep, numPop: 2}
	jt[PC] = &operation{execute: opPc, constantGas: params.GasQuickStep, numPush: 1}
	jt[MSIZE] = &operation{execute: opMsize, constantGas: params.GasQuickStep, numPush: 1}
	jt[GAS] = &operation{execute: opGas, constantGas: params.GasQuickStep, numPush: 1}
	jt[JUMPDEST] = &operation{execute: opJumpdest, constantGas: params.GasJumpdest}
	if rules.IsCancun {
		jt[TLOAD] = &operation{execute: opTload, constantGas: params.WarmStorageReadCostEIP2929, numPop: 1, numPush: 1}
		jt[TSTORE] = &operation{execute: opTstore, constantGas: params.WarmStorageReadCostEIP2929, numPop: 2}
		jt[MCOPY] = &operation{execute: opMcopy, constantGas: params.GasFastestStep, dynamicGas: gasMcopy, numPop: 3, memorySize: memorySizeMax(memorySizeFor(0, 2), memorySizeFor(1, 2))}
	}
	if rules.IsShanghai {
		jt[PUSH0] = &operation{execute: opPush0, constantGas: params.GasQuickStep, numPush: 1}
	}

	for i := 1; i <= 32; i++ {
		jt[byte(PUSH1)+byte(i-1)] = push(i)
	}
	for i := 1; i <= 16; i++ {
		jt[byte(DUP1)+byte(i-1)] = dup(i)
		jt[byte(SWAP1)+byte(i-1)] = swap(i)
	}

	for i := 0; i < 5; i++ {
		op := LOG0 + OpCode(i)
		n := i
		jt[op] = &operation{
			execute:     opLog(n),
			constantGas: params.LogGas + uint64(n)*params.LogTopicGas,
			dynamicGas:  gasLog,
			numPop:      2 + n,
			memorySize:  memorySizeFor(0, 1),
		}
	}

	jt[CREATE] = &operation{execute: opCreate, constantGas: params.CreateGas, dynamicGas: gasCreate, numPop: 3, numPush: 1, memorySize: memorySizeFor(1, 2)}
	jt[CALL] = &operation{execute: opCall, dynamicGas: gasCall(rules), numPop: 7, numPush: 1, memorySize: memorySizeMax(memorySizeFor(3, 4), memorySizeFor(5, 6))}
	jt[CALLCODE] = &operation{execute: opCallCode, dynamicGas: gasCallCode(rules), numPop: 7, numPush: 1, memorySize: memorySizeMax(memorySizeFor(3, 4), memorySizeFor(5, 6))}
	jt[RETURN] = &operation{execute: opReturn, dynamicGas: gasMemoryExpansionAtTop(0, 1), numPop: 2, memorySize: memorySizeFor(0, 1)}
	if rules.IsHomestead {
		jt[DELEGATECALL] = &operation{execute: opDelegateCall, dynamicGas: gasDelegateCall(rules), numPop: 6, numPush: 1, memorySize: memorySizeMax(memorySizeFor(2, 3), memorySizeFor(4, 5))}
	}
	if rules.IsConstantinople {
		jt[CREATE2] = &operation{execute: opCreate2, constantGas: params.Create2Gas, dynamicGas: gasCreate2, numPop: 4, numPush: 1, memorySize: memorySizeFor(1, 2)}
	}
	if rules.IsByzantium {
		jt[STATICCALL] = &operation{execute: opStaticCall, dynamicGas: gasStaticCall(rules), numPop: 6, numPush: 1, memorySize: memorySizeMax(memorySizeFor(2, 3), memorySizeFor(4, 5))}
		jt[REVERT] = &operation{execute: opRevert, dynamicGas: gasMemoryExpansionAtTop(0, 1), numPop: 2, memorySize: memorySizeFor(0, 1)}
	}
	jt[INVALID] = &operation{execute: opInvalid}
	jt[SELFDESTRUCT] = &operation{execute: opSelfdestruct, constantGas: params.GasQuickStep, dynamicGas: gasSelfdestruct(rules), numPop: 1}

	return jt
}
