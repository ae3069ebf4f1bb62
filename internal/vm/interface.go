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
	"github.com/evmcore/blockvm/params"
)

// VMCaller is the call/create surface a tracer or an alternative VM
// implementation needs to stand in for *EVM without depending on its
// concrete type.
type VMCaller interface {
	Call(caller ContractRef, addr Address, input []byte, gas uint64, value *uint256.Int, bailout bool) (ret []byte, leftOverGas uint64, err error)
	CallCode(caller ContractRef, addr Address, input []byte, gas uint64, value *uint256.Int) (ret []byte, leftOverGas uint64, err error)
	DelegateCall(caller ContractRef, addr Address, input []byte, gas uint64) (ret []byte, leftOverGas uint64, err error)
	StaticCall(caller ContractRef, addr Address, input []byte, gas uint64) (ret []byte, leftOverGas uint64, err error)
	Create(caller ContractRef, code []byte, gas uint64, endowment *uint256.Int) (ret []byte, contractAddr Address, leftOverGas uint64, err error)
	Create2(caller ContractRef, code []byte, gas uint64, endowment *uint256.Int, salt *uint256.Int) (ret []byte, contractAddr Address, leftOverGas uint64, err error)
}

// VMContext is the read-only query surface over a running EVM's block/tx
// context and ruleset.
type VMContext interface {
	Context() evmtypes.BlockContext
	TxContext() evmtypes.TxContext
	ChainConfig() *params.ChainConfig
	ChainRules() *params.Rules
	IntraBlockState() evmtypes.IntraBlockState
}

// VMExecutor is the full read/call surface.
type VMExecutor interface {
	VMCaller
	VMContext
}

// VMResetter lets a caller rebind an EVM to a new transaction, or a new
// block, without reallocating it.
type VMResetter interface {
	Reset(txCtx evmtypes.TxContext, ibs evmtypes.IntraBlockState)
	ResetBetweenBlocks(blockCtx evmtypes.BlockContext, txCtx evmtypes.TxContext, ibs evmtypes.IntraBlockState, cfg Config, rules *params.Rules)
}

// VMCanceller lets a caller abort a long-running call from another
// goroutine; Cancel itself does not stop execution, it only sets a flag a
// Host can consult between calls (e.g. before spawning a nested call).
type VMCanceller interface {
	Cancel()
	Cancelled() bool
}

// FullVM is the complete capability set *EVM exposes.
type FullVM interface {
	VMExecutor
	VMResetter
	VMCanceller
}

var (
	_ VMCaller    = (*EVM)(nil)
	_ VMContext   = (*EVM)(nil)
	_ VMExecutor  = (*EVM)(nil)
	_ VMResetter  = (*EVM)(nil)
	_ VMCanceller = (*EVM)(nil)
	_ FullVM      = (*EVM)(nil)
)
