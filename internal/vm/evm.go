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
	"errors"

	"github.com/holiman/uint256"
	pkgerrors "github.com/pkg/errors"

	"github.com/evmcore/blockvm/internal/vm/analysiscache"
	"github.com/evmcore/blockvm/internal/vm/evmtypes"
	"github.com/evmcore/blockvm/params"
)

// errInsufficientBalance is the EVM.Call-layer failure for a value transfer
// the sender can't cover. It never reaches the interpreter's error
// taxonomy — the CALL family just treats it like any other failed subcall
// and pushes a zero success flag.
var errInsufficientBalance = errors.New("vm: insufficient balance for transfer")

// EVM ties together the Host, the block/tx context, and the active ruleset,
// and is the only thing in this engine that knows how to turn a CALL or
// CREATE opcode into an actual nested Interpreter.Run. It is built fresh per
// block (BlockContext/Rules) and reused across that block's transactions via
// Reset.
type EVM struct {
	host     evmtypes.IntraBlockState
	blockCtx evmtypes.BlockContext
	txCtx    evmtypes.TxContext
	chainCfg *params.ChainConfig
	rules    params.Rules
	cfg      Config

	depth int

	analysisCache *analysiscache.Cache[*Analysis]

	cancelled bool
}

// NewEVM builds an EVM for one block. chainCfg may be nil for callers that
// only ever construct EVMs from a precomputed Rules value (e.g. test
// harnesses); ChainConfig() then returns nil.
func NewEVM(blockCtx evmtypes.BlockContext, txCtx evmtypes.TxContext, host evmtypes.IntraBlockState, chainCfg *params.ChainConfig, rules params.Rules, cfg Config) *EVM {
	return &EVM{
		host:          host,
		blockCtx:      blockCtx,
		txCtx:         txCtx,
		chainCfg:      chainCfg,
		rules:         rules,
		cfg:           cfg,
		analysisCache: analysiscache.New[*Analysis](cfg.AnalysisCacheSize),
	}
}

func (evm *EVM) Context() evmtypes.BlockContext        { return evm.blockCtx }
func (evm *EVM) TxContext() evmtypes.TxContext         { return evm.txCtx }
func (evm *EVM) ChainConfig() *params.ChainConfig      { return evm.chainCfg }
func (evm *EVM) ChainRules() *params.Rules             { return &evm.rules }
func (evm *EVM) IntraBlockState() evmtypes.IntraBlockState { return evm.host }
func (evm *EVM) Config() Config                        { return evm.cfg }

func (evm *EVM) Cancel()          { evm.cancelled = true }
func (evm *EVM) Cancelled() bool  { return evm.cancelled }

// Reset rebinds the EVM to a new transaction within the same block: the
// Rules and BlockContext carry over, only the tx-scoped fields and the Host
// handle (a fresh IntraBlockState per transaction, in the usual block
// processing loop) change.
func (evm *EVM) Reset(txCtx evmtypes.TxContext, ibs evmtypes.IntraBlockState) {
	evm.txCtx = txCtx
	evm.host = ibs
	evm.depth = 0
	evm.cancelled = false
}

// ResetBetweenBlocks additionally rebinds the block context and ruleset, for
// callers that keep one EVM alive across a whole chain replay instead of
// building a new one per block.
func (evm *EVM) ResetBetweenBlocks(blockCtx evmtypes.BlockContext, txCtx evmtypes.TxContext, ibs evmtypes.IntraBlockState, cfg Config, rules *params.Rules) {
	evm.blockCtx = blockCtx
	evm.txCtx = txCtx
	evm.host = ibs
	evm.cfg = cfg
	evm.rules = *rules
	evm.depth = 0
	evm.cancelled = false
}

func (evm *EVM) jumpTable() *JumpTable {
	return getCachedJumpTable(evm.rules)
}

// analysisFor returns the cached Analysis for codeHash, building (and
// caching, unless codeHash is the empty-code hash a bare AccountRef carries)
// one otherwise.
func (evm *EVM) analysisFor(codeHash Hash, code []byte, jt *JumpTable) *Analysis {
	if codeHash != (Hash{}) {
		if a, ok := evm.analysisCache.Get(codeHash); ok {
			return a
		}
	}
	a := Analyze(code, jt)
	if codeHash != (Hash{}) {
		evm.analysisCache.Add(codeHash, a)
	}
	return a
}

func (evm *EVM) run(contract *Contract, input []byte, readOnly bool) ([]byte, error) {
	in := NewInterpreter(evm)
	return in.Run(contract, input, readOnly)
}

// DefaultCanTransfer reports whether addr's balance covers amount; the
// baseline BlockContext.CanTransfer a Host with ordinary account balances
// can hand to NewEVM unmodified.
func DefaultCanTransfer(host evmtypes.IntraBlockState, addr Address, amount *uint256.Int) bool {
	return host.GetBalance(addr).Cmp(amount) >= 0
}

// DefaultTransfer moves amount from sender to recipient. bailout callers
// (gas estimation) should use a no-op Transfer instead.
func DefaultTransfer(host evmtypes.IntraBlockState, sender, recipient Address, amount *uint256.Int, bailout bool) {
	if bailout {
		return
	}
	host.SubBalance(sender, amount)
	host.AddBalance(recipient, amount)
}

// Call runs addr's code with caller as msg.sender. bailout skips the
// balance check and the transfer itself (used by gas-estimation callers
// that want to measure a call's cost without a funded sender).
func (evm *EVM) Call(caller ContractRef, addr Address, input []byte, gas uint64, value *uint256.Int, bailout bool) (ret []byte, leftOverGas uint64, err error) {
	leftOverGas = gas

	if value == nil {
		value = new(uint256.Int)
	}

	if evm.depth > params.MaxCallDepth {
		return nil, gas, ErrDepthLimitVal
	}

	if !bailout && !value.IsZero() && !evm.blockCtx.CanTransfer(evm.host, caller.Address(), value) {
		return nil, gas, errInsufficientBalance
	}

	snapshot := evm.host.Snapshot()

	if !evm.host.Exist(addr) {
		if !value.IsZero() {
			evm.host.CreateAccount(addr, false)
		} else if evm.isPrecompileLike(addr) {
			// nothing to create; precompile-style code resolves via GetCode
			// below regardless of account existence.
		} else {
			return nil, gas, nil
		}
	}
	evm.blockCtx.Transfer(evm.host, caller.Address(), addr, value, bailout)

	code := evm.host.GetCode(addr)
	if len(code) == 0 {
		return nil, gas, nil
	}

	if !value.IsZero() {
		gas, _ = safeAdd(gas, params.CallStipend)
	}

	contract := NewContract(caller, AccountRef(addr), value, gas, false)
	contract.SetCallCode(&addr, evm.host.GetCodeHash(addr), code)

	evm.depth++
	ret, err = evm.run(contract, input, false)
	evm.depth--

	return evm.settleCall(snapshot, contract, ret, err)
}

// CallCode runs addr's code but keeps caller's storage context — the
// callee's code executes against caller's own account, only the code comes
// from addr.
func (evm *EVM) CallCode(caller ContractRef, addr Address, input []byte, gas uint64, value *uint256.Int) (ret []byte, leftOverGas uint64, err error) {
	if value == nil {
		value = new(uint256.Int)
	}
	if evm.depth > params.MaxCallDepth {
		return nil, gas, ErrDepthLimitVal
	}
	if !value.IsZero() && !evm.blockCtx.CanTransfer(evm.host, caller.Address(), value) {
		return nil, gas, errInsufficientBalance
	}

	snapshot := evm.host.Snapshot()

	code := evm.host.GetCode(addr)
	if len(code) == 0 {
		return nil, gas, nil
	}
	if !value.IsZero() {
		gas, _ = safeAdd(gas, params.CallStipend)
	}

	contract := NewContract(caller, AccountRef(caller.Address()), value, gas, false)
	contract.SetCallCode(&addr, evm.host.GetCodeHash(addr), code)

	evm.depth++
	ret, err = evm.run(contract, input, false)
	evm.depth--

	return evm.settleCall(snapshot, contract, ret, err)
}

// DelegateCall runs addr's code with caller's full identity: msg.sender,
// msg.value and storage context are all inherited unchanged.
func (evm *EVM) DelegateCall(caller ContractRef, addr Address, input []byte, gas uint64) (ret []byte, leftOverGas uint64, err error) {
	if evm.depth > params.MaxCallDepth {
		return nil, gas, ErrDepthLimitVal
	}

	snapshot := evm.host.Snapshot()

	code := evm.host.GetCode(addr)
	if len(code) == 0 {
		return nil, gas, nil
	}

	contract := NewContract(caller, AccountRef(caller.Address()), nil, gas, false).AsDelegate()
	contract.SetCallCode(&addr, evm.host.GetCodeHash(addr), code)

	evm.depth++
	ret, err = evm.run(contract, input, false)
	evm.depth--

	return evm.settleCall(snapshot, contract, ret, err)
}

// StaticCall runs addr's code read-only: any attempted state mutation
// inside it fails with ErrWriteProtection.
func (evm *EVM) StaticCall(caller ContractRef, addr Address, input []byte, gas uint64) (ret []byte, leftOverGas uint64, err error) {
	if evm.depth > params.MaxCallDepth {
		return nil, gas, ErrDepthLimitVal
	}

	snapshot := evm.host.Snapshot()

	code := evm.host.GetCode(addr)
	if len(code) == 0 {
		return nil, gas, nil
	}

	contract := NewContract(caller, AccountRef(addr), new(uint256.Int), gas, false)
	contract.SetCallCode(&addr, evm.host.GetCodeHash(addr), code)

	evm.depth++
	ret, err = evm.run(contract, input, true)
	evm.depth--

	return evm.settleCall(snapshot, contract, ret, err)
}

// settleCall applies the common post-execution bookkeeping every CALL
// variant shares: revert the Host to snapshot on failure, and report
// leftover gas as zero for any halt other than a REVERT (which keeps
// whatever the callee didn't spend).
func (evm *EVM) settleCall(snapshot int, contract *Contract, ret []byte, err error) ([]byte, uint64, error) {
	if err != nil {
		evm.host.RevertToSnapshot(snapshot)
		if !IsRevert(err) {
			return ret, 0, err
		}
	}
	return ret, contract.Gas, err
}

// Create deploys code as a new contract's init code at the CREATE address
// derived from caller's address and current nonce.
func (evm *EVM) Create(caller ContractRef, code []byte, gas uint64, endowment *uint256.Int) ([]byte, Address, uint64, error) {
	nonce := evm.host.GetNonce(caller.Address())
	addr := createAddress(caller.Address(), nonce)
	return evm.create(caller, code, gas, endowment, addr, nonce)
}

// Create2 deploys code at a deterministic address derived from caller,
// salt, and the init code's hash, independent of caller's nonce.
func (evm *EVM) Create2(caller ContractRef, code []byte, gas uint64, endowment *uint256.Int, salt *uint256.Int) ([]byte, Address, uint64, error) {
	nonce := evm.host.GetNonce(caller.Address())
	codeHash := keccak256(code)
	addr := createAddress2(caller.Address(), Hash(salt.Bytes32()), codeHash)
	return evm.create(caller, code, gas, endowment, addr, nonce)
}

func (evm *EVM) create(caller ContractRef, initCode []byte, gas uint64, endowment *uint256.Int, addr Address, callerNonce uint64) (ret []byte, contractAddr Address, leftOverGas uint64, err error) {
	contractAddr = addr
	if endowment == nil {
		endowment = new(uint256.Int)
	}

	if evm.depth > params.MaxCallDepth {
		return nil, contractAddr, gas, ErrDepthLimitVal
	}
	if !evm.blockCtx.CanTransfer(evm.host, caller.Address(), endowment) {
		return nil, contractAddr, gas, errInsufficientBalance
	}
	if evm.rules.IsShanghai && len(initCode) > params.MaxInitCodeSize {
		return nil, contractAddr, 0, ErrMaxCodeSizeExceededVal
	}

	if callerNonce+1 < callerNonce {
		return nil, contractAddr, gas, ErrNonceUintOverflowVal
	}
	evm.host.SetNonce(caller.Address(), callerNonce+1)

	if evm.host.GetNonce(addr) != 0 || len(evm.host.GetCode(addr)) != 0 {
		return nil, contractAddr, 0, pkgerrors.Wrapf(ErrContractAddressCollisionVal, "address %s", contractAddr.String())
	}

	snapshot := evm.host.Snapshot()
	evm.host.CreateAccount(addr, true)
	evm.host.SetNonce(addr, 1)
	evm.blockCtx.Transfer(evm.host, caller.Address(), addr, endowment, false)

	contract := NewContract(caller, AccountRef(addr), endowment, gas, false)
	contract.Code = initCode

	evm.depth++
	ret, err = evm.run(contract, nil, false)
	evm.depth--

	if err == nil && evm.rules.IsSpuriousDragon && len(ret) > params.MaxCodeSize {
		err = ErrMaxCodeSizeExceededVal
	}
	if err == nil {
		createDataGas := uint64(len(ret)) * params.CreateDataGas
		if !contract.UseGas(createDataGas) {
			err = ErrOutOfGasVal
		} else {
			evm.host.SetCode(addr, ret)
		}
	}

	if err != nil {
		evm.host.RevertToSnapshot(snapshot)
		if !IsRevert(err) {
			contract.Gas = 0
		}
	}

	return ret, contractAddr, contract.Gas, err
}

// isPrecompileLike lets Call fall through to GetCode for an address a Host
// resolves to precompile "code" without requiring CreateAccount first —
// precompile dispatch itself is entirely the Host's concern, per the
// engine's narrow Host boundary.
func (evm *EVM) isPrecompileLike(addr Address) bool {
	return len(evm.host.GetCode(addr)) > 0
}
