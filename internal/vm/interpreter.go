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

	"github.com/evmcore/blockvm/internal/vm/evmtypes"
	"github.com/evmcore/blockvm/params"
)

// errStopToken is how STOP/RETURN/SELFDESTRUCT signal "halt, no error" to
// Run without overloading nil: an execute function's nil error means
// "keep going", so a halt needs its own sentinel.
var errStopToken = errors.New("vm: execution halted")

// Interpreter is the C4 block-validated dispatch loop: one gas and stack
// check per basic block (the analyzer's IsBlockHead instructions), then
// unchecked handler dispatch for the rest of the block.
type Interpreter struct {
	evm   *EVM
	host  evmtypes.IntraBlockState
	rules *params.Rules
	jt    *JumpTable
	cfg   Config
}

// NewInterpreter builds an Interpreter bound to evm's rules and jump table.
func NewInterpreter(evm *EVM) *Interpreter {
	return &Interpreter{
		evm:   evm,
		host:  evm.host,
		rules: &evm.rules,
		jt:    evm.jumpTable(),
		cfg:   evm.cfg,
	}
}

// Run executes contract's code against a fresh Frame and returns whatever
// the final RETURN/REVERT produced. Depth accounting and the read-only
// (STATICCALL) flag are the caller's (EVM's) responsibility, not the
// interpreter's — Run only needs to know this one frame's readOnly bit.
func (in *Interpreter) Run(contract *Contract, input []byte, readOnly bool) ([]byte, error) {
	if len(contract.Code) == 0 {
		return nil, nil
	}

	contract.Input = input
	analysis := in.evm.analysisFor(contract.CodeHash, contract.Code, in.jt)

	frame := NewFrame(contract, in.evm.depth, readOnly)
	frame.analysis = analysis
	defer frame.Release()

	pc := uint64(0)
	var (
		op  OpCode
		res []byte
		err error
	)

	for {
		inst := &analysis.Instructions[pc]
		op = inst.Op
		opr := inst.Opr
		if opr == nil {
			err = ErrInvalidOpcodeAt(byte(op))
			break
		}

		if inst.IsBlockHead {
			if !contract.UseGas(inst.BlockGas) {
				err = ErrOutOfGasVal
				break
			}
			if have := frame.Stack.Len(); have < inst.BlockStackReq {
				err = ErrStackUnderflowAt(op, have, inst.BlockStackReq)
				break
			}
			if have := frame.Stack.Len(); have+inst.BlockMaxGrow > params.MaxStack {
				err = ErrStackOverflowAt(have+inst.BlockMaxGrow, params.MaxStack)
				break
			}
			frame.BlockPrecharge = inst.BlockGas
			frame.BlockSpent = 0
		}
		// This instruction's own share of the block's precharge is now
		// logically spent; GAS and any dynamic-gas handler below correct
		// for what's left unspent on their behalf via frame.GasCorrection.
		frame.BlockSpent += opr.constantGas

		if opr.dynamicGas != nil || opr.memorySize != nil {
			var memSize uint64
			if opr.memorySize != nil {
				size, overflow := opr.memorySize(frame.Stack)
				if overflow {
					err = ErrGasUintOverflowVal
					break
				}
				memSize = size
			}
			if opr.dynamicGas != nil {
				cost, gerr := opr.dynamicGas(in, frame, frame.Stack, frame.Memory, memSize)
				if gerr != nil {
					err = gerr
					break
				}
				if !frame.ChargeDynamicGas(cost) {
					err = ErrOutOfGasVal
					break
				}
			}
			if memSize > 0 {
				frame.Memory.Resize(toWordSize(memSize) * 32)
			}
		}

		res, err = opr.execute(&pc, in, frame)
		if err != nil {
			if err == errStopToken {
				err = nil
			}
			break
		}
		pc++
	}

	return res, err
}
