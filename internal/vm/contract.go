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

import "github.com/holiman/uint256"

// ContractRef is anything that can stand in as a CALL participant: either a
// bare address (AccountRef) or a live *Contract, so a delegate call can
// chain caller identity back through its parent frame.
type ContractRef interface {
	Address() Address
}

// AccountRef wraps an Address as the minimal ContractRef, used for the
// outermost call where there is no parent Contract.
type AccountRef Address

func (ar AccountRef) Address() Address { return Address(ar) }

// Contract is the per-call immutable identity (caller, code address, value)
// plus the one piece of call state that isn't owned by Frame: the
// remaining gas counter, since CALL-family gas forwarding/refunding
// happens at the Contract boundary rather than inside the interpreter loop.
type Contract struct {
	CallerAddress Address
	caller        ContractRef
	self          ContractRef

	CodeAddr *Address
	Code     []byte
	CodeHash Hash

	Gas   uint64
	value *uint256.Int

	// Input is the calldata CALLDATALOAD/CALLDATASIZE/CALLDATACOPY read; set
	// by the interpreter on entry to Run, not at construction, since the
	// same Contract can in principle be reused across Run calls.
	Input []byte

	// jumpdests is a per-code-hash map of JUMPDEST offsets, handed on to any
	// child Contract whose caller is a Contract. Nothing in this package
	// fills or reads it; jump validation goes through the frame's Analysis.
	jumpdests map[Hash][]uint64

	skipAnalysis bool
	IsSystemCall bool
}

// NewContract builds a Contract for caller invoking object with the given
// value and gas stipend. skipAnalysis is recorded on the Contract; the
// interpreter does not consult it, and every run is analyzed and
// jump-validated.
func NewContract(caller, object ContractRef, value *uint256.Int, gas uint64, skipAnalysis bool) *Contract {
	c := &Contract{caller: caller, self: object}

	if parent, ok := caller.(*Contract); ok {
		c.jumpdests = parent.jumpdests
	} else {
		c.jumpdests = make(map[Hash][]uint64)
	}

	c.CallerAddress = caller.Address()
	c.Gas = gas
	if value == nil {
		value = new(uint256.Int)
	}
	c.value = value
	c.skipAnalysis = skipAnalysis
	return c
}

func (c *Contract) Address() Address { return c.self.Address() }

func (c *Contract) Caller() Address { return c.CallerAddress }

func (c *Contract) Value() *uint256.Int { return c.value }

// UseGas deducts gas from the contract's remaining allowance. It reports
// false (without deducting) if gas exceeds what remains, the caller's
// signal to halt with OutOfGas.
func (c *Contract) UseGas(gas uint64) bool {
	if c.Gas < gas {
		return false
	}
	c.Gas -= gas
	return true
}

// RefundGas adds gas back, used when a subcall returns unused gas to its
// caller.
func (c *Contract) RefundGas(gas uint64) { c.Gas += gas }

// GetOp returns the opcode at offset n, or STOP past the end of Code —
// code falling off the end of the array behaves as an implicit STOP.
func (c *Contract) GetOp(n uint64) OpCode {
	if n < uint64(len(c.Code)) {
		return OpCode(c.Code[n])
	}
	return STOP
}

// SetCallCode sets the code this contract executes when it differs from
// the contract's own storage address: CALLCODE and DELEGATECALL run code
// from codeAddr while charging/crediting storage at Address().
func (c *Contract) SetCallCode(codeAddr *Address, codeHash Hash, code []byte) {
	c.Code = code
	c.CodeHash = codeHash
	c.CodeAddr = codeAddr
}

// AsDelegate configures c to run as a DELEGATECALL: it inherits its
// caller's CallerAddress and Value rather than its own, since the callee's
// code executes with the parent frame's identity.
func (c *Contract) AsDelegate() *Contract {
	parent := c.caller.(*Contract)
	c.CallerAddress = parent.CallerAddress
	c.value = parent.value
	return c
}

func (c *Contract) validJumpdest(dest uint64, cb *codeBitmap) bool {
	if dest > uint64(len(c.Code)) {
		return false
	}
	return cb.isValidJumpdest(dest)
}
