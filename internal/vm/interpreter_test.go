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
	"math/big"
	"testing"

	"github.com/holiman/uint256"

	"github.com/evmcore/blockvm/common/transaction"
	"github.com/evmcore/blockvm/internal/vm/evmtypes"
	"github.com/evmcore/blockvm/params"
)

// stubStateDB is a minimal common.StateDB for interpreter-level tests:
// one address's code, nothing else. It mirrors the teacher's own
// balance-only mockStateDB (internal/evm_test.go in the retrieval pack),
// narrowed further since these scenarios never touch storage or value
// transfer.
type stubStateDB struct {
	code     map[Address][]byte
	codeHash map[Address]Hash
}

func newStubStateDB() *stubStateDB {
	return &stubStateDB{code: make(map[Address][]byte), codeHash: make(map[Address]Hash)}
}

func (s *stubStateDB) CreateAccount(Address, bool)        {}
func (s *stubStateDB) Exist(Address) bool                 { return true }
func (s *stubStateDB) Empty(Address) bool                 { return false }
func (s *stubStateDB) SubBalance(Address, *uint256.Int)   {}
func (s *stubStateDB) AddBalance(Address, *uint256.Int)   {}
func (s *stubStateDB) GetBalance(Address) *uint256.Int    { return new(uint256.Int) }
func (s *stubStateDB) GetNonce(Address) uint64             { return 0 }
func (s *stubStateDB) SetNonce(Address, uint64)            {}
func (s *stubStateDB) GetCodeHash(addr Address) Hash       { return s.codeHash[addr] }
func (s *stubStateDB) GetCode(addr Address) []byte         { return s.code[addr] }
func (s *stubStateDB) GetCodeSize(addr Address) int        { return len(s.code[addr]) }
func (s *stubStateDB) AddRefund(uint64)                    {}
func (s *stubStateDB) SubRefund(uint64)                    {}
func (s *stubStateDB) GetRefund() uint64                   { return 0 }
func (s *stubStateDB) GetCommittedState(Address, *Hash, *uint256.Int) {}
func (s *stubStateDB) GetState(Address, *Hash, *uint256.Int)          {}
func (s *stubStateDB) SetState(Address, *Hash, uint256.Int)           {}
func (s *stubStateDB) GetTransientState(Address, Hash) uint256.Int    { return uint256.Int{} }
func (s *stubStateDB) SetTransientState(Address, Hash, uint256.Int)   {}
func (s *stubStateDB) Selfdestruct(Address) bool                      { return false }
func (s *stubStateDB) HasSelfdestructed(Address) bool                 { return false }
func (s *stubStateDB) PrepareAccessList(Address, *Address, []Address, transaction.AccessList) {}
func (s *stubStateDB) AddressInAccessList(Address) bool                         { return false }
func (s *stubStateDB) SlotInAccessList(Address, Hash) (bool, bool)              { return false, false }
func (s *stubStateDB) AddAddressToAccessList(Address) bool                      { return false }
func (s *stubStateDB) AddSlotToAccessList(Address, Hash) (bool, bool)           { return false, false }
func (s *stubStateDB) Snapshot() int                                            { return 0 }
func (s *stubStateDB) RevertToSnapshot(int)                                     {}
func (s *stubStateDB) AddLog(*evmtypes.Log)                                     {}

func (s *stubStateDB) SetCode(addr Address, code []byte) {
	s.code[addr] = code
	s.codeHash[addr] = keccak256(code)
}

var _ evmtypes.IntraBlockState = (*stubStateDB)(nil)

// runScenario builds a fresh EVM with every hardfork flag enabled, deploys
// code at a fixed address, and runs it with zero value and zero calldata —
// the shape every S1-S6 scenario in this file shares.
func runScenario(t *testing.T, code []byte, gas uint64) (ret []byte, leftOverGas uint64, err error) {
	t.Helper()

	host := newStubStateDB()
	contractAddr := Address{0xc0}
	host.SetCode(contractAddr, code)

	blockCtx := evmtypes.BlockContext{
		CanTransfer: DefaultCanTransfer,
		Transfer:    DefaultTransfer,
		GetHash:     func(uint64) Hash { return Hash{} },
		Difficulty:  new(big.Int),
		BaseFee:     new(uint256.Int),
	}
	txCtx := evmtypes.TxContext{GasPrice: new(uint256.Int)}

	evm := NewEVM(blockCtx, txCtx, host, nil, *params.AllRulesEnabled(), Config{})
	caller := AccountRef(Address{0xca})
	return evm.Call(caller, contractAddr, nil, gas, new(uint256.Int), false)
}

// S1 - PUSH1 5, PUSH1 3, ADD, PUSH1 2, MUL, PUSH1 0, MSTORE, PUSH1 32,
// PUSH1 0, RETURN. gas=10000 -> success, output 32-byte big-endian 16.
func TestScenarioS1Arithmetic(t *testing.T) {
	code := []byte{0x60, 0x05, 0x60, 0x03, 0x01, 0x60, 0x02, 0x02, 0x60, 0x00, 0x52, 0x60, 0x20, 0x60, 0x00, 0xf3}
	ret, leftOverGas, err := runScenario(t, code, 10000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ret) != 32 || ret[31] != 16 {
		t.Fatalf("unexpected output: %x", ret)
	}
	if leftOverGas != 9968 {
		t.Fatalf("gas_left = %d, want 9968", leftOverGas)
	}
}

// S2 - conditional jump taken lands on JUMPDEST, skipping the INVALID the
// analyzer places in dead code after the JUMPI-terminated block.
func TestScenarioS2ConditionalJumpTaken(t *testing.T) {
	code := []byte{0x60, 0x01, 0x60, 0x07, 0x57, 0xfe, 0x00, 0x5b, 0x60, 0x42, 0x60, 0x00, 0x52, 0x60, 0x20, 0x60, 0x00, 0xf3}
	ret, _, err := runScenario(t, code, 10000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ret) != 32 || ret[31] != 0x42 {
		t.Fatalf("unexpected output: %x", ret)
	}
}

// S3 - JUMP to a non-JUMPDEST offset is rejected before any of the
// destination bytes execute.
func TestScenarioS3InvalidJump(t *testing.T) {
	code := []byte{0x60, 0x05, 0x56, 0x00, 0x60, 0x42}
	_, leftOverGas, err := runScenario(t, code, 10000)
	if err == nil {
		t.Fatal("expected an invalid-jump error")
	}
	if leftOverGas != 0 {
		t.Fatalf("gas_left = %d, want 0", leftOverGas)
	}
}

// S4 - the block's precharged gas (17) exceeds the gas supplied (5), so
// the block-head check fails before the first instruction in it runs.
func TestScenarioS4OutOfGasAtBlockEntry(t *testing.T) {
	code := []byte{0x60, 0x01, 0x60, 0x02, 0x01, 0x60, 0x03, 0x02, 0x00}
	_, leftOverGas, err := runScenario(t, code, 5)
	if err == nil {
		t.Fatal("expected an out-of-gas error")
	}
	if leftOverGas != 0 {
		t.Fatalf("gas_left = %d, want 0", leftOverGas)
	}
}

// S5 - REVERT still returns its output and the gas the callee had left,
// unlike every other halting error.
func TestScenarioS5RevertPreservesGas(t *testing.T) {
	code := []byte{0x60, 0x04, 0x60, 0x00, 0x52, 0x60, 0x20, 0x60, 0x00, 0xfd}
	ret, leftOverGas, err := runScenario(t, code, 10000)
	if !IsRevert(err) {
		t.Fatalf("expected a revert error, got %v", err)
	}
	if len(ret) != 32 || ret[31] != 4 {
		t.Fatalf("unexpected output: %x", ret)
	}
	if leftOverGas != 9982 {
		t.Fatalf("gas_left = %d, want 9982", leftOverGas)
	}
}

// S6 - the analyzer resolves JUMP's target statically to the JUMPDEST at
// PC 4, so the INVALID at PC 3 is dead code the interpreter never reaches.
func TestScenarioS6StaticJumpResolution(t *testing.T) {
	code := []byte{0x60, 0x04, 0x56, 0xfe, 0x5b, 0x00}
	ret, leftOverGas, err := runScenario(t, code, 10000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ret) != 0 {
		t.Fatalf("unexpected output: %x", ret)
	}
	if leftOverGas != 9988 {
		t.Fatalf("gas_left = %d, want 9988", leftOverGas)
	}
}
