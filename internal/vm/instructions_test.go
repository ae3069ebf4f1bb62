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

	"github.com/evmcore/blockvm/internal/vm/evmtypes"
	"github.com/evmcore/blockvm/params"
)

// storageStubStateDB extends the stubStateDB shape with per-address storage
// and a log sink, for the opcodes runScenario's bare stub can't exercise:
// SLOAD/SSTORE, TLOAD/TSTORE, LOGn and SELFDESTRUCT.
type storageStubStateDB struct {
	*stubStateDB
	storage    map[Address]map[Hash]uint256.Int
	transient  map[Address]map[Hash]uint256.Int
	logs       []*evmtypes.Log
	destructed map[Address]bool
}

func newStorageStubStateDB() *storageStubStateDB {
	return &storageStubStateDB{
		stubStateDB: newStubStateDB(),
		storage:     make(map[Address]map[Hash]uint256.Int),
		transient:   make(map[Address]map[Hash]uint256.Int),
		destructed:  make(map[Address]bool),
	}
}

func (s *storageStubStateDB) GetState(addr Address, key *Hash, out *uint256.Int) {
	*out = s.storage[addr][*key]
}

func (s *storageStubStateDB) SetState(addr Address, key *Hash, val uint256.Int) {
	m := s.storage[addr]
	if m == nil {
		m = make(map[Hash]uint256.Int)
		s.storage[addr] = m
	}
	m[*key] = val
}

func (s *storageStubStateDB) GetTransientState(addr Address, key Hash) uint256.Int {
	return s.transient[addr][key]
}

func (s *storageStubStateDB) SetTransientState(addr Address, key Hash, val uint256.Int) {
	m := s.transient[addr]
	if m == nil {
		m = make(map[Hash]uint256.Int)
		s.transient[addr] = m
	}
	m[key] = val
}

func (s *storageStubStateDB) AddLog(l *evmtypes.Log) {
	s.logs = append(s.logs, l)
}

func (s *storageStubStateDB) Selfdestruct(addr Address) bool {
	s.destructed[addr] = true
	return true
}

func (s *storageStubStateDB) HasSelfdestructed(addr Address) bool {
	return s.destructed[addr]
}

var _ evmtypes.IntraBlockState = (*storageStubStateDB)(nil)

// runScenarioWithHost is runScenario generalized to a caller-supplied host,
// for scenarios that need storage or log observation after the call.
func runScenarioWithHost(host evmtypes.IntraBlockState, code []byte, gas uint64, contractAddr Address) (ret []byte, leftOverGas uint64, err error) {
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

func mustReturn32(t *testing.T, ret []byte, want byte) {
	t.Helper()
	if len(ret) != 32 {
		t.Fatalf("unexpected output length: %d", len(ret))
	}
	if ret[31] != want {
		t.Fatalf("unexpected output: %x", ret)
	}
}

// PUSH1 0, MLOAD, PUSH1 0, MSTORE, PUSH1 32, PUSH1 0, RETURN -> reading
// never-written memory returns all zero.
func TestMLOADUninitializedIsZero(t *testing.T) {
	code := []byte{0x60, 0x00, 0x51, 0x60, 0x00, 0x52, 0x60, 0x20, 0x60, 0x00, 0xf3}
	ret, _, err := runScenario(t, code, 10000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, b := range ret {
		if b != 0 {
			t.Fatalf("expected all-zero memory, got %x", ret)
		}
	}
}

// PUSH1 0, PUSH1 1, DIV -> 1 / 0: division by zero yields 0, not a trap.
func TestDIVByZeroYieldsZero(t *testing.T) {
	code := []byte{0x60, 0x00, 0x60, 0x01, 0x04, 0x60, 0x00, 0x52, 0x60, 0x20, 0x60, 0x00, 0xf3}
	ret, _, err := runScenario(t, code, 10000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mustReturn32(t, ret, 0)
}

// PUSH1 0, PUSH1 1, MOD -> 1 % 0: modulo by zero yields 0.
func TestMODByZeroYieldsZero(t *testing.T) {
	code := []byte{0x60, 0x00, 0x60, 0x01, 0x06, 0x60, 0x00, 0x52, 0x60, 0x20, 0x60, 0x00, 0xf3}
	ret, _, err := runScenario(t, code, 10000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mustReturn32(t, ret, 0)
}

// PUSH1 3, PUSH1 10, ADDMOD wraps mod-zero to zero too.
func TestADDMODByZeroYieldsZero(t *testing.T) {
	code := []byte{0x60, 0x00, 0x60, 0x03, 0x60, 0x0a, 0x08, 0x60, 0x00, 0x52, 0x60, 0x20, 0x60, 0x00, 0xf3}
	ret, _, err := runScenario(t, code, 10000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mustReturn32(t, ret, 0)
}

// (2**256 - 1) + 1 wraps to 0 under modular arithmetic.
func TestADDOverflowWraps(t *testing.T) {
	code := []byte{}
	// PUSH32 0xff...ff, PUSH1 1, ADD, PUSH1 0, MSTORE, PUSH1 32, PUSH1 0, RETURN
	code = append(code, 0x7f)
	for i := 0; i < 32; i++ {
		code = append(code, 0xff)
	}
	code = append(code, 0x60, 0x01, 0x01, 0x60, 0x00, 0x52, 0x60, 0x20, 0x60, 0x00, 0xf3)

	ret, _, err := runScenario(t, code, 10000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mustReturn32(t, ret, 0)
}

// PUSH1 1, PUSH1 2, LT -> 2 < 1 is false -> 0.
func TestLTFalse(t *testing.T) {
	code := []byte{0x60, 0x01, 0x60, 0x02, 0x10, 0x60, 0x00, 0x52, 0x60, 0x20, 0x60, 0x00, 0xf3}
	ret, _, err := runScenario(t, code, 10000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mustReturn32(t, ret, 0)
}

// PUSH1 0, ISZERO -> 1.
func TestISZERO(t *testing.T) {
	code := []byte{0x60, 0x00, 0x15, 0x60, 0x00, 0x52, 0x60, 0x20, 0x60, 0x00, 0xf3}
	ret, _, err := runScenario(t, code, 10000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mustReturn32(t, ret, 1)
}

// A bare POP on an empty stack underflows: the block-head check must catch
// this before the opcode itself ever runs.
func TestStackUnderflowAtBlockEntry(t *testing.T) {
	code := []byte{0x50} // POP
	_, leftOverGas, err := runScenario(t, code, 10000)
	if err == nil {
		t.Fatal("expected a stack underflow error")
	}
	if leftOverGas != 0 {
		t.Fatalf("gas_left = %d, want 0 (a halting error consumes all gas)", leftOverGas)
	}
}

// SSTORE then SLOAD the same key within one call round-trips through a
// host that actually implements storage.
func TestSSTORESLOADRoundTrip(t *testing.T) {
	host := newStorageStubStateDB()
	contractAddr := Address{0xc1}
	// PUSH1 7, PUSH1 0, SSTORE, PUSH1 0, SLOAD, PUSH1 0, MSTORE, PUSH1 32, PUSH1 0, RETURN
	code := []byte{
		0x60, 0x07, 0x60, 0x00, 0x55,
		0x60, 0x00, 0x54,
		0x60, 0x00, 0x52,
		0x60, 0x20, 0x60, 0x00, 0xf3,
	}
	host.SetCode(contractAddr, code)

	// A fresh cold slot costs 20000 + 2100 for the SSTORE alone.
	ret, _, err := runScenarioWithHost(host, code, 100000, contractAddr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mustReturn32(t, ret, 7)

	var key Hash
	var got uint256.Int
	host.GetState(contractAddr, &key, &got)
	if got.Uint64() != 7 {
		t.Fatalf("storage not persisted: got %v", got)
	}
}

// TSTORE then TLOAD within the same call round-trips transient storage the
// same way SSTORE/SLOAD does.
func TestTSTORETLOADRoundTrip(t *testing.T) {
	host := newStorageStubStateDB()
	contractAddr := Address{0xc2}
	// PUSH1 9, PUSH1 0, TSTORE, PUSH1 0, TLOAD, PUSH1 0, MSTORE, PUSH1 32, PUSH1 0, RETURN
	code := []byte{
		0x60, 0x09, 0x60, 0x00, 0x5d,
		0x60, 0x00, 0x5c,
		0x60, 0x00, 0x52,
		0x60, 0x20, 0x60, 0x00, 0xf3,
	}
	host.SetCode(contractAddr, code)

	ret, _, err := runScenarioWithHost(host, code, 10000, contractAddr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mustReturn32(t, ret, 9)
}

// LOG0 with a 1-byte memory range emits exactly one log with no topics and
// the right data.
func TestLOG0EmitsLogWithData(t *testing.T) {
	host := newStorageStubStateDB()
	contractAddr := Address{0xc3}
	// PUSH1 0x99, PUSH1 0, MSTORE8, PUSH1 1, PUSH1 0, LOG0, STOP
	code := []byte{
		0x60, 0x99, 0x60, 0x00, 0x53,
		0x60, 0x01, 0x60, 0x00, 0xa0,
		0x00,
	}
	host.SetCode(contractAddr, code)

	_, _, err := runScenarioWithHost(host, code, 10000, contractAddr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(host.logs) != 1 {
		t.Fatalf("expected exactly one log, got %d", len(host.logs))
	}
	if len(host.logs[0].Topics) != 0 {
		t.Fatalf("LOG0 should have no topics, got %d", len(host.logs[0].Topics))
	}
	if len(host.logs[0].Data) != 1 || host.logs[0].Data[0] != 0x99 {
		t.Fatalf("unexpected log data: %x", host.logs[0].Data)
	}
}

// LOG1 carries exactly one topic, taken from the stack below the
// offset/size pair.
func TestLOG1CarriesTopic(t *testing.T) {
	host := newStorageStubStateDB()
	contractAddr := Address{0xc4}
	// PUSH1 0xab (topic), PUSH1 0, PUSH1 0, LOG1, STOP
	code := []byte{
		0x60, 0xab,
		0x60, 0x00, 0x60, 0x00, 0xa1,
		0x00,
	}
	host.SetCode(contractAddr, code)

	_, _, err := runScenarioWithHost(host, code, 10000, contractAddr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(host.logs) != 1 || len(host.logs[0].Topics) != 1 {
		t.Fatalf("expected one log with one topic, got %+v", host.logs)
	}
	if host.logs[0].Topics[0][31] != 0xab {
		t.Fatalf("unexpected topic: %x", host.logs[0].Topics[0])
	}
}

// LOGn inside a STATICCALL-equivalent read-only frame is rejected; this
// engine enforces that at the interpreter, not the host, so a ReadOnly
// Frame must never even reach AddLog.
func TestStaticCallRejectsLog(t *testing.T) {
	host := newStorageStubStateDB()
	contractAddr := Address{0xc5}
	code := []byte{0x60, 0x00, 0x60, 0x00, 0xa0, 0x00} // PUSH1 0, PUSH1 0, LOG0, STOP
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

	_, _, err := evm.StaticCall(caller, contractAddr, nil, 10000)
	if err == nil {
		t.Fatal("expected a write-protection error under StaticCall")
	}
	if len(host.logs) != 0 {
		t.Fatal("LOG0 must not reach the host under a static call")
	}
}

// SELFDESTRUCT marks the contract destructed on the host even though the
// call itself halts with no error.
func TestSELFDESTRUCTMarksHost(t *testing.T) {
	host := newStorageStubStateDB()
	contractAddr := Address{0xc6}
	beneficiary := Address{0xbe}
	// PUSH20 <beneficiary>, SELFDESTRUCT
	code := append([]byte{0x73}, beneficiary[:]...)
	code = append(code, 0xff)
	host.SetCode(contractAddr, code)

	_, _, err := runScenarioWithHost(host, code, 10000, contractAddr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !host.HasSelfdestructed(contractAddr) {
		t.Fatal("expected contract to be marked selfdestructed")
	}
}

// CREATE deploys init code's return value as runtime code at a
// deterministically derived address, reachable from inside running code
// rather than through the runtime harness's top-level Create.
func TestCREATEFromRunningCode(t *testing.T) {
	host := newStorageStubStateDB()
	contractAddr := Address{0xc7}

	// init code: PUSH1 0x00 (STOP byte), PUSH1 0, MSTORE8, PUSH1 1, PUSH1 0, RETURN
	initCode := []byte{0x60, 0x00, 0x60, 0x00, 0x53, 0x60, 0x01, 0x60, 0x00, 0xf3}

	code := []byte{}
	code = append(code, 0x7f) // PUSH32 initCode right-aligned in a 32-byte word at memory 0
	var word [32]byte
	copy(word[32-len(initCode):], initCode)
	code = append(code, word[:]...)
	code = append(code, 0x60, 0x00, 0x52) // PUSH1 0, MSTORE
	// CREATE(value=0, offset=32-len(initCode), size=len(initCode))
	offset := 32 - len(initCode)
	code = append(code, 0x60, byte(len(initCode))) // PUSH1 size
	code = append(code, 0x60, byte(offset))        // PUSH1 offset
	code = append(code, 0x60, 0x00)                // PUSH1 value
	code = append(code, 0xf0)                      // CREATE
	code = append(code, 0x00)                      // STOP

	host.SetCode(contractAddr, code)

	_, leftOverGas, err := runScenarioWithHost(host, code, 200000, contractAddr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if leftOverGas == 0 {
		t.Fatal("expected some gas left over after a successful CREATE")
	}
}
