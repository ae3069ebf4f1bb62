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

package runtime

import (
	"github.com/holiman/uint256"

	"github.com/evmcore/blockvm/common/block"
	"github.com/evmcore/blockvm/common/transaction"
	"github.com/evmcore/blockvm/common/types"
	"github.com/evmcore/blockvm/internal/vm/evmtypes"
)

var _ evmtypes.IntraBlockState = (*MemoryStateDB)(nil)

// account is one address's view of the world: balance, nonce, code and its
// two storage generations (committed, the value as of the start of the
// transaction, and live, what SSTORE has written since).
type account struct {
	balance  *uint256.Int
	nonce    uint64
	code     []byte
	codeHash types.Hash
	exists   bool

	committed map[types.Hash]uint256.Int
	storage   map[types.Hash]uint256.Int

	suicided bool
}

func newAccount() *account {
	return &account{
		balance:   new(uint256.Int),
		committed: make(map[types.Hash]uint256.Int),
		storage:   make(map[types.Hash]uint256.Int),
	}
}

func (a *account) clone() *account {
	c := &account{
		balance:  new(uint256.Int).Set(a.balance),
		nonce:    a.nonce,
		code:     a.code,
		codeHash: a.codeHash,
		exists:   a.exists,
		suicided: a.suicided,

		committed: make(map[types.Hash]uint256.Int, len(a.committed)),
		storage:   make(map[types.Hash]uint256.Int, len(a.storage)),
	}
	for k, v := range a.committed {
		c.committed[k] = v
	}
	for k, v := range a.storage {
		c.storage[k] = v
	}
	return c
}

// journalEntry undoes exactly one prior mutation. MemoryStateDB's Snapshot
// and RevertToSnapshot are a length into this slice, matching the journal
// design the teacher's own state package describes in its StateDB doc
// comments, reduced here to an in-memory harness rather than a
// trie-backed store.
type journalEntry func(s *MemoryStateDB)

// MemoryStateDB is a complete, non-persistent common.StateDB built for the
// runtime package's Execute/Call/Create harness and for unit tests that
// need a real Host rather than a hand-stubbed one. It is not safe for
// concurrent use, matching the interface's documented contract.
type MemoryStateDB struct {
	accounts  map[types.Address]*account
	transient map[types.Address]map[types.Hash]uint256.Int
	refund    uint64
	logs      []*block.Log
	journal   []journalEntry

	accessAddrs map[types.Address]struct{}
	accessSlots map[types.Address]map[types.Hash]struct{}
}

// NewMemoryStateDB returns an empty state: every address starts with zero
// balance, zero nonce and no code, matching an untouched account.
func NewMemoryStateDB() *MemoryStateDB {
	return &MemoryStateDB{
		accounts:    make(map[types.Address]*account),
		transient:   make(map[types.Address]map[types.Hash]uint256.Int),
		accessAddrs: make(map[types.Address]struct{}),
		accessSlots: make(map[types.Address]map[types.Hash]struct{}),
	}
}

func (s *MemoryStateDB) getAccount(addr types.Address) *account {
	a, ok := s.accounts[addr]
	if !ok {
		a = newAccount()
		s.accounts[addr] = a
	}
	return a
}

func (s *MemoryStateDB) touch(addr types.Address, a *account) {
	if !a.exists {
		a.exists = true
		s.journal = append(s.journal, func(s *MemoryStateDB) {
			s.accounts[addr].exists = false
		})
	}
}

func (s *MemoryStateDB) CreateAccount(addr types.Address, contractCreation bool) {
	prev, existed := s.accounts[addr]
	a := newAccount()
	if existed {
		a.balance.Set(prev.balance)
	}
	a.exists = true
	s.accounts[addr] = a
	s.journal = append(s.journal, func(s *MemoryStateDB) {
		if existed {
			s.accounts[addr] = prev
		} else {
			delete(s.accounts, addr)
		}
	})
}

func (s *MemoryStateDB) Exist(addr types.Address) bool {
	a, ok := s.accounts[addr]
	return ok && a.exists
}

func (s *MemoryStateDB) Empty(addr types.Address) bool {
	a, ok := s.accounts[addr]
	if !ok {
		return true
	}
	return a.nonce == 0 && a.balance.IsZero() && a.codeHash == types.EmptyCodeHash
}

func (s *MemoryStateDB) SubBalance(addr types.Address, amount *uint256.Int) {
	a := s.getAccount(addr)
	prev := new(uint256.Int).Set(a.balance)
	a.balance.Sub(a.balance, amount)
	s.journal = append(s.journal, func(s *MemoryStateDB) { s.accounts[addr].balance = prev })
}

func (s *MemoryStateDB) AddBalance(addr types.Address, amount *uint256.Int) {
	a := s.getAccount(addr)
	s.touch(addr, a)
	prev := new(uint256.Int).Set(a.balance)
	a.balance.Add(a.balance, amount)
	s.journal = append(s.journal, func(s *MemoryStateDB) { s.accounts[addr].balance = prev })
}

func (s *MemoryStateDB) GetBalance(addr types.Address) *uint256.Int {
	return s.getAccount(addr).balance
}

func (s *MemoryStateDB) GetNonce(addr types.Address) uint64 {
	return s.getAccount(addr).nonce
}

func (s *MemoryStateDB) SetNonce(addr types.Address, nonce uint64) {
	a := s.getAccount(addr)
	s.touch(addr, a)
	prev := a.nonce
	a.nonce = nonce
	s.journal = append(s.journal, func(s *MemoryStateDB) { s.accounts[addr].nonce = prev })
}

func (s *MemoryStateDB) GetCodeHash(addr types.Address) types.Hash {
	return s.getAccount(addr).codeHash
}

func (s *MemoryStateDB) GetCode(addr types.Address) []byte {
	return s.getAccount(addr).code
}

func (s *MemoryStateDB) SetCode(addr types.Address, code []byte) {
	a := s.getAccount(addr)
	s.touch(addr, a)
	prevCode, prevHash := a.code, a.codeHash
	a.code = code
	a.codeHash = keccak256Hash(code)
	s.journal = append(s.journal, func(s *MemoryStateDB) {
		s.accounts[addr].code = prevCode
		s.accounts[addr].codeHash = prevHash
	})
}

func (s *MemoryStateDB) GetCodeSize(addr types.Address) int {
	return len(s.getAccount(addr).code)
}

func (s *MemoryStateDB) AddRefund(gas uint64) {
	prev := s.refund
	s.refund += gas
	s.journal = append(s.journal, func(s *MemoryStateDB) { s.refund = prev })
}

func (s *MemoryStateDB) SubRefund(gas uint64) {
	prev := s.refund
	s.refund -= gas
	s.journal = append(s.journal, func(s *MemoryStateDB) { s.refund = prev })
}

func (s *MemoryStateDB) GetRefund() uint64 { return s.refund }

func (s *MemoryStateDB) GetCommittedState(addr types.Address, key *types.Hash, outValue *uint256.Int) {
	a := s.getAccount(addr)
	if v, ok := a.committed[*key]; ok {
		*outValue = v
		return
	}
	*outValue = uint256.Int{}
}

func (s *MemoryStateDB) GetState(addr types.Address, key *types.Hash, outValue *uint256.Int) {
	a := s.getAccount(addr)
	if v, ok := a.storage[*key]; ok {
		*outValue = v
		return
	}
	*outValue = uint256.Int{}
}

func (s *MemoryStateDB) SetState(addr types.Address, key *types.Hash, value uint256.Int) {
	a := s.getAccount(addr)
	if _, ok := a.committed[*key]; !ok {
		a.committed[*key] = a.storage[*key]
	}
	prev, had := a.storage[*key]
	a.storage[*key] = value
	k := *key
	s.journal = append(s.journal, func(s *MemoryStateDB) {
		acct := s.accounts[addr]
		if had {
			acct.storage[k] = prev
		} else {
			delete(acct.storage, k)
		}
	})
}

func (s *MemoryStateDB) GetTransientState(addr types.Address, key types.Hash) uint256.Int {
	if m, ok := s.transient[addr]; ok {
		return m[key]
	}
	return uint256.Int{}
}

func (s *MemoryStateDB) SetTransientState(addr types.Address, key types.Hash, value uint256.Int) {
	m, ok := s.transient[addr]
	if !ok {
		m = make(map[types.Hash]uint256.Int)
		s.transient[addr] = m
	}
	prev, had := m[key]
	m[key] = value
	s.journal = append(s.journal, func(s *MemoryStateDB) {
		if had {
			s.transient[addr][key] = prev
		} else {
			delete(s.transient[addr], key)
		}
	})
}

func (s *MemoryStateDB) Selfdestruct(addr types.Address) bool {
	a, ok := s.accounts[addr]
	if !ok || a.suicided {
		return false
	}
	a.suicided = true
	s.journal = append(s.journal, func(s *MemoryStateDB) { s.accounts[addr].suicided = false })
	return true
}

func (s *MemoryStateDB) HasSelfdestructed(addr types.Address) bool {
	a, ok := s.accounts[addr]
	return ok && a.suicided
}

func (s *MemoryStateDB) PrepareAccessList(sender types.Address, dest *types.Address, precompiles []types.Address, txAccesses transaction.AccessList) {
	s.accessAddrs[sender] = struct{}{}
	if dest != nil {
		s.accessAddrs[*dest] = struct{}{}
	}
	for _, p := range precompiles {
		s.accessAddrs[p] = struct{}{}
	}
	for _, tuple := range txAccesses {
		s.accessAddrs[tuple.Address] = struct{}{}
		slots, ok := s.accessSlots[tuple.Address]
		if !ok {
			slots = make(map[types.Hash]struct{})
			s.accessSlots[tuple.Address] = slots
		}
		for _, key := range tuple.StorageKeys {
			slots[key] = struct{}{}
		}
	}
}

func (s *MemoryStateDB) AddressInAccessList(addr types.Address) bool {
	_, ok := s.accessAddrs[addr]
	return ok
}

func (s *MemoryStateDB) SlotInAccessList(addr types.Address, slot types.Hash) (addressOk, slotOk bool) {
	addressOk = s.AddressInAccessList(addr)
	if slots, ok := s.accessSlots[addr]; ok {
		_, slotOk = slots[slot]
	}
	return addressOk, slotOk
}

func (s *MemoryStateDB) AddAddressToAccessList(addr types.Address) (addrMod bool) {
	if s.AddressInAccessList(addr) {
		return false
	}
	s.accessAddrs[addr] = struct{}{}
	s.journal = append(s.journal, func(s *MemoryStateDB) { delete(s.accessAddrs, addr) })
	return true
}

func (s *MemoryStateDB) AddSlotToAccessList(addr types.Address, slot types.Hash) (addrMod, slotMod bool) {
	addrMod = s.AddAddressToAccessList(addr)
	slots, ok := s.accessSlots[addr]
	if !ok {
		slots = make(map[types.Hash]struct{})
		s.accessSlots[addr] = slots
	}
	if _, ok := slots[slot]; ok {
		return addrMod, false
	}
	slots[slot] = struct{}{}
	s.journal = append(s.journal, func(s *MemoryStateDB) { delete(s.accessSlots[addr], slot) })
	return addrMod, true
}

func (s *MemoryStateDB) Snapshot() int {
	return len(s.journal)
}

func (s *MemoryStateDB) RevertToSnapshot(revisionID int) {
	for i := len(s.journal) - 1; i >= revisionID; i-- {
		s.journal[i](s)
	}
	s.journal = s.journal[:revisionID]
}

func (s *MemoryStateDB) AddLog(log *block.Log) {
	s.logs = append(s.logs, log)
}

// Logs returns every log AddLog has recorded, in emission order.
func (s *MemoryStateDB) Logs() []*block.Log { return s.logs }
