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

// Package common holds value types and the Host boundary interface shared
// between the interpreter (internal/vm) and whatever embeds it. StateDB is
// the single source of truth for that boundary — internal/vm/evmtypes
// exposes it under the interpreter's own name.
package common

import (
	"github.com/holiman/uint256"

	"github.com/evmcore/blockvm/common/block"
	"github.com/evmcore/blockvm/common/transaction"
	"github.com/evmcore/blockvm/common/types"
)

// StateDB is the Host: the external collaborator spec.md §1 deliberately
// excludes from the engine proper. It owns accounts, storage, logs, and
// the access-list/snapshot bookkeeping a CALL/CREATE/SSTORE needs to
// consult or mutate, plus the EIP-2929 warm/cold classification the gas
// tables key off of. Implementations need not be safe for concurrent use.
type StateDB interface {
	// Account management.
	CreateAccount(addr types.Address, contractCreation bool)
	Exist(addr types.Address) bool
	Empty(addr types.Address) bool

	// Balance.
	SubBalance(addr types.Address, amount *uint256.Int)
	AddBalance(addr types.Address, amount *uint256.Int)
	GetBalance(addr types.Address) *uint256.Int

	// Nonce.
	GetNonce(addr types.Address) uint64
	SetNonce(addr types.Address, nonce uint64)

	// Code.
	GetCodeHash(addr types.Address) types.Hash
	GetCode(addr types.Address) []byte
	SetCode(addr types.Address, code []byte)
	GetCodeSize(addr types.Address) int

	// Gas refund counter (SSTORE clear refunds, EIP-3529 cap applied by the
	// caller when the transaction settles, not by the interpreter).
	AddRefund(gas uint64)
	SubRefund(gas uint64)
	GetRefund() uint64

	// Persistent storage.
	GetCommittedState(addr types.Address, key *types.Hash, outValue *uint256.Int)
	GetState(addr types.Address, key *types.Hash, outValue *uint256.Int)
	SetState(addr types.Address, key *types.Hash, value uint256.Int)

	// Transient storage (EIP-1153): cleared at the end of each transaction,
	// never persisted, never subject to SSTORE's refund accounting.
	GetTransientState(addr types.Address, key types.Hash) uint256.Int
	SetTransientState(addr types.Address, key types.Hash, value uint256.Int)

	// Self-destruct (EIP-6780 restricts the balance-clearing/deletion
	// behavior to same-transaction creations; the Host enforces that, the
	// interpreter only schedules it).
	Selfdestruct(addr types.Address) bool
	HasSelfdestructed(addr types.Address) bool

	// EIP-2929/2930 access lists: the source of truth for whether an
	// address or storage slot is "warm" (cheap) or "cold" (surcharged).
	PrepareAccessList(sender types.Address, dest *types.Address, precompiles []types.Address, txAccesses transaction.AccessList)
	AddressInAccessList(addr types.Address) bool
	SlotInAccessList(addr types.Address, slot types.Hash) (addressOk, slotOk bool)
	AddAddressToAccessList(addr types.Address) (addrMod bool)
	AddSlotToAccessList(addr types.Address, slot types.Hash) (addrMod, slotMod bool)

	// Snapshot/revert, used by CALL/CREATE on failure and by REVERT.
	Snapshot() int
	RevertToSnapshot(revisionID int)

	AddLog(log *block.Log)
}
