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

// Package evmtypes holds the block- and transaction-scoped context the
// interpreter reads but never mutates, plus the interpreter-facing name for
// the Host boundary defined in common.StateDB.
package evmtypes

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/evmcore/blockvm/common"
	"github.com/evmcore/blockvm/common/block"
	"github.com/evmcore/blockvm/common/transaction"
	libcommon "github.com/evmcore/blockvm/common/types"
)

// BlockContext carries everything COINBASE/TIMESTAMP/NUMBER/DIFFICULTY/
// GASLIMIT/CHAINID/BASEFEE/BLOBBASEFEE read, plus the transfer/hash hooks
// CALL-family opcodes and BLOCKHASH need. It is immutable for the lifetime
// of a block.
type BlockContext struct {
	CanTransfer CanTransferFunc
	Transfer    TransferFunc
	GetHash     GetHashFunc

	Coinbase    libcommon.Address
	GasLimit    uint64
	BlockNumber uint64
	Time        uint64
	Difficulty  *big.Int // pre-merge PoW difficulty; zero post-merge
	PrevRanDao  *libcommon.Hash
	BaseFee     *uint256.Int

	BlobBaseFee   *uint256.Int
	ExcessBlobGas uint64
}

// TxContext carries the transaction-scoped fields ORIGIN/GASPRICE/BLOBHASH
// read. Unlike BlockContext, it changes on every transaction within a
// block.
type TxContext struct {
	TxHash     libcommon.Hash
	Origin     libcommon.Address
	GasPrice   *uint256.Int
	BlobHashes []libcommon.Hash
}

type (
	CanTransferFunc func(IntraBlockState, libcommon.Address, *uint256.Int) bool
	TransferFunc    func(IntraBlockState, libcommon.Address, libcommon.Address, *uint256.Int, bool)
	GetHashFunc     func(uint64) libcommon.Hash
)

// IntraBlockState is the interpreter's name for the Host. Keeping it a type
// alias rather than a redeclaration means any common.StateDB implementation
// satisfies it with no adapter.
type IntraBlockState = common.StateDB

type Log = block.Log
type AccessList = transaction.AccessList
