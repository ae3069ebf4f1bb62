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

// Package runtime is a standalone execute/call/create harness for driving
// the engine against a piece of bytecode without wiring up a full block
// processor: exactly what benchmarks, fuzzers and opcode-level tests need.
// It mirrors the shape of go-ethereum's core/vm/runtime package, rebuilt
// against this module's own EVM and Host boundary.
package runtime

import (
	"math"
	"math/big"
	"time"

	"github.com/holiman/uint256"
	"golang.org/x/crypto/sha3"

	"github.com/evmcore/blockvm/common/types"
	"github.com/evmcore/blockvm/internal/vm"
	"github.com/evmcore/blockvm/internal/vm/evmtypes"
	"github.com/evmcore/blockvm/params"
)

// Config bundles everything Execute/Call/Create need to build a BlockContext,
// a TxContext and a Host for one run. Every field is optional; setDefaults
// fills in a sensible value for whatever the caller left zero.
type Config struct {
	ChainConfig *params.ChainConfig
	Difficulty  *big.Int
	Origin      types.Address
	Coinbase    types.Address
	BlockNumber *uint64
	Time        *uint64
	GasLimit    uint64
	GasPrice    *uint256.Int
	Value       *uint256.Int
	BaseFee     *uint256.Int
	BlobBaseFee *uint256.Int
	BlobHashes  []types.Hash
	GetHashFn   evmtypes.GetHashFunc

	EVMConfig vm.Config
	State     *MemoryStateDB
}

// defaultGasLimit is generous enough that no realistic test bytecode runs
// out of gas for reasons unrelated to what it's actually testing.
const defaultGasLimit = math.MaxInt64

func setDefaults(cfg *Config) {
	if cfg.ChainConfig == nil {
		cfg.ChainConfig = params.MainnetChainConfig()
	}
	if cfg.Difficulty == nil {
		cfg.Difficulty = new(big.Int)
	}
	if cfg.Time == nil {
		t := uint64(time.Now().Unix())
		cfg.Time = &t
	}
	if cfg.GasLimit == 0 {
		cfg.GasLimit = defaultGasLimit
	}
	if cfg.GasPrice == nil {
		cfg.GasPrice = new(uint256.Int)
	}
	if cfg.Value == nil {
		cfg.Value = new(uint256.Int)
	}
	if cfg.BlockNumber == nil {
		n := uint64(0)
		cfg.BlockNumber = &n
	}
	if cfg.BaseFee == nil {
		cfg.BaseFee = new(uint256.Int)
	}
	if cfg.GetHashFn == nil {
		cfg.GetHashFn = defaultGetHashFn
	}
	if cfg.State == nil {
		cfg.State = NewMemoryStateDB()
	}
}

// defaultGetHashFn stands in for a real header chain: BLOCKHASH(n) resolves
// to keccak256 of n's big-endian encoding, deterministic and distinct per
// block number without needing an actual chain behind it.
func defaultGetHashFn(n uint64) types.Hash {
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(n >> (8 * (7 - i)))
	}
	return keccak256Hash(buf[:])
}

func keccak256Hash(data []byte) types.Hash {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	var out types.Hash
	h.Sum(out[:0])
	return out
}

func buildEVM(cfg *Config) *vm.EVM {
	blockCtx := evmtypes.BlockContext{
		CanTransfer: vm.DefaultCanTransfer,
		Transfer:    vm.DefaultTransfer,
		GetHash:     cfg.GetHashFn,
		Coinbase:    cfg.Coinbase,
		GasLimit:    cfg.GasLimit,
		BlockNumber: *cfg.BlockNumber,
		Time:        *cfg.Time,
		Difficulty:  cfg.Difficulty,
		BaseFee:     cfg.BaseFee,
		BlobBaseFee: cfg.BlobBaseFee,
	}
	txCtx := evmtypes.TxContext{
		Origin:     cfg.Origin,
		GasPrice:   cfg.GasPrice,
		BlobHashes: cfg.BlobHashes,
	}
	rules := cfg.ChainConfig.Rules(*cfg.BlockNumber, *cfg.Time)
	return vm.NewEVM(blockCtx, txCtx, cfg.State, cfg.ChainConfig, rules, cfg.EVMConfig)
}

// Execute deploys code as a throwaway contract at a fixed address and runs
// it with input as calldata, returning whatever it returns. It is the
// one-shot "just run this bytecode" entry point opcode tests reach for.
func Execute(code, input []byte, cfg *Config) ([]byte, *MemoryStateDB, error) {
	if cfg == nil {
		cfg = new(Config)
	}
	setDefaults(cfg)

	address := types.BytesToAddress([]byte("blockvm.runtime.execute"))
	cfg.State.SetCode(address, code)

	evm := buildEVM(cfg)
	sender := vm.AccountRef(cfg.Origin)
	ret, _, err := evm.Call(sender, address, input, cfg.GasLimit, cfg.Value, false)
	return ret, cfg.State, err
}

// Call invokes already-deployed code at address, as an ordinary CALL from
// cfg.Origin would. address's code must already exist in cfg.State.
func Call(address types.Address, input []byte, cfg *Config) ([]byte, uint64, error) {
	if cfg == nil {
		cfg = new(Config)
	}
	setDefaults(cfg)

	evm := buildEVM(cfg)
	sender := vm.AccountRef(cfg.Origin)
	ret, leftOverGas, err := evm.Call(sender, address, input, cfg.GasLimit, cfg.Value, false)
	return ret, leftOverGas, err
}

// Create runs input as init code via CREATE and returns the deployed
// runtime code, the address it landed at, and leftover gas.
func Create(input []byte, cfg *Config) ([]byte, types.Address, uint64, error) {
	if cfg == nil {
		cfg = new(Config)
	}
	setDefaults(cfg)

	evm := buildEVM(cfg)
	sender := vm.AccountRef(cfg.Origin)
	ret, addr, leftOverGas, err := evm.Create(sender, input, cfg.GasLimit, cfg.Value)
	return ret, addr, leftOverGas, err
}
