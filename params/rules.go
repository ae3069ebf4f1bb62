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

// Package params carries the ruleset/hardfork flags spec.md §6 lists as
// read-only Host-provided booleans, plus the gas schedule constants the
// interpreter's gas tables are built from.
package params

// Rules is the set of hardfork activation flags in effect for one block.
// Each flag is monotonic within a chain's history: once true for a given
// ChainConfig + block number it stays true for every later block.
type Rules struct {
	IsHomestead        bool
	IsTangerineWhistle bool // EIP-150
	IsSpuriousDragon   bool // EIP-158
	IsByzantium        bool
	IsConstantinople   bool
	IsPetersburg       bool
	IsIstanbul         bool
	IsBerlin           bool // EIP-2929 / EIP-2930
	IsLondon           bool // EIP-1559 / EIP-3529
	IsShanghai         bool // EIP-3855 (PUSH0) / EIP-3860
	IsCancun           bool // EIP-1153 / EIP-4844 / EIP-5656 / EIP-6780
}

// ChainConfig selects which block numbers/timestamps activate which Rules.
// The interpreter never reads ChainConfig directly — a Host resolves it to
// a Rules value once per block and passes that down — but it is the
// conventional place a caller configures hardfork schedules, matching the
// teacher's params.ChainConfig / params.Rules split.
type ChainConfig struct {
	ChainID *uint64

	HomesteadBlock        *uint64
	TangerineWhistleBlock *uint64
	SpuriousDragonBlock   *uint64
	ByzantiumBlock        *uint64
	ConstantinopleBlock   *uint64
	PetersburgBlock       *uint64
	IstanbulBlock         *uint64
	BerlinBlock           *uint64
	LondonBlock           *uint64
	ShanghaiTime          *uint64
	CancunTime            *uint64
}

func activated(block *uint64, at uint64) bool {
	return block != nil && at >= *block
}

func activatedTime(t *uint64, at uint64) bool {
	return t != nil && at >= *t
}

// Rules resolves the activation flags for a given block number and
// timestamp. Forks gated by timestamp (Shanghai onward) use blockTime;
// earlier forks use blockNumber, matching mainnet's own transition.
func (c *ChainConfig) Rules(blockNumber, blockTime uint64) Rules {
	return Rules{
		IsHomestead:        activated(c.HomesteadBlock, blockNumber),
		IsTangerineWhistle: activated(c.TangerineWhistleBlock, blockNumber),
		IsSpuriousDragon:   activated(c.SpuriousDragonBlock, blockNumber),
		IsByzantium:        activated(c.ByzantiumBlock, blockNumber),
		IsConstantinople:   activated(c.ConstantinopleBlock, blockNumber),
		IsPetersburg:       activated(c.PetersburgBlock, blockNumber),
		IsIstanbul:         activated(c.IstanbulBlock, blockNumber),
		IsBerlin:           activated(c.BerlinBlock, blockNumber),
		IsLondon:           activated(c.LondonBlock, blockNumber),
		IsShanghai:         activatedTime(c.ShanghaiTime, blockTime),
		IsCancun:           activatedTime(c.CancunTime, blockTime),
	}
}

// MainnetChainConfig approximates the real Ethereum mainnet schedule, for
// tests and for callers that just want "the current rules" without hand
// building a ChainConfig.
func MainnetChainConfig() *ChainConfig {
	u := func(v uint64) *uint64 { return &v }
	return &ChainConfig{
		ChainID:               u(1),
		HomesteadBlock:        u(1150000),
		TangerineWhistleBlock: u(2463000),
		SpuriousDragonBlock:   u(2675000),
		ByzantiumBlock:        u(4370000),
		ConstantinopleBlock:   u(7280000),
		PetersburgBlock:       u(7280000),
		IstanbulBlock:         u(9069000),
		BerlinBlock:           u(12244000),
		LondonBlock:           u(12965000),
		ShanghaiTime:          u(1681338455),
		CancunTime:            u(1710338135),
	}
}

// AllRulesEnabled is convenient for tests that want to exercise the most
// recent opcode set without constructing a ChainConfig.
func AllRulesEnabled() *Rules {
	return &Rules{
		IsHomestead: true, IsTangerineWhistle: true, IsSpuriousDragon: true,
		IsByzantium: true, IsConstantinople: true, IsPetersburg: true,
		IsIstanbul: true, IsBerlin: true, IsLondon: true, IsShanghai: true,
		IsCancun: true,
	}
}
