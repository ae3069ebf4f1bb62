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
	"testing"

	"github.com/evmcore/blockvm/params"
)

func TestNewJumpTablePreByzantiumOmitsStaticcallAndRevert(t *testing.T) {
	rules := params.Rules{}
	jt := newJumpTable(&rules)

	if jt[STATICCALL] != nil {
		t.Error("STATICCALL should be undefined before Byzantium")
	}
	if jt[REVERT] != nil {
		t.Error("REVERT should be undefined before Byzantium")
	}
	if jt[DELEGATECALL] != nil {
		t.Error("DELEGATECALL should be undefined before Homestead")
	}
	if jt[CREATE2] != nil {
		t.Error("CREATE2 should be undefined before Constantinople")
	}
	if jt[CHAINID] != nil || jt[SELFBALANCE] != nil {
		t.Error("CHAINID/SELFBALANCE should be undefined before Istanbul")
	}
	if jt[PUSH0] != nil {
		t.Error("PUSH0 should be undefined before Shanghai")
	}
	if jt[TLOAD] != nil || jt[TSTORE] != nil {
		t.Error("TLOAD/TSTORE should be undefined before Cancun")
	}
}

func TestNewJumpTableAllRulesEnabledPopulatesForkGatedOps(t *testing.T) {
	jt := newJumpTable(params.AllRulesEnabled())

	gated := []OpCode{STATICCALL, REVERT, DELEGATECALL, CREATE2, CHAINID, SELFBALANCE, PUSH0, TLOAD, TSTORE, BASEFEE, BLOBHASH, BLOBBASEFEE, MCOPY}
	for _, op := range gated {
		if jt[op] == nil {
			t.Errorf("%s should be defined with every fork flag enabled", op)
		}
	}
}

func TestNewJumpTableAlwaysDefinesBaseOps(t *testing.T) {
	jt := newJumpTable(&params.Rules{})

	base := []OpCode{STOP, ADD, MUL, POP, MLOAD, MSTORE, SLOAD, SSTORE, JUMP, JUMPI, JUMPDEST, CREATE, CALL, CALLCODE, RETURN, INVALID, SELFDESTRUCT}
	for _, op := range base {
		if jt[op] == nil {
			t.Errorf("%s should always be defined", op)
		}
	}
}

func TestPushDupSwapTablesComplete(t *testing.T) {
	jt := newJumpTable(&params.Rules{})

	for i := 1; i <= 32; i++ {
		op := OpCode(byte(PUSH1) + byte(i-1))
		if jt[op] == nil {
			t.Errorf("PUSH%d should be defined", i)
		}
	}
	for i := 1; i <= 16; i++ {
		dupOp := OpCode(byte(DUP1) + byte(i-1))
		swapOp := OpCode(byte(SWAP1) + byte(i-1))
		if jt[dupOp] == nil {
			t.Errorf("DUP%d should be defined", i)
		}
		if jt[swapOp] == nil {
			t.Errorf("SWAP%d should be defined", i)
		}
		if jt[dupOp].numPop != i || jt[dupOp].numPush != i+1 {
			t.Errorf("DUP%d stack effect = (%d,%d), want (%d,%d)", i, jt[dupOp].numPop, jt[dupOp].numPush, i, i+1)
		}
		if jt[swapOp].numPop != i+1 || jt[swapOp].numPush != i+1 {
			t.Errorf("SWAP%d stack effect = (%d,%d), want (%d,%d)", i, jt[swapOp].numPop, jt[swapOp].numPush, i+1, i+1)
		}
	}
}

func TestLogTableStackEffectsScaleWithTopicCount(t *testing.T) {
	jt := newJumpTable(&params.Rules{})
	for n := 0; n <= 4; n++ {
		op := LOG0 + OpCode(n)
		if jt[op].numPop != 2+n {
			t.Errorf("LOG%d numPop = %d, want %d", n, jt[op].numPop, 2+n)
		}
		wantGas := params.LogGas + uint64(n)*params.LogTopicGas
		if jt[op].constantGas != wantGas {
			t.Errorf("LOG%d constantGas = %d, want %d", n, jt[op].constantGas, wantGas)
		}
	}
}

func TestGetCachedJumpTableReturnsSameInstanceForSameRules(t *testing.T) {
	rules := *params.AllRulesEnabled()
	a := getCachedJumpTable(rules)
	b := getCachedJumpTable(rules)
	if a != b {
		t.Error("getCachedJumpTable should return the same *JumpTable for an identical Rules value")
	}
}

func TestGetCachedJumpTableDiffersAcrossRules(t *testing.T) {
	a := getCachedJumpTable(params.Rules{})
	b := getCachedJumpTable(*params.AllRulesEnabled())
	if a == b {
		t.Error("getCachedJumpTable should build distinct tables for distinct rulesets")
	}
	if a[STATICCALL] != nil {
		t.Error("the pre-Byzantium cached table should not have picked up STATICCALL from the other ruleset")
	}
}

func TestPrewarmJumpTablesPopulatesCache(t *testing.T) {
	rules := params.Rules{IsHomestead: true, IsByzantium: true, IsConstantinople: true}
	PrewarmJumpTables(rules)

	jumpTableCacheMu.RLock()
	_, ok := jumpTableCache[rules]
	jumpTableCacheMu.RUnlock()
	if !ok {
		t.Error("PrewarmJumpTables should have populated the cache for the given ruleset")
	}
}
