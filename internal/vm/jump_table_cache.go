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
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/evmcore/blockvm/params"
)

var (
	jumpTableCacheMu sync.RWMutex
	jumpTableCache   = make(map[params.Rules]*JumpTable)
	jumpTableGroup   singleflight.Group
)

// getCachedJumpTable returns the JumpTable for rules, building it at most
// once no matter how many EVMs are constructed concurrently for the same
// ruleset — every mainnet block past a given fork shares one Rules value.
func getCachedJumpTable(rules params.Rules) *JumpTable {
	jumpTableCacheMu.RLock()
	jt, ok := jumpTableCache[rules]
	jumpTableCacheMu.RUnlock()
	if ok {
		return jt
	}

	v, _, _ := jumpTableGroup.Do(jumpTableCacheKey(rules), func() (interface{}, error) {
		jumpTableCacheMu.RLock()
		if jt, ok := jumpTableCache[rules]; ok {
			jumpTableCacheMu.RUnlock()
			return jt, nil
		}
		jumpTableCacheMu.RUnlock()

		built := newJumpTable(&rules)
		jumpTableCacheMu.Lock()
		jumpTableCache[rules] = &built
		jumpTableCacheMu.Unlock()
		return &built, nil
	})
	return v.(*JumpTable)
}

// jumpTableCacheKey encodes the handful of fork flags into a bitmask string,
// the cheapest possible singleflight key that still distinguishes every
// ruleset newJumpTable cares about.
func jumpTableCacheKey(r params.Rules) string {
	flags := [...]bool{
		r.IsHomestead, r.IsTangerineWhistle, r.IsSpuriousDragon, r.IsByzantium,
		r.IsConstantinople, r.IsPetersburg, r.IsIstanbul, r.IsBerlin,
		r.IsLondon, r.IsShanghai, r.IsCancun,
	}
	var bits int
	for i, f := range flags {
		if f {
			bits |= 1 << i
		}
	}
	return strconv.Itoa(bits)
}

// PrewarmJumpTables builds and caches the JumpTable for each of rulesets up
// front, so the first call against a freshly activated fork doesn't pay
// newJumpTable's construction cost on the execution path.
func PrewarmJumpTables(rulesets ...params.Rules) {
	for _, r := range rulesets {
		getCachedJumpTable(r)
	}
}
