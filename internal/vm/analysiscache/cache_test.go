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

package analysiscache

import (
	"testing"

	"github.com/evmcore/blockvm/common/types"
)

func TestCacheGetMiss(t *testing.T) {
	c := New[int](4)
	if _, ok := c.Get(types.Hash{0x01}); ok {
		t.Error("expected a miss on an empty cache")
	}
}

func TestCacheAddThenGet(t *testing.T) {
	c := New[string](4)
	h := types.Hash{0x02}
	c.Add(h, "value")

	got, ok := c.Get(h)
	if !ok || got != "value" {
		t.Errorf("Get = %q, %v, want %q, true", got, ok, "value")
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := New[int](2)
	h1, h2, h3 := types.Hash{0x01}, types.Hash{0x02}, types.Hash{0x03}

	c.Add(h1, 1)
	c.Add(h2, 2)
	c.Add(h3, 2) // evicts h1, the least recently touched

	if _, ok := c.Get(h1); ok {
		t.Error("expected h1 to have been evicted")
	}
	if _, ok := c.Get(h2); !ok {
		t.Error("expected h2 to still be cached")
	}
	if _, ok := c.Get(h3); !ok {
		t.Error("expected h3 to still be cached")
	}
}

func TestCacheZeroSizeFallsBackToDefault(t *testing.T) {
	c := New[int](0)
	if c.inner.Len() != 0 {
		t.Error("expected a fresh cache to start empty")
	}
	// A size-0 request should not panic or silently cap capacity at 0 -
	// confirm it actually accepts more than zero entries.
	for i := 0; i < 10; i++ {
		c.Add(types.Hash{byte(i)}, i)
	}
	if c.Len() != 10 {
		t.Errorf("Len() = %d, want 10 entries to fit under the default size", c.Len())
	}
}

func TestCachePurge(t *testing.T) {
	c := New[int](4)
	c.Add(types.Hash{0x01}, 1)
	c.Add(types.Hash{0x02}, 2)
	c.Purge()

	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after Purge", c.Len())
	}
}
