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

// Package analysiscache holds a generic, code-hash-keyed LRU cache. It is
// generic over its value type rather than importing internal/vm directly so
// that internal/vm can depend on it without an import cycle — the block
// analyzer's Analysis artifact is exactly the kind of expensive,
// code-hash-addressable, immutable value this cache exists for, but nothing
// here knows its shape.
package analysiscache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/evmcore/blockvm/common/types"
)

const DefaultSize = 1024

// Cache is a fixed-capacity LRU keyed by code hash.
type Cache[V any] struct {
	inner *lru.Cache[types.Hash, V]
}

// New builds a Cache holding up to size entries.
func New[V any](size int) *Cache[V] {
	if size <= 0 {
		size = DefaultSize
	}
	c, err := lru.New[types.Hash, V](size)
	if err != nil {
		// Only returned by golang-lru for size <= 0, already excluded above.
		panic(err)
	}
	return &Cache[V]{inner: c}
}

func (c *Cache[V]) Get(hash types.Hash) (V, bool) {
	return c.inner.Get(hash)
}

func (c *Cache[V]) Add(hash types.Hash, value V) {
	c.inner.Add(hash, value)
}

func (c *Cache[V]) Len() int {
	return c.inner.Len()
}

func (c *Cache[V]) Purge() {
	c.inner.Purge()
}
