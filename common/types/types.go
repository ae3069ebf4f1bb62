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

// Package types holds the narrow value types the interpreter exchanges with
// its Host: 20-byte addresses and 32-byte hashes/storage keys. Persisted
// account/state representations belong to the Host, not here.
package types

import (
	"encoding/hex"
	"strings"

	"github.com/holiman/uint256"
)

const (
	AddressLength = 20
	HashLength    = 32
)

// Address is the low 20 bytes of a 256-bit word, per spec.md §4.5.
type Address [AddressLength]byte

// Hash is a 32-byte word, used for storage keys, code hashes and topics.
type Hash [HashLength]byte

func BytesToAddress(b []byte) (a Address) {
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
	return a
}

func BytesToHash(b []byte) (h Hash) {
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
	return h
}

// HexToAddress parses a hex string (with or without 0x prefix), right-aligning
// the decoded bytes as BytesToAddress does.
func HexToAddress(s string) Address {
	s = strings.TrimPrefix(s, "0x")
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, _ := hex.DecodeString(s)
	return BytesToAddress(b)
}

func HexToHash(s string) Hash {
	s = strings.TrimPrefix(s, "0x")
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, _ := hex.DecodeString(s)
	return BytesToHash(b)
}

func (a Address) Bytes() []byte  { return a[:] }
func (a Address) String() string { return "0x" + hex.EncodeToString(a[:]) }

// Uint256ToAddress takes the low 20 bytes of a word, ignoring any set upper
// bytes (stack operands preserve them; state lookups never see them).
func Uint256ToAddress(v *uint256.Int) Address {
	return BytesToAddress(v.Bytes20()[:])
}

func (h Hash) Bytes() []byte  { return h[:] }
func (h Hash) String() string { return "0x" + hex.EncodeToString(h[:]) }

// EmptyCodeHash is commonly needed by Host implementations exercising this
// engine; kept here rather than forcing every Host to reinvent it.
var EmptyCodeHash = Hash{}
