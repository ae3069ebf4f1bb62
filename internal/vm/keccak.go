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

import "golang.org/x/crypto/sha3"

// keccak256 is the hash SHA3, EXTCODEHASH, and CREATE2's address derivation
// all share. The interpreter never uses it for anything state-changing;
// it's pure, stateless bytes-in/bytes-out.
func keccak256(data ...[]byte) Hash {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	var out Hash
	h.Sum(out[:0])
	return out
}

// createAddress derives the CREATE address: keccak256(rlp(sender, nonce))
// truncated to 20 bytes. RLP-encoding a single address and a nonce by hand
// avoids pulling in a full RLP codec for one call site.
func createAddress(sender Address, nonce uint64) Address {
	var nonceBytes []byte
	if nonce != 0 {
		n := nonce
		for n > 0 {
			nonceBytes = append([]byte{byte(n)}, nonceBytes...)
			n >>= 8
		}
	}
	payload := rlpAddressNonce(sender, nonceBytes)
	h := keccak256(payload)
	var addr Address
	copy(addr[:], h[12:])
	return addr
}

// createAddress2 derives the CREATE2 address: keccak256(0xff ++ sender ++
// salt ++ keccak256(initcode))[12:].
func createAddress2(sender Address, salt Hash, initCodeHash Hash) Address {
	h := keccak256([]byte{0xff}, sender[:], salt[:], initCodeHash[:])
	var addr Address
	copy(addr[:], h[12:])
	return addr
}

// rlpAddressNonce RLP-encodes the two-element list [sender, nonce] that
// CREATE's address formula hashes.
func rlpAddressNonce(sender Address, nonce []byte) []byte {
	addrItem := rlpBytes(sender[:])
	nonceItem := rlpBytes(nonce)
	body := append(addrItem, nonceItem...)
	return append(rlpListHeader(len(body)), body...)
}

func rlpBytes(b []byte) []byte {
	if len(b) == 1 && b[0] < 0x80 {
		return b
	}
	if len(b) < 56 {
		return append([]byte{byte(0x80 + len(b))}, b...)
	}
	lenBytes := rlpLength(len(b))
	return append(append([]byte{byte(0xb7 + len(lenBytes))}, lenBytes...), b...)
}

func rlpListHeader(size int) []byte {
	if size < 56 {
		return []byte{byte(0xc0 + size)}
	}
	lenBytes := rlpLength(size)
	return append([]byte{byte(0xf7 + len(lenBytes))}, lenBytes...)
}

func rlpLength(n int) []byte {
	var out []byte
	for n > 0 {
		out = append([]byte{byte(n)}, out...)
		n >>= 8
	}
	return out
}
