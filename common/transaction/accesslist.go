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

package transaction

import "github.com/evmcore/blockvm/common/types"

// AccessTuple and AccessList mirror EIP-2930: addresses and storage keys a
// transaction declares up front. The interpreter never builds one — the
// Host applies it via PrepareAccessList before the call starts — but the
// shape is shared across the vm/evmtypes boundary.
type AccessTuple struct {
	Address     types.Address
	StorageKeys []types.Hash
}

type AccessList []AccessTuple
