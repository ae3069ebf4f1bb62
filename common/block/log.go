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

package block

import "github.com/evmcore/blockvm/common/types"

// Log is the record produced by LOG0..LOG4; persisting and indexing it is
// the Host's job (spec.md §6 "emit_log"), this is just the wire shape the
// interpreter hands over.
type Log struct {
	Address types.Address
	Topics  []types.Hash
	Data    []byte
}
