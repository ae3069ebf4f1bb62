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

// Config holds the knobs that change how an EVM executes without changing
// what it computes: no opcode behavior depends on Config, only bookkeeping
// around it.
type Config struct {
	// NoBaseFee is carried for gas-estimation and simulation callers. No
	// code in this package reads it: CALL/CREATE perform no basefee >=
	// gasprice check whether it is set or not.
	NoBaseFee bool

	// AnalysisCacheSize bounds the number of Analyze results cached per
	// code hash; zero selects analysiscache.DefaultSize.
	AnalysisCacheSize int
}
