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

package params

// Fixed per-opcode gas costs, named after the step classes used throughout
// the reference implementations (GasQuickStep=2, GasFastestStep=3, ...).
const (
	GasQuickStep   uint64 = 2
	GasFastestStep uint64 = 3
	GasFastStep    uint64 = 5
	GasMidStep     uint64 = 8
	GasSlowStep    uint64 = 10
	GasExtStep     uint64 = 20

	GasZero       uint64 = 0
	GasBase       uint64 = 2
	GasVeryLow    uint64 = 3
	GasLow        uint64 = 5
	GasMid        uint64 = 8
	GasHigh       uint64 = 10
	GasJumpdest   uint64 = 1
	GasSstoreSet  uint64 = 20000
	GasSstoreReset uint64 = 5000

	CopyGas       uint64 = 3
	Sha3Gas       uint64 = 30
	Sha3WordGas   uint64 = 6
	LogGas        uint64 = 375
	LogDataGas    uint64 = 8
	LogTopicGas   uint64 = 375

	CreateGas        uint64 = 32000
	CreateDataGas    uint64 = 200
	Create2Gas       uint64 = 32000
	CallValueTransferGas uint64 = 9000
	CallNewAccountGas    uint64 = 25000
	CallStipend          uint64 = 2300
	SelfdestructRefundGas uint64 = 24000

	// SstoreSentryGasEIP2200 is EIP-2200/EIP-1706's reentrancy guard: SSTORE
	// fails immediately when less than this much gas remains, so a callee
	// holding only the 2300-gas stipend can never perform one.
	SstoreSentryGasEIP2200 uint64 = 2300

	MemoryGas     uint64 = 3
	QuadCoeffDiv  uint64 = 512

	ExpGas      uint64 = 10
	ExpByteGas  uint64 = 50 // post Spurious Dragon; pre-SD schedule uses 10
	ExpByteGasFrontier uint64 = 10

	// EIP-2929 access-list surcharges.
	ColdAccountAccessCostEIP2929 uint64 = 2600
	ColdSloadCostEIP2929         uint64 = 2100
	WarmStorageReadCostEIP2929   uint64 = 100

	// EIP-3529 (London) SSTORE refund cap and reduced clear refund.
	SstoreClearsScheduleRefundEIP3529 uint64 = 4800

	// EIP-3860 (Shanghai) initcode word cost and size cap.
	InitCodeWordGas    uint64 = 2
	MaxInitCodeSize    int    = 2 * MaxCodeSize

	// EIP-150 (Tangerine Whistle) call gas forwarding denominator.
	CallGasRetentionDivisor uint64 = 64

	// EIP-170 (Spurious Dragon) deployed-code size cap.
	MaxCodeSize int = 24576

	MaxStack     int = 1024
	MaxCallDepth int = 1024
)
