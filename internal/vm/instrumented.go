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
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/google/uuid"
	"github.com/holiman/uint256"

	"github.com/evmcore/blockvm/internal/vm/evmtypes"
	"github.com/evmcore/blockvm/log"
	"github.com/evmcore/blockvm/params"
)

var (
	callCounter           = metrics.NewCounter(`blockvm_calls_total{kind="call"}`)
	callCodeCounter       = metrics.NewCounter(`blockvm_calls_total{kind="callcode"}`)
	delegateCallCounter   = metrics.NewCounter(`blockvm_calls_total{kind="delegatecall"}`)
	staticCallCounter     = metrics.NewCounter(`blockvm_calls_total{kind="staticcall"}`)
	createCounter         = metrics.NewCounter(`blockvm_creates_total{kind="create"}`)
	create2Counter        = metrics.NewCounter(`blockvm_creates_total{kind="create2"}`)
	callDurationHistogram = metrics.NewHistogram(`blockvm_call_duration_seconds`)
	createDurationHist    = metrics.NewHistogram(`blockvm_create_duration_seconds`)
	callDepthGauge        = metrics.NewGauge(`blockvm_call_depth`, nil)
)

// InstrumentedVM wraps an EVM with VictoriaMetrics counters/histograms and
// optional per-call debug logging. It satisfies the same VMCaller/VMContext
// surface as the bare EVM, so a Host can swap one for the other without any
// caller-side change.
type InstrumentedVM struct {
	inner   *EVM
	enabled bool

	maxDepthSeen int
}

// NewInstrumentedVM wraps inner. Set enabled=false to make every method a
// direct passthrough with no metrics or logging overhead, for production
// paths that only want instrumentation in specific environments.
func NewInstrumentedVM(inner *EVM, enabled bool) *InstrumentedVM {
	return &InstrumentedVM{inner: inner, enabled: enabled}
}

func (v *InstrumentedVM) Call(caller ContractRef, addr Address, input []byte, gas uint64, value *uint256.Int, bailout bool) (ret []byte, leftOverGas uint64, err error) {
	if !v.enabled {
		return v.inner.Call(caller, addr, input, gas, value, bailout)
	}

	callID := uuid.NewString()
	start := time.Now()
	ret, leftOverGas, err = v.inner.Call(caller, addr, input, gas, value, bailout)
	v.record(callCounter, start)
	v.trackDepth()

	log.Debug("vm call", "call_id", callID, "addr", addr.String(), "gas", gas, "left_over_gas", leftOverGas, "err", err)
	return ret, leftOverGas, err
}

func (v *InstrumentedVM) CallCode(caller ContractRef, addr Address, input []byte, gas uint64, value *uint256.Int) (ret []byte, leftOverGas uint64, err error) {
	if !v.enabled {
		return v.inner.CallCode(caller, addr, input, gas, value)
	}

	start := time.Now()
	ret, leftOverGas, err = v.inner.CallCode(caller, addr, input, gas, value)
	v.record(callCodeCounter, start)
	return ret, leftOverGas, err
}

func (v *InstrumentedVM) DelegateCall(caller ContractRef, addr Address, input []byte, gas uint64) (ret []byte, leftOverGas uint64, err error) {
	if !v.enabled {
		return v.inner.DelegateCall(caller, addr, input, gas)
	}

	start := time.Now()
	ret, leftOverGas, err = v.inner.DelegateCall(caller, addr, input, gas)
	v.record(delegateCallCounter, start)
	return ret, leftOverGas, err
}

func (v *InstrumentedVM) StaticCall(caller ContractRef, addr Address, input []byte, gas uint64) (ret []byte, leftOverGas uint64, err error) {
	if !v.enabled {
		return v.inner.StaticCall(caller, addr, input, gas)
	}

	start := time.Now()
	ret, leftOverGas, err = v.inner.StaticCall(caller, addr, input, gas)
	v.record(staticCallCounter, start)
	return ret, leftOverGas, err
}

func (v *InstrumentedVM) Create(caller ContractRef, code []byte, gas uint64, endowment *uint256.Int) (ret []byte, contractAddr Address, leftOverGas uint64, err error) {
	if !v.enabled {
		return v.inner.Create(caller, code, gas, endowment)
	}

	callID := uuid.NewString()
	start := time.Now()
	ret, contractAddr, leftOverGas, err = v.inner.Create(caller, code, gas, endowment)
	createCounter.Inc()
	createDurationHist.Update(time.Since(start).Seconds())

	log.Debug("vm create", "call_id", callID, "addr", contractAddr.String(), "gas", gas, "left_over_gas", leftOverGas, "err", err)
	return ret, contractAddr, leftOverGas, err
}

func (v *InstrumentedVM) Create2(caller ContractRef, code []byte, gas uint64, endowment *uint256.Int, salt *uint256.Int) (ret []byte, contractAddr Address, leftOverGas uint64, err error) {
	if !v.enabled {
		return v.inner.Create2(caller, code, gas, endowment, salt)
	}

	start := time.Now()
	ret, contractAddr, leftOverGas, err = v.inner.Create2(caller, code, gas, endowment, salt)
	create2Counter.Inc()
	createDurationHist.Update(time.Since(start).Seconds())
	return ret, contractAddr, leftOverGas, err
}

func (v *InstrumentedVM) record(counter *metrics.Counter, start time.Time) {
	counter.Inc()
	callDurationHistogram.Update(time.Since(start).Seconds())
}

func (v *InstrumentedVM) trackDepth() {
	if v.inner.depth > v.maxDepthSeen {
		v.maxDepthSeen = v.inner.depth
		callDepthGauge.Set(float64(v.maxDepthSeen))
	}
}

func (v *InstrumentedVM) Context() evmtypes.BlockContext             { return v.inner.Context() }
func (v *InstrumentedVM) TxContext() evmtypes.TxContext              { return v.inner.TxContext() }
func (v *InstrumentedVM) ChainConfig() *params.ChainConfig           { return v.inner.ChainConfig() }
func (v *InstrumentedVM) ChainRules() *params.Rules                  { return v.inner.ChainRules() }
func (v *InstrumentedVM) IntraBlockState() evmtypes.IntraBlockState  { return v.inner.IntraBlockState() }
func (v *InstrumentedVM) Config() Config                             { return v.inner.Config() }
func (v *InstrumentedVM) Cancel()                                    { v.inner.Cancel() }
func (v *InstrumentedVM) Cancelled() bool                            { return v.inner.Cancelled() }

func (v *InstrumentedVM) Reset(txCtx evmtypes.TxContext, ibs evmtypes.IntraBlockState) {
	v.inner.Reset(txCtx, ibs)
	v.maxDepthSeen = 0
}

func (v *InstrumentedVM) ResetBetweenBlocks(blockCtx evmtypes.BlockContext, txCtx evmtypes.TxContext, ibs evmtypes.IntraBlockState, cfg Config, rules *params.Rules) {
	v.inner.ResetBetweenBlocks(blockCtx, txCtx, ibs, cfg, rules)
	v.maxDepthSeen = 0
}

// Inner returns the wrapped EVM, for callers that need the concrete type
// (e.g. to build a fresh Interpreter directly).
func (v *InstrumentedVM) Inner() *EVM { return v.inner }

var _ FullVM = (*InstrumentedVM)(nil)
