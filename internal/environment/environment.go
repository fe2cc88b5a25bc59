// Package environment implements the mutable per-call context threaded
// through every host import (spec §4.5, C5). It is grounded on the
// teacher's internal/vm.HostFunctionEnvironment (the struct wasmer's host
// closures captured to reach memory, gas, and the caller's identity),
// generalized from one hard-coded field set into the full backend +
// iterator-table + reentrancy-guard discipline §4.5 requires.
package environment

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/empower1/wasmvm/internal/backend"
	"github.com/empower1/wasmvm/internal/types"
	"go.uber.org/zap"
)

// Limits bounds the per-call behavior the Environment enforces beyond
// raw gas: debug-print volume and reentrant query depth (spec §4.5 "also
// clamps debug-print cumulative bytes and caps call_depth").
type Limits struct {
	MaxDebugBytes uint64
	MaxCallDepth  uint32
}

func DefaultLimits() Limits {
	return Limits{MaxDebugBytes: 2 * 1024 * 1024, MaxCallDepth: 10}
}

// Environment is single-threaded within one call: no import may be
// invoked concurrently against the same instance (spec §4.5 bullet 1).
// An atomic in-use flag (see enter) turns an accidental concurrent call
// into a panic instead of silent corruption.
type Environment struct {
	mu sync.Mutex

	Backend backend.Backend
	Logger  *zap.SugaredLogger

	ReadOnly bool
	CallDepth uint32
	limits    Limits

	gasLeft          uint64
	initialGas       uint64
	gasExternallyUsed uint64

	debugBytesUsed uint64

	iterators   map[backend.IteratorID]struct{}
	nextIterSeq uint32

	locked atomic.Bool
}

// New constructs an Environment for one call with the given initial gas
// budget (already multiplied by the configured gas_multiplier — see
// types.Config.GasMultiplier and spec §4.7 step 2).
func New(be backend.Backend, logger *zap.SugaredLogger, readOnly bool, initialGas uint64, limits Limits) *Environment {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Environment{
		Backend:    be,
		Logger:     logger,
		ReadOnly:   readOnly,
		limits:     limits,
		gasLeft:    initialGas,
		initialGas: initialGas,
		iterators:  make(map[backend.IteratorID]struct{}),
	}
}

// enter acquires the single-threaded guard; it panics if re-entered,
// which would indicate the engine invoked two host imports concurrently
// against the same Environment — a host bug, not a guest-triggerable
// condition, so panicking here (rather than returning an error the
// caller might swallow) matches the teacher's fail-fast posture on
// invariant violations it cannot attribute to untrusted input.
func (e *Environment) enter() func() {
	if !e.locked.CompareAndSwap(false, true) {
		panic("environment: concurrent host import invocation")
	}
	return func() { e.locked.Store(false) }
}

// ChargeGas deducts cost from the Wasm gas counter, returning
// types.OutOfGasError() if the counter would go negative (spec §4.5
// bullet 2: "before performing a host operation whose cost is known in
// advance, check gas_left >= cost; if not, abort").
func (e *Environment) ChargeGas(cost uint64) error {
	defer e.enter()()
	if cost > e.gasLeft {
		e.gasLeft = 0
		return types.OutOfGasError()
	}
	e.gasLeft -= cost
	return nil
}

// ChargeExternal records gas discovered post-hoc (spec §4.5 bullet 2:
// "gas discovered post-hoc ... goes to gas_externally_used").
func (e *Environment) ChargeExternal(used uint64) {
	defer e.enter()()
	e.gasExternallyUsed += used
}

// ChargeGasInfo applies a combined GasInfo result from a backend call:
// Cost against the Wasm meter, ExternallyUsed against the external
// counter.
func (e *Environment) ChargeGasInfo(info types.GasInfo) error {
	if err := e.ChargeGas(info.Cost); err != nil {
		return err
	}
	e.ChargeExternal(info.ExternallyUsed)
	return nil
}

// GasReport snapshots the call's gas accounting for the final (spec §4.7
// step 7) emission.
func (e *Environment) GasReport() types.GasReport {
	defer e.enter()()
	return types.GasReport{
		Limit:          e.initialGas,
		UsedInternally: e.initialGas - e.gasLeft,
		UsedExternally: e.gasExternallyUsed,
		Remaining:      e.gasLeft,
	}
}

// CheckWriteAllowed enforces the read-only entry-point discipline (spec
// §4.5/§8 "For any call on a read-only entry point, no db_write/db_remove
// observed by the backend").
func (e *Environment) CheckWriteAllowed() error {
	if e.ReadOnly {
		return fmt.Errorf("storage write attempted in a read-only entry point")
	}
	return nil
}

// ChargeDebug clamps cumulative debug-print bytes across the call (spec
// §4.5 "clamps debug-print cumulative bytes").
func (e *Environment) ChargeDebug(n int) error {
	defer e.enter()()
	e.debugBytesUsed += uint64(n)
	if e.debugBytesUsed > e.limits.MaxDebugBytes {
		return fmt.Errorf("debug output exceeded cumulative limit of %d bytes", e.limits.MaxDebugBytes)
	}
	return nil
}

// RegisterIterator records a live iterator ID so a later reuse attempt
// from a different call (or after it has drained) can be rejected (spec
// §4.5 bullet 3 "attempting to use an ID from a prior call is an error").
func (e *Environment) RegisterIterator(id backend.IteratorID) {
	defer e.enter()()
	e.iterators[id] = struct{}{}
}

// CheckIterator verifies id was registered in this call.
func (e *Environment) CheckIterator(id backend.IteratorID) error {
	defer e.enter()()
	if _, ok := e.iterators[id]; !ok {
		return fmt.Errorf("iterator %d is not live in this call", id)
	}
	return nil
}

// EnterQuery increments the reentrant call_depth counter for a
// query_chain dispatch and returns a release func; it errors instead of
// recursing once limits.MaxCallDepth is reached (spec §4.5 bullet 4,
// §8 "call_depth exceeded causes the innermost query_chain to return a
// system error without panicking").
func (e *Environment) EnterQuery(ctx context.Context) (func(), error) {
	defer e.enter()()
	if e.CallDepth >= e.limits.MaxCallDepth {
		return nil, fmt.Errorf("exceeded maximum reentrant call depth %d", e.limits.MaxCallDepth)
	}
	e.CallDepth++
	return func() {
		defer e.enter()()
		e.CallDepth--
	}, nil
}
