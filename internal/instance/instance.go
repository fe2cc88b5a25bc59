// Package instance implements the Instance & Calling Protocol (spec §4.7,
// C7/C9): a one-shot wasmer engine/store/module/instance built per call,
// the host-import surface from internal/imports wired in as wasmer
// closures, and the seven-step dispatch procedure that turns (checksum,
// env, info, msg) into a gas-accounted envelope.
//
// Grounded on the teacher's VMService.ExecuteContract
// (internal/vm/vm.go): per-call engine/store construction for isolation,
// import-object registration, compile, instantiate, get export, call,
// classify *wasmer.TrapError versus other errors. This package
// generalizes that one hard-coded entry point into the full
// Fetched -> Validated -> Instrumented -> Compiled -> Instantiated ->
// Running -> {Ok|OutOfGas|Trap|HostError} -> Disposed state machine and
// the nine-kind error taxonomy in internal/types/errors.go.
package instance

import (
	"fmt"

	"github.com/empower1/wasmvm/internal/analysis"
	"github.com/empower1/wasmvm/internal/instrument"
	"github.com/empower1/wasmvm/internal/types"
)

// Code is the "Compiled Module" of spec §3: a validated, gas-instrumented
// Wasm binary plus the sidecar metadata the cache keys on. Wasm is the
// module AFTER internal/instrument has spliced a `gas` host-call into
// the head of every basic block (spec §4.3) — it is what
// wasmer.NewModule actually compiles, not the bytes the contract was
// submitted as. Checksum is still computed over the original submitted
// bytes, preserving content-addressed identity across re-instrumentation
// (e.g. an InstrumentVersion bump). BlockCosts records the per-block
// charges baked into Wasm, kept alongside for tests and diagnostics.
type Code struct {
	Wasm       []byte
	Checksum   types.Checksum
	Report     analysis.Report
	BlockCosts []uint64
}

// Compile runs C2 (static analysis) and C3 (gas injection) over a raw
// Wasm binary, the first two steps of the §4.7 dispatch procedure. It
// never touches the engine — wasmer compilation happens per Call, the
// way the teacher isolates every execution with a fresh engine/store.
func Compile(wasmBytes []byte, cfg types.Config) (*Code, error) {
	mod, err := analysis.Parse(wasmBytes)
	if err != nil {
		return nil, types.StaticValidationError("failed to parse module", err)
	}
	report, err := analysis.Validate(mod, len(wasmBytes), cfg)
	if err != nil {
		return nil, err
	}
	limits := instrument.Limits{
		StackHeightCap: cfg.WasmLimits.MaxOperandStack,
	}
	result, err := instrument.Gas(mod, limits)
	if err != nil {
		return nil, types.CompilationErrorf("gas injection failed", err)
	}
	return &Code{
		Wasm:       result.Wasm,
		Checksum:   types.CreateChecksum(wasmBytes),
		Report:     report,
		BlockCosts: result.BlockCosts,
	}, nil
}

// classifyCallErr maps a raw wasmer/engine error into the §7 taxonomy:
// an OutOfGas error is returned as is, any other *types.VMError is
// returned unchanged, and every other error is wrapped as a Trap. It does
// not inspect the error text or assert *wasmer.TrapError.
func classifyCallErr(err error) error {
	if err == nil {
		return nil
	}
	if types.IsOutOfGas(err) {
		return err
	}
	if ve, ok := err.(*types.VMError); ok {
		return ve
	}
	return types.TrapErrorf("wasm execution trapped", err)
}

// wrapPanic recovers a panic raised inside a host-import closure and
// turns it into a BackendError instead of letting it unwind into the
// wasmer C boundary, per spec §7's last paragraph ("exceptions/panics
// from host code map to catch-at-boundary + BackendError"). The teacher's
// host functions never recover — this is the one deliberate deviation
// from its style SPEC_FULL.md calls out.
func wrapPanic(name string, err *error) {
	if r := recover(); r != nil {
		*err = types.BackendErrorf(fmt.Sprintf("panic in host import %q", name), fmt.Errorf("%v", r))
	}
}
