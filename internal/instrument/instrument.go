// Package instrument rewrites a validated Wasm module so that execution
// costs become explicit (spec §4.3): a call to the host `gas` import is
// spliced into the instruction stream at the head of every basic block,
// priced from the flat table in internal/gascost, and functions whose
// static stack height would exceed a cap are rejected rather than
// silently miscompiled. The rewrite is grounded on the teacher's
// internal/vm.GasTank single-charge-per-call model (spec §4.3's "flat
// table" is the same idea generalized to block granularity) and is
// deterministic: identical (module, gas table version) bytes in always
// yields identical bytes out.
package instrument

import (
	"errors"
	"fmt"

	"github.com/empower1/wasmvm/internal/analysis"
)

// InstrumentVersion is mixed into the engine fingerprint: a change to the
// injector's output shape invalidates every on-disk compiled artifact.
const InstrumentVersion = 2

// gasImportModule and gasImportName name the host import every
// instrumented module calls to charge gas; internal/instance's wire.go
// registers the matching closure under the same (module, name) pair.
const (
	gasImportModule = "env"
	gasImportName   = "gas"
)

var (
	ErrStackTooDeep = errors.New("function exceeds maximum static operand stack height")
	// ErrUnsupportedModule is returned for a module shape the injector
	// cannot safely rewrite: one with an element segment or a DataCount
	// section, either of which can carry function-index references the
	// injector does not parse and therefore cannot shift when it prepends
	// the gas import at function index 0.
	ErrUnsupportedModule = errors.New("module shape not supported by the gas injector")
)

// Limits bounds what the injector will accept; StackHeightCap comes from
// types.WasmLimits.MaxOperandStack (spec §4.5).
type Limits struct {
	StackHeightCap uint32
}

// Result is the instrumented module plus the metadata the cache and
// instance layer need: the rewritten Wasm bytes actually compiled and
// executed by internal/instance, and the gas charge of every basic block
// injected, useful for tests asserting determinism.
type Result struct {
	Wasm       []byte
	BlockCosts []uint64 // one entry per basic block charge inserted, in order
}

// Gas is the gas injector's entry point (spec §4.3, C3). It prepends a
// new `env.gas (i64) -> ()` function import at function index 0 — every
// other function index in the module (call operands, KindFunc export
// indices) shifts by exactly 1 to compensate — then rewrites every
// function body, splicing an `i64.const cost; call gas` charge at the
// head of each basic block gascost.BlockCost priced. The result is a
// complete, re-parseable Wasm module: internal/instance compiles and
// instantiates Result.Wasm directly, so the guest genuinely invokes the
// gas import at runtime rather than merely having its cost computed and
// discarded.
func Gas(m *analysis.Module, limits Limits) (Result, error) {
	if len(m.RawElement) > 0 {
		return Result{}, fmt.Errorf("%w: module declares an element segment", ErrUnsupportedModule)
	}
	if len(m.RawDataCount) > 0 {
		return Result{}, fmt.Errorf("%w: module declares a data count section", ErrUnsupportedModule)
	}

	gasTypeIdx, types := findOrAppendGasFuncType(m.Types)
	gasFuncIdx := uint32(0)

	var costs []uint64
	bodies := make([][]byte, len(m.Bodies))
	for fnIdx, body := range m.Bodies {
		rewritten, blockCosts, err := rewriteFuncBody(body, limits, gasFuncIdx)
		if err != nil {
			return Result{}, fmt.Errorf("function %d: %w", fnIdx, err)
		}
		bodies[fnIdx] = rewritten
		costs = append(costs, blockCosts...)
	}

	var out []byte
	out = append(out, wasmMagicVersion...)
	out = appendSection(out, analysis.SecType, encodeTypeSection(types))
	out = appendSection(out, analysis.SecImport, encodeImportSection(gasImportModule, gasImportName, gasTypeIdx, m.Imports))
	out = appendSection(out, analysis.SecFunction, encodeFunctionSection(m.FuncTypeIdx))
	if len(m.RawTable) > 0 {
		out = appendSection(out, analysis.SecTable, m.RawTable)
	}
	if len(m.RawMemory) > 0 {
		out = appendSection(out, analysis.SecMemory, m.RawMemory)
	}
	if len(m.RawGlobal) > 0 {
		out = appendSection(out, analysis.SecGlobal, m.RawGlobal)
	}
	out = appendSection(out, analysis.SecExport, encodeExportSection(m.Exports))
	out = appendSection(out, analysis.SecCode, encodeCodeSection(bodies))
	if len(m.RawData) > 0 {
		out = appendSection(out, analysis.SecData, m.RawData)
	}

	return Result{Wasm: out, BlockCosts: costs}, nil
}

// findOrAppendGasFuncType returns the type-section index of the
// `(i64) -> ()` signature the gas import uses, reusing an existing entry
// when the module already declares one (common: many contracts declare
// every signature they use up front) instead of always appending a
// fresh, possibly-duplicate type.
func findOrAppendGasFuncType(types []analysis.FuncType) (uint32, []analysis.FuncType) {
	want := analysis.FuncType{Params: []analysis.ValType{analysis.ValTypeI64}}
	for i, t := range types {
		if sameFuncType(t, want) {
			return uint32(i), types
		}
	}
	return uint32(len(types)), append(types, want)
}

func sameFuncType(a, b analysis.FuncType) bool {
	if len(a.Params) != len(b.Params) || len(a.Results) != len(b.Results) {
		return false
	}
	for i := range a.Params {
		if a.Params[i] != b.Params[i] {
			return false
		}
	}
	for i := range a.Results {
		if a.Results[i] != b.Results[i] {
			return false
		}
	}
	return true
}

// staticStackHeight conservatively estimates the maximum operand stack
// depth a function can reach: drop and the four full-width stores
// (0x36-0x39) are counted as pops, end/else as neutral, and every other
// opcode, branches and narrow stores included, as one push, so a
// running high-water mark over the op stream is a sound (if loose) upper
// bound — adequate for rejecting pathological generated modules without
// requiring a full abstract interpreter.
func staticStackHeight(body analysis.FuncBody) uint32 {
	var height, peak uint32
	for _, op := range body.Ops {
		switch byte(op) {
		case 0x1A: // drop
			if height > 0 {
				height--
			}
		case 0x36, 0x37, 0x38, 0x39: // i32/i64/f32/f64.store: pop two
			if height >= 2 {
				height -= 2
			} else {
				height = 0
			}
		case 0x0B, 0x05: // end, else: no net effect
		default:
			height++
		}
		if height > peak {
			peak = height
		}
	}
	return peak
}
