package instrument

import (
	"bytes"
	"testing"

	"github.com/empower1/wasmvm/internal/analysis"
)

// buildSingleFuncModule hand-assembles the smallest Wasm binary holding
// one `() -> ()` function whose body is exactly ops (caller-supplied,
// including the trailing 0x0B `end`), then parses it the same way
// internal/cache.StoreCode and internal/instance.Compile do — so the
// resulting analysis.Module carries the real Raw/OpByteOffsets byte
// spans the gas injector's splicing logic depends on.
func buildSingleFuncModule(t *testing.T, ops []byte) *analysis.Module {
	t.Helper()
	var b []byte
	b = append(b, 0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00)

	typeSec := []byte{0x01, 0x60, 0x00, 0x00}
	b = append(b, 0x01, byte(len(typeSec)))
	b = append(b, typeSec...)

	funcSec := []byte{0x01, 0x00}
	b = append(b, 0x03, byte(len(funcSec)))
	b = append(b, funcSec...)

	memSec := []byte{0x01, 0x00, 0x01}
	b = append(b, 0x05, byte(len(memSec)))
	b = append(b, memSec...)

	exportSec := []byte{0x01, byte(len("run")), 'r', 'u', 'n', 0x00, 0x00}
	b = append(b, 0x07, byte(len(exportSec)))
	b = append(b, exportSec...)

	body := append([]byte{0x00}, ops...) // 0 local groups, then the op stream
	codeSec := append([]byte{0x01, byte(len(body))}, body...)
	b = append(b, 0x0A, byte(len(codeSec)))
	b = append(b, codeSec...)

	m, err := analysis.Parse(b)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return m
}

func TestGasIsDeterministic(t *testing.T) {
	m := buildSingleFuncModule(t, []byte{
		0x41, 0x01, // i32.const 1
		0x1A,       // drop
		0x10, 0x00, // call 0 (self-call, just exercising index rewriting)
		0x0B, // end
	})
	limits := Limits{StackHeightCap: 2048}

	r1, err := Gas(m, limits)
	if err != nil {
		t.Fatalf("Gas: %v", err)
	}
	r2, err := Gas(m, limits)
	if err != nil {
		t.Fatalf("Gas: %v", err)
	}
	if !bytes.Equal(r1.Wasm, r2.Wasm) {
		t.Fatalf("non-deterministic instrumented bytes")
	}
	if len(r1.BlockCosts) != len(r2.BlockCosts) {
		t.Fatalf("non-deterministic block count: %v vs %v", r1.BlockCosts, r2.BlockCosts)
	}
	for i := range r1.BlockCosts {
		if r1.BlockCosts[i] != r2.BlockCosts[i] {
			t.Fatalf("non-deterministic cost at block %d: %d vs %d", i, r1.BlockCosts[i], r2.BlockCosts[i])
		}
	}
}

func TestGasInstrumentedModuleReparses(t *testing.T) {
	m := buildSingleFuncModule(t, []byte{
		0x41, 0x01, // i32.const 1
		0x1A, // drop
		0x0B, // end
	})
	result, err := Gas(m, Limits{StackHeightCap: 2048})
	if err != nil {
		t.Fatalf("Gas: %v", err)
	}

	reparsed, err := analysis.Parse(result.Wasm)
	if err != nil {
		t.Fatalf("instrumented module failed to re-parse: %v", err)
	}
	foundGasImport := false
	for _, imp := range reparsed.Imports {
		if imp.Module == "env" && imp.Name == "gas" {
			foundGasImport = true
		}
	}
	if !foundGasImport {
		t.Fatalf("instrumented module does not declare an env.gas import: %+v", reparsed.Imports)
	}
	// The gas import must occupy function index 0: the sole export
	// ("run", originally index 0) must have shifted to index 1.
	exported := reparsed.ExportedFuncNames()
	if idx, ok := exported["run"]; !ok || idx != 1 {
		t.Fatalf("expected export \"run\" shifted to func index 1, got %v (ok=%v)", idx, ok)
	}
	if len(result.BlockCosts) == 0 {
		t.Fatalf("expected at least one charged block")
	}
}

func TestGasRejectsExcessiveStackHeight(t *testing.T) {
	ops := make([]byte, 0, 21)
	for i := 0; i < 10; i++ {
		ops = append(ops, 0x41, 0x01) // i32.const 1: pushes, never pops
	}
	ops = append(ops, 0x0B) // end
	m := buildSingleFuncModule(t, ops)
	_, err := Gas(m, Limits{StackHeightCap: 5})
	if err == nil {
		t.Fatal("expected stack height rejection")
	}
}

func TestGasRejectsElementSegment(t *testing.T) {
	m := buildSingleFuncModule(t, []byte{0x0B})
	m.RawElement = []byte{0x00}
	if _, err := Gas(m, Limits{StackHeightCap: 2048}); err == nil {
		t.Fatal("expected rejection of a module with an element segment")
	}
}
