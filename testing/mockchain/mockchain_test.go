package mockchain

import (
	"encoding/json"
	"testing"

	"github.com/empower1/wasmvm/internal/analysis"
	"github.com/empower1/wasmvm/internal/types"
)

func TestMinimalWasmParsesAndValidates(t *testing.T) {
	wasm := MinimalWasm("execute", "query")
	m, err := analysis.Parse(wasm)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	report, err := analysis.Validate(m, len(wasm), types.DefaultConfig())
	if err != nil {
		t.Fatalf("Validate rejected the fixture: %v", err)
	}

	want := map[types.EntryPoint]bool{types.EntryExecute: false, types.EntryQuery: false}
	for _, ep := range report.EntryPoints {
		if _, ok := want[ep]; ok {
			want[ep] = true
		}
	}
	for ep, found := range want {
		if !found {
			t.Fatalf("expected entry point %q in report, got %v", ep, report.EntryPoints)
		}
	}
}

func TestEnvAndInfoProduceValidJSON(t *testing.T) {
	env := Env(EnvOptions{ChainID: "test-1", Height: 42})
	var decoded map[string]interface{}
	if err := json.Unmarshal(env, &decoded); err != nil {
		t.Fatalf("Env did not produce valid JSON: %v", err)
	}
	block, ok := decoded["block"].(map[string]interface{})
	if !ok {
		t.Fatal("expected a block object in Env")
	}
	if block["chain_id"] != "test-1" {
		t.Fatalf("chain_id = %v, want test-1", block["chain_id"])
	}

	info := Info("mock1sender", Coin{Denom: "utest", Amount: "100"})
	var decodedInfo map[string]interface{}
	if err := json.Unmarshal(info, &decodedInfo); err != nil {
		t.Fatalf("Info did not produce valid JSON: %v", err)
	}
	if decodedInfo["sender"] != "mock1sender" {
		t.Fatalf("sender = %v, want mock1sender", decodedInfo["sender"])
	}
}

func TestBackendImplementsAllThreeServices(t *testing.T) {
	b := Backend(nil)
	if b.Storage == nil || b.Api == nil || b.Querier == nil {
		t.Fatal("expected every backend service to be non-nil")
	}
}
