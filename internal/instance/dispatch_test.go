package instance

import (
	"testing"

	"github.com/empower1/wasmvm/internal/types"
)

func TestBuildInputListEnvInfoMsg(t *testing.T) {
	params := CallParams{Env: []byte("e"), Info: []byte("i"), Msg: []byte("m")}
	got, err := buildInputList(types.ClassEnvInfoMsg, params)
	if err != nil {
		t.Fatalf("buildInputList: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 inputs, got %d", len(got))
	}
}

func TestBuildInputListRejectsMissingMsg(t *testing.T) {
	params := CallParams{Env: []byte("e"), Info: []byte("i")}
	if _, err := buildInputList(types.ClassEnvInfoMsg, params); err == nil {
		t.Fatal("expected error for missing msg")
	}
}

func TestBuildInputListEnvOnly(t *testing.T) {
	params := CallParams{Env: []byte("e")}
	got, err := buildInputList(types.ClassEnvOnly, params)
	if err != nil {
		t.Fatalf("buildInputList: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 input, got %d", len(got))
	}
}

func TestClassifyCallErrPreservesOutOfGas(t *testing.T) {
	err := classifyCallErr(types.OutOfGasError())
	if !types.IsOutOfGas(err) {
		t.Fatalf("expected OutOfGas to survive classification, got %v", err)
	}
}

func TestClassifyCallErrWrapsUnknownAsTrap(t *testing.T) {
	err := classifyCallErr(errPlain("division by zero"))
	ve, ok := err.(*types.VMError)
	if !ok {
		t.Fatalf("expected *types.VMError, got %T", err)
	}
	if ve.Kind != types.KindTrap {
		t.Fatalf("expected KindTrap, got %v", ve.Kind)
	}
}

type errPlain string

func (e errPlain) Error() string { return string(e) }

func TestWrapPanicConvertsToBackendError(t *testing.T) {
	var err error
	func() {
		defer wrapPanic("test_import", &err)
		panic("boom")
	}()
	ve, ok := err.(*types.VMError)
	if !ok {
		t.Fatalf("expected *types.VMError, got %T", err)
	}
	if ve.Kind != types.KindBackend {
		t.Fatalf("expected KindBackend, got %v", ve.Kind)
	}
}
