package instance

import (
	"encoding/json"
	"fmt"

	"github.com/empower1/wasmvm/internal/analysis"
	"github.com/empower1/wasmvm/internal/backend"
	"github.com/empower1/wasmvm/internal/environment"
	"github.com/empower1/wasmvm/internal/imports"
	"github.com/empower1/wasmvm/internal/types"
	"github.com/wasmerio/wasmer-go/wasmer"
	"go.uber.org/zap"
)

// CallParams is everything one dispatch needs beyond the Code itself:
// the entry point, its JSON inputs, the backend for this call, and the
// host gas limit (in host units — Call applies GasMultiplier itself, per
// §4.7 step 2).
type CallParams struct {
	Entry    types.EntryPoint
	Env      []byte
	Info     []byte // nil for ClassEnvMsg/ClassEnvOnly
	Msg      []byte // nil for ClassEnvOnly
	Backend  backend.Backend
	GasLimit uint64
	Logger   *zap.SugaredLogger
}

// CallResult is the §4.7 step 7 output: the decoded envelope plus the
// final gas accounting.
type CallResult struct {
	Result    types.ContractResult
	GasReport types.GasReport
}

// Call runs the full dispatch procedure from spec §4.7 against an
// already-compiled Code: construct Environment, instantiate, write
// inputs, invoke the typed export, decode the envelope, and report gas.
// One Instance — one wasmer engine, store, module, and Environment — is
// built and disposed per call, matching the teacher's per-execution
// isolation in VMService.ExecuteContract.
func Call(code *Code, cfg types.Config, params CallParams) (CallResult, error) {
	class, ok := types.ClassOf(params.Entry)
	if !ok || !hasEntryPoint(code.Report, params.Entry) {
		return CallResult{}, types.UserErrorf(fmt.Sprintf("no such entry point %q", params.Entry), nil)
	}
	inputs, err := buildInputList(class, params)
	if err != nil {
		return CallResult{}, types.UserErrorf("malformed call inputs", err)
	}

	readOnly := types.ReadOnly(params.Entry)
	initialGas := params.GasLimit * cfg.GasMultiplier
	env := environment.New(params.Backend, params.Logger, readOnly, initialGas, environment.DefaultLimits())

	engine := wasmer.NewEngine()
	store := wasmer.NewStore(engine)
	defer store.Close()

	module, err := wasmer.NewModule(store, code.Wasm)
	if err != nil {
		return CallResult{}, types.CompilationErrorf("engine rejected an already-validated module", err)
	}
	defer module.Close()

	henv := &hostEnv{env: env}
	importObject := buildImportObject(store, henv)

	inst, err := wasmer.NewInstance(module, importObject)
	if err != nil {
		return CallResult{}, types.InstantiationErrorf("failed to instantiate module", err)
	}
	defer inst.Close()

	if henv.memory == nil {
		return CallResult{}, types.InstantiationErrorf("exported memory missing after instantiation", nil)
	}

	var regionPtrs []uint32
	for _, payload := range inputs {
		ptr, err := imports.WriteRegion(henv.memory, henv.alloc, payload)
		if err != nil {
			return CallResult{}, types.InstantiationErrorf("failed to write call input into guest memory", err)
		}
		regionPtrs = append(regionPtrs, ptr)
	}
	defer func() {
		for _, ptr := range regionPtrs {
			callDeallocate(inst, ptr)
		}
	}()

	exportFn, err := inst.Exports.GetFunction(string(params.Entry))
	if err != nil {
		return CallResult{}, types.InstantiationErrorf(fmt.Sprintf("export %q not found", params.Entry), err)
	}

	args := make([]interface{}, len(regionPtrs))
	for i, ptr := range regionPtrs {
		args[i] = int32(ptr)
	}
	raw, callErr := exportFn(args...)
	if callErr != nil {
		return CallResult{GasReport: env.GasReport()}, classifyCallErr(callErr)
	}

	resultPtr, ok := raw.(int32)
	if !ok {
		return CallResult{GasReport: env.GasReport()}, types.TrapErrorf("entry point did not return an i32 region pointer", nil)
	}
	defer callDeallocate(inst, uint32(resultPtr))

	output, err := imports.ReadRegion(henv.memory, uint32(resultPtr))
	if err != nil {
		return CallResult{GasReport: env.GasReport()}, types.TrapErrorf("failed to read result region", err)
	}

	var result types.ContractResult
	if err := json.Unmarshal(output, &result); err != nil {
		return CallResult{GasReport: env.GasReport()}, types.TrapErrorf("malformed envelope returned by guest", err)
	}
	return CallResult{Result: result, GasReport: env.GasReport()}, nil
}

func hasEntryPoint(report analysis.Report, entry types.EntryPoint) bool {
	for _, ep := range report.EntryPoints {
		if ep == entry {
			return true
		}
	}
	return false
}

// buildInputList assembles the ordered Region payloads for the entry
// point's signature class, per the §4.7 table.
func buildInputList(class types.SignatureClass, params CallParams) ([][]byte, error) {
	switch class {
	case types.ClassEnvInfoMsg:
		if params.Env == nil || params.Info == nil || params.Msg == nil {
			return nil, fmt.Errorf("entry point requires env, info, and msg")
		}
		return [][]byte{params.Env, params.Info, params.Msg}, nil
	case types.ClassEnvMsg:
		if params.Env == nil || params.Msg == nil {
			return nil, fmt.Errorf("entry point requires env and msg")
		}
		return [][]byte{params.Env, params.Msg}, nil
	default:
		if params.Env == nil {
			return nil, fmt.Errorf("entry point requires env")
		}
		return [][]byte{params.Env}, nil
	}
}
