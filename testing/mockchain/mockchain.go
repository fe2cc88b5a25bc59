// Package mockchain is the "fake chain" harness scenario and integration
// tests reach for instead of a live embedding host: JSON Env/Info
// builders, a ready-to-use backend.Backend wired over the same in-memory
// Storage and crypto Api the reference implementation ships, and a
// minimal hand-assembled Wasm fixture satisfying §4.2's required exports
// for tests that only need a module to load and instantiate, not to
// execute meaningful contract logic.
//
// Grounded on the teacher's treatment of test fixtures as small, local,
// hand-built helpers (no fixture framework) — see
// internal/analysis/analysis_test.go's minimalModule — generalized into a
// reusable package so internal/cache and internal/instance tests share
// one fixture instead of each carrying a copy.
package mockchain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/empower1/wasmvm/internal/backend"
	"github.com/empower1/wasmvm/internal/backend/cryptoimpl"
	"github.com/empower1/wasmvm/internal/backend/memdb"
	"go.uber.org/zap"
)

// Coin mirrors the {denom, amount} shape CosmWasm-style contracts expect
// inside MessageInfo.funds.
type Coin struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

// EnvOptions customizes Env's fields; zero value produces a deterministic,
// arbitrary-but-stable block 1 environment.
type EnvOptions struct {
	ChainID         string
	Height          uint64
	Time            time.Time
	ContractAddress string
}

// Env builds the JSON payload passed as every entry point's first
// argument (spec §4.7): chain/block metadata plus the called contract's
// own address, exactly as the contract itself defines and parses it — the
// VM never inspects these bytes, only relays them.
func Env(opts EnvOptions) []byte {
	if opts.ChainID == "" {
		opts.ChainID = "mockchain-1"
	}
	if opts.Height == 0 {
		opts.Height = 1
	}
	if opts.Time.IsZero() {
		opts.Time = time.Unix(1_700_000_000, 0).UTC()
	}
	if opts.ContractAddress == "" {
		opts.ContractAddress = "mock1contractaddraaaaaaaaaaaaaaaaaaaaaaaaaa"
	}

	env := map[string]interface{}{
		"block": map[string]interface{}{
			"height":   opts.Height,
			"time":     fmt.Sprintf("%d", opts.Time.UnixNano()),
			"chain_id": opts.ChainID,
		},
		"contract": map[string]interface{}{
			"address": opts.ContractAddress,
		},
	}
	raw, err := json.Marshal(env)
	if err != nil {
		panic(fmt.Sprintf("mockchain: failed to marshal Env: %v", err))
	}
	return raw
}

// Info builds the JSON MessageInfo payload carrying the caller's address
// and any attached funds.
func Info(sender string, funds ...Coin) []byte {
	if sender == "" {
		sender = "mock1senderaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	}
	if funds == nil {
		funds = []Coin{}
	}
	raw, err := json.Marshal(map[string]interface{}{
		"sender": sender,
		"funds":  funds,
	})
	if err != nil {
		panic(fmt.Sprintf("mockchain: failed to marshal MessageInfo: %v", err))
	}
	return raw
}

// Backend wires a fresh backend.Backend over the production memdb.Store
// and cryptoimpl.Api with a NoopQuerier, the same trio cmd/wasmvmd's local
// "call" command uses — a real implementation standing in for a chain,
// not a mock in the stub-everything sense.
func Backend(logger *zap.SugaredLogger) backend.Backend {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return backend.Backend{
		Storage: memdb.NewStore(logger),
		Api:     cryptoimpl.Api{},
		Querier: backend.NoopQuerier{},
	}
}
