package cache

import (
	"encoding/json"
	"fmt"

	"github.com/empower1/wasmvm/internal/analysis"
	"github.com/empower1/wasmvm/internal/instance"
	"github.com/empower1/wasmvm/internal/types"
)

// onDiskCode is the on-disk shape of a cached Code record. It stores the
// gas-instrumented Wasm bytes (see instance.Code.Wasm) plus the
// already-computed analysis results rather than a wasmer-native
// serialized module: wasmer-go's own
// Module.Serialize ties the artifact to the exact engine build that
// produced it with no portable versioning hook the cache can check before
// deserializing, where re-running wasmer.NewModule over cached Wasm bytes
// is itself cheap relative to the C2/C3 passes this record lets a reader
// skip. Stale-layout reuse is gated by the path: Cache.diskPath places
// every artifact under its layout-version and fingerprint directories, so
// a changed fingerprint looks in a different directory and finds nothing,
// matching spec §4.8's "stale entries (fingerprint mismatch) are skipped."
type onDiskCode struct {
	Wasm         []byte              `json:"wasm"`
	Checksum     string              `json:"checksum"`
	EntryPoints  []types.EntryPoint  `json:"entry_points"`
	Capabilities []types.Capability  `json:"capabilities"`
	BlockCosts   []uint64            `json:"block_costs"`
}

func encodeSerializedCode(code *instance.Code) ([]byte, error) {
	caps := make([]types.Capability, 0, len(code.Report.Capabilities))
	for c := range code.Report.Capabilities {
		caps = append(caps, c)
	}
	rec := onDiskCode{
		Wasm:         code.Wasm,
		Checksum:     code.Checksum.String(),
		EntryPoints:  code.Report.EntryPoints,
		Capabilities: caps,
		BlockCosts:   code.BlockCosts,
	}
	return json.Marshal(rec)
}

func decodeSerializedCode(raw []byte) (*instance.Code, error) {
	var rec onDiskCode
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("cache: malformed on-disk artifact: %w", err)
	}
	checksum, err := types.ChecksumFromHex(rec.Checksum)
	if err != nil {
		return nil, err
	}
	return &instance.Code{
		Wasm:     rec.Wasm,
		Checksum: checksum,
		Report: analysis.Report{
			EntryPoints:  rec.EntryPoints,
			Capabilities: types.NewCapabilitySet(rec.Capabilities...),
		},
		BlockCosts: rec.BlockCosts,
	}, nil
}
