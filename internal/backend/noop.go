package backend

import (
	"context"
	"fmt"

	"github.com/empower1/wasmvm/internal/types"
)

// NoopQuerier answers every QueryRaw with NoSuchContract. It is the
// Querier a standalone caller (cmd/wasmvmd's local-dev mode, a unit test
// that never exercises cross-contract queries) wires in when no chain
// context exists to recurse back into.
type NoopQuerier struct{}

var _ Querier = NoopQuerier{}

func (NoopQuerier) QueryRaw(_ context.Context, request []byte, gasRemaining uint64) ([]byte, uint64, error) {
	return nil, 0, types.NoSuchContractErrorf(fmt.Sprintf("no chain query backend wired for request %x", request))
}
