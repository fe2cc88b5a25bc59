package imports

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/empower1/wasmvm/internal/environment"
	"github.com/empower1/wasmvm/internal/types"
)

// Query implements query_chain(request_ptr) -> response_region (spec
// §4.6 "Query"): a synchronous, depth-capped cross-contract/host query
// whose response is always the two-level envelope from
// internal/types.QuerierResult so the guest can distinguish a system
// error from a completed (possibly contract-erroring) query.
type Query struct {
	Env *environment.Environment
	Mem Memory
}

func (q Query) QueryChain(alloc Allocator, requestPtr uint32) (uint32, error) {
	request, err := ReadRegion(q.Mem, requestPtr)
	if err != nil {
		return 0, fmt.Errorf("query_chain: %w", err)
	}

	release, depthErr := q.Env.EnterQuery(context.Background())
	if depthErr != nil {
		return writeQuerierResult(q.Mem, alloc, types.QuerierResult{
			Err: &types.SystemError{ExceededRecursionLimit: &types.ExceededRecursionLimitError{}},
		})
	}
	defer release()

	gasReport := q.Env.GasReport()
	response, gasUsed, queryErr := q.Env.Backend.Querier.QueryRaw(context.Background(), request, gasReport.Remaining)
	q.Env.ChargeExternal(gasUsed)
	if queryErr != nil {
		return writeQuerierResult(q.Mem, alloc, types.QuerierResult{
			Err: &types.SystemError{InvalidRequest: &types.InvalidRequestError{Err: queryErr.Error(), Request: request}},
		})
	}

	var contractResult types.ContractResult
	if err := json.Unmarshal(response, &contractResult); err != nil {
		return writeQuerierResult(q.Mem, alloc, types.QuerierResult{
			Err: &types.SystemError{InvalidRequest: &types.InvalidRequestError{Err: "malformed query response", Request: request}},
		})
	}
	return writeQuerierResult(q.Mem, alloc, types.QuerierResult{Ok: &contractResult})
}

func writeQuerierResult(mem Memory, alloc Allocator, result types.QuerierResult) (uint32, error) {
	encoded, err := json.Marshal(result)
	if err != nil {
		return 0, fmt.Errorf("query_chain: failed to encode response envelope: %w", err)
	}
	return WriteRegion(mem, alloc, encoded)
}
