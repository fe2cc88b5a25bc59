package types

// GasMultiplierDefault converts host gas units into internal "gas points"
// (spec §3 "Gas", §6 "gas_multiplier"). 150 matches the reference CosmWasm
// deployment value; hosts may override it via Config.
const GasMultiplierDefault = 150

// GasInfo is returned by every Backend operation (spec §4.4): Cost is
// charged against the Wasm-op gas meter, ExternallyUsed is tallied
// separately and only reported back to the host at the end of the call.
type GasInfo struct {
	Cost           uint64
	ExternallyUsed uint64
}

// GasInfoFree is the zero-cost GasInfo returned by operations the spec
// defines as free (e.g. reporting an already-computed value).
var GasInfoFree = GasInfo{}

// WithCost builds a GasInfo charging only the Wasm gas meter.
func WithCost(cost uint64) GasInfo {
	return GasInfo{Cost: cost}
}

// WithExternalUse builds a GasInfo charging only the external counter,
// e.g. backend work whose cost is reported after the fact.
func WithExternalUse(used uint64) GasInfo {
	return GasInfo{ExternallyUsed: used}
}

// GasReport is the structural split of a call's final gas accounting
// (SPEC_FULL §3): the two counters spec.md requires to exist, surfaced as
// a named type instead of a single summed "gas_used" so hosts that care
// about the internal/external split do not have to re-derive it.
type GasReport struct {
	Limit          uint64
	UsedInternally uint64
	UsedExternally uint64
	Remaining      uint64
}

// Used returns the total gas consumed, the value spec §4.7 step 7 calls
// gas_used.
func (g GasReport) Used() uint64 {
	return g.UsedInternally + g.UsedExternally
}
