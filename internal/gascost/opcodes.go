// Package gascost is the flat cost table the gas injector (internal/instrument)
// and the host-import surface (internal/imports) both consult, grounded on
// the teacher's internal/vm.GasTank single-flat-cost model (spec §4.3
// "Opcode costs are a flat table") generalized from one constant per host
// call into a table keyed by opcode/import name.
package gascost

// Opcode is a byte-sized Wasm opcode, as read by internal/analysis.
type Opcode byte

// Default per-opcode cost, in gas points, for the handful of opcode
// classes the injector distinguishes (spec §4.3: "each simple op = 1 unit;
// calls, memory grows, and complex ops weighted higher"). Most opcodes
// fall back to CostSimple.
const (
	CostSimple     uint64 = 1
	CostCall       uint64 = 8
	CostCallIndirect uint64 = 10
	CostMemoryGrow uint64 = 1000
	CostMemoryOp   uint64 = 3
	CostDiv        uint64 = 4
	CostGlobalOp   uint64 = 2
)

// Well-known opcode bytes the injector special-cases. Not an exhaustive
// Wasm opcode list — only the ones whose cost differs from CostSimple.
const (
	OpCall         Opcode = 0x10
	OpCallIndirect Opcode = 0x11
	OpMemoryGrow   Opcode = 0x40
	OpMemorySize   Opcode = 0x3F
	OpI32Load      Opcode = 0x28
	OpI64Load      Opcode = 0x29
	OpI32Store     Opcode = 0x36
	OpI64Store     Opcode = 0x37
	OpI32DivS      Opcode = 0x6D
	OpI32DivU      Opcode = 0x6E
	OpI64DivS      Opcode = 0x7F
	OpI64DivU      Opcode = 0x80
	OpGlobalGet    Opcode = 0x23
	OpGlobalSet    Opcode = 0x24
)

// CostOf returns the gas-point cost of executing a single instance of op.
func CostOf(op Opcode) uint64 {
	switch op {
	case OpCall:
		return CostCall
	case OpCallIndirect:
		return CostCallIndirect
	case OpMemoryGrow:
		return CostMemoryGrow
	case OpI32Load, OpI64Load, OpI32Store, OpI64Store:
		return CostMemoryOp
	case OpI32DivS, OpI32DivU, OpI64DivS, OpI64DivU:
		return CostDiv
	case OpGlobalGet, OpGlobalSet:
		return CostGlobalOp
	default:
		return CostSimple
	}
}

// BlockCost sums the per-opcode cost of every instruction in a basic
// block. The injector calls this once per block at instrumentation time
// and bakes the resulting constant into a `gas(cost)` call inserted at the
// block's head (spec §4.3 bullet 1).
func BlockCost(ops []Opcode) uint64 {
	var total uint64
	for _, op := range ops {
		total += CostOf(op)
	}
	return total
}
