package instrument

import (
	"fmt"

	"github.com/empower1/wasmvm/internal/analysis"
	"github.com/empower1/wasmvm/internal/gascost"
)

// wasmMagicVersion is the eight-byte preamble every Wasm binary starts
// with: magic number then binary format version 1, matching
// testing/mockchain.MinimalWasm's hand-assembled fixtures.
var wasmMagicVersion = []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}

// appendULEB appends v to buf as unsigned LEB128, the encoding the Wasm
// binary format uses for every count, index, and section size.
func appendULEB(buf []byte, v uint64) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			buf = append(buf, b|0x80)
			continue
		}
		buf = append(buf, b)
		return buf
	}
}

// appendSLEB appends v to buf as signed LEB128, used for the i64.const
// immediate of each injected gas charge.
func appendSLEB(buf []byte, v int64) []byte {
	more := true
	for more {
		b := byte(v & 0x7f)
		v >>= 7
		signBitSet := b&0x40 != 0
		if (v == 0 && !signBitSet) || (v == -1 && signBitSet) {
			more = false
		} else {
			b |= 0x80
		}
		buf = append(buf, b)
	}
	return buf
}

// readULEB reads one unsigned LEB128 value from the front of buf,
// returning the value and how many bytes it occupied.
func readULEB(buf []byte) (uint64, int) {
	var result uint64
	var shift uint
	for i, b := range buf {
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, i + 1
		}
		shift += 7
	}
	return result, len(buf)
}

// appendSection frames payload as section id, wrapping it with the
// required ULEB128 byte-length prefix.
func appendSection(out []byte, id analysis.SectionID, payload []byte) []byte {
	out = append(out, byte(id))
	out = appendULEB(out, uint64(len(payload)))
	return append(out, payload...)
}

func appendName(buf []byte, name string) []byte {
	buf = appendULEB(buf, uint64(len(name)))
	return append(buf, name...)
}

// encodeFuncType encodes one type-section entry: the 0x60 function-type
// tag followed by the param and result value-type vectors.
func encodeFuncType(ft analysis.FuncType) []byte {
	buf := []byte{0x60}
	buf = appendULEB(buf, uint64(len(ft.Params)))
	for _, p := range ft.Params {
		buf = append(buf, byte(p))
	}
	buf = appendULEB(buf, uint64(len(ft.Results)))
	for _, r := range ft.Results {
		buf = append(buf, byte(r))
	}
	return buf
}

func encodeTypeSection(types []analysis.FuncType) []byte {
	payload := appendULEB(nil, uint64(len(types)))
	for _, t := range types {
		payload = append(payload, encodeFuncType(t)...)
	}
	return payload
}

// appendImportEntry encodes one import-section entry. Every import that
// reaches the injector is a function import — analysis.Validate already
// rejects table/memory/global imports (spec §4.2) — so kind is always
// KindFunc in practice; the kind byte is still written explicitly rather
// than hard-coded, matching the general import-entry shape.
func appendImportEntry(buf []byte, imp analysis.Import) []byte {
	buf = appendName(buf, imp.Module)
	buf = appendName(buf, imp.Name)
	buf = append(buf, byte(imp.Kind))
	if imp.Kind == analysis.KindFunc {
		buf = appendULEB(buf, uint64(imp.TypeIndex))
	}
	return buf
}

func encodeImportSection(gasModule, gasName string, gasTypeIdx uint32, imports []analysis.Import) []byte {
	payload := appendULEB(nil, uint64(len(imports)+1))
	payload = appendImportEntry(payload, analysis.Import{
		Module: gasModule, Name: gasName, Kind: analysis.KindFunc, TypeIndex: gasTypeIdx,
	})
	for _, imp := range imports {
		payload = appendImportEntry(payload, imp)
	}
	return payload
}

func encodeFunctionSection(funcTypeIdx []uint32) []byte {
	payload := appendULEB(nil, uint64(len(funcTypeIdx)))
	for _, idx := range funcTypeIdx {
		payload = appendULEB(payload, uint64(idx))
	}
	return payload
}

// encodeExportSection rebuilds the export vector, shifting every
// KindFunc index by +1 to account for the gas import prepended at
// function index 0 (every other export index space is untouched since
// only a function import was inserted).
func encodeExportSection(exports []analysis.Export) []byte {
	payload := appendULEB(nil, uint64(len(exports)))
	for _, e := range exports {
		payload = appendName(payload, e.Name)
		payload = append(payload, byte(e.Kind))
		idx := e.Index
		if e.Kind == analysis.KindFunc {
			idx++
		}
		payload = appendULEB(payload, uint64(idx))
	}
	return payload
}

func encodeCodeSection(bodies [][]byte) []byte {
	payload := appendULEB(nil, uint64(len(bodies)))
	for _, body := range bodies {
		payload = appendULEB(payload, uint64(len(body)))
		payload = append(payload, body...)
	}
	return payload
}

// rewriteFuncBody reproduces body's bytes with a `i64.const cost; call
// gasFuncIdx` charge spliced in at the head of every basic block
// (spec §4.3 bullet 1), and every `call` operand's function index bumped
// by 1 to account for the gas import occupying index 0. It reuses
// parseFuncBody's already-correct per-opcode byte spans (body.Raw /
// body.OpByteOffsets) instead of re-deriving immediate-length rules.
func rewriteFuncBody(body analysis.FuncBody, limits Limits, gasFuncIdx uint32) ([]byte, []uint64, error) {
	if height := staticStackHeight(body); height > limits.StackHeightCap {
		return nil, nil, fmt.Errorf("%w: height %d exceeds cap %d", ErrStackTooDeep, height, limits.StackHeightCap)
	}

	type blockSegment struct {
		opStart int
		cost    uint64
	}
	var segments []blockSegment
	start := 0
	for _, boundary := range body.BlockStarts {
		if boundary <= start || boundary > len(body.Ops) {
			continue
		}
		segments = append(segments, blockSegment{opStart: start, cost: gascost.BlockCost(body.Ops[start:boundary])})
		start = boundary
	}
	if start < len(body.Ops) {
		segments = append(segments, blockSegment{opStart: start, cost: gascost.BlockCost(body.Ops[start:])})
	}

	out := append([]byte{}, body.Raw[:body.OpsByteOffset]...)
	costs := make([]uint64, 0, len(segments))
	seg := 0
	for opIdx := 0; opIdx <= len(body.Ops); opIdx++ {
		if seg < len(segments) && segments[seg].opStart == opIdx {
			out = append(out, 0x42) // i64.const
			out = appendSLEB(out, int64(segments[seg].cost))
			out = append(out, 0x10) // call
			out = appendULEB(out, uint64(gasFuncIdx))
			costs = append(costs, segments[seg].cost)
			seg++
		}
		if opIdx == len(body.Ops) {
			break
		}

		opStart := body.OpByteOffsets[opIdx]
		opEnd := len(body.Raw)
		if opIdx+1 < len(body.Ops) {
			opEnd = body.OpByteOffsets[opIdx+1]
		}
		opBytes := body.Raw[opStart:opEnd]

		if body.Ops[opIdx] == gascost.OpCall {
			callIdx, _ := readULEB(opBytes[1:])
			out = append(out, 0x10)
			out = appendULEB(out, callIdx+1)
			continue
		}
		out = append(out, opBytes...)
	}
	return out, costs, nil
}
