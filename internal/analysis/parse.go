package analysis

import (
	"bytes"
	"fmt"

	"github.com/empower1/wasmvm/internal/gascost"
)

var wasmMagic = []byte{0x00, 0x61, 0x73, 0x6D}
var wasmVersion = []byte{0x01, 0x00, 0x00, 0x00}

// Parse decodes a Wasm binary's section structure into a Module. It does
// not validate policy (that is Validate's job) — it only turns
// bytes into structured data, failing with ErrTruncated-wrapped errors on
// anything that does not parse as well-formed Wasm.
func Parse(wasm []byte) (*Module, error) {
	if len(wasm) < 8 {
		return nil, fmt.Errorf("%w: module shorter than header", ErrTruncated)
	}
	if !bytes.Equal(wasm[0:4], wasmMagic) {
		return nil, fmt.Errorf("%w: bad magic number", ErrTruncated)
	}
	if !bytes.Equal(wasm[4:8], wasmVersion) {
		return nil, fmt.Errorf("%w: unsupported wasm version", ErrTruncated)
	}

	r := newByteReader(wasm[8:])
	m := &Module{}
	var lastNonCustom SectionID = 0

	for r.remaining() > 0 {
		idByte, err := r.byte()
		if err != nil {
			return nil, err
		}
		id := SectionID(idByte)
		size, err := r.u32LEB()
		if err != nil {
			return nil, fmt.Errorf("section %d: %w", id, err)
		}
		body, err := r.bytes(int(size))
		if err != nil {
			return nil, fmt.Errorf("section %d: %w", id, err)
		}
		sr := newByteReader(body)

		if id != SecCustom {
			if id <= lastNonCustom {
				return nil, fmt.Errorf("%w: section %d out of order", ErrTruncated, id)
			}
			lastNonCustom = id
		}

		switch id {
		case SecCustom:
			if err := parseCustom(sr, m); err != nil {
				return nil, err
			}
		case SecType:
			if err := parseTypeSection(sr, m); err != nil {
				return nil, err
			}
		case SecImport:
			if err := parseImportSection(sr, m); err != nil {
				return nil, err
			}
		case SecFunction:
			if err := parseFunctionSection(sr, m); err != nil {
				return nil, err
			}
		case SecTable:
			count, err := sr.u32LEB()
			if err != nil {
				return nil, err
			}
			m.Tables = int(count)
			m.RawTable = body
		case SecMemory:
			count, err := sr.u32LEB()
			if err != nil {
				return nil, err
			}
			m.Memories = int(count)
			m.RawMemory = body
		case SecGlobal:
			if err := parseGlobalSection(sr, m); err != nil {
				return nil, err
			}
			m.RawGlobal = body
		case SecExport:
			if err := parseExportSection(sr, m); err != nil {
				return nil, err
			}
		case SecStart:
			m.HasStart = true
		case SecElement:
			// Contents are not needed for policy checks beyond the
			// section's mere presence with table growth, which §4.2
			// disallows by rejecting table imports/multi-table instead.
			// Retained raw so the gas injector can refuse to instrument a
			// module it would otherwise corrupt (see internal/instrument).
			m.RawElement = body
		case SecCode:
			if err := parseCodeSection(sr, m); err != nil {
				return nil, err
			}
		case SecData:
			m.RawData = body
		case SecDataCount:
			m.RawDataCount = body
		default:
			return nil, fmt.Errorf("%w: unknown section id %d", ErrTruncated, id)
		}
	}

	for _, imp := range m.Imports {
		if imp.Kind == KindMemory {
			m.MemoryImported = true
		}
	}
	return m, nil
}

func parseCustom(r *byteReader, m *Module) error {
	name, err := r.name()
	if err != nil {
		return err
	}
	if name == "capabilities" {
		m.CapabilityTag = string(r.buf[r.pos:])
	}
	// All other custom sections are stripped per §4.2 ("custom: stripped").
	return nil
}

func parseValType(r *byteReader) (ValType, error) {
	b, err := r.byte()
	if err != nil {
		return 0, err
	}
	switch ValType(b) {
	case ValTypeI32, ValTypeI64, ValTypeF32, ValTypeF64, ValTypeV128, ValTypeFuncRef, ValTypeExternRef:
		return ValType(b), nil
	default:
		return 0, fmt.Errorf("%w: unknown value type 0x%x", ErrTruncated, b)
	}
}

func parseTypeSection(r *byteReader, m *Module) error {
	count, err := r.u32LEB()
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		form, err := r.byte()
		if err != nil {
			return err
		}
		if form != 0x60 {
			return fmt.Errorf("%w: expected func type form 0x60, got 0x%x", ErrTruncated, form)
		}
		nParams, err := r.u32LEB()
		if err != nil {
			return err
		}
		params := make([]ValType, nParams)
		for j := range params {
			if params[j], err = parseValType(r); err != nil {
				return err
			}
		}
		nResults, err := r.u32LEB()
		if err != nil {
			return err
		}
		results := make([]ValType, nResults)
		for j := range results {
			if results[j], err = parseValType(r); err != nil {
				return err
			}
		}
		m.Types = append(m.Types, FuncType{Params: params, Results: results})
	}
	return nil
}

func parseImportSection(r *byteReader, m *Module) error {
	count, err := r.u32LEB()
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		modName, err := r.name()
		if err != nil {
			return err
		}
		fieldName, err := r.name()
		if err != nil {
			return err
		}
		kindByte, err := r.byte()
		if err != nil {
			return err
		}
		imp := Import{Module: modName, Name: fieldName, Kind: ImportKind(kindByte)}
		switch imp.Kind {
		case KindFunc:
			if imp.TypeIndex, err = r.u32LEB(); err != nil {
				return err
			}
		case KindTable:
			if _, err := r.byte(); err != nil { // elem type
				return err
			}
			if err := skipLimits(r); err != nil {
				return err
			}
		case KindMemory:
			if err := skipLimits(r); err != nil {
				return err
			}
		case KindGlobal:
			if _, err := parseValType(r); err != nil {
				return err
			}
			if _, err := r.byte(); err != nil { // mutability
				return err
			}
		default:
			return fmt.Errorf("%w: unknown import kind %d", ErrTruncated, imp.Kind)
		}
		m.Imports = append(m.Imports, imp)
	}
	return nil
}

func skipLimits(r *byteReader) error {
	flags, err := r.byte()
	if err != nil {
		return err
	}
	if _, err := r.u32LEB(); err != nil { // min
		return err
	}
	if flags&0x01 != 0 {
		if _, err := r.u32LEB(); err != nil { // max
			return err
		}
	}
	return nil
}

func parseFunctionSection(r *byteReader, m *Module) error {
	count, err := r.u32LEB()
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		idx, err := r.u32LEB()
		if err != nil {
			return err
		}
		m.FuncTypeIdx = append(m.FuncTypeIdx, idx)
	}
	return nil
}

func parseGlobalSection(r *byteReader, m *Module) error {
	count, err := r.u32LEB()
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		vt, err := parseValType(r)
		if err != nil {
			return err
		}
		mutByte, err := r.byte()
		if err != nil {
			return err
		}
		if err := skipInitExpr(r); err != nil {
			return err
		}
		m.Globals = append(m.Globals, Global{Type: vt, Mutable: mutByte == 1})
	}
	return nil
}

// skipInitExpr scans forward to the terminating 0x0B (end) opcode of a
// constant init expression without evaluating it.
func skipInitExpr(r *byteReader) error {
	for {
		b, err := r.byte()
		if err != nil {
			return err
		}
		if b == 0x0B {
			return nil
		}
		// Skip the opcode's LEB128 immediate, if any; constant
		// expressions only ever use const-class opcodes or global.get.
		switch b {
		case 0x41, 0x23: // i32.const, global.get
			if _, err := r.u32LEB(); err != nil {
				return err
			}
		case 0x42: // i64.const
			if _, err := r.i64SLEB(); err != nil {
				return err
			}
		case 0x43: // f32.const
			if err := r.skip(4); err != nil {
				return err
			}
		case 0x44: // f64.const
			if err := r.skip(8); err != nil {
				return err
			}
		}
	}
}

func parseExportSection(r *byteReader, m *Module) error {
	count, err := r.u32LEB()
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		name, err := r.name()
		if err != nil {
			return err
		}
		kindByte, err := r.byte()
		if err != nil {
			return err
		}
		idx, err := r.u32LEB()
		if err != nil {
			return err
		}
		m.Exports = append(m.Exports, Export{Name: name, Kind: ImportKind(kindByte), Index: idx})
	}
	return nil
}

func parseCodeSection(r *byteReader, m *Module) error {
	count, err := r.u32LEB()
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		bodySize, err := r.u32LEB()
		if err != nil {
			return err
		}
		bodyBytes, err := r.bytes(int(bodySize))
		if err != nil {
			return err
		}
		body, err := parseFuncBody(bodyBytes)
		if err != nil {
			return err
		}
		m.Bodies = append(m.Bodies, body)
	}
	return nil
}

func parseFuncBody(raw []byte) (FuncBody, error) {
	r := newByteReader(raw)
	var body FuncBody

	localGroups, err := r.u32LEB()
	if err != nil {
		return body, err
	}
	for g := uint32(0); g < localGroups; g++ {
		n, err := r.u32LEB()
		if err != nil {
			return body, err
		}
		vt, err := parseValType(r)
		if err != nil {
			return body, err
		}
		if vt.IsFloat() {
			body.UsesFloat = true
		}
		for k := uint32(0); k < n; k++ {
			body.Locals = append(body.Locals, vt)
		}
	}
	body.OpsByteOffset = r.pos

	for r.remaining() > 0 {
		start := r.pos
		opByte, err := r.byte()
		if err != nil {
			return body, err
		}
		op := gascost.Opcode(opByte)
		body.Ops = append(body.Ops, op)
		body.OpByteOffsets = append(body.OpByteOffsets, start)

		switch opByte {
		case 0x02, 0x03, 0x04: // block, loop, if
			if _, err := parseBlockType(r); err != nil {
				return body, err
			}
			body.BlockStarts = append(body.BlockStarts, len(body.Ops))
		case 0x05, 0x0B: // else, end
			body.BlockStarts = append(body.BlockStarts, len(body.Ops))
		case 0x0C, 0x0D: // br, br_if
			if _, err := r.u32LEB(); err != nil {
				return body, err
			}
		case 0x0E: // br_table
			n, err := r.u32LEB()
			if err != nil {
				return body, err
			}
			for i := uint32(0); i <= n; i++ {
				if _, err := r.u32LEB(); err != nil {
					return body, err
				}
			}
		case 0x10: // call
			if _, err := r.u32LEB(); err != nil {
				return body, err
			}
		case 0x11: // call_indirect
			if _, err := r.u32LEB(); err != nil {
				return body, err
			}
			if _, err := r.byte(); err != nil { // table index (reserved)
				return body, err
			}
		case 0x20, 0x21, 0x22, 0x23, 0x24: // local/global get/set/tee
			if _, err := r.u32LEB(); err != nil {
				return body, err
			}
		case 0x28, 0x29, 0x2A, 0x2B, 0x2C, 0x2D, 0x2E, 0x2F,
			0x30, 0x31, 0x32, 0x33, 0x34, 0x35, 0x36, 0x37, 0x38, 0x39, 0x3A, 0x3B, 0x3C, 0x3D, 0x3E: // loads/stores
			if opByte == 0x2A || opByte == 0x2B || opByte == 0x38 || opByte == 0x39 { // f32/f64 load/store
				body.UsesFloat = true
			}
			if _, err := r.u32LEB(); err != nil { // align
				return body, err
			}
			if _, err := r.u32LEB(); err != nil { // offset
				return body, err
			}
		case 0x3F, 0x40: // memory.size, memory.grow
			if _, err := r.byte(); err != nil { // reserved
				return body, err
			}
		case 0x41: // i32.const
			if _, err := r.u32LEB(); err != nil {
				return body, err
			}
		case 0x42: // i64.const
			if _, err := r.i64SLEB(); err != nil {
				return body, err
			}
		case 0x43: // f32.const
			body.UsesFloat = true
			if err := r.skip(4); err != nil {
				return body, err
			}
		case 0x44: // f64.const
			body.UsesFloat = true
			if err := r.skip(8); err != nil {
				return body, err
			}
		case 0xFC: // bulk memory / saturating conversions
			sub, err := r.u32LEB()
			if err != nil {
				return body, err
			}
			if err := skipMiscImmediate(r, sub); err != nil {
				return body, err
			}
		case 0xFD, 0xFE: // SIMD / threads prefixes: rejected by policy,
			// but parsed past so the reader stays aligned for the
			// StaticValidationError to be reported precisely rather
			// than as a truncation.
			if _, err := r.u32LEB(); err != nil {
				return body, err
			}
		default:
			if isFloatArithOpcode(opByte) {
				body.UsesFloat = true
			}
			// No immediate: plain opcode (add, sub, drop, nop, ...).
		}
	}
	body.Raw = raw
	return body, nil
}

func parseBlockType(r *byteReader) (int64, error) {
	// blocktype is either 0x40 (empty), a valtype byte, or a signed LEB128
	// type index. We only need to consume it correctly, not interpret it.
	save := r.pos
	b, err := r.byte()
	if err != nil {
		return 0, err
	}
	switch b {
	case 0x40, byte(ValTypeI32), byte(ValTypeI64), byte(ValTypeF32), byte(ValTypeF64),
		byte(ValTypeV128), byte(ValTypeFuncRef), byte(ValTypeExternRef):
		return 0, nil
	default:
		r.pos = save
		return r.i64SLEB()
	}
}

func skipMiscImmediate(r *byteReader, sub uint32) error {
	switch sub {
	case 8, 9, 0x0C, 0x0E: // memory.init/data.drop/table.init/table.copy-like take two indices
		if _, err := r.u32LEB(); err != nil {
			return err
		}
		if _, err := r.u32LEB(); err != nil {
			return err
		}
	case 0x0A, 0x0B, 0x0D: // memory.copy, memory.fill, table.grow-like take one or two reserved bytes
		if _, err := r.byte(); err != nil {
			return err
		}
		if sub == 0x0A {
			if _, err := r.byte(); err != nil {
				return err
			}
		}
	default:
		// Saturating truncation conversions (sub 0..7) carry no immediate.
	}
	return nil
}

func isFloatArithOpcode(b byte) bool {
	// f32 comparisons occupy 0x5B-0x60 and f64 comparisons 0x61-0x66; f32
	// arith 0x8B-0x98 and f64 arith 0x99-0xA6; integer truncations from
	// float 0xA8-0xAB and 0xAE-0xB1; the remaining conversions and
	// reinterpretations touching float 0xB2-0xBF. Float constants, loads
	// and stores are flagged by their own cases above; the saturating
	// truncations behind the 0xFC prefix are not flagged. Any hit flags
	// the function as float-using, which is all the policy needs.
	return (b >= 0x5B && b <= 0x66) || (b >= 0x8B && b <= 0xA6) ||
		(b >= 0xA8 && b <= 0xAB) || (b >= 0xAE && b <= 0xB1) || (b >= 0xB2 && b <= 0xBF)
}
