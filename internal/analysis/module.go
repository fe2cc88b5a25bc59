package analysis

import "github.com/empower1/wasmvm/internal/gascost"

// ValType is a Wasm value type byte.
type ValType byte

const (
	ValTypeI32       ValType = 0x7F
	ValTypeI64       ValType = 0x7E
	ValTypeF32       ValType = 0x7D
	ValTypeF64       ValType = 0x7C
	ValTypeV128      ValType = 0x7B
	ValTypeFuncRef   ValType = 0x70
	ValTypeExternRef ValType = 0x6F
)

// IsFloat reports whether the value type is a floating-point type — the
// static analyzer's float policy (spec §4.2) rejects any function whose
// locals mention one, or whose body uses a float opcode, unless floats
// are explicitly enabled. Parameter and result types are not checked.
func (v ValType) IsFloat() bool {
	return v == ValTypeF32 || v == ValTypeF64
}

// FuncType is an entry of the type section: a function signature.
type FuncType struct {
	Params  []ValType
	Results []ValType
}

// SectionID identifies a Wasm section by its fixed numeric id.
type SectionID byte

const (
	SecCustom   SectionID = 0
	SecType     SectionID = 1
	SecImport   SectionID = 2
	SecFunction SectionID = 3
	SecTable    SectionID = 4
	SecMemory   SectionID = 5
	SecGlobal   SectionID = 6
	SecExport   SectionID = 7
	SecStart    SectionID = 8
	SecElement  SectionID = 9
	SecCode     SectionID = 10
	SecData     SectionID = 11
	SecDataCount SectionID = 12
)

// ImportKind is the kind byte of an import/export descriptor.
type ImportKind byte

const (
	KindFunc   ImportKind = 0
	KindTable  ImportKind = 1
	KindMemory ImportKind = 2
	KindGlobal ImportKind = 3
)

// Import is one entry of the import section.
type Import struct {
	Module string
	Name   string
	Kind   ImportKind
	// TypeIndex is meaningful only when Kind == KindFunc.
	TypeIndex uint32
}

// Export is one entry of the export section.
type Export struct {
	Name  string
	Kind  ImportKind
	Index uint32
}

// Global is one entry of the global section (spec §4.2 allows globals up
// to a configured cap; their init-expression bytes are not retained, only
// skipped over, since the analyzer does not need their value).
type Global struct {
	Type    ValType
	Mutable bool
}

// FuncBody is a parsed function body from the code section: the declared
// local types and the flat, non-nested opcode stream within it (control
// structure is recorded only as BlockBoundary markers, enough for the gas
// injector to split basic blocks without a full control-flow graph).
type FuncBody struct {
	Locals []ValType
	Ops    []gascost.Opcode
	// BlockStarts holds the index into Ops of every block/loop/if/else
	// boundary the injector must insert a `gas` call after.
	BlockStarts []int
	UsesFloat   bool

	// Raw is the exact, unmodified bytes of this function's body (local
	// declarations followed by the instruction stream) as they appeared
	// in the code section. OpsByteOffset is Raw's offset where the
	// instruction stream begins, and OpByteOffsets[i] is Raw's offset
	// where Ops[i] begins — the span of Ops[i] runs to OpByteOffsets[i+1]
	// (or len(Raw) for the last op). internal/instrument uses these to
	// splice gas-charging instructions into the byte stream without
	// re-deriving immediate-length rules parseFuncBody already knows.
	Raw           []byte
	OpsByteOffset int
	OpByteOffsets []int
}

// Module is the parsed, section-by-section view of a Wasm binary that the
// static analyzer validates and the gas injector rewrites.
type Module struct {
	Types      []FuncType
	Imports    []Import
	FuncTypeIdx []uint32 // len == number of locally-defined functions
	Tables     int
	Memories   int
	MemoryImported bool
	Globals    []Global
	Exports    []Export
	HasStart   bool
	Bodies     []FuncBody
	// CapabilityTag is the raw contents of a custom section named
	// "capabilities" (comma-separated tags), or "" if absent.
	CapabilityTag string

	// RawTable, RawMemory, RawGlobal, RawElement, RawData, and
	// RawDataCount hold the exact raw payload bytes of their respective
	// sections (nil if the section was absent), so internal/instrument
	// can pass them through unchanged when reassembling a gas-instrumented
	// module instead of lossily reconstructing them from structured
	// fields that don't retain everything the section holds (e.g. a
	// global's init expression, or a table's declared limits).
	RawTable     []byte
	RawMemory    []byte
	RawGlobal    []byte
	RawElement   []byte
	RawData      []byte
	RawDataCount []byte
}

// ExportedFuncNames returns the set of names exported with KindFunc.
func (m *Module) ExportedFuncNames() map[string]uint32 {
	out := make(map[string]uint32)
	for _, e := range m.Exports {
		if e.Kind == KindFunc {
			out[e.Name] = e.Index
		}
	}
	return out
}

// ImportedFuncCount returns how many of the module's imports are functions
// (needed to translate between "function index" and "locally defined
// function index", since imported functions occupy the low indices).
func (m *Module) ImportedFuncCount() int {
	n := 0
	for _, imp := range m.Imports {
		if imp.Kind == KindFunc {
			n++
		}
	}
	return n
}
