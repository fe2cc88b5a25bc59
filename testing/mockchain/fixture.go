package mockchain

// MinimalWasm hand-assembles the smallest module satisfying §4.2's
// required-export check: a memory export plus interface_version_1,
// allocate, deallocate, and the named entry points, each a trivial
// `() -> ()` body (0x00 0x0B: unreachable-free empty function, just
// `end`). It loads, validates, and instantiates cleanly; it is not meant
// to execute meaningful entry point logic — tests exercising real
// Region read/write traffic build their own fixture with an assembler or
// skip straight to mocking instance.Code.
//
// entryPoints controls which additional exports beyond the four mandatory
// ones are declared, letting a caller build a fixture that declares
// "execute" only, or "query" only, matching what a given test dispatches.
func MinimalWasm(entryPoints ...string) []byte {
	names := append([]string{"interface_version_1", "allocate", "deallocate"}, entryPoints...)

	var b []byte
	b = append(b, 0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00) // magic, version

	// type section: one entry, () -> ()
	typeSec := []byte{0x01, 0x60, 0x00, 0x00}
	b = append(b, 0x01, byte(len(typeSec)))
	b = append(b, typeSec...)

	// function section: len(names) functions, all of type 0
	funcSec := []byte{byte(len(names))}
	for range names {
		funcSec = append(funcSec, 0x00)
	}
	b = append(b, 0x03, byte(len(funcSec)))
	b = append(b, funcSec...)

	// memory section: one memory, min 1 page
	memSec := []byte{0x01, 0x00, 0x01}
	b = append(b, 0x05, byte(len(memSec)))
	b = append(b, memSec...)

	// export section: "memory" plus one export per function, in order
	var exportSec []byte
	exportSec = append(exportSec, byte(len(names)+1))
	appendExport := func(name string, kind byte, idx byte) {
		exportSec = append(exportSec, byte(len(name)))
		exportSec = append(exportSec, []byte(name)...)
		exportSec = append(exportSec, kind, idx)
	}
	appendExport("memory", 0x02, 0x00)
	for i, name := range names {
		appendExport(name, 0x00, byte(i))
	}
	b = append(b, 0x07, byte(len(exportSec)))
	b = append(b, exportSec...)

	// code section: one trivial body per function
	var codeSec []byte
	codeSec = append(codeSec, byte(len(names)))
	for range names {
		body := []byte{0x00, 0x0B} // no locals, `end`
		codeSec = append(codeSec, byte(len(body)))
		codeSec = append(codeSec, body...)
	}
	b = append(b, 0x0A, byte(len(codeSec)))
	b = append(b, codeSec...)

	return b
}
