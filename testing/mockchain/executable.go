package mockchain

// This file hand-assembles Wasm fixtures that actually execute meaningful
// guest logic (unlike MinimalWasm's trivial empty bodies), for integration
// tests that drive a real instance.Call end to end: a contract whose
// execute/query entry points round-trip a value through the db_write/
// db_read host imports, and a contract whose execute entry point is a
// pure CPU-bound infinite loop with no host calls at all, exercising the
// gas injector's per-basic-block charge as the only thing that can ever
// stop it.

var wasmPreamble = []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}

func uleb(v uint64) []byte {
	var buf []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			buf = append(buf, b|0x80)
			continue
		}
		return append(buf, b)
	}
}

func sleb(v int64) []byte {
	var buf []byte
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

func name(s string) []byte {
	return append(uleb(uint64(len(s))), s...)
}

func section(id byte, payload []byte) []byte {
	return append([]byte{id}, append(uleb(uint64(len(payload))), payload...)...)
}

func funcType(params, results []byte) []byte {
	buf := []byte{0x60}
	buf = append(buf, uleb(uint64(len(params)))...)
	buf = append(buf, params...)
	buf = append(buf, uleb(uint64(len(results)))...)
	buf = append(buf, results...)
	return buf
}

const i32 = 0x7F

// ExecutableDBRoundTrip builds a contract with real execute/query bodies:
// execute(env, info, msg) writes info's bytes under msg's bytes as a
// db_write(key, value) call, then returns a `{"ok":null}` envelope it
// assembles itself through the guest's own allocate/store8 sequence;
// query(env, msg) calls db_read(key) and returns its region pointer
// directly, so the caller reads back exactly what execute stored. Both
// paths run through the gas-instrumented call surface, the same way a
// real contract would.
func ExecutableDBRoundTrip() []byte {
	types := [][]byte{
		funcType([]byte{i32, i32}, nil),      // T0: db_write (i32,i32)->()
		funcType([]byte{i32}, []byte{i32}),   // T1: db_read/allocate (i32)->(i32)
		funcType(nil, nil),                   // T2: interface_version_1 ()->()
		funcType([]byte{i32}, nil),           // T3: deallocate (i32)->()
		funcType([]byte{i32, i32, i32}, []byte{i32}), // T4: execute
		funcType([]byte{i32, i32}, []byte{i32}),      // T5: query
	}
	var typeSec []byte
	typeSec = append(typeSec, uleb(uint64(len(types)))...)
	for _, t := range types {
		typeSec = append(typeSec, t...)
	}

	importSec := uleb(2)
	importSec = append(importSec, name("env")...)
	importSec = append(importSec, name("db_write")...)
	importSec = append(importSec, 0x00)
	importSec = append(importSec, uleb(0)...) // type 0
	importSec = append(importSec, name("env")...)
	importSec = append(importSec, name("db_read")...)
	importSec = append(importSec, 0x00)
	importSec = append(importSec, uleb(1)...) // type 1

	// Local functions, in declaration order: interface_version_1(T2),
	// allocate(T1), deallocate(T3), execute(T4), query(T5). Imports
	// occupy indices 0,1, so locals start at 2.
	funcSec := uleb(5)
	funcSec = append(funcSec, uleb(2)...) // interface_version_1 -> T2
	funcSec = append(funcSec, uleb(1)...) // allocate -> T1
	funcSec = append(funcSec, uleb(3)...) // deallocate -> T3
	funcSec = append(funcSec, uleb(4)...) // execute -> T4
	funcSec = append(funcSec, uleb(5)...) // query -> T5

	memSec := []byte{0x01, 0x00, 0x01} // 1 memory, min 1 page, no max

	globalSec := uleb(1)
	globalSec = append(globalSec, i32, 0x01) // mutable i32
	globalSec = append(globalSec, 0x41)
	globalSec = append(globalSec, sleb(1024)...) // init: i32.const 1024
	globalSec = append(globalSec, 0x0B)

	const (
		idxDBWrite = 0
		idxDBRead  = 1
		idxIface   = 2
		idxAlloc   = 3
		idxDealloc = 4
		idxExecute = 5
		idxQuery   = 6
	)
	exportSec := uleb(6)
	exportSec = append(exportSec, name("memory")...)
	exportSec = append(exportSec, 0x02, 0x00)
	exportSec = append(exportSec, name("interface_version_1")...)
	exportSec = append(exportSec, 0x00, byte(idxIface))
	exportSec = append(exportSec, name("allocate")...)
	exportSec = append(exportSec, 0x00, byte(idxAlloc))
	exportSec = append(exportSec, name("deallocate")...)
	exportSec = append(exportSec, 0x00, byte(idxDealloc))
	exportSec = append(exportSec, name("execute")...)
	exportSec = append(exportSec, 0x00, byte(idxExecute))
	exportSec = append(exportSec, name("query")...)
	exportSec = append(exportSec, 0x00, byte(idxQuery))

	ifaceBody := []byte{0x00, 0x0B} // 0 locals, end

	allocBody := []byte{0x00} // 0 locals
	allocBody = append(allocBody,
		0x23, 0x00, // global.get 0 (old bump: the value left on the stack to return)
		0x23, 0x00, // global.get 0
		0x20, 0x00, // local.get 0 (size)
		0x6A,       // i32.add
		0x24, 0x00, // global.set 0 (new bump = old + size)
		0x0B, // end
	)

	deallocBody := []byte{0x00, 0x0B}

	okEnvelope := []byte(`{"ok":null}`)
	var exec []byte
	exec = append(exec, 0x20, 0x02) // local.get 2 (msg -> key)
	exec = append(exec, 0x20, 0x01) // local.get 1 (info -> value)
	exec = append(exec, 0x10, byte(idxDBWrite))

	exec = append(exec, 0x41)
	exec = append(exec, sleb(int64(len(okEnvelope)))...)
	exec = append(exec, 0x10, byte(idxAlloc))
	exec = append(exec, 0x21, 0x03) // local.set 3 (dataPtr)

	for i, b := range okEnvelope {
		exec = append(exec, 0x20, 0x03) // local.get 3
		exec = append(exec, 0x41)
		exec = append(exec, sleb(int64(b))...)
		exec = append(exec, 0x3A, 0x00) // i32.store8 align=0
		exec = append(exec, uleb(uint64(i))...)
	}

	exec = append(exec, 0x41)
	exec = append(exec, sleb(12)...)
	exec = append(exec, 0x10, byte(idxAlloc))
	exec = append(exec, 0x21, 0x04) // local.set 4 (headerPtr)

	exec = append(exec, 0x20, 0x04, 0x20, 0x03, 0x36, 0x00) // local.get 4; local.get 3; i32.store align=0
	exec = append(exec, uleb(0)...)                         // offset 0 (region.Offset = dataPtr)

	exec = append(exec, 0x20, 0x04, 0x41)
	exec = append(exec, sleb(int64(len(okEnvelope)))...)
	exec = append(exec, 0x36, 0x00)
	exec = append(exec, uleb(4)...) // offset 4 (region.Capacity)

	exec = append(exec, 0x20, 0x04, 0x41)
	exec = append(exec, sleb(int64(len(okEnvelope)))...)
	exec = append(exec, 0x36, 0x00)
	exec = append(exec, uleb(8)...) // offset 8 (region.Length)

	exec = append(exec, 0x20, 0x04) // local.get 4 (headerPtr): the return value
	exec = append(exec, 0x0B)       // end

	// Params occupy locals 0-2 (env, info, msg); one group of 2 extra i32
	// locals (3: dataPtr, 4: headerPtr) follows.
	execBody := []byte{0x01, 0x02, i32}
	execBody = append(execBody, exec...)

	var query []byte
	query = append(query, 0x20, 0x01) // local.get 1 (msg -> key)
	query = append(query, 0x10, byte(idxDBRead))
	query = append(query, 0x0B) // end: returns db_read's region ptr directly
	queryBody := append([]byte{0x00}, query...)

	bodies := [][]byte{ifaceBody, allocBody, deallocBody, execBody, queryBody}
	codeSec := uleb(uint64(len(bodies)))
	for _, b := range bodies {
		codeSec = append(codeSec, uleb(uint64(len(b)))...)
		codeSec = append(codeSec, b...)
	}

	var out []byte
	out = append(out, wasmPreamble...)
	out = append(out, section(0x01, typeSec)...)
	out = append(out, section(0x02, importSec)...)
	out = append(out, section(0x03, funcSec)...)
	out = append(out, section(0x05, memSec)...)
	out = append(out, section(0x06, globalSec)...)
	out = append(out, section(0x07, exportSec)...)
	out = append(out, section(0x0A, codeSec)...)
	return out
}

// ExecutableQueryAttemptsWrite is ExecutableDBRoundTrip with one change:
// query calls db_write instead of db_read. query is always dispatched
// read-only (spec §4.5's write-rejection rule), so driving this fixture's
// "query" entry point exercises CheckWriteAllowed's rejection path
// end-to-end instead of just at the environment-package unit level.
func ExecutableQueryAttemptsWrite() []byte {
	types := [][]byte{
		funcType([]byte{i32, i32}, nil),              // T0: db_write
		funcType([]byte{i32}, []byte{i32}),           // T1: allocate
		funcType(nil, nil),                           // T2: interface_version_1
		funcType([]byte{i32}, nil),                   // T3: deallocate
		funcType([]byte{i32, i32, i32}, []byte{i32}), // T4: execute
		funcType([]byte{i32, i32}, []byte{i32}),      // T5: query
	}
	var typeSec []byte
	typeSec = append(typeSec, uleb(uint64(len(types)))...)
	for _, t := range types {
		typeSec = append(typeSec, t...)
	}

	importSec := uleb(1)
	importSec = append(importSec, name("env")...)
	importSec = append(importSec, name("db_write")...)
	importSec = append(importSec, 0x00)
	importSec = append(importSec, uleb(0)...) // type 0

	// Imports occupy index 0 only, so locals start at 1.
	funcSec := uleb(5)
	funcSec = append(funcSec, uleb(2)...) // interface_version_1 -> T2
	funcSec = append(funcSec, uleb(1)...) // allocate -> T1
	funcSec = append(funcSec, uleb(3)...) // deallocate -> T3
	funcSec = append(funcSec, uleb(4)...) // execute -> T4
	funcSec = append(funcSec, uleb(5)...) // query -> T5

	memSec := []byte{0x01, 0x00, 0x01}

	globalSec := uleb(1)
	globalSec = append(globalSec, i32, 0x01)
	globalSec = append(globalSec, 0x41)
	globalSec = append(globalSec, sleb(1024)...)
	globalSec = append(globalSec, 0x0B)

	const (
		idxDBWrite = 0
		idxIface   = 1
		idxAlloc   = 2
		idxDealloc = 3
		idxExecute = 4
		idxQuery   = 5
	)
	exportSec := uleb(6)
	exportSec = append(exportSec, name("memory")...)
	exportSec = append(exportSec, 0x02, 0x00)
	exportSec = append(exportSec, name("interface_version_1")...)
	exportSec = append(exportSec, 0x00, byte(idxIface))
	exportSec = append(exportSec, name("allocate")...)
	exportSec = append(exportSec, 0x00, byte(idxAlloc))
	exportSec = append(exportSec, name("deallocate")...)
	exportSec = append(exportSec, 0x00, byte(idxDealloc))
	exportSec = append(exportSec, name("execute")...)
	exportSec = append(exportSec, 0x00, byte(idxExecute))
	exportSec = append(exportSec, name("query")...)
	exportSec = append(exportSec, 0x00, byte(idxQuery))

	ifaceBody := []byte{0x00, 0x0B}
	allocBody := []byte{0x00}
	allocBody = append(allocBody,
		0x23, 0x00,
		0x23, 0x00,
		0x20, 0x00,
		0x6A,
		0x24, 0x00,
		0x0B,
	)
	deallocBody := []byte{0x00, 0x0B}

	// execute is never exercised by this fixture's test; it only needs to
	// type-check, so it trivially returns its own msg pointer unchanged.
	execBody := []byte{0x00, 0x20, 0x02, 0x0B}

	// query(env, msg): attempts db_write(msg, env) — always rejected by
	// CheckWriteAllowed before the call can reach the backend. The i32.const
	// 0 after the call only exists to keep the function statically well
	// typed; at runtime the host call never returns control here.
	queryBody := []byte{
		0x00,
		0x20, 0x01, // local.get 1 (msg -> key)
		0x20, 0x00, // local.get 0 (env -> value)
		0x10, byte(idxDBWrite),
		0x41, 0x00, // i32.const 0
		0x0B,
	}

	bodies := [][]byte{ifaceBody, allocBody, deallocBody, execBody, queryBody}
	codeSec := uleb(uint64(len(bodies)))
	for _, b := range bodies {
		codeSec = append(codeSec, uleb(uint64(len(b)))...)
		codeSec = append(codeSec, b...)
	}

	var out []byte
	out = append(out, wasmPreamble...)
	out = append(out, section(0x01, typeSec)...)
	out = append(out, section(0x02, importSec)...)
	out = append(out, section(0x03, funcSec)...)
	out = append(out, section(0x05, memSec)...)
	out = append(out, section(0x06, globalSec)...)
	out = append(out, section(0x07, exportSec)...)
	out = append(out, section(0x0A, codeSec)...)
	return out
}

// ExecutableCPULoop builds a contract whose execute entry point is a
// tight infinite loop (loop; br 0; end) that calls no host import at
// all: the only thing charged against the call's gas budget is the
// `gas` import the instrumentation pass itself splices into the loop's
// body, so a small GasLimit deterministically produces OutOfGas.
func ExecutableCPULoop() []byte {
	types := [][]byte{
		funcType(nil, nil),                           // T0: interface_version_1
		funcType([]byte{i32}, []byte{i32}),           // T1: allocate
		funcType([]byte{i32}, nil),                   // T2: deallocate
		funcType([]byte{i32, i32, i32}, nil),         // T3: execute
	}
	var typeSec []byte
	typeSec = append(typeSec, uleb(uint64(len(types)))...)
	for _, t := range types {
		typeSec = append(typeSec, t...)
	}

	funcSec := uleb(4)
	funcSec = append(funcSec, uleb(0)...) // interface_version_1 -> T0
	funcSec = append(funcSec, uleb(1)...) // allocate -> T1
	funcSec = append(funcSec, uleb(2)...) // deallocate -> T2
	funcSec = append(funcSec, uleb(3)...) // execute -> T3

	memSec := []byte{0x01, 0x00, 0x01}

	globalSec := uleb(1)
	globalSec = append(globalSec, i32, 0x01)
	globalSec = append(globalSec, 0x41)
	globalSec = append(globalSec, sleb(1024)...)
	globalSec = append(globalSec, 0x0B)

	const (
		idxIface   = 0
		idxAlloc   = 1
		idxDealloc = 2
		idxExecute = 3
	)
	exportSec := uleb(5)
	exportSec = append(exportSec, name("memory")...)
	exportSec = append(exportSec, 0x02, 0x00)
	exportSec = append(exportSec, name("interface_version_1")...)
	exportSec = append(exportSec, 0x00, byte(idxIface))
	exportSec = append(exportSec, name("allocate")...)
	exportSec = append(exportSec, 0x00, byte(idxAlloc))
	exportSec = append(exportSec, name("deallocate")...)
	exportSec = append(exportSec, 0x00, byte(idxDealloc))
	exportSec = append(exportSec, name("execute")...)
	exportSec = append(exportSec, 0x00, byte(idxExecute))

	ifaceBody := []byte{0x00, 0x0B}
	allocBody := []byte{0x00}
	allocBody = append(allocBody,
		0x23, 0x00, // global.get 0 (old bump: the value left on the stack to return)
		0x23, 0x00, // global.get 0
		0x20, 0x00, // local.get 0 (size)
		0x6A,       // i32.add
		0x24, 0x00, // global.set 0 (new bump = old + size)
		0x0B,
	)
	deallocBody := []byte{0x00, 0x0B}

	loopBody := []byte{0x00} // no locals
	loopBody = append(loopBody,
		0x03, 0x40, // loop (empty blocktype)
		0x0C, 0x00, // br 0
		0x0B, // end (loop)
		0x0B, // end (function)
	)

	bodies := [][]byte{ifaceBody, allocBody, deallocBody, loopBody}
	codeSec := uleb(uint64(len(bodies)))
	for _, b := range bodies {
		codeSec = append(codeSec, uleb(uint64(len(b)))...)
		codeSec = append(codeSec, b...)
	}

	var out []byte
	out = append(out, wasmPreamble...)
	out = append(out, section(0x01, typeSec)...)
	out = append(out, section(0x03, funcSec)...)
	out = append(out, section(0x05, memSec)...)
	out = append(out, section(0x06, globalSec)...)
	out = append(out, section(0x07, exportSec)...)
	out = append(out, section(0x0A, codeSec)...)
	return out
}
