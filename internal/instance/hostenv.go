package instance

import (
	"fmt"

	"github.com/empower1/wasmvm/internal/environment"
	"github.com/empower1/wasmvm/internal/imports"
	"github.com/wasmerio/wasmer-go/wasmer"
)

// hostEnv is the WasmerEnv wasmvm hands to every registered import
// closure, grounded on the teacher's HostFunctionEnvironment
// (internal/vm/vm.go): it captures the instance's memory once wasmer
// finishes instantiation and exposes the category structs built in
// internal/imports over it. Unlike the teacher's version, the memory and
// allocator are resolved through the imports.Memory/imports.Allocator
// interfaces rather than a bare *wasmer.Memory field, so this file and
// wire.go are the only files in the module that name the wasmer package
// for the host-import path.
type hostEnv struct {
	env *environment.Environment

	memory *wasmer.Memory
	alloc  wasmerAllocator

	db     imports.DB
	addr   imports.Addr
	crypto imports.Crypto
	query  imports.Query
	util   imports.Util
}

var _ wasmer.WasmerEnv = (*hostEnv)(nil)

// OnInstantiated is called by wasmer once the module is instantiated; it
// resolves the exported "memory" and "allocate" function and
// wires every import category struct over them, matching the teacher's
// HostFunctionEnvironment.OnInstantiated but for five structs instead of
// one flat field set.
func (h *hostEnv) OnInstantiated(inst *wasmer.Instance) error {
	mem, err := inst.Exports.GetMemory("memory")
	if err != nil {
		return fmt.Errorf("instance: exported memory not found: %w", err)
	}
	allocateFn, err := inst.Exports.GetFunction("allocate")
	if err != nil {
		return fmt.Errorf("instance: exported allocate() not found: %w", err)
	}
	h.memory = mem
	h.alloc = wasmerAllocator{fn: allocateFn}
	h.db = imports.DB{Env: h.env, Mem: mem}
	h.addr = imports.Addr{Env: h.env, Mem: mem}
	h.crypto = imports.Crypto{Env: h.env, Mem: mem}
	h.query = imports.Query{Env: h.env, Mem: mem}
	h.util = imports.Util{Env: h.env, Mem: mem}
	return nil
}

// wasmerAllocator adapts the guest's exported allocate(size) -> ptr
// function to the imports.Allocator interface, so internal/imports never
// imports wasmer directly.
type wasmerAllocator struct {
	fn wasmer.NativeFunction
}

func (a wasmerAllocator) Allocate(size uint32) (uint32, error) {
	raw, err := a.fn(int32(size))
	if err != nil {
		return 0, fmt.Errorf("guest allocate(%d) failed: %w", size, err)
	}
	ptr, ok := raw.(int32)
	if !ok {
		return 0, fmt.Errorf("guest allocate(%d) returned non-i32 %T", size, raw)
	}
	if ptr == 0 {
		return 0, fmt.Errorf("guest allocate(%d) returned null pointer", size)
	}
	return uint32(ptr), nil
}

func callDeallocate(inst *wasmer.Instance, ptr uint32) {
	deallocateFn, err := inst.Exports.GetFunction("deallocate")
	if err != nil {
		return
	}
	_, _ = deallocateFn(int32(ptr))
}
